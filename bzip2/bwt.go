// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package bzip2

// decodeBWT inverts the Burrows-Wheeler transform in place: buf holds the
// block's post-MTF/RLE2 byte stream (ll8) on entry and, on return, holds the
// RLE1-encoded byte stream ready for runLengthEncoding to expand. ptr is the
// stream's origin pointer.
//
// If randomized is set, every byte produced by the walk (including bytes
// that the downstream RLE1 stage will interpret as a run-length count) is
// dithered against the standard randNums countdown table before being
// written back into buf, exactly as the format's (now deprecated) block
// randomization feature requires.
func decodeBWT(buf []byte, ptr int, randomized bool) {
	if len(buf) == 0 {
		if ptr != 0 {
			panicf(StreamCorrupted, "origin pointer %d out of range for empty block", ptr)
		}
		return
	}
	if ptr < 0 || ptr >= len(buf) {
		panicf(StreamCorrupted, "origin pointer %d out of range [0, %d)", ptr, len(buf))
	}

	var c [256]int
	for _, v := range buf {
		c[v]++
	}

	var sum int
	for i, v := range c {
		sum += v
		c[i] = sum - v
	}

	tt := make([]int, len(buf))
	for i, v := range buf {
		tt[c[v]] = i
		c[v]++
	}

	buf2 := make([]byte, len(buf))
	tPos := tt[ptr]

	var rnToGo, rtPos int
	for i := range tt {
		b := buf[tPos]
		tPos = tt[tPos]
		if randomized {
			if rnToGo == 0 {
				rnToGo = int(randNums[rtPos]) - 1
				rtPos++
				if rtPos == len(randNums) {
					rtPos = 0
				}
			} else {
				rnToGo--
			}
			if rnToGo == 1 {
				b ^= 1
			}
		}
		buf2[i] = b
	}
	copy(buf, buf2)
}
