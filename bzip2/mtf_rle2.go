// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package bzip2

// moveToFront implements the combined move-to-front and bijective base-2
// run-length decoding stage that sits between the Huffman decoder and the
// inverse Burrows-Wheeler transform.
//
// Symbol 0 and 1 (RUNA and RUNB) do not move anything to the front of the
// dictionary; instead, a run of them accumulates a repeat count for the
// dictionary's current front entry. Runs are encoded with normal two's
// complement arithmetic:
//
//	num+1 == (1<<cnt) | run
//
// where run is a binary integer whose bits are the RUNA (0) / RUNB (1)
// symbols read so far, least-significant symbol first, and cnt is the
// number of such symbols.
type moveToFront struct {
	dictBuf [256]uint8
	dictLen int

	blkSize int
}

// init sets the starting dictionary (the sequence of in-use byte values,
// ascending) and the block's maximum symbol count, used to bound a
// maliciously long run.
func (mtf *moveToFront) init(dict []uint8, blkSize int) {
	if len(dict) > len(mtf.dictBuf) {
		panicf(TableMalformed, "alphabet too large")
	}
	copy(mtf.dictBuf[:], dict)
	mtf.dictLen = len(dict)
	mtf.blkSize = blkSize
}

// decodeInto appends the move-to-front/run-length decode of syms to dst and
// returns the result. Each element of syms is a Huffman-decoded MTF symbol:
// 0 and 1 are RUNA/RUNB, values in [2, dictLen+1) select the (sym-1)'th
// dictionary entry.
func (mtf *moveToFront) decodeInto(dst []byte, syms []uint16) []byte {
	dict := mtf.dictBuf[:mtf.dictLen]

	var lastCnt uint
	var lastRun uint32
	flushRun := func() {
		if lastCnt == 0 {
			return
		}
		cnt := int((uint32(1)<<lastCnt)|lastRun) - 1
		if len(dst)+cnt > mtf.blkSize || lastCnt > 24 {
			panicf(BlockOverrun, "run-length decoding exceeded block size")
		}
		for i := 0; i < cnt; i++ {
			dst = append(dst, dict[0])
		}
		lastCnt, lastRun = 0, 0
	}

	for _, sym := range syms {
		if sym < 2 {
			lastRun |= uint32(sym) << lastCnt
			lastCnt++
			continue
		}
		flushRun()

		val := dict[sym-1] // Forward lookup val in dict
		copy(dict[1:], dict[:sym-1])
		dict[0] = val

		if len(dst) >= mtf.blkSize {
			panicf(BlockOverrun, "run-length decoding exceeded block size")
		}
		dst = append(dst, val)
	}
	flushRun()
	return dst
}

// decodeSelectorMTF reverses the move-to-front coding applied to the block's
// Huffman-table selector list (a much smaller, separate MTF instance over
// the alphabet 0..nGroups-1, with no run-length augmentation).
func decodeSelectorMTF(mtfSyms []uint8, nGroups int) []uint8 {
	var pos [maxNumTrees]uint8
	for i := 0; i < nGroups; i++ {
		pos[i] = uint8(i)
	}
	out := make([]uint8, len(mtfSyms))
	for i, v := range mtfSyms {
		tmp := pos[v]
		copy(pos[1:v+1], pos[:v])
		pos[0] = tmp
		out[i] = tmp
	}
	return out
}
