// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package bzip2

// markerScanner resynchronizes to a 48-bit marker pattern that may begin at
// an arbitrary bit offset, by sliding a rolling window across the bit stream
// one bit at a time. This is needed because, unlike the stream header, block
// and end-of-stream markers are not byte-aligned.
type markerScanner struct {
	br *bitReader
}

// scanFor reads bits one at a time until the low patternBits bits of the
// rolling window equal pattern. It reports the byte offset (relative to the
// start of the underlying source) at which the match begins.
//
// If the underlying source is exhausted before a match is found, scanFor
// returns matched == false and byteOffset set to the number of whole bytes
// consumed so far; it does not propagate the underlying read error, per the
// "an I/O error during marker scan is swallowed" rule for by-block readers.
//
// pattern must fit in patternBits bits, and patternBits must not exceed 48.
func (ms *markerScanner) scanFor(pattern uint64, patternBits uint) (matched bool, byteOffset int64) {
	if patternBits == 0 || patternBits > 48 {
		panicf(InvalidArgument, "marker pattern length out of range: %d", patternBits)
	}
	mask := uint64(1)<<patternBits - 1
	pattern &= mask

	exhausted := false
	readBit := func() uint64 {
		defer func() {
			if recover() != nil {
				exhausted = true
			}
		}()
		if ms.br.readBit() {
			return 1
		}
		return 0
	}

	var window uint64
	var live uint
	for live < patternBits && !exhausted {
		window = (window << 1) | readBit()
		live++
	}
	for !exhausted && window&mask != pattern {
		window = (window << 1) | readBit()
	}
	if exhausted {
		return false, ms.br.bytesConsumed()
	}

	// The match just completed ends at the current bit position. It began
	// patternBits bits earlier; bytesConsumed counts whole bytes already
	// pulled from the source, and br.live holds bits buffered but not yet
	// consumed, so the bit position of the read head is
	// 8*bytesConsumed - live.
	bitPos := 8*ms.br.bytesConsumed() - int64(ms.br.live)
	matchStart := bitPos - int64(patternBits)
	return true, matchStart / 8
}

// scanForBoundary scans for whichever of the block-start or end-of-stream
// marker occurs first. kind is 0 for a block start, 1 for end-of-stream, and
// -1 if the source was exhausted before either was found (in which case
// byteOffset is the number of whole bytes consumed).
func (ms *markerScanner) scanForBoundary() (kind int, byteOffset int64) {
	const bits = 48
	mask := uint64(1)<<bits - 1

	exhausted := false
	readBit := func() uint64 {
		defer func() {
			if recover() != nil {
				exhausted = true
			}
		}()
		if ms.br.readBit() {
			return 1
		}
		return 0
	}

	var window uint64
	var live uint
	for live < bits && !exhausted {
		window = (window << 1) | readBit()
		live++
	}
	for !exhausted && window&mask != blkMagic && window&mask != endMagic {
		window = (window << 1) | readBit()
	}
	if exhausted {
		return -1, ms.br.bytesConsumed()
	}

	bitPos := 8*ms.br.bytesConsumed() - int64(ms.br.live)
	matchStart := (bitPos - bits) / 8
	if window&mask == blkMagic {
		return 0, matchStart
	}
	return 1, matchStart
}
