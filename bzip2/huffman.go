// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package bzip2

const maxCodeLen = 23 // MAX_CODE_LEN

// huffmanTable is a canonical Huffman decode table built from per-symbol
// code lengths, using the limit/base/perm representation: indexed by code
// length rather than a flat lookup table, trading table memory for a small
// per-symbol decode loop.
type huffmanTable struct {
	limit  [maxCodeLen + 2]int32
	base   [maxCodeLen + 2]int32
	perm   []uint16
	minLen uint
	maxLen uint
}

// build constructs the decode table from a slice of code lengths, one per
// symbol, ordered by symbol value. Every length must be in [1, maxCodeLen].
func (h *huffmanTable) build(lens []uint8) {
	minLen, maxLen := uint(maxCodeLen), uint(0)
	for _, l := range lens {
		if l < 1 || uint(l) > maxCodeLen {
			panicf(TableMalformed, "code length out of range: %d", l)
		}
		if uint(l) < minLen {
			minLen = uint(l)
		}
		if uint(l) > maxLen {
			maxLen = uint(l)
		}
	}
	h.minLen, h.maxLen = minLen, maxLen

	// perm enumerates symbols in order of increasing length, and in
	// ascending symbol order within a length.
	if cap(h.perm) < len(lens) {
		h.perm = make([]uint16, 0, len(lens))
	}
	h.perm = h.perm[:0]
	for l := minLen; l <= maxLen; l++ {
		for sym, sl := range lens {
			if uint(sl) == l {
				h.perm = append(h.perm, uint16(sym))
			}
		}
	}

	var count [maxCodeLen + 2]int32
	for _, l := range lens {
		count[l]++
	}

	var first [maxCodeLen + 2]int32
	for l := minLen; l < maxLen; l++ {
		first[l+1] = (first[l] + count[l]) << 1
	}

	var permIdx int32
	for l := minLen; l <= maxLen; l++ {
		h.base[l] = first[l] - permIdx
		h.limit[l] = first[l] + count[l] - 1
		permIdx += count[l]
	}
	for l := maxLen + 1; l <= maxCodeLen+1; l++ {
		h.limit[l] = 1<<31 - 1 // Never reached; guards against a malformed stream
	}
}

// decode reads one symbol from br according to this table.
func (h *huffmanTable) decode(br *bitReader) uint16 {
	zn := h.minLen
	zvec := int32(br.readBits(zn))
	for zvec > h.limit[zn] {
		zn++
		if zn > maxCodeLen {
			panicf(TableMalformed, "huffman code does not terminate")
		}
		zvec = (zvec << 1) | int32(br.readBits(1))
	}
	idx := zvec - h.base[zn]
	if idx < 0 || int(idx) >= len(h.perm) {
		panicf(TableMalformed, "huffman code maps outside permutation table")
	}
	return h.perm[idx]
}
