// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package bzip2

const (
	minNumTrees = 2   // Fewest Huffman tables a block may use
	maxNumTrees = 6   // Most Huffman tables a block may use
	groupSize   = 50  // Number of MTF symbols covered by one selector
	eobOffset   = 2   // alphaSize = (number of used byte values) + eobOffset (RUNA, RUNB, EOB)
	maxAlphaSize = 258

	// maxSelectors bounds nSelectors for the largest permitted block
	// (900000 bytes), used only to reject an obviously corrupt header
	// before allocating.
	maxSelectors = 2 + (maxBlockSize100k*blockSizeUnit)/groupSize
)

// blockDecoder decodes a single compressed block, reusing its scratch
// buffers across blocks within one stream to avoid reallocating per block.
type blockDecoder struct {
	symToByte [256]uint8 // Index i holds the i'th byte value present in the block
	mtf       moveToFront
	huffs     [maxNumTrees]huffmanTable

	selectorMTF []uint8
	selectors   []uint8
	codeLens    []uint8
	mtfSyms     []uint16
	ll8         []byte
}

// decode reads one block (everything after the already-consumed block
// magic) and returns its origin pointer, its post-MTF/RLE2 byte stream
// (the input decodeBWT expects), whether it is randomized, and its stored
// per-block CRC.
func (bd *blockDecoder) decode(br *bitReader, blockSize100k int) (ptr int, ll8 []byte, randomized bool, storedCRC uint32) {
	storedCRC = br.readInt32()
	randomized = br.readBit()
	ptr = int(br.readBits(24))

	// Symbol-used bitmap: 16 groups of 16, two-level.
	usedGroups := uint16(br.readBits(16))
	var used [256]bool
	nUsed := 0
	for g := 0; g < 16; g++ {
		if usedGroups&(1<<(15-g)) == 0 {
			continue
		}
		bits := uint16(br.readBits(16))
		for b := 0; b < 16; b++ {
			if bits&(1<<(15-b)) != 0 {
				used[g*16+b] = true
			}
		}
	}
	for i := 0; i < 256; i++ {
		if used[i] {
			bd.symToByte[nUsed] = uint8(i)
			nUsed++
		}
	}
	if nUsed == 0 {
		panicf(BadBlockHeader, "block uses no byte values")
	}
	alphaSize := nUsed + eobOffset
	eob := uint16(alphaSize - 1)

	nGroups := int(br.readBits(3))
	if nGroups < minNumTrees || nGroups > maxNumTrees {
		panicf(TableMalformed, "invalid number of huffman tables: %d", nGroups)
	}
	nSelectors := int(br.readBits(15))
	if nSelectors == 0 || nSelectors > maxSelectors {
		panicf(TableMalformed, "invalid selector count: %d", nSelectors)
	}

	bd.selectorMTF = growUint8(bd.selectorMTF, nSelectors)
	for i := 0; i < nSelectors; i++ {
		var j uint8
		for br.readBit() {
			j++
			if int(j) >= nGroups {
				panicf(TableMalformed, "selector MTF value out of range")
			}
		}
		bd.selectorMTF[i] = j
	}
	bd.selectors = decodeSelectorMTF(bd.selectorMTF, nGroups)

	bd.codeLens = growUint8(bd.codeLens, alphaSize)
	for g := 0; g < nGroups; g++ {
		length := int(br.readBits(5))
		lens := bd.codeLens[:alphaSize]
		for s := 0; s < alphaSize; s++ {
			for {
				if length < 1 || length > maxCodeLen {
					panicf(TableMalformed, "huffman code length out of range: %d", length)
				}
				if !br.readBit() {
					break
				}
				if br.readBit() {
					length--
				} else {
					length++
				}
			}
			lens[s] = uint8(length)
		}
		bd.huffs[g].build(lens)
	}

	bd.mtfSyms = growUint16(bd.mtfSyms, 0)
	groupPos, selIdx := 0, -1
	var huff *huffmanTable
	for {
		if groupPos == 0 {
			selIdx++
			if selIdx >= len(bd.selectors) {
				panicf(StreamCorrupted, "ran out of selectors mid-block")
			}
			huff = &bd.huffs[bd.selectors[selIdx]]
			groupPos = groupSize
		}
		groupPos--
		sym := huff.decode(br)
		if sym == eob {
			break
		}
		if len(bd.mtfSyms) >= blockSize100k*blockSizeUnit {
			panicf(BlockOverrun, "block exceeded declared size")
		}
		bd.mtfSyms = append(bd.mtfSyms, sym)
	}

	dict := bd.symToByte[:nUsed]
	bd.mtf.init(dict, blockSize100k*blockSizeUnit)
	bd.ll8 = growByte(bd.ll8, 0)
	bd.ll8 = bd.mtf.decodeInto(bd.ll8, bd.mtfSyms)

	return ptr, bd.ll8, randomized, storedCRC
}

func growUint8(buf []uint8, n int) []uint8 {
	if cap(buf) < n {
		return make([]uint8, n)
	}
	return buf[:n]
}

func growUint16(buf []uint16, n int) []uint16 {
	if cap(buf) < n {
		return make([]uint16, n, 4096)
	}
	return buf[:n]
}

func growByte(buf []byte, n int) []byte {
	if cap(buf) < n {
		return make([]byte, n, 4096)
	}
	return buf[:n]
}
