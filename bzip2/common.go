// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package bzip2 implements a streaming BZip2 decompressor.
//
// Unlike a plain byte-stream decompressor, this package is built around the
// needs of split-aware readers: callers that must learn, at block
// granularity, how many bytes of the underlying compressed stream have been
// consumed so that a parallel job scheduler can hand out exact compressed
// byte ranges to independent workers. See Reader and ReaderConfig.Mode.
//
// There does not exist a formal specification of the BZip2 format. As such,
// much of this package is derived by either reverse engineering the original
// C source code or using secondary sources.
//
// Decompression stack (in the order applied while decoding a block):
//	Prefix decoding           (canonical Huffman)
//	Move-to-front transform   (MTF) + run-length decoding (RLE2)
//	Burrows-Wheeler transform (inverse BWT), with optional derandomization
//	Run-length decoding       (RLE1)
//
// References:
//	http://bzip.org/
//	https://en.wikipedia.org/wiki/Bzip2
//	https://code.google.com/p/jbzip2/
package bzip2

import (
	"errors"
	"fmt"
	"hash/crc32"
	"runtime"

	"github.com/dsnet/bzipsplit/internal"
)

const (
	// The leading "BZ" magic is not part of what this decoder reads; callers
	// strip it themselves. Reported positions are relative to the first byte
	// the decoder is given; AdjustReportedOffset only raises a floor under
	// them and does not add the stripped bytes to later offsets.
	blkMagic = 0x314159265359 // BCD of PI
	endMagic = 0x177245385090 // BCD of sqrt(PI)

	minBlockSize100k = 1 // Smallest permitted blockSize100k ("1" digit in header)
	maxBlockSize100k = 9 // Largest permitted blockSize100k ("9" digit in header)

	blockSizeUnit = 100000 // Block size multiplier: blockSize100k * blockSizeUnit is the block capacity
)

// Code classifies the kind of failure a decode operation ran into. The
// taxonomy mirrors the error conditions that a split-aware reader needs to
// distinguish: a truncated source, a malformed container, and a checksum
// failure all call for different recovery behavior in the caller.
type Code int

const (
	UnexpectedEndOfStream Code = iota
	BadStreamHeader
	BadBlockHeader
	TableMalformed
	BlockOverrun
	StreamCorrupted
	CRCMismatch
	InvalidArgument
	Closed
)

func (c Code) String() string {
	switch c {
	case UnexpectedEndOfStream:
		return "unexpected end of stream"
	case BadStreamHeader:
		return "bad stream header"
	case BadBlockHeader:
		return "bad block header"
	case TableMalformed:
		return "malformed prefix table"
	case BlockOverrun:
		return "block overrun"
	case StreamCorrupted:
		return "stream corrupted"
	case CRCMismatch:
		return "checksum mismatch"
	case InvalidArgument:
		return "invalid argument"
	case Closed:
		return "reader closed"
	}
	return "unknown"
}

// Error is the error type returned by this package. Every error surfaced by
// a Reader is fatal to that Reader; no read after an error (other than
// Close) makes any further progress.
type Error struct {
	Code Code
	Msg  string
}

func (e Error) Error() string { return "bzip2: " + e.Msg }

func errorf(c Code, f string, a ...interface{}) error {
	return Error{Code: c, Msg: fmt.Sprintf(f, a...)}
}

func panicf(c Code, f string, a ...interface{}) {
	panic(errorf(c, f, a...))
}

var errClosed = errorf(Closed, "reader used after Close")

// ErrEndOfBlock is returned by SplitReader.Read once a decoded block's
// bytes have all been delivered to the caller. It is not fatal: the next
// Read call resumes decoding (the next block, or io.EOF at the end of the
// stream). ReportedOffset reflects the boundary that was just crossed as
// soon as this is returned, mirroring the way io.EOF signals "no more data"
// without being an Error.
var ErrEndOfBlock = errors.New("bzip2: end of block")

// recoverError recovers a panic raised by panicf (or a bare panic of an
// Error value) and stores it into *err. Runtime errors and anything that is
// not an Error are re-panicked so that genuine programming bugs are not
// silently swallowed.
func recoverError(err *error) {
	switch ex := recover().(type) {
	case nil:
		// Do nothing.
	case runtime.Error:
		panic(ex)
	case Error:
		*err = ex
	default:
		panic(ex)
	}
}

// CRC32 is the abstract checksum primitive this package relies on for both
// per-block and combined-stream verification. The zero value of the
// package's own ieeeCRC32 satisfies it and is used by default.
//
// The checksum is computed with the bits within each byte taken in
// big-endian order (MSB first), using polynomial 0x04C11DB7, an initial
// value of 0xFFFFFFFF, and a final XOR of 0xFFFFFFFF. This differs from the
// zlib/gzip CRC-32, which is bit-reflected.
type CRC32 interface {
	Init()
	Update(b byte)
	Finalize() uint32
}

// ieeeCRC32 computes the CRC-32 used by BZip2 on top of the standard
// library's IEEE table. BZip2 treats bits within a byte as big-endian, so
// bytes are bit-reversed before being folded into the (little-endian) IEEE
// polynomial, and the result is reversed back on the way out.
type ieeeCRC32 struct {
	val uint32
}

func (c *ieeeCRC32) Init() { c.val = 0 }

func (c *ieeeCRC32) Update(b byte) {
	cval := internal.ReverseUint32(c.val)
	cval = crc32.Update(cval, crc32.IEEETable, []byte{internal.ReverseLUT[b]})
	c.val = internal.ReverseUint32(cval)
}

func (c *ieeeCRC32) Finalize() uint32 { return c.val }

// combineCRC folds a just-finished block checksum into the stream-wide
// combined checksum using BZip2's ad hoc algebra: rotate the accumulator
// left by one bit, then XOR in the new block's checksum. This is not a
// generic CRC concatenation (which would need the length of the second
// operand); it is simply what the reference implementation does.
func combineCRC(combined, block uint32) uint32 {
	return (combined<<1 | combined>>31) ^ block
}
