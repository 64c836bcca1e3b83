// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package bzip2

import "io"

// Mode selects between the two ways this package can walk a compressed
// stream.
type Mode int

const (
	// CONTINUOUS decodes a complete BZip2 stream (including any
	// concatenated multistream members) from its header onward, the way a
	// plain decompressor would.
	CONTINUOUS Mode = iota

	// BYBLOCK decodes block by block, resynchronizing to the next marker
	// at every boundary rather than trusting byte alignment. It tolerates
	// starting mid-stream (no header), and after every decoded block it
	// makes the compressed byte offset of the marker that ends that block
	// available through ReportedOffset, so a caller coordinating several workers over
	// disjoint byte ranges of the same compressed file can pick exact
	// split points.
	BYBLOCK
)

// ReaderConfig configures a Reader or SplitReader.
type ReaderConfig struct {
	Mode Mode

	// BlockSize100k must be set when constructing a SplitReader that starts
	// mid-stream (no stream header available to read it from). It is
	// ignored otherwise.
	BlockSize100k int

	// CRC32 constructs the checksum implementation used for both per-block
	// and, in CONTINUOUS mode, combined-stream verification. If nil, the
	// package's own ieeeCRC32 is used.
	CRC32 func() CRC32
}

func (cfg *ReaderConfig) newCRC32() CRC32 {
	if cfg.CRC32 != nil {
		return cfg.CRC32()
	}
	return new(ieeeCRC32)
}

// decoder holds the state shared by Reader and SplitReader: the bit cursor,
// block decoding scratch space, and the output byte cursor that Read drains
// from.
type decoder struct {
	br  bitReader
	ms  markerScanner
	pos positionTracker
	bd  blockDecoder
	rle runLengthEncoding

	cfg           ReaderConfig
	blockSize100k int
	combinedCRC   uint32
	blockCRC      CRC32

	out    []byte
	outPos int

	// haveLookahead/lookaheadKind cache a marker scan performed ahead of
	// where decoding has reached, so that a BYBLOCK ReportedOffset taken at
	// the moment ErrEndOfBlock is returned for a block already reflects the
	// marker that ends it rather than the one that started it.
	haveLookahead bool
	lookaheadKind int

	// pendingEndOfBlock is set once a BYBLOCK decoder has delivered every
	// byte of the block currently in out; the next call to read that finds
	// no more buffered output returns ErrEndOfBlock instead of decoding on.
	pendingEndOfBlock bool

	// pendingBlockErr holds a block CRC mismatch discovered while decoding
	// the block currently sitting in out. It is not raised until out has
	// been fully drained by read, so a caller always receives every byte of
	// a block before learning its checksum didn't match.
	pendingBlockErr error

	atStreamEnd bool
	closed      bool
	err         error
}

func (d *decoder) init(r io.Reader, cfg ReaderConfig) {
	*d = decoder{cfg: cfg}
	d.br.init(r)
	d.ms.br = &d.br
	d.blockCRC = cfg.newCRC32()
}

// readStreamHeader consumes "h" followed by a block-size digit. The leading
// "BZ" magic is not read here; a caller that has its own copy of those two
// bytes strips them before handing the reader its source. readStreamHeader
// returns false if the source was cleanly exhausted before any header byte
// was read (reported by the constructors as empty input), and panics on
// anything else that does not match.
func (d *decoder) readStreamHeader() (ok bool) {
	b0, eof := d.tryReadUByte()
	if eof {
		return false
	}
	if b0 != 'h' {
		panicf(BadStreamHeader, "bad stream magic")
	}
	digit := d.br.readUByte()
	if digit < '1'+minBlockSize100k-1 || digit > '0'+maxBlockSize100k {
		panicf(BadStreamHeader, "invalid block size digit: %q", digit)
	}
	d.blockSize100k = int(digit - '0')
	d.combinedCRC = 0
	return true
}

// tryReadUByte reads one byte, reporting eof=true (without panicking) only
// if the underlying source was exhausted with no bits at all buffered or
// pending, i.e. a clean boundary between multistream members.
func (d *decoder) tryReadUByte() (b byte, eof bool) {
	defer func() {
		switch ex := recover().(type) {
		case nil:
		case Error:
			if ex.Code == UnexpectedEndOfStream && d.br.live == 0 {
				eof = true
				return
			}
			panic(ex)
		default:
			panic(ex)
		}
	}()
	return d.br.readUByte(), false
}

// primeLookahead scans ahead for the marker that a SplitReader's next
// decodeOneBlock call will consume, so that ReportedOffset is meaningful
// even before the first block has been decoded.
func (d *decoder) primeLookahead() {
	kind, off := d.ms.scanForBoundary()
	d.pos.observe(off)
	if kind == -1 {
		panicf(UnexpectedEndOfStream, "source exhausted while scanning for a block or end-of-stream marker")
	}
	d.lookaheadKind = kind
	d.haveLookahead = true
}

// decodeOneBlock scans for the next marker, and if it is a block start,
// decodes that block into d.out ready for Read to drain. It returns false
// once the end-of-stream marker has been consumed.
func (d *decoder) decodeOneBlock(multistream bool) bool {
	for {
		var kind int
		if d.haveLookahead {
			kind = d.lookaheadKind
			d.haveLookahead = false
		} else {
			var off int64
			kind, off = d.ms.scanForBoundary()
			d.pos.observe(off)
			if kind == -1 {
				panicf(UnexpectedEndOfStream, "source exhausted while scanning for a block or end-of-stream marker")
			}
		}
		if kind == 1 {
			storedCombined := d.br.readInt32()
			if multistream && storedCombined != d.combinedCRC {
				// Only a reader that has seen every block since the stream
				// header can meaningfully check this; a SplitReader handed
				// an arbitrary byte range has not, so it skips the check.
				panicf(CRCMismatch, "combined stream checksum mismatch: got %#08x, want %#08x", d.combinedCRC, storedCombined)
			}
			if !multistream {
				return false
			}
			// A stream member ends padded to a byte boundary, and a
			// following member begins with its own "BZ" magic.
			d.br.readBits(d.br.live)
			b, eof := d.tryReadUByte()
			if eof {
				return false
			}
			if b != 'B' || d.br.readUByte() != 'Z' {
				panicf(BadStreamHeader, "bad stream magic")
			}
			if !d.readStreamHeader() {
				panicf(UnexpectedEndOfStream, "source exhausted after stream magic")
			}
			continue
		}

		ptr, ll8, randomized, storedCRC := d.bd.decode(&d.br, d.blockSize100k)
		decodeBWT(ll8, ptr, randomized)

		d.rle.Init(ll8)
		d.blockCRC.Init()
		d.out = growByte(d.out, 0)
		var buf [4096]byte
		for {
			n, err := d.rle.Read(buf[:])
			for _, b := range buf[:n] {
				d.blockCRC.Update(b)
			}
			d.out = append(d.out, buf[:n]...)
			if err == rleDone {
				break
			}
			if err != nil {
				panic(err)
			}
		}
		gotCRC := d.blockCRC.Finalize()
		d.outPos = 0
		if gotCRC != storedCRC {
			// Deferred: the block's bytes are already in d.out and must
			// reach the caller before this is raised, so it is not
			// panicked here. See read's drain check below.
			d.pendingBlockErr = errorf(CRCMismatch, "block checksum mismatch: got %#08x, want %#08x", gotCRC, storedCRC)
		} else {
			d.combinedCRC = combineCRC(d.combinedCRC, gotCRC)
		}

		if !multistream {
			// Look ahead now, while this block's bytes are still sitting in
			// d.out, so that ReportedOffset reflects the marker ending this
			// block as soon as Read signals ErrEndOfBlock for it.
			nextKind, nextOff := d.ms.scanForBoundary()
			d.pos.observe(nextOff)
			if nextKind == -1 {
				panicf(UnexpectedEndOfStream, "source exhausted while scanning for a block or end-of-stream marker")
			}
			d.lookaheadKind = nextKind
			d.haveLookahead = true
		}
		return true
	}
}

func (d *decoder) read(p []byte, multistream bool) (n int, err error) {
	if d.closed {
		return 0, errClosed
	}
	if d.err != nil {
		return 0, d.err
	}
	defer recoverError(&d.err)
	for n < len(p) {
		if d.outPos >= len(d.out) {
			if d.pendingBlockErr != nil {
				err := d.pendingBlockErr
				d.pendingBlockErr = nil
				panic(err)
			}
			if !multistream && d.pendingEndOfBlock {
				d.pendingEndOfBlock = false
				return n, ErrEndOfBlock
			}
			if d.atStreamEnd {
				return n, io.EOF
			}
			if !d.decodeOneBlock(multistream) {
				d.atStreamEnd = true
				if n > 0 {
					return n, nil
				}
				return n, io.EOF
			}
			continue
		}
		k := copy(p[n:], d.out[d.outPos:])
		n += k
		d.outPos += k
		if !multistream && d.outPos >= len(d.out) {
			d.pendingEndOfBlock = true
		}
	}
	return n, nil
}

func (d *decoder) close() error {
	d.closed = true
	d.out, d.outPos = nil, 0
	d.bd = blockDecoder{}
	return nil
}

// Reader decompresses a complete BZip2 stream, including any concatenated
// multistream members, the way an ordinary decompressor would.
type Reader struct{ d decoder }

// NewReader returns a Reader that decompresses r. If cfg.Mode is BYBLOCK,
// NewReader returns an InvalidArgument error; use NewSplitReader instead.
func NewReader(r io.Reader, cfg ReaderConfig) (*Reader, error) {
	if cfg.Mode != CONTINUOUS {
		return nil, errorf(InvalidArgument, "NewReader requires CONTINUOUS mode")
	}
	z := &Reader{}
	z.d.init(r, cfg)
	var err error
	func() {
		defer recoverError(&err)
		if !z.d.readStreamHeader() {
			err = errorf(BadStreamHeader, "empty input")
		}
	}()
	if err != nil {
		return nil, err
	}
	return z, nil
}

func (z *Reader) Read(p []byte) (int, error) { return z.d.read(p, true) }
func (z *Reader) Close() error               { return z.d.close() }

// SplitReader decompresses a BZip2 stream block by block, resynchronizing
// to the next marker at every boundary, and reports the compressed byte
// offset of each block boundary as it crosses it.
type SplitReader struct{ d decoder }

// NewSplitReader returns a SplitReader over r. If cfg.BlockSize100k is
// zero, r is expected to begin with a normal stream header, exactly like
// NewReader; otherwise r may begin at an arbitrary bit position within a
// stream body and cfg.BlockSize100k supplies the block size that would
// otherwise have come from that header.
func NewSplitReader(r io.Reader, cfg ReaderConfig) (*SplitReader, error) {
	if cfg.Mode != BYBLOCK {
		return nil, errorf(InvalidArgument, "NewSplitReader requires BYBLOCK mode")
	}
	z := &SplitReader{}
	z.d.init(r, cfg)

	var err error
	func() {
		defer recoverError(&err)
		if cfg.BlockSize100k != 0 {
			if cfg.BlockSize100k < minBlockSize100k || cfg.BlockSize100k > maxBlockSize100k {
				panicf(InvalidArgument, "invalid BlockSize100k: %d", cfg.BlockSize100k)
			}
			z.d.blockSize100k = cfg.BlockSize100k
		} else if !z.d.readStreamHeader() {
			panicf(BadStreamHeader, "empty input")
		}
		z.d.primeLookahead()
	}()
	if err != nil {
		return nil, err
	}
	return z, nil
}

func (z *SplitReader) Read(p []byte) (int, error) { return z.d.read(p, false) }
func (z *SplitReader) Close() error               { return z.d.close() }

// ReportedOffset returns the compressed byte offset, relative to the start
// of the underlying reader, of the most recently found block or
// end-of-stream marker. The marker ending a block is found as soon as that
// block is decoded, so the offset already reflects it while the block's
// bytes are being returned and when ErrEndOfBlock is returned for it. It
// never decreases between calls.
func (z *SplitReader) ReportedOffset() int64 { return z.d.pos.current() }

// AdjustReportedOffset raises the floor for future ReportedOffset results
// to at least n, letting a caller pick up a split exactly where a previous
// worker's range ended even if this reader's own resync lands earlier.
func (z *SplitReader) AdjustReportedOffset(n int64) { z.d.pos.adjust(n) }
