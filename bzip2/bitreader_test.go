// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package bzip2

import (
	"bytes"
	"testing"

	"github.com/dsnet/bzipsplit/internal/testutil"
)

func TestBitReader(t *testing.T) {
	var vectors = []struct {
		input string // BitGen format
		sizes []uint // Bit widths to read, in order
		want  []uint64
	}{{
		input: ">>> > 11010010",
		sizes: []uint{1, 1, 1, 1, 1, 1, 1, 1},
		want:  []uint64{1, 1, 0, 1, 0, 0, 1, 0},
	}, {
		input: ">>> > 11010010 11111111",
		sizes: []uint{8, 8},
		want:  []uint64{0xd2, 0xff},
	}, {
		input: ">>> > H16:abcd",
		sizes: []uint{4, 4, 4, 4},
		want:  []uint64{0xa, 0xb, 0xc, 0xd},
	}, {
		input: ">>> > H32:deadbeef",
		sizes: []uint{32},
		want:  []uint64{0xdeadbeef},
	}}

	for i, v := range vectors {
		var br bitReader
		br.init(bytes.NewReader(testutil.MustDecodeBitGen(v.input)))
		for j, n := range v.sizes {
			got := br.readBits(n)
			if got != v.want[j] {
				t.Errorf("test %d, read %d: got %#x, want %#x", i, j, got, v.want[j])
			}
		}
	}
}

func TestBitReaderExhausted(t *testing.T) {
	var br bitReader
	br.init(bytes.NewReader(nil))

	var err error
	func() {
		defer recoverError(&err)
		br.readBits(1)
	}()
	if err == nil {
		t.Fatal("expected an error reading past the end of an empty source")
	}
	if err.(Error).Code != UnexpectedEndOfStream {
		t.Errorf("got code %v, want UnexpectedEndOfStream", err.(Error).Code)
	}
}

func TestBitReaderBytesConsumed(t *testing.T) {
	var br bitReader
	br.init(bytes.NewReader([]byte{0xff, 0x00, 0xff}))
	br.readBits(4)
	if got := br.bytesConsumed(); got != 1 {
		t.Errorf("after 4 bits: got %d bytes consumed, want 1", got)
	}
	br.readBits(5)
	if got := br.bytesConsumed(); got != 2 {
		t.Errorf("after 9 bits: got %d bytes consumed, want 2", got)
	}
	br.readBits(15)
	if got := br.bytesConsumed(); got != 3 {
		t.Errorf("after 24 bits: got %d bytes consumed, want 3", got)
	}
}
