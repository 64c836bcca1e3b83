// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package bzip2

import (
	"bytes"
	"testing"

	"github.com/dsnet/bzipsplit/internal/testutil"
)

func decodeOrPanic(t *testing.T, bitgen string) (err error) {
	t.Helper()
	var br bitReader
	br.init(bytes.NewReader(testutil.MustDecodeBitGen(bitgen)))
	var bd blockDecoder
	func() {
		defer recoverError(&err)
		bd.decode(&br, 1)
	}()
	return err
}

func TestBlockDecoderNoUsedBytes(t *testing.T) {
	// storedCRC(32) + randomized(1) + origPtr(24) + empty used-group bitmap(16).
	err := decodeOrPanic(t, ">>> H32:00000000 0 H24:000000 H16:0000")
	if err == nil || err.(Error).Code != BadBlockHeader {
		t.Fatalf("expected BadBlockHeader, got %v", err)
	}
}

func TestBlockDecoderBadNumTables(t *testing.T) {
	// One used byte (group 0, bit 0), then nGroups = 7 (invalid: max 6).
	err := decodeOrPanic(t, ">>> > H32:00000000 0 H24:000000 H16:8000 H16:8000 D3:7")
	if err == nil || err.(Error).Code != TableMalformed {
		t.Fatalf("expected TableMalformed, got %v", err)
	}
}

func TestBlockDecoderZeroSelectors(t *testing.T) {
	// One used byte, nGroups = 2, nSelectors = 0 (invalid: must be >= 1).
	err := decodeOrPanic(t, ">>> H32:00000000 0 H24:000000 H16:8000 H16:8000 D3:2 D15:0")
	if err == nil || err.(Error).Code != TableMalformed {
		t.Fatalf("expected TableMalformed, got %v", err)
	}
}

func TestBlockDecoderSelectorOutOfRange(t *testing.T) {
	// nGroups = 2, first selector's unary MTF code never terminates within
	// range: three 1-bits before a 0 selects group 3, which doesn't exist.
	err := decodeOrPanic(t, ">>> H32:00000000 0 H24:000000 H16:8000 H16:8000 D3:2 D15:1 111")
	if err == nil || err.(Error).Code != TableMalformed {
		t.Fatalf("expected TableMalformed, got %v", err)
	}
}

func TestBlockDecoderDecodesSymbolStream(t *testing.T) {
	// One used byte, two Huffman tables (the minimum), one selector picking
	// table 0, both tables given a flat 2-bit code over the 3-symbol
	// alphabet {RUNA, RUNB, EOB} (so RUNA = "00", RUNB = "01", EOB = "10"),
	// then the symbol stream RUNA, EOB: a run of length 1 of the block's
	// only byte value, terminated immediately. This drives decode() past
	// the header fields into the per-group MTF decode loop (the selector
	// rollover at groupPos/selIdx) that the other tests in this file, which
	// all panic on a malformed header before reaching it, never exercise.
	bitgen := ">>> H32:00000000 0 H24:000000 H16:8000 H16:8000" +
		" >D3:2 >D15:1 0" +
		" >D5:2 000 >D5:2 000" +
		" 00 >10"

	var br bitReader
	br.init(bytes.NewReader(testutil.MustDecodeBitGen(bitgen)))
	var bd blockDecoder
	ptr, ll8, randomized, storedCRC := bd.decode(&br, 1)

	if ptr != 0 {
		t.Errorf("got ptr %d, want 0", ptr)
	}
	if randomized {
		t.Error("got randomized = true, want false")
	}
	if storedCRC != 0 {
		t.Errorf("got storedCRC %#08x, want 0", storedCRC)
	}
	want := []byte{bd.symToByte[0]}
	if !bytes.Equal(ll8, want) {
		t.Errorf("got ll8 %v, want %v (one byte, a run of length 1 of the block's only used byte value)", ll8, want)
	}
}
