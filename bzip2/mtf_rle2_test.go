// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package bzip2

import "testing"

func TestMoveToFrontDecodeInto(t *testing.T) {
	var vectors = []struct {
		dict string // Initial dictionary, as a string of bytes
		syms []uint16
		want string
	}{{
		// No runs: every symbol is a plain dictionary reference.
		// dict[a,b,c] -sym2-> b, dict[b,a,c] -sym3-> c, dict[c,b,a] -sym2-> b.
		dict: "abc",
		syms: []uint16{2, 3, 2},
		want: "bcb",
	}, {
		// A single dictionary reference followed by a RUNA.
		dict: "abc",
		syms: []uint16{3, 0}, // select 'c' (moves to front), then RUNA = one more 'c'
		want: "cc",
	}, {
		// RUNA/RUNB encode (1<<cnt)|run - 1 repeats of the front entry.
		// RUNA RUNB RUNA encodes bits 0,1,0 -> run=0b010=2, cnt=3 -> count = (1<<3)|2 - 1 = 9.
		dict: "a",
		syms: []uint16{0, 1, 0},
		want: "aaaaaaaaa",
	}}

	for i, v := range vectors {
		var mtf moveToFront
		mtf.init([]byte(v.dict), 1<<20)
		got := string(mtf.decodeInto(nil, v.syms))
		if got != v.want {
			t.Errorf("test %d: got %q, want %q", i, got, v.want)
		}
	}
}

func TestMoveToFrontBlockOverrun(t *testing.T) {
	var mtf moveToFront
	mtf.init([]byte("a"), 4)

	var err error
	func() {
		defer recoverError(&err)
		mtf.decodeInto(nil, []uint16{0, 1, 1, 1, 1, 1}) // An absurdly large run.
	}()
	if err == nil || err.(Error).Code != BlockOverrun {
		t.Fatalf("expected BlockOverrun, got %v", err)
	}
}

func TestDecodeSelectorMTF(t *testing.T) {
	// Selectors reference groups 0, 2, 1, 0 via MTF codes over {0,1,2,3}.
	got := decodeSelectorMTF([]uint8{0, 2, 2, 2}, 4)
	want := []uint8{0, 2, 1, 0}
	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index %d: got %d, want %d", i, got[i], want[i])
		}
	}
}
