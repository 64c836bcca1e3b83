// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package bzip2

import (
	"bytes"
	"testing"

	"github.com/dsnet/bzipsplit/internal/testutil"
)

func TestMarkerScannerAligned(t *testing.T) {
	// The block marker immediately follows a byte-aligned stream header.
	data := testutil.MustDecodeBitGen(">>> > X:425a6839 H48:314159265359 X:00")
	var br bitReader
	br.init(bytes.NewReader(data))
	br.readBits(32) // Consume the "BZh9" header.

	var ms markerScanner
	ms.br = &br
	matched, off := ms.scanFor(blkMagic, 48)
	if !matched {
		t.Fatal("expected a match")
	}
	if off != 4 {
		t.Errorf("got byte offset %d, want 4", off)
	}
}

func TestMarkerScannerUnaligned(t *testing.T) {
	// Prefix the marker with 3 junk bits so it starts mid-byte.
	data := testutil.MustDecodeBitGen(">>> > 101 H48:314159265359")
	var br bitReader
	br.init(bytes.NewReader(data))

	var ms markerScanner
	ms.br = &br
	matched, off := ms.scanFor(blkMagic, 48)
	if !matched {
		t.Fatal("expected a match")
	}
	if off != 0 {
		t.Errorf("got byte offset %d, want 0", off)
	}
}

func TestMarkerScannerExhausted(t *testing.T) {
	data := testutil.MustDecodeBitGen(">>> 11111111 00000000")
	var br bitReader
	br.init(bytes.NewReader(data))

	var ms markerScanner
	ms.br = &br
	matched, _ := ms.scanFor(blkMagic, 48)
	if matched {
		t.Fatal("expected no match against unrelated data")
	}
}

func TestMarkerScannerBoundary(t *testing.T) {
	data := testutil.MustDecodeBitGen(">>> > H48:177245385090")
	var br bitReader
	br.init(bytes.NewReader(data))

	var ms markerScanner
	ms.br = &br
	kind, off := ms.scanForBoundary()
	if kind != 1 {
		t.Fatalf("got kind %d, want 1 (end-of-stream)", kind)
	}
	if off != 0 {
		t.Errorf("got byte offset %d, want 0", off)
	}
}
