// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package bzip2

import "testing"

func TestPositionTrackerMonotonic(t *testing.T) {
	var pt positionTracker
	pt.observe(100)
	if got := pt.current(); got != 100 {
		t.Fatalf("got %d, want 100", got)
	}
	// A backwards resync (e.g. a scan that lands earlier relative to a
	// prior adjustment) must not move the reported value backwards.
	pt.observe(40)
	if got := pt.current(); got != 100 {
		t.Fatalf("after regressive observe: got %d, want 100", got)
	}
	pt.observe(250)
	if got := pt.current(); got != 250 {
		t.Fatalf("got %d, want 250", got)
	}
}

func TestPositionTrackerAdjust(t *testing.T) {
	var pt positionTracker
	pt.observe(10)
	pt.adjust(500)
	if got := pt.current(); got != 500 {
		t.Fatalf("got %d, want 500", got)
	}
	// adjust never lowers the floor.
	pt.adjust(200)
	if got := pt.current(); got != 500 {
		t.Fatalf("after lowering adjust: got %d, want 500", got)
	}
}

func TestPositionTrackerReset(t *testing.T) {
	var pt positionTracker
	pt.observe(999)
	pt.reset()
	if got := pt.current(); got != 0 {
		t.Fatalf("after reset: got %d, want 0", got)
	}
}
