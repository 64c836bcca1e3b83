// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package bzip2

// positionTracker reports, in BYBLOCK mode, the compressed byte offset a
// caller should use as the start of the next independent decode: the offset
// of the most recently found block marker, expressed in bytes consumed from
// the underlying source. It never reports a value smaller than one it has
// already reported, even if an internal resync walks the bit cursor
// backwards relative to a byte boundary.
type positionTracker struct {
	raw      int64 // Most recently observed marker offset (or bytes consumed at exhaustion)
	reported int64 // Last value handed back to the caller
}

func (pt *positionTracker) reset() { *pt = positionTracker{} }

// observe records a fresh raw byte offset, typically the value returned by
// markerScanner.scanFor.
func (pt *positionTracker) observe(n int64) {
	pt.raw = n
}

// current returns the monotonic, caller-visible offset for the most recent
// observation.
func (pt *positionTracker) current() int64 {
	if pt.raw > pt.reported {
		pt.reported = pt.raw
	}
	return pt.reported
}

// adjust forces the next reported offset to be at least n, used to let a
// caller resume a split exactly where a previous worker left off even if
// this reader's own resync landed earlier.
func (pt *positionTracker) adjust(n int64) {
	if n > pt.reported {
		pt.reported = n
	}
}
