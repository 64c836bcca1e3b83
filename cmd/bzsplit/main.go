// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Command bzsplit decompresses a BZip2 file and, in --by-block mode, prints
// the compressed byte offset of every block boundary it crosses instead of
// (or alongside) the decompressed content. It exists mainly to exercise the
// bzip2 package's split-aware reading mode from the command line.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/dsnet/bzipsplit/bzip2"
)

var version = "0.0.0"

type cli struct {
	Input string `kong:"arg,help='BZip2 file to decompress; defaults to stdin if omitted.',optional"`

	ByBlock   bool  `kong:"help='Decode block by block, reporting boundary offsets, instead of decompressing the whole stream.'"`
	Offset    int64 `kong:"help='Byte offset within the input to start decoding from (only with --by-block).',default=0"`
	BlockSize int   `kong:"help='blockSize100k to assume when starting mid-stream (only with --by-block and a nonzero --offset).',default=0"`
	Quiet     bool  `kong:"help='Suppress decompressed output; print only block boundaries.',short='q'"`
	Debug     bool  `kong:"help='Enable debug logging.',short='d'"`
	Version   kong.VersionFlag `kong:"help='Show version and exit.'"`
}

func main() {
	var c cli
	kong.Parse(&c,
		kong.Name("bzsplit"),
		kong.Description("Decompress a BZip2 stream, optionally block by block."),
		kong.UsageOnError(),
		kong.Vars{"version": version},
	)

	if c.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}

	if err := run(&c); err != nil {
		logrus.Errorf("bzsplit: %+v", err)
		os.Exit(1)
	}
}

func run(c *cli) error {
	f, err := openInput(c.Input)
	if err != nil {
		return errors.Wrap(err, "opening input")
	}
	defer f.Close()

	if c.Offset > 0 {
		if _, err := f.Seek(c.Offset, io.SeekStart); err != nil {
			return errors.Wrap(err, "seeking to start offset")
		}
	} else {
		// The bzip2 package expects its caller to strip the "BZ" magic.
		var magic [2]byte
		if _, err := io.ReadFull(f, magic[:]); err != nil {
			return errors.Wrap(err, "reading stream magic")
		}
		if string(magic[:]) != "BZ" {
			return errors.New("input does not start with the BZip2 magic \"BZ\"")
		}
	}

	var out io.Writer = os.Stdout
	if c.Quiet {
		out = io.Discard
	}

	if c.ByBlock {
		return runByBlock(f, out, c.BlockSize)
	}
	return runContinuous(f, out)
}

func openInput(path string) (*os.File, error) {
	if path == "" || path == "-" {
		return os.Stdin, nil
	}
	return os.Open(path)
}

func runContinuous(r io.Reader, w io.Writer) error {
	zr, err := bzip2.NewReader(r, bzip2.ReaderConfig{Mode: bzip2.CONTINUOUS})
	if err != nil {
		return errors.Wrap(err, "opening stream")
	}
	defer zr.Close()

	if _, err := io.Copy(w, zr); err != nil {
		return errors.Wrap(err, "decompressing")
	}
	return nil
}

func runByBlock(r io.Reader, w io.Writer, blockSize100k int) error {
	zr, err := bzip2.NewSplitReader(r, bzip2.ReaderConfig{
		Mode:          bzip2.BYBLOCK,
		BlockSize100k: blockSize100k,
	})
	if err != nil {
		return errors.Wrap(err, "opening split reader")
	}
	defer zr.Close()

	buf := make([]byte, 64*1024)
	var lastOffset int64 = -1
	for {
		n, err := zr.Read(buf)
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				return errors.Wrap(werr, "writing output")
			}
		}
		if off := zr.ReportedOffset(); off != lastOffset {
			fmt.Fprintf(os.Stderr, "block boundary at compressed offset %d\n", off)
			lastOffset = off
		}
		switch err {
		case io.EOF:
			return nil
		case bzip2.ErrEndOfBlock:
			// Expected at every block boundary; keep reading.
		case nil:
		default:
			return errors.Wrap(err, "decoding block")
		}
	}
}
