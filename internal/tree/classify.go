// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package tree

import (
	"bytes"
	"io"
	"os"

	"github.com/tfctl/pkgdiff/internal/failure"
)

const chunkSize = 32 * 1024

// Classify compares the bytes of two files. Sizes are checked first; equal
// sizes are then compared chunk by chunk. Modification times are never
// consulted.
func Classify(a, b string) (Classification, error) {
	ia, err := os.Stat(a)
	if err != nil {
		return Identical, failure.NewIO("stat", a, err)
	}
	ib, err := os.Stat(b)
	if err != nil {
		return Identical, failure.NewIO("stat", b, err)
	}
	if ia.Size() != ib.Size() {
		return ChangedOrNew, nil
	}

	fa, err := os.Open(a)
	if err != nil {
		return Identical, failure.NewIO("open", a, err)
	}
	defer fa.Close()
	fb, err := os.Open(b)
	if err != nil {
		return Identical, failure.NewIO("open", b, err)
	}
	defer fb.Close()

	bufA := make([]byte, chunkSize)
	bufB := make([]byte, chunkSize)
	for {
		na, errA := io.ReadFull(fa, bufA)
		nb, errB := io.ReadFull(fb, bufB)
		if errA != nil && errA != io.EOF && errA != io.ErrUnexpectedEOF {
			return Identical, failure.NewIO("read", a, errA)
		}
		if errB != nil && errB != io.EOF && errB != io.ErrUnexpectedEOF {
			return Identical, failure.NewIO("read", b, errB)
		}
		if !bytes.Equal(bufA[:na], bufB[:nb]) {
			return ChangedOrNew, nil
		}
		if errA != nil || errB != nil {
			// Both hit the end together unless a file changed size under us.
			if (errA == nil) != (errB == nil) {
				return ChangedOrNew, nil
			}
			return Identical, nil
		}
	}
}
