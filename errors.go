// Copyright 2024 The go-kzg-peerdas Authors
// This file is part of the go-kzg-peerdas library.
//
// The go-kzg-peerdas library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-kzg-peerdas library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-kzg-peerdas library. If not, see <http://www.gnu.org/licenses/>.

package kzg4844

import "errors"

// The three error kinds a caller of this package needs to distinguish.
// Pairing mismatches are never reported as errors: VerifyKZGProof and its
// relatives return (false, nil) when a proof simply fails to verify.
var (
	// ErrBadArgs wraps any input that fails a length, canonicality,
	// subgroup-membership, index-range or duplicate-index check, or an
	// empty batch where a non-empty one is required.
	ErrBadArgs = errors.New("kzg4844: bad arguments")

	// ErrInternal wraps a precondition that should hold by construction but
	// didn't (e.g. the vanishing polynomial vanishing on the shifted coset
	// during recovery, or a failure inside the pairing library). Too few
	// distinct cells for recovery is reported as ErrBadArgs.
	ErrInternal = errors.New("kzg4844: internal error")

	// ErrMalloc is returned in place of a runtime out-of-memory panic at
	// the public API boundary, mirroring the C library's C_KZG_MALLOC
	// return code. Go's allocator panics rather than returning an error,
	// so this is surfaced only via the recover in withAllocGuard.
	ErrMalloc = errors.New("kzg4844: allocation failed")

	// ErrSettingsNotLoaded is returned when an operation is attempted on a
	// Settings value that was never populated by LoadTrustedSetup, or on
	// one already passed to Destroy. Per spec this is a programmer error,
	// not a data validation failure, but this package reports it as a
	// plain error rather than panicking so library callers can decide how
	// to treat it.
	ErrSettingsNotLoaded = errors.New("kzg4844: settings not loaded")
)

// withAllocGuard runs fn and converts any panic it raises, whatever its
// value (for example one raised while allocating a large slice), into
// ErrMalloc, so that the
// public operations below fail the same way the C-ABI entrypoints they
// stand in for would, instead of crashing the process.
func withAllocGuard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(error); ok {
				err = ErrMalloc
				return
			}
			err = ErrMalloc
		}
	}()
	return fn()
}
