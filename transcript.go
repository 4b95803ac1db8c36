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

import (
	"crypto/sha256"
	"encoding/binary"
	"hash"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
)

// Domain-separation tags for the three Fiat-Shamir challenges this package
// derives: the single-blob proof point and the two batch-verification
// combinations (spec §4.H). Each is fixed at 16 ASCII
// bytes, matching the convention used across the EIP-4844/7594 reference
// implementations so that a transcript produced by one conforming
// implementation is reproduced identically by another.
const (
	domainSingleBlobProof = "FSBLOBVERIFY_V1_"
	domainBlobBatch       = "RCKZGBATCH___V1_"
	domainCellBatch       = "RCKZGCBATCH__V1_"
)

// transcript implements the package's Fiat-Shamir challenge derivation: a
// single SHA-256 hash over a domain tag followed by a fixed-layout sequence
// of big-endian-encoded field elements, byte strings and little-endian
// lengths, reduced modulo r to produce the challenge scalar (spec §4.H).
type transcript struct {
	h hash.Hash
}

func newTranscript(domainTag string) *transcript {
	h := sha256.New()
	h.Write([]byte(domainTag))
	return &transcript{h: h}
}

func (t *transcript) appendUint64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	t.h.Write(b[:])
}

func (t *transcript) appendBytes(b []byte) {
	t.h.Write(b)
}

func (t *transcript) appendScalar(e *fr.Element) {
	b := e.Bytes()
	t.h.Write(b[:])
}

// challenge finalizes the transcript into a single Fr challenge, reducing
// the 32-byte SHA-256 digest modulo r.
func (t *transcript) challenge() fr.Element {
	sum := t.h.Sum(nil)
	var e fr.Element
	e.SetBytes(sum)
	return e
}

// computeRPowers derives the batch-verification combination coefficients
// R_0=1, R_1=r, ..., R_{n-1}=r^(n-1) from a single Fiat-Shamir challenge r,
// the standard random-linear-combination trick used by every batch-verify
// operation in this package (spec §4.F, §4.G).
func computeRPowers(r *fr.Element, n int) []fr.Element {
	powers := make([]fr.Element, n)
	if n == 0 {
		return powers
	}
	powers[0].SetOne()
	for i := 1; i < n; i++ {
		powers[i].Mul(&powers[i-1], r)
	}
	return powers
}
