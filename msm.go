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
	"math/big"
	"math/bits"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
)

// pippengerBucketBits picks the bucket-window width c for a variable-base
// multi-scalar-multiplication of n terms (spec §4.D): c grows with log2(n),
// clamped to a practical range where the per-bucket accumulation overhead
// stays worthwhile against the extra doublings of a larger window.
func pippengerBucketBits(n int) int {
	if n < 2 {
		return 1
	}
	c := bits.Len(uint(n)) - 3
	if c < 4 {
		c = 4
	}
	if c > 16 {
		c = 16
	}
	return c
}

// msmG1 computes sum(scalars[i] * points[i]) via windowed (Pippenger)
// accumulation, the variable-base path of spec §4.D: a single pass builds
// signed-digit buckets per window, each window is resolved by a running-sum
// sweep over its buckets, and windows are combined high-to-low by repeated
// doubling.
func msmG1(points []bls12381.G1Affine, scalars []fr.Element) (bls12381.G1Jac, error) {
	if len(points) != len(scalars) {
		return bls12381.G1Jac{}, ErrInternal
	}
	if len(points) == 0 {
		var zero bls12381.G1Jac
		return zero, nil
	}

	c := pippengerBucketBits(len(points))
	// One window beyond the scalar's top bit absorbs windowDigits' final carry.
	numWindows := fr.Bits/c + 1

	digits := make([][]int64, len(scalars))
	for i := range scalars {
		digits[i] = windowDigits(&scalars[i], c, numWindows)
	}

	var result bls12381.G1Jac // zero value is the point at infinity

	for w := numWindows - 1; w >= 0; w-- {
		if w != numWindows-1 {
			for i := 0; i < c; i++ {
				result.Double(&result)
			}
		}

		numBuckets := 1 << (c - 1)
		buckets := make([]bls12381.G1Jac, numBuckets+1)

		for i := range points {
			d := digits[i][w]
			if d == 0 {
				continue
			}
			var p bls12381.G1Jac
			p.FromAffine(&points[i])
			if d < 0 {
				p.Neg(&p)
				d = -d
			}
			buckets[d].AddAssign(&p)
		}

		var windowSum, running bls12381.G1Jac
		for b := numBuckets; b >= 1; b-- {
			running.AddAssign(&buckets[b])
			windowSum.AddAssign(&running)
		}
		result.AddAssign(&windowSum)
	}

	return result, nil
}

// windowDigits decomposes the scalar into numWindows signed c-bit digits in
// [-2^(c-1), 2^(c-1)], the representation used by both the Pippenger
// variable-base path and the fixed-base table lookup below. A carry
// propagates out of any window whose raw digit exceeds 2^(c-1).
func windowDigits(e *fr.Element, c, numWindows int) []int64 {
	var v big.Int
	bi := e.BigInt(&v)

	digits := make([]int64, numWindows)
	mask := int64(1<<uint(c)) - 1
	half := int64(1) << uint(c-1)

	var carry int64
	for w := 0; w < numWindows; w++ {
		shift := uint(w * c)
		var chunk big.Int
		chunk.Rsh(bi, shift)
		d := int64(chunk.Int64()&mask) + carry
		if d > half {
			d -= mask + 1
			carry = 1
		} else {
			carry = 0
		}
		digits[w] = d
	}
	return digits
}

// fixedBaseTable holds precomputed multiples of a single base point for the
// fixed-base windowed MSM (spec §4.D): each of the (256/wbits) windows gets
// its own 2^(wbits-1) signed-digit lookup table, so a full scalar
// multiplication costs one table lookup and one addition per window plus the
// doublings between windows -- identical cost structure to windowDigits'
// decomposition, reused here against a fixed rather than a variable base.
type fixedBaseTable struct {
	wbits      int
	numWindows int
	// table[w][d-1] = (d) * 2^(w*wbits) * base, for d in [1, 2^(wbits-1)]
	table [][]bls12381.G1Affine
}

// newFixedBaseTable precomputes the windowed multiples of base.
func newFixedBaseTable(base *bls12381.G1Affine, wbits int) *fixedBaseTable {
	numWindows := fr.Bits/wbits + 1 // room for windowDigits' final carry
	numEntries := 1 << (wbits - 1)

	t := &fixedBaseTable{wbits: wbits, numWindows: numWindows, table: make([][]bls12381.G1Affine, numWindows)}

	var windowBase bls12381.G1Jac
	windowBase.FromAffine(base)

	for w := 0; w < numWindows; w++ {
		entries := make([]bls12381.G1Jac, numEntries)
		entries[0].Set(&windowBase)
		for d := 1; d < numEntries; d++ {
			entries[d].Set(&entries[d-1]).AddAssign(&windowBase)
		}
		affine := bls12381.BatchJacobianToAffineG1(entries)
		t.table[w] = affine

		for i := 0; i < wbits; i++ {
			windowBase.Double(&windowBase)
		}
	}
	return t
}

// scalarMul multiplies the table's base point by e using the precomputed
// windows.
func (t *fixedBaseTable) scalarMul(e *fr.Element) bls12381.G1Jac {
	digits := windowDigits(e, t.wbits, t.numWindows)

	var result bls12381.G1Jac
	for w := 0; w < t.numWindows; w++ {
		d := digits[w]
		if d == 0 {
			continue
		}
		neg := d < 0
		if neg {
			d = -d
		}
		p := t.table[w][d-1]
		if neg {
			var np bls12381.G1Affine
			np.Neg(&p)
			result.AddMixed(&np)
		} else {
			result.AddMixed(&p)
		}
	}
	return result
}
