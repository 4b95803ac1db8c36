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
	"fmt"
	"math/big"
	"math/bits"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
)

// fr2Adicity is the 2-adicity of the BLS12-381 scalar field: r-1 has exactly
// 2^32 as a factor, so Fr contains a multiplicative subgroup of every power
// of two order up to 2^32.
const fr2Adicity = 32

// frRootOfUnity is a primitive 2^32-th root of unity in Fr, i.e. a generator
// of the order-2^32 subgroup. Every primitive n-th root used by this
// package (n = 2^k, k <= 32) is derived from it by exponentiation.
var frRootOfUnity = mustFrFromDecimal("10238227357739495823651030575849232062558860180284477541189508159991286009131")

func mustFrFromDecimal(s string) fr.Element {
	var e fr.Element
	if _, err := e.SetString(s); err != nil {
		panic(fmt.Sprintf("kzg4844: invalid embedded constant %q: %v", s, err))
	}
	return e
}

// log2Exact returns log2(n) if n is an exact power of two in [1, 2^32], and
// an error otherwise.
func log2Exact(n uint64) (uint8, error) {
	if n == 0 || n&(n-1) != 0 {
		return 0, fmt.Errorf("%w: %d is not a power of two", ErrBadArgs, n)
	}
	k := bits.TrailingZeros64(n)
	if k > fr2Adicity {
		return 0, fmt.Errorf("%w: domain size 2^%d exceeds Fr's 2-adicity", ErrBadArgs, k)
	}
	return uint8(k), nil
}

// primitiveRootOfUnity returns a primitive n-th root of unity in Fr, where
// n = 2^logN.
func primitiveRootOfUnity(logN uint8) fr.Element {
	exp := new(big.Int).Lsh(big.NewInt(1), uint(fr2Adicity-logN))
	var root fr.Element
	root.Exp(frRootOfUnity, exp)
	return root
}

// rootsOfUnity computes ω^0..ω^n for a primitive n-th root ω, n = 2^logN,
// per spec §4.A: the returned slice has length n+1 and its last entry wraps
// back to 1.
func rootsOfUnity(logN uint8) []fr.Element {
	n := uint64(1) << logN
	gen := primitiveRootOfUnity(logN)

	roots := make([]fr.Element, n+1)
	roots[0].SetOne()
	for i := uint64(1); i <= n; i++ {
		roots[i].Mul(&roots[i-1], &gen)
	}
	return roots
}

// reverseBits reverses exactly width bits of value; the most-significant
// bit of the input reflects onto bit 0 of the output.
func reverseBits(value uint32, width uint8) uint32 {
	return bits.Reverse32(value) >> (32 - width)
}

// bitReversalPermuteInPlace reorders values (len(values) must be a power of
// two) into bit-reversal-permuted order, in place, via index-pair swaps.
// Used both as the internal first step of the in-place NTT (fft.go) and as
// the public wire-order <-> natural-order conversion for Lagrange values and
// cells (spec §4.B, §4.C).
func bitReversalPermuteInPlace[T any](values []T) {
	n := len(values)
	logN := uint8(bits.Len(uint(n)) - 1)
	for i := range values {
		j := int(reverseBits(uint32(i), logN))
		if j > i {
			values[i], values[j] = values[j], values[i]
		}
	}
}
