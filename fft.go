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
	"golang.org/x/sync/errgroup"
)

// parallelFFTThreshold is the stage size above which butterfly work for a
// single Cooley-Tukey stage is split across goroutines. Below it the
// goroutine dispatch overhead exceeds the saving (spec §5 permits
// parallelism as long as results stay bit-identical to the sequential path,
// which a per-stage, per-butterfly-pair split trivially satisfies: each
// butterfly only touches its own pair).
const parallelFFTThreshold = 1 << 10

// fftFr performs an in-place radix-2 Cooley-Tukey DIT FFT on values, whose
// length n must be a power of two. roots must hold the n-th roots of unity
// ω^0..ω^(n-1) (e.g. the first n entries of rootsOfUnity(log2(n))). Input is
// natural order, output is natural order (spec §4.B): the permutation to
// and from bit-reversed order is entirely an internal implementation detail
// of the butterfly network here.
func fftFr(values []fr.Element, roots []fr.Element) {
	n := len(values)
	if n <= 1 {
		return
	}
	logN := uint8(bits.Len(uint(n)) - 1)
	bitReversalPermuteInPlace(values)

	for s := uint8(1); s <= logN; s++ {
		m := 1 << s
		half := m >> 1
		step := n / m
		runStage(n, m, func(k int) {
			for j := 0; j < half; j++ {
				w := roots[j*step]
				var t fr.Element
				t.Mul(&values[k+j+half], &w)
				u := values[k+j]
				values[k+j].Add(&u, &t)
				values[k+j+half].Sub(&u, &t)
			}
		})
	}
}

// ifftFr is the inverse of fftFr: it must be called with reverseRoots, the
// n-th roots of unity in reversed order (ω^0, ω^(n-1), ω^(n-2), ...), and
// scales the result by n^-1 mod r.
func ifftFr(values []fr.Element, reverseRoots []fr.Element) {
	n := len(values)
	if n <= 1 {
		return
	}
	fftFr(values, reverseRoots)

	var nInv fr.Element
	nInv.SetUint64(uint64(n)).Inverse(&nInv)
	runStage(n, 1, func(k int) {
		values[k].Mul(&values[k], &nInv)
	})
}

// fftG1 is the G1 analogue of fftFr (spec §4.B): butterflies use curve
// addition/subtraction and scalar multiplication by the Fr twiddle factor
// rather than field multiplication. It is used exclusively inside FK20.
func fftG1(values []bls12381.G1Jac, roots []fr.Element) {
	n := len(values)
	if n <= 1 {
		return
	}
	logN := uint8(bits.Len(uint(n)) - 1)
	bitReversalPermuteInPlace(values)

	for s := uint8(1); s <= logN; s++ {
		m := 1 << s
		half := m >> 1
		step := n / m
		runStage(n, m, func(k int) {
			for j := 0; j < half; j++ {
				var wBig big.Int
				roots[j*step].BigInt(&wBig)

				var t bls12381.G1Jac
				t.ScalarMultiplication(&values[k+j+half], &wBig)

				u := values[k+j]
				values[k+j].Set(&u).AddAssign(&t)
				values[k+j+half].Set(&u).SubAssign(&t)
			}
		})
	}
}

// ifftG1 is the inverse of fftG1 (see ifftFr).
func ifftG1(values []bls12381.G1Jac, reverseRoots []fr.Element) {
	n := len(values)
	if n <= 1 {
		return
	}
	fftG1(values, reverseRoots)

	var nInv fr.Element
	nInv.SetUint64(uint64(n)).Inverse(&nInv)
	var nInvBig big.Int
	nInv.BigInt(&nInvBig)

	runStage(n, 1, func(k int) {
		values[k].ScalarMultiplication(&values[k], &nInvBig)
	})
}

// runStage calls fn(k) for every stage-start index k = 0, m, 2m, ... < n,
// optionally fanning out across goroutines when the per-call work is large
// enough to be worth it. Each call touches disjoint indices, so the
// parallel and sequential paths always produce bit-identical results.
func runStage(n, m int, fn func(k int)) {
	if m < parallelFFTThreshold || n/m < 2 {
		for k := 0; k < n; k += m {
			fn(k)
		}
		return
	}
	var g errgroup.Group
	for k := 0; k < n; k += m {
		k := k
		g.Go(func() error {
			fn(k)
			return nil
		})
	}
	_ = g.Wait() // fn never errors
}
