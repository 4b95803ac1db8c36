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

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
)

// FK20 (Feist-Khovratovich) computes all CellsPerExtBlob cell opening proofs
// for a blob in O(n log n) field and group operations, instead of the O(n^2)
// an independent per-cell quotient-and-commit would cost (spec §4.G).
//
// The underlying h-vector this package needs is the product of a block
// Toeplitz matrix (built from the monomial-basis SRS points) against the
// polynomial's coefficient vector. Both matrix and coefficient vector
// decompose into fk20NumColumns=64 interleaved blocks of length
// FieldElementsPerCell=64 (block j takes every 64th coefficient starting at
// j); each column/block pair contributes one cyclic convolution, computed
// via FFT, and the column contributions are summed before a final inverse
// transform recovers the h-vector. Settings-time precomputation
// (buildFK20Columns) runs the column side once, independent of any blob;
// computeFK20Proofs runs the coefficient side per blob and combines it with
// the stored columns.
const (
	fk20NumColumns = FieldElementsPerBlob / FieldElementsPerCell // 64
	fk20ColumnLen  = 2 * FieldElementsPerCell                    // 128, matches CellsPerExtBlob
)

// buildFK20Columns runs the Settings-time half of FK20: for each of the 64
// interleaved coefficient blocks, it builds the column vector of the block
// Toeplitz matrix implied by the monomial SRS, zero-extends it to
// fk20ColumnLen and G1-FFTs it so it can be combined with any blob's
// coefficient-side transform by a later elementwise multiply-and-accumulate.
func buildFK20Columns(g1Monomial []bls12381.G1Affine, extReverseRoots []fr.Element) [][]bls12381.G1Jac {
	columns := make([][]bls12381.G1Jac, fk20NumColumns)

	for j := 0; j < fk20NumColumns; j++ {
		vec := make([]bls12381.G1Jac, fk20ColumnLen)
		// Reversed, zero-padded-to-double-length SRS block: the standard
		// FK20 construction that turns a length-64 Toeplitz matrix-vector
		// product into a length-128 cyclic convolution with no wraparound.
		for i := 0; i < FieldElementsPerCell; i++ {
			srcIdx := FieldElementsPerBlob - 1 - (i*fk20NumColumns + j)
			vec[i].FromAffine(&g1Monomial[srcIdx])
		}
		fftG1(vec, extReverseRoots)
		columns[j] = vec
	}
	return columns
}

// computeFK20Proofs evaluates all CellsPerExtBlob proof commitments for a
// blob whose monomial-basis coefficients are coeffs (length
// FieldElementsPerBlob), using the Settings-time precomputation in
// s.fk20Columns. The result is in natural (non-permuted) cell order; callers
// that need wire order must bit-reversal-permute it themselves
// (computeCellsAndProofsForBlob does, since its cells are in that order too).
func (s *Settings) computeFK20Proofs(coeffs []fr.Element) []bls12381.G1Jac {
	freqSlots := make([]bls12381.G1Jac, fk20ColumnLen)
	useTables := s.fixedBaseTables != nil

	for j := 0; j < fk20NumColumns; j++ {
		block := make([]fr.Element, fk20ColumnLen)
		for i := 0; i < FieldElementsPerCell; i++ {
			block[i] = coeffs[i*fk20NumColumns+j]
		}
		fftFr(block, s.fk20DomainRoots)

		for slot := 0; slot < fk20ColumnLen; slot++ {
			var term bls12381.G1Jac
			if useTables {
				term = s.fixedBaseTables[j][slot].scalarMul(&block[slot])
			} else {
				var scalarBig big.Int
				block[slot].BigInt(&scalarBig)
				term.ScalarMultiplication(&s.fk20Columns[j][slot], &scalarBig)
			}
			freqSlots[slot].AddAssign(&term)
		}
	}

	ifftFFTProofVector(freqSlots, s.fk20DomainReverseRoots, s.fk20DomainRoots)
	return freqSlots
}

// buildFK20FixedBaseTables precomputes a windowed table for every
// (column, slot) entry of the Settings-time FK20 transform, so that
// computeFK20Proofs can replace each per-blob variable-scalar point
// multiplication with a fixed-base table lookup (spec §4.D fixed-base path).
func buildFK20FixedBaseTables(columns [][]bls12381.G1Jac, wbits int) [][]*fixedBaseTable {
	tables := make([][]*fixedBaseTable, len(columns))
	for j, col := range columns {
		row := make([]*fixedBaseTable, len(col))
		affine := bls12381.BatchJacobianToAffineG1(col)
		for slot := range col {
			row[slot] = newFixedBaseTable(&affine[slot], wbits)
		}
		tables[j] = row
	}
	return tables
}

// ifftFFTProofVector inverts the length-128 frequency-domain accumulation
// back to the h-vector, truncates to the first FieldElementsPerCell entries
// (the only ones carrying real Toeplitz output; the rest is convolution
// padding) and re-extends by a forward transform to evaluate proof
// commitments at every one of the 128 extended-domain points, the final step
// of the standard FK20 "h-vector to openings" amortization.
func ifftFFTProofVector(values []bls12381.G1Jac, extReverseRoots, extRootsHalf []fr.Element) {
	ifftG1(values, extReverseRoots)
	for i := FieldElementsPerCell; i < fk20ColumnLen; i++ {
		values[i] = bls12381.G1Jac{}
	}
	fftG1(values, extRootsHalf)
}
