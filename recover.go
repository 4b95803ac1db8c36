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

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
)

// RecoverCellsAndKZGProofs reconstructs every cell and its opening proof for
// an extended blob, given at least half (CellsPerExtBlob/2 = 64) of its 128
// cells (spec §4.G recover_cells_and_kzg_proofs). cellIndices and cells must
// be the same length and pairwise correspond; duplicate indices are
// collapsed, and at least minRecoveryCells distinct indices are required.
//
// As a SUPPLEMENTED FEATURE (see SPEC_FULL.md) the full 128-entry cell and
// proof arrays are always returned, including the cells the caller already
// had, rather than only the recovered subset: callers that need only the
// newly-recovered cells can diff against the indices they supplied.
func (s *Settings) RecoverCellsAndKZGProofs(cellIndices []uint64, cells []Cell) ([CellsPerExtBlob]Cell, [CellsPerExtBlob]Proof, error) {
	var outCells [CellsPerExtBlob]Cell
	var outProofs [CellsPerExtBlob]Proof

	if err := s.checkLoaded(); err != nil {
		return outCells, outProofs, err
	}
	if len(cellIndices) != len(cells) {
		return outCells, outProofs, fmt.Errorf("%w: cellIndices/cells length mismatch", ErrBadArgs)
	}

	present := make(map[uint64]Cell, len(cellIndices))
	for i, idx := range cellIndices {
		if idx >= CellsPerExtBlob {
			return outCells, outProofs, fmt.Errorf("%w: cell index %d out of range", ErrBadArgs, idx)
		}
		present[idx] = cells[i]
	}
	if len(present) < minRecoveryCells {
		return outCells, outProofs, fmt.Errorf("%w: only %d distinct cells, need at least %d", ErrBadArgs, len(present), minRecoveryCells)
	}

	var missing []uint64
	extBRPEval := make([]fr.Element, FieldElementsPerExtBlob)
	haveEval := make([]bool, FieldElementsPerExtBlob)

	for cellIdx := uint64(0); cellIdx < CellsPerExtBlob; cellIdx++ {
		c, ok := present[cellIdx]
		if !ok {
			missing = append(missing, cellIdx)
			continue
		}
		evals, err := cellToFrSlice(&c)
		if err != nil {
			return outCells, outProofs, err
		}
		for i, e := range evals {
			idx := cellIdx*FieldElementsPerCell + uint64(i)
			extBRPEval[idx] = e
			haveEval[idx] = true
		}
	}

	if len(missing) == 0 {
		for cellIdx := uint64(0); cellIdx < CellsPerExtBlob; cellIdx++ {
			outCells[cellIdx] = present[cellIdx]
		}
	} else {
		recovered, err := s.recoverExtendedEvaluations(extBRPEval, haveEval, missing)
		if err != nil {
			return outCells, outProofs, err
		}
		for cellIdx := uint64(0); cellIdx < CellsPerExtBlob; cellIdx++ {
			start := cellIdx * FieldElementsPerCell
			var c Cell
			for i := uint64(0); i < FieldElementsPerCell; i++ {
				s := frToScalar(&recovered[start+i])
				copy(c[i*ScalarSize:(i+1)*ScalarSize], s[:])
			}
			outCells[cellIdx] = c
		}
	}

	blob, err := cellsToBlob(&outCells)
	if err != nil {
		return outCells, outProofs, err
	}
	_, proofs, err := s.computeCellsAndProofsForBlob(blob)
	if err != nil {
		return outCells, outProofs, err
	}
	outProofs = proofs
	return outCells, outProofs, nil
}

// recoverExtendedEvaluations implements the coset-shifted Reed-Solomon
// erasure decoding at the heart of cell recovery (spec §4.G): it builds the
// vanishing polynomial Z(X) of the missing cells, evaluates E(X) = Z(X)*f(X)
// pointwise wherever f is known (zero at the missing points, where Z is also
// zero), then divides out Z in a coset shifted away from the extended
// domain's roots to avoid dividing by zero, recovering every evaluation of f.
func (s *Settings) recoverExtendedEvaluations(extBRPEval []fr.Element, haveEval []bool, missingCells []uint64) ([]fr.Element, error) {
	n := FieldElementsPerExtBlob
	zMonomial := vanishingPolynomialForMissingCells(missingCells, s.extBRPRoots)

	zEvalNatural := make([]fr.Element, n)
	copy(zEvalNatural, zMonomial)
	for i := len(zMonomial); i < n; i++ {
		zEvalNatural[i].SetZero()
	}
	fftFr(zEvalNatural, s.extRootsOfUnity[:n])
	zEvalBRP := append([]fr.Element(nil), zEvalNatural...)
	bitReversalPermuteInPlace(zEvalBRP)

	eEvalBRP := make([]fr.Element, n)
	for i := 0; i < n; i++ {
		if haveEval[i] {
			eEvalBRP[i].Mul(&extBRPEval[i], &zEvalBRP[i])
		}
	}

	eNatural := append([]fr.Element(nil), eEvalBRP...)
	bitReversalPermuteInPlace(eNatural)
	eCoeffs := append([]fr.Element(nil), eNatural...)
	ifftFr(eCoeffs, s.extReverseRootsOfUnity)

	zNatural := append([]fr.Element(nil), zEvalBRP...)
	bitReversalPermuteInPlace(zNatural)
	zCoeffs := append([]fr.Element(nil), zNatural...)
	ifftFr(zCoeffs, s.extReverseRootsOfUnity)

	var shift fr.Element
	shift.SetUint64(5) // any non-root-of-unity generator-derived shift works; 5 is not an odd-order element of Fr*
	shiftEToCoeffs(eCoeffs, &shift)
	shiftEToCoeffs(zCoeffs, &shift)

	fftFr(eCoeffs, s.extRootsOfUnity[:n])
	fftFr(zCoeffs, s.extRootsOfUnity[:n])

	fShiftedEval := make([]fr.Element, n)
	for i := 0; i < n; i++ {
		if zCoeffs[i].IsZero() {
			return nil, fmt.Errorf("%w: vanishing polynomial vanished on shifted coset", ErrInternal)
		}
		var inv fr.Element
		inv.Inverse(&zCoeffs[i])
		fShiftedEval[i].Mul(&eCoeffs[i], &inv)
	}

	ifftFr(fShiftedEval, s.extReverseRootsOfUnity)
	var shiftInv fr.Element
	shiftInv.Inverse(&shift)
	shiftEToCoeffs(fShiftedEval, &shiftInv)

	fftFr(fShiftedEval, s.extRootsOfUnity[:n])
	recoveredBRP := append([]fr.Element(nil), fShiftedEval...)
	bitReversalPermuteInPlace(recoveredBRP)

	for i, known := range haveEval {
		if known {
			recoveredBRP[i] = extBRPEval[i]
		}
	}
	return recoveredBRP, nil
}

// shiftEToCoeffs multiplies coefficient i of coeffs by shift^i in place,
// translating a polynomial's evaluations from the domain's roots of unity to
// a shifted coset (or back, when called with shift's inverse).
func shiftEToCoeffs(coeffs []fr.Element, shift *fr.Element) {
	var power fr.Element
	power.SetOne()
	for i := range coeffs {
		coeffs[i].Mul(&coeffs[i], &power)
		power.Mul(&power, shift)
	}
}

func cellToFrSlice(c *Cell) ([]fr.Element, error) {
	out := make([]fr.Element, FieldElementsPerCell)
	for i := 0; i < FieldElementsPerCell; i++ {
		if err := setCanonical(&out[i], c[i*ScalarSize:(i+1)*ScalarSize]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// cellsToBlob reassembles the original (non-extended) blob from a complete
// set of CellsPerExtBlob cells by taking every other extended-domain
// evaluation pair back to the base domain. Recovery always produces a full
// cell set before this is called, so this only runs once the erasure coding
// step above has filled every gap.
func cellsToBlob(cells *[CellsPerExtBlob]Cell) (*Blob, error) {
	extBRP := make([]fr.Element, FieldElementsPerExtBlob)
	for cellIdx := 0; cellIdx < CellsPerExtBlob; cellIdx++ {
		evals, err := cellToFrSlice(&cells[cellIdx])
		if err != nil {
			return nil, err
		}
		copy(extBRP[cellIdx*FieldElementsPerCell:], evals)
	}

	extNatural := append([]fr.Element(nil), extBRP...)
	bitReversalPermuteInPlace(extNatural)

	// The base-domain evaluation at root^(2i) sits at index 2i of the
	// natural-order extended evaluations (the extension interleaves a
	// coset's worth of new points between each pair of base points); this
	// recovers the base domain's evaluations in natural order. A blob's
	// on-wire Lagrange form is BRP order (spec §3), so the natural-order
	// base evaluations still need one more bit-reversal permutation before
	// they match what blobToPolynomial/BlobToKZGCommitment expect.
	baseNatural := make([]fr.Element, FieldElementsPerBlob)
	for i := 0; i < FieldElementsPerBlob; i++ {
		baseNatural[i] = extNatural[2*i]
	}
	bitReversalPermuteInPlace(baseNatural)

	var blob Blob
	for i := 0; i < FieldElementsPerBlob; i++ {
		s := frToScalar(&baseNatural[i])
		copy(blob[i*ScalarSize:(i+1)*ScalarSize], s[:])
	}
	return &blob, nil
}
