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

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
)

// ComputeCells extends a blob's 4096 evaluations to the 8192-point
// Reed-Solomon extension and splits the result into CellsPerExtBlob=128
// cells, without computing their opening proofs (spec §4.G compute_cells).
func (s *Settings) ComputeCells(blob *Blob) ([CellsPerExtBlob]Cell, error) {
	var out [CellsPerExtBlob]Cell
	if err := s.checkLoaded(); err != nil {
		return out, err
	}

	extEvalBRP, err := s.extendBlobEvaluations(blob)
	if err != nil {
		return out, err
	}
	return cellsFromExtendedEvaluations(extEvalBRP), nil
}

// ComputeCellsAndKZGProofs extends a blob and computes both its cells and
// their FK20 opening proofs (spec §4.G compute_cells_and_kzg_proofs).
func (s *Settings) ComputeCellsAndKZGProofs(blob *Blob) ([CellsPerExtBlob]Cell, [CellsPerExtBlob]Proof, error) {
	var cells [CellsPerExtBlob]Cell
	var proofs [CellsPerExtBlob]Proof
	if err := s.checkLoaded(); err != nil {
		return cells, proofs, err
	}
	return s.computeCellsAndProofsForBlob(blob)
}

func (s *Settings) computeCellsAndProofsForBlob(blob *Blob) ([CellsPerExtBlob]Cell, [CellsPerExtBlob]Proof, error) {
	var cells [CellsPerExtBlob]Cell
	var proofs [CellsPerExtBlob]Proof

	extEvalBRP, err := s.extendBlobEvaluations(blob)
	if err != nil {
		return cells, proofs, err
	}
	cells = cellsFromExtendedEvaluations(extEvalBRP)

	lagrange, err := blobToPolynomial(blob)
	if err != nil {
		return cells, proofs, err
	}
	monomial := lagrangeBRPToMonomial(lagrange, s.reverseRootsOfUnity)

	proofPoints := s.computeFK20Proofs(monomial)
	bitReversalPermuteInPlace(proofPoints)

	affineProofs := bls12381.BatchJacobianToAffineG1(proofPoints)
	for i, p := range affineProofs {
		b := p.Bytes()
		copy(proofs[i][:], b[:])
	}
	return cells, proofs, nil
}

// extendBlobEvaluations computes the Reed-Solomon 2x extension of a blob's
// evaluations: monomial coefficients recovered from the base domain, then
// evaluated (via FFT) over the doubled extended domain, in BRP order (spec
// §4.G, the "extension" step shared by compute_cells and recovery).
func (s *Settings) extendBlobEvaluations(blob *Blob) ([]fr.Element, error) {
	lagrange, err := blobToPolynomial(blob)
	if err != nil {
		return nil, err
	}
	monomial := lagrangeBRPToMonomial(lagrange, s.reverseRootsOfUnity)

	extNatural := make([]fr.Element, FieldElementsPerExtBlob)
	copy(extNatural, monomial)
	fftFr(extNatural, s.extRootsOfUnity[:FieldElementsPerExtBlob])

	bitReversalPermuteInPlace(extNatural)
	return extNatural, nil
}

func cellsFromExtendedEvaluations(extEvalBRP []fr.Element) [CellsPerExtBlob]Cell {
	var cells [CellsPerExtBlob]Cell
	for cellIdx := 0; cellIdx < CellsPerExtBlob; cellIdx++ {
		start := cellIdx * FieldElementsPerCell
		var c Cell
		for i := 0; i < FieldElementsPerCell; i++ {
			sc := frToScalar(&extEvalBRP[start+i])
			copy(c[i*ScalarSize:(i+1)*ScalarSize], sc[:])
		}
		cells[cellIdx] = c
	}
	return cells
}

// VerifyCellKZGProofBatch verifies a batch of cell opening proofs against
// their claimed commitments (spec §4.G verify_cell_kzg_proof_batch). Each
// tuple (commitments[i], cellIndices[i], cells[i], proofs[i]) is an
// independent claim; commitments and cellIndices/cells/proofs may repeat.
// Distinct commitments are deduplicated before the pairing check, combined
// via a single Fiat-Shamir random linear combination for both the evaluation
// side and the proof side (spec §4.F / §4.G's shared batching trick).
func (s *Settings) VerifyCellKZGProofBatch(commitments []Commitment, cellIndices []uint64, cells []Cell, proofs []Proof) (bool, error) {
	if err := s.checkLoaded(); err != nil {
		return false, err
	}
	n := len(cellIndices)
	if len(commitments) != n || len(cells) != n || len(proofs) != n {
		return false, fmt.Errorf("%w: batch length mismatch", ErrBadArgs)
	}
	if n == 0 {
		return false, fmt.Errorf("%w: empty cell proof batch", ErrBadArgs)
	}
	for _, idx := range cellIndices {
		if idx >= CellsPerExtBlob {
			return false, fmt.Errorf("%w: cell index %d out of range", ErrBadArgs, idx)
		}
	}

	uniqueComms, commIndex, err := dedupCommitments(commitments)
	if err != nil {
		return false, err
	}

	tr := newTranscript(domainCellBatch)
	tr.appendUint64(FieldElementsPerExtBlob)
	tr.appendUint64(uint64(len(uniqueComms)))
	for _, c := range uniqueComms {
		tr.appendBytes(c[:])
	}
	tr.appendUint64(uint64(n))
	for i := 0; i < n; i++ {
		tr.appendUint64(uint64(commIndex[i]))
		tr.appendUint64(cellIndices[i])
		tr.appendBytes(cells[i][:])
		tr.appendBytes(proofs[i][:])
	}
	r := tr.challenge()
	rPowers := computeRPowers(&r, n)

	commAffines, err := decodeCommitments(uniqueComms)
	if err != nil {
		return false, err
	}
	proofAffines := make([]bls12381.G1Affine, n)
	for i, p := range proofs {
		if _, err := proofAffines[i].SetBytes(p[:]); err != nil {
			return false, fmt.Errorf("%w: invalid proof %d: %v", ErrBadArgs, i, err)
		}
		if !proofAffines[i].IsInSubGroup() {
			return false, fmt.Errorf("%w: proof %d not in subgroup", ErrBadArgs, i)
		}
	}

	// Aggregate commitment side: sum_i r^i * commitments[commIndex[i]].
	commScalars := make([]fr.Element, len(uniqueComms))
	for i := 0; i < n; i++ {
		commScalars[commIndex[i]].Add(&commScalars[commIndex[i]], &rPowers[i])
	}
	aggComm, err := msmG1(commAffines, commScalars)
	if err != nil {
		return false, err
	}

	// Aggregate proof side: sum_i r^i * proofs[i].
	aggProof, err := msmG1(proofAffines, rPowers)
	if err != nil {
		return false, err
	}

	// Aggregate the weighted interpolation polynomial of every cell's 64
	// evaluations, and the per-proof coset-shift weight r^i*h_i^64 each
	// proof needs on the G1 side (spec §4.G: the multi-cell generalization
	// of the single-point aggregated-proof identity in §4.F). Unlike the
	// single-point case, each row's coset representative h_i differs, so the
	// shift cannot be folded into one shared G2 scalar: it must scale its
	// own proof before the per-row terms are summed.
	aggInterpCoeffs := make([]fr.Element, FieldElementsPerCell)
	weightedProofScalars := make([]fr.Element, n)
	for i := 0; i < n; i++ {
		evals, err := cellToFrSlice(&cells[i])
		if err != nil {
			return false, err
		}
		h := s.extBRPRoots[cellIndices[i]*FieldElementsPerCell]
		coeffs := interpolateCellCoeffs(evals, h)
		for k := range coeffs {
			var term fr.Element
			term.Mul(&coeffs[k], &rPowers[i])
			aggInterpCoeffs[k].Add(&aggInterpCoeffs[k], &term)
		}

		var hPow fr.Element
		hPow.Exp(h, big.NewInt(FieldElementsPerCell))
		weightedProofScalars[i].Mul(&hPow, &rPowers[i])
	}

	commitInterp, err := msmG1(s.g1Monomial[:FieldElementsPerCell], aggInterpCoeffs)
	if err != nil {
		return false, err
	}
	weightedProofMSM, err := msmG1(proofAffines, weightedProofScalars)
	if err != nil {
		return false, err
	}

	var lhs bls12381.G1Jac
	lhs.Set(&aggComm).SubAssign(&commitInterp).AddAssign(&weightedProofMSM)

	var g2One bls12381.G2Jac
	g2One.FromAffine(&s.g2Monomial[0])
	var tau64Jac bls12381.G2Jac
	tau64Jac.FromAffine(&s.g2Monomial[FieldElementsPerCell])

	var lhsAff bls12381.G1Affine
	lhsAff.FromJacobian(&lhs)
	lhsAff.Neg(&lhsAff) // PairingCheck tests that the product of pairings is one
	var proofAff bls12381.G1Affine
	proofAff.FromJacobian(&aggProof)
	var g2OneAff bls12381.G2Affine
	g2OneAff.FromJacobian(&g2One)
	var tau64Aff bls12381.G2Affine
	tau64Aff.FromJacobian(&tau64Jac)

	ok, err := bls12381.PairingCheck(
		[]bls12381.G1Affine{lhsAff, proofAff},
		[]bls12381.G2Affine{g2OneAff, tau64Aff},
	)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	return ok, nil
}

// interpolateCellCoeffs returns the length-FieldElementsPerCell monomial
// coefficients of the unique degree-<64 polynomial f with f(h*omega_64^k) =
// evals[brp6(k)] for every k (evals[i] is the evaluation at h*omega_64^brp6(i),
// since a cell's 64 entries come out of the length-8192 BRP permutation in
// that order, not natural order). Un-permuting evals and running a length-64
// IFFT recovers the coefficients of g(Y) = f(h*Y); rescaling coefficient k by
// h^-k then gives f's own coefficients.
func interpolateCellCoeffs(evals []fr.Element, h fr.Element) []fr.Element {
	natural := append([]fr.Element(nil), evals...)
	bitReversalPermuteInPlace(natural)

	roots64 := rootsOfUnity(6)
	reverseRoots64 := reverseRootsOf(roots64)
	ifftFr(natural, reverseRoots64)

	var hInv, scale fr.Element
	hInv.Inverse(&h)
	scale.SetOne()
	coeffs := make([]fr.Element, FieldElementsPerCell)
	for k := 0; k < FieldElementsPerCell; k++ {
		coeffs[k].Mul(&natural[k], &scale)
		scale.Mul(&scale, &hInv)
	}
	return coeffs
}

func dedupCommitments(commitments []Commitment) ([]Commitment, []int, error) {
	index := make(map[Commitment]int)
	var unique []Commitment
	mapped := make([]int, len(commitments))
	for i, c := range commitments {
		if idx, ok := index[c]; ok {
			mapped[i] = idx
			continue
		}
		idx := len(unique)
		index[c] = idx
		unique = append(unique, c)
		mapped[i] = idx
	}
	return unique, mapped, nil
}

func decodeCommitments(commitments []Commitment) ([]bls12381.G1Affine, error) {
	out := make([]bls12381.G1Affine, len(commitments))
	for i, c := range commitments {
		if _, err := out[i].SetBytes(c[:]); err != nil {
			return nil, fmt.Errorf("%w: invalid commitment %d: %v", ErrBadArgs, i, err)
		}
		if !out[i].IsInSubGroup() {
			return nil, fmt.Errorf("%w: commitment %d not in subgroup", ErrBadArgs, i)
		}
	}
	return out, nil
}
