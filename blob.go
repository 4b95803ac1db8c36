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

// BlobToKZGCommitment computes the KZG commitment to a blob's polynomial
// (spec §4.F blob_to_kzg_commitment): a single MSM of the blob's 4096
// Lagrange-form coefficients against the BRP Lagrange-basis setup points.
func (s *Settings) BlobToKZGCommitment(blob *Blob) (Commitment, error) {
	var out Commitment
	if err := s.checkLoaded(); err != nil {
		return out, err
	}

	lagrange, err := blobToPolynomial(blob)
	if err != nil {
		return out, err
	}

	commJac, err := msmG1(s.g1LagrangeBRP, lagrange)
	if err != nil {
		return out, err
	}
	var commAffine bls12381.G1Affine
	commAffine.FromJacobian(&commJac)
	b := commAffine.Bytes()
	copy(out[:], b[:])
	return out, nil
}

// ComputeKZGProof computes the opening proof for a blob's polynomial at an
// arbitrary point z, and returns the claimed evaluation y = p(z) alongside
// it (spec §4.F compute_kzg_proof).
func (s *Settings) ComputeKZGProof(blob *Blob, z Scalar) (Proof, Scalar, error) {
	var outProof Proof
	var outY Scalar
	if err := s.checkLoaded(); err != nil {
		return outProof, outY, err
	}

	zFr, err := scalarToFr(z)
	if err != nil {
		return outProof, outY, err
	}

	lagrange, err := blobToPolynomial(blob)
	if err != nil {
		return outProof, outY, err
	}

	y, err := evaluatePolynomialInEvaluationForm(lagrange, s.brpRoots, &zFr)
	if err != nil {
		return outProof, outY, err
	}

	quotient, err := computeQuotient(lagrange, s.brpRoots, &zFr, &y)
	if err != nil {
		return outProof, outY, err
	}

	proofJac, err := msmG1(s.g1LagrangeBRP, quotient)
	if err != nil {
		return outProof, outY, err
	}
	var proofAffine bls12381.G1Affine
	proofAffine.FromJacobian(&proofJac)
	pb := proofAffine.Bytes()
	copy(outProof[:], pb[:])
	outY = frToScalar(&y)
	return outProof, outY, nil
}

// VerifyKZGProof checks that commitment opens to y at z under proof (spec
// §4.F verify_kzg_proof): e(commitment - [y]G1, G2) == e(proof, [tau]G2 -
// [z]G2).
func (s *Settings) VerifyKZGProof(commitment Commitment, z, y Scalar, proof Proof) (bool, error) {
	if err := s.checkLoaded(); err != nil {
		return false, err
	}

	zFr, err := scalarToFr(z)
	if err != nil {
		return false, err
	}
	yFr, err := scalarToFr(y)
	if err != nil {
		return false, err
	}

	commAffine, err := decodeCommitments([]Commitment{commitment})
	if err != nil {
		return false, err
	}
	var proofAffine bls12381.G1Affine
	if _, err := proofAffine.SetBytes(proof[:]); err != nil {
		return false, fmt.Errorf("%w: invalid proof: %v", ErrBadArgs, err)
	}
	if !proofAffine.IsInSubGroup() {
		return false, fmt.Errorf("%w: proof not in subgroup", ErrBadArgs)
	}

	return s.pairingCheckSingle(commAffine[0], &yFr, proofAffine, &zFr)
}

// pairingCheckSingle implements the single-point KZG verification pairing
// equation used by VerifyKZGProof (and, through it, VerifyBlobKZGProof).
func (s *Settings) pairingCheckSingle(comm bls12381.G1Affine, y *fr.Element, proof bls12381.G1Affine, z *fr.Element) (bool, error) {
	var commJac bls12381.G1Jac
	commJac.FromAffine(&comm)

	var g1One bls12381.G1Jac
	g1One.FromAffine(&s.g1Monomial[0])
	var yBig big.Int
	y.BigInt(&yBig)
	var yG1 bls12381.G1Jac
	yG1.ScalarMultiplication(&g1One, &yBig)

	var lhs bls12381.G1Jac
	lhs.Set(&commJac).SubAssign(&yG1)

	var g2One bls12381.G2Jac
	g2One.FromAffine(&s.g2Monomial[0])
	var zBig big.Int
	z.BigInt(&zBig)
	var zG2 bls12381.G2Jac
	zG2.ScalarMultiplication(&g2One, &zBig)

	var tauJac bls12381.G2Jac
	tauJac.FromAffine(&s.g2Monomial[1])
	var rhsG2 bls12381.G2Jac
	rhsG2.Set(&tauJac).SubAssign(&zG2)

	// PairingCheck tests that the product of pairings is one, so the left
	// side is negated: e(-lhs, G2) * e(proof, rhsG2) == 1.
	var lhsAff, proofAff bls12381.G1Affine
	lhsAff.FromJacobian(&lhs)
	lhsAff.Neg(&lhsAff)
	proofAff = proof
	var g2OneAff, rhsG2Aff bls12381.G2Affine
	g2OneAff.FromJacobian(&g2One)
	rhsG2Aff.FromJacobian(&rhsG2)

	ok, err := bls12381.PairingCheck(
		[]bls12381.G1Affine{lhsAff, proofAff},
		[]bls12381.G2Affine{g2OneAff, rhsG2Aff},
	)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	return ok, nil
}

// ComputeBlobKZGProof computes the proof used by the blob-transaction
// "blob KZG proof" protocol field (spec §4.F compute_blob_kzg_proof): it
// derives the opening point from the blob and the caller-supplied commitment
// via Fiat-Shamir, and proves the evaluation there. Unlike ComputeKZGProof the
// point itself is not caller-supplied.
func (s *Settings) ComputeBlobKZGProof(blob *Blob, commitment Commitment) (Proof, error) {
	var out Proof
	if err := s.checkLoaded(); err != nil {
		return out, err
	}

	z := s.blobCommitmentChallenge(blob, commitment)
	proof, _, err := s.ComputeKZGProof(blob, frToScalar(&z))
	if err != nil {
		return out, err
	}
	return proof, nil
}

// VerifyBlobKZGProof checks a single blob's commitment and blob-KZG-proof
// pair (spec §4.F verify_blob_kzg_proof).
func (s *Settings) VerifyBlobKZGProof(blob *Blob, commitment Commitment, proof Proof) (bool, error) {
	if err := s.checkLoaded(); err != nil {
		return false, err
	}

	z := s.blobCommitmentChallenge(blob, commitment)
	lagrange, err := blobToPolynomial(blob)
	if err != nil {
		return false, err
	}
	y, err := evaluatePolynomialInEvaluationForm(lagrange, s.brpRoots, &z)
	if err != nil {
		return false, err
	}

	return s.VerifyKZGProof(commitment, frToScalar(&z), frToScalar(&y), proof)
}

// VerifyBlobKZGProofBatch verifies many (blob, commitment, proof) triples at
// once (spec §4.F verify_blob_kzg_proof_batch), combining them with a single
// Fiat-Shamir random linear combination rather than one pairing check per
// blob.
func (s *Settings) VerifyBlobKZGProofBatch(blobs []Blob, commitments []Commitment, proofs []Proof) (bool, error) {
	if err := s.checkLoaded(); err != nil {
		return false, err
	}
	n := len(blobs)
	if len(commitments) != n || len(proofs) != n {
		return false, fmt.Errorf("%w: batch length mismatch", ErrBadArgs)
	}
	if n == 0 {
		return false, fmt.Errorf("%w: empty blob proof batch", ErrBadArgs)
	}
	if n == 1 {
		return s.VerifyBlobKZGProof(&blobs[0], commitments[0], proofs[0])
	}

	zs := make([]fr.Element, n)
	ys := make([]fr.Element, n)
	for i := range blobs {
		zs[i] = s.blobCommitmentChallenge(&blobs[i], commitments[i])
		lagrange, err := blobToPolynomial(&blobs[i])
		if err != nil {
			return false, err
		}
		y, err := evaluatePolynomialInEvaluationForm(lagrange, s.brpRoots, &zs[i])
		if err != nil {
			return false, err
		}
		ys[i] = y
	}

	tr := newTranscript(domainBlobBatch)
	tr.appendUint64(FieldElementsPerBlob)
	tr.appendUint64(uint64(n))
	for i := 0; i < n; i++ {
		tr.appendBytes(commitments[i][:])
		tr.appendScalar(&zs[i])
		tr.appendScalar(&ys[i])
		tr.appendBytes(proofs[i][:])
	}
	r := tr.challenge()
	rPowers := computeRPowers(&r, n)

	commAffines, err := decodeCommitments(commitments)
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

	aggComm, err := msmG1(commAffines, rPowers)
	if err != nil {
		return false, err
	}

	var weightedY fr.Element
	zProofScalars := make([]fr.Element, n)
	for i := 0; i < n; i++ {
		var term fr.Element
		term.Mul(&rPowers[i], &ys[i])
		weightedY.Add(&weightedY, &term)

		zProofScalars[i].Mul(&rPowers[i], &zs[i])
	}

	aggZProof, err := msmG1(proofAffines, zProofScalars)
	if err != nil {
		return false, err
	}
	aggProof, err := msmG1(proofAffines, rPowers)
	if err != nil {
		return false, err
	}

	var g1One bls12381.G1Jac
	g1One.FromAffine(&s.g1Monomial[0])
	var yBig big.Int
	weightedY.BigInt(&yBig)
	var yG1 bls12381.G1Jac
	yG1.ScalarMultiplication(&g1One, &yBig)

	var lhs bls12381.G1Jac
	lhs.Set(&aggComm)
	lhs.AddAssign(&aggZProof)
	lhs.SubAssign(&yG1)

	var lhsAff, proofAff bls12381.G1Affine
	lhsAff.FromJacobian(&lhs)
	lhsAff.Neg(&lhsAff) // product-of-pairings form, as in pairingCheckSingle
	proofAff.FromJacobian(&aggProof)

	var g2OneAff, tauAff bls12381.G2Affine
	g2OneAff = s.g2Monomial[0]
	tauAff = s.g2Monomial[1]

	ok, err := bls12381.PairingCheck(
		[]bls12381.G1Affine{lhsAff, proofAff},
		[]bls12381.G2Affine{g2OneAff, tauAff},
	)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	return ok, nil
}

// blobCommitmentChallenge derives the Fiat-Shamir evaluation point used by
// compute_blob_kzg_proof and verify_blob_kzg_proof: a single SHA-256-based
// challenge over the domain degree, an input count of 1, the blob's bytes and
// the commitment (spec §4.F, distinct domain tag from the explicit
// batch-verification transcripts).
func (s *Settings) blobCommitmentChallenge(blob *Blob, commitment Commitment) fr.Element {
	tr := newTranscript(domainSingleBlobProof)
	tr.appendUint64(FieldElementsPerBlob)
	tr.appendUint64(1)
	tr.appendBytes(blob[:])
	tr.appendBytes(commitment[:])
	return tr.challenge()
}
