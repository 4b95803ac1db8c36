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

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
)

// setCanonical decodes a 32-byte big-endian buffer into e, rejecting any
// value that is not already a canonical representative (< r). gnark-crypto's
// SetBytes would silently reduce mod r; spec §3 requires rejecting instead.
func setCanonical(e *fr.Element, b []byte) error {
	var asBig big.Int
	asBig.SetBytes(b)
	if asBig.Cmp(fr.Modulus()) >= 0 {
		return fmt.Errorf("%w: field element is not canonical", ErrBadArgs)
	}
	e.SetBytes(b)
	return nil
}

// scalarToFr decodes a single field element, used for opening points and
// claimed evaluations at the public API boundary.
func scalarToFr(s Scalar) (fr.Element, error) {
	var e fr.Element
	if err := setCanonical(&e, s[:]); err != nil {
		return fr.Element{}, err
	}
	return e, nil
}

// frToScalar encodes e as a 32-byte big-endian Scalar.
func frToScalar(e *fr.Element) Scalar {
	var out Scalar
	b := e.Bytes() // gnark-crypto returns canonical big-endian [32]byte
	copy(out[:], b[:])
	return out
}

// blobToPolynomial implements blob_to_polynomial (spec §4.C): it decodes the
// blob's 4096 big-endian chunks into canonical Fr elements in Lagrange form,
// over the bit-reversal-permuted 4096-th roots (the blob's on-wire order).
func blobToPolynomial(blob *Blob) ([]fr.Element, error) {
	poly := make([]fr.Element, FieldElementsPerBlob)
	for i := 0; i < FieldElementsPerBlob; i++ {
		chunk := blob[i*ScalarSize : (i+1)*ScalarSize]
		if err := setCanonical(&poly[i], chunk); err != nil {
			return nil, fmt.Errorf("%w: field element %d: %v", ErrBadArgs, i, err)
		}
	}
	return poly, nil
}

// lagrangeBRPToMonomial implements poly_lagrange_to_monomial (spec §4.C):
// given values in BRP-Lagrange order it un-permutes to natural order and
// runs an inverse FFT to recover the monomial-basis coefficients.
func lagrangeBRPToMonomial(valuesBRP []fr.Element, reverseRoots []fr.Element) []fr.Element {
	natural := make([]fr.Element, len(valuesBRP))
	copy(natural, valuesBRP)
	bitReversalPermuteInPlace(natural)
	ifftFr(natural, reverseRoots)
	return natural
}

// evaluatePolynomialInEvaluationForm implements
// evaluate_polynomial_in_evaluation_form (spec §4.C) via the barycentric
// formula, with the domain-root fast path. polyBRP and brpRoots must be
// index-aligned (both in bit-reversal-permuted order, as they are for a
// blob's on-wire Lagrange values and Settings.brpRoots).
func evaluatePolynomialInEvaluationForm(polyBRP []fr.Element, brpRoots []fr.Element, z *fr.Element) (fr.Element, error) {
	n := len(polyBRP)
	if n != len(brpRoots) {
		return fr.Element{}, fmt.Errorf("%w: polynomial/domain length mismatch", ErrInternal)
	}

	for i := range polyBRP {
		if brpRoots[i].Equal(z) {
			return polyBRP[i], nil
		}
	}

	// (z^n - 1) / n
	var zPowN, one, numerator fr.Element
	one.SetOne()
	zPowN.Exp(*z, big.NewInt(int64(n)))
	numerator.Sub(&zPowN, &one)
	var nInv fr.Element
	nInv.SetUint64(uint64(n)).Inverse(&nInv)
	numerator.Mul(&numerator, &nInv)

	denominators := make([]fr.Element, n)
	for i := range denominators {
		denominators[i].Sub(z, &brpRoots[i])
	}
	denominators = fr.BatchInvert(denominators)

	var sum fr.Element
	for i := range polyBRP {
		var term fr.Element
		term.Mul(&polyBRP[i], &brpRoots[i])
		term.Mul(&term, &denominators[i])
		sum.Add(&sum, &term)
	}
	sum.Mul(&sum, &numerator)
	return sum, nil
}

// computeQuotient implements compute_quotient (spec §4.C): q(X) = (p(X) -
// y)/(X - z) in evaluation form over the BRP-permuted domain. When z
// coincides with one of the domain roots the naive per-point division has a
// 0/0 at that index; it is resolved with the standard finite-difference
// identity used throughout the EIP-4844/7594 reference algorithms:
//
//	q[i]      = (p[i] - y) / (root[i] - z)              for i != m
//	q[m]      = -sum_{i != m} q[i] * root[i] / root[m]
//
// where m is the index with root[m] == z.
func computeQuotient(polyBRP []fr.Element, brpRoots []fr.Element, z, y *fr.Element) ([]fr.Element, error) {
	n := len(polyBRP)
	if n != len(brpRoots) {
		return nil, fmt.Errorf("%w: polynomial/domain length mismatch", ErrInternal)
	}

	rootIndex := -1
	for i := range brpRoots {
		if brpRoots[i].Equal(z) {
			rootIndex = i
			break
		}
	}

	quotient := make([]fr.Element, n)
	if rootIndex < 0 {
		numerators := make([]fr.Element, n)
		denominators := make([]fr.Element, n)
		for i := 0; i < n; i++ {
			numerators[i].Sub(&polyBRP[i], y)
			denominators[i].Sub(&brpRoots[i], z)
		}
		denominators = fr.BatchInvert(denominators)
		for i := 0; i < n; i++ {
			quotient[i].Mul(&numerators[i], &denominators[i])
		}
		return quotient, nil
	}

	m := rootIndex
	var rootMInv fr.Element
	rootMInv.Inverse(&brpRoots[m])

	for i := 0; i < n; i++ {
		if i == m {
			continue
		}
		var numerator, denominator fr.Element
		numerator.Sub(&polyBRP[i], y)
		denominator.Sub(&brpRoots[i], z)
		quotient[i].Div(&numerator, &denominator)

		var ratio, term fr.Element
		ratio.Mul(&brpRoots[i], &rootMInv)
		term.Mul(&quotient[i], &ratio)
		quotient[m].Add(&quotient[m], &term)
	}
	quotient[m].Neg(&quotient[m])
	return quotient, nil
}

// vanishingPolynomialForMissingCells implements
// vanishing_polynomial_for_missing_cells (spec §4.C): the extended domain's
// 8192 roots decompose into CellsPerExtBlob cosets of FieldElementsPerCell
// consecutive roots each, and the vanishing polynomial of a whole such coset
// has the compact form X^64 - h^64 where h is any representative of the
// coset (all roots in one coset share the same 64th power). Z(X) is the
// product, in coefficient (monomial) form, of one such factor per missing
// cell index.
func vanishingPolynomialForMissingCells(missingCellIndices []uint64, extBRPRoots []fr.Element) []fr.Element {
	z := make([]fr.Element, 1, FieldElementsPerCell*len(missingCellIndices)+1)
	z[0].SetOne()

	for _, cellIdx := range missingCellIndices {
		h := extBRPRoots[cellIdx*FieldElementsPerCell]
		var hPow fr.Element
		hPow.Exp(h, big.NewInt(FieldElementsPerCell))

		// Multiply z(X) by (X^64 - hPow): shift-and-subtract convolution.
		next := make([]fr.Element, len(z)+FieldElementsPerCell)
		for i, c := range z {
			next[i+FieldElementsPerCell].Add(&next[i+FieldElementsPerCell], &c)
			var sub fr.Element
			sub.Mul(&c, &hPow)
			next[i].Sub(&next[i], &sub)
		}
		z = next
	}
	return z
}

// evalPolyMonomial evaluates a monomial-form polynomial at x via Horner's
// method. Used for small polynomials (tests, sanity checks); hot paths use
// the evaluation-form helpers above or an FFT.
func evalPolyMonomial(coeffs []fr.Element, x *fr.Element) fr.Element {
	var result fr.Element
	for i := len(coeffs) - 1; i >= 0; i-- {
		result.Mul(&result, x)
		result.Add(&result, &coeffs[i])
	}
	return result
}
