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
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/stretchr/testify/require"
)

func smallTestDomain(logN uint8) (roots, brp []fr.Element) {
	roots = rootsOfUnity(logN)
	brp = append([]fr.Element(nil), roots[:len(roots)-1]...)
	bitReversalPermuteInPlace(brp)
	return roots, brp
}

func TestEvaluatePolynomialInEvaluationFormMatchesDomainPoint(t *testing.T) {
	const logN = 6
	roots, brp := smallTestDomain(logN)

	values := make([]fr.Element, len(brp))
	for i := range values {
		values[i].SetUint64(uint64(i*3 + 1))
	}

	z := brp[5]
	y, err := evaluatePolynomialInEvaluationForm(values, brp, &z)
	require.NoError(t, err)
	require.True(t, y.Equal(&values[5]))

	_ = roots
}

func TestEvaluatePolynomialInEvaluationFormOffDomain(t *testing.T) {
	const logN = 4
	_, brp := smallTestDomain(logN)
	n := len(brp)

	coeffs := make([]fr.Element, n)
	for i := range coeffs {
		coeffs[i].SetUint64(uint64(i + 2))
	}
	values := append([]fr.Element(nil), coeffs...)
	fftFr(values, rootsOfUnity(logN)[:n])
	valuesBRP := append([]fr.Element(nil), values...)
	bitReversalPermuteInPlace(valuesBRP)

	var z fr.Element
	z.SetUint64(12345)

	got, err := evaluatePolynomialInEvaluationForm(valuesBRP, brp, &z)
	require.NoError(t, err)

	want := evalPolyMonomial(coeffs, &z)
	require.True(t, want.Equal(&got))
}

func TestComputeQuotientAtDomainRoot(t *testing.T) {
	const logN = 5
	roots, brp := smallTestDomain(logN)
	n := len(brp)

	coeffs := make([]fr.Element, n)
	for i := range coeffs {
		coeffs[i].SetUint64(uint64(i + 1))
	}
	lagrange := append([]fr.Element(nil), coeffs...)
	fftFr(lagrange, roots[:n])
	lagrangeBRP := append([]fr.Element(nil), lagrange...)
	bitReversalPermuteInPlace(lagrangeBRP)

	z := brp[3]
	y := lagrangeBRP[3]

	quotient, err := computeQuotient(lagrangeBRP, brp, &z, &y)
	require.NoError(t, err)

	// (X - z) * quotient(X) should equal p(X) - y; checked at an off-domain
	// evaluation point.
	var probe fr.Element
	probe.SetUint64(999)
	qProbe, err := evaluatePolynomialInEvaluationForm(quotient, brp, &probe)
	require.NoError(t, err)

	pProbe := evalPolyMonomial(coeffs, &probe)
	var diff, xMinusZ, rhs fr.Element
	diff.Sub(&pProbe, &y)
	xMinusZ.Sub(&probe, &z)
	rhs.Mul(&xMinusZ, &qProbe)
	require.True(t, diff.Equal(&rhs))
}

func TestComputeQuotientOffDomain(t *testing.T) {
	const logN = 5
	roots, brp := smallTestDomain(logN)
	n := len(brp)

	coeffs := make([]fr.Element, n)
	for i := range coeffs {
		coeffs[i].SetUint64(uint64(2*i + 3))
	}
	lagrange := append([]fr.Element(nil), coeffs...)
	fftFr(lagrange, roots[:n])
	lagrangeBRP := append([]fr.Element(nil), lagrange...)
	bitReversalPermuteInPlace(lagrangeBRP)

	var z fr.Element
	z.SetUint64(42)
	y := evalPolyMonomial(coeffs, &z)

	quotient, err := computeQuotient(lagrangeBRP, brp, &z, &y)
	require.NoError(t, err)

	var probe fr.Element
	probe.SetUint64(777)
	qProbe, err := evaluatePolynomialInEvaluationForm(quotient, brp, &probe)
	require.NoError(t, err)

	pProbe := evalPolyMonomial(coeffs, &probe)
	var diff, xMinusZ, rhs fr.Element
	diff.Sub(&pProbe, &y)
	xMinusZ.Sub(&probe, &z)
	rhs.Mul(&xMinusZ, &qProbe)
	require.True(t, diff.Equal(&rhs))
}
