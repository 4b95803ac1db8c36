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
	"testing"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/stretchr/testify/require"
)

// newInsecureTestSettings builds a Settings from a toy, publicly-known
// secret, mirroring the insecure single-party setup gnark-crypto's own
// fr/kzg package constructs for its tests (kzg.NewSRS(size, alpha)). Never
// used outside _test.go files: every exported entry point only ever accepts
// a Settings produced by LoadTrustedSetup from a real ceremony transcript.
func newInsecureTestSettings(t *testing.T, tau uint64) *Settings {
	t.Helper()

	g1Monomial, g1LagrangeBRP, g2Monomial := insecureTestSetupPoints(t, tau)
	s, err := assembleSettings(g1Monomial, g1LagrangeBRP, g2Monomial)
	require.NoError(t, err)
	return s
}

// insecureTestSetupPoints generates the same toy, publicly-known-secret
// ceremony points newInsecureTestSettings assembles into a Settings, but
// returns the raw point slices so callers (e.g. the LoadTrustedSetup text
// format test) can also exercise the hex-encoding path.
func insecureTestSetupPoints(t *testing.T, tau uint64) ([]bls12381.G1Affine, []bls12381.G1Affine, []bls12381.G2Affine) {
	t.Helper()

	var tauFr fr.Element
	tauFr.SetUint64(tau)

	g1Gen := canonicalG1Generator()
	g2Gen := canonicalG2Generator()

	powers := make([]fr.Element, FieldElementsPerBlob)
	powers[0].SetOne()
	for i := 1; i < FieldElementsPerBlob; i++ {
		powers[i].Mul(&powers[i-1], &tauFr)
	}

	g1MonomialJac := make([]bls12381.G1Jac, FieldElementsPerBlob)
	for i, p := range powers {
		var pBig big.Int
		p.BigInt(&pBig)
		g1MonomialJac[i].ScalarMultiplication(&g1Gen, &pBig)
	}
	g1Monomial := bls12381.BatchJacobianToAffineG1(g1MonomialJac)

	logN, err := log2Exact(FieldElementsPerBlob)
	require.NoError(t, err)
	roots := rootsOfUnity(logN)

	// L_i(tau) for the Lagrange basis over the base domain: evaluate each
	// basis polynomial at tau via the barycentric formula, then commit.
	lagrangeAtTau := lagrangeBasisAtTau(&tauFr, roots[:FieldElementsPerBlob])
	lagrangeJac := make([]bls12381.G1Jac, FieldElementsPerBlob)
	for i, v := range lagrangeAtTau {
		var vBig big.Int
		v.BigInt(&vBig)
		lagrangeJac[i].ScalarMultiplication(&g1Gen, &vBig)
	}
	g1LagrangeNatural := bls12381.BatchJacobianToAffineG1(lagrangeJac)
	g1LagrangeBRP := append([]bls12381.G1Affine(nil), g1LagrangeNatural...)
	bitReversalPermuteInPlace(g1LagrangeBRP)

	g2PowersJac := make([]bls12381.G2Jac, 65)
	var tauPow fr.Element
	tauPow.SetOne()
	for i := 0; i < 65; i++ {
		var tauPowBig big.Int
		tauPow.BigInt(&tauPowBig)
		g2PowersJac[i].ScalarMultiplication(&g2Gen, &tauPowBig)
		tauPow.Mul(&tauPow, &tauFr)
	}
	g2Monomial := make([]bls12381.G2Affine, 65)
	for i := range g2PowersJac {
		g2Monomial[i].FromJacobian(&g2PowersJac[i])
	}

	return g1Monomial, g1LagrangeBRP, g2Monomial
}

func canonicalG1Generator() bls12381.G1Jac {
	_, _, g1Aff, _ := bls12381.Generators()
	var g1Jac bls12381.G1Jac
	g1Jac.FromAffine(&g1Aff)
	return g1Jac
}

func canonicalG2Generator() bls12381.G2Jac {
	_, _, _, g2Aff := bls12381.Generators()
	var g2Jac bls12381.G2Jac
	g2Jac.FromAffine(&g2Aff)
	return g2Jac
}

// lagrangeBasisAtTau evaluates every degree-(n-1) Lagrange basis polynomial
// L_i (equal to 1 at roots[i] and 0 at every other root) at tau, via the
// standard barycentric identity L_i(tau) = (tau^n - 1)/n * roots[i]/(tau -
// roots[i]).
func lagrangeBasisAtTau(tau *fr.Element, roots []fr.Element) []fr.Element {
	n := len(roots)
	var one, tauPowN, numerator fr.Element
	one.SetOne()
	tauPowN.Exp(*tau, big.NewInt(int64(n)))
	numerator.Sub(&tauPowN, &one)
	var nInv fr.Element
	nInv.SetUint64(uint64(n)).Inverse(&nInv)
	numerator.Mul(&numerator, &nInv)

	out := make([]fr.Element, n)
	denominators := make([]fr.Element, n)
	for i := range roots {
		denominators[i].Sub(tau, &roots[i])
	}
	denominators = fr.BatchInvert(denominators)
	for i := range roots {
		out[i].Mul(&roots[i], &denominators[i])
		out[i].Mul(&out[i], &numerator)
	}
	return out
}

func scalarFromUint64(v uint64) Scalar {
	var e fr.Element
	e.SetUint64(v)
	return frToScalar(&e)
}
