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
	"bytes"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
	"testing"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/stretchr/testify/require"
)

// textTrustedSetup renders a toy ceremony's points into the line-hex
// trusted-setup text format spec §6 describes, so LoadTrustedSetup's parsing
// path (header, hex decode, subgroup checks) gets exercised the same way a
// real ceremony file would, instead of only ever going through
// assembleSettings directly as newInsecureTestSettings does.
func textTrustedSetup(g1Monomial, g1LagrangeBRP []bls12381.G1Affine, g2Monomial []bls12381.G2Affine) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "n1=%d\nn2=%d\n", len(g1Monomial), len(g2Monomial))
	for _, p := range g1Monomial {
		b := p.Bytes()
		sb.WriteString(hex.EncodeToString(b[:]))
		sb.WriteByte('\n')
	}
	for _, p := range g1LagrangeBRP {
		b := p.Bytes()
		sb.WriteString(hex.EncodeToString(b[:]))
		sb.WriteByte('\n')
	}
	for _, p := range g2Monomial {
		b := p.Bytes()
		sb.WriteString(hex.EncodeToString(b[:]))
		sb.WriteByte('\n')
	}
	return sb.String()
}

func TestLoadTrustedSetupParsesTextFormat(t *testing.T) {
	g1Monomial, g1LagrangeBRP, g2Monomial := insecureTestSetupPoints(t, 13)
	text := textTrustedSetup(g1Monomial, g1LagrangeBRP, g2Monomial)

	s, err := LoadTrustedSetup(strings.NewReader(text))
	require.NoError(t, err)

	direct, err := assembleSettings(g1Monomial, g1LagrangeBRP, g2Monomial)
	require.NoError(t, err)

	blob := randomTestBlob(44)
	got, err := s.BlobToKZGCommitment(blob)
	require.NoError(t, err)
	want, err := direct.BlobToKZGCommitment(blob)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestLoadTrustedSetupRejectsMismatchedLagrangeBasis(t *testing.T) {
	g1Monomial, g1LagrangeBRP, g2Monomial := insecureTestSetupPoints(t, 21)
	// Swap two Lagrange points so the file's copy no longer matches what a
	// G1-IFFT of the monomial basis derives (spec §4.E step 3 / §6: the
	// file's Lagrange/BRP points are validated, not trusted).
	g1LagrangeBRP[0], g1LagrangeBRP[1] = g1LagrangeBRP[1], g1LagrangeBRP[0]
	text := textTrustedSetup(g1Monomial, g1LagrangeBRP, g2Monomial)

	_, err := LoadTrustedSetup(strings.NewReader(text))
	require.ErrorIs(t, err, ErrBadArgs)
}

func TestLoadTrustedSetupRejectsBadHeader(t *testing.T) {
	_, err := LoadTrustedSetup(strings.NewReader("not a header\n"))
	require.ErrorIs(t, err, ErrBadArgs)
}

func TestLoadTrustedSetupWithFixedBaseWindowBitsProducesSameProofs(t *testing.T) {
	g1Monomial, g1LagrangeBRP, g2Monomial := insecureTestSetupPoints(t, 999)
	text := textTrustedSetup(g1Monomial, g1LagrangeBRP, g2Monomial)

	plain, err := LoadTrustedSetup(strings.NewReader(text))
	require.NoError(t, err)
	windowed, err := LoadTrustedSetup(strings.NewReader(text), WithFixedBaseWindowBits(6))
	require.NoError(t, err)

	blob := randomTestBlob(3)
	_, proofsPlain, err := plain.ComputeCellsAndKZGProofs(blob)
	require.NoError(t, err)
	_, proofsWindowed, err := windowed.ComputeCellsAndKZGProofs(blob)
	require.NoError(t, err)
	require.Equal(t, proofsPlain, proofsWindowed)
}

func TestSettingsWriteToReadFromRoundTrip(t *testing.T) {
	s := newInsecureTestSettings(t, 246810)

	var buf bytes.Buffer
	n, err := s.WriteTo(&buf)
	require.NoError(t, err)
	require.Equal(t, int64(buf.Len()), n)

	var reloaded Settings
	_, err = reloaded.ReadFrom(&buf)
	require.NoError(t, err)

	blob := randomTestBlob(2)
	c1, err := s.BlobToKZGCommitment(blob)
	require.NoError(t, err)
	c2, err := reloaded.BlobToKZGCommitment(blob)
	require.NoError(t, err)
	require.Equal(t, c1, c2)
}

func TestReadFromRejectsBadMagic(t *testing.T) {
	var s Settings
	_, err := s.ReadFrom(bytes.NewReader(make([]byte, 16)))
	require.ErrorIs(t, err, ErrBadArgs)
}

func TestFixedBaseTableMatchesDirectScalarMultiplication(t *testing.T) {
	base := canonicalG1Generator()
	var baseAffine bls12381.G1Affine
	baseAffine.FromJacobian(&base)

	table := newFixedBaseTable(&baseAffine, defaultFixedBaseWindowBits)

	var e fr.Element
	e.SetUint64(123456789)

	got := table.scalarMul(&e)

	var eBig big.Int
	e.BigInt(&eBig)
	var want bls12381.G1Jac
	want.ScalarMultiplication(&base, &eBig)

	var gotAffine, wantAffine bls12381.G1Affine
	gotAffine.FromJacobian(&got)
	wantAffine.FromJacobian(&want)
	require.Equal(t, wantAffine.Bytes(), gotAffine.Bytes())
}
