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

	"github.com/stretchr/testify/require"
)

func TestLog2Exact(t *testing.T) {
	k, err := log2Exact(4096)
	require.NoError(t, err)
	require.EqualValues(t, 12, k)

	_, err = log2Exact(4095)
	require.ErrorIs(t, err, ErrBadArgs)

	_, err = log2Exact(0)
	require.ErrorIs(t, err, ErrBadArgs)
}

func TestRootsOfUnityAreRoots(t *testing.T) {
	logN := uint8(8)
	roots := rootsOfUnity(logN)
	require.Len(t, roots, 257)
	require.True(t, roots[0].IsOne())
	require.True(t, roots[256].IsOne())
	require.False(t, roots[1].IsOne())
}

func TestBitReversalPermuteIsInvolution(t *testing.T) {
	values := make([]int, 16)
	for i := range values {
		values[i] = i
	}
	original := append([]int(nil), values...)

	bitReversalPermuteInPlace(values)
	require.NotEqual(t, original, values)

	bitReversalPermuteInPlace(values)
	require.Equal(t, original, values)
}

func TestReverseBits(t *testing.T) {
	require.EqualValues(t, 0, reverseBits(0, 4))
	require.EqualValues(t, 8, reverseBits(1, 4))
	require.EqualValues(t, 1, reverseBits(8, 4))
}
