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

func TestRecoverCellsAndKZGProofsWithHalfMissing(t *testing.T) {
	s := newInsecureTestSettings(t, 555999)
	blob := randomTestBlob(31)

	cells, proofs, err := s.ComputeCellsAndKZGProofs(blob)
	require.NoError(t, err)

	// Keep only every other cell: exactly minRecoveryCells of them.
	var indices []uint64
	var have []Cell
	for i := 0; i < CellsPerExtBlob; i += 2 {
		indices = append(indices, uint64(i))
		have = append(have, cells[i])
	}
	require.Len(t, indices, minRecoveryCells)

	recoveredCells, recoveredProofs, err := s.RecoverCellsAndKZGProofs(indices, have)
	require.NoError(t, err)

	require.Equal(t, cells, recoveredCells)
	require.Equal(t, proofs, recoveredProofs)
}

func TestRecoverCellsAndKZGProofsRejectsTooFewCells(t *testing.T) {
	s := newInsecureTestSettings(t, 2468)
	blob := randomTestBlob(3)

	cells, _, err := s.ComputeCellsAndKZGProofs(blob)
	require.NoError(t, err)

	var indices []uint64
	var have []Cell
	for i := 0; i < minRecoveryCells-1; i++ {
		indices = append(indices, uint64(i))
		have = append(have, cells[i])
	}

	_, _, err = s.RecoverCellsAndKZGProofs(indices, have)
	require.ErrorIs(t, err, ErrBadArgs)
}

func TestRecoverCellsAndKZGProofsCollapsesDuplicates(t *testing.T) {
	s := newInsecureTestSettings(t, 13579)
	blob := randomTestBlob(17)

	cells, _, err := s.ComputeCellsAndKZGProofs(blob)
	require.NoError(t, err)

	var indices []uint64
	var have []Cell
	for i := 0; i < minRecoveryCells; i++ {
		indices = append(indices, uint64(i))
		have = append(have, cells[i])
	}
	// Duplicate the first index; the repeated entry is collapsed and the
	// distinct count still meets the minimum, so recovery succeeds.
	indices = append(indices, indices[0])
	have = append(have, have[0])

	_, _, err = s.RecoverCellsAndKZGProofs(indices, have)
	require.NoError(t, err)
}
