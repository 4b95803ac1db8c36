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

// Package kzg4844 implements the KZG polynomial-commitment engine behind
// EIP-4844 blob transactions and EIP-7594 (PeerDAS) data-availability
// sampling: commitments and opening proofs over BLS12-381, and
// Reed-Solomon-style extension/recovery of blob data into cells.
//
// Every operation takes an explicit *Settings, obtained once from
// LoadTrustedSetup. Settings is safe for concurrent read-only use by many
// goroutines; it holds no mutable state after construction.
package kzg4844

const (
	// ScalarSize is the byte length of a canonical Fr element.
	ScalarSize = 32
	// CommitmentSize is the byte length of a compressed G1 commitment.
	CommitmentSize = 48
	// ProofSize is the byte length of a compressed G1 opening proof.
	ProofSize = 48

	// FieldElementsPerBlob is the number of Fr elements encoded in a blob.
	FieldElementsPerBlob = 4096
	// FieldElementsPerExtBlob is the number of Fr elements in the Reed-Solomon
	// extended (2x) evaluation domain.
	FieldElementsPerExtBlob = 2 * FieldElementsPerBlob
	// FieldElementsPerCell is the number of Fr elements in one cell.
	FieldElementsPerCell = 64
	// CellsPerExtBlob is the number of cells an extended blob splits into.
	CellsPerExtBlob = FieldElementsPerExtBlob / FieldElementsPerCell

	// BlobSize is the byte length of a blob (FieldElementsPerBlob * ScalarSize).
	BlobSize = FieldElementsPerBlob * ScalarSize
	// CellSize is the byte length of a cell (FieldElementsPerCell * ScalarSize).
	CellSize = FieldElementsPerCell * ScalarSize

	// minRecoveryCells is the minimum number of distinct cells (50% of
	// CellsPerExtBlob) required to reconstruct a blob.
	minRecoveryCells = CellsPerExtBlob / 2
)

// Scalar is a 32-byte big-endian encoding of an Fr element.
type Scalar [ScalarSize]byte

// Commitment is a 48-byte compressed BLS12-381 G1 KZG commitment.
type Commitment [CommitmentSize]byte

// Proof is a 48-byte compressed BLS12-381 G1 KZG opening proof.
type Proof [ProofSize]byte

// Blob holds the 131072-byte on-wire encoding of 4096 canonical Fr elements.
type Blob [BlobSize]byte

// Cell holds the 2048-byte encoding of 64 Fr elements: one 64th of an
// extended blob's evaluations, in bit-reversal-permuted (wire) order.
type Cell [CellSize]byte
