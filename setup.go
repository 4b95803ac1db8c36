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
	"bufio"
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"strings"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
)

// settingsMagic identifies the binary serialization format produced by
// Settings.WriteTo. It is never written to or read from a trusted-setup text
// file, only to/from the package's own binary snapshot format (a
// SUPPLEMENTED FEATURE beyond the text format in spec §6).
var settingsMagic = [4]byte{'K', 'Z', 'G', 0}

const settingsFormatVersion = 1

// defaultFixedBaseWindowBits is a reference window width for the optional
// fixed-base tables. LoadTrustedSetup does not apply it: it builds no tables
// unless WithFixedBaseWindowBits is passed with a positive width.
const defaultFixedBaseWindowBits = 8

// Settings holds a trusted setup and every value derived from it: domains,
// bit-reversal-permuted Lagrange bases, and FK20 precomputation. It is
// produced once by LoadTrustedSetup and then threaded explicitly into every
// operation in this package -- there is no package-level global setup, by
// deliberate design (see DESIGN.md): callers that need one can hold a single
// *Settings at whatever scope suits them, including a test-local one.
//
// A zero-value Settings is "not loaded"; every exported method other than
// ReadFrom returns ErrSettingsNotLoaded until it is loaded by LoadTrustedSetup
// or ReadFrom, and again after Destroy.
type Settings struct {
	loaded bool

	g1Monomial []bls12381.G1Affine // length FieldElementsPerBlob
	g1LagrangeBRP []bls12381.G1Affine // length FieldElementsPerBlob, BRP order
	g2Monomial []bls12381.G2Affine // length 65 ([tau^0]G2 .. [tau^64]G2)

	rootsOfUnity      []fr.Element // length FieldElementsPerBlob+1
	reverseRootsOfUnity []fr.Element
	extRootsOfUnity      []fr.Element // length FieldElementsPerExtBlob+1
	extReverseRootsOfUnity []fr.Element
	brpRoots    []fr.Element // FieldElementsPerBlob, BRP order
	extBRPRoots []fr.Element // FieldElementsPerExtBlob, BRP order

	// fk20Columns[w] holds the w-th column's length-(2*FieldElementsPerCell)
	// G1-FFT, for w in [0, FieldElementsPerBlob/FieldElementsPerCell). Used to
	// amortize all CellsPerExtBlob opening proofs in a single Settings-time
	// precomputation (spec §4.G / FK20).
	fk20Columns [][]bls12381.G1Jac
	// fk20DomainRoots/fk20DomainReverseRoots are the fk20ColumnLen-th roots
	// of unity used by the FK20 convolution transforms; fk20ColumnLen (128)
	// is unrelated to the blob's own 4096/8192 domains (it is twice
	// FieldElementsPerCell), so it needs its own root table.
	fk20DomainRoots        []fr.Element
	fk20DomainReverseRoots []fr.Element

	fixedBaseWindowBits int
	// fixedBaseTables[j][slot] is the windowed table for fk20Columns[j][slot],
	// lazily nil unless a caller opts into WithFixedBaseWindowBits: FK20's
	// per-blob hot loop repeatedly scalar-multiplies these same Settings-time
	// fixed points by a different (blob-dependent) scalar every call, which is
	// exactly the access pattern fixed-base windowed tables amortize (spec
	// §4.D/§4.E "tables[128]... for FK20 MSM").
	fixedBaseTables [][]*fixedBaseTable
}

// Option configures LoadTrustedSetup.
type Option func(*setupOptions)

type setupOptions struct {
	fixedBaseWindowBits int
}

// WithFixedBaseWindowBits overrides the window width used for the optional
// fixed-base point multiplication tables. A larger width trades setup time
// and memory for fewer point additions per scalar multiplication.
func WithFixedBaseWindowBits(wbits int) Option {
	return func(o *setupOptions) { o.fixedBaseWindowBits = wbits }
}

// LoadTrustedSetup parses a trusted setup in the text format of spec §6: a
// "n1=<count>" header line, a "n2=<count>" header line (currently fixed at
// FieldElementsPerBlob and 65), then n1 hex-encoded G1 monomial points, n1
// hex-encoded G1 Lagrange (BRP-order) points, and n2 hex-encoded G2 monomial
// points, one per line, and derives every value needed by the rest of the
// package.
func LoadTrustedSetup(r io.Reader, opts ...Option) (*Settings, error) {
	cfg := setupOptions{fixedBaseWindowBits: 0}
	for _, o := range opts {
		o(&cfg)
	}

	var s *Settings
	err := withAllocGuard(func() error {
		var buildErr error
		s, buildErr = buildSettingsFromText(r)
		return buildErr
	})
	if err != nil {
		return nil, err
	}

	if cfg.fixedBaseWindowBits > 0 {
		s.fixedBaseWindowBits = cfg.fixedBaseWindowBits
		s.fixedBaseTables = buildFK20FixedBaseTables(s.fk20Columns, cfg.fixedBaseWindowBits)
	}

	return s, nil
}

func buildSettingsFromText(r io.Reader) (*Settings, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 256), 1<<20)

	n1, err := scanHeaderField(sc, "n1")
	if err != nil {
		return nil, err
	}
	n2, err := scanHeaderField(sc, "n2")
	if err != nil {
		return nil, err
	}
	if n1 != FieldElementsPerBlob || n2 != 65 {
		return nil, fmt.Errorf("%w: unexpected setup dimensions %d %d", ErrBadArgs, n1, n2)
	}

	g1Monomial, err := readG1Lines(sc, n1)
	if err != nil {
		return nil, fmt.Errorf("g1 monomial: %w", err)
	}
	g1LagrangeBRP, err := readG1Lines(sc, n1)
	if err != nil {
		return nil, fmt.Errorf("g1 lagrange: %w", err)
	}
	g2Monomial, err := readG2Lines(sc, n2)
	if err != nil {
		return nil, fmt.Errorf("g2 monomial: %w", err)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadArgs, err)
	}

	return assembleSettings(g1Monomial, g1LagrangeBRP, g2Monomial)
}

// scanHeaderField reads the next non-blank line and parses it as "name=value"
// (spec §6: "Line 1: n1=4096; line 2: n2=65"), tolerating surrounding
// whitespace around the '=' per spec's "whitespace tolerated" note.
func scanHeaderField(sc *bufio.Scanner, name string) (int, error) {
	var line string
	for line == "" {
		if !sc.Scan() {
			return 0, fmt.Errorf("%w: missing %s header line", ErrBadArgs, name)
		}
		line = strings.TrimSpace(sc.Text())
	}
	parts := strings.SplitN(line, "=", 2)
	if len(parts) != 2 || strings.TrimSpace(parts[0]) != name {
		return 0, fmt.Errorf("%w: malformed %s header line %q", ErrBadArgs, name, line)
	}
	value, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, fmt.Errorf("%w: malformed %s value: %v", ErrBadArgs, name, err)
	}
	return value, nil
}

func assembleSettings(g1Monomial, g1LagrangeBRP []bls12381.G1Affine, g2Monomial []bls12381.G2Affine) (*Settings, error) {
	logN, err := log2Exact(FieldElementsPerBlob)
	if err != nil {
		return nil, err
	}
	logExtN, err := log2Exact(FieldElementsPerExtBlob)
	if err != nil {
		return nil, err
	}

	roots := rootsOfUnity(logN)
	reverseRoots := reverseRootsOf(roots)
	extRoots := rootsOfUnity(logExtN)
	extReverseRoots := reverseRootsOf(extRoots)

	brpRoots := append([]fr.Element(nil), roots[:FieldElementsPerBlob]...)
	bitReversalPermuteInPlace(brpRoots)
	extBRPRoots := append([]fr.Element(nil), extRoots[:FieldElementsPerExtBlob]...)
	bitReversalPermuteInPlace(extBRPRoots)

	// spec §4.E step 3 / §6: the file's Lagrange/BRP points are validated,
	// not trusted -- re-derive them from the monomial basis by a G1-IFFT
	// followed by the same BRP permutation used for Fr Lagrange values, and
	// reject the setup if the file's copy disagrees.
	derivedG1LagrangeBRP, err := deriveG1LagrangeBRP(g1Monomial, reverseRoots)
	if err != nil {
		return nil, err
	}
	if len(derivedG1LagrangeBRP) != len(g1LagrangeBRP) {
		return nil, fmt.Errorf("%w: g1 lagrange/brp point count mismatch", ErrBadArgs)
	}
	for i := range derivedG1LagrangeBRP {
		if derivedG1LagrangeBRP[i].Bytes() != g1LagrangeBRP[i].Bytes() {
			return nil, fmt.Errorf("%w: g1 lagrange/brp point %d does not match the monomial-derived value", ErrBadArgs, i)
		}
	}

	s := &Settings{
		loaded:              true,
		g1Monomial:          g1Monomial,
		g1LagrangeBRP:       derivedG1LagrangeBRP,
		g2Monomial:          g2Monomial,
		rootsOfUnity:        roots,
		reverseRootsOfUnity: reverseRoots,
		extRootsOfUnity:     extRoots,
		extReverseRootsOfUnity: extReverseRoots,
		brpRoots:            brpRoots,
		extBRPRoots:         extBRPRoots,
	}

	fk20LogLen, err := log2Exact(fk20ColumnLen)
	if err != nil {
		return nil, err
	}
	fk20Roots := rootsOfUnity(fk20LogLen)
	s.fk20DomainRoots = fk20Roots[:fk20ColumnLen]
	s.fk20DomainReverseRoots = reverseRootsOf(fk20Roots)

	s.fk20Columns = buildFK20Columns(g1Monomial, s.fk20DomainReverseRoots)
	return s, nil
}

// deriveG1LagrangeBRP computes g1_values_lagrange_brp from the monomial-basis
// setup points (spec §4.E step 3): a G1-IFFT recovers the natural-order
// Lagrange-basis commitments, which are then BRP-permuted into the order the
// rest of this package (blob_to_kzg_commitment's MSM) expects.
func deriveG1LagrangeBRP(g1Monomial []bls12381.G1Affine, reverseRoots []fr.Element) ([]bls12381.G1Affine, error) {
	if len(g1Monomial) != len(reverseRoots) {
		return nil, fmt.Errorf("%w: g1 monomial/domain length mismatch", ErrInternal)
	}
	jac := make([]bls12381.G1Jac, len(g1Monomial))
	for i := range g1Monomial {
		jac[i].FromAffine(&g1Monomial[i])
	}
	ifftG1(jac, reverseRoots)
	bitReversalPermuteInPlace(jac)
	return bls12381.BatchJacobianToAffineG1(jac), nil
}

// reverseRootsOf builds the (n[0], n[n-1], n[n-2], ..., n[1]) ordering that
// fftFr/fftG1 need to run in inverse mode, from a rootsOfUnity-shaped
// (n+1)-length natural-order table.
func reverseRootsOf(roots []fr.Element) []fr.Element {
	n := len(roots) - 1
	rev := make([]fr.Element, n)
	rev[0] = roots[0]
	for i := 1; i < n; i++ {
		rev[i] = roots[n-i]
	}
	return rev
}

func readG1Lines(sc *bufio.Scanner, n int) ([]bls12381.G1Affine, error) {
	out := make([]bls12381.G1Affine, n)
	for i := 0; i < n; i++ {
		if !sc.Scan() {
			return nil, fmt.Errorf("%w: expected %d lines, got %d", ErrBadArgs, n, i)
		}
		b, err := hex.DecodeString(sc.Text())
		if err != nil || len(b) != CommitmentSize {
			return nil, fmt.Errorf("%w: malformed G1 point on line %d", ErrBadArgs, i)
		}
		if _, err := out[i].SetBytes(b); err != nil {
			return nil, fmt.Errorf("%w: invalid G1 point on line %d: %v", ErrBadArgs, i, err)
		}
		if !out[i].IsInSubGroup() {
			return nil, fmt.Errorf("%w: G1 point on line %d not in subgroup", ErrBadArgs, i)
		}
	}
	return out, nil
}

func readG2Lines(sc *bufio.Scanner, n int) ([]bls12381.G2Affine, error) {
	out := make([]bls12381.G2Affine, n)
	for i := 0; i < n; i++ {
		if !sc.Scan() {
			return nil, fmt.Errorf("%w: expected %d lines, got %d", ErrBadArgs, n, i)
		}
		b, err := hex.DecodeString(sc.Text())
		if err != nil || len(b) != 96 {
			return nil, fmt.Errorf("%w: malformed G2 point on line %d", ErrBadArgs, i)
		}
		if _, err := out[i].SetBytes(b); err != nil {
			return nil, fmt.Errorf("%w: invalid G2 point on line %d: %v", ErrBadArgs, i, err)
		}
		if !out[i].IsInSubGroup() {
			return nil, fmt.Errorf("%w: G2 point on line %d not in subgroup", ErrBadArgs, i)
		}
	}
	return out, nil
}

// Destroy releases the Settings' backing arrays and moves it to the "freed"
// state; any subsequent operation against it returns ErrSettingsNotLoaded.
// Go's garbage collector reclaims the memory itself once no reference to the
// slices remains -- this method exists to make the state transition explicit
// and catch use-after-free misuse at the API boundary, the idiomatic
// replacement for the originating library's manual free() tail (see
// DESIGN.md Open Question on cleanup).
func (s *Settings) Destroy() {
	*s = Settings{}
}

func (s *Settings) checkLoaded() error {
	if s == nil || !s.loaded {
		return ErrSettingsNotLoaded
	}
	return nil
}

// WriteTo serializes the Settings to a compact binary snapshot (a
// SUPPLEMENTED FEATURE: spec §6 only specifies the human-readable text
// import format). It holds a 7-byte header, a little-endian point count and
// the compressed setup points; it skips the hex parsing of the text format,
// but ReadFrom still re-derives the roots of unity and the FK20
// precomputation from the points.
func (s *Settings) WriteTo(w io.Writer) (int64, error) {
	if err := s.checkLoaded(); err != nil {
		return 0, err
	}
	var buf bytes.Buffer
	buf.Write(settingsMagic[:])
	buf.WriteByte(settingsFormatVersion)
	buf.WriteByte(0) // endianness: 0 = little
	buf.WriteByte(8) // word size in bytes

	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(s.g1Monomial)))
	buf.Write(lenBuf[:])

	for _, p := range s.g1Monomial {
		b := p.Bytes()
		buf.Write(b[:])
	}
	for _, p := range s.g1LagrangeBRP {
		b := p.Bytes()
		buf.Write(b[:])
	}
	for _, p := range s.g2Monomial {
		b := p.Bytes()
		buf.Write(b[:])
	}

	n, err := w.Write(buf.Bytes())
	return int64(n), err
}

// ReadFrom deserializes a Settings previously produced by WriteTo and
// recomputes its roots-of-unity tables and FK20 precomputation; it does not
// persist fixed-base tables, which are cheap to rebuild from
// WithFixedBaseWindowBits if needed again.
func (s *Settings) ReadFrom(r io.Reader) (int64, error) {
	var header [7]byte
	n, err := io.ReadFull(r, header[:])
	total := int64(n)
	if err != nil {
		return total, fmt.Errorf("%w: %v", ErrBadArgs, err)
	}
	if header[0] != settingsMagic[0] || header[1] != settingsMagic[1] || header[2] != settingsMagic[2] || header[3] != settingsMagic[3] {
		return total, fmt.Errorf("%w: bad settings snapshot magic", ErrBadArgs)
	}
	if header[4] != settingsFormatVersion {
		return total, fmt.Errorf("%w: unsupported settings snapshot version %d", ErrBadArgs, header[4])
	}

	var lenBuf [4]byte
	n, err = io.ReadFull(r, lenBuf[:])
	total += int64(n)
	if err != nil {
		return total, fmt.Errorf("%w: %v", ErrBadArgs, err)
	}
	count := int(binary.LittleEndian.Uint32(lenBuf[:]))
	if count != FieldElementsPerBlob {
		return total, fmt.Errorf("%w: unexpected point count %d", ErrBadArgs, count)
	}

	g1Monomial, n, err := readAffineG1Stream(r, count)
	total += n
	if err != nil {
		return total, err
	}
	g1LagrangeBRP, n, err := readAffineG1Stream(r, count)
	total += n
	if err != nil {
		return total, err
	}
	g2Monomial, n, err := readAffineG2Stream(r, 65)
	total += n
	if err != nil {
		return total, err
	}

	built, err := assembleSettings(g1Monomial, g1LagrangeBRP, g2Monomial)
	if err != nil {
		return total, err
	}
	*s = *built
	return total, nil
}

func readAffineG1Stream(r io.Reader, count int) ([]bls12381.G1Affine, int64, error) {
	out := make([]bls12381.G1Affine, count)
	buf := make([]byte, CommitmentSize)
	var total int64
	for i := 0; i < count; i++ {
		n, err := io.ReadFull(r, buf)
		total += int64(n)
		if err != nil {
			return nil, total, fmt.Errorf("%w: %v", ErrBadArgs, err)
		}
		if _, err := out[i].SetBytes(buf); err != nil {
			return nil, total, fmt.Errorf("%w: %v", ErrBadArgs, err)
		}
	}
	return out, total, nil
}

func readAffineG2Stream(r io.Reader, count int) ([]bls12381.G2Affine, int64, error) {
	out := make([]bls12381.G2Affine, count)
	buf := make([]byte, 96)
	var total int64
	for i := 0; i < count; i++ {
		n, err := io.ReadFull(r, buf)
		total += int64(n)
		if err != nil {
			return nil, total, fmt.Errorf("%w: %v", ErrBadArgs, err)
		}
		if _, err := out[i].SetBytes(buf); err != nil {
			return nil, total, fmt.Errorf("%w: %v", ErrBadArgs, err)
		}
	}
	return out, total, nil
}
