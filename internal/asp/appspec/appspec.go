// Package appspec reads the compiled ".aspec" application specification
// file an Asp compiler emits alongside a script's bytecode: a 4-byte
// magic, a 4-byte big-endian check value, and the whitespace-separated
// list of symbol names (functions first, then their parameters) the
// compiler pre-interned so host and script bytecode agree on symbol
// numbering.
package appspec

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
)

const magicSize = 4

var magic = [magicSize]byte{'A', 's', 'p', 'S'}

// crcTable is CRC-32/ISO-HDLC, the polynomial the reference engine's
// configurable crc_spec_t defaults to for application specs (see
// original_source/appspec/crc.h); built explicitly via crc32.MakeTable
// rather than relying on crc32.IEEE's package-level table, since a
// different deployment may configure a different polynomial here.
var crcTable = crc32.MakeTable(crc32.IEEE)

// Spec is the parsed contents of a .aspec file.
type Spec struct {
	CheckValue uint32
	Names      []string
}

// Read parses a .aspec stream.
func Read(r io.Reader) (*Spec, error) {
	br := bufio.NewReader(r)

	var header [magicSize + 4]byte
	if _, err := io.ReadFull(br, header[:]); err != nil {
		return nil, fmt.Errorf("appspec: reading header: %w", err)
	}
	if [magicSize]byte(header[:magicSize]) != magic {
		return nil, fmt.Errorf("appspec: bad magic %q", header[:magicSize])
	}
	checkValue := binary.BigEndian.Uint32(header[magicSize:])

	var names []string
	scanner := bufio.NewScanner(br)
	scanner.Split(bufio.ScanWords)
	for scanner.Scan() {
		names = append(names, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("appspec: reading names: %w", err)
	}

	return &Spec{CheckValue: checkValue, Names: names}, nil
}

// Write serializes a Spec back to the .aspec format, one name per line,
// primarily for test fixtures and for hosts that build their own spec
// programmatically instead of shipping a compiler-generated file.
func Write(w io.Writer, spec *Spec) error {
	if _, err := w.Write(magic[:]); err != nil {
		return err
	}
	var checkBytes [4]byte
	binary.BigEndian.PutUint32(checkBytes[:], spec.CheckValue)
	if _, err := w.Write(checkBytes[:]); err != nil {
		return err
	}
	for _, name := range spec.Names {
		if _, err := fmt.Fprintln(w, name); err != nil {
			return err
		}
	}
	return nil
}

// ComputeCheckValue derives the check value a spec's name list produces,
// the same way the compiler couples a compiled image to the application
// spec it was built against: a CRC-32/ISO-HDLC over the names joined one
// per line, matching the layout Write/Read exchange.
func ComputeCheckValue(names []string) uint32 {
	var buf bytes.Buffer
	for _, name := range names {
		buf.WriteString(name)
		buf.WriteByte('\n')
	}
	return crc32.Checksum(buf.Bytes(), crcTable)
}
