// Package debuginfo reads the ".aspd" debug information file an Asp
// compiler emits alongside a bytecode image: source file names, a table
// mapping program counter ranges to (file, line, column), and an optional
// symbol-name table. cmd/aspinfo uses this to translate a bare pc (from
// an EngineError, say) back into a source location.
package debuginfo

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"sort"
)

const (
	magicSize  = 4
	headerSize = 8 // magic(4) + reserved(2) + version(2)
)

var magic = [magicSize]byte{'A', 's', 'p', 'D'}

// Version is the one format version this reader understands, encoded as
// the two bytes "\x00\x01" in the file header.
var Version = [2]byte{0, 1}

// endOfRecords marks the fixed-size record table's terminator: a record
// whose source-file index is this sentinel.
const endOfRecords = math.MaxUint32

// Record maps one program-counter value to a source location.
type Record struct {
	PC        uint32
	FileIndex uint32
	Line      uint32
	Column    uint32
}

// Spec is the parsed contents of an .aspd file.
type Spec struct {
	Files   []string // source file names, in declared order
	Records []Record // sorted by PC
	Symbols []string // optional; empty if the file carries none
}

// Read parses an .aspd stream.
func Read(r io.Reader) (*Spec, error) {
	br := bufio.NewReader(r)

	var header [headerSize]byte
	if _, err := io.ReadFull(br, header[:]); err != nil {
		return nil, fmt.Errorf("debuginfo: reading header: %w", err)
	}
	if [magicSize]byte(header[:magicSize]) != magic {
		return nil, fmt.Errorf("debuginfo: bad magic %q", header[:magicSize])
	}
	version := [2]byte{header[6], header[7]}
	if version != Version {
		return nil, fmt.Errorf("debuginfo: unsupported version %v", version)
	}

	files, err := readNulStrings(br)
	if err != nil {
		return nil, fmt.Errorf("debuginfo: reading file names: %w", err)
	}

	var records []Record
	var rec [16]byte
	for {
		if _, err := io.ReadFull(br, rec[:]); err != nil {
			return nil, fmt.Errorf("debuginfo: reading record: %w", err)
		}
		fileIndex := binary.BigEndian.Uint32(rec[4:8])
		if fileIndex == endOfRecords {
			break
		}
		records = append(records, Record{
			PC:        binary.BigEndian.Uint32(rec[0:4]),
			FileIndex: fileIndex,
			Line:      binary.BigEndian.Uint32(rec[8:12]),
			Column:    binary.BigEndian.Uint32(rec[12:16]),
		})
	}
	if !sort.SliceIsSorted(records, func(i, j int) bool { return records[i].PC < records[j].PC }) {
		return nil, fmt.Errorf("debuginfo: record table is not sorted by pc")
	}

	symbols, err := readNulStrings(br)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("debuginfo: reading symbol table: %w", err)
	}

	return &Spec{Files: files, Records: records, Symbols: symbols}, nil
}

// readNulStrings reads consecutive NUL-terminated strings until a single
// empty one (a lone NUL byte) terminates the list, or EOF.
func readNulStrings(br *bufio.Reader) ([]string, error) {
	var out []string
	for {
		s, err := br.ReadString(0)
		if err == io.EOF {
			if s == "" {
				return out, io.EOF
			}
			return nil, io.ErrUnexpectedEOF
		}
		if err != nil {
			return nil, err
		}
		s = s[:len(s)-1] // drop the NUL
		if s == "" {
			return out, nil
		}
		out = append(out, s)
	}
}

// Locate finds the most recent record at or before pc, the same "nearest
// preceding boundary" rule a line-table lookup uses for an instruction
// pc that doesn't start a new source line. ok is false if pc precedes
// every record (e.g. it falls in prologue bytes with no line mapping).
func (s *Spec) Locate(pc uint32) (rec Record, file string, ok bool) {
	i := sort.Search(len(s.Records), func(i int) bool { return s.Records[i].PC > pc })
	if i == 0 {
		return Record{}, "", false
	}
	rec = s.Records[i-1]
	if int(rec.FileIndex) >= len(s.Files) {
		return rec, "", true
	}
	return rec, s.Files[rec.FileIndex], true
}

// Write serializes a Spec back to the .aspd format, primarily for test
// fixtures and for a host-side compiler that wants to emit one
// programmatically instead of hand-assembling the byte stream.
func Write(w io.Writer, spec *Spec) error {
	if _, err := w.Write(magic[:]); err != nil {
		return err
	}
	if _, err := w.Write([]byte{0, 0}); err != nil {
		return err
	}
	if _, err := w.Write(Version[:]); err != nil {
		return err
	}

	if err := writeNulStrings(w, spec.Files); err != nil {
		return err
	}

	for _, rec := range spec.Records {
		var buf [16]byte
		binary.BigEndian.PutUint32(buf[0:4], rec.PC)
		binary.BigEndian.PutUint32(buf[4:8], rec.FileIndex)
		binary.BigEndian.PutUint32(buf[8:12], rec.Line)
		binary.BigEndian.PutUint32(buf[12:16], rec.Column)
		if _, err := w.Write(buf[:]); err != nil {
			return err
		}
	}
	var terminator [16]byte
	binary.BigEndian.PutUint32(terminator[4:8], endOfRecords)
	if _, err := w.Write(terminator[:]); err != nil {
		return err
	}

	return writeNulStrings(w, spec.Symbols)
}

func writeNulStrings(w io.Writer, names []string) error {
	for _, name := range names {
		if _, err := io.WriteString(w, name); err != nil {
			return err
		}
		if _, err := w.Write([]byte{0}); err != nil {
			return err
		}
	}
	_, err := w.Write([]byte{0})
	return err
}
