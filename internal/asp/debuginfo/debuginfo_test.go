package debuginfo

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func sampleSpec() *Spec {
	return &Spec{
		Files: []string{"main.asp", "lib.asp"},
		Records: []Record{
			{PC: 0, FileIndex: 0, Line: 1, Column: 1},
			{PC: 6, FileIndex: 0, Line: 2, Column: 5},
			{PC: 20, FileIndex: 1, Line: 10, Column: 1},
		},
		Symbols: []string{"main", "greet"},
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	spec := sampleSpec()

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, spec))

	got, err := Read(&buf)
	require.NoError(t, err)
	require.Equal(t, spec.Files, got.Files)
	require.Equal(t, spec.Records, got.Records)
	require.Equal(t, spec.Symbols, got.Symbols)
}

func TestLocateNearestPrecedingRecord(t *testing.T) {
	spec := sampleSpec()

	rec, file, ok := spec.Locate(10)
	require.True(t, ok)
	require.Equal(t, "main.asp", file)
	require.EqualValues(t, 2, rec.Line)

	rec, file, ok = spec.Locate(20)
	require.True(t, ok)
	require.Equal(t, "lib.asp", file)
	require.EqualValues(t, 10, rec.Line)

	rec, file, ok = spec.Locate(1000)
	require.True(t, ok)
	require.Equal(t, "lib.asp", file)
}

func TestLocateBeforeFirstRecord(t *testing.T) {
	spec := &Spec{Records: []Record{{PC: 5, FileIndex: 0, Line: 1, Column: 1}}, Files: []string{"a.asp"}}
	_, _, ok := spec.Locate(0)
	require.False(t, ok)
}

func TestReadRejectsUnsortedRecords(t *testing.T) {
	spec := &Spec{
		Files: []string{"a.asp"},
		Records: []Record{
			{PC: 10, FileIndex: 0, Line: 1, Column: 1},
			{PC: 5, FileIndex: 0, Line: 2, Column: 1},
		},
	}
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, spec))

	_, err := Read(&buf)
	require.Error(t, err)
}

func TestReadRejectsBadMagic(t *testing.T) {
	buf := bytes.NewBufferString("XspD\x00\x00\x00\x01\x00")
	_, err := Read(buf)
	require.Error(t, err)
}
