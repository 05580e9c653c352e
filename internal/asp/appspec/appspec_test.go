package appspec

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteReadRoundTrip(t *testing.T) {
	names := []string{"main", "greet", "name", "count"}
	spec := &Spec{CheckValue: ComputeCheckValue(names), Names: names}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, spec))

	got, err := Read(&buf)
	require.NoError(t, err)
	require.Equal(t, spec.CheckValue, got.CheckValue)
	require.Equal(t, spec.Names, got.Names)
}

func TestReadRejectsBadMagic(t *testing.T) {
	buf := bytes.NewBufferString("XxxS\x00\x00\x00\x00main")
	_, err := Read(buf)
	require.Error(t, err)
}

func TestComputeCheckValueIsOrderSensitive(t *testing.T) {
	a := ComputeCheckValue([]string{"one", "two"})
	b := ComputeCheckValue([]string{"two", "one"})
	require.NotEqual(t, a, b)
}

func TestReadEmptyNameList(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, &Spec{CheckValue: 42}))

	got, err := Read(&buf)
	require.NoError(t, err)
	require.Equal(t, uint32(42), got.CheckValue)
	require.Empty(t, got.Names)
}
