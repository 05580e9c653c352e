package asp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDisassembleDecodesOperands(t *testing.T) {
	code := []byte{
		byte(OpPUSHI1), 2,
		byte(OpPUSHS1), 3, 'f', 'o', 'o',
		byte(OpJMP), 0, 0, 0, 0,
		byte(OpEND),
	}

	instructions, err := Disassemble(code)
	require.NoError(t, err)
	require.Len(t, instructions, 4)

	require.Equal(t, OpPUSHI1, instructions[0].Op)
	require.Equal(t, uint32(0), instructions[0].Offset)
	require.Equal(t, "2", instructions[0].Text)

	require.Equal(t, OpPUSHS1, instructions[1].Op)
	require.Equal(t, uint32(2), instructions[1].Offset)
	require.Contains(t, instructions[1].Text, `"foo"`)

	require.Equal(t, OpJMP, instructions[2].Op)
	require.Equal(t, "addr=0", instructions[2].Text)

	require.Equal(t, OpEND, instructions[3].Op)
}

func TestDisassembleStopsAtEnd(t *testing.T) {
	code := []byte{
		byte(OpEND),
		byte(OpPUSHT), // unreachable, never decoded
	}
	instructions, err := Disassemble(code)
	require.NoError(t, err)
	require.Len(t, instructions, 1)
}

func TestDisassembleReportsTruncatedOperand(t *testing.T) {
	code := []byte{byte(OpPUSHI4), 0, 0} // missing two operand bytes
	_, err := Disassemble(code)
	require.Error(t, err)
}
