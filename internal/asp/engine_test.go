package asp

import (
	"testing"

	shellquote "github.com/kballard/go-shellquote"
	"github.com/stretchr/testify/require"
)

// buildImage prepends the fixed 12-byte image header (signature, a
// placeholder version, and a check value AddCode ignores when no AppSpec
// was configured) to a raw instruction stream.
func buildImage(code []byte) []byte {
	header := []byte{'A', 's', 'p', 'E', 0, 0, 0, 0, 0, 0, 0, 0}
	return append(header, code...)
}

func newReadyEngine(t *testing.T, code []byte) *Engine {
	t.Helper()
	e := NewEngine(256)
	require.Equal(t, RunResultOK, e.Initialize())
	require.Equal(t, RunResultOK, e.AddCode(buildImage(code)))
	require.Equal(t, RunResultOK, e.Seal())
	return e
}

func TestEngineAddsTwoIntegers(t *testing.T) {
	code := []byte{
		byte(OpPUSHI1), 2,
		byte(OpPUSHI1), 3,
		byte(OpADD),
		byte(OpPOP),
		byte(OpEND),
	}
	e := newReadyEngine(t, code)

	require.Equal(t, RunResultOK, e.Step()) // PUSHI1 2
	require.Equal(t, RunResultOK, e.Step()) // PUSHI1 3
	require.Equal(t, RunResultOK, e.Step()) // ADD

	sum := e.top()
	require.Equal(t, TypeInteger, e.Type(sum))
	v, res := e.IntegerValue(sum)
	require.Equal(t, RunResultOK, res)
	require.EqualValues(t, 5, v)

	require.Equal(t, RunResultOK, e.Step()) // POP
	require.Equal(t, RunResultComplete, e.Step())
	require.Equal(t, StateEnded, e.State())
}

func TestEngineEndWithNonEmptyStackIsInvalid(t *testing.T) {
	code := []byte{
		byte(OpPUSHI0),
		byte(OpEND),
	}
	e := newReadyEngine(t, code)

	require.Equal(t, RunResultOK, e.Step())
	require.Equal(t, RunResultInvalidEnd, e.Step())
	require.Equal(t, StateRunError, e.State())
}

func TestEngineShortCircuitOr(t *testing.T) {
	// True or <never evaluated> must leave True on the stack, with the
	// jump target landing exactly on POP/END so the right operand's own
	// PUSHF never executes.
	code := []byte{
		byte(OpPUSHT),         // offset 0
		byte(OpLOR), 0, 0, 0, 7, // offset 1, jump target offset 7 (POP)
		byte(OpPUSHF), // offset 6, skipped
		byte(OpPOP),   // offset 7
		byte(OpEND),   // offset 8
	}
	e := newReadyEngine(t, code)

	require.Equal(t, RunResultOK, e.Step()) // PUSHT
	require.Equal(t, RunResultOK, e.Step()) // LOR, jumps over PUSHF

	top := e.top()
	require.Equal(t, TypeBoolean, e.Type(top))
	b, res := e.BooleanValue(top)
	require.Equal(t, RunResultOK, res)
	require.True(t, b)

	require.EqualValues(t, 7, e.ProgramCounter())
	require.Equal(t, RunResultOK, e.Step()) // POP
	require.Equal(t, RunResultComplete, e.Step())
}

func TestEngineArgumentsRoundTrip(t *testing.T) {
	code := []byte{byte(OpEND)}
	e := newReadyEngine(t, code)

	require.Equal(t, RunResultOK, e.SetArguments([]string{"a", "b c"}))

	tuple, res := e.findSystemTuple()
	require.Equal(t, RunResultOK, res)
	require.EqualValues(t, 3, e.arena.seqCount(tuple))

	_, first := e.sequenceNext(tuple, NilIndex)
	data, res := e.StringValue(first)
	require.Equal(t, RunResultOK, res)
	roundTripped, err := shellquote.Split(string(data))
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b c"}, roundTripped)
}

func TestEngineRejectsBadSignature(t *testing.T) {
	e := NewEngine(64)
	require.Equal(t, RunResultOK, e.Initialize())
	bad := append([]byte{'X', 'X', 'X', 'X'}, make([]byte, 8)...)
	require.Equal(t, RunResultInitializationError, e.AddCode(bad))
	require.Equal(t, StateLoadError, e.State())
}
