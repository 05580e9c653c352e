package asp

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

// buildFunctionTable assembles the raw byte form ParseAppFunctionTable
// consumes, mirroring original_source/engine/function.c's encoding by
// hand rather than through the parser under test.
func buildFunctionTable(t *testing.T, functions [][]uint32) []byte {
	t.Helper()
	var raw []byte
	for _, params := range functions {
		raw = append(raw, byte(len(params)))
		for _, spec := range params {
			var b [4]byte
			binary.BigEndian.PutUint32(b[:], spec)
			raw = append(raw, b[:]...)
		}
	}
	return raw
}

func TestParseAppFunctionTablePlainAndGroupParameters(t *testing.T) {
	raw := buildFunctionTable(t, [][]uint32{
		{10, 11 | parameterFlagIsGroup},
	})

	functions, err := ParseAppFunctionTable(raw, []string{"scan"})
	require.NoError(t, err)
	require.Len(t, functions, 1)

	fn := functions[0]
	require.Equal(t, "scan", fn.Name)
	require.Len(t, fn.Parameters, 2)
	require.EqualValues(t, 10, fn.Parameters[0].Symbol)
	require.False(t, fn.Parameters[0].IsGroup)
	require.False(t, fn.Parameters[0].HasDefault)
	require.EqualValues(t, 11, fn.Parameters[1].Symbol)
	require.True(t, fn.Parameters[1].IsGroup)
}

func TestParseAppFunctionTableDefaultValues(t *testing.T) {
	var raw []byte
	raw = append(raw, 4) // 4 parameters

	// Integer default.
	var spec [4]byte
	binary.BigEndian.PutUint32(spec[:], uint32(20)|parameterFlagHasDefault)
	raw = append(raw, spec[:]...)
	raw = append(raw, defaultValueTypeInteger)
	var iv [4]byte
	binary.BigEndian.PutUint32(iv[:], uint32(int32(-7)))
	raw = append(raw, iv[:]...)

	// Boolean default.
	binary.BigEndian.PutUint32(spec[:], uint32(21)|parameterFlagHasDefault)
	raw = append(raw, spec[:]...)
	raw = append(raw, defaultValueTypeBoolean, 1)

	// Float default.
	binary.BigEndian.PutUint32(spec[:], uint32(22)|parameterFlagHasDefault)
	raw = append(raw, spec[:]...)
	raw = append(raw, defaultValueTypeFloat)
	var fv [8]byte
	binary.BigEndian.PutUint64(fv[:], math.Float64bits(2.5))
	raw = append(raw, fv[:]...)

	// String default.
	binary.BigEndian.PutUint32(spec[:], uint32(23)|parameterFlagHasDefault)
	raw = append(raw, spec[:]...)
	raw = append(raw, defaultValueTypeString)
	var sl [4]byte
	binary.BigEndian.PutUint32(sl[:], 3)
	raw = append(raw, sl[:]...)
	raw = append(raw, "abc"...)

	functions, err := ParseAppFunctionTable(raw, nil)
	require.NoError(t, err)
	require.Len(t, functions, 1)
	ps := functions[0].Parameters
	require.Len(t, ps, 4)

	require.Equal(t, AppDefaultInteger, ps[0].Default.Kind)
	require.EqualValues(t, -7, ps[0].Default.Int)

	require.Equal(t, AppDefaultBoolean, ps[1].Default.Kind)
	require.True(t, ps[1].Default.Bool)

	require.Equal(t, AppDefaultFloat, ps[2].Default.Kind)
	require.InDelta(t, 2.5, ps[2].Default.Float, 1e-9)

	require.Equal(t, AppDefaultString, ps[3].Default.Kind)
	require.Equal(t, "abc", string(ps[3].Default.String))
}

func TestParseAppFunctionTableTruncatedSpecIsError(t *testing.T) {
	raw := []byte{1, 0, 0, 0} // says one parameter, only 3 of its 4 bytes present
	_, err := ParseAppFunctionTable(raw, nil)
	require.Error(t, err)
}

func TestParseAppFunctionTableMultipleFunctionsLabeledInOrder(t *testing.T) {
	raw := buildFunctionTable(t, [][]uint32{
		{5},
		{},
		{6},
	})
	functions, err := ParseAppFunctionTable(raw, []string{"first", "second", "third", "unused-param-name"})
	require.NoError(t, err)
	require.Len(t, functions, 3)
	require.Equal(t, "first", functions[0].Name)
	require.Equal(t, "second", functions[1].Name)
	require.Equal(t, "third", functions[2].Name)
}

// TestInitializeRegistersAppFunctionsAndCallDispatchesToHost exercises the
// whole path a CLI wires up with --appspec/--appfuncs: Initialize builds a
// Function/ParameterList from an AppSpec and binds it into the system
// namespace, and CALL against that Function reenters the configured
// HostDispatch with the bound argument visible in its namespace.
func TestInitializeRegistersAppFunctionsAndCallDispatchesToHost(t *testing.T) {
	const paramSymbol = int32(200)

	appSpec := &AppSpec{
		Functions: []AppFunction{
			{Name: "double", Parameters: []AppParameter{{Symbol: paramSymbol}}},
		},
	}

	var dispatchedSymbol int32
	var dispatchedValue int32
	dispatch := func(e *Engine, symbol int32, ns Index, ret *Index) RunResult {
		dispatchedSymbol = symbol
		node, res := e.findSymbol(ns, paramSymbol)
		if res != RunResultOK {
			return res
		}
		v, res := e.IntegerValue(e.arena.nodeValue(node))
		if res != RunResultOK {
			return res
		}
		dispatchedValue = v
		out, res := e.newInt(v * 2)
		if res != RunResultOK {
			return res
		}
		*ret = out
		return RunResultOK
	}

	e := NewEngine(256, WithAppSpec(appSpec), WithDispatch(dispatch))
	require.Equal(t, RunResultOK, e.Initialize())

	fnSymbol := appSpec.Functions[0].Symbol
	require.NotZero(t, fnSymbol)

	got, ok := appSpec.FindFunction(fnSymbol)
	require.True(t, ok)
	require.Equal(t, "double", got.Name)

	node, res := e.findSymbol(e.systemNamespace, fnSymbol)
	require.Equal(t, RunResultOK, res)
	require.NotEqual(t, NilIndex, node)
	fnIdx := e.arena.nodeValue(node)
	require.Equal(t, TypeFunction, e.Type(fnIdx))

	args, ok := e.arena.alloc(TypeArgumentList)
	require.True(t, ok)
	v, _ := e.newInt(21)
	appendTo(t, e, args, newPositionalArg(t, e, v))

	require.Equal(t, RunResultOK, e.push(args))
	e.unref(args)
	require.Equal(t, RunResultOK, e.push(fnIdx))

	require.Equal(t, RunResultOK, e.execCall())
	require.EqualValues(t, fnSymbol, dispatchedSymbol)
	require.EqualValues(t, 21, dispatchedValue)

	result, res := e.IntegerValue(e.top())
	require.Equal(t, RunResultOK, res)
	require.EqualValues(t, 42, result)
}

func TestInitializeWithNoDispatchLeavesAppCallUndefined(t *testing.T) {
	appSpec := &AppSpec{
		Functions: []AppFunction{
			{Name: "noop"},
		},
	}
	e := NewEngine(256, WithAppSpec(appSpec))
	require.Equal(t, RunResultOK, e.Initialize())

	fnSymbol := appSpec.Functions[0].Symbol
	node, res := e.findSymbol(e.systemNamespace, fnSymbol)
	require.Equal(t, RunResultOK, res)
	fnIdx := e.arena.nodeValue(node)

	args, ok := e.arena.alloc(TypeArgumentList)
	require.True(t, ok)

	require.Equal(t, RunResultOK, e.push(args))
	e.unref(args)
	require.Equal(t, RunResultOK, e.push(fnIdx))

	require.Equal(t, RunResultUndefinedAppFunction, e.execCall())
}
