package asp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newPositionalArg(t *testing.T, e *Engine, value Index) Index {
	t.Helper()
	arg, ok := e.arena.alloc(TypeArgument)
	require.True(t, ok)
	e.ref(value)
	e.arena.at(arg).setIdx(1, value)
	return arg
}

func newNamedArg(t *testing.T, e *Engine, symbol int32, value Index) Index {
	t.Helper()
	arg, ok := e.arena.alloc(TypeArgument)
	require.True(t, ok)
	ae := e.arena.at(arg)
	ae.bit0 = true
	ae.w0 = symbol
	e.ref(value)
	ae.setIdx(1, value)
	return arg
}

func newPlainParam(t *testing.T, e *Engine, symbol int32) Index {
	t.Helper()
	p, ok := e.arena.alloc(TypeParameter)
	require.True(t, ok)
	e.arena.at(p).w0 = symbol
	return p
}

func newDefaultedParam(t *testing.T, e *Engine, symbol int32, def Index) Index {
	t.Helper()
	p, ok := e.arena.alloc(TypeParameter)
	require.True(t, ok)
	pe := e.arena.at(p)
	pe.w0 = symbol
	pe.bit0 = true
	e.ref(def)
	pe.setIdx(1, def)
	return p
}

func newTupleGroupParam(t *testing.T, e *Engine, symbol int32) Index {
	t.Helper()
	p, ok := e.arena.alloc(TypeParameter)
	require.True(t, ok)
	pe := e.arena.at(p)
	pe.w0 = symbol
	pe.bit1 = true
	return p
}

func appendTo(t *testing.T, e *Engine, container, value Index) {
	t.Helper()
	_, res := e.sequenceAppend(container, value)
	require.Equal(t, RunResultOK, res)
	e.unref(value)
}

func TestBindArgumentsPositionalOnly(t *testing.T) {
	e := newTestEngine(t)

	args, ok := e.arena.alloc(TypeArgumentList)
	require.True(t, ok)
	params, ok := e.arena.alloc(TypeParameterList)
	require.True(t, ok)
	ns, ok := e.arena.alloc(TypeNamespace)
	require.True(t, ok)

	symX := e.internSymbol("x")
	v, _ := e.newInt(10)
	appendTo(t, e, args, newPositionalArg(t, e, v))
	appendTo(t, e, params, newPlainParam(t, e, symX))

	require.Equal(t, RunResultOK, e.bindArguments(args, params, ns))

	node, res := e.findSymbol(ns, symX)
	require.Equal(t, RunResultOK, res)
	require.NotEqual(t, Index(NilIndex), node)
	n, _ := e.IntegerValue(e.arena.nodeValue(node))
	require.EqualValues(t, 10, n)
}

func TestBindArgumentsUsesDefaultWhenOmitted(t *testing.T) {
	e := newTestEngine(t)

	args, _ := e.arena.alloc(TypeArgumentList)
	params, _ := e.arena.alloc(TypeParameterList)
	ns, _ := e.arena.alloc(TypeNamespace)

	symY := e.internSymbol("y")
	def, _ := e.newInt(99)
	appendTo(t, e, params, newDefaultedParam(t, e, symY, def))
	e.unref(def)

	require.Equal(t, RunResultOK, e.bindArguments(args, params, ns))

	node, res := e.findSymbol(ns, symY)
	require.Equal(t, RunResultOK, res)
	n, _ := e.IntegerValue(e.arena.nodeValue(node))
	require.EqualValues(t, 99, n)
}

func TestBindArgumentsMissingRequiredIsMalformed(t *testing.T) {
	e := newTestEngine(t)

	args, _ := e.arena.alloc(TypeArgumentList)
	params, _ := e.arena.alloc(TypeParameterList)
	ns, _ := e.arena.alloc(TypeNamespace)

	symZ := e.internSymbol("z")
	appendTo(t, e, params, newPlainParam(t, e, symZ))

	require.Equal(t, RunResultMalformedFunctionCall, e.bindArguments(args, params, ns))
}

func TestBindArgumentsNamedOverridesPosition(t *testing.T) {
	e := newTestEngine(t)

	args, _ := e.arena.alloc(TypeArgumentList)
	params, _ := e.arena.alloc(TypeParameterList)
	ns, _ := e.arena.alloc(TypeNamespace)

	symA := e.internSymbol("a")
	symB := e.internSymbol("b")
	appendTo(t, e, params, newPlainParam(t, e, symA))
	appendTo(t, e, params, newPlainParam(t, e, symB))

	v1, _ := e.newInt(1)
	v2, _ := e.newInt(2)
	appendTo(t, e, args, newPositionalArg(t, e, v1))
	appendTo(t, e, args, newNamedArg(t, e, symB, v2))

	require.Equal(t, RunResultOK, e.bindArguments(args, params, ns))

	nodeA, _ := e.findSymbol(ns, symA)
	na, _ := e.IntegerValue(e.arena.nodeValue(nodeA))
	require.EqualValues(t, 1, na)

	nodeB, _ := e.findSymbol(ns, symB)
	nb, _ := e.IntegerValue(e.arena.nodeValue(nodeB))
	require.EqualValues(t, 2, nb)
}

func TestBindArgumentsCollectsExtraPositionalsIntoGroup(t *testing.T) {
	e := newTestEngine(t)

	args, _ := e.arena.alloc(TypeArgumentList)
	params, _ := e.arena.alloc(TypeParameterList)
	ns, _ := e.arena.alloc(TypeNamespace)

	symRest := e.internSymbol("rest")
	appendTo(t, e, params, newTupleGroupParam(t, e, symRest))

	for _, n := range []int32{1, 2, 3} {
		v, _ := e.newInt(n)
		appendTo(t, e, args, newPositionalArg(t, e, v))
	}

	require.Equal(t, RunResultOK, e.bindArguments(args, params, ns))

	node, res := e.findSymbol(ns, symRest)
	require.Equal(t, RunResultOK, res)
	group := e.arena.nodeValue(node)
	require.Equal(t, TypeTuple, e.Type(group))
	require.EqualValues(t, 3, e.arena.seqCount(group))
}
