package asp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// newTestScriptFunction builds a Function object wired to entryPC with a
// single plain parameter named by symbol, the way MKPAR1+BLD+MKFUN would
// at the bytecode level, grounding the test directly on the arena layout
// execCall/execMkFun expect rather than replaying opcodes.
func newTestScriptFunction(t *testing.T, e *Engine, symbol int32, entryPC int32) Index {
	t.Helper()
	params, ok := e.arena.alloc(TypeParameterList)
	require.True(t, ok)
	p := newPlainParam(t, e, symbol)
	appendTo(t, e, params, p)

	fn, ok := e.arena.alloc(TypeFunction)
	require.True(t, ok)
	fe := e.arena.at(fn)
	e.ref(e.module)
	fe.setIdx(1, e.module)
	fe.setIdx(2, params)
	fe.w0 = entryPC
	return fn
}

func TestCallPushesFrameAndBindsParameter(t *testing.T) {
	e := newReadyEngine(t, []byte{byte(OpEND)})

	symX := e.internSymbol("x")
	fn := newTestScriptFunction(t, e, symX, 0x42)

	args, ok := e.arena.alloc(TypeArgumentList)
	require.True(t, ok)
	v, _ := e.newInt(7)
	appendTo(t, e, args, newPositionalArg(t, e, v))

	savedPC := e.pc
	savedNS := e.localNamespace

	require.Equal(t, RunResultOK, e.push(args))
	e.unref(args)
	require.Equal(t, RunResultOK, e.push(fn))
	e.unref(fn)

	require.Equal(t, RunResultOK, e.execCall())

	require.EqualValues(t, 0x42, e.pc)
	require.NotEqual(t, savedNS, e.localNamespace)

	node, res := e.findSymbol(e.localNamespace, symX)
	require.Equal(t, RunResultOK, res)
	n, _ := e.IntegerValue(e.arena.nodeValue(node))
	require.EqualValues(t, 7, n)

	require.Equal(t, TypeFrame, e.Type(e.top()))

	retVal, _ := e.newInt(99)
	require.Equal(t, RunResultOK, e.push(retVal))
	e.unref(retVal)

	require.Equal(t, RunResultOK, e.execRet())
	require.EqualValues(t, savedPC, e.pc)
	require.Equal(t, savedNS, e.localNamespace)

	result, res := e.IntegerValue(e.top())
	require.Equal(t, RunResultOK, res)
	require.EqualValues(t, 99, result)
}

func TestCallMissingRequiredParameterIsMalformed(t *testing.T) {
	e := newReadyEngine(t, []byte{byte(OpEND)})

	symY := e.internSymbol("y")
	fn := newTestScriptFunction(t, e, symY, 0)

	args, ok := e.arena.alloc(TypeArgumentList)
	require.True(t, ok)

	require.Equal(t, RunResultOK, e.push(args))
	e.unref(args)
	require.Equal(t, RunResultOK, e.push(fn))
	e.unref(fn)

	require.Equal(t, RunResultMalformedFunctionCall, e.execCall())
}
