package asp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPerformUnary(t *testing.T) {
	e := newTestEngine(t)

	i, _ := e.newInt(5)
	neg, res := e.performUnary(OpNEG, i)
	require.Equal(t, RunResultOK, res)
	v, _ := e.IntegerValue(neg)
	require.EqualValues(t, -5, v)

	b, _ := e.newBool(false)
	notB, res := e.performUnary(OpLNOT, b)
	require.Equal(t, RunResultOK, res)
	bv, _ := e.BooleanValue(notB)
	require.True(t, bv)

	f, _ := e.newFloat(2.5)
	_, res = e.performUnary(OpNOT, f)
	require.Equal(t, RunResultUnexpectedType, res)
}

func TestPerformArithmeticIntegerPromotesToFloatOnDivide(t *testing.T) {
	e := newTestEngine(t)

	a, _ := e.newInt(7)
	b, _ := e.newInt(2)
	sum, res := e.performArithmetic(OpADD, a, b)
	require.Equal(t, RunResultOK, res)
	n, _ := e.IntegerValue(sum)
	require.EqualValues(t, 9, n)

	quot, res := e.performArithmetic(OpDIV, a, b)
	require.Equal(t, RunResultOK, res)
	require.Equal(t, TypeFloat, e.Type(quot))
	f, _ := e.FloatValue(quot)
	require.InDelta(t, 3.5, f, 1e-9)
}

func TestPerformArithmeticDivideByZero(t *testing.T) {
	e := newTestEngine(t)
	a, _ := e.newInt(1)
	zero, _ := e.newInt(0)

	_, res := e.performArithmetic(OpDIV, a, zero)
	require.Equal(t, RunResultDivideByZero, res)

	_, res = e.performArithmetic(OpMOD, a, zero)
	require.Equal(t, RunResultDivideByZero, res)
}

func TestPerformArithmeticModTakesDivisorSign(t *testing.T) {
	e := newTestEngine(t)
	a, _ := e.newInt(-7)
	b, _ := e.newInt(3)

	mod, res := e.performArithmetic(OpMOD, a, b)
	require.Equal(t, RunResultOK, res)
	n, _ := e.IntegerValue(mod)
	require.EqualValues(t, 2, n)
}

func TestPerformBitwiseShifts(t *testing.T) {
	e := newTestEngine(t)
	a, _ := e.newInt(1)
	b, _ := e.newInt(4)

	shifted, res := e.performBitwise(OpLSH, a, b)
	require.Equal(t, RunResultOK, res)
	n, _ := e.IntegerValue(shifted)
	require.EqualValues(t, 16, n)

	f, _ := e.newFloat(1)
	_, res = e.performBitwise(OpAND, a, f)
	require.Equal(t, RunResultUnexpectedType, res)
}

func TestPerformConcatenateStrings(t *testing.T) {
	e := newTestEngine(t)
	left, _ := e.newStringFromBytes([]byte("foo"))
	right, _ := e.newStringFromBytes([]byte("bar"))

	result, res := e.performConcatenate(left, right)
	require.Equal(t, RunResultOK, res)
	data, res := e.StringValue(result)
	require.Equal(t, RunResultOK, res)
	require.Equal(t, "foobar", string(data))
}

func TestPerformExpandList(t *testing.T) {
	e := newTestEngine(t)
	list, ok := e.arena.alloc(TypeList)
	require.True(t, ok)
	v, _ := e.newInt(9)
	e.sequenceAppend(list, v)
	e.unref(v)

	count, _ := e.newInt(3)
	result, res := e.performExpand(list, count)
	require.Equal(t, RunResultOK, res)
	require.EqualValues(t, 3, e.arena.seqCount(result))
}

func TestContainsMemberSet(t *testing.T) {
	e := newTestEngine(t)
	set, ok := e.arena.alloc(TypeSet)
	require.True(t, ok)
	k, _ := e.newInt(42)
	e.treeInsert(set, k, NilIndex)
	e.unref(k)

	member, _ := e.newInt(42)
	found, res := e.containsMember(member, set)
	require.Equal(t, RunResultOK, res)
	require.True(t, found)

	other, _ := e.newInt(1)
	found, res = e.containsMember(other, set)
	require.Equal(t, RunResultOK, res)
	require.False(t, found)
}

func TestContainsMemberString(t *testing.T) {
	e := newTestEngine(t)
	s, _ := e.newStringFromBytes([]byte("hello"))

	member, _ := e.newStringFromBytes([]byte("e"))
	found, res := e.containsMember(member, s)
	require.Equal(t, RunResultOK, res)
	require.True(t, found)

	absent, _ := e.newStringFromBytes([]byte("z"))
	found, res = e.containsMember(absent, s)
	require.Equal(t, RunResultOK, res)
	require.False(t, found)

	notAChar, _ := e.newStringFromBytes([]byte("he"))
	found, res = e.containsMember(notAChar, s)
	require.Equal(t, RunResultOK, res)
	require.False(t, found)

	i, _ := e.newInt(1)
	_, res = e.containsMember(i, s)
	require.Equal(t, RunResultUnexpectedType, res)
}

func TestContainsMemberRange(t *testing.T) {
	e := newTestEngine(t)
	r, _ := e.newRange(true, 0, true, 10, true, 2)

	in, _ := e.newInt(4)
	found, res := e.containsMember(in, r)
	require.Equal(t, RunResultOK, res)
	require.True(t, found)

	odd, _ := e.newInt(5)
	found, res = e.containsMember(odd, r)
	require.Equal(t, RunResultOK, res)
	require.False(t, found)
}
