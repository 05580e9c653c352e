package asp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestList(t *testing.T, e *Engine) Index {
	t.Helper()
	list, ok := e.arena.alloc(TypeList)
	require.True(t, ok)
	return list
}

func TestSequenceAppendAndIndex(t *testing.T) {
	e := newTestEngine(t)
	list := newTestList(t, e)

	for _, n := range []int32{10, 20, 30} {
		v, _ := e.newInt(n)
		_, res := e.sequenceAppend(list, v)
		require.Equal(t, RunResultOK, res)
		e.unref(v)
	}
	require.EqualValues(t, 3, e.arena.seqCount(list))

	_, v, res := e.sequenceIndex(list, 0)
	require.Equal(t, RunResultOK, res)
	n, _ := e.IntegerValue(v)
	require.EqualValues(t, 10, n)

	_, v, res = e.sequenceIndex(list, -1)
	require.Equal(t, RunResultOK, res)
	n, _ = e.IntegerValue(v)
	require.EqualValues(t, 30, n)

	_, _, res = e.sequenceIndex(list, 3)
	require.Equal(t, RunResultValueOutOfRange, res)
}

func TestSequenceInsertBeforeElement(t *testing.T) {
	e := newTestEngine(t)
	list := newTestList(t, e)

	a, _ := e.newInt(1)
	b, _ := e.newInt(2)
	elA, _ := e.sequenceAppend(list, a)
	_, _ = e.sequenceAppend(list, b)
	e.unref(a)
	e.unref(b)

	mid, _ := e.newInt(99)
	_, res := e.sequenceInsertBeforeElement(list, elA, mid)
	require.Equal(t, RunResultOK, res)
	e.unref(mid)

	var out []int32
	cursor := Index(NilIndex)
	for {
		next, v := e.sequenceNext(list, cursor)
		if next == NilIndex {
			break
		}
		n, _ := e.IntegerValue(v)
		out = append(out, n)
		cursor = next
	}
	require.Equal(t, []int32{99, 1, 2}, out)
}

func TestSequenceEraseByIndex(t *testing.T) {
	e := newTestEngine(t)
	list := newTestList(t, e)

	for _, n := range []int32{1, 2, 3} {
		v, _ := e.newInt(n)
		_, _ = e.sequenceAppend(list, v)
		e.unref(v)
	}

	require.Equal(t, RunResultOK, e.sequenceEraseByIndex(list, 1, true))
	require.EqualValues(t, 2, e.arena.seqCount(list))

	_, v, res := e.sequenceIndex(list, 0)
	require.Equal(t, RunResultOK, res)
	n, _ := e.IntegerValue(v)
	require.EqualValues(t, 1, n)

	_, v, res = e.sequenceIndex(list, 1)
	require.Equal(t, RunResultOK, res)
	n, _ = e.IntegerValue(v)
	require.EqualValues(t, 3, n)
}

func TestSequencePopFrontDrainsAndStops(t *testing.T) {
	e := newTestEngine(t)
	list := newTestList(t, e)

	v1, _ := e.newInt(7)
	e.sequenceAppend(list, v1)
	e.unref(v1)

	value, ok, res := e.sequencePopFront(list)
	require.Equal(t, RunResultOK, res)
	require.True(t, ok)
	n, _ := e.IntegerValue(value)
	require.EqualValues(t, 7, n)
	e.unref(value)
	require.EqualValues(t, 0, e.arena.seqCount(list))

	_, ok, res = e.sequencePopFront(list)
	require.Equal(t, RunResultOK, res)
	require.False(t, ok)
}
