package asp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIteratorOverList(t *testing.T) {
	e := newTestEngine(t)
	list, ok := e.arena.alloc(TypeList)
	require.True(t, ok)
	for _, n := range []int32{1, 2, 3} {
		v, _ := e.newInt(n)
		e.sequenceAppend(list, v)
		e.unref(v)
	}

	it, res := e.startIterator(list)
	require.Equal(t, RunResultOK, res)

	var seen []int32
	for e.testIterator(it) {
		v, res := e.dereferenceIterator(it)
		require.Equal(t, RunResultOK, res)
		n, _ := e.IntegerValue(v)
		seen = append(seen, n)
		e.unref(v)
		require.Equal(t, RunResultOK, e.advanceIterator(it))
	}
	require.Equal(t, []int32{1, 2, 3}, seen)
	require.False(t, e.testIterator(it))
}

func TestIteratorOverEmptyListStartsAtEnd(t *testing.T) {
	e := newTestEngine(t)
	list, ok := e.arena.alloc(TypeList)
	require.True(t, ok)

	it, res := e.startIterator(list)
	require.Equal(t, RunResultOK, res)
	require.False(t, e.testIterator(it))

	_, res = e.dereferenceIterator(it)
	require.Equal(t, RunResultIteratorAtEnd, res)
}

func TestIteratorOverRangeWithStep(t *testing.T) {
	e := newTestEngine(t)
	r, _ := e.newRange(true, 0, true, 6, true, 2)

	it, res := e.startIterator(r)
	require.Equal(t, RunResultOK, res)

	var seen []int32
	for e.testIterator(it) {
		v, res := e.dereferenceIterator(it)
		require.Equal(t, RunResultOK, res)
		n, _ := e.IntegerValue(v)
		seen = append(seen, n)
		e.unref(v)
		require.Equal(t, RunResultOK, e.advanceIterator(it))
	}
	require.Equal(t, []int32{0, 2, 4}, seen)
}

func TestIteratorOverDictionaryYieldsKeyValueTuples(t *testing.T) {
	e := newTestEngine(t)
	dict, ok := e.arena.alloc(TypeDictionary)
	require.True(t, ok)

	k, _ := e.newInt(1)
	v, _ := e.newInt(100)
	_, res := e.treeInsert(dict, k, v)
	require.Equal(t, RunResultOK, res)
	e.unref(k)
	e.unref(v)

	it, res := e.startIterator(dict)
	require.Equal(t, RunResultOK, res)
	require.True(t, e.testIterator(it))

	pair, res := e.dereferenceIterator(it)
	require.Equal(t, RunResultOK, res)
	require.Equal(t, TypeTuple, e.Type(pair))
	require.EqualValues(t, 2, e.arena.seqCount(pair))
	e.unref(pair)
}
