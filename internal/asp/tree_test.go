package asp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e := NewEngine(256)
	require.Equal(t, RunResultOK, e.Initialize())
	return e
}

func TestDictionaryInsertFindReplace(t *testing.T) {
	e := newTestEngine(t)

	dict, ok := e.arena.alloc(TypeDictionary)
	require.True(t, ok)

	k1, _ := e.newInt(1)
	v1, _ := e.newInt(100)
	res, rr := e.treeInsert(dict, k1, v1)
	require.Equal(t, RunResultOK, rr)
	require.True(t, res.Inserted)
	e.unref(k1)
	e.unref(v1)

	k2, _ := e.newInt(2)
	v2, _ := e.newInt(200)
	_, rr = e.treeInsert(dict, k2, v2)
	require.Equal(t, RunResultOK, rr)
	e.unref(k2)
	e.unref(v2)

	require.EqualValues(t, 2, e.arena.treeCount(dict))

	lookupKey, _ := e.newInt(1)
	_, foundValue, rr := e.treeFind(dict, lookupKey)
	e.unref(lookupKey)
	require.Equal(t, RunResultOK, rr)
	n, rr := e.IntegerValue(foundValue)
	require.Equal(t, RunResultOK, rr)
	require.EqualValues(t, 100, n)

	// Re-inserting the same key replaces the value rather than adding a node.
	k1Again, _ := e.newInt(1)
	v1New, _ := e.newInt(999)
	replaceRes, rr := e.treeInsert(dict, k1Again, v1New)
	require.Equal(t, RunResultOK, rr)
	require.False(t, replaceRes.Inserted)
	e.unref(k1Again)
	e.unref(v1New)
	require.EqualValues(t, 2, e.arena.treeCount(dict))

	lookupKey2, _ := e.newInt(1)
	_, foundValue2, rr := e.treeFind(dict, lookupKey2)
	e.unref(lookupKey2)
	require.Equal(t, RunResultOK, rr)
	n2, _ := e.IntegerValue(foundValue2)
	require.EqualValues(t, 999, n2)
}

func TestTreeNextVisitsInKeyOrder(t *testing.T) {
	e := newTestEngine(t)

	set, ok := e.arena.alloc(TypeSet)
	require.True(t, ok)

	for _, n := range []int32{5, 1, 3} {
		key, _ := e.newInt(n)
		_, rr := e.treeInsert(set, key, NilIndex)
		require.Equal(t, RunResultOK, rr)
		e.unref(key)
	}

	var seen []int32
	node := Index(NilIndex)
	for {
		next, key, _, rr := e.treeNext(set, node)
		require.Equal(t, RunResultOK, rr)
		if next == NilIndex {
			break
		}
		v, _ := e.IntegerValue(key)
		seen = append(seen, v)
		node = next
	}
	require.Equal(t, []int32{1, 3, 5}, seen)
}

func TestNamespaceTryInsertBySymbolIsIdempotent(t *testing.T) {
	e := newTestEngine(t)

	ns, ok := e.arena.alloc(TypeNamespace)
	require.True(t, ok)

	sym := e.internSymbol("x")
	v1, _ := e.newInt(1)
	res, rr := e.treeTryInsertBySymbol(ns, sym, v1)
	require.Equal(t, RunResultOK, rr)
	require.True(t, res.Inserted)

	v2, _ := e.newInt(2)
	res2, rr := e.treeTryInsertBySymbol(ns, sym, v2)
	require.Equal(t, RunResultOK, rr)
	require.False(t, res2.Inserted)
	n, _ := e.IntegerValue(res2.Value)
	require.EqualValues(t, 1, n) // first binding wins; second value untouched
	e.unref(v2)
}
