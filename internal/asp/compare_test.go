package asp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCompareEqualityAcrossNumericTypes(t *testing.T) {
	e := newTestEngine(t)

	i, _ := e.newInt(1)
	b, _ := e.newBool(true)
	c, res := e.compare(i, b, CompareModeEquality)
	require.Equal(t, RunResultOK, res)
	require.Equal(t, 0, c)

	f, _ := e.newFloat(2)
	i2, _ := e.newInt(1)
	c, res = e.compare(f, i2, CompareModeEquality)
	require.Equal(t, RunResultOK, res)
	require.Equal(t, 1, c)
}

func TestCompareRelationalRejectsContainers(t *testing.T) {
	e := newTestEngine(t)
	set, ok := e.arena.alloc(TypeSet)
	require.True(t, ok)
	set2, ok := e.arena.alloc(TypeSet)
	require.True(t, ok)

	_, res := e.compare(set, set2, CompareModeRelational)
	require.Equal(t, RunResultUnexpectedType, res)
}

func TestCompareKeyOrdersMismatchedTypesByTag(t *testing.T) {
	e := newTestEngine(t)
	s, _ := e.newString()
	i, _ := e.newInt(1)

	c, res := e.compare(s, i, CompareModeKey)
	require.Equal(t, RunResultOK, res)
	if TypeString < TypeInteger {
		require.Equal(t, -1, c)
	} else {
		require.Equal(t, 1, c)
	}
}

func TestCompareFloatsNaNOrdering(t *testing.T) {
	c, nan := compareFloats(math.NaN(), 1.0, CompareModeKey)
	require.True(t, nan)
	require.Equal(t, -1, c)

	c, nan = compareFloats(1.0, math.NaN(), CompareModeKey)
	require.True(t, nan)
	require.Equal(t, 1, c)

	c, nan = compareFloats(math.NaN(), math.NaN(), CompareModeKey)
	require.True(t, nan)
	require.Equal(t, 0, c)
}

func TestCompareFloatsNaNIsUnequalUnderEquality(t *testing.T) {
	c, nan := compareFloats(math.NaN(), math.NaN(), CompareModeEquality)
	require.True(t, nan)
	require.NotEqual(t, 0, c)
}

func TestCompareListsElementwise(t *testing.T) {
	e := newTestEngine(t)
	left, ok := e.arena.alloc(TypeList)
	require.True(t, ok)
	right, ok := e.arena.alloc(TypeList)
	require.True(t, ok)

	for _, n := range []int32{1, 2, 3} {
		v, _ := e.newInt(n)
		e.sequenceAppend(left, v)
		e.unref(v)
	}
	for _, n := range []int32{1, 2, 4} {
		v, _ := e.newInt(n)
		e.sequenceAppend(right, v)
		e.unref(v)
	}

	c, res := e.compare(left, right, CompareModeEquality)
	require.Equal(t, RunResultOK, res)
	require.Equal(t, -1, c)

	c, res = e.compare(left, left, CompareModeEquality)
	require.Equal(t, RunResultOK, res)
	require.Equal(t, 0, c)
}
