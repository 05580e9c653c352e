package asp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStackPushPopOrdering(t *testing.T) {
	e := newTestEngine(t)

	a, _ := e.newInt(1)
	b, _ := e.newInt(2)
	require.Equal(t, RunResultOK, e.push(a))
	require.Equal(t, RunResultOK, e.push(b))
	e.unref(a)
	e.unref(b)

	require.Equal(t, b, e.top())
	require.Equal(t, RunResultOK, e.pop())
	require.Equal(t, a, e.top())
	require.Equal(t, RunResultOK, e.pop())
	require.Equal(t, Index(NilIndex), e.top())
}

func TestStackPopUnderflow(t *testing.T) {
	e := newTestEngine(t)
	require.Equal(t, RunResultStackUnderflow, e.pop())
}

func TestStackPushPairedCarriesAuxiliarySlot(t *testing.T) {
	e := newTestEngine(t)
	a, _ := e.newInt(1)
	b, _ := e.newInt(2)

	require.Equal(t, RunResultOK, e.pushPaired(a, b))
	require.Equal(t, a, e.top())
	require.Equal(t, b, e.topValue2())

	e.unwindStackTo(NilIndex)
	require.Equal(t, Index(NilIndex), e.top())
}

func TestSnapshotAndUnwindStack(t *testing.T) {
	e := newTestEngine(t)
	a, _ := e.newInt(1)
	require.Equal(t, RunResultOK, e.push(a))
	e.unref(a)

	mark := e.snapshotStack()

	b, _ := e.newInt(2)
	c, _ := e.newInt(3)
	require.Equal(t, RunResultOK, e.push(b))
	require.Equal(t, RunResultOK, e.push(c))
	e.unref(b)
	e.unref(c)

	e.unwindStackTo(mark)
	require.Equal(t, mark, e.snapshotStack())
	require.Equal(t, a, e.top())
}
