package asp

// arena is the fixed-capacity slab of uniform cells the engine allocates
// every object and support structure from. It never grows: capacity is
// fixed at construction to whatever the host-supplied data buffer can
// hold, and allocation failure is reported through RunResultOutOfDataMemory
// rather than by falling back to the Go heap.
type arena struct {
	entries      []entry
	freeHead     Index
	freeCount    uint32
	lowFreeCount uint32
}

// newArena builds an arena with the given number of cells, all free
// except index 0, which is reserved for the None singleton.
func newArena(capacity uint32) *arena {
	a := &arena{entries: make([]entry, capacity)}
	a.reset()
	return a
}

// reset threads every cell but index 0 onto the free list (LIFO, by
// ascending index) and installs the None singleton at index 0.
func (a *arena) reset() {
	n := uint32(len(a.entries))
	for i := uint32(0); i < n; i++ {
		a.entries[i] = entry{}
		if i == 0 {
			continue
		}
		a.entries[i].typ = TypeFree
		if i+1 < n {
			a.entries[i].setIdx(0, Index(i+1))
		} else {
			a.entries[i].setIdx(0, NilIndex)
		}
	}
	if n > 1 {
		a.freeHead = 1
		a.freeCount = n - 1
	} else {
		a.freeHead = NilIndex
		a.freeCount = 0
	}
	a.lowFreeCount = a.freeCount

	a.entries[0].typ = TypeNone
	a.entries[0].useCount = 1
}

// capacity returns the total number of cells in the arena.
func (a *arena) capacity() uint32 { return uint32(len(a.entries)) }

// at returns a pointer to the cell at index i. The caller is responsible
// for ensuring i is in range; callers within this package always derive
// indices from prior allocations or the None singleton.
func (a *arena) at(i Index) *entry {
	return &a.entries[i]
}

// alloc takes the head of the free list, stamps its type, and for object
// kinds sets its use count to 1. It returns (NilIndex, false) when the
// free list is exhausted.
func (a *arena) alloc(t DataType) (Index, bool) {
	if a.freeCount == 0 {
		return NilIndex, false
	}
	idx := a.freeHead
	e := a.at(idx)
	next := e.idx(0)
	*e = entry{}
	e.typ = t
	if t.IsObject() {
		e.useCount = 1
	}
	a.freeHead = next
	a.freeCount--
	if a.freeCount < a.lowFreeCount {
		a.lowFreeCount = a.freeCount
	}
	return idx, true
}

// free returns a non-free cell to the free list. Freeing index 0 (the
// None singleton) or an already-free cell is a programming error in the
// engine, reported as InternalError by callers via assert.
func (a *arena) free(i Index) bool {
	if i == NilIndex {
		return false
	}
	e := a.at(i)
	if e.typ == TypeFree {
		return false
	}
	*e = entry{}
	e.typ = TypeFree
	e.setIdx(0, a.freeHead)
	a.freeHead = i
	a.freeCount++
	return true
}

// freeCountNow and lowWater expose the allocator's bookkeeping to the
// host API (LowFreeCount).
func (a *arena) freeCountNow() uint32 { return a.freeCount }
func (a *arena) lowWater() uint32     { return a.lowFreeCount }
