package asp

// Iterator wraps a single pass over a Range, String, Tuple, List, Set or
// Dictionary: w0 holds the iterable, w1 the current "member" cell (an
// Element for Tuple/List, a StringFragment for String, a tree node for
// Set/Dictionary, a freshly
// allocated Integer for Range — member==NilIndex means the iterator has
// run off the end), w2 a byte offset within the current String fragment,
// and bit0 marks whether member is an iterator-owned cell that must be
// released when the iterator advances past it or is itself torn down
// (true only for Range, whose Integer member belongs to no container).

// startIterator implements SITER: allocate an Iterator over iterable and
// position it at the first member, or already-at-end if iterable is
// empty.
func (e *Engine) startIterator(iterable Index) (Index, RunResult) {
	if !e.arena.at(iterable).typ.IsObject() {
		return NilIndex, RunResultUnexpectedType
	}

	it, ok := e.arena.alloc(TypeIterator)
	if !ok {
		return NilIndex, RunResultOutOfDataMemory
	}
	e.ref(iterable)
	e.arena.at(it).setIdx(0, iterable)

	switch e.arena.at(iterable).typ {
	case TypeRange:
		start, end, step, hasStart, hasEnd, hasStep := e.rangeFields(iterable)
		if !hasStart {
			start = 0
		}
		if !hasStep {
			step = 1
		}
		if hasEnd && rangeAtEnd(start, end, step) {
			e.arena.at(it).setIdx(1, NilIndex)
		} else {
			member, ok := e.arena.alloc(TypeInteger)
			if !ok {
				e.unref(it)
				return NilIndex, RunResultOutOfDataMemory
			}
			e.arena.at(member).w0 = start
			e.arena.at(it).setIdx(1, member)
			e.arena.at(it).bit0 = true
		}

	case TypeString, TypeTuple, TypeList:
		member, _ := e.sequenceNext(iterable, NilIndex)
		e.arena.at(it).setIdx(1, member)
		e.arena.at(it).w2 = 0

	case TypeSet, TypeDictionary:
		node, _, _, res := e.treeNext(iterable, NilIndex)
		if res != RunResultOK {
			e.unref(it)
			return NilIndex, res
		}
		e.arena.at(it).setIdx(1, node)

	default:
		e.unref(it)
		return NilIndex, RunResultUnexpectedType
	}

	return it, RunResultOK
}

// testIterator implements TITER: true while the iterator has not yet
// run off the end of its iterable.
func (e *Engine) testIterator(it Index) bool {
	return e.arena.at(it).idx(1) != NilIndex
}

// advanceIterator implements NITER: step the iterator to its next
// member, a no-op once already at the end.
func (e *Engine) advanceIterator(it Index) RunResult {
	ie := e.arena.at(it)
	iterable := ie.idx(0)
	member := ie.idx(1)
	if member == NilIndex {
		return RunResultOK
	}

	switch e.arena.at(iterable).typ {
	case TypeRange:
		_, end, step, _, hasEnd, hasStep := e.rangeFields(iterable)
		if !hasStep {
			step = 1
		}
		newValue := e.arena.at(member).w0 + step
		if hasEnd && rangeAtEnd(newValue, end, step) {
			e.unref(member)
			ie.bit0 = false
			ie.setIdx(1, NilIndex)
		} else {
			e.arena.at(member).w0 = newValue
		}

	case TypeString:
		fragment := member
		size := e.arena.at(fragment).blen
		if ie.w2+1 < int32(size) {
			ie.w2++
			return RunResultOK
		}
		ie.w2 = 0
		next, _ := e.sequenceNext(iterable, member)
		ie.setIdx(1, next)

	case TypeTuple, TypeList:
		next, _ := e.sequenceNext(iterable, member)
		ie.setIdx(1, next)

	case TypeSet, TypeDictionary:
		next, _, _, res := e.treeNext(iterable, member)
		if res != RunResultOK {
			return res
		}
		ie.setIdx(1, next)

	default:
		return RunResultUnexpectedType
	}
	return RunResultOK
}

// dereferenceIterator implements DITER: produce the value the iterator
// currently designates (an Integer for Range, a one-character String for
// String, the element value for Tuple/List, the key for Set, or a
// (key, value) Tuple for Dictionary), taking a fresh reference on it.
func (e *Engine) dereferenceIterator(it Index) (Index, RunResult) {
	ie := e.arena.at(it)
	iterable := ie.idx(0)
	member := ie.idx(1)
	if member == NilIndex {
		return NilIndex, RunResultIteratorAtEnd
	}

	switch e.arena.at(iterable).typ {
	case TypeRange:
		e.ref(member)
		return member, RunResultOK

	case TypeString:
		fragment := member
		c := e.arena.at(fragment).bytes[ie.w2]
		return e.newStringFromBytes([]byte{c})

	case TypeTuple, TypeList:
		value := e.arena.elemValue(member)
		e.ref(value)
		return value, RunResultOK

	case TypeSet:
		key := e.arena.nodeKey(member)
		e.ref(key)
		return key, RunResultOK

	case TypeDictionary:
		key := e.arena.nodeKey(member)
		value := e.arena.nodeValue(member)
		tuple, ok := e.arena.alloc(TypeTuple)
		if !ok {
			return NilIndex, RunResultOutOfDataMemory
		}
		if _, res := e.sequenceAppend(tuple, key); res != RunResultOK {
			e.unref(tuple)
			return NilIndex, res
		}
		if _, res := e.sequenceAppend(tuple, value); res != RunResultOK {
			e.unref(tuple)
			return NilIndex, res
		}
		return tuple, RunResultOK

	default:
		return NilIndex, RunResultUnexpectedType
	}
}
