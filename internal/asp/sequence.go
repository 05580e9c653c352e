package asp

// Sequence containers (Tuple, List, ParameterList, ArgumentList) are
// doubly linked chains of Element cells; String is a doubly linked chain
// of StringFragment cells instead, each holding up to 14 inline bytes.
// Both share the same head/tail/count fields on the container cell, so
// the traversal primitives below serve all of them — string-specific
// byte operations live in string.go.

func (a *arena) seqHead(c Index) Index     { return a.at(c).idx(0) }
func (a *arena) seqTail(c Index) Index     { return a.at(c).idx(1) }
func (a *arena) seqCount(c Index) int32    { return a.at(c).w3 }
func (a *arena) setSeqHead(c Index, v Index)  { a.at(c).setIdx(0, v) }
func (a *arena) setSeqTail(c Index, v Index)  { a.at(c).setIdx(1, v) }
func (a *arena) setSeqCount(c Index, n int32) { a.at(c).w3 = n }

func (a *arena) elemPrev(el Index) Index      { return a.at(el).idx(0) }
func (a *arena) elemNext(el Index) Index      { return a.at(el).idx(1) }
func (a *arena) elemValue(el Index) Index     { return a.at(el).idx(2) }
func (a *arena) setElemPrev(el Index, v Index)  { a.at(el).setIdx(0, v) }
func (a *arena) setElemNext(el Index, v Index)  { a.at(el).setIdx(1, v) }
func (a *arena) setElemValue(el Index, v Index) { a.at(el).setIdx(2, v) }

// sizeChangeFor returns how much a container's count changes when value
// is added or removed: for String containers this is the fragment's byte
// length; for every other sequence kind it is always 1.
func (e *Engine) sizeChangeFor(container Index, value Index) int32 {
	if e.arena.at(container).typ == TypeString {
		return int32(e.arena.at(value).blen)
	}
	return 1
}

// sequenceAppend adds value to the tail of the sequence container,
// allocating a new Element cell and taking a reference on value.
func (e *Engine) sequenceAppend(container, value Index) (Index, RunResult) {
	el, ok := e.arena.alloc(TypeElement)
	if !ok {
		return NilIndex, RunResultOutOfDataMemory
	}
	e.ref(value)
	e.arena.setElemValue(el, value)

	if e.arena.seqHead(container) == NilIndex {
		e.arena.setSeqHead(container, el)
		e.arena.setSeqTail(container, el)
	} else {
		tail := e.arena.seqTail(container)
		e.arena.setElemNext(tail, el)
		e.arena.setElemPrev(el, tail)
		e.arena.setSeqTail(container, el)
	}
	e.arena.setSeqCount(container, e.arena.seqCount(container)+e.sizeChangeFor(container, value))
	return el, RunResultOK
}

// sequenceInsertBeforeElement inserts value immediately before element
// (or at the tail, if element is NilIndex).
func (e *Engine) sequenceInsertBeforeElement(container, element, value Index) (Index, RunResult) {
	if element == NilIndex {
		return e.sequenceAppend(container, value)
	}
	el, ok := e.arena.alloc(TypeElement)
	if !ok {
		return NilIndex, RunResultOutOfDataMemory
	}
	e.ref(value)
	e.arena.setElemValue(el, value)

	prev := e.arena.elemPrev(element)
	e.arena.setElemNext(el, element)
	e.arena.setElemPrev(el, prev)
	if prev == NilIndex {
		e.arena.setSeqHead(container, el)
	} else {
		e.arena.setElemNext(prev, el)
	}
	e.arena.setElemPrev(element, el)

	e.arena.setSeqCount(container, e.arena.seqCount(container)+e.sizeChangeFor(container, value))
	return el, RunResultOK
}

// sequenceInsertByIndex inserts value so it becomes element index in the
// sequence; -1 and index==count both append.
func (e *Engine) sequenceInsertByIndex(container Index, index int32, value Index) (Index, RunResult) {
	count := e.arena.seqCount(container)
	if index == -1 || index == count {
		return e.sequenceAppend(container, value)
	}
	if index < 0 {
		index++
	}
	target, _, res := e.sequenceIndex(container, index)
	if res != RunResultOK {
		return NilIndex, res
	}
	if target == NilIndex {
		return NilIndex, RunResultValueOutOfRange
	}
	return e.sequenceInsertBeforeElement(container, target, value)
}

// sequenceEraseElement unlinks element from container, optionally
// releasing the value it held (eraseValue is false when the caller is
// taking ownership of the value reference, e.g. POP from an address
// sequence).
func (e *Engine) sequenceEraseElement(container, element Index, eraseValue bool) RunResult {
	prev := e.arena.elemPrev(element)
	next := e.arena.elemNext(element)
	if prev == NilIndex {
		e.arena.setSeqHead(container, next)
	} else {
		e.arena.setElemNext(prev, next)
	}
	if next == NilIndex {
		e.arena.setSeqTail(container, prev)
	} else {
		e.arena.setElemPrev(next, prev)
	}

	value := e.arena.elemValue(element)
	sizeChange := e.sizeChangeFor(container, value)

	isString := e.arena.at(container).typ == TypeString
	if eraseValue && (isString || e.arena.at(value).typ.IsObject()) {
		if res := e.unref(value); res != RunResultOK {
			return res
		}
	}
	if res := e.unref(element); res != RunResultOK {
		return res
	}

	e.arena.setSeqCount(container, e.arena.seqCount(container)-sizeChange)
	return RunResultOK
}

// sequenceEraseByIndex erases the element currently at index.
func (e *Engine) sequenceEraseByIndex(container Index, index int32, eraseValue bool) RunResult {
	element, _, res := e.sequenceIndex(container, index)
	if res != RunResultOK {
		return res
	}
	if element == NilIndex {
		return RunResultValueOutOfRange
	}
	return e.sequenceEraseElement(container, element, eraseValue)
}

// sequenceIndex resolves a (possibly negative) logical index to its
// Element cell and value, in O(1) for the tail element and O(n) bounded
// by the cycle-detection limit otherwise.
func (e *Engine) sequenceIndex(container Index, index int32) (Index, Index, RunResult) {
	count := e.arena.seqCount(container)
	if index < 0 {
		index += count
	}
	if index < 0 || index >= count {
		return NilIndex, NilIndex, RunResultValueOutOfRange
	}

	if count > 0 && index == count-1 {
		tail := e.arena.seqTail(container)
		return tail, e.arena.elemValue(tail), RunResultOK
	}

	element := e.arena.seqHead(container)
	for i := int32(0); i < index; i++ {
		if i >= int32(e.cycleLimit) {
			return NilIndex, NilIndex, RunResultCycleDetected
		}
		if element == NilIndex {
			return NilIndex, NilIndex, RunResultValueOutOfRange
		}
		element = e.arena.elemNext(element)
	}
	if element == NilIndex {
		return NilIndex, NilIndex, RunResultValueOutOfRange
	}
	return element, e.arena.elemValue(element), RunResultOK
}

// sequenceNext returns the element following cursor (or the first
// element, when cursor is NilIndex) and its value.
func (e *Engine) sequenceNext(container, cursor Index) (Index, Index) {
	var next Index
	if cursor == NilIndex {
		next = e.arena.seqHead(container)
	} else {
		next = e.arena.elemNext(cursor)
	}
	if next == NilIndex {
		return NilIndex, NilIndex
	}
	return next, e.arena.elemValue(next)
}

// sequencePopFront erases and returns the head element's value,
// transferring ownership of its reference to the caller (used by
// iterative tear-down). It reports ok=false once the sequence is empty.
func (e *Engine) sequencePopFront(container Index) (value Index, ok bool, res RunResult) {
	head := e.arena.seqHead(container)
	if head == NilIndex {
		return NilIndex, false, RunResultOK
	}
	value = e.arena.elemValue(head)
	res = e.sequenceEraseElement(container, head, false)
	return value, true, res
}
