package asp

// The work stack is a chain of StackEntry cells threaded through the
// arena by "previous" links, newest first. It serves three roles that
// never overlap in time within a single engine: passing operand values
// between opcodes, holding the auxiliary (second) value a paired
// traversal (iterative comparison, iterative tear-down) needs per frame,
// and carrying call Frame objects pushed by CALL/LDMOD and popped by
// RET/XMOD.

// push allocates a StackEntry pointing at value, increments value's use
// count, and makes it the new top of stack.
func (e *Engine) push(value Index) RunResult {
	return e.push1(value, true)
}

// pushNoUse is identical to push but does not bump the pushed value's use
// count — used when transferring ownership of a reference the caller
// already holds (e.g. moving a child out of a container being torn down).
func (e *Engine) pushNoUse(value Index) RunResult {
	return e.push1(value, false)
}

func (e *Engine) push1(value Index, use bool) RunResult {
	se, ok := e.arena.alloc(TypeStackEntry)
	if !ok {
		return RunResultOutOfDataMemory
	}
	entry := e.arena.at(se)
	entry.setIdx(0, e.stackTop)
	entry.setIdx(1, value)
	if use {
		e.ref(value)
	}
	e.stackTop = se
	e.stackCount++
	return RunResultOK
}

// pushPaired pushes value as the primary slot and sets value2 as the
// stack entry's auxiliary slot, without taking a reference on either —
// used by the iterative comparator to carry both sides of a traversal in
// a single frame.
func (e *Engine) pushPaired(value, value2 Index) RunResult {
	se, ok := e.arena.alloc(TypeStackEntry)
	if !ok {
		return RunResultOutOfDataMemory
	}
	entry := e.arena.at(se)
	entry.setIdx(0, e.stackTop)
	entry.setIdx(1, value)
	entry.bit0 = true
	entry.setIdx(2, value2)
	e.stackTop = se
	e.stackCount++
	return RunResultOK
}

// top returns the index of the value at the top of the work stack, or
// NilIndex if the stack is empty.
func (e *Engine) top() Index {
	if e.stackTop == NilIndex {
		return NilIndex
	}
	return e.arena.at(e.stackTop).idx(1)
}

// topValue2 returns the auxiliary slot of the top stack entry, or
// NilIndex if the top entry carries none.
func (e *Engine) topValue2() Index {
	if e.stackTop == NilIndex {
		return NilIndex
	}
	top := e.arena.at(e.stackTop)
	if !top.bit0 {
		return NilIndex
	}
	return top.idx(2)
}

// pop removes the top stack entry, releasing its value.
func (e *Engine) pop() RunResult {
	return e.pop1(true)
}

// popNoErase removes the top stack entry without releasing its value —
// used when the caller is taking ownership of the value it just read via
// top().
func (e *Engine) popNoErase() RunResult {
	return e.pop1(false)
}

func (e *Engine) pop1(erase bool) RunResult {
	if e.stackTop == NilIndex {
		return RunResultStackUnderflow
	}
	value := e.top()
	if erase {
		e.unref(value)
	}
	prev := e.arena.at(e.stackTop).idx(0)
	e.unref(e.stackTop)
	e.stackTop = prev
	e.stackCount--
	return RunResultOK
}

// snapshotStack returns the current stack-top index, used as a
// watermark by bounded iterative algorithms (tear-down, comparison) that
// push working state and must unwind back to exactly this point.
func (e *Engine) snapshotStack() Index {
	return e.stackTop
}

// unwindStackTo pops entries (without releasing already-released values
// a second time — callers of this helper have already torn down whatever
// the entries referenced) down to the given watermark.
func (e *Engine) unwindStackTo(mark Index) {
	for e.stackTop != mark {
		if e.pop1(false) != RunResultOK {
			break
		}
	}
}
