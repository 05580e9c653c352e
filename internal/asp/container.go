package asp

// execIns implements INS: insert the popped value at the popped index
// within the container beneath it, leaving the container on the stack.
func (e *Engine) execIns() RunResult {
	value := e.top()
	if res := e.popNoErase(); res != RunResultOK {
		return res
	}
	idxEntry := e.top()
	if res := e.popNoErase(); res != RunResultOK {
		e.unref(value)
		return res
	}
	container := e.top()

	idx, res := e.extractIndexInt(idxEntry)
	e.unref(idxEntry)
	if res != RunResultOK {
		e.unref(value)
		return res
	}
	_, res = e.sequenceInsertByIndex(container, idx, value)
	e.unref(value)
	return res
}

// execInsP implements INSP: INS, additionally popping the container.
func (e *Engine) execInsP() RunResult {
	if res := e.execIns(); res != RunResultOK {
		return res
	}
	return e.pop()
}

// execBld implements BLD: append (sequence containers) or insert (tree
// containers) the popped value into the container beneath it, leaving
// the container on the stack.
func (e *Engine) execBld() RunResult {
	value := e.top()
	if res := e.popNoErase(); res != RunResultOK {
		return res
	}
	container := e.top()
	t := e.arena.at(container).typ

	var res RunResult
	switch t {
	case TypeTuple, TypeList, TypeArgumentList, TypeParameterList:
		_, res = e.sequenceAppend(container, value)

	case TypeSet:
		_, res = e.treeInsert(container, value, NilIndex)

	case TypeDictionary:
		if e.arena.at(value).typ != TypeKeyValuePair {
			res = RunResultUnexpectedType
			break
		}
		kvp := e.arena.at(value)
		_, res = e.treeInsert(container, kvp.idx(0), kvp.idx(1))

	default:
		res = RunResultUnexpectedType
	}

	e.unref(value)
	return res
}
