package asp

// extractIndexInt reads an Integer or Boolean cell's value as an int32
// index operand, the common shape IDX/IDXA/MKR/INS all accept.
func (e *Engine) extractIndexInt(v Index) (int32, RunResult) {
	t := e.arena.at(v).typ
	if t != TypeInteger && t != TypeBoolean {
		return 0, RunResultUnexpectedType
	}
	return e.arena.at(v).w0, RunResultOK
}

// resolveVariableRead implements the lookup LD performs: the local
// namespace, falling back to the global namespace when the name is
// unbound locally or its local binding is GLOB-flagged.
func (e *Engine) resolveVariableRead(symbol int32) (Index, RunResult) {
	node, res := e.findSymbol(e.localNamespace, symbol)
	if res != RunResultOK {
		return NilIndex, res
	}
	if node == NilIndex || e.arena.nodeIsGlobal(node) {
		node, res = e.findSymbol(e.globalNamespace, symbol)
		if res != RunResultOK {
			return NilIndex, res
		}
		if node == NilIndex {
			return NilIndex, RunResultNameNotFound
		}
	}
	return e.arena.nodeValue(node), RunResultOK
}

// resolveVariableNamespace implements the target namespace LDA/SET/DEL
// resolve to: the local namespace, unless a local node already exists
// and was GLOB-flagged, in which case the global namespace.
func (e *Engine) resolveVariableNamespace(symbol int32) Index {
	if e.localNamespace == e.globalNamespace {
		return e.localNamespace
	}
	node, _ := e.findSymbol(e.localNamespace, symbol)
	if node != NilIndex && e.arena.nodeIsGlobal(node) {
		return e.globalNamespace
	}
	return e.localNamespace
}

// execLd implements LDn: push the named variable's current value.
func (e *Engine) execLd(symbolWidth uint32) RunResult {
	symbol, res := e.readSymbol(symbolWidth)
	if res != RunResultOK {
		return res
	}
	value, res := e.resolveVariableRead(symbol)
	if res != RunResultOK {
		return res
	}
	return e.push(value)
}

// execLda implements LDAn: push an Address targeting the named variable.
func (e *Engine) execLda(symbolWidth uint32) RunResult {
	symbol, res := e.readSymbol(symbolWidth)
	if res != RunResultOK {
		return res
	}
	ns := e.resolveVariableNamespace(symbol)
	addr, res := e.newVariableAddress(ns, symbol)
	if res != RunResultOK {
		return res
	}
	return e.pushNoUse(addr)
}

// execSet implements SET: store the popped value at the popped address,
// discard the address, and leave the value on the stack so assignment
// composes as an expression (a = b = c).
func (e *Engine) execSet() RunResult {
	value := e.top()
	if res := e.popNoErase(); res != RunResultOK {
		return res
	}
	addr := e.top()
	if res := e.popNoErase(); res != RunResultOK {
		e.unref(value)
		return res
	}
	res := e.resolveAddress(addr, value)
	if unrefRes := e.unref(addr); res == RunResultOK {
		res = unrefRes
	}
	if res != RunResultOK {
		e.unref(value)
		return res
	}
	return e.pushNoUse(value)
}

// execSetP implements SETP: store the popped value at the popped
// address, discarding both the address and the value — assignment used
// as a statement, whose result nothing consumes.
func (e *Engine) execSetP() RunResult {
	value := e.top()
	if res := e.popNoErase(); res != RunResultOK {
		return res
	}
	addr := e.top()
	if res := e.popNoErase(); res != RunResultOK {
		e.unref(value)
		return res
	}
	res := e.resolveAddress(addr, value)
	if unrefRes := e.unref(addr); res == RunResultOK {
		res = unrefRes
	}
	e.unref(value)
	return res
}

// execErase implements ERASE: remove the element or key an Address
// (popped from the stack) designates from its container.
func (e *Engine) execErase() RunResult {
	addr := e.top()
	if res := e.popNoErase(); res != RunResultOK {
		return res
	}
	ae := e.arena.at(addr)
	container := ae.idx(0)

	var res RunResult
	switch {
	case ae.bit0: // element
		res = e.sequenceEraseByIndex(container, ae.w1, true)
	case ae.bit1: // dict key
		node, _, findRes := e.treeFind(container, ae.idx(2))
		if findRes != RunResultOK {
			res = findRes
		} else if node == NilIndex {
			res = RunResultKeyNotFound
		} else {
			res = e.treeEraseNode(container, node, true, true)
		}
	default:
		res = RunResultInvalidContext
	}
	if unrefRes := e.unref(addr); res == RunResultOK {
		res = unrefRes
	}
	return res
}

// execDel implements DELn: delete the named variable's binding from
// whichever namespace it resolves to (the same rule SET uses).
func (e *Engine) execDel(symbolWidth uint32) RunResult {
	symbol, res := e.readSymbol(symbolWidth)
	if res != RunResultOK {
		return res
	}
	ns := e.resolveVariableNamespace(symbol)
	node, res := e.findSymbol(ns, symbol)
	if res != RunResultOK {
		return res
	}
	if node == NilIndex {
		return RunResultNameNotFound
	}
	return e.treeEraseNode(ns, node, true, true)
}

// execGlob implements GLOBn: mark symbol, in the local namespace, as
// referring to the enclosing module's global binding rather than a
// local one.
func (e *Engine) execGlob(symbolWidth uint32) RunResult {
	return e.setLocalGlobalFlag(symbolWidth, true)
}

// execLoc implements LOCn: the inverse of GLOB, forcing symbol to name a
// genuinely local binding even if a global of the same name exists.
func (e *Engine) execLoc(symbolWidth uint32) RunResult {
	return e.setLocalGlobalFlag(symbolWidth, false)
}

func (e *Engine) setLocalGlobalFlag(symbolWidth uint32, isGlobal bool) RunResult {
	symbol, res := e.readSymbol(symbolWidth)
	if res != RunResultOK {
		return res
	}
	if e.localNamespace == e.globalNamespace {
		return RunResultInvalidContext
	}
	result, res := e.treeTryInsertBySymbol(e.localNamespace, symbol, NilIndex)
	if res != RunResultOK {
		return res
	}
	e.arena.setNodeIsGlobal(result.Node, isGlobal)
	return RunResultOK
}

// rangeLen returns the number of values a bounded Range produces;
// unbounded ranges (no end) report ValueOutOfRange, since only a bounded
// range can resolve a negative index.
func (e *Engine) rangeLen(r Index) (int32, RunResult) {
	start, end, step, hasStart, hasEnd, hasStep := e.rangeFields(r)
	if !hasEnd {
		return 0, RunResultValueOutOfRange
	}
	if !hasStart {
		start = 0
	}
	if !hasStep {
		step = 1
	}
	if step == 0 {
		return 0, RunResultValueOutOfRange
	}
	if step > 0 {
		if start >= end {
			return 0, RunResultOK
		}
		return (end - start + step - 1) / step, RunResultOK
	}
	if start <= end {
		return 0, RunResultOK
	}
	return (start - end - step - 1) / (-step), RunResultOK
}

// rangeValueAt resolves a (possibly negative) logical index within r to
// the int32 value at that position.
func (e *Engine) rangeValueAt(r Index, index int32) (int32, RunResult) {
	start, end, step, hasStart, hasEnd, hasStep := e.rangeFields(r)
	if !hasStart {
		start = 0
	}
	if !hasStep {
		step = 1
	}
	if index < 0 {
		count, res := e.rangeLen(r)
		if res != RunResultOK {
			return 0, res
		}
		index += count
		if index < 0 {
			return 0, RunResultValueOutOfRange
		}
	}
	value := start + step*index
	if hasEnd && rangeAtEnd(value, end, step) {
		return 0, RunResultValueOutOfRange
	}
	return value, RunResultOK
}

// indexValue implements the read side of IDX for each indexable
// container kind, returning a freshly referenced result value.
func (e *Engine) indexValue(container, idxVal Index) (Index, RunResult) {
	switch e.arena.at(container).typ {
	case TypeString:
		i, res := e.extractIndexInt(idxVal)
		if res != RunResultOK {
			return NilIndex, res
		}
		if i < 0 {
			i += e.stringByteLen(container)
		}
		b, res := e.stringByteAt(container, i)
		if res != RunResultOK {
			return NilIndex, res
		}
		return e.newStringFromBytes([]byte{b})

	case TypeTuple, TypeList:
		i, res := e.extractIndexInt(idxVal)
		if res != RunResultOK {
			return NilIndex, res
		}
		_, val, res := e.sequenceIndex(container, i)
		if res != RunResultOK {
			return NilIndex, res
		}
		e.ref(val)
		return val, RunResultOK

	case TypeDictionary:
		node, val, res := e.treeFind(container, idxVal)
		if res != RunResultOK {
			return NilIndex, res
		}
		if node == NilIndex {
			return NilIndex, RunResultKeyNotFound
		}
		e.ref(val)
		return val, RunResultOK

	case TypeRange:
		i, res := e.extractIndexInt(idxVal)
		if res != RunResultOK {
			return NilIndex, res
		}
		v, res := e.rangeValueAt(container, i)
		if res != RunResultOK {
			return NilIndex, res
		}
		return e.newInt(v)

	default:
		return NilIndex, RunResultUnexpectedType
	}
}

// execIdx implements IDX: pop a container and an index, push the
// designated value.
func (e *Engine) execIdx() RunResult {
	idxVal := e.top()
	if res := e.popNoErase(); res != RunResultOK {
		return res
	}
	container := e.top()
	if res := e.popNoErase(); res != RunResultOK {
		e.unref(idxVal)
		return res
	}

	result, res := e.indexValue(container, idxVal)
	e.unref(idxVal)
	e.unref(container)
	if res != RunResultOK {
		return res
	}
	return e.pushNoUse(result)
}

// execIdxA implements IDXA: pop a container and an index, push an
// Address targeting that element (List) or key (Dictionary).
func (e *Engine) execIdxA() RunResult {
	idxVal := e.top()
	if res := e.popNoErase(); res != RunResultOK {
		return res
	}
	container := e.top()
	if res := e.popNoErase(); res != RunResultOK {
		e.unref(idxVal)
		return res
	}

	var addr Index
	var res RunResult
	switch e.arena.at(container).typ {
	case TypeList:
		var i int32
		i, res = e.extractIndexInt(idxVal)
		if res == RunResultOK {
			_, _, res = e.sequenceIndex(container, i)
		}
		e.unref(idxVal)
		if res == RunResultOK {
			addr, res = e.newElementAddress(container, i)
		}

	case TypeDictionary:
		addr, res = e.newKeyAddress(container, idxVal)

	default:
		e.unref(idxVal)
		res = RunResultUnexpectedType
	}

	if unrefRes := e.unref(container); res == RunResultOK {
		res = unrefRes
	}
	if res != RunResultOK {
		return res
	}
	return e.pushNoUse(addr)
}

// execMem implements MEMn: look up symbol in a Module (popped from the
// stack) and push its value.
func (e *Engine) execMem(symbolWidth uint32) RunResult {
	symbol, res := e.readSymbol(symbolWidth)
	if res != RunResultOK {
		return res
	}
	moduleVal := e.top()
	if res := e.popNoErase(); res != RunResultOK {
		return res
	}
	if e.arena.at(moduleVal).typ != TypeModule {
		e.unref(moduleVal)
		return RunResultUnexpectedType
	}
	ns := e.namespaceOf(moduleVal)
	node, res := e.findSymbol(ns, symbol)
	e.unref(moduleVal)
	if res != RunResultOK {
		return res
	}
	if node == NilIndex {
		return RunResultNameNotFound
	}
	val := e.arena.nodeValue(node)
	e.ref(val)
	return e.pushNoUse(val)
}

// execMemA implements MEMAn: push an Address targeting symbol within a
// Module's (popped from the stack) namespace.
func (e *Engine) execMemA(symbolWidth uint32) RunResult {
	symbol, res := e.readSymbol(symbolWidth)
	if res != RunResultOK {
		return res
	}
	moduleVal := e.top()
	if res := e.popNoErase(); res != RunResultOK {
		return res
	}
	if e.arena.at(moduleVal).typ != TypeModule {
		e.unref(moduleVal)
		return RunResultUnexpectedType
	}
	ns := e.namespaceOf(moduleVal)
	addr, res := e.newModuleMemberAddress(ns, symbol)
	e.unref(moduleVal)
	if res != RunResultOK {
		return res
	}
	return e.pushNoUse(addr)
}
