package asp

// TypeAddress cells represent an lvalue produced by LDA/IDXA/MEMA and
// consumed by SET/SETP/ERASE: a reference to where a later opcode should
// store or erase a value, without yet performing the store. The address
// always holds a reference to its container (idx(0)) so the container
// cannot be torn down between the LDA/IDXA/MEMA that created the address
// and the SET/SETP/ERASE that resolves it; the key variant additionally
// holds its own reference to the key object (idx(2)), since a Dictionary
// key must survive independently of whatever script variable produced it.
// newVariableAddress builds an address targeting symbol in namespace ns.
func (e *Engine) newVariableAddress(ns Index, symbol int32) (Index, RunResult) {
	a, ok := e.arena.alloc(TypeAddress)
	if !ok {
		return NilIndex, RunResultOutOfDataMemory
	}
	e.ref(ns)
	ae := e.arena.at(a)
	ae.setIdx(0, ns)
	ae.w1 = symbol
	return a, RunResultOK
}

// newModuleMemberAddress builds an address targeting symbol in a
// module's namespace (MEMA).
func (e *Engine) newModuleMemberAddress(moduleNS Index, symbol int32) (Index, RunResult) {
	a, res := e.newVariableAddress(moduleNS, symbol)
	if res != RunResultOK {
		return NilIndex, res
	}
	e.arena.at(a).bit2 = true
	return a, RunResultOK
}

// newElementAddress builds an address targeting index within a List.
func (e *Engine) newElementAddress(list Index, index int32) (Index, RunResult) {
	a, ok := e.arena.alloc(TypeAddress)
	if !ok {
		return NilIndex, RunResultOutOfDataMemory
	}
	e.ref(list)
	ae := e.arena.at(a)
	ae.setIdx(0, list)
	ae.w1 = index
	ae.bit0 = true
	return a, RunResultOK
}

// newKeyAddress builds an address targeting key within a Dictionary,
// taking ownership of the reference the caller already holds on key.
func (e *Engine) newKeyAddress(dict, key Index) (Index, RunResult) {
	a, ok := e.arena.alloc(TypeAddress)
	if !ok {
		return NilIndex, RunResultOutOfDataMemory
	}
	e.ref(dict)
	ae := e.arena.at(a)
	ae.setIdx(0, dict)
	ae.setIdx(2, key)
	ae.bit1 = true
	return a, RunResultOK
}

// namespaceAssign overwrites symbol's binding in ns with value if
// already bound, or inserts it otherwise; like treeInsert, it takes a
// fresh reference on value rather than consuming the caller's.
func (e *Engine) namespaceAssign(ns Index, symbol int32, value Index) RunResult {
	node, res := e.findSymbol(ns, symbol)
	if res != RunResultOK {
		return res
	}
	if node == NilIndex {
		_, res := e.treeTryInsertBySymbol(ns, symbol, value)
		return res
	}
	old := e.arena.nodeValue(node)
	e.ref(value)
	e.arena.setNodeValue(node, value)
	return e.unref(old)
}

// resolveAddress stores value at the location addr designates, taking a
// fresh reference on value (the caller retains and must release its own
// temporary ownership of value afterward, mirroring namespaceAssign and
// treeInsert).
func (e *Engine) resolveAddress(addr, value Index) RunResult {
	ae := e.arena.at(addr)
	container := ae.idx(0)

	switch {
	case ae.bit0: // element
		element, old, res := e.sequenceIndex(container, ae.w1)
		if res != RunResultOK {
			return res
		}
		e.ref(value)
		e.arena.setElemValue(element, value)
		return e.unref(old)

	case ae.bit1: // dict key
		key := ae.idx(2)
		_, res := e.treeInsert(container, key, value)
		return res

	default: // variable or module member
		symbol := ae.w1
		return e.namespaceAssign(container, symbol, value)
	}
}
