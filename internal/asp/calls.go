package asp

// execCall implements CALL: the stack holds, bottom to top, the
// argument list and then the function being invoked. Script functions
// push a call Frame and jump into their body; application functions
// reenter the host synchronously through Dispatch, except for the
// reserved sys.exit symbol, which the engine satisfies itself so exit
// works even when the host installed no Dispatch callback.
func (e *Engine) execCall() RunResult {
	fnIdx := e.top()
	if res := e.popNoErase(); res != RunResultOK {
		return res
	}
	argsIdx := e.top()
	if res := e.popNoErase(); res != RunResultOK {
		return res
	}

	fe := e.arena.at(fnIdx)
	isApp := fe.bit0
	moduleIdx := fe.idx(1)
	paramsIdx := fe.idx(2)
	codeOrSymbol := fe.w0

	ns, ok := e.arena.alloc(TypeNamespace)
	if !ok {
		e.unref(fnIdx)
		e.unref(argsIdx)
		return RunResultOutOfDataMemory
	}

	bindRes := e.bindArguments(argsIdx, paramsIdx, ns)
	if res := e.unref(fnIdx); res != RunResultOK {
		e.unref(argsIdx)
		e.unref(ns)
		return res
	}
	if res := e.unref(argsIdx); res != RunResultOK {
		e.unref(ns)
		return res
	}
	if bindRes != RunResultOK {
		e.unref(ns)
		return bindRes
	}

	if isApp && codeOrSymbol == SystemExitSymbol {
		return e.execSystemExit(ns)
	}
	if isApp {
		return e.execAppCall(codeOrSymbol, ns)
	}
	return e.execScriptCall(moduleIdx, codeOrSymbol, ns)
}

// execSystemExit satisfies sys.exit(code) without reentering the host:
// it sets the sticky result to Application+code, ending the run.
func (e *Engine) execSystemExit(ns Index) RunResult {
	codeSymbol := e.internSymbol("code")
	node, res := e.findSymbol(ns, codeSymbol)
	var code int32
	if res == RunResultOK && node != NilIndex {
		v := e.arena.at(e.arena.nodeValue(node))
		if v.typ == TypeInteger || v.typ == TypeBoolean {
			code = v.w0
		}
	}
	e.unref(ns)
	if res != RunResultOK {
		return res
	}
	return RunResultApplication + RunResult(code)
}

// execAppCall reenters the host via Dispatch for an application function
// that is not sys.exit. Dispatch only borrows ns, which the engine
// releases once Dispatch returns; Dispatch must leave
// *returnValue holding a reference it owns (a freshly constructed value,
// or an existing one it has ref'd itself) for the engine to transfer
// onto the stack; a Dispatch that leaves returnValue untouched returns
// None, which the engine refs itself since nothing fresh was allocated
// for it.
func (e *Engine) execAppCall(symbol int32, ns Index) RunResult {
	if e.dispatch == nil {
		e.unref(ns)
		return RunResultUndefinedAppFunction
	}
	e.inApp = true
	ret := NilIndex
	dispatchRes := e.dispatch(e, symbol, ns, &ret)
	e.inApp = false
	if res := e.unref(ns); res != RunResultOK {
		return res
	}
	if dispatchRes != RunResultOK {
		return dispatchRes
	}
	if ret == NilIndex {
		e.ref(ret)
	}
	return e.pushNoUse(ret)
}

// execScriptCall pushes a call Frame saving the current module and
// local namespace, then switches execution into the callee.
func (e *Engine) execScriptCall(moduleIdx Index, entryPC int32, ns Index) RunResult {
	frame, ok := e.arena.alloc(TypeFrame)
	if !ok {
		e.unref(ns)
		return RunResultOutOfDataMemory
	}
	fr := e.arena.at(frame)
	fr.w0 = int32(e.pc)
	e.ref(e.module)
	fr.setIdx(1, e.module)
	fr.setIdx(2, e.localNamespace)

	if res := e.pushNoUse(frame); res != RunResultOK {
		e.unref(frame)
		e.unref(ns)
		return res
	}

	e.module = moduleIdx
	e.globalNamespace = e.namespaceOf(moduleIdx)
	e.localNamespace = ns
	e.pc = uint32(entryPC)
	return RunResultOK
}

// execRet implements RET: restore the caller's module/namespace/pc from
// the Frame beneath the return value and tear down the callee's local
// namespace.
func (e *Engine) execRet() RunResult {
	retVal := e.top()
	if res := e.popNoErase(); res != RunResultOK {
		return res
	}

	frameIdx := e.top()
	if e.arena.at(frameIdx).typ != TypeFrame {
		e.unref(retVal)
		return RunResultInvalidContext
	}
	if res := e.popNoErase(); res != RunResultOK {
		return res
	}

	fr := e.arena.at(frameIdx)
	returnPC := fr.w0
	savedModule := fr.idx(1)
	savedLocalNS := fr.idx(2)

	if res := e.unref(e.localNamespace); res != RunResultOK {
		return res
	}

	e.module = savedModule
	e.localNamespace = savedLocalNS
	e.globalNamespace = e.namespaceOf(savedModule)
	e.pc = uint32(returnPC)

	if res := e.unref(frameIdx); res != RunResultOK {
		return res
	}
	return e.pushNoUse(retVal)
}

// execAddMod implements ADDMODn: register a module under symbol,
// allocating its (initially empty, unloaded) namespace.
func (e *Engine) execAddMod(symbolWidth uint32) RunResult {
	symbol, res := e.readSymbol(symbolWidth)
	if res != RunResultOK {
		return res
	}
	codeAddr, res := e.readUint(4)
	if res != RunResultOK {
		return res
	}

	ns, ok := e.arena.alloc(TypeNamespace)
	if !ok {
		return RunResultOutOfDataMemory
	}
	mod, ok := e.arena.alloc(TypeModule)
	if !ok {
		e.unref(ns)
		return RunResultOutOfDataMemory
	}
	me := e.arena.at(mod)
	me.w0 = int32(codeAddr)
	me.setIdx(1, ns)
	e.unref(ns)

	if _, res := e.treeTryInsertBySymbol(e.modules, symbol, mod); res != RunResultOK {
		return res
	}
	return e.unref(mod)
}

// execLdMod implements LDMODn: if the named module has never run, push a
// Frame and jump into it; if it has already run, report Redundant for
// this Step call only, leaving engine state untouched.
func (e *Engine) execLdMod(symbolWidth uint32) RunResult {
	symbol, res := e.readSymbol(symbolWidth)
	if res != RunResultOK {
		return res
	}
	node, res := e.findSymbol(e.modules, symbol)
	if res != RunResultOK {
		return res
	}
	if node == NilIndex {
		return RunResultNameNotFound
	}
	moduleIdx := e.arena.nodeValue(node)
	me := e.arena.at(moduleIdx)
	if me.bit0 {
		return RunResultRedundant
	}
	me.bit0 = true

	ns := me.idx(1)
	frame, ok := e.arena.alloc(TypeFrame)
	if !ok {
		return RunResultOutOfDataMemory
	}
	fr := e.arena.at(frame)
	fr.w0 = int32(e.pc)
	e.ref(e.module)
	fr.setIdx(1, e.module)
	fr.setIdx(2, e.localNamespace)
	if res := e.pushNoUse(frame); res != RunResultOK {
		e.unref(frame)
		return res
	}

	e.module = moduleIdx
	e.globalNamespace = ns
	e.localNamespace = ns
	e.pc = me.w0
	return RunResultOK
}

// execXMod implements XMOD: restore the caller's context from the
// enclosing Frame without tearing down the module's namespace, which
// must persist across future MEM/MEMA lookups and re-entry attempts.
func (e *Engine) execXMod() RunResult {
	frameIdx := e.top()
	if e.arena.at(frameIdx).typ != TypeFrame {
		return RunResultInvalidContext
	}
	if res := e.popNoErase(); res != RunResultOK {
		return res
	}

	fr := e.arena.at(frameIdx)
	e.module = fr.idx(1)
	e.localNamespace = fr.idx(2)
	e.globalNamespace = e.namespaceOf(e.module)
	e.pc = uint32(fr.w0)

	return e.unref(frameIdx)
}
