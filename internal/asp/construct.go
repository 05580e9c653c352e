package asp

// execMkArg implements MKARG: wrap the value on top of stack as a
// positional Argument.
func (e *Engine) execMkArg() RunResult {
	value := e.top()
	if res := e.popNoErase(); res != RunResultOK {
		return res
	}
	arg, ok := e.arena.alloc(TypeArgument)
	if !ok {
		e.unref(value)
		return RunResultOutOfDataMemory
	}
	e.arena.at(arg).setIdx(1, value)
	return e.pushNoUse(arg)
}

// execMkNArg implements MKNARGn: wrap the value on top of stack as a
// named Argument bound to the symbol operand.
func (e *Engine) execMkNArg(symbolWidth uint32) RunResult {
	symbol, res := e.readSymbol(symbolWidth)
	if res != RunResultOK {
		return res
	}
	value := e.top()
	if res := e.popNoErase(); res != RunResultOK {
		return res
	}
	arg, ok := e.arena.alloc(TypeArgument)
	if !ok {
		e.unref(value)
		return RunResultOutOfDataMemory
	}
	ae := e.arena.at(arg)
	ae.bit0 = true
	ae.w0 = symbol
	ae.setIdx(1, value)
	return e.pushNoUse(arg)
}

// execMkIGArg implements MKIGARG: spread every member of an iterable
// (popped from the stack) as successive positional Arguments appended to
// the ArgumentList beneath it.
func (e *Engine) execMkIGArg() RunResult {
	iterable := e.top()
	if res := e.popNoErase(); res != RunResultOK {
		return res
	}
	argList := e.top()

	it, res := e.startIterator(iterable)
	if res != RunResultOK {
		e.unref(iterable)
		return res
	}
	for e.testIterator(it) {
		value, res := e.dereferenceIterator(it)
		if res != RunResultOK {
			e.unref(it)
			e.unref(iterable)
			return res
		}
		arg, ok := e.arena.alloc(TypeArgument)
		if !ok {
			e.unref(value)
			e.unref(it)
			e.unref(iterable)
			return RunResultOutOfDataMemory
		}
		e.arena.at(arg).setIdx(1, value)
		if _, res := e.sequenceAppend(argList, arg); res != RunResultOK {
			e.unref(arg)
			e.unref(it)
			e.unref(iterable)
			return res
		}
		e.unref(arg)
		if res := e.advanceIterator(it); res != RunResultOK {
			e.unref(it)
			e.unref(iterable)
			return res
		}
	}
	if res := e.unref(it); res != RunResultOK {
		e.unref(iterable)
		return res
	}
	return e.unref(iterable)
}

// execMkDGArg implements MKDGARG: spread a Dictionary (popped from the
// stack) as named Arguments appended to the ArgumentList beneath it; each
// key must be an Integer symbol, matching the dict-group convention
// bindArguments uses on the receiving side.
func (e *Engine) execMkDGArg() RunResult {
	dict := e.top()
	if res := e.popNoErase(); res != RunResultOK {
		return res
	}
	argList := e.top()

	node, key, value, res := e.treeNext(dict, NilIndex)
	for res == RunResultOK && node != NilIndex {
		if e.arena.at(key).typ != TypeInteger {
			e.unref(dict)
			return RunResultUnexpectedType
		}
		arg, ok := e.arena.alloc(TypeArgument)
		if !ok {
			e.unref(dict)
			return RunResultOutOfDataMemory
		}
		ae := e.arena.at(arg)
		ae.bit0 = true
		ae.w0 = e.arena.at(key).w0
		e.ref(value)
		ae.setIdx(1, value)
		if _, res := e.sequenceAppend(argList, arg); res != RunResultOK {
			e.unref(arg)
			e.unref(dict)
			return res
		}
		e.unref(arg)
		node, key, value, res = e.treeNext(dict, node)
	}
	if res != RunResultOK {
		e.unref(dict)
		return res
	}
	return e.unref(dict)
}

// execMkPar implements MKPARn: a plain required Parameter named by the
// symbol operand.
func (e *Engine) execMkPar(symbolWidth uint32) RunResult {
	symbol, res := e.readSymbol(symbolWidth)
	if res != RunResultOK {
		return res
	}
	p, ok := e.arena.alloc(TypeParameter)
	if !ok {
		return RunResultOutOfDataMemory
	}
	e.arena.at(p).w0 = symbol
	return e.pushNoUse(p)
}

// execMkDPar implements MKDPARn: a Parameter with a default value popped
// from the stack.
func (e *Engine) execMkDPar(symbolWidth uint32) RunResult {
	symbol, res := e.readSymbol(symbolWidth)
	if res != RunResultOK {
		return res
	}
	def := e.top()
	if res := e.popNoErase(); res != RunResultOK {
		return res
	}
	p, ok := e.arena.alloc(TypeParameter)
	if !ok {
		e.unref(def)
		return RunResultOutOfDataMemory
	}
	pe := e.arena.at(p)
	pe.w0 = symbol
	pe.bit0 = true
	pe.setIdx(1, def)
	return e.pushNoUse(p)
}

// execMkTGPar implements MKTGPARn: a tuple-group (*args) Parameter.
func (e *Engine) execMkTGPar(symbolWidth uint32) RunResult {
	symbol, res := e.readSymbol(symbolWidth)
	if res != RunResultOK {
		return res
	}
	p, ok := e.arena.alloc(TypeParameter)
	if !ok {
		return RunResultOutOfDataMemory
	}
	pe := e.arena.at(p)
	pe.w0 = symbol
	pe.bit1 = true
	return e.pushNoUse(p)
}

// execMkDGPar implements MKDGPARn: a dict-group (**kwargs) Parameter.
func (e *Engine) execMkDGPar(symbolWidth uint32) RunResult {
	symbol, res := e.readSymbol(symbolWidth)
	if res != RunResultOK {
		return res
	}
	p, ok := e.arena.alloc(TypeParameter)
	if !ok {
		return RunResultOutOfDataMemory
	}
	pe := e.arena.at(p)
	pe.w0 = symbol
	pe.bit1 = true
	pe.bit2 = true
	return e.pushNoUse(p)
}

// execMkFun implements MKFUN: build a Function from a ParameterList
// popped off the stack plus a 1-byte isApp flag and a 4-byte code
// address (script functions) or app-function symbol (application
// functions) encoded directly as the instruction's own operands.
func (e *Engine) execMkFun() RunResult {
	isAppByte, res := e.readUint(1)
	if res != RunResultOK {
		return res
	}
	codeOrSymbol, res := e.readInt(4)
	if res != RunResultOK {
		return res
	}

	params := e.top()
	if res := e.popNoErase(); res != RunResultOK {
		return res
	}

	fn, ok := e.arena.alloc(TypeFunction)
	if !ok {
		e.unref(params)
		return RunResultOutOfDataMemory
	}
	fe := e.arena.at(fn)
	fe.bit0 = isAppByte != 0
	fe.w0 = codeOrSymbol
	e.ref(e.module)
	fe.setIdx(1, e.module)
	fe.setIdx(2, params)
	return e.pushNoUse(fn)
}

// execMkKVP implements MKKVP: pair the top two stack values (value above
// key) into a KeyValuePair for a following Dictionary BLD.
func (e *Engine) execMkKVP() RunResult {
	value := e.top()
	if res := e.popNoErase(); res != RunResultOK {
		return res
	}
	key := e.top()
	if res := e.popNoErase(); res != RunResultOK {
		e.unref(value)
		return res
	}
	kvp, ok := e.arena.alloc(TypeKeyValuePair)
	if !ok {
		e.unref(key)
		e.unref(value)
		return RunResultOutOfDataMemory
	}
	ke := e.arena.at(kvp)
	ke.setIdx(0, key)
	ke.setIdx(1, value)
	return e.pushNoUse(kvp)
}

// execMkRange implements the MKR family: build a Range from whichever of
// start/end/step the particular opcode variant carries, popped off the
// stack in step, end, start order (start pushed first by the compiler).
func (e *Engine) execMkRange(hasStart, hasEnd, hasStep bool) RunResult {
	popInt := func() (int32, RunResult) {
		v := e.top()
		if res := e.popNoErase(); res != RunResultOK {
			return 0, res
		}
		t := e.arena.at(v).typ
		if t != TypeInteger && t != TypeBoolean {
			e.unref(v)
			return 0, RunResultUnexpectedType
		}
		n := e.arena.at(v).w0
		e.unref(v)
		return n, RunResultOK
	}

	var start, end, step int32
	var res RunResult
	if hasStep {
		if step, res = popInt(); res != RunResultOK {
			return res
		}
		if step == 0 {
			return RunResultValueOutOfRange
		}
	}
	if hasEnd {
		if end, res = popInt(); res != RunResultOK {
			return res
		}
	}
	if hasStart {
		if start, res = popInt(); res != RunResultOK {
			return res
		}
	}

	r, res := e.newRange(hasStart, start, hasEnd, end, hasStep, step)
	if res != RunResultOK {
		return res
	}
	return e.pushNoUse(r)
}
