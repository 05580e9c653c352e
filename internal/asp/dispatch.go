package asp

// Step fetches, decodes and executes one instruction. It returns
// RunResultOK to continue, RunResultComplete when END was reached with
// an empty stack, RunResultRedundant for a no-op LDMOD that is not
// sticky engine state, or any other RunResult as a sticky failure that
// also moves the engine to StateRunError.
func (e *Engine) Step() RunResult {
	if e.state != StateReady && e.state != StateRunning {
		return e.fail(RunResultInvalidState)
	}
	e.state = StateRunning

	res := e.dispatch()
	if res == RunResultRedundant {
		return res
	}
	if res == RunResultComplete {
		e.runResult = res
		e.state = StateEnded
		return res
	}
	if res != RunResultOK {
		return e.fail(res)
	}
	return RunResultOK
}

// Run steps the engine until it stops producing RunResultOK, returning
// the terminating result (Complete, Redundant, or a failure).
func (e *Engine) Run() RunResult {
	for {
		res := e.Step()
		if res != RunResultOK {
			return res
		}
	}
}

func (e *Engine) dispatch() RunResult {
	opByte, res := e.fetchByte()
	if res != RunResultOK {
		return res
	}
	op := OpCode(opByte)

	switch op {
	case OpPUSHN:
		return e.push(NilIndex)
	case OpPUSHE:
		v, ok := e.arena.alloc(TypeEllipsis)
		if !ok {
			return RunResultOutOfDataMemory
		}
		return e.pushNoUse(v)
	case OpPUSHF:
		return e.pushBoolSingleton(false)
	case OpPUSHT:
		return e.pushBoolSingleton(true)
	case OpPUSHI0:
		v, res := e.newInt(0)
		if res != RunResultOK {
			return res
		}
		return e.pushNoUse(v)
	case OpPUSHI1, OpPUSHI2, OpPUSHI4:
		n, res := e.readInt(intWidthFor(op))
		if res != RunResultOK {
			return res
		}
		v, res := e.newInt(n)
		if res != RunResultOK {
			return res
		}
		return e.pushNoUse(v)
	case OpPUSHD:
		f, res := e.readFloat64()
		if res != RunResultOK {
			return res
		}
		v, res := e.newFloat(f)
		if res != RunResultOK {
			return res
		}
		return e.pushNoUse(v)
	case OpPUSHY1:
		return e.execLd(1)
	case OpPUSHY2:
		return e.execLd(2)
	case OpPUSHY4:
		return e.execLd(4)
	case OpPUSHS0:
		v, res := e.newStringFromBytes(nil)
		if res != RunResultOK {
			return res
		}
		return e.pushNoUse(v)
	case OpPUSHS1, OpPUSHS2, OpPUSHS4:
		n, res := e.readUint(strWidthFor(op))
		if res != RunResultOK {
			return res
		}
		data, res := e.readBytes(n)
		if res != RunResultOK {
			return res
		}
		v, res := e.newStringFromBytes(data)
		if res != RunResultOK {
			return res
		}
		return e.pushNoUse(v)
	case OpPUSHTU:
		return e.pushEmpty(TypeTuple)
	case OpPUSHLI:
		return e.pushEmpty(TypeList)
	case OpPUSHSE:
		return e.pushEmpty(TypeSet)
	case OpPUSHDI:
		return e.pushEmpty(TypeDictionary)
	case OpPUSHAL:
		return e.pushEmpty(TypeArgumentList)
	case OpPUSHPL:
		return e.pushEmpty(TypeParameterList)
	case OpPUSHCA:
		addr, res := e.readUint(4)
		if res != RunResultOK {
			return res
		}
		ca, ok := e.arena.alloc(TypeCodeAddress)
		if !ok {
			return RunResultOutOfDataMemory
		}
		e.arena.at(ca).w0 = int32(addr)
		return e.pushNoUse(ca)
	case OpPUSHM1, OpPUSHM2, OpPUSHM4:
		return e.execPushModule(symbolWidthFor(op))
	case OpPOP:
		return e.pop()
	case OpPOP1:
		n, res := e.readUint(1)
		if res != RunResultOK {
			return res
		}
		for i := uint32(0); i < n; i++ {
			if res := e.pop(); res != RunResultOK {
				return res
			}
		}
		return RunResultOK

	case OpLNOT, OpPOS, OpNEG, OpNOT:
		return e.execUnary(op)

	case OpOR, OpXOR, OpAND, OpLSH, OpRSH:
		return e.execBinaryBitwise(op)
	case OpADD, OpSUB, OpMUL, OpDIV, OpFDIV, OpMOD, OpPOW:
		return e.execBinaryArithmetic(op)

	case OpNE, OpEQ, OpLT, OpLE, OpGT, OpGE, OpNIN, OpIN, OpNIS, OpIS, OpORDER:
		return e.execCompare(op)

	case OpLD1:
		return e.execLd(1)
	case OpLD2:
		return e.execLd(2)
	case OpLD4:
		return e.execLd(4)
	case OpLDA1:
		return e.execLda(1)
	case OpLDA2:
		return e.execLda(2)
	case OpLDA4:
		return e.execLda(4)

	case OpSET:
		return e.execSet()
	case OpSETP:
		return e.execSetP()
	case OpERASE:
		return e.execErase()
	case OpDEL1:
		return e.execDel(1)
	case OpDEL2:
		return e.execDel(2)
	case OpDEL4:
		return e.execDel(4)

	case OpGLOB1:
		return e.execGlob(1)
	case OpGLOB2:
		return e.execGlob(2)
	case OpGLOB4:
		return e.execGlob(4)
	case OpLOC1:
		return e.execLoc(1)
	case OpLOC2:
		return e.execLoc(2)
	case OpLOC4:
		return e.execLoc(4)

	case OpSITER:
		return e.execSIter()
	case OpTITER:
		return e.execTIter()
	case OpNITER:
		return e.execNIter()
	case OpDITER:
		return e.execDIter()

	case OpNOOP:
		return RunResultOK
	case OpJMPF:
		return e.execJump(false, true)
	case OpJMPT:
		return e.execJump(true, true)
	case OpJMP:
		return e.execJump(false, false)
	case OpLOR:
		return e.execShortCircuit(true)
	case OpLAND:
		return e.execShortCircuit(false)

	case OpCALL:
		return e.execCall()
	case OpRET:
		return e.execRet()

	case OpADDMOD1:
		return e.execAddMod(1)
	case OpADDMOD2:
		return e.execAddMod(2)
	case OpADDMOD4:
		return e.execAddMod(4)
	case OpXMOD:
		return e.execXMod()
	case OpLDMOD1:
		return e.execLdMod(1)
	case OpLDMOD2:
		return e.execLdMod(2)
	case OpLDMOD4:
		return e.execLdMod(4)

	case OpMKARG:
		return e.execMkArg()
	case OpMKNARG1:
		return e.execMkNArg(1)
	case OpMKNARG2:
		return e.execMkNArg(2)
	case OpMKNARG4:
		return e.execMkNArg(4)
	case OpMKIGARG:
		return e.execMkIGArg()
	case OpMKDGARG:
		return e.execMkDGArg()

	case OpMKPAR1:
		return e.execMkPar(1)
	case OpMKPAR2:
		return e.execMkPar(2)
	case OpMKPAR4:
		return e.execMkPar(4)
	case OpMKDPAR1:
		return e.execMkDPar(1)
	case OpMKDPAR2:
		return e.execMkDPar(2)
	case OpMKDPAR4:
		return e.execMkDPar(4)
	case OpMKTGPAR1:
		return e.execMkTGPar(1)
	case OpMKTGPAR2:
		return e.execMkTGPar(2)
	case OpMKTGPAR4:
		return e.execMkTGPar(4)
	case OpMKDGPAR1:
		return e.execMkDGPar(1)
	case OpMKDGPAR2:
		return e.execMkDGPar(2)
	case OpMKDGPAR4:
		return e.execMkDGPar(4)

	case OpMKFUN:
		return e.execMkFun()
	case OpMKKVP:
		return e.execMkKVP()

	case OpMKR0:
		return e.execMkRange(false, false, false)
	case OpMKRS:
		return e.execMkRange(true, false, false)
	case OpMKRE:
		return e.execMkRange(false, true, false)
	case OpMKRSE:
		return e.execMkRange(true, true, false)
	case OpMKRT:
		return e.execMkRange(false, false, true)
	case OpMKRST:
		return e.execMkRange(true, false, true)
	case OpMKRET:
		return e.execMkRange(false, true, true)
	case OpMKR:
		return e.execMkRange(true, true, true)

	case OpINS:
		return e.execIns()
	case OpINSP:
		return e.execInsP()
	case OpBLD:
		return e.execBld()

	case OpIDX:
		return e.execIdx()
	case OpIDXA:
		return e.execIdxA()

	case OpMEM1:
		return e.execMem(1)
	case OpMEM2:
		return e.execMem(2)
	case OpMEM4:
		return e.execMem(4)
	case OpMEMA1:
		return e.execMemA(1)
	case OpMEMA2:
		return e.execMemA(2)
	case OpMEMA4:
		return e.execMemA(4)

	case OpABORT:
		return RunResultAbort
	case OpEND:
		if e.stackCount != 0 {
			return RunResultInvalidEnd
		}
		return RunResultComplete

	default:
		return RunResultInvalidInstruction
	}
}

func intWidthFor(op OpCode) uint32 {
	switch op {
	case OpPUSHI1:
		return 1
	case OpPUSHI2:
		return 2
	default:
		return 4
	}
}

func strWidthFor(op OpCode) uint32 {
	switch op {
	case OpPUSHS1:
		return 1
	case OpPUSHS2:
		return 2
	default:
		return 4
	}
}

func symbolWidthFor(op OpCode) uint32 {
	switch op {
	case OpPUSHM1:
		return 1
	case OpPUSHM2:
		return 2
	default:
		return 4
	}
}

// pushEmpty allocates a fresh, empty container of kind t and pushes it.
func (e *Engine) pushEmpty(t DataType) RunResult {
	v, ok := e.arena.alloc(t)
	if !ok {
		return RunResultOutOfDataMemory
	}
	return e.pushNoUse(v)
}

// pushBoolSingleton lazily creates (or reuses) the engine's shared True
// or False object and pushes a new reference to it.
func (e *Engine) pushBoolSingleton(value bool) RunResult {
	slot := &e.falseSingleton
	if value {
		slot = &e.trueSingleton
	}
	if *slot == NilIndex {
		b, ok := e.arena.alloc(TypeBoolean)
		if !ok {
			return RunResultOutOfDataMemory
		}
		if value {
			e.arena.at(b).w0 = 1
		}
		*slot = b
	}
	return e.push(*slot)
}

// execPushModule implements PUSHMn: push the Module object registered
// under the symbol operand.
func (e *Engine) execPushModule(symbolWidth uint32) RunResult {
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
	val := e.arena.nodeValue(node)
	e.ref(val)
	return e.pushNoUse(val)
}

// execUnary implements LNOT/POS/NEG/NOT.
func (e *Engine) execUnary(op OpCode) RunResult {
	operand := e.top()
	if res := e.popNoErase(); res != RunResultOK {
		return res
	}
	result, res := e.performUnary(op, operand)
	e.unref(operand)
	if res != RunResultOK {
		return res
	}
	return e.pushNoUse(result)
}

// execBinaryBitwise implements OR/XOR/AND/LSH/RSH.
func (e *Engine) execBinaryBitwise(op OpCode) RunResult {
	right := e.top()
	if res := e.popNoErase(); res != RunResultOK {
		return res
	}
	left := e.top()
	if res := e.popNoErase(); res != RunResultOK {
		e.unref(right)
		return res
	}
	result, res := e.performBitwise(op, left, right)
	e.unref(left)
	e.unref(right)
	if res != RunResultOK {
		return res
	}
	return e.pushNoUse(result)
}

// execBinaryArithmetic implements ADD/SUB/MUL/DIV/FDIV/MOD/POW. ADD also
// covers String/Tuple/List concatenation and MUL also covers sequence
// repetition by an Integer/Boolean count, matching the reference
// engine's operator overloads for those two opcodes specifically.
func (e *Engine) execBinaryArithmetic(op OpCode) RunResult {
	right := e.top()
	if res := e.popNoErase(); res != RunResultOK {
		return res
	}
	left := e.top()
	if res := e.popNoErase(); res != RunResultOK {
		e.unref(right)
		return res
	}

	lt, rt := e.arena.at(left).typ, e.arena.at(right).typ
	var result Index
	var res RunResult

	switch {
	case op == OpADD && lt == rt && (lt == TypeString || lt == TypeTuple || lt == TypeList):
		result, res = e.performConcatenate(left, right)

	case op == OpMUL && (lt == TypeString || lt == TypeTuple || lt == TypeList) && (rt == TypeInteger || rt == TypeBoolean):
		result, res = e.performExpand(left, right)

	case op == OpMUL && (rt == TypeString || rt == TypeTuple || rt == TypeList) && (lt == TypeInteger || lt == TypeBoolean):
		result, res = e.performExpand(right, left)

	case isNumeric(lt) && isNumeric(rt):
		result, res = e.performArithmetic(op, left, right)

	default:
		res = RunResultUnexpectedType
	}

	e.unref(left)
	e.unref(right)
	if res != RunResultOK {
		return res
	}
	return e.pushNoUse(result)
}

// execCompare implements NE/EQ/LT/LE/GT/GE/NIN/IN/NIS/IS/ORDER.
func (e *Engine) execCompare(op OpCode) RunResult {
	right := e.top()
	if res := e.popNoErase(); res != RunResultOK {
		return res
	}
	left := e.top()
	if res := e.popNoErase(); res != RunResultOK {
		e.unref(right)
		return res
	}

	var boolResult bool
	var intResult *int32
	var res RunResult

	switch op {
	case OpIS:
		boolResult = left == right
	case OpNIS:
		boolResult = left != right

	case OpIN:
		boolResult, res = e.containsMember(left, right)
	case OpNIN:
		var contains bool
		contains, res = e.containsMember(left, right)
		boolResult = !contains

	case OpORDER:
		var c int
		c, res = e.compare(left, right, CompareModeOrder)
		v := int32(c)
		intResult = &v

	default:
		mode := CompareModeEquality
		if op != OpNE && op != OpEQ {
			mode = CompareModeRelational
		}
		var c int
		c, res = e.compare(left, right, mode)
		switch op {
		case OpNE:
			boolResult = c != 0
		case OpEQ:
			boolResult = c == 0
		case OpLT:
			boolResult = c < 0
		case OpLE:
			boolResult = c <= 0
		case OpGT:
			boolResult = c > 0
		case OpGE:
			boolResult = c >= 0
		}
	}

	e.unref(left)
	e.unref(right)
	if res != RunResultOK {
		return res
	}

	var result Index
	if intResult != nil {
		result, res = e.newInt(*intResult)
	} else {
		result, res = e.newBool(boolResult)
	}
	if res != RunResultOK {
		return res
	}
	return e.pushNoUse(result)
}

// execSIter implements SITER: start iterating the popped iterable,
// pushing the new Iterator.
func (e *Engine) execSIter() RunResult {
	iterable := e.top()
	if res := e.popNoErase(); res != RunResultOK {
		return res
	}
	it, res := e.startIterator(iterable)
	e.unref(iterable)
	if res != RunResultOK {
		return res
	}
	return e.pushNoUse(it)
}

// execTIter implements TITER: push whether the Iterator on top of the
// stack has not yet run off its end, without disturbing it.
func (e *Engine) execTIter() RunResult {
	it := e.top()
	b, res := e.newBool(e.testIterator(it))
	if res != RunResultOK {
		return res
	}
	return e.pushNoUse(b)
}

// execNIter implements NITER: advance the Iterator on top of the stack
// in place.
func (e *Engine) execNIter() RunResult {
	it := e.top()
	return e.advanceIterator(it)
}

// execDIter implements DITER: push the value the Iterator on top of the
// stack currently designates, without disturbing the iterator itself.
func (e *Engine) execDIter() RunResult {
	it := e.top()
	value, res := e.dereferenceIterator(it)
	if res != RunResultOK {
		return res
	}
	return e.pushNoUse(value)
}

// execJump implements JMP/JMPT/JMPF: JMP is unconditional (conditional
// is false); JMPT/JMPF pop a condition value and branch to the 4-byte
// code address operand when isTrue(condition) matches wantTrue.
func (e *Engine) execJump(wantTrue, conditional bool) RunResult {
	addr, res := e.readUint(4)
	if res != RunResultOK {
		return res
	}
	if !conditional {
		e.pc = addr
		return RunResultOK
	}
	cond := e.top()
	if res := e.popNoErase(); res != RunResultOK {
		return res
	}
	branch := e.isTrue(cond) == wantTrue
	if res := e.unref(cond); res != RunResultOK {
		return res
	}
	if branch {
		e.pc = addr
	}
	return RunResultOK
}

// execShortCircuit implements LOR/LAND: peek the value on top of the
// stack; if it already determines the result (truthy for LOR, falsy for
// LAND), branch to the 4-byte code address operand leaving that value as
// the expression's result, otherwise pop it and fall through to evaluate
// the right-hand operand.
func (e *Engine) execShortCircuit(isOr bool) RunResult {
	addr, res := e.readUint(4)
	if res != RunResultOK {
		return res
	}
	v := e.top()
	determines := e.isTrue(v) == isOr
	if determines {
		e.pc = addr
		return RunResultOK
	}
	return e.pop()
}
