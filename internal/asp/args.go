package asp

import shellquote "github.com/kballard/go-shellquote"

// SetArguments installs the host's command-line-style argument vector
// into sys.args: a Tuple of Strings, with args[0] holding the entire
// vector rejoined as a single shell-quoted line (so script code can
// inspect either the parsed vector or the raw invocation text).
func (e *Engine) SetArguments(args []string) RunResult {
	if e.state != StateReady {
		return RunResultInvalidState
	}
	tuple, argument0, res := e.initializeArguments()
	if res != RunResultOK {
		return res
	}
	if res := e.stringAppendBuffer(argument0, []byte(shellquote.Join(args...))); res != RunResultOK {
		return res
	}
	for _, arg := range args {
		argStr, res := e.newStringFromBytes([]byte(arg))
		if res != RunResultOK {
			return res
		}
		_, res = e.sequenceAppend(tuple, argStr)
		e.unref(argStr)
		if res != RunResultOK {
			return res
		}
	}
	return RunResultOK
}

// SetArgumentsString is SetArguments' counterpart for a host that only
// has a single already-quoted command line, splitting on shell-style
// whitespace/quoting rules the same way a script's sys.args consumer
// expects.
func (e *Engine) SetArgumentsString(line string) RunResult {
	if e.state != StateReady {
		return RunResultInvalidState
	}
	tuple, argument0, res := e.initializeArguments()
	if res != RunResultOK {
		return res
	}
	if res := e.stringAppendBuffer(argument0, []byte(line)); res != RunResultOK {
		return res
	}
	if line == "" {
		return RunResultOK
	}

	words, err := shellquote.Split(line)
	if err != nil {
		e.clearArguments(tuple)
		return RunResultInitializationError
	}
	for _, word := range words {
		argStr, res := e.newStringFromBytes([]byte(word))
		if res != RunResultOK {
			return res
		}
		_, res = e.sequenceAppend(tuple, argStr)
		e.unref(argStr)
		if res != RunResultOK {
			return res
		}
	}
	return RunResultOK
}

// initializeArguments clears sys.args and appends the sentinel first
// element (argument0) that accumulates the entire original input.
func (e *Engine) initializeArguments() (tuple Index, argument0 Index, res RunResult) {
	tuple, res = e.findSystemTuple()
	if res != RunResultOK {
		return NilIndex, NilIndex, res
	}
	e.clearArguments(tuple)

	argument0, ok := e.arena.alloc(TypeString)
	if !ok {
		return NilIndex, NilIndex, RunResultOutOfDataMemory
	}
	if _, res := e.sequenceAppend(tuple, argument0); res != RunResultOK {
		return NilIndex, NilIndex, res
	}
	e.unref(argument0)
	return tuple, argument0, RunResultOK
}

// findSystemTuple resolves sys.args to its Tuple object.
func (e *Engine) findSystemTuple() (Index, RunResult) {
	node, res := e.findSymbol(e.systemNamespace, SystemArgumentsSymbol)
	if res != RunResultOK {
		return NilIndex, res
	}
	if node == NilIndex {
		return NilIndex, RunResultInternalError
	}
	return e.arena.nodeValue(node), RunResultOK
}

// clearArguments empties sys.args back to zero elements.
func (e *Engine) clearArguments(tuple Index) RunResult {
	for i := uint32(0); i < e.cycleLimit; i++ {
		if e.arena.seqCount(tuple) == 0 {
			return RunResultOK
		}
		if res := e.sequenceEraseByIndex(tuple, 0, true); res != RunResultOK {
			return res
		}
	}
	return RunResultCycleDetected
}

// bindArguments implements parameter binding for a function call: it
// walks argumentList and parameterList in lockstep exactly as the
// reference engine's loader does, binding each positional argument to
// its parameter (collecting extras into a group tuple/dict when the
// parameter list ends in *args/**kwargs), then named arguments, then
// filling any remaining parameters from their declared defaults.
func (e *Engine) bindArguments(argumentList, parameterList, ns Index) RunResult {
	var group Index = NilIndex

	argEl, argVal := e.sequenceNext(argumentList, NilIndex)
	var paramEl, paramVal Index = NilIndex, NilIndex

	for argEl != NilIndex {
		arg := e.arena.at(argVal)
		if arg.bit0 { // hasName
			break
		}

		var param *entry
		if group == NilIndex {
			paramEl, paramVal = e.sequenceNext(parameterList, paramEl)
			if paramEl == NilIndex {
				return RunResultMalformedFunctionCall
			}
			param = e.arena.at(paramVal)
			if param.bit1 { // isGroup
				groupType := TypeTuple
				if param.bit2 { // isDictGroup
					groupType = TypeDictionary
				}
				g, ok := e.arena.alloc(groupType)
				if !ok {
					return RunResultOutOfDataMemory
				}
				if _, res := e.treeTryInsertBySymbol(ns, param.w0, g); res != RunResultOK {
					return res
				}
				e.unref(g)
				group = g
			}
		}

		value := arg.idx(1)
		if group != NilIndex {
			if _, res := e.sequenceAppend(group, value); res != RunResultOK {
				return res
			}
		} else {
			if _, res := e.treeTryInsertBySymbol(ns, param.w0, value); res != RunResultOK {
				return res
			}
		}

		argEl, argVal = e.sequenceNext(argumentList, argEl)
	}

	for argEl != NilIndex {
		arg := e.arena.at(argVal)
		if !arg.bit0 {
			return RunResultMalformedFunctionCall
		}
		argSymbol := arg.w0

		found := NilIndex
		var dictGroupSymbol int32
		hasDictGroup := false
		pe, pv := e.sequenceNext(parameterList, NilIndex)
		for pe != NilIndex {
			p := e.arena.at(pv)
			switch {
			case p.bit2: // isDictGroup
				dictGroupSymbol, hasDictGroup = p.w0, true
			case p.w0 == argSymbol && p.bit1: // named arg can't target a group parameter
				return RunResultMalformedFunctionCall
			case p.w0 == argSymbol:
				found = pv
			}
			pe, pv = e.sequenceNext(parameterList, pe)
		}

		if found != NilIndex {
			existing, res := e.findSymbol(ns, argSymbol)
			if res != RunResultOK {
				return res
			}
			if existing != NilIndex {
				return RunResultMalformedFunctionCall
			}
			if _, res := e.treeTryInsertBySymbol(ns, argSymbol, arg.idx(1)); res != RunResultOK {
				return res
			}
		} else if hasDictGroup {
			group, res := e.findSymbol(ns, dictGroupSymbol)
			if res != RunResultOK {
				return res
			}
			var dict Index
			if group == NilIndex {
				d, ok := e.arena.alloc(TypeDictionary)
				if !ok {
					return RunResultOutOfDataMemory
				}
				if _, res := e.treeTryInsertBySymbol(ns, dictGroupSymbol, d); res != RunResultOK {
					return res
				}
				e.unref(d)
				dict = d
			} else {
				dict = e.arena.nodeValue(group)
			}

			key, res := e.newInt(argSymbol)
			if res != RunResultOK {
				return res
			}
			_, res = e.treeInsert(dict, key, arg.idx(1))
			e.unref(key)
			if res != RunResultOK {
				return res
			}
		} else {
			return RunResultMalformedFunctionCall
		}
		argEl, argVal = e.sequenceNext(argumentList, argEl)
	}

	pe, pv := e.sequenceNext(parameterList, NilIndex)
	for pe != NilIndex {
		p := e.arena.at(pv)
		symbol := p.w0
		if p.bit1 {
			existing, res := e.findSymbol(ns, symbol)
			if res != RunResultOK {
				return res
			}
			if existing == NilIndex {
				groupType := TypeTuple
				if p.bit2 {
					groupType = TypeDictionary
				}
				g, ok := e.arena.alloc(groupType)
				if !ok {
					return RunResultOutOfDataMemory
				}
				if _, res := e.treeTryInsertBySymbol(ns, symbol, g); res != RunResultOK {
					return res
				}
				e.unref(g)
			}
		} else {
			existing, res := e.findSymbol(ns, symbol)
			if res != RunResultOK {
				return res
			}
			if existing != NilIndex {
				pe, pv = e.sequenceNext(parameterList, pe)
				continue
			}
			if !p.bit0 { // hasDefault
				return RunResultMalformedFunctionCall
			}
			if _, res := e.treeTryInsertBySymbol(ns, symbol, p.idx(1)); res != RunResultOK {
				return res
			}
		}
		pe, pv = e.sequenceNext(parameterList, pe)
	}

	if e.arena.treeCount(ns) != e.arena.seqCount(parameterList) {
		return RunResultMalformedFunctionCall
	}
	return RunResultOK
}
