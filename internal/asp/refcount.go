package asp

// Reference counting: ref increments an object's use count; unref
// decrements it and, on reaching zero, releases its children and frees
// its cell. Releasing a container would naturally recurse into its
// children, each of which might itself be a container — on a
// resource-constrained host that recursion has no bound. Instead unref
// avoids recursion entirely by pushing child references onto the
// engine's own work stack (via pushNoUse, which transfers ownership of
// the reference already held rather than taking a new one) and looping
// until the stack returns to where it started.

// ref increments value's use count. Support-kind cells (never object
// kinds) are not reference counted.
func (e *Engine) ref(value Index) {
	if !e.arena.at(value).typ.IsObject() {
		return
	}
	e.arena.at(value).useCount++
}

// unref decrements value's use count, releasing its children and
// freeing its cell once the count reaches zero, iteratively.
func (e *Engine) unref(value Index) RunResult {
	if e.runResult != RunResultOK {
		return e.runResult
	}

	mark := e.snapshotStack()
	entry := value
	for iter := uint32(0); ; iter++ {
		if iter >= e.cycleLimit {
			e.unwindStackTo(mark)
			return RunResultCycleDetected
		}
		isObject := e.arena.at(entry).typ.IsObject()
		if isObject {
			e.arena.at(entry).useCount--
		}

		if !isObject || e.arena.at(entry).useCount == 0 {
			if res := e.releaseChildren(entry); res != RunResultOK {
				return res
			}
			if e.arena.at(entry).typ != TypeFree {
				e.arena.free(entry)
			}
		}

		if e.stackTop == mark {
			break
		}

		if e.arena.at(e.stackTop).bit0 {
			entry = e.arena.at(e.stackTop).idx(2)
			e.arena.at(e.stackTop).bit0 = false
			e.arena.at(e.stackTop).setIdx(2, NilIndex)
		} else {
			entry = e.top()
			e.popNoErase()
		}
	}
	return RunResultOK
}

// releaseChildren pushes (without taking new references) every index a
// cell of entry's type owns, so the unref loop will visit and release
// each one in turn.
func (e *Engine) releaseChildren(entry Index) RunResult {
	c := e.arena.at(entry)
	switch c.typ {
	case TypeBoolean:
		if c.w0 != 0 {
			if e.trueSingleton == entry {
				e.trueSingleton = NilIndex
			}
		} else if e.falseSingleton == entry {
			e.falseSingleton = NilIndex
		}

	case TypeRange:
		if c.bit0 {
			if res := e.pushNoUse(c.idx(0)); res != RunResultOK {
				return res
			}
		}
		if c.bit1 {
			if res := e.pushNoUse(c.idx(1)); res != RunResultOK {
				return res
			}
		}
		if c.bit2 {
			if res := e.pushNoUse(c.idx(2)); res != RunResultOK {
				return res
			}
		}

	case TypeString, TypeTuple, TypeList, TypeParameterList, TypeArgumentList:
		isAddressSeq := c.typ == TypeParameterList || c.typ == TypeArgumentList
		for {
			value, ok, res := e.sequencePopFront(entry)
			if res != RunResultOK {
				return res
			}
			if !ok {
				break
			}
			eraseValue := c.typ == TypeString || e.arena.at(value).typ.IsTerminal()
			if eraseValue {
				if res := e.unref(value); res != RunResultOK {
					return res
				}
			} else if !isAddressSeq || e.arena.at(value).typ.IsObject() {
				if res := e.pushNoUse(value); res != RunResultOK {
					return res
				}
			}
		}

	case TypeSet, TypeDictionary, TypeNamespace:
		for {
			key, value, ok, res := e.treePopFirst(entry)
			if res != RunResultOK {
				return res
			}
			if !ok {
				break
			}
			isSet := c.typ == TypeSet
			isNamespace := c.typ == TypeNamespace
			if !isNamespace && key != NilIndex && e.arena.at(key).typ.IsTerminal() {
				if res := e.unref(key); res != RunResultOK {
					return res
				}
				key = NilIndex
			}
			if !isSet && value != NilIndex && e.arena.at(value).typ.IsObject() && e.arena.at(value).typ.IsTerminal() {
				if res := e.unref(value); res != RunResultOK {
					return res
				}
				value = NilIndex
			}
			hasValue := !isSet && value != NilIndex && e.arena.at(value).typ.IsObject()
			if key != NilIndex && !isNamespace {
				if res := e.pushNoUse(key); res != RunResultOK {
					return res
				}
				if hasValue {
					e.arena.at(e.stackTop).bit0 = true
					e.arena.at(e.stackTop).setIdx(2, value)
				}
			} else if hasValue {
				if res := e.pushNoUse(value); res != RunResultOK {
					return res
				}
			}
		}

	case TypeIterator:
		if res := e.pushNoUse(c.idx(0)); res != RunResultOK {
			return res
		}
		member := c.idx(1)
		if member != NilIndex && c.bit0 {
			if e.arena.at(member).typ.IsTerminal() {
				if res := e.unref(member); res != RunResultOK {
					return res
				}
			} else if res := e.pushNoUse(member); res != RunResultOK {
				return res
			}
		}

	case TypeFunction:
		if res := e.pushNoUse(c.idx(1)); res != RunResultOK {
			return res
		}
		if res := e.pushNoUse(c.idx(2)); res != RunResultOK {
			return res
		}

	case TypeModule:
		if res := e.pushNoUse(c.idx(1)); res != RunResultOK {
			return res
		}

	case TypeFrame:
		if res := e.pushNoUse(c.idx(1)); res != RunResultOK {
			return res
		}

	case TypeKeyValuePair:
		key, value := c.idx(0), c.idx(1)
		if e.arena.at(key).typ.IsTerminal() {
			if res := e.unref(key); res != RunResultOK {
				return res
			}
		} else if res := e.pushNoUse(key); res != RunResultOK {
			return res
		}
		if e.arena.at(value).typ.IsTerminal() {
			if res := e.unref(value); res != RunResultOK {
				return res
			}
		} else if res := e.pushNoUse(value); res != RunResultOK {
			return res
		}

	case TypeParameter:
		if c.bit0 {
			def := c.idx(1)
			if e.arena.at(def).typ.IsTerminal() {
				if res := e.unref(def); res != RunResultOK {
					return res
				}
			} else if res := e.pushNoUse(def); res != RunResultOK {
				return res
			}
		}

	case TypeArgument:
		value := c.idx(1)
		if e.arena.at(value).typ.IsTerminal() {
			if res := e.unref(value); res != RunResultOK {
				return res
			}
		} else if res := e.pushNoUse(value); res != RunResultOK {
			return res
		}

	case TypeAddress:
		if res := e.pushNoUse(c.idx(0)); res != RunResultOK {
			return res
		}
		if c.bit1 {
			if res := e.pushNoUse(c.idx(2)); res != RunResultOK {
				return res
			}
		}
	}
	return RunResultOK
}
