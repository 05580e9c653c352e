package asp

import "math"

// Range stores its start/end/step as references to separate Integer
// objects (or TypeNone, when the corresponding has* bit is clear) rather
// than packing raw ints directly, so an open-ended range costs only the
// None singleton's existing reference for the bound it omits.

// newRange allocates a Range from optional raw start/end/step values,
// allocating a fresh Integer cell for each one present.
func (e *Engine) newRange(hasStart bool, start int32, hasEnd bool, end int32, hasStep bool, step int32) (Index, RunResult) {
	r, ok := e.arena.alloc(TypeRange)
	if !ok {
		return NilIndex, RunResultOutOfDataMemory
	}
	re := e.arena.at(r)
	re.bit0, re.bit1, re.bit2 = hasStart, hasEnd, hasStep

	set := func(slot int, has bool, value int32) RunResult {
		if !has {
			re.setIdx(slot, NilIndex)
			return RunResultOK
		}
		cell, ok := e.arena.alloc(TypeInteger)
		if !ok {
			return RunResultOutOfDataMemory
		}
		e.arena.at(cell).w0 = value
		re.setIdx(slot, cell)
		return RunResultOK
	}
	if res := set(0, hasStart, start); res != RunResultOK {
		return NilIndex, res
	}
	if res := set(1, hasEnd, end); res != RunResultOK {
		return NilIndex, res
	}
	if res := set(2, hasStep, step); res != RunResultOK {
		return NilIndex, res
	}
	return r, RunResultOK
}

// rangeFields extracts a Range's start/end/step as plain int32 values,
// each defaulting to 0 when its corresponding has* bit is clear (the
// caller applies the semantic default: 0 for start, 1 for step).
func (e *Engine) rangeFields(r Index) (start, end, step int32, hasStart, hasEnd, hasStep bool) {
	re := e.arena.at(r)
	hasStart, hasEnd, hasStep = re.bit0, re.bit1, re.bit2
	if hasStart {
		start = e.arena.at(re.idx(0)).w0
	}
	if hasEnd {
		end = e.arena.at(re.idx(1)).w0
	}
	if hasStep {
		step = e.arena.at(re.idx(2)).w0
	}
	return
}

// rangeAtEnd reports whether value has reached or passed end, stepping
// by step. An unbounded range (hasEnd false) never ends, so callers
// skip this check for one.
func rangeAtEnd(value, end, step int32) bool {
	if step == 0 {
		return true
	}
	if step > 0 {
		return value >= end
	}
	return value <= end
}

// isTrue implements the engine's truthiness rule: None, False, zero,
// empty string/container are false; everything else is true.
func (e *Engine) isTrue(v Index) bool {
	c := e.arena.at(v)
	switch c.typ {
	case TypeNone:
		return false
	case TypeEllipsis:
		return true
	case TypeBoolean, TypeInteger:
		return c.w0 != 0
	case TypeFloat:
		return asFloat64(c) != 0
	case TypeRange:
		n, res := e.rangeLen(v)
		return res != RunResultOK || n != 0
	case TypeString, TypeTuple, TypeList:
		return e.arena.seqCount(v) != 0
	case TypeSet, TypeDictionary, TypeNamespace:
		return e.arena.treeCount(v) != 0
	default:
		return true
	}
}

func (e *Engine) newBool(v bool) (Index, RunResult) {
	b, ok := e.arena.alloc(TypeBoolean)
	if !ok {
		return NilIndex, RunResultOutOfDataMemory
	}
	if v {
		e.arena.at(b).w0 = 1
	}
	return b, RunResultOK
}

func (e *Engine) newInt(v int32) (Index, RunResult) {
	i, ok := e.arena.alloc(TypeInteger)
	if !ok {
		return NilIndex, RunResultOutOfDataMemory
	}
	e.arena.at(i).w0 = v
	return i, RunResultOK
}

func (e *Engine) newFloat(v float64) (Index, RunResult) {
	f, ok := e.arena.alloc(TypeFloat)
	if !ok {
		return NilIndex, RunResultOutOfDataMemory
	}
	bits := math.Float64bits(v)
	e.arena.at(f).w0 = int32(uint32(bits))
	e.arena.at(f).w1 = int32(uint32(bits >> 32))
	return f, RunResultOK
}

// performUnary implements LNOT, POS, NEG, NOT.
func (e *Engine) performUnary(op OpCode, operand Index) (Index, RunResult) {
	t := e.arena.at(operand).typ
	switch op {
	case OpLNOT:
		return e.newBool(!e.isTrue(operand))

	case OpPOS:
		switch t {
		case TypeBoolean:
			return e.newInt(e.arena.at(operand).w0)
		case TypeInteger, TypeFloat:
			e.ref(operand)
			return operand, RunResultOK
		default:
			return NilIndex, RunResultUnexpectedType
		}

	case OpNEG:
		switch t {
		case TypeBoolean:
			return e.newInt(-e.arena.at(operand).w0)
		case TypeInteger:
			return e.newInt(-e.arena.at(operand).w0)
		case TypeFloat:
			return e.newFloat(-asFloat64(e.arena.at(operand)))
		default:
			return NilIndex, RunResultUnexpectedType
		}

	case OpNOT:
		switch t {
		case TypeBoolean:
			return e.newInt(^e.arena.at(operand).w0)
		case TypeInteger:
			return e.newInt(^e.arena.at(operand).w0)
		default:
			return NilIndex, RunResultUnexpectedType
		}

	default:
		return NilIndex, RunResultInvalidInstruction
	}
}

func asBits(t DataType, e *entry) (uint32, bool) {
	switch t {
	case TypeBoolean, TypeInteger:
		return uint32(e.w0), true
	default:
		return 0, false
	}
}

// performBitwise implements OR, XOR, AND, LSH, RSH (Boolean/Integer
// operands only).
func (e *Engine) performBitwise(op OpCode, left, right Index) (Index, RunResult) {
	le, re := e.arena.at(left), e.arena.at(right)
	lb, lok := asBits(le.typ, le)
	rb, rok := asBits(re.typ, re)
	if !lok || !rok {
		return NilIndex, RunResultUnexpectedType
	}
	var result uint32
	switch op {
	case OpOR:
		result = lb | rb
	case OpXOR:
		result = lb ^ rb
	case OpAND:
		result = lb & rb
	case OpLSH:
		result = lb << (rb & 31)
	case OpRSH:
		result = lb >> (rb & 31)
	default:
		return NilIndex, RunResultInvalidInstruction
	}
	return e.newInt(int32(result))
}

// performArithmetic implements ADD, SUB, MUL, DIV, FDIV, MOD, POW for
// numeric operands, promoting to Float whenever either side is Float (or
// the operation demands it, as DIV always does).
func (e *Engine) performArithmetic(op OpCode, left, right Index) (Index, RunResult) {
	le, re := e.arena.at(left), e.arena.at(right)
	leftIsFloat, rightIsFloat := le.typ == TypeFloat, re.typ == TypeFloat

	toInt := func(t DataType, e *entry) int32 {
		if t == TypeBoolean || t == TypeInteger {
			return e.w0
		}
		return 0
	}
	toFloat := func(t DataType, e *entry, asInt int32) float64 {
		if t == TypeFloat {
			return asFloat64(e)
		}
		return float64(asInt)
	}

	if !leftIsFloat && !rightIsFloat {
		li, ri := toInt(le.typ, le), toInt(re.typ, re)
		switch op {
		case OpADD:
			return e.newInt(li + ri)
		case OpSUB:
			return e.newInt(li - ri)
		case OpMUL:
			return e.newInt(li * ri)
		case OpDIV:
			if ri == 0 {
				return NilIndex, RunResultDivideByZero
			}
			return e.newFloat(float64(li) / float64(ri))
		case OpFDIV:
			if ri == 0 {
				return NilIndex, RunResultDivideByZero
			}
			return e.newInt(floorDivInt(li, ri))
		case OpMOD:
			if ri == 0 {
				return NilIndex, RunResultDivideByZero
			}
			return e.newInt(li - floorDivInt(li, ri)*ri)
		case OpPOW:
			return e.newFloat(math.Pow(float64(li), float64(ri)))
		}
		return NilIndex, RunResultInvalidInstruction
	}

	lf := toFloat(le.typ, le, toInt(le.typ, le))
	rf := toFloat(re.typ, re, toInt(re.typ, re))
	switch op {
	case OpADD:
		return e.newFloat(lf + rf)
	case OpSUB:
		return e.newFloat(lf - rf)
	case OpMUL:
		return e.newFloat(lf * rf)
	case OpDIV:
		if rf == 0 {
			return NilIndex, RunResultDivideByZero
		}
		return e.newFloat(lf / rf)
	case OpFDIV:
		if rf == 0 {
			return NilIndex, RunResultDivideByZero
		}
		return e.newFloat(math.Floor(lf / rf))
	case OpMOD:
		if rf == 0 {
			return NilIndex, RunResultDivideByZero
		}
		return e.newFloat(lf - math.Floor(lf/rf)*rf)
	case OpPOW:
		return e.newFloat(math.Pow(lf, rf))
	}
	return NilIndex, RunResultInvalidInstruction
}

// floorDivInt divides toward negative infinity, matching the language's
// modulo convention (result always takes the sign of the divisor).
func floorDivInt(a, b int32) int32 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// performConcatenate implements ADD for two Strings, two Tuples or two
// Lists: a new container holding the left sequence's elements followed
// by the right's.
func (e *Engine) performConcatenate(left, right Index) (Index, RunResult) {
	t := e.arena.at(left).typ
	result, ok := e.arena.alloc(t)
	if !ok {
		return NilIndex, RunResultOutOfDataMemory
	}
	if t == TypeString {
		if res := e.stringAppendBuffer(result, e.stringBytes(left)); res != RunResultOK {
			e.unref(result)
			return NilIndex, res
		}
		if res := e.stringAppendBuffer(result, e.stringBytes(right)); res != RunResultOK {
			e.unref(result)
			return NilIndex, res
		}
		return result, RunResultOK
	}
	for _, src := range [2]Index{left, right} {
		for el, val := e.sequenceNext(src, NilIndex); el != NilIndex; el, val = e.sequenceNext(src, el) {
			if _, res := e.sequenceAppend(result, val); res != RunResultOK {
				e.unref(result)
				return NilIndex, res
			}
		}
	}
	return result, RunResultOK
}

// performExpand implements MUL between a String/Tuple/List and a
// Boolean/Integer repeat count, producing count concatenated copies (a
// non-positive count yields an empty result of the same kind).
func (e *Engine) performExpand(seq Index, countEntry Index) (Index, RunResult) {
	ce := e.arena.at(countEntry)
	count := ce.w0
	t := e.arena.at(seq).typ

	result, ok := e.arena.alloc(t)
	if !ok {
		return NilIndex, RunResultOutOfDataMemory
	}
	for n := int32(0); n < count; n++ {
		if t == TypeString {
			if res := e.stringAppendBuffer(result, e.stringBytes(seq)); res != RunResultOK {
				e.unref(result)
				return NilIndex, res
			}
			continue
		}
		for el, val := e.sequenceNext(seq, NilIndex); el != NilIndex; el, val = e.sequenceNext(seq, el) {
			if _, res := e.sequenceAppend(result, val); res != RunResultOK {
				e.unref(result)
				return NilIndex, res
			}
		}
	}
	return result, RunResultOK
}

// containsMember implements IN/NIN: Set/Dictionary membership is a key
// lookup; String/Tuple/List/Range membership is a linear/derived scan.
func (e *Engine) containsMember(member, container Index) (bool, RunResult) {
	switch e.arena.at(container).typ {
	case TypeSet, TypeDictionary:
		node, _, res := e.treeFind(container, member)
		return node != NilIndex, res

	case TypeTuple, TypeList:
		for el, val := e.sequenceNext(container, NilIndex); el != NilIndex; el, val = e.sequenceNext(container, el) {
			c, res := e.compare(member, val, CompareModeEquality)
			if res != RunResultOK {
				return false, res
			}
			if c == 0 {
				return true, RunResultOK
			}
		}
		return false, RunResultOK

	case TypeString:
		// A String's members are its individual characters (matching
		// iterator.go's own char-at-a-time DITER dereferencing), not
		// Element cells, so this walks bytes directly rather than going
		// through sequenceNext/elemValue, which a StringFragment never
		// populates.
		if e.arena.at(member).typ != TypeString {
			return false, RunResultUnexpectedType
		}
		memberBytes := e.stringBytes(member)
		if len(memberBytes) != 1 {
			return false, RunResultOK
		}
		n := e.stringByteLen(container)
		for i := int32(0); i < n; i++ {
			b, res := e.stringByteAt(container, i)
			if res != RunResultOK {
				return false, res
			}
			if b == memberBytes[0] {
				return true, RunResultOK
			}
		}
		return false, RunResultOK

	case TypeRange:
		if e.arena.at(member).typ != TypeInteger && e.arena.at(member).typ != TypeBoolean {
			return false, RunResultOK
		}
		start, end, step, hasStart, hasEnd, hasStep := e.rangeFields(container)
		if !hasStart {
			start = 0
		}
		if !hasStep {
			step = 1
		}
		v := e.arena.at(member).w0
		if step == 0 || (v-start)%step != 0 {
			return false, RunResultOK
		}
		if step > 0 {
			if v < start || (hasEnd && v >= end) {
				return false, RunResultOK
			}
		} else {
			if v > start || (hasEnd && v <= end) {
				return false, RunResultOK
			}
		}
		return true, RunResultOK

	default:
		return false, RunResultUnexpectedType
	}
}
