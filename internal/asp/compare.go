package asp

import "math"

// CompareMode selects which comparison semantics AspCompare applies:
// which type combinations are legal, and how ties resolve.
type CompareMode int

const (
	// CompareModeEquality backs ==/!=: any two objects may be compared,
	// mismatched types other than numeric promotion are simply unequal.
	CompareModeEquality CompareMode = iota
	// CompareModeRelational backs </<=/>/>=: ranges, sets, dictionaries,
	// functions, modules, types and iterators are rejected; tuples and
	// lists compare element by element.
	CompareModeRelational
	// CompareModeKey orders keys for IN/tree lookup: List, Set,
	// Dictionary and Iterator are rejected; mismatched types order by
	// type tag.
	CompareModeKey
	// CompareModeOrder is like Key but additionally used to give
	// otherwise-equal-by-count containers a stable internal order.
	CompareModeOrder
)

func isNumeric(t DataType) bool {
	return t == TypeBoolean || t == TypeInteger || t == TypeFloat
}

func asFloat64(e *entry) float64 {
	return math.Float64frombits(uint64(uint32(e.w0)) | uint64(uint32(e.w1))<<32)
}

// compareFloats implements the reference engine's NaN-aware float
// ordering: for Equality/Relational modes NaN simply compares unequal
// (reported via nanDetected, which short-circuits the caller), but
// Key/Order modes need a total order, so two NaNs are additionally
// ordered by raw bit pattern and NaN sorts before every non-NaN value.
func compareFloats(l, r float64, mode CompareMode) (int, bool) {
	lNaN, rNaN := math.IsNaN(l), math.IsNaN(r)
	nanDetected := lNaN || rNaN
	if (mode != CompareModeKey && mode != CompareModeOrder) || !nanDetected {
		switch {
		case l == r:
			return 0, nanDetected
		case l < r:
			return -1, nanDetected
		default:
			return 1, nanDetected
		}
	}
	if lNaN != rNaN {
		if lNaN {
			return -1, true
		}
		return 1, true
	}
	lb, rb := math.Float64bits(l), math.Float64bits(r)
	switch {
	case lb == rb:
		return 0, true
	case lb < rb:
		return -1, true
	default:
		return 1, true
	}
}

// compare implements AspCompare: an iterative structural comparison
// using the engine's own work stack in place of recursion, bounded by
// the engine's cycle-detection limit.
//
// Container comparisons are deferred by pushing a small frame of paired
// stack entries instead of calling compare recursively. A frame is
// pushed bottom to top as: cursor-pair (the element/node last visited,
// plain), container-pair (the two containers, flagged via bit1 so the
// resume step below can recognize it), then one payload pair (value,
// for Tuple/List/Set-by-key) or two (Dictionary: key pair then, on top,
// value pair — value compares first). Popping a plain pair supplies the
// next left/right to compare directly; popping a flagged container pair
// additionally consumes the cursor pair beneath it and calls back into
// the container's Next primitive to keep the traversal going.
func (e *Engine) compare(left, right Index, mode CompareMode) (int, RunResult) {
	mark := e.snapshotStack()
	comparison := 0
	nanDetected := false

	for iter := uint32(0); ; iter++ {
		if iter >= e.cycleLimit {
			e.unwindStackTo(mark)
			return 0, RunResultCycleDetected
		}

		leftType := e.arena.at(left).typ
		rightType := e.arena.at(right).typ

		switch {
		case leftType != rightType && (mode == CompareModeKey || mode == CompareModeOrder):
			if leftType < rightType {
				comparison = -1
			} else {
				comparison = 1
			}

		case leftType != rightType && isNumeric(leftType) && isNumeric(rightType):
			c, nd := e.compareNumeric(left, right, leftType, rightType, mode)
			comparison, nanDetected = c, nanDetected || nd

		case leftType != rightType && mode == CompareModeEquality:
			comparison = 1

		case leftType != rightType:
			e.unwindStackTo(mark)
			return 0, RunResultUnexpectedType

		default:
			if res := e.rejectIfIllegal(leftType, mode); res != RunResultOK {
				e.unwindStackTo(mark)
				return 0, res
			}
			if left == right && leftType != TypeFloat {
				comparison = 0
				break
			}
			c, nd, res := e.compareSameType(left, right, leftType, mode)
			if res != RunResultOK {
				e.unwindStackTo(mark)
				return 0, res
			}
			comparison, nanDetected = c, nanDetected || nd
		}

		if comparison != 0 || nanDetected || e.snapshotStack() == mark {
			break
		}

		nextLeft, nextRight, finished, finalComparison, res := e.compareAdvance()
		if res != RunResultOK {
			e.unwindStackTo(mark)
			return 0, res
		}
		if finished {
			comparison = finalComparison
			break
		}
		left, right = nextLeft, nextRight
	}

	e.unwindStackTo(mark)
	return comparison, RunResultOK
}

func (e *Engine) rejectIfIllegal(t DataType, mode CompareMode) RunResult {
	switch mode {
	case CompareModeRelational:
		switch t {
		case TypeRange, TypeSet, TypeDictionary, TypeIterator, TypeFunction, TypeModule, TypeType:
			return RunResultUnexpectedType
		}
	case CompareModeKey:
		switch t {
		case TypeList, TypeSet, TypeDictionary, TypeIterator:
			return RunResultUnexpectedType
		}
	}
	return RunResultOK
}

func (e *Engine) compareNumeric(left, right Index, lt, rt DataType, mode CompareMode) (int, bool) {
	toInt := func(i Index, t DataType) int32 {
		if t == TypeBoolean || t == TypeInteger {
			return e.arena.at(i).w0
		}
		return 0
	}
	if lt != TypeFloat && rt != TypeFloat {
		l, r := toInt(left, lt), toInt(right, rt)
		switch {
		case l == r:
			return 0, false
		case l < r:
			return -1, false
		default:
			return 1, false
		}
	}
	toFloat := func(i Index, t DataType) float64 {
		if t == TypeFloat {
			return asFloat64(e.arena.at(i))
		}
		return float64(toInt(i, t))
	}
	return compareFloats(toFloat(left, lt), toFloat(right, rt), mode)
}

// compareSameType compares two objects of the same DataType. For
// container kinds it pushes a continuation frame for their first
// element/node pair (if any) and returns comparison 0, deferring the
// actual element comparison to the next outer-loop iteration.
func (e *Engine) compareSameType(left, right Index, t DataType, mode CompareMode) (comparison int, nanDetected bool, res RunResult) {
	switch t {
	case TypeNone, TypeEllipsis:
		return 0, false, RunResultOK

	case TypeBoolean, TypeInteger:
		return cmpI32(e.arena.at(left).w0, e.arena.at(right).w0), false, RunResultOK

	case TypeFloat:
		c, nd := compareFloats(asFloat64(e.arena.at(left)), asFloat64(e.arena.at(right)), mode)
		return c, nd, RunResultOK

	case TypeRange:
		return e.compareRanges(left, right), false, RunResultOK

	case TypeString:
		return e.compareStrings(left, right), false, RunResultOK

	case TypeTuple, TypeList:
		return e.compareSequenceStart(left, right, mode)

	case TypeSet, TypeDictionary:
		return e.compareTreeStart(left, right, mode)

	case TypeIterator:
		le, re := e.arena.at(left), e.arena.at(right)
		if le.w0 == re.w0 && le.w1 == re.w1 && le.w2 == re.w2 {
			return 0, false, RunResultOK
		}
		return 1, false, RunResultOK

	case TypeFunction:
		le, re := e.arena.at(left), e.arena.at(right)
		if le.bit0 != re.bit0 {
			return cmpBool(le.bit0, re.bit0), false, RunResultOK
		}
		return cmpI32(le.w0, re.w0), false, RunResultOK

	case TypeModule:
		return cmpI32(e.arena.at(left).w0, e.arena.at(right).w0), false, RunResultOK

	case TypeType:
		return cmpI32(e.arena.at(left).w0, e.arena.at(right).w0), false, RunResultOK

	default:
		return 0, false, RunResultInternalError
	}
}

func cmpI32(l, r int32) int {
	switch {
	case l == r:
		return 0
	case l < r:
		return -1
	default:
		return 1
	}
}

func cmpBool(l, r bool) int {
	if l == r {
		return 0
	}
	if !l {
		return -1
	}
	return 1
}

// compareRanges orders two Range objects by (hasStart, start, hasEnd,
// end, hasStep, step); start/end/step live in separately-allocated
// Integer objects (or are absent, per the has* bits), not raw words.
func (e *Engine) compareRanges(left, right Index) int {
	lStart, lEnd, lStep, lHasStart, lHasEnd, lHasStep := e.rangeFields(left)
	rStart, rEnd, rStep, rHasStart, rHasEnd, rHasStep := e.rangeFields(right)

	if lHasStart != rHasStart {
		return cmpBool(rHasStart, lHasStart)
	}
	if lHasStart {
		if c := cmpI32(lStart, rStart); c != 0 {
			return c
		}
	}
	if lHasEnd != rHasEnd {
		return cmpBool(rHasEnd, lHasEnd)
	}
	if lHasEnd {
		if c := cmpI32(lEnd, rEnd); c != 0 {
			return c
		}
	}
	if lHasStep != rHasStep {
		return cmpBool(rHasStep, lHasStep)
	}
	if lHasStep {
		return cmpI32(lStep, rStep)
	}
	return 0
}

func (e *Engine) compareStrings(left, right Index) int {
	lb, rb := e.stringBytes(left), e.stringBytes(right)
	n := len(lb)
	if len(rb) < n {
		n = len(rb)
	}
	for i := 0; i < n; i++ {
		if lb[i] != rb[i] {
			return cmpI32(int32(lb[i]), int32(rb[i]))
		}
	}
	return cmpI32(int32(len(lb)), int32(len(rb)))
}

// compareSequenceStart begins a Tuple/List comparison: if Key/Order
// mode, unequal counts settle it immediately; otherwise it fetches each
// side's first element and, if both have one, pushes a continuation
// frame and defers the actual comparison (via compareAdvance) to the
// caller's next loop iteration.
func (e *Engine) compareSequenceStart(left, right Index, mode CompareMode) (int, bool, RunResult) {
	if mode == CompareModeKey || mode == CompareModeOrder {
		if c := cmpI32(e.arena.seqCount(left), e.arena.seqCount(right)); c != 0 {
			return c, false, RunResultOK
		}
	}
	leftEl, leftVal := e.sequenceNext(left, NilIndex)
	rightEl, rightVal := e.sequenceNext(right, NilIndex)
	if leftEl == NilIndex || rightEl == NilIndex {
		return endComparison(leftEl == NilIndex, rightEl == NilIndex), false, RunResultOK
	}
	if res := e.pushFrame(left, right, leftEl, rightEl, false, NilIndex, NilIndex, true, leftVal, rightVal); res != RunResultOK {
		return 0, false, res
	}
	return 0, false, RunResultOK
}

// endComparison resolves a tie when one or both sides of an iteration
// have run out of elements: the shorter/exhausted side sorts first,
// and running out together is equality.
func endComparison(leftEnded, rightEnded bool) int {
	switch {
	case leftEnded && rightEnded:
		return 0
	case leftEnded:
		return -1
	default:
		return 1
	}
}

// compareTreeStart is compareSequenceStart's counterpart for Set and
// Dictionary, fetching the first (minimum-keyed) node from each side.
func (e *Engine) compareTreeStart(left, right Index, mode CompareMode) (int, bool, RunResult) {
	if mode == CompareModeOrder {
		if c := cmpI32(e.arena.treeCount(left), e.arena.treeCount(right)); c != 0 {
			return c, false, RunResultOK
		}
	}
	leftNode, leftKey, leftVal, res := e.treeNext(left, NilIndex)
	if res != RunResultOK {
		return 0, false, res
	}
	rightNode, rightKey, rightVal, res := e.treeNext(right, NilIndex)
	if res != RunResultOK {
		return 0, false, res
	}
	if leftNode == NilIndex || rightNode == NilIndex {
		return endComparison(leftNode == NilIndex, rightNode == NilIndex), false, RunResultOK
	}
	isDict := e.arena.at(left).typ == TypeDictionary
	if res := e.pushFrame(left, right, leftNode, rightNode, true, leftKey, rightKey, isDict, leftVal, rightVal); res != RunResultOK {
		return 0, false, res
	}
	return 0, false, RunResultOK
}

// pushFrame pushes one continuation frame: cursor pair (bottom, plain),
// container pair (flagged via bit1), an optional key pair, and an
// optional value pair on top (value compares before key, matching the
// reference engine's stack order for Dictionary).
func (e *Engine) pushFrame(containerL, containerR, cursorL, cursorR Index, hasKey bool, keyL, keyR Index, hasVal bool, valL, valR Index) RunResult {
	if res := e.pushPaired(cursorL, cursorR); res != RunResultOK {
		return res
	}
	if res := e.pushPaired(containerL, containerR); res != RunResultOK {
		return res
	}
	e.arena.at(e.stackTop).bit1 = true
	if hasKey {
		if res := e.pushPaired(keyL, keyR); res != RunResultOK {
			return res
		}
	}
	if hasVal {
		if res := e.pushPaired(valL, valR); res != RunResultOK {
			return res
		}
	}
	return RunResultOK
}

// compareAdvance pops one stack level. A plain level supplies the next
// left/right pair to compare directly (finished=false). A flagged
// (container) level additionally consumes the cursor pair beneath it
// and resumes the container's traversal: if both sides still have an
// element/node it pushes a fresh frame and returns its first payload to
// compare; if either side has been exhausted it reports finished=true
// with the tie-break result.
func (e *Engine) compareAdvance() (left, right Index, finished bool, finalComparison int, res RunResult) {
	if e.stackTop == NilIndex {
		return NilIndex, NilIndex, true, 0, RunResultOK
	}
	l, r, flagged := e.top(), e.topValue2(), e.arena.at(e.stackTop).bit1
	e.unwindStackTo(e.arena.at(e.stackTop).idx(0))

	if !flagged {
		return l, r, false, 0, RunResultOK
	}

	containerL, containerR := l, r
	cursorL, cursorR := e.top(), e.topValue2()
	e.unwindStackTo(e.arena.at(e.stackTop).idx(0))

	containerType := e.arena.at(containerL).typ
	if containerType == TypeTuple || containerType == TypeList {
		leftEl, leftVal := e.sequenceNext(containerL, cursorL)
		rightEl, rightVal := e.sequenceNext(containerR, cursorR)
		if leftEl == NilIndex || rightEl == NilIndex {
			return NilIndex, NilIndex, true, endComparison(leftEl == NilIndex, rightEl == NilIndex), RunResultOK
		}
		if res := e.pushFrame(containerL, containerR, leftEl, rightEl, false, NilIndex, NilIndex, true, leftVal, rightVal); res != RunResultOK {
			return 0, 0, false, 0, res
		}
		return leftVal, rightVal, false, 0, RunResultOK
	}

	leftNode, leftKey, leftVal, res := e.treeNext(containerL, cursorL)
	if res != RunResultOK {
		return 0, 0, false, 0, res
	}
	rightNode, rightKey, rightVal, res := e.treeNext(containerR, cursorR)
	if res != RunResultOK {
		return 0, 0, false, 0, res
	}
	if leftNode == NilIndex || rightNode == NilIndex {
		return NilIndex, NilIndex, true, endComparison(leftNode == NilIndex, rightNode == NilIndex), RunResultOK
	}
	isDict := containerType == TypeDictionary
	if res := e.pushFrame(containerL, containerR, leftNode, rightNode, true, leftKey, rightKey, isDict, leftVal, rightVal); res != RunResultOK {
		return 0, 0, false, 0, res
	}
	if isDict {
		return leftVal, rightVal, false, 0, RunResultOK
	}
	return leftKey, rightKey, false, 0, RunResultOK
}
