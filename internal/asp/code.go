package asp

import "math"

// fetchByte reads the opcode byte at pc and advances pc past it,
// reporting RunResultBeyondEndOfCode instead of indexing past codeEnd.
func (e *Engine) fetchByte() (byte, RunResult) {
	if e.pc >= e.codeEnd {
		return 0, RunResultBeyondEndOfCode
	}
	b := e.code[e.pc]
	e.pc++
	return b, RunResultOK
}

// readBytes consumes n operand bytes starting at pc.
func (e *Engine) readBytes(n uint32) ([]byte, RunResult) {
	if e.pc+n > e.codeEnd {
		return nil, RunResultBeyondEndOfCode
	}
	b := e.code[e.pc : e.pc+n]
	e.pc += n
	return b, RunResultOK
}

// readUint reads an n-byte big-endian unsigned operand (n in {1,2,4}).
func (e *Engine) readUint(n uint32) (uint32, RunResult) {
	b, res := e.readBytes(n)
	if res != RunResultOK {
		return 0, res
	}
	var v uint32
	for _, c := range b {
		v = v<<8 | uint32(c)
	}
	return v, RunResultOK
}

// readInt reads an n-byte big-endian two's complement operand, sign
// extended from its encoded width to int32 (n in {1,2,4}).
func (e *Engine) readInt(n uint32) (int32, RunResult) {
	v, res := e.readUint(n)
	if res != RunResultOK {
		return 0, res
	}
	shift := (4 - n) * 8
	return int32(v<<shift) >> shift, RunResultOK
}

// readSymbol reads an n-byte big-endian symbol operand (unsigned, no
// sign extension — symbols are always non-negative indices).
func (e *Engine) readSymbol(n uint32) (int32, RunResult) {
	v, res := e.readUint(n)
	if res != RunResultOK {
		return 0, res
	}
	return int32(v), RunResultOK
}

// readFloat64 reads an 8-byte big-endian binary64 operand.
func (e *Engine) readFloat64() (float64, RunResult) {
	b, res := e.readBytes(8)
	if res != RunResultOK {
		return 0, res
	}
	var bits uint64
	for _, c := range b {
		bits = bits<<8 | uint64(c)
	}
	return math.Float64frombits(bits), RunResultOK
}
