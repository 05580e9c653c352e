package asp

// String is a sequence container (head/tail/count on the container cell,
// exactly like Tuple/List) of StringFragment cells, each holding up to
// stringFragmentCapacity bytes inline. Appending reuses room left in the
// tail fragment before allocating a new one, so short strings built up a
// few bytes at a time (the common case for script string concatenation)
// rarely need more than one or two fragment cells.

// newString allocates an empty String container.
func (e *Engine) newString() (Index, RunResult) {
	s, ok := e.arena.alloc(TypeString)
	if !ok {
		return NilIndex, RunResultOutOfDataMemory
	}
	return s, RunResultOK
}

// newStringFromBytes allocates a String container populated with data.
func (e *Engine) newStringFromBytes(data []byte) (Index, RunResult) {
	s, res := e.newString()
	if res != RunResultOK {
		return NilIndex, res
	}
	if res := e.stringAppendBuffer(s, data); res != RunResultOK {
		e.unref(s)
		return NilIndex, res
	}
	return s, RunResultOK
}

// stringAppendBuffer appends data to s, topping up free space in the tail
// fragment before allocating new fragments for the remainder.
func (e *Engine) stringAppendBuffer(s Index, data []byte) RunResult {
	for len(data) > 0 {
		tail := e.arena.seqTail(s)
		if tail != NilIndex {
			frag := e.arena.at(tail)
			room := stringFragmentCapacity - int(frag.blen)
			if room > 0 {
				n := room
				if n > len(data) {
					n = len(data)
				}
				copy(frag.bytes[frag.blen:], data[:n])
				frag.blen += uint8(n)
				e.arena.setSeqCount(s, e.arena.seqCount(s)+int32(n))
				data = data[n:]
				continue
			}
		}

		frag, ok := e.arena.alloc(TypeStringFragment)
		if !ok {
			return RunResultOutOfDataMemory
		}
		n := len(data)
		if n > stringFragmentCapacity {
			n = stringFragmentCapacity
		}
		fe := e.arena.at(frag)
		copy(fe.bytes[:], data[:n])
		fe.blen = uint8(n)

		if tail == NilIndex {
			e.arena.setSeqHead(s, frag)
		} else {
			e.arena.setElemNext(tail, frag)
			e.arena.setElemPrev(frag, tail)
		}
		e.arena.setSeqTail(s, frag)
		e.arena.setSeqCount(s, e.arena.seqCount(s)+int32(n))
		data = data[n:]
	}
	return RunResultOK
}

// stringByteLen returns the number of bytes in s.
func (e *Engine) stringByteLen(s Index) int32 { return e.arena.seqCount(s) }

// stringBytes materializes s's contents as a single contiguous slice.
func (e *Engine) stringBytes(s Index) []byte {
	n := e.arena.seqCount(s)
	out := make([]byte, 0, n)
	for frag := e.arena.seqHead(s); frag != NilIndex; frag = e.arena.elemNext(frag) {
		fe := e.arena.at(frag)
		out = append(out, fe.bytes[:fe.blen]...)
	}
	return out
}

// stringByteAt returns the byte at offset i within s (0 <= i < byte length).
func (e *Engine) stringByteAt(s Index, i int32) (byte, RunResult) {
	if i < 0 || i >= e.arena.seqCount(s) {
		return 0, RunResultValueOutOfRange
	}
	for frag := e.arena.seqHead(s); frag != NilIndex; frag = e.arena.elemNext(frag) {
		fe := e.arena.at(frag)
		if i < int32(fe.blen) {
			return fe.bytes[i], RunResultOK
		}
		i -= int32(fe.blen)
	}
	return 0, RunResultInternalError
}
