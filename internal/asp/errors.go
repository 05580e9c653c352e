// Package asp implements the Asp bytecode execution engine: a fixed-arena,
// reference-counted virtual machine that runs a compiled script image
// against a caller-supplied memory region and reenters the host for
// application-declared functions.
package asp

import "fmt"

// RunResult is the engine's single result enumeration. Every fallible
// engine primitive returns one instead of a Go error, mirroring the
// original C engine's sticky result code: on the hot path of the
// dispatcher, allocating an error value per opcode would defeat the
// point of running in a fixed arena.
type RunResult int32

const (
	// RunResultOK indicates the immediately preceding operation succeeded.
	RunResultOK RunResult = iota

	// RunResultComplete indicates the program ran to a normal END.
	RunResultComplete

	// RunResultInitializationError indicates a malformed bytecode header,
	// application-spec check-value mismatch, or a malformed app spec.
	RunResultInitializationError

	// RunResultInvalidState indicates an operation was attempted while the
	// engine was in a state that does not permit it (e.g., Step while a
	// host callout is in progress).
	RunResultInvalidState

	// RunResultInvalidInstruction indicates the dispatcher fetched a byte
	// that does not correspond to a known opcode.
	RunResultInvalidInstruction

	// RunResultInvalidEnd indicates an END instruction executed with a
	// non-empty work stack.
	RunResultInvalidEnd

	// RunResultBeyondEndOfCode indicates the program counter advanced past
	// the end of the loaded code buffer.
	RunResultBeyondEndOfCode

	// RunResultStackUnderflow indicates a pop was attempted on an empty
	// work stack.
	RunResultStackUnderflow

	// RunResultCycleDetected indicates a bounded iterative algorithm
	// (tear-down, comparison, traversal) exceeded the cycle-detection
	// limit.
	RunResultCycleDetected

	// RunResultInvalidContext indicates a GLOB/LOC opcode executed outside
	// a function scope, or a RET executed outside a function call.
	RunResultInvalidContext

	// RunResultRedundant indicates a module was loaded a second time via
	// LDMOD (a no-op, but reported so callers can distinguish it).
	RunResultRedundant

	// RunResultUnexpectedType indicates an operator or opcode operand was
	// of a type it does not support.
	RunResultUnexpectedType

	// RunResultSequenceMismatch indicates an unpacking assignment's source
	// sequence length did not match its target count.
	RunResultSequenceMismatch

	// RunResultNameNotFound indicates a variable symbol was not bound in
	// any reachable namespace.
	RunResultNameNotFound

	// RunResultKeyNotFound indicates a dictionary or set lookup found no
	// matching key.
	RunResultKeyNotFound

	// RunResultValueOutOfRange indicates an index, slice bound, or range
	// step fell outside the value's valid domain.
	RunResultValueOutOfRange

	// RunResultIteratorAtEnd indicates DITER was applied to an iterator
	// whose TITER would report false.
	RunResultIteratorAtEnd

	// RunResultMalformedFunctionCall indicates argument/parameter binding
	// failed (too many positionals, duplicate assignment, unbound
	// parameter without a default, named argument assigned to a group).
	RunResultMalformedFunctionCall

	// RunResultUndefinedAppFunction indicates CALL targeted an app
	// function symbol the host's dispatch callback did not recognize.
	RunResultUndefinedAppFunction

	// RunResultDivideByZero indicates /, //, or % was attempted with a
	// zero divisor.
	RunResultDivideByZero

	// RunResultOutOfDataMemory indicates the arena's free list was
	// exhausted.
	RunResultOutOfDataMemory

	// RunResultAbort indicates an ABORT instruction executed (assertion
	// failure in the compiled script).
	RunResultAbort

	// RunResultInternalError indicates an engine invariant was violated;
	// it should never occur in a correctly loaded image.
	RunResultInternalError

	// RunResultNotImplemented indicates a structurally valid but
	// unimplemented opcode/operand combination.
	RunResultNotImplemented

	// RunResultApplication is the base of the host-chosen exit code range:
	// RunResultApplication + n represents exit(n).
	RunResultApplication RunResult = 1000
)

// String renders the fixed (non-Application) results by name and
// Application+n results as "Application+n".
func (r RunResult) String() string {
	if r >= RunResultApplication {
		return fmt.Sprintf("Application+%d", int32(r-RunResultApplication))
	}
	switch r {
	case RunResultOK:
		return "OK"
	case RunResultComplete:
		return "Complete"
	case RunResultInitializationError:
		return "InitializationError"
	case RunResultInvalidState:
		return "InvalidState"
	case RunResultInvalidInstruction:
		return "InvalidInstruction"
	case RunResultInvalidEnd:
		return "InvalidEnd"
	case RunResultBeyondEndOfCode:
		return "BeyondEndOfCode"
	case RunResultStackUnderflow:
		return "StackUnderflow"
	case RunResultCycleDetected:
		return "CycleDetected"
	case RunResultInvalidContext:
		return "InvalidContext"
	case RunResultRedundant:
		return "Redundant"
	case RunResultUnexpectedType:
		return "UnexpectedType"
	case RunResultSequenceMismatch:
		return "SequenceMismatch"
	case RunResultNameNotFound:
		return "NameNotFound"
	case RunResultKeyNotFound:
		return "KeyNotFound"
	case RunResultValueOutOfRange:
		return "ValueOutOfRange"
	case RunResultIteratorAtEnd:
		return "IteratorAtEnd"
	case RunResultMalformedFunctionCall:
		return "MalformedFunctionCall"
	case RunResultUndefinedAppFunction:
		return "UndefinedAppFunction"
	case RunResultDivideByZero:
		return "DivideByZero"
	case RunResultOutOfDataMemory:
		return "OutOfDataMemory"
	case RunResultAbort:
		return "Abort"
	case RunResultInternalError:
		return "InternalError"
	case RunResultNotImplemented:
		return "NotImplemented"
	default:
		return fmt.Sprintf("RunResult(%d)", int32(r))
	}
}

// IsFatal reports whether r ends the current run (anything but OK).
func (r RunResult) IsFatal() bool {
	return r != RunResultOK
}

// EngineError wraps a non-OK RunResult with the program counter at which
// it was produced, giving the host a Go error it can inspect with
// errors.As while the underlying RunResult remains the engine's own
// sticky value.
type EngineError struct {
	Result RunResult
	PC     uint32
}

// Error implements the error interface.
func (e *EngineError) Error() string {
	return fmt.Sprintf("asp: %s at pc=%d", e.Result, e.PC)
}

// NewEngineError creates an EngineError for the given result and PC.
func NewEngineError(result RunResult, pc uint32) *EngineError {
	return &EngineError{Result: result, PC: pc}
}
