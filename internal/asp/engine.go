package asp

import (
	"encoding/binary"
	"fmt"
)

// State is the engine's coarse lifecycle state, driven by Initialize,
// AddCode/Seal and Step.
type State int

const (
	StateReset State = iota
	StateLoadingHeader
	StateLoadingCode
	StateLoadError
	StateReady
	StateRunning
	StateRunError
	StateEnded
)

func (s State) String() string {
	switch s {
	case StateReset:
		return "Reset"
	case StateLoadingHeader:
		return "LoadingHeader"
	case StateLoadingCode:
		return "LoadingCode"
	case StateLoadError:
		return "LoadError"
	case StateReady:
		return "Ready"
	case StateRunning:
		return "Running"
	case StateRunError:
		return "RunError"
	case StateEnded:
		return "Ended"
	default:
		return "Unknown"
	}
}

// ImageHeaderSize is the length, in bytes, of the fixed preamble every
// compiled image begins with: the 4-byte ASCII signature "AspE", four
// bytes of version, and a 4-byte big-endian application check value.
const ImageHeaderSize = 12

const imageHeaderSize = ImageHeaderSize

var imageSignature = [4]byte{'A', 's', 'p', 'E'}

// HostDispatch is called by CALL when the target is an application
// function: it receives the function's symbol, the local namespace
// holding its bound arguments, and must store its result through
// returnValue (left untouched means None).
type HostDispatch func(engine *Engine, symbol int32, ns Index, returnValue *Index) RunResult

// Option configures a new Engine, following the same functional-options
// shape the host CLI uses for its own top-level configuration.
type Option func(*Engine)

// WithCycleLimit overrides the default bound on iterative algorithms
// (tear-down, comparison, tree/sequence traversal) before they report
// RunResultCycleDetected — the resource-constrained-host analogue of a
// recursion depth limit.
func WithCycleLimit(limit uint32) Option {
	return func(e *Engine) { e.cycleLimit = limit }
}

// WithDispatch installs the host's application-function dispatch
// callback, invoked by CALL for app-declared functions.
func WithDispatch(fn HostDispatch) Option {
	return func(e *Engine) { e.dispatch = fn }
}

// WithAppSpec installs a parsed application specification describing
// the host's callable functions and their parameters.
func WithAppSpec(spec *AppSpec) Option {
	return func(e *Engine) { e.appSpec = spec }
}

const defaultCycleLimit = 1 << 20

// Engine is a single instance of the Asp virtual machine: a fixed-size
// data arena, a code buffer, and the state needed to step through a
// compiled script one instruction at a time, reentering the host via
// Dispatch for application-declared functions.
type Engine struct {
	state     State
	runResult RunResult

	code    []byte
	pc      uint32
	codeEnd uint32

	header []byte // accumulates imageHeaderSize bytes before code is appended

	arena      *arena
	stackTop   Index
	stackCount uint32

	modules Index // Namespace keyed by module-name symbol.
	module  Index // Current Module object.

	systemNamespace Index
	globalNamespace Index
	localNamespace  Index

	trueSingleton, falseSingleton Index

	appSpec  *AppSpec
	dispatch HostDispatch
	inApp    bool

	cycleLimit uint32

	symbolIndex map[string]int32
	symbolNames []string
}

// NewEngine allocates an Engine with a fixed data arena of the given
// cell capacity. The arena size is the entire bound on the script's
// runtime object footprint; once exhausted, every further allocation
// reports RunResultOutOfDataMemory instead of growing.
func NewEngine(dataCapacity uint32, opts ...Option) *Engine {
	e := &Engine{
		arena:      newArena(dataCapacity),
		cycleLimit: defaultCycleLimit,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.resetState()
	return e
}

// resetState returns the engine to State Reset, re-initializing the
// arena and clearing all code/module state. It does not discard the
// configured cycle limit, dispatch callback or app spec.
func (e *Engine) resetState() {
	e.arena.reset()
	e.state = StateReset
	e.runResult = RunResultOK
	e.code = nil
	e.pc = 0
	e.codeEnd = 0
	e.header = nil
	e.stackTop = NilIndex
	e.stackCount = 0
	e.modules = NilIndex
	e.module = NilIndex
	e.systemNamespace = NilIndex
	e.globalNamespace = NilIndex
	e.localNamespace = NilIndex
	e.trueSingleton = NilIndex
	e.falseSingleton = NilIndex
	e.inApp = false
	e.symbolIndex = make(map[string]int32)
	e.symbolNames = nil
}

// Reset discards all loaded code and data and returns the engine to its
// initial state, ready to load a new program.
func (e *Engine) Reset() {
	e.resetState()
}

// State reports the engine's current lifecycle state.
func (e *Engine) State() State { return e.state }

// RunResult reports the sticky result of the most recent Step/Run call.
func (e *Engine) RunResult() RunResult { return e.runResult }

// ProgramCounter reports the current instruction offset within the
// loaded code, for diagnostics and EngineError construction.
func (e *Engine) ProgramCounter() uint32 { return e.pc }

// LowFreeCount reports the lowest number of free arena cells observed
// since the engine was last reset — the host's watermark for tuning a
// program's data-size requirement.
func (e *Engine) LowFreeCount() uint32 { return e.arena.lowWater() }

// FreeCount reports the number of arena cells currently unallocated.
func (e *Engine) FreeCount() uint32 { return e.arena.freeCountNow() }

// Initialize allocates the root namespaces and the system module and
// moves the engine to StateLoadingHeader, ready to receive a compiled
// image's bytes via AddCode.
func (e *Engine) Initialize() RunResult {
	if e.state != StateReset {
		return e.fail(RunResultInvalidState)
	}

	ns, ok := e.arena.alloc(TypeNamespace)
	if !ok {
		return e.fail(RunResultOutOfDataMemory)
	}
	e.systemNamespace = ns

	ns, ok = e.arena.alloc(TypeNamespace)
	if !ok {
		return e.fail(RunResultOutOfDataMemory)
	}
	e.globalNamespace = ns
	e.localNamespace = ns

	modules, ok := e.arena.alloc(TypeNamespace)
	if !ok {
		return e.fail(RunResultOutOfDataMemory)
	}
	e.modules = modules

	if res := e.initializeSystemVariables(); res != RunResultOK {
		return e.fail(res)
	}

	mod, ok := e.arena.alloc(TypeModule)
	if !ok {
		return e.fail(RunResultOutOfDataMemory)
	}
	e.arena.at(mod).w0 = 0
	e.ref(e.globalNamespace)
	e.arena.at(mod).setIdx(1, e.globalNamespace)
	e.module = mod

	if res := e.registerSystemExit(); res != RunResultOK {
		return e.fail(res)
	}

	if res := e.registerAppFunctions(); res != RunResultOK {
		return e.fail(res)
	}

	e.header = make([]byte, 0, imageHeaderSize)
	e.code = nil
	e.codeEnd = 0
	e.pc = 0
	e.state = StateLoadingHeader
	return RunResultOK
}

// AddCode appends bytes to the image being loaded. The first
// imageHeaderSize bytes across all calls are accumulated and validated
// as the image header (signature and, when an AppSpec was supplied via
// WithAppSpec, the application check value) before the engine accepts
// any further bytes as code; a header mismatch is a structural,
// non-recoverable InitializationError.
func (e *Engine) AddCode(data []byte) RunResult {
	if e.state != StateLoadingHeader && e.state != StateLoadingCode {
		return e.fail(RunResultInvalidState)
	}

	if e.state == StateLoadingHeader {
		need := imageHeaderSize - len(e.header)
		n := len(data)
		if n > need {
			n = need
		}
		e.header = append(e.header, data[:n]...)
		data = data[n:]

		if len(e.header) < imageHeaderSize {
			return RunResultOK
		}

		if res := e.validateHeader(); res != RunResultOK {
			return e.fail(res)
		}
		e.state = StateLoadingCode
	}

	e.code = append(e.code, data...)
	e.codeEnd = uint32(len(e.code))
	return RunResultOK
}

// validateHeader checks the accumulated header against the fixed
// signature and, if an AppSpec was configured, its CRC.
func (e *Engine) validateHeader() RunResult {
	if [4]byte(e.header[:4]) != imageSignature {
		return RunResultInitializationError
	}
	if e.appSpec != nil {
		checkValue := binary.BigEndian.Uint32(e.header[8:12])
		if checkValue != e.appSpec.CRC {
			return RunResultInitializationError
		}
	}
	return RunResultOK
}

// Seal finalizes a loaded image: no further AddCode calls are accepted
// and the engine becomes ready to Step.
func (e *Engine) Seal() RunResult {
	if e.state != StateLoadingCode {
		return e.fail(RunResultInvalidState)
	}
	e.pc = 0
	e.state = StateReady
	return RunResultOK
}

// initializeSystemVariables populates the system namespace (sys.*) ahead
// of running any code: an empty args tuple (populated later by
// SetArguments/SetArgumentsString) and the engine's version string.
func (e *Engine) initializeSystemVariables() RunResult {
	args, ok := e.arena.alloc(TypeTuple)
	if !ok {
		return RunResultOutOfDataMemory
	}
	if res := e.bindSystemSymbol(SystemArgumentsSymbol, args); res != RunResultOK {
		return res
	}

	versionStr, res := e.newStringFromBytes([]byte(EngineVersion))
	if res != RunResultOK {
		return res
	}
	return e.bindSystemName("version", versionStr)
}

// bindSystemSymbol binds value to a fixed reserved symbol in the system
// namespace, taking ownership of the caller's reference to value.
func (e *Engine) bindSystemSymbol(symbol int32, value Index) RunResult {
	if _, res := e.treeTryInsertBySymbol(e.systemNamespace, symbol, value); res != RunResultOK {
		return res
	}
	e.unref(value)
	return RunResultOK
}

// bindSystemName interns name as a symbol and binds it to value in the
// system namespace, taking ownership of the caller's reference to value.
func (e *Engine) bindSystemName(name string, value Index) RunResult {
	return e.bindSystemSymbol(e.internSymbol(name), value)
}

// registerSystemExit binds sys.exit to an application-flagged Function
// object whose symbol is the reserved SystemExitSymbol. CALL recognizes
// that symbol before consulting the host dispatch callback and executes
// it in-engine, so exit works even when the host installed no
// HostDispatch.
func (e *Engine) registerSystemExit() RunResult {
	codeSymbol := e.internSymbol("code")

	param, ok := e.arena.alloc(TypeParameter)
	if !ok {
		return RunResultOutOfDataMemory
	}
	e.arena.at(param).w0 = codeSymbol

	params, ok := e.arena.alloc(TypeParameterList)
	if !ok {
		return RunResultOutOfDataMemory
	}
	if _, res := e.sequenceAppend(params, param); res != RunResultOK {
		return res
	}
	e.unref(param)

	fn, ok := e.arena.alloc(TypeFunction)
	if !ok {
		return RunResultOutOfDataMemory
	}
	fe := e.arena.at(fn)
	fe.bit0 = true
	fe.w0 = SystemExitSymbol
	e.ref(e.module)
	fe.setIdx(1, e.module)
	fe.setIdx(2, params)

	return e.bindSystemSymbol(SystemExitSymbol, fn)
}

// namespaceOf returns a Module object's namespace index.
func (e *Engine) namespaceOf(module Index) Index {
	return e.arena.at(module).idx(1)
}

// fail records result as the engine's sticky run result and moves the
// engine to an error state appropriate to when the failure occurred.
func (e *Engine) fail(result RunResult) RunResult {
	e.runResult = result
	if e.state == StateRunning {
		e.state = StateRunError
	} else {
		e.state = StateLoadError
	}
	return result
}

// Error returns an *EngineError describing the engine's current sticky
// result and program counter, or nil if the result is OK.
func (e *Engine) Error() error {
	if e.runResult == RunResultOK {
		return nil
	}
	return NewEngineError(e.runResult, e.pc)
}

func (e *Engine) String() string {
	return fmt.Sprintf("Engine{state=%s, pc=%d, result=%s}", e.state, e.pc, e.runResult)
}
