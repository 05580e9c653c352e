package asp

import "github.com/asplang/asp-sub000/internal/asp/appspec"

// This file is the surface a host embedding the engine actually touches:
// value constructors and accessors for building/reading script data from
// Go, symbol and global binding for wiring up names before Run, and the
// LoadAppSpec helper that ties a parsed .aspec file to a fresh Engine so
// compiler-assigned and host-assigned symbol numbers agree.
//
// HostDispatch implementations receive an Index for each bound argument
// and the local namespace; they read values with the Value/Type family
// below, possibly allocate a result with one of the New* constructors,
// and store it through returnValue — see the HostDispatch doc comment in
// engine.go for the exact ownership contract.

// Type reports the data type of v.
func (e *Engine) Type(v Index) DataType {
	return e.arena.at(v).typ
}

// NewBoolean allocates a fresh Boolean. Host code returning a shared
// constant should prefer Ref on one it already holds over allocating a
// new cell every call, but a fresh one is always safe.
func (e *Engine) NewBoolean(v bool) (Index, RunResult) {
	return e.newBool(v)
}

// NewInteger allocates a fresh Integer.
func (e *Engine) NewInteger(v int32) (Index, RunResult) {
	return e.newInt(v)
}

// NewFloat allocates a fresh Float.
func (e *Engine) NewFloat(v float64) (Index, RunResult) {
	return e.newFloat(v)
}

// NewString allocates a fresh String holding a copy of data.
func (e *Engine) NewString(data []byte) (Index, RunResult) {
	return e.newStringFromBytes(data)
}

// NewStringFromString is NewString for a Go string argument.
func (e *Engine) NewStringFromString(s string) (Index, RunResult) {
	return e.newStringFromBytes([]byte(s))
}

// None returns the engine's shared None object, ref'd for the caller —
// equivalent to what PUSHN pushes.
func (e *Engine) None() Index {
	e.ref(NilIndex)
	return NilIndex
}

// BooleanValue reads a Boolean cell's value.
func (e *Engine) BooleanValue(v Index) (bool, RunResult) {
	if e.Type(v) != TypeBoolean {
		return false, RunResultUnexpectedType
	}
	return e.arena.at(v).w0 != 0, RunResultOK
}

// IntegerValue reads an Integer (or Boolean, coerced 0/1) cell's value.
func (e *Engine) IntegerValue(v Index) (int32, RunResult) {
	t := e.Type(v)
	if t != TypeInteger && t != TypeBoolean {
		return 0, RunResultUnexpectedType
	}
	return e.arena.at(v).w0, RunResultOK
}

// FloatValue reads a Float cell's value.
func (e *Engine) FloatValue(v Index) (float64, RunResult) {
	if e.Type(v) != TypeFloat {
		return 0, RunResultUnexpectedType
	}
	return asFloat64(e.arena.at(v)), RunResultOK
}

// StringValue materializes a String cell's bytes.
func (e *Engine) StringValue(v Index) ([]byte, RunResult) {
	if e.Type(v) != TypeString {
		return nil, RunResultUnexpectedType
	}
	return e.stringBytes(v), RunResultOK
}

// IsTrue reports v's truthiness per the engine's rule (the same test
// LNOT/JMPF/JMPT/LOR/LAND apply).
func (e *Engine) IsTrue(v Index) bool {
	return e.isTrue(v)
}

// Ref increments v's use count; call before handing out a second
// independent owner of a value the caller already holds (e.g. binding
// the same object under two names).
func (e *Engine) Ref(v Index) {
	e.ref(v)
}

// Unref releases the caller's reference to v, tearing it down (and,
// recursively, anything it solely owned) once no references remain.
func (e *Engine) Unref(v Index) RunResult {
	return e.unref(v)
}

// Argument looks up a parameter bound under name in the namespace a
// HostDispatch call receives, returning RunResultNameNotFound if the
// function's signature has no such parameter. The returned value is not
// ref'd for the caller — it is read, not taken — ref it before storing
// it somewhere that outlives the dispatch call.
func (e *Engine) Argument(ns Index, name string) (Index, RunResult) {
	node, res := e.findSymbol(ns, e.internSymbol(name))
	if res != RunResultOK {
		return NilIndex, res
	}
	if node == NilIndex {
		return NilIndex, RunResultNameNotFound
	}
	return e.arena.nodeValue(node), RunResultOK
}

// SetGlobal binds name to value in the engine's top-level (module)
// namespace, taking ownership of the caller's reference to value. Call
// after Seal and before the first Step, mirroring how the reference
// engine lets a host pre-populate globals ahead of running script code.
func (e *Engine) SetGlobal(name string, value Index) RunResult {
	if e.state != StateReady {
		e.unref(value)
		return RunResultInvalidState
	}
	symbol := e.internSymbol(name)
	if _, res := e.treeTryInsertBySymbol(e.globalNamespace, symbol, value); res != RunResultOK {
		e.unref(value)
		return res
	}
	return e.unref(value)
}

// GetGlobal reads name from the engine's top-level namespace, without
// ref'ing the result for the caller.
func (e *Engine) GetGlobal(name string) (Index, RunResult) {
	node, res := e.findSymbol(e.globalNamespace, e.internSymbol(name))
	if res != RunResultOK {
		return NilIndex, res
	}
	if node == NilIndex {
		return NilIndex, RunResultNameNotFound
	}
	return e.arena.nodeValue(node), RunResultOK
}

// InternSymbol assigns (or looks up) the small integer symbol a name
// maps to. A host loading a .aspec file calls this, in the file's
// declared order, before AddCode so the engine's symbol numbering lines
// up with the numbering the compiler baked into the bytecode — see
// LoadAppSpec, which does exactly that.
func (e *Engine) InternSymbol(name string) int32 {
	return e.internSymbol(name)
}

// LoadAppSpec pre-interns every name a parsed .aspec file declares, in
// file order, and returns an AppSpec carrying its check value for
// Initialize/AddCode's header validation. Call this after Initialize and
// before the first AddCode; if the AppSpec also carries a parsed
// function table (see ParseAppFunctionTable and WithAppSpec), Initialize
// will already have interned each function's name identically, so
// re-interning it here is a no-op that just confirms agreement with the
// compiler's own symbol numbering.
func (e *Engine) LoadAppSpec(spec *appspec.Spec) *AppSpec {
	for _, name := range spec.Names {
		e.internSymbol(name)
	}
	return &AppSpec{CRC: spec.CheckValue}
}
