package asp

import (
	"encoding/binary"
	"fmt"
	"math"
)

// AppSpec describes the functions a host application exposes to script
// code: the CALL opcode consults it to validate argument binding before
// invoking the host's dispatch callback. Parsing the plain-text ".aspec"
// symbol name table is the job of the appspec subpackage; AppSpec is the
// in-memory form Initialize consumes to build those functions, and
// Functions is ordinarily produced by ParseAppFunctionTable rather than
// constructed by hand.
type AppSpec struct {
	CRC       uint32
	Functions []AppFunction
}

// AppFunction is one entry of an AppSpec: a parameter list the engine
// binds CALL's arguments against before reentering the host, plus the
// symbol the compiled image's MEM/MEMA opcodes reference it by.
//
// Symbol is left zero until Initialize runs; it interns each function's
// Name to obtain its symbol (rather than reading a symbol out of the
// binary table) and writes the result back
// here so a host's HostDispatch can look itself up by name afterward
// with FindFunction.
type AppFunction struct {
	Symbol     int32
	Name       string
	Parameters []AppParameter
}

// AppParameter mirrors a single declared parameter of an AppFunction.
// Symbol is read directly out of the binary function table: unlike a
// function's own symbol, a parameter's symbol is not reassigned, since
// application parameter names share the same symbol space a host binds
// via SetGlobal/InternSymbol and a compiler's .aspec file enumerates
// directly.
type AppParameter struct {
	Symbol     int32
	HasDefault bool
	IsGroup    bool
	Default    AppDefaultValue
}

// AppDefaultValueKind tags which field of AppDefaultValue, if any, holds
// a parameter's default.
type AppDefaultValueKind uint8

const (
	AppDefaultNone AppDefaultValueKind = iota
	AppDefaultEllipsis
	AppDefaultBoolean
	AppDefaultInteger
	AppDefaultFloat
	AppDefaultString
)

// AppDefaultValue is the decoded form of one parameter's default, read
// from the typed value that follows a HAS_DEFAULT parameter spec in the
// function table.
type AppDefaultValue struct {
	Kind   AppDefaultValueKind
	Bool   bool
	Int    int32
	Float  float64
	String []byte
}

// FindFunction looks up a function by symbol, returning ok=false if the
// app spec declares nothing under that symbol.
func (s *AppSpec) FindFunction(symbol int32) (AppFunction, bool) {
	if s == nil {
		return AppFunction{}, false
	}
	for _, f := range s.Functions {
		if f.Symbol == symbol {
			return f, true
		}
	}
	return AppFunction{}, false
}

// Bit layout of a parameter spec word, matching
// original_source/engine/function.c's ParameterSpecMask/
// ParameterFlag_HasDefault/ParameterFlag_IsGroup exactly.
const (
	parameterSpecMask       uint32 = 0x0FFFFFFF
	parameterFlagHasDefault uint32 = 0x10000000
	parameterFlagIsGroup    uint32 = 0x20000000
)

// Default-value type tags, matching function.c's
// ParameterDefaultValueType enum.
const (
	defaultValueTypeNone = iota
	defaultValueTypeEllipsis
	defaultValueTypeBoolean
	defaultValueTypeInteger
	defaultValueTypeFloat
	defaultValueTypeString
)

// ParseAppFunctionTable decodes the application spec's binary function
// table: a sequence of function records, each a 1-byte parameter count
// followed by that many 4-byte big-endian parameter specs (low 28 bits
// a symbol, bit 28 HAS_DEFAULT, bit 29 IS_GROUP), each optionally
// followed by a typed default value. The table carries no function
// names or symbols of its own: the names slice (ordinarily the
// function-name prefix of an appspec.Spec's Names, in the same order)
// supplies each function's Name. Parsing accepts a names slice shorter
// than the function count, or nil, and leaves the remaining Names
// empty; Initialize interns each Name as the function's symbol and
// fails with RunResultInitializationError on an empty one.
//
// function.c's float case is read and written in the host's native
// byte order with a runtime endian probe; that has no meaning for a
// binary spec meant to be portable across hosts, so this parser fixes
// the wire format to big-endian instead (see DESIGN.md).
func ParseAppFunctionTable(raw []byte, names []string) ([]AppFunction, error) {
	var functions []AppFunction
	i := 0
	for i < len(raw) {
		parameterCount := int(raw[i])
		i++

		fn := AppFunction{Parameters: make([]AppParameter, 0, parameterCount)}
		if n := len(functions); n < len(names) {
			fn.Name = names[n]
		}

		for p := 0; p < parameterCount; p++ {
			if i+4 > len(raw) {
				return nil, fmt.Errorf("asp: appspec function table: truncated parameter spec")
			}
			spec := binary.BigEndian.Uint32(raw[i:])
			i += 4

			param := AppParameter{
				Symbol:  int32(spec & parameterSpecMask),
				IsGroup: spec&parameterFlagIsGroup != 0,
			}
			param.HasDefault = spec&parameterFlagHasDefault != 0
			if param.HasDefault {
				def, n, err := parseAppDefaultValue(raw[i:])
				if err != nil {
					return nil, err
				}
				param.Default = def
				i += n
			}
			fn.Parameters = append(fn.Parameters, param)
		}

		functions = append(functions, fn)
	}
	return functions, nil
}

// parseAppDefaultValue decodes one typed default value starting at
// raw[0], returning the value and the number of bytes it occupied.
func parseAppDefaultValue(raw []byte) (AppDefaultValue, int, error) {
	if len(raw) < 1 {
		return AppDefaultValue{}, 0, fmt.Errorf("asp: appspec function table: truncated default-value type")
	}
	switch raw[0] {
	case defaultValueTypeNone:
		return AppDefaultValue{Kind: AppDefaultNone}, 1, nil

	case defaultValueTypeEllipsis:
		return AppDefaultValue{Kind: AppDefaultEllipsis}, 1, nil

	case defaultValueTypeBoolean:
		if len(raw) < 2 {
			return AppDefaultValue{}, 0, fmt.Errorf("asp: appspec function table: truncated boolean default")
		}
		return AppDefaultValue{Kind: AppDefaultBoolean, Bool: raw[1] != 0}, 2, nil

	case defaultValueTypeInteger:
		if len(raw) < 5 {
			return AppDefaultValue{}, 0, fmt.Errorf("asp: appspec function table: truncated integer default")
		}
		v := int32(binary.BigEndian.Uint32(raw[1:5]))
		return AppDefaultValue{Kind: AppDefaultInteger, Int: v}, 5, nil

	case defaultValueTypeFloat:
		if len(raw) < 9 {
			return AppDefaultValue{}, 0, fmt.Errorf("asp: appspec function table: truncated float default")
		}
		v := math.Float64frombits(binary.BigEndian.Uint64(raw[1:9]))
		return AppDefaultValue{Kind: AppDefaultFloat, Float: v}, 9, nil

	case defaultValueTypeString:
		if len(raw) < 5 {
			return AppDefaultValue{}, 0, fmt.Errorf("asp: appspec function table: truncated string default length")
		}
		size := binary.BigEndian.Uint32(raw[1:5])
		if uint32(len(raw)-5) < size {
			return AppDefaultValue{}, 0, fmt.Errorf("asp: appspec function table: truncated string default")
		}
		s := make([]byte, size)
		copy(s, raw[5:5+size])
		return AppDefaultValue{Kind: AppDefaultString, String: s}, int(5 + size), nil

	default:
		return AppDefaultValue{}, 0, fmt.Errorf("asp: appspec function table: unknown default-value type %d", raw[0])
	}
}

// registerAppFunctions builds a Function object for every entry of
// e.appSpec.Functions and binds it into the system namespace, the way
// AspInitializeAppFunctions populates engine->systemNamespace from
// engine->appSpec before any code runs. Called once from Initialize; a
// nil appSpec or one with no Functions is a no-op.
func (e *Engine) registerAppFunctions() RunResult {
	if e.appSpec == nil {
		return RunResultOK
	}
	for i := range e.appSpec.Functions {
		fn := &e.appSpec.Functions[i]
		if fn.Name == "" {
			return RunResultInitializationError
		}

		params, ok := e.arena.alloc(TypeParameterList)
		if !ok {
			return RunResultOutOfDataMemory
		}
		if res := e.buildAppParameters(params, fn.Parameters); res != RunResultOK {
			e.unref(params)
			return res
		}

		symbol := e.internSymbol(fn.Name)

		fnIdx, ok := e.arena.alloc(TypeFunction)
		if !ok {
			e.unref(params)
			return RunResultOutOfDataMemory
		}
		fe := e.arena.at(fnIdx)
		fe.bit0 = true
		fe.w0 = symbol
		e.ref(e.module)
		fe.setIdx(1, e.module)
		fe.setIdx(2, params)

		insertResult, res := e.treeTryInsertBySymbol(e.systemNamespace, symbol, fnIdx)
		if res != RunResultOK {
			e.unref(fnIdx)
			return res
		}
		if !insertResult.Inserted {
			e.unref(fnIdx)
			return RunResultInitializationError
		}
		e.unref(fnIdx)

		fn.Symbol = symbol
	}
	return RunResultOK
}

// buildAppParameters appends one Parameter cell per entry of specs to
// the (already allocated, empty) ParameterList params.
func (e *Engine) buildAppParameters(params Index, specs []AppParameter) RunResult {
	for _, spec := range specs {
		p, ok := e.arena.alloc(TypeParameter)
		if !ok {
			return RunResultOutOfDataMemory
		}
		pe := e.arena.at(p)
		pe.w0 = spec.Symbol
		pe.bit1 = spec.IsGroup

		if spec.HasDefault {
			def, res := e.newAppDefaultValue(spec.Default)
			if res != RunResultOK {
				e.unref(p)
				return res
			}
			pe.bit0 = true
			pe.setIdx(1, def)
		}

		_, res := e.sequenceAppend(params, p)
		e.unref(p)
		if res != RunResultOK {
			return res
		}
	}
	return RunResultOK
}

// newAppDefaultValue allocates the arena object a parameter's decoded
// default value describes.
func (e *Engine) newAppDefaultValue(def AppDefaultValue) (Index, RunResult) {
	switch def.Kind {
	case AppDefaultNone:
		e.ref(NilIndex)
		return NilIndex, RunResultOK

	case AppDefaultEllipsis:
		idx, ok := e.arena.alloc(TypeEllipsis)
		if !ok {
			return NilIndex, RunResultOutOfDataMemory
		}
		return idx, RunResultOK

	case AppDefaultBoolean:
		return e.newBool(def.Bool)

	case AppDefaultInteger:
		return e.newInt(def.Int)

	case AppDefaultFloat:
		return e.newFloat(def.Float)

	case AppDefaultString:
		return e.newStringFromBytes(def.String)

	default:
		return NilIndex, RunResultInitializationError
	}
}
