package asp

// Reserved symbols, fixed by the engine itself rather than assigned by a
// compiler: every compiled program is expected to agree with the engine
// on these four values.
const (
	SystemModuleSymbol     int32 = 0 // "sys"
	SystemArgumentsSymbol  int32 = 1 // "args"
	SystemExitSymbol       int32 = 2 // "exit"
	SystemMainModuleSymbol int32 = 3 // "__main__"

	// ScriptSymbolBase is the first symbol value a compiled program (or
	// an application spec's function table) may use for its own names.
	ScriptSymbolBase int32 = 4
)

const (
	systemModuleName     = "sys"
	systemArgumentsName  = "args"
	systemExitName       = "exit"
	systemMainModuleName = "__main__"
)
