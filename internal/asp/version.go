package asp

// EngineVersion is the engine's self-reported version string, exposed
// to script code as sys.version.
const EngineVersion = "1.0.0"
