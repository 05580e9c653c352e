package cmd

import "go.uber.org/zap"

// newLogger builds a console zap logger at info level, or debug when
// --verbose is set — the same verbosity knob the teacher's own CLI
// exposes, wired to a real structured logger instead of fmt.Fprintf.
func newLogger() (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	if !verbose {
		cfg.Level.SetLevel(zap.InfoLevel)
	}
	cfg.DisableStacktrace = true
	return cfg.Build()
}
