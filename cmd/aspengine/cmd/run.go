package cmd

import (
	"fmt"
	"os"

	"github.com/asplang/asp-sub000/internal/asp"
	"github.com/asplang/asp-sub000/internal/asp/appspec"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	runAppSpecPath  string
	runAppFuncsPath string
	runDataCapacity uint32
	runCycleLimit   uint32
	runTrace        bool
)

var runCmd = &cobra.Command{
	Use:   "run <image.aspe> [-- script args]",
	Short: "Load and run a compiled bytecode image",
	Long: `Run loads a compiled ".aspe" image into a fresh engine, optionally
validated against an application spec, and steps it to completion.

--appfuncs registers the app spec's declared functions in the engine's
system namespace so the image can call them, but this generic runner
installs no HostDispatch of its own: a call to one fails with
UndefinedAppFunction unless the embedding program wires one up.

Examples:
  aspengine run program.aspe
  aspengine run --appspec program.aspec program.aspe -- foo bar
  aspengine run --appspec program.aspec --appfuncs program.aspfn program.aspe
  aspengine run --trace program.aspe`,
	Args: cobra.MinimumNArgs(1),
	RunE: runImage,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runAppSpecPath, "appspec", "", "path to the program's .aspec file")
	runCmd.Flags().StringVar(&runAppFuncsPath, "appfuncs", "", "path to the program's binary app-function table (requires --appspec)")
	runCmd.Flags().Uint32Var(&runDataCapacity, "data", 1<<16, "data arena capacity, in cells")
	runCmd.Flags().Uint32Var(&runCycleLimit, "cycle-limit", 0, "bounded-iteration cap (0 uses the engine default)")
	runCmd.Flags().BoolVar(&runTrace, "trace", false, "log one structured entry per opcode step")
}

func runImage(cmd *cobra.Command, args []string) error {
	imagePath := args[0]
	scriptArgs := args[1:]

	logger, err := newLogger()
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer logger.Sync()

	image, err := os.ReadFile(imagePath)
	if err != nil {
		return fmt.Errorf("reading image: %w", err)
	}

	opts := []asp.Option{}
	if runCycleLimit > 0 {
		opts = append(opts, asp.WithCycleLimit(runCycleLimit))
	}

	if runAppFuncsPath != "" && runAppSpecPath == "" {
		return fmt.Errorf("--appfuncs requires --appspec")
	}

	var spec *appspec.Spec
	if runAppSpecPath != "" {
		f, err := os.Open(runAppSpecPath)
		if err != nil {
			return fmt.Errorf("opening appspec: %w", err)
		}
		spec, err = appspec.Read(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("reading appspec: %w", err)
		}

		appSpec := &asp.AppSpec{CRC: spec.CheckValue}
		if runAppFuncsPath != "" {
			raw, err := os.ReadFile(runAppFuncsPath)
			if err != nil {
				return fmt.Errorf("reading appfuncs: %w", err)
			}
			functions, err := asp.ParseAppFunctionTable(raw, spec.Names)
			if err != nil {
				return fmt.Errorf("parsing appfuncs: %w", err)
			}
			appSpec.Functions = functions
			logger.Info("appfuncs loaded", zap.Int("functions", len(functions)))
		}
		opts = append(opts, asp.WithAppSpec(appSpec))
	}

	engine := asp.NewEngine(runDataCapacity, opts...)

	if res := engine.Initialize(); res != asp.RunResultOK {
		return fmt.Errorf("initializing engine: %s", res)
	}
	logger.Info("engine initialized", zap.Uint32("data_capacity", runDataCapacity))

	if spec != nil {
		engine.LoadAppSpec(spec)
		logger.Info("appspec loaded", zap.Int("names", len(spec.Names)), zap.Uint32("check_value", spec.CheckValue))
	}

	if res := engine.AddCode(image); res != asp.RunResultOK {
		return fmt.Errorf("loading code: %s", res)
	}
	if res := engine.Seal(); res != asp.RunResultOK {
		return fmt.Errorf("sealing engine: %s", res)
	}
	logger.Info("engine sealed", zap.String("image", imagePath))

	if res := engine.SetArguments(scriptArgs); res != asp.RunResultOK {
		return fmt.Errorf("setting arguments: %s", res)
	}

	for {
		if runTrace {
			logger.Info("step",
				zap.Uint32("pc", engine.ProgramCounter()),
				zap.Uint32("free", engine.FreeCount()))
		}
		res := engine.Step()
		if res == asp.RunResultOK {
			continue
		}
		if res == asp.RunResultComplete {
			logger.Info("run complete", zap.Uint32("low_free", engine.LowFreeCount()))
			return nil
		}
		logger.Error("run failed", zap.String("result", res.String()), zap.Uint32("pc", engine.ProgramCounter()))
		return engine.Error()
	}
}
