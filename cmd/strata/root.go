package main

import (
	"fmt"
	"os"

	"github.com/chazu/strata"
	"github.com/chazu/strata/pkg/engine"
	"github.com/chazu/strata/pkg/surface"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// SubCommand pairs a cobra command with its own viper configuration.
type SubCommand struct {
	Cmd  *cobra.Command
	Conf *viper.Viper

	EnvPrefix string
}

// RootCmd is the base command when called without any subcommands.
var RootCmd = &cobra.Command{
	Use:   "strata",
	Short: "Spatial facts from scene descriptions",
	Long: `
strata evaluates a scene written in its Lisp dialect and reports where each
body sits, which bodies hold which, and where objects can be placed.
`,
	SilenceUsage: true,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	RootCmd.PersistentFlags().String("thresholds", "",
		"YAML file overriding the support surface thresholds.")
	RootCmd.PersistentFlags().String("mesh_dir", "",
		"Directory the scene may load STL meshes from. Mesh loading is off when empty.")
	RootCmd.PersistentFlags().Duration("timeout", engine.EvalTimeout,
		"Hard limit for evaluating a scene.")
	RootCmd.PersistentFlags().String("log_level", "warn",
		"Log level, one of [debug, info, warn, error].")

	for _, sc := range []*SubCommand{&Analyze, &Sample} {
		RootCmd.AddCommand(sc.Cmd)
		sc.Conf = viper.New()
		if err := sc.Conf.BindPFlags(sc.Cmd.Flags()); err != nil {
			panic(err)
		}
		if err := sc.Conf.BindPFlags(RootCmd.PersistentFlags()); err != nil {
			panic(err)
		}
		sc.Conf.SetEnvPrefix(sc.EnvPrefix)
		sc.Conf.AutomaticEnv()
	}
}

// newLogger writes JSON logs to stderr at the configured level.
func newLogger(conf *viper.Viper) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(conf.GetString("log_level"))
	if err != nil {
		return nil, errors.Wrap(err, "log_level")
	}
	core := zapcore.NewCore(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		zapcore.Lock(os.Stderr), level)
	return zap.New(core), nil
}

// newAnalyzer builds an Analyzer from the shared flags.
func newAnalyzer(conf *viper.Viper, logger *zap.Logger) (*strata.Analyzer, error) {
	th := surface.DefaultThresholds()
	if path := conf.GetString("thresholds"); path != "" {
		var err error
		if th, err = surface.LoadThresholdsFile(path); err != nil {
			return nil, err
		}
	}
	return strata.NewAnalyzer(
		strata.WithLogger(logger),
		strata.WithThresholds(th),
		strata.WithEngineOptions(
			engine.WithMeshDir(conf.GetString("mesh_dir")),
			engine.WithTimeout(conf.GetDuration("timeout")),
		),
	), nil
}

func readScene(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Wrapf(err, "reading scene %s", path)
	}
	return string(b), nil
}
