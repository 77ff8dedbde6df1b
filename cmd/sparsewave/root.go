package main

import (
	"fmt"

	"github.com/joeydtaylor/sparsewave/pkg/builder"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// viperKeyAnnotation marks a flag with the configuration key it overrides.
const viperKeyAnnotation = "sparsewave_viper_key"

type app struct {
	configFile string
	cfg        *builder.Config
	logger     builder.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "sparsewave",
		Short: "Sparse spectral streaming over a constrained link",
		Long: `sparsewave streams a sampled signal to a device that returns only the
significant coefficients of each window's spectrum, reconstructs the signal
on the host, and estimates what a given significance threshold costs.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Flush()
			}
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configFile, "config", "", "YAML config file (values are overridden by SPARSEWAVE_* env and flags)")
	pf.String("log-level", "info", "log level (debug, info, warn, error)")
	pf.String("log-file", "", "also write JSON logs to this file")
	annotate(pf, map[string]string{
		"log-level": "log_level",
		"log-file":  "log_file",
	})

	root.AddCommand(
		newStreamCmd(a),
		newAnalyzeCmd(a),
		newServeAnalysisCmd(a),
		newQueryCmd(a),
		newEmulateCmd(a),
		newRecordingsCmd(a),
		newConfigCmd(a),
	)
	return root
}

// annotate records which configuration key each named flag overrides. The
// keys are bound once the command that owns the flags is known.
func annotate(fs *pflag.FlagSet, keys map[string]string) {
	for name, key := range keys {
		if err := fs.SetAnnotation(name, viperKeyAnnotation, []string{key}); err != nil {
			panic(err)
		}
	}
}

func (a *app) init(cmd *cobra.Command) error {
	v, err := builder.NewConfigViper(a.configFile)
	if err != nil {
		return err
	}
	var bindErr error
	bind := func(f *pflag.Flag) {
		keys, ok := f.Annotations[viperKeyAnnotation]
		if !ok || len(keys) == 0 {
			return
		}
		if err := v.BindPFlag(keys[0], f); err != nil {
			bindErr = err
		}
	}
	cmd.Flags().VisitAll(bind)
	cmd.InheritedFlags().VisitAll(bind)
	if bindErr != nil {
		return bindErr
	}

	cfg, err := builder.LoadConfig(v)
	if err != nil {
		return err
	}
	a.cfg = cfg

	a.logger = builder.NewLogger(builder.LoggerWithLevel(cfg.LogLevel))
	if cfg.LogFile != "" {
		if err := a.logger.AddSink("file", builder.FileSinkConfig(cfg.LogFile, "")); err != nil {
			return fmt.Errorf("log file: %w", err)
		}
	}
	return nil
}
