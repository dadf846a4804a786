package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ibex-analyzer/ibex/analysis/cfg"
	"github.com/ibex-analyzer/ibex/config"
	"github.com/ibex-analyzer/ibex/frontend"
	"github.com/ibex-analyzer/ibex/utils"
)

var (
	flagConfig  string
	flagDir     string
	flagNoColor bool

	flagWideningThreshold int
	flagSymopBudget       int
	flagPermissiveCfg     bool
	flagResultsDir        string
	flagLogLevel          string
)

// applyFlagOverrides lays the command-line values over the loaded config,
// for every config flag the user set explicitly.
func applyFlagOverrides(conf *config.Config, changed func(flag string) bool) {
	if changed("widening-threshold") {
		conf.WideningThreshold = flagWideningThreshold
	}
	if changed("symop-budget") {
		conf.SymopBudget = flagSymopBudget
	}
	if changed("permissive-cfg") {
		conf.PermissiveCfg = flagPermissiveCfg
	}
	if changed("results-dir") {
		conf.ResultsDir = flagResultsDir
	}
	if changed("log-level") {
		conf.LogLevel = flagLogLevel
	}
}

// setup loads the configuration and prepares logging and colorization.
func setup(cmd *cobra.Command) (*config.Config, zerolog.Logger, error) {
	conf, err := config.Load(flagConfig)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	applyFlagOverrides(conf, cmd.Flags().Changed)
	if err := conf.Validate(); err != nil {
		return nil, zerolog.Nop(), err
	}
	utils.SetColorize(conf.Colorize && !flagNoColor)

	level, err := zerolog.ParseLevel(conf.LogLevel)
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("log-level: %w", err)
	}
	log := zerolog.New(zerolog.ConsoleWriter{
		Out:     os.Stderr,
		NoColor: flagNoColor || !conf.Colorize,
	}).Level(level).With().Timestamp().Logger()
	return conf, log, nil
}

// captureOnly runs the frontend stages without touching the results store.
func captureOnly(conf *config.Config, log zerolog.Logger, patterns []string) (*cfg.Cfg, error) {
	pkgs, err := frontend.LoadPackages(frontend.LoadConfig{Dir: flagDir}, patterns...)
	if err != nil {
		return nil, err
	}
	prog, fns := frontend.BuildSSA(pkgs)
	log.Info().Int("functions", len(fns)).Msg("translating to CFG")
	capture := frontend.Translate(prog, fns)
	cfg.CheckConnectedness(capture, conf.PermissiveCfg)
	return capture, nil
}

func analyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze [packages]",
		Short: "Translate, diff against the prior capture and analyze changed procedures",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, log, err := setup(cmd)
			if err != nil {
				return err
			}
			p, err := newPipeline(conf, log)
			if err != nil {
				return err
			}
			defer p.close()
			return p.run(flagDir, args)
		},
	}
}

func diffCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "diff [packages]",
		Short: "Report which procedures changed since the stored capture",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, log, err := setup(cmd)
			if err != nil {
				return err
			}
			p, err := newPipeline(conf, log)
			if err != nil {
				return err
			}
			defer p.close()

			capture, key, err := p.capture(flagDir, args)
			if err != nil {
				return err
			}
			changed, err := p.diffPrior(key, capture)
			if err != nil {
				return err
			}
			if len(changed) == 0 {
				fmt.Println("no procedures changed")
				return nil
			}
			for _, name := range changed {
				fmt.Println(name)
			}
			return nil
		},
	}
}

func printCmd() *cobra.Command {
	var proc string
	cmd := &cobra.Command{
		Use:   "print [packages]",
		Short: "Print the translated CFG in text form",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, log, err := setup(cmd)
			if err != nil {
				return err
			}
			capture, err := captureOnly(conf, log, args)
			if err != nil {
				return err
			}
			if proc != "" {
				pdesc, ok := capture.Proc(proc)
				if !ok {
					return fmt.Errorf("no procedure %q in %v", proc, capture.ProcNames())
				}
				fmt.Print(pdesc.String())
				return nil
			}
			fmt.Print(capture.String())
			return nil
		},
	}
	cmd.Flags().StringVar(&proc, "proc", "", "print only the named procedure")
	return cmd
}

func dotCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "dot [packages]",
		Short: "Visualize the translated CFG",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, log, err := setup(cmd)
			if err != nil {
				return err
			}
			capture, err := captureOnly(conf, log, args)
			if err != nil {
				return err
			}

			g := capture.Visualize()
			if strings.EqualFold(filepath.Ext(out), ".dot") {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer f.Close()
				return g.WriteDot(f)
			}
			format := strings.TrimPrefix(filepath.Ext(out), ".")
			if format == "" {
				format = "svg"
				out += ".svg"
			}
			return g.RenderFile(out, format)
		},
	}
	cmd.Flags().StringVar(&out, "out", "cfg.svg", "output file (.dot, .svg, .png, ...)")
	return cmd
}

func main() {
	root := &cobra.Command{
		Use:           "ibex",
		Short:         "ibex is an incremental abstract-interpretation analyzer for Go packages",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flagConfig, "config", "", "path to a yaml config file")
	root.PersistentFlags().StringVar(&flagDir, "dir", "", "directory to load packages from")
	root.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable colorized output")
	root.PersistentFlags().IntVar(&flagWideningThreshold, "widening-threshold", 0, "visit count beyond which joins widen (overrides the config)")
	root.PersistentFlags().IntVar(&flagSymopBudget, "symop-budget", 0, "per-procedure visit budget, 0 for unlimited (overrides the config)")
	root.PersistentFlags().BoolVar(&flagPermissiveCfg, "permissive-cfg", false, "skip the CFG connectivity check (overrides the config)")
	root.PersistentFlags().StringVar(&flagResultsDir, "results-dir", "", "results and lock directory (overrides the config)")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "zerolog level name (overrides the config)")

	root.AddCommand(analyzeCmd(), diffCmd(), printCmd(), dotCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "ibex:", err)
		os.Exit(1)
	}
}
