package main

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ibex-analyzer/ibex/analysis/absint"
	"github.com/ibex-analyzer/ibex/analysis/cfg"
	"github.com/ibex-analyzer/ibex/analysis/diff"
	"github.com/ibex-analyzer/ibex/analysis/livevars"
	"github.com/ibex-analyzer/ibex/analysis/proccfg"
	"github.com/ibex-analyzer/ibex/config"
	"github.com/ibex-analyzer/ibex/frontend"
	"github.com/ibex-analyzer/ibex/store"
)

// pipeline wires the stages of one run: translate source to a capture,
// check it, diff it against the stored prior capture, analyze the changed
// procedures and persist the fresh capture.
type pipeline struct {
	conf   *config.Config
	log    zerolog.Logger
	db     *store.BoltStore
	locker *store.ProcLocker
}

func newPipeline(conf *config.Config, log zerolog.Logger) (*pipeline, error) {
	db, err := store.OpenBolt(filepath.Join(conf.ResultsDir, "results.db"))
	if err != nil {
		return nil, err
	}
	locker, err := store.NewProcLocker(filepath.Join(conf.ResultsDir, "locks"))
	if err != nil {
		db.Close()
		return nil, err
	}
	return &pipeline{conf: conf, log: log, db: db, locker: locker}, nil
}

func (p *pipeline) close() {
	if err := p.locker.UnlockAll(); err != nil {
		p.log.Warn().Err(err).Msg("releasing procedure locks")
	}
	if err := p.db.Close(); err != nil {
		p.log.Warn().Err(err).Msg("closing results database")
	}
}

// capture translates the given package patterns into a CFG capture and
// returns it with the key it is stored under.
func (p *pipeline) capture(dir string, patterns []string) (*cfg.Cfg, string, error) {
	p.log.Info().Strs("patterns", patterns).Msg("loading packages")
	pkgs, err := frontend.LoadPackages(frontend.LoadConfig{Dir: dir}, patterns...)
	if err != nil {
		return nil, "", err
	}

	prog, fns := frontend.BuildSSA(pkgs)
	p.log.Info().Int("functions", len(fns)).Msg("translating to CFG")
	capture := frontend.Translate(prog, fns)

	cfg.CheckConnectedness(capture, p.conf.PermissiveCfg)

	key := pkgs[0].PkgPath
	if len(patterns) > 1 {
		key = strings.Join(patterns, " ")
	}
	return capture, key, nil
}

// diffPrior marks the changed procedures of a capture against the stored
// prior one. With no prior capture everything is changed.
func (p *pipeline) diffPrior(key string, capture *cfg.Cfg) ([]string, error) {
	prior, ok, err := p.db.Load(key)
	if err != nil {
		return nil, err
	}
	if !ok {
		p.log.Info().Str("key", key).Msg("no prior capture, analyzing everything")
	}
	changed := diff.MarkChanged(capture, prior)
	p.log.Info().
		Int("procedures", capture.NumProcs()).
		Int("changed", len(changed)).
		Msg("incremental diff done")
	return changed, nil
}

// analyzeChanged runs the built-in liveness analysis over every changed
// procedure, taking the per-procedure lock first. Locked procedures and
// budget-exhausted runs are counted, not fatal.
func (p *pipeline) analyzeChanged(capture *cfg.Cfg, changed []string) *runMetrics {
	metrics := newRunMetrics(capture.NumProcs())
	metrics.skipped = capture.NumProcs() - len(changed)

	for _, name := range changed {
		pdesc := capture.MustProc(name)
		if !pdesc.Attrs().IsDefined {
			metrics.skipped++
			continue
		}

		if err := p.locker.Lock(name); err != nil {
			var locked *store.ErrLocked
			if errors.As(err, &locked) {
				p.log.Debug().Str("proc", locked.Proc).Msg("procedure locked by another worker")
				metrics.locked++
				continue
			}
			p.log.Error().Err(err).Str("proc", name).Msg("taking procedure lock")
			metrics.failed++
			continue
		}

		res, err := livevars.Analyze(pdesc, p.analysisOptions()...)
		if uerr := p.locker.Unlock(name); uerr != nil {
			p.log.Warn().Err(uerr).Str("proc", name).Msg("releasing procedure lock")
		}

		if err != nil {
			var exhausted *absint.BudgetExhaustedError
			if errors.As(err, &exhausted) {
				p.log.Warn().
					Str("proc", exhausted.Proc).
					Int("visits", exhausted.Spent).
					Msg("analysis budget exhausted")
				metrics.exhausted++
				continue
			}
			p.log.Error().Err(err).Str("proc", name).Msg("analysis failed")
			metrics.failed++
			continue
		}

		metrics.analyzed++
		p.logEntryLiveness(pdesc, res)
	}
	return metrics
}

func (p *pipeline) analysisOptions() []absint.Option[proccfg.InstrNode, livevars.State] {
	opts := []absint.Option[proccfg.InstrNode, livevars.State]{
		absint.WithWideningThreshold[proccfg.InstrNode, livevars.State](p.conf.WideningThreshold),
	}
	if p.conf.SymopBudget > 0 {
		opts = append(opts, absint.WithBudget[proccfg.InstrNode, livevars.State](
			absint.NewBudget(p.conf.SymopBudget)))
	}
	return opts
}

func (p *pipeline) logEntryLiveness(pdesc *cfg.Procdesc, res *livevars.Result) {
	live := livevars.LiveAfter(res, proccfg.InstrNode{Block: pdesc.Start()})
	p.log.Debug().
		Str("proc", pdesc.Name()).
		Str("live-at-entry", live.StringWith(cfg.Ident.String)).
		Msg("procedure analyzed")
}

// run executes the full pipeline for the given package patterns.
func (p *pipeline) run(dir string, patterns []string) error {
	capture, key, err := p.capture(dir, patterns)
	if err != nil {
		return err
	}
	changed, err := p.diffPrior(key, capture)
	if err != nil {
		return err
	}

	metrics := p.analyzeChanged(capture, changed)
	metrics.report(p.log)

	// The store call happens strictly after analysis: attribute records
	// first, then the capture acting as the durability barrier.
	if err := p.db.Store(key, capture); err != nil {
		return err
	}
	p.log.Info().Str("key", key).Msg("capture stored")
	return nil
}
