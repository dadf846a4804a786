package main

import (
	"testing"

	"github.com/ibex-analyzer/ibex/config"
)

func TestApplyFlagOverrides(t *testing.T) {
	conf := config.Default()
	flagWideningThreshold = 9
	flagSymopBudget = 1000
	flagLogLevel = "debug"

	set := map[string]bool{"widening-threshold": true, "symop-budget": true}
	applyFlagOverrides(conf, func(flag string) bool { return set[flag] })

	if conf.WideningThreshold != 9 {
		t.Errorf("widening-threshold = %d, want the flag value 9", conf.WideningThreshold)
	}
	if conf.SymopBudget != 1000 {
		t.Errorf("symop-budget = %d, want the flag value 1000", conf.SymopBudget)
	}
	// Flags left at their defaults must not clobber the config.
	if conf.LogLevel != "info" {
		t.Errorf("log-level = %q, want the config default", conf.LogLevel)
	}
	if conf.ResultsDir != "ibex-out" {
		t.Errorf("results-dir = %q, want the config default", conf.ResultsDir)
	}
}
