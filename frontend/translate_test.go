package frontend

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ibex-analyzer/ibex/analysis/cfg"
	"github.com/ibex-analyzer/ibex/analysis/diff"
)

const sampleSource = `package main

var counter int

func add(a, b int) int {
	return a + b
}

func spin(n int) int {
	s := 0
	for i := 0; i < n; i++ {
		s = add(s, i)
	}
	counter = s
	return s
}

func main() {
	spin(10)
}
`

func writeSample(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module sample\n\ngo 1.21\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "main.go"), []byte(sampleSource), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func translateSample(t *testing.T) *cfg.Cfg {
	t.Helper()
	pkgs, err := LoadPackages(LoadConfig{Dir: writeSample(t)}, ".")
	if err != nil {
		t.Fatal(err)
	}
	prog, fns := BuildSSA(pkgs)
	if len(fns) == 0 {
		t.Fatal("no functions translated")
	}
	return Translate(prog, fns)
}

func TestTranslateWellFormed(t *testing.T) {
	c := translateSample(t)

	for _, name := range []string{"sample.add", "sample.spin", "sample.main"} {
		if _, ok := c.Proc(name); !ok {
			t.Errorf("missing procedure %s (have %v)", name, c.ProcNames())
		}
	}

	if err := cfg.ConnectednessError(c); err != nil {
		t.Errorf("translated CFG violates connectivity: %v", err)
	}

	// The loop in spin must be visible as a branch with prune nodes.
	spin := c.MustProc("sample.spin")
	prunes := 0
	for _, n := range spin.Nodes() {
		if n.Kind() == cfg.PruneNode {
			prunes++
		}
	}
	if prunes != 2 {
		t.Errorf("spin has %d prune nodes, want 2", prunes)
	}
}

func TestTranslationIsDeterministic(t *testing.T) {
	first := translateSample(t)
	second := translateSample(t)

	if first.NumProcs() != second.NumProcs() {
		t.Fatalf("procedure counts differ: %d vs %d", first.NumProcs(), second.NumProcs())
	}
	first.ForEach(func(p *cfg.Procdesc) {
		q := second.MustProc(p.Name())
		if !diff.ProcdescsEqual(p, q) {
			t.Errorf("re-translation of %s is not alpha-equivalent", p.Name())
		}
	})
}
