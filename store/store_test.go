package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ibex-analyzer/ibex/analysis/cfg"
	"github.com/ibex-analyzer/ibex/analysis/diff"
)

func sampleCfg() *cfg.Cfg {
	loc := cfg.Location{File: "sample.x", Line: 2, Col: 1}
	gen := cfg.NewIdentGenerator()
	n, r := gen.Fresh("n"), gen.Fresh("r")

	pdesc := cfg.NewProcdesc(cfg.ProcAttributes{
		Name:      "sample.f",
		Loc:       loc,
		Formals:   []cfg.Formal{{Name: "n", Typ: cfg.IntTyp()}},
		Ret:       cfg.PtrTo(cfg.NamedTyp("sample.T")),
		IsDefined: true,
	})
	pdesc.AddNode(0, cfg.StartNode, loc)
	pdesc.AddNode(1, cfg.PruneNode, loc,
		cfg.Prune{Cond: cfg.BinOp{Op: "<", X: cfg.Var{ID: n}, Y: cfg.IntLit{Value: 10}}, TrueBranch: true, Loc: loc})
	pdesc.AddNode(2, cfg.StmtNode, loc,
		cfg.Call{Ret: r, Fn: "sample.g", Args: []cfg.Expr{cfg.Var{ID: n}, cfg.StrLit{Value: "tag"}}, Loc: loc},
		cfg.Store{Dst: cfg.Field{X: cfg.Var{ID: r}, Name: "count"}, Src: cfg.UnOp{Op: "-", X: cfg.Var{ID: n}}, Typ: cfg.IntTyp(), Loc: loc},
	)
	pdesc.AddNode(3, cfg.ExitNode, loc)
	pdesc.AddEdge(0, 1)
	pdesc.AddEdge(1, 2)
	pdesc.AddEdge(2, 3)
	pdesc.AddExnEdge(2, 3)

	c := cfg.New()
	c.AddProc(pdesc)
	return c
}

func TestCodecRoundTrip(t *testing.T) {
	original := sampleCfg()

	data, err := EncodeCfg(original)
	require.NoError(t, err)

	loaded, err := DecodeCfg(data)
	require.NoError(t, err)

	require.Equal(t, 1, loaded.NumProcs())
	p := loaded.MustProc("sample.f")
	require.True(t, diff.ProcdescsEqual(original.MustProc("sample.f"), p),
		"a decoded capture must be alpha-equivalent to the original")
	require.Equal(t, []cfg.NodeID{3}, p.MustNode(2).ExnSuccs())
	require.Equal(t, original.MustProc("sample.f").String(), p.String())
}

func TestBoltStoreLoad(t *testing.T) {
	s, err := OpenBolt(filepath.Join(t.TempDir(), "results.db"))
	require.NoError(t, err)
	defer s.Close()

	_, ok, err := s.Load("sample.x")
	require.NoError(t, err)
	require.False(t, ok, "a fresh database has no captures")

	c := sampleCfg()
	c.MustProc("sample.f").Attrs().Changed = true
	require.NoError(t, s.Store("sample.x", c))

	loaded, ok, err := s.Load("sample.x")
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, loaded.MustProc("sample.f").Attrs().Changed,
		"the changed mark is persisted with the attributes")

	attrs, ok, err := s.LoadAttrs("sample.x", "sample.f")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "sample.f", attrs.Name)
	require.True(t, attrs.Changed)
}

func TestProcLockerContention(t *testing.T) {
	dir := t.TempDir()

	a, err := NewProcLocker(dir)
	require.NoError(t, err)
	b, err := NewProcLocker(dir)
	require.NoError(t, err)

	require.NoError(t, a.Lock("pkg.f"))
	// Re-locking an already held procedure is a no-op.
	require.NoError(t, a.Lock("pkg.f"))

	err = b.Lock("pkg.f")
	var locked *ErrLocked
	require.ErrorAs(t, err, &locked)
	require.Equal(t, "pkg.f", locked.Proc)

	// A different procedure is free.
	require.NoError(t, b.Lock("pkg.g"))

	require.NoError(t, a.Unlock("pkg.f"))
	require.NoError(t, b.Lock("pkg.f"))
	require.NoError(t, b.UnlockAll())
}
