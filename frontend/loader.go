// Package frontend turns Go source into the analyzer's CFG representation:
// packages are loaded and built into SSA form, and each function's SSA body
// is translated into a Procdesc satisfying the connectivity invariants the
// engine relies on.
package frontend

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/tools/go/packages"
	"golang.org/x/tools/go/ssa"
	"golang.org/x/tools/go/ssa/ssautil"
)

// LoadConfig configures package loading.
type LoadConfig struct {
	// Dir is the directory the load runs in; empty means the current one.
	Dir string
	// IncludeTests also exposes test functions.
	IncludeTests bool
}

// loadMode sets all packages.Need* options required for SSA construction.
const loadMode packages.LoadMode = packages.NeedName | packages.NeedFiles | packages.NeedCompiledGoFiles |
	packages.NeedImports | packages.NeedTypes | packages.NeedTypesSizes | packages.NeedSyntax |
	packages.NeedTypesInfo | packages.NeedDeps

// cwd is captured at startup.
var cwd = func() string {
	if dir, err := os.Getwd(); err == nil {
		return dir
	}
	return ""
}()

// relativizingParseFile relativizes filenames against CWD so printed source
// locations are system agnostic, which golden tests rely on.
func relativizingParseFile(fset *token.FileSet, filename string, src []byte) (*ast.File, error) {
	if rel, err := filepath.Rel(cwd, filename); err == nil {
		filename = rel
	}
	const mode = parser.AllErrors | parser.ParseComments
	return parser.ParseFile(fset, filename, src, mode)
}

// LoadPackages loads the named package patterns.
func LoadPackages(cfg LoadConfig, patterns ...string) ([]*packages.Package, error) {
	config := &packages.Config{
		Mode:      loadMode,
		Dir:       cfg.Dir,
		Tests:     cfg.IncludeTests,
		ParseFile: relativizingParseFile,
	}
	pkgs, err := packages.Load(config, patterns...)
	if err != nil {
		return nil, fmt.Errorf("loading %v: %w", patterns, err)
	}
	if n := packages.PrintErrors(pkgs); n > 0 {
		return nil, fmt.Errorf("%d errors while loading %v", n, patterns)
	}
	if len(pkgs) == 0 {
		return nil, fmt.Errorf("no packages matched %v", patterns)
	}
	return pkgs, nil
}

// BuildSSA builds the SSA form of the loaded packages and returns the
// program together with its source-ordered functions.
func BuildSSA(pkgs []*packages.Package) (*ssa.Program, []*ssa.Function) {
	prog, _ := ssautil.AllPackages(pkgs, ssa.SanityCheckFunctions)
	prog.Build()

	var fns []*ssa.Function
	for fn := range ssautil.AllFunctions(prog) {
		if fn.Pkg == nil || fn.Parent() != nil {
			// Anonymous functions are translated with their parent.
			continue
		}
		if !isLocal(pkgs, fn) {
			continue
		}
		fns = append(fns, fn)
	}
	// AllFunctions iterates a map; sort for a stable translation order.
	sort.Slice(fns, func(i, j int) bool { return fns[i].String() < fns[j].String() })
	return prog, fns
}

func isLocal(pkgs []*packages.Package, fn *ssa.Function) bool {
	for _, pkg := range pkgs {
		if fn.Pkg.Pkg == pkg.Types {
			return true
		}
	}
	return false
}
