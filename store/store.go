// Package store is the persistence boundary of the analysis core: prior CFG
// captures are loaded for the incremental diff, and fresh captures stored
// after diffing. The package also provides the per-procedure advisory file
// locks that serialize workers across processes.
package store

import (
	"github.com/ibex-analyzer/ibex/analysis/cfg"
)

// Loader fetches the previously stored capture of a source file. The
// boolean is false when no capture exists, which is a normal outcome for a
// first run, not an error.
type Loader interface {
	Load(sourceFile string) (*cfg.Cfg, bool, error)
}

// Storer persists a capture. Implementations must flush every procedure's
// attribute record before the CFG itself: downstream consumers treat "CFG
// present" as a barrier meaning the attributes are durably written.
type Storer interface {
	Store(sourceFile string, c *cfg.Cfg) error
}
