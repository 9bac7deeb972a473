// Package engine produces and replays database dump artifacts. One Dumper
// implementation exists per database engine; the server selects one at
// startup based on configuration and uses it for every backup and restore.
package engine

import (
	"context"
	"fmt"

	"github.com/jmartens/shopvault/internal/core/domain"
)

const (
	EngineSQLite = "sqlite"
	EngineMySQL  = "mysql"
)

// DumpOptions carries per-run parameters. Settings supplies connection
// details and binary paths and may change between runs.
type DumpOptions struct {
	Settings *domain.Settings
	// OutputPath is the target file without the .gz suffix. The dumper
	// appends .gz itself when Compress is set.
	OutputPath string
	Compress   bool
}

type DumpResult struct {
	Path string
	Size int64
}

type RestoreOptions struct {
	Settings *domain.Settings
	// InputPath may end in .gz, in which case the dumper decompresses
	// transparently.
	InputPath string
}

// Dumper dumps and restores one database engine.
type Dumper interface {
	Name() string
	Dump(ctx context.Context, opts DumpOptions) (*DumpResult, error)
	Restore(ctx context.Context, opts RestoreOptions) error
}

// ForEngine returns the Dumper for the configured engine name.
func ForEngine(name string) (Dumper, error) {
	switch name {
	case EngineSQLite:
		return NewSQLiteDumper(), nil
	case EngineMySQL:
		return NewMySQLDumper(), nil
	default:
		return nil, fmt.Errorf("unknown database engine: %q", name)
	}
}
