// Package registry lists hardware boards from PlatformIO and from offline
// catalogs that mirror its board listing.
package registry

import (
	"context"
	"fmt"
	"sort"

	"github.com/hpungsan/boardgen/internal/boards"
	"github.com/hpungsan/boardgen/internal/errors"
)

// Registry lists every board it knows, in its native order.
type Registry interface {
	ListBoards(ctx context.Context) ([]boards.Record, error)
}

// Source names accepted by Open.
const (
	SourcePIO       = "pio"
	SourceManifests = "manifests"
	SourceFixture   = "fixture"
	SourceSQLite    = "sqlite"
)

// Options configures Open.
type Options struct {
	// Location is the platforms directory, fixture file or catalog path.
	// It is ignored by the pio source.
	Location string
	// PIOCommand replaces the default "pio" command line.
	PIOCommand string
}

// Open returns the registry named by source.
func Open(source string, opts Options) (Registry, error) {
	switch source {
	case "", SourcePIO:
		p, err := NewPIO(opts.PIOCommand)
		if err != nil {
			return nil, err
		}
		return p, nil
	case SourceManifests:
		if opts.Location == "" {
			return nil, errors.NewInvalidRequest("manifests source requires a platforms directory")
		}
		return &ManifestDir{Dir: opts.Location}, nil
	case SourceFixture:
		if opts.Location == "" {
			return nil, errors.NewInvalidRequest("fixture source requires a file path")
		}
		return &Fixture{Path: opts.Location}, nil
	case SourceSQLite:
		if opts.Location == "" {
			return nil, errors.NewInvalidRequest("sqlite source requires a catalog path")
		}
		return &SQLite{Path: opts.Location}, nil
	default:
		return nil, errors.NewInvalidRequest(fmt.Sprintf("unknown source %q (want one of %v)", source, Sources()))
	}
}

// Sources returns the accepted source names, sorted.
func Sources() []string {
	names := []string{SourcePIO, SourceManifests, SourceFixture, SourceSQLite}
	sort.Strings(names)
	return names
}

// Static is a Registry over a fixed list of records.
type Static []boards.Record

// ListBoards returns a copy of the records.
func (s Static) ListBoards(_ context.Context) ([]boards.Record, error) {
	return append([]boards.Record(nil), s...), nil
}
