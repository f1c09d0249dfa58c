package registry

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"k8s.io/klog/v2"
	_ "modernc.org/sqlite"

	"github.com/hpungsan/boardgen/internal/boards"
	"github.com/hpungsan/boardgen/internal/errors"
)

// CatalogSchema is the table layout SQLite expects.
const CatalogSchema = `
CREATE TABLE IF NOT EXISTS boards (
  id   TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  mcu  TEXT,
  ram  INTEGER
);`

// SQLite lists boards from a board catalog database, in insertion order.
// The catalog is opened read-only.
type SQLite struct {
	Path string
}

// ListBoards queries every row of the boards table.
func (s *SQLite) ListBoards(ctx context.Context) ([]boards.Record, error) {
	log := klog.FromContext(ctx)

	// sql.Open would create a missing file; report it instead.
	if _, err := os.Stat(s.Path); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewFileNotFound(s.Path)
		}
		return nil, errors.NewSourceUnavailable(SourceSQLite, err)
	}

	dsn, err := CatalogURI(s.Path, "query_only(1)", "busy_timeout(5000)")
	if err != nil {
		return nil, errors.NewSourceUnavailable(SourceSQLite, err)
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.NewSourceUnavailable(SourceSQLite, fmt.Errorf("failed to open catalog: %w", err))
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx,
		`SELECT id, COALESCE(name, ''), COALESCE(mcu, ''), COALESCE(ram, 0) FROM boards ORDER BY rowid`)
	if err != nil {
		return nil, errors.NewSourceUnavailable(SourceSQLite, fmt.Errorf("failed to query boards: %w", err))
	}
	defer rows.Close()

	var records []boards.Record
	for rows.Next() {
		var rec boards.Record
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.MCU, &rec.RAM); err != nil {
			return nil, errors.NewSourceUnavailable(SourceSQLite, fmt.Errorf("failed to scan board: %w", err))
		}
		rec.MCU = strings.ToUpper(rec.MCU)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewSourceUnavailable(SourceSQLite, err)
	}

	log.Info("read board catalog", "path", s.Path, "count", len(records))
	return records, nil
}

// CatalogURI returns a file: URI DSN for the catalog at path with the given
// pragmas. The path is escaped, so names holding '?', '#' or '%' are opened
// as written.
func CatalogURI(path string, pragmas ...string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve catalog path: %w", err)
	}
	p := filepath.ToSlash(abs)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}

	q := url.Values{}
	for _, pragma := range pragmas {
		q.Add("_pragma", pragma)
	}
	u := url.URL{Scheme: "file", Path: p, RawQuery: q.Encode()}
	return u.String(), nil
}
