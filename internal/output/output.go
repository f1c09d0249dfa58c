package output

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"k8s.io/klog/v2"

	"github.com/hpungsan/boardgen/internal/boards"
	"github.com/hpungsan/boardgen/internal/config"
	"github.com/hpungsan/boardgen/internal/errors"
)

// bitsBoard is a board in the default output format.
type bitsBoard struct {
	Name    string `json:"name,omitempty"`
	RAM     int    `json:"ram,omitempty"`
	Bits    int    `json:"bits,omitempty"`
	Progmem bool   `json:"progmem,omitempty"`
}

// legacyBoard is a board in the format read by older consumers.
type legacyBoard struct {
	Label       string `json:"label,omitempty"`
	RAM         int    `json:"ram,omitempty"`
	MemoryModel string `json:"memoryModel,omitempty"`
	Progmem     bool   `json:"progmem,omitempty"`
}

// Table builds the id-keyed board object in entry order.
func Table(entries []boards.Entry, format string) (*orderedmap.OrderedMap[string, any], error) {
	table := orderedmap.New[string, any](len(entries))
	for _, e := range entries {
		switch format {
		case config.FormatBits, "":
			table.Set(e.ID, bitsBoard{
				Name:    e.Board.Name,
				RAM:     e.Board.RAM,
				Bits:    e.Board.Bits,
				Progmem: e.Board.Harvard,
			})
		case config.FormatLegacy:
			table.Set(e.ID, legacyBoard{
				Label:       e.Board.Name,
				RAM:         e.Board.RAM,
				MemoryModel: e.Board.MemoryModel(),
				Progmem:     e.Board.Harvard,
			})
		default:
			return nil, errors.NewInvalidRequest(fmt.Sprintf("unknown format %q", format))
		}
	}
	return table, nil
}

// Marshal renders entries as a 2-space indented JSON object keyed by id.
func Marshal(entries []boards.Entry, format string) ([]byte, error) {
	table, err := Table(entries, format)
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(table, "", "  ")
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return append(data, '\n'), nil
}

// WriteJSON writes entries to path, replacing any existing file.
// The table is written to a temp file first and renamed into place, so a
// failed run leaves the previous table intact.
func WriteJSON(ctx context.Context, path string, entries []boards.Entry, format string) error {
	log := klog.FromContext(ctx)

	if path == "" {
		return errors.NewInvalidRequest("output path is required")
	}

	data, err := Marshal(entries, format)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to create output directory: %w", err))
	}

	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to generate temp file name: %w", err))
	}
	tempPath := path + "." + hex.EncodeToString(randBytes) + ".tmp"

	file, err := openFileNoFollow(tempPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC|os.O_EXCL, 0644)
	if err != nil {
		return errors.NewInternal(fmt.Errorf("failed to create output file: %w", err))
	}

	success := false
	defer func() {
		if file != nil {
			file.Close()
		}
		if !success {
			os.Remove(tempPath)
		}
	}()

	if _, err := file.Write(data); err != nil {
		return errors.NewInternal(err)
	}
	if err := file.Sync(); err != nil {
		return errors.NewInternal(err)
	}
	if err := file.Close(); err != nil {
		file = nil
		return errors.NewInternal(err)
	}
	file = nil

	if err := os.Rename(tempPath, path); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to replace %s: %w", path, err))
	}
	success = true

	log.Info("wrote board table", "path", path, "boards", len(entries), "format", format)
	return nil
}

// PrintWarnings writes one workflow annotation line per warning.
func PrintWarnings(w io.Writer, warnings []boards.Warning) error {
	for _, warning := range warnings {
		if _, err := fmt.Fprintln(w, warning.String()); err != nil {
			return err
		}
	}
	return nil
}
