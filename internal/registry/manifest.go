package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"k8s.io/klog/v2"

	"github.com/hpungsan/boardgen/internal/boards"
	"github.com/hpungsan/boardgen/internal/errors"
)

// ManifestDir lists boards from the manifests of installed PlatformIO
// platforms, laid out as <Dir>/<platform>/boards/<id>.json.
type ManifestDir struct {
	Dir string
}

// boardManifest holds the fields of a PlatformIO board manifest we use.
type boardManifest struct {
	Name  string `json:"name"`
	Build struct {
		MCU string `json:"mcu"`
	} `json:"build"`
	Upload struct {
		MaximumRAMSize int `json:"maximum_ram_size"`
	} `json:"upload"`
}

// ListBoards reads every board manifest and returns the boards sorted by
// name, the order PlatformIO lists them in.
func (m *ManifestDir) ListBoards(ctx context.Context) ([]boards.Record, error) {
	log := klog.FromContext(ctx)

	info, err := os.Stat(m.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewFileNotFound(m.Dir)
		}
		return nil, errors.NewSourceUnavailable(SourceManifests, err)
	}
	if !info.IsDir() {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("not a directory: %s", m.Dir))
	}

	paths, err := filepath.Glob(filepath.Join(m.Dir, "*", "boards", "*.json"))
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	sort.Strings(paths)

	records := make([]boards.Record, 0, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := readManifest(path)
		if err != nil {
			return nil, errors.NewSourceUnavailable(SourceManifests, err)
		}
		records = append(records, rec)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Name < records[j].Name
	})

	log.Info("read board manifests", "dir", m.Dir, "count", len(records))
	return records, nil
}

func readManifest(path string) (boards.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return boards.Record{}, err
	}

	var man boardManifest
	if err := json.Unmarshal(data, &man); err != nil {
		return boards.Record{}, fmt.Errorf("parse %s: %w", path, err)
	}

	return boards.Record{
		ID:   strings.TrimSuffix(filepath.Base(path), ".json"),
		Name: man.Name,
		MCU:  strings.ToUpper(man.Build.MCU),
		RAM:  man.Upload.MaximumRAMSize,
	}, nil
}
