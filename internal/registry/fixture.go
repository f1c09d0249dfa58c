package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
	"k8s.io/klog/v2"

	"github.com/hpungsan/boardgen/internal/boards"
	"github.com/hpungsan/boardgen/internal/errors"
)

// Fixture lists boards from a JSON or YAML file holding a list of records,
// such as a saved "pio boards --json-output". Files ending in .json are
// decoded as JSON, anything else as YAML.
type Fixture struct {
	Path string
}

// ListBoards decodes the fixture file in order.
func (f *Fixture) ListBoards(ctx context.Context) ([]boards.Record, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewFileNotFound(f.Path)
		}
		return nil, errors.NewSourceUnavailable(SourceFixture, err)
	}

	records, err := DecodeRecords(data, strings.EqualFold(filepath.Ext(f.Path), ".json"))
	if err != nil {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("invalid fixture %s: %v", f.Path, err))
	}

	klog.FromContext(ctx).Info("read board fixture", "path", f.Path, "count", len(records))
	return records, nil
}

// DecodeRecords decodes a list of board records. Field values are coerced,
// so "ram" may be a number or a numeric string.
func DecodeRecords(data []byte, isJSON bool) ([]boards.Record, error) {
	var raw []map[string]any
	if isJSON {
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
	} else {
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
	}

	records := make([]boards.Record, 0, len(raw))
	for i, item := range raw {
		rec, err := recordFromMap(item)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func recordFromMap(m map[string]any) (boards.Record, error) {
	var rec boards.Record
	var err error

	if rec.ID, err = cast.ToStringE(m["id"]); err != nil {
		return rec, fmt.Errorf("id: %w", err)
	}
	if rec.ID == "" {
		return rec, fmt.Errorf("id is required")
	}
	if rec.Name, err = cast.ToStringE(m["name"]); err != nil {
		return rec, fmt.Errorf("name: %w", err)
	}
	if rec.MCU, err = cast.ToStringE(m["mcu"]); err != nil {
		return rec, fmt.Errorf("mcu: %w", err)
	}
	rec.MCU = strings.ToUpper(rec.MCU)
	if v, ok := m["ram"]; ok && v != nil {
		if rec.RAM, err = cast.ToIntE(v); err != nil {
			return rec, fmt.Errorf("ram: %w", err)
		}
	}
	return rec, nil
}
