package boards

import (
	"context"
	"strings"

	"k8s.io/klog/v2"
)

// DefaultBrandPrefix selects the boards kept when not all boards are wanted.
const DefaultBrandPrefix = "Arduino"

// Result holds the emitted entries of one pipeline run and the MCUs that
// could not be classified.
type Result struct {
	Entries []Entry
	Unknown *UnknownMCUs

	// Skipped counts records dropped for an empty MCU.
	Skipped int
	// Duplicates counts records collapsed into the preceding entry.
	Duplicates int
}

// Build classifies and normalizes records in order. A record equal to the
// previously emitted one after normalization is collapsed into it; equal
// records that are not adjacent are both kept.
func Build(ctx context.Context, records []Record, classifier *Classifier) *Result {
	log := klog.FromContext(ctx)
	if classifier == nil {
		classifier = DefaultClassifier
	}

	res := &Result{
		Entries: make([]Entry, 0, len(records)),
		Unknown: NewUnknownMCUs(),
	}

	var (
		prev    Board
		hasPrev bool
	)
	for _, rec := range records {
		if rec.MCU == "" {
			res.Skipped++
			continue
		}

		class := classifier.Classify(rec.MCU)
		if !class.Known {
			res.Unknown.Add(rec.MCU, rec.Name)
			continue
		}

		b := Board{
			Name:    NormalizeName(rec.Name),
			RAM:     rec.RAM,
			Bits:    class.Bits,
			Harvard: class.Harvard,
		}
		if hasPrev && prev == b {
			res.Duplicates++
			continue
		}

		res.Entries = append(res.Entries, Entry{ID: rec.ID, Board: b})
		prev, hasPrev = b, true
	}

	log.V(1).Info("built board table",
		"records", len(records),
		"entries", len(res.Entries),
		"duplicates", res.Duplicates,
		"skipped", res.Skipped,
		"unknownMCUs", res.Unknown.Len(),
	)
	return res
}

// Filter returns the entries whose name starts with brandPrefix, or all
// entries when all is set.
func (r *Result) Filter(brandPrefix string, all bool) []Entry {
	if all {
		return r.Entries
	}
	filtered := make([]Entry, 0, len(r.Entries))
	for _, e := range r.Entries {
		if strings.HasPrefix(e.Board.Name, brandPrefix) {
			filtered = append(filtered, e)
		}
	}
	return filtered
}
