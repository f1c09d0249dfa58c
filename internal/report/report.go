// Package report summarizes a board table run as Markdown or HTML.
package report

import (
	"bytes"
	"crypto/rand"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/oklog/ulid/v2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/hpungsan/boardgen/internal/boards"
)

// NewRunID returns a sortable identifier for one run.
func NewRunID() string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// Summary describes one run of the board table generator.
type Summary struct {
	RunID       string
	GeneratedAt time.Time
	Source      string
	Output      string

	Listed     int
	Written    []boards.Entry
	Duplicates int
	Skipped    int
	Warnings   []boards.Warning
}

// NewSummary collects the figures of a pipeline result.
func NewSummary(runID, source, output string, listed int, res *boards.Result, written []boards.Entry, maxExamples int) *Summary {
	return &Summary{
		RunID:       runID,
		GeneratedAt: time.Now().UTC(),
		Source:      source,
		Output:      output,
		Listed:      listed,
		Written:     written,
		Duplicates:  res.Duplicates,
		Skipped:     res.Skipped,
		Warnings:    res.Unknown.Warnings(maxExamples),
	}
}

// widthRow aggregates the written boards of one word width.
type widthRow struct {
	bits    int
	count   int
	harvard int
	maxRAM  int
}

func (s *Summary) widths() []widthRow {
	rows := make([]widthRow, 0, len(boards.SupportedWidths))
	for _, bits := range boards.SupportedWidths {
		row := widthRow{bits: bits}
		for _, e := range s.Written {
			if e.Board.Bits != bits {
				continue
			}
			row.count++
			if e.Board.Harvard {
				row.harvard++
			}
			if e.Board.RAM > row.maxRAM {
				row.maxRAM = e.Board.RAM
			}
		}
		if row.count > 0 {
			rows = append(rows, row)
		}
	}
	return rows
}

// Markdown renders the summary.
func (s *Summary) Markdown() string {
	var b strings.Builder

	b.WriteString("# Board table report\n\n")
	fmt.Fprintf(&b, "Run `%s` at %s from source `%s`", s.RunID, s.GeneratedAt.Format(time.RFC3339), s.Source)
	if s.Output != "" {
		fmt.Fprintf(&b, ", written to `%s`", s.Output)
	}
	b.WriteString(".\n\n")

	b.WriteString("| | Boards |\n|---|---:|\n")
	fmt.Fprintf(&b, "| Listed by registry | %s |\n", humanize.Comma(int64(s.Listed)))
	fmt.Fprintf(&b, "| Written | %s |\n", humanize.Comma(int64(len(s.Written))))
	fmt.Fprintf(&b, "| Collapsed as adjacent duplicates | %s |\n", humanize.Comma(int64(s.Duplicates)))
	fmt.Fprintf(&b, "| Without MCU | %s |\n", humanize.Comma(int64(s.Skipped)))
	fmt.Fprintf(&b, "| Unknown MCUs | %s |\n", humanize.Comma(int64(len(s.Warnings))))

	if rows := s.widths(); len(rows) > 0 {
		b.WriteString("\n## Word widths\n\n")
		b.WriteString("| Width | Boards | Harvard | Largest RAM |\n|---|---:|---:|---:|\n")
		for _, r := range rows {
			fmt.Fprintf(&b, "| %d-bit | %d | %d | %s |\n", r.bits, r.count, r.harvard, humanize.IBytes(uint64(r.maxRAM)))
		}
	}

	if len(s.Warnings) > 0 {
		b.WriteString("\n## Unknown MCUs\n\n")
		b.WriteString("| MCU | Boards | Used in |\n|---|---:|---|\n")
		for _, w := range s.Warnings {
			used := strings.Join(w.Examples, ", ")
			if w.More() > 0 {
				used += fmt.Sprintf(" and %d more", w.More())
			}
			fmt.Fprintf(&b, "| `%s` | %d | %s |\n", escapeCell(w.MCU), w.Count, escapeCell(used))
		}
	}

	return b.String()
}

// HTML renders the summary as a standalone HTML page.
func (s *Summary) HTML() ([]byte, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))

	var body bytes.Buffer
	if err := md.Convert([]byte(s.Markdown()), &body); err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}

	var page bytes.Buffer
	page.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&page, "<title>Board table report %s</title>\n", html.EscapeString(s.RunID))
	page.WriteString("</head>\n<body>\n")
	page.Write(body.Bytes())
	page.WriteString("</body>\n</html>\n")
	return page.Bytes(), nil
}

// Write saves the summary to path, as HTML when path ends in .html or .htm
// and as Markdown otherwise.
func (s *Summary) Write(path string) error {
	var data []byte
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		var err error
		if data, err = s.HTML(); err != nil {
			return err
		}
	default:
		data = []byte(s.Markdown())
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create report directory: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
