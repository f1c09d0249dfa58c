package boards

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnknownMCUsWarnings(t *testing.T) {
	u := NewUnknownMCUs()
	u.Add("XYZ9999", "Mystery Board")
	for _, name := range []string{"A", "B", "C", "D", "E"} {
		u.Add("CH32V003", name)
	}
	u.Add("PIC32", "P1")
	u.Add("PIC32", "P2")

	warnings := u.Warnings(0)
	require.Len(t, warnings, 3)

	assert.Equal(t, Warning{
		MCU:      "CH32V003",
		Count:    5,
		Examples: []string{"A", "B", "C"},
		Title:    "Unknown MCU CH32V003 (5 boards)",
		Message:  "CH32V003 is used in A, B, C and 2 more",
	}, warnings[0])
	assert.Equal(t, 2, warnings[0].More())
	assert.Equal(t, "::warning title=Unknown MCU CH32V003 (5 boards)::CH32V003 is used in A, B, C and 2 more", warnings[0].String())

	assert.Equal(t, "PIC32", warnings[1].MCU)
	assert.Equal(t, "::warning title=Unknown MCU PIC32::PIC32 is used in P1, P2", warnings[1].String())

	assert.Equal(t, "::warning title=Unknown MCU XYZ9999::XYZ9999 is used in Mystery Board", warnings[2].String())
}

func TestUnknownMCUsWarningsTiesKeepFirstSeenOrder(t *testing.T) {
	u := NewUnknownMCUs()
	u.Add("B", "b1")
	u.Add("A", "a1")
	u.Add("C", "c1")

	warnings := u.Warnings(DefaultMaxExamples)

	got := make([]string, 0, len(warnings))
	for _, w := range warnings {
		got = append(got, w.MCU)
	}
	assert.Equal(t, []string{"B", "A", "C"}, got)
}

func TestUnknownMCUsWarningsExactlyMaxExamples(t *testing.T) {
	u := NewUnknownMCUs()
	u.Add("M", "one")
	u.Add("M", "two")
	u.Add("M", "three")

	w := u.Warnings(3)[0]
	assert.Equal(t, "Unknown MCU M", w.Title)
	assert.Equal(t, "M is used in one, two, three", w.Message)
}

func TestUnknownMCUsWarningsCustomMax(t *testing.T) {
	u := NewUnknownMCUs()
	u.Add("M", "one")
	u.Add("M", "two")

	w := u.Warnings(1)[0]
	assert.Equal(t, "Unknown MCU M (2 boards)", w.Title)
	assert.Equal(t, "M is used in one and 1 more", w.Message)
}
