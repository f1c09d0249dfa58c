package boards

import (
	"fmt"
	"sort"
	"strings"
)

// DefaultMaxExamples is how many board names a warning lists before
// summarizing the rest as "and N more".
const DefaultMaxExamples = 3

// UnknownMCUs collects the boards referencing each unclassified MCU, in
// first-seen order.
type UnknownMCUs struct {
	order  []string
	boards map[string][]string
}

// NewUnknownMCUs returns an empty collection.
func NewUnknownMCUs() *UnknownMCUs {
	return &UnknownMCUs{boards: make(map[string][]string)}
}

// Add records that boardName uses mcu.
func (u *UnknownMCUs) Add(mcu, boardName string) {
	if _, ok := u.boards[mcu]; !ok {
		u.order = append(u.order, mcu)
	}
	u.boards[mcu] = append(u.boards[mcu], boardName)
}

// Len returns the number of distinct unknown MCUs.
func (u *UnknownMCUs) Len() int {
	return len(u.order)
}

// Boards returns the names of the boards using mcu.
func (u *UnknownMCUs) Boards(mcu string) []string {
	return u.boards[mcu]
}

// Warning describes one unknown MCU and the boards that use it.
type Warning struct {
	MCU      string   `json:"mcu"`
	Count    int      `json:"count"`
	Examples []string `json:"examples"`
	Title    string   `json:"title"`
	Message  string   `json:"message"`
}

// More returns how many boards the examples leave out.
func (w Warning) More() int {
	return w.Count - len(w.Examples)
}

// String renders the warning as a workflow command annotation.
func (w Warning) String() string {
	return fmt.Sprintf("::warning title=%s::%s", w.Title, w.Message)
}

// Warnings returns one warning per unknown MCU, most referenced first. MCUs
// with equal counts keep first-seen order. At most maxExamples board names
// are listed; maxExamples <= 0 uses DefaultMaxExamples.
func (u *UnknownMCUs) Warnings(maxExamples int) []Warning {
	if maxExamples <= 0 {
		maxExamples = DefaultMaxExamples
	}

	mcus := append([]string{}, u.order...)
	sort.SliceStable(mcus, func(i, j int) bool {
		return len(u.boards[mcus[i]]) > len(u.boards[mcus[j]])
	})

	warnings := make([]Warning, 0, len(mcus))
	for _, mcu := range mcus {
		names := u.boards[mcu]
		title := "Unknown MCU " + mcu
		shown := names
		if len(names) > maxExamples {
			title += fmt.Sprintf(" (%d boards)", len(names))
			shown = names[:maxExamples]
		}
		msg := fmt.Sprintf("%s is used in %s", mcu, strings.Join(shown, ", "))
		if len(names) > maxExamples {
			msg += fmt.Sprintf(" and %d more", len(names)-maxExamples)
		}
		warnings = append(warnings, Warning{
			MCU:      mcu,
			Count:    len(names),
			Examples: append([]string(nil), shown...),
			Title:    title,
			Message:  msg,
		})
	}
	return warnings
}
