package boards

import (
	"regexp"
	"strings"
)

// qualifierRegex matches a trailing annotation: an optional voltage/clock
// fragment ("3.3V/8MHz") followed by a parenthesized qualifier.
var qualifierRegex = regexp.MustCompile(
	`(?:\s+\d+(?:\.\d+)?V/\d+(?:\.\d+)?\s?MHz)?\s*\(` +
		`(?:Programming Port|Programming/Debug Port|Native USB Port|USB Native Port` +
		`|FTDI|USB|New Bootloader|Old Bootloader` +
		`|\d+(?:\.\d+)?V[,/]\s*\d+(?:\.\d+)?\s?MHz` +
		`|\d+(?:\.\d+)?\s?MHz)\)\s*$`,
)

// NormalizeName strips trailing port, bootloader and voltage/clock qualifiers
// from a board display name so that variants of one board compare equal.
// Qualifiers are removed until none remain, so NormalizeName is idempotent.
func NormalizeName(name string) string {
	name = strings.TrimSpace(name)
	for {
		stripped := strings.TrimSpace(qualifierRegex.ReplaceAllString(name, ""))
		if stripped == name || stripped == "" {
			return name
		}
		name = stripped
	}
}
