package boards

import (
	"fmt"
	"strings"
)

// widthCategory pairs a word width with the MCU prefixes that imply it.
type widthCategory struct {
	Bits     int
	Prefixes []string
}

// wordWidths is evaluated in declaration order; the first category with a
// matching prefix wins.
var wordWidths = []widthCategory{
	{Bits: 8, Prefixes: []string{
		"8051",
		"8052",
		"AT89",
		"AT90",
		"ATMEGA",
		"ATTINY",
		"AVR",
		"CH559",
		"IAP12",
		"IAP15",
		"IRC15",
		"ML5",
		"MS5",
		"N7",
		"STC",
		"W79",
		"STM8",
	}},
	{Bits: 16, Prefixes: []string{
		"MSP430",
	}},
	{Bits: 32, Prefixes: []string{
		"32MX",
		"32MZ",
		"AM130",
		"ARCV2EM",
		"ASR",
		"AT91SAM",
		"BCM283",
		"BCM2835",
		"BK7231",
		"BK7252",
		"C-CLASS",
		"CORTEX",
		"E-CLASS",
		"EFM32",
		"EFR32",
		"ESP32",
		"ESP8266",
		"FE310",
		"FU540",
		"GAP8",
		"GD32VF103CBT6",
		"GD32VF103VBT6",
		"HUMMINGBIRD",
		"ICE40-HX1K-TQ144",
		"IMXRT1062",
		"K1921",
		"LPC",
		"LPLM4",
		"LPTM4",
		"MAX32",
		"MIMXRT",
		"MK",
		"MT2503",
		"MT2625",
		"MT6261",
		"NRF5",
		"R7FA6M5BH2CBG",
		"RA4M1",
		"RDA89",
		"RP2040",
		"RTL8710B",
		"SAM",
		"STM32",
		"XMC",
	}},
	{Bits: 64, Prefixes: []string{
		"K210",
		"RTL8720CF",
	}},
}

// harvardPrefixes lists MCU families with separate program and data memory.
var harvardPrefixes = []string{
	"8051",
	"8052",
	"AT90",
	"ATMEGA",
	"ATTINY",
	"AVR",
	"ESP8266",
	"IAP12",
	"IAP15",
	"IRC15",
	"ML5",
	"MS5",
	"N7",
	"STC",
	"W79",
	"STM8",
}

// Classification describes what an MCU model string implies about a board.
// Known is false when no word-width prefix matched.
type Classification struct {
	Bits    int  `json:"bits,omitempty"`
	Harvard bool `json:"progmem,omitempty"`
	Known   bool `json:"known"`
}

// MemoryModel returns the legacy "N-bit" label, or "" when unknown.
func (c Classification) MemoryModel() string {
	if !c.Known {
		return ""
	}
	return fmt.Sprintf("%d-bit", c.Bits)
}

// Classifier matches MCU strings against word-width and Harvard prefix tables.
type Classifier struct {
	widths  []widthCategory
	harvard []string
}

// DefaultClassifier uses only the built-in tables.
var DefaultClassifier = NewClassifier(nil, nil)

// NewClassifier returns a classifier over the built-in tables, with extra
// prefixes appended to their categories. Extra prefixes for a width with no
// built-in category are ignored; config rejects them before they get here.
func NewClassifier(extraWidths map[int][]string, extraHarvard []string) *Classifier {
	c := &Classifier{
		widths:  make([]widthCategory, 0, len(wordWidths)),
		harvard: append(append([]string{}, harvardPrefixes...), extraHarvard...),
	}

	for _, cat := range wordWidths {
		prefixes := append(append([]string{}, cat.Prefixes...), extraWidths[cat.Bits]...)
		c.widths = append(c.widths, widthCategory{Bits: cat.Bits, Prefixes: prefixes})
	}

	return c
}

// SupportedWidths lists the word widths a classification may report.
var SupportedWidths = []int{8, 16, 32, 64}

// Classify returns the classification of mcu. An empty or unmatched string
// yields a Classification with Known == false.
func (c *Classifier) Classify(mcu string) Classification {
	bits := c.wordWidth(mcu)
	if bits == 0 {
		return Classification{}
	}
	return Classification{
		Bits:    bits,
		Harvard: hasAnyPrefix(mcu, c.harvard),
		Known:   true,
	}
}

// Classify classifies mcu with the built-in tables.
func Classify(mcu string) Classification {
	return DefaultClassifier.Classify(mcu)
}

func (c *Classifier) wordWidth(mcu string) int {
	if mcu == "" {
		return 0
	}
	for _, cat := range c.widths {
		if hasAnyPrefix(mcu, cat.Prefixes) {
			return cat.Bits
		}
	}
	return 0
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

// IsSupportedWidth reports whether bits is one of SupportedWidths.
func IsSupportedWidth(bits int) bool {
	for _, b := range SupportedWidths {
		if b == bits {
			return true
		}
	}
	return false
}
