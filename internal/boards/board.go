package boards

// Record is a board as listed by a registry.
type Record struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
	MCU  string `json:"mcu" yaml:"mcu"`
	RAM  int    `json:"ram,omitempty" yaml:"ram,omitempty"`
}

// Board is the classified, normalized description of a board.
// Zero values are never serialized.
type Board struct {
	Name    string
	RAM     int
	Bits    int
	Harvard bool
}

// MemoryModel returns the legacy "N-bit" label for the board's word width.
func (b Board) MemoryModel() string {
	return Classification{Bits: b.Bits, Known: b.Bits != 0}.MemoryModel()
}

// Entry is a board keyed by the id of the first record that produced it.
type Entry struct {
	ID    string
	Board Board
}
