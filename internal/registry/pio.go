package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"

	"github.com/google/shlex"
	"k8s.io/klog/v2"

	"github.com/hpungsan/boardgen/internal/boards"
	"github.com/hpungsan/boardgen/internal/errors"
)

// DefaultPIOCommand is the PlatformIO CLI invocation used when none is configured.
const DefaultPIOCommand = "pio"

// PIO lists boards by running "pio boards --json-output".
type PIO struct {
	argv []string
}

// NewPIO parses command as a shell-quoted command line, such as
// "python3 -m platformio". An empty command uses DefaultPIOCommand.
func NewPIO(command string) (*PIO, error) {
	if strings.TrimSpace(command) == "" {
		command = DefaultPIOCommand
	}
	argv, err := shlex.Split(command)
	if err != nil {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("invalid pio command %q: %v", command, err))
	}
	if len(argv) == 0 {
		return nil, errors.NewInvalidRequest("pio command is empty")
	}
	return &PIO{argv: argv}, nil
}

// Args returns the full argument vector that ListBoards executes.
func (p *PIO) Args() []string {
	return append(append([]string{}, p.argv...), "boards", "--json-output")
}

// ListBoards runs the PlatformIO CLI and decodes its board listing.
func (p *PIO) ListBoards(ctx context.Context) ([]boards.Record, error) {
	log := klog.FromContext(ctx)
	args := p.Args()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	log.Info("listing boards", "command", strings.Join(args, " "))
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			err = fmt.Errorf("%w: %s", err, msg)
		}
		return nil, errors.NewSourceUnavailable(SourcePIO, err)
	}

	records, err := decodePIOBoards(stdout.Bytes())
	if err != nil {
		return nil, errors.NewSourceUnavailable(SourcePIO, err)
	}
	log.Info("listed boards", "count", len(records))
	return records, nil
}

// pioBoard is one element of "pio boards --json-output".
type pioBoard struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	MCU      string `json:"mcu"`
	RAM      int    `json:"ram"`
	Platform string `json:"platform"`
}

func decodePIOBoards(data []byte) ([]boards.Record, error) {
	var raw []pioBoard
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode board listing: %w", err)
	}
	records := make([]boards.Record, 0, len(raw))
	for _, b := range raw {
		records = append(records, boards.Record{
			ID:   b.ID,
			Name: b.Name,
			MCU:  strings.ToUpper(b.MCU),
			RAM:  b.RAM,
		})
	}
	return records, nil
}
