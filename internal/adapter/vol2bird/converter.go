// Package vol2bird wraps the external vol2bird binary, which derives a
// vertical profile of biological targets from one polar volume (Dokter et
// al. 2011). The profile math lives entirely in that program; this adapter
// only supervises the process.
package vol2bird

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

// Converter runs one vol2bird invocation per volume. It implements
// pipeline.Converter. Safe for concurrent use; each call spawns its own
// process.
type Converter struct {
	binary string
	logger *slog.Logger
}

// New returns a Converter that execs the given binary (path or $PATH name).
func New(binary string, logger *slog.Logger) *Converter {
	return &Converter{binary: binary, logger: logger}
}

// Convert produces the vertical profile for input at output. The caller's
// context carries the per-conversion timeout; an expired context kills the
// process and surfaces as an ordinary per-item error.
func (c *Converter) Convert(ctx context.Context, input, output string) error {
	cmd := exec.CommandContext(ctx, c.binary, input, output)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	c.logger.Debug("converting volume", "input", input, "output", output)
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("convert %s: %w", input, ctx.Err())
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("convert %s: %s: %w", input, firstLine(msg), err)
		}
		return fmt.Errorf("convert %s: %w", input, err)
	}
	return nil
}

// firstLine keeps converter errors to one line; vol2bird is chatty on stderr.
func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
