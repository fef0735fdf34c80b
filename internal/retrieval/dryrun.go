package retrieval

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/couchcryptid/flex-control/internal/domain"
	"gopkg.in/yaml.v3"
)

// DryRun is a Backend that writes each request as a YAML document instead of
// fetching it.
type DryRun struct {
	mu      sync.Mutex
	enc     *yaml.Encoder
	written bool
	name    string
	logger  *slog.Logger
}

// NewDryRun creates a DryRun backend writing to w. name labels the log lines.
func NewDryRun(w io.Writer, name string, logger *slog.Logger) *DryRun {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	return &DryRun{enc: enc, name: name, logger: logger}
}

// Retrieve writes req and logs it.
func (d *DryRun) Retrieve(ctx context.Context, req *domain.Request) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.enc.Encode(req); err != nil {
		return fmt.Errorf("dry run %s: %w", d.name, err)
	}
	d.written = true
	d.logger.Info("dry run retrieval", "backend", d.name, "run_id", RunID(ctx), "keywords", req.Len())
	return nil
}

// Close ends the YAML stream. A backend that wrote nothing writes nothing.
func (d *DryRun) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.written {
		return nil
	}
	return d.enc.Close()
}
