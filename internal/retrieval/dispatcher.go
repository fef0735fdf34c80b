// Package retrieval hands the requests of a manifest to one of two archive
// backends: the public data service or direct MARS access.
package retrieval

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/couchcryptid/flex-control/internal/domain"
	"github.com/couchcryptid/flex-control/internal/manifest"
	"github.com/couchcryptid/flex-control/internal/observability"
	"github.com/google/uuid"
)

// Backend names, used as metric labels and message headers.
const (
	BackendPublic = "public"
	BackendMARS   = "mars"
)

// Backend performs, or schedules, the fetch for one request.
type Backend interface {
	Retrieve(ctx context.Context, req *domain.Request) error
}

// Status describes the latest retrieval run.
type Status struct {
	RunID      string `json:"run_id,omitempty"`
	Backend    string `json:"backend,omitempty"`
	Manifest   string `json:"manifest,omitempty"`
	Total      int    `json:"total"`
	Dispatched int    `json:"dispatched"`
	Running    bool   `json:"running"`
	Error      string `json:"error,omitempty"`
}

// Dispatcher feeds manifest requests to a backend in manifest order.
type Dispatcher struct {
	public  Backend
	mars    Backend
	logger  *slog.Logger
	metrics *observability.Metrics

	mu     sync.Mutex
	status Status
}

// NewDispatcher creates a Dispatcher over the public and MARS backends.
func NewDispatcher(public, mars Backend, logger *slog.Logger, metrics *observability.Metrics) *Dispatcher {
	return &Dispatcher{
		public:  public,
		mars:    mars,
		logger:  logger,
		metrics: metrics,
	}
}

// Status returns a snapshot of the latest run.
func (d *Dispatcher) Status() Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.status
}

// CheckReadiness returns nil once a manifest has been parsed and dispatch has
// begun, as long as that run has not failed.
func (d *Dispatcher) CheckReadiness(_ context.Context) error {
	st := d.Status()
	switch {
	case st.RunID == "":
		return errors.New("no retrieval run has started")
	case st.Error != "":
		return fmt.Errorf("retrieval run %s failed after %d of %d requests: %s", st.RunID, st.Dispatched, st.Total, st.Error)
	}
	return nil
}

func (d *Dispatcher) update(fn func(*Status)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fn(&d.status)
}

// Run reads the manifest at path and hands every request to the public
// backend when public is set, otherwise to the MARS backend. It stops at the
// first backend error and returns the number of requests accepted before it.
func (d *Dispatcher) Run(ctx context.Context, path string, public bool) (int, error) {
	reqs, err := manifest.Load(path)
	if err != nil {
		return 0, err
	}
	d.metrics.RequestsParsed.Add(float64(len(reqs)))

	name, backend := BackendMARS, d.mars
	if public {
		name, backend = BackendPublic, d.public
	}

	runID := uuid.NewString()
	ctx = WithRunID(ctx, runID)
	logger := d.logger.With("run_id", runID, "backend", name)
	logger.Info("retrieval started", "manifest", path, "requests", len(reqs))

	d.metrics.RetrievalRunning.Set(1)
	defer d.metrics.RetrievalRunning.Set(0)
	d.update(func(st *Status) {
		*st = Status{RunID: runID, Backend: name, Manifest: path, Total: len(reqs), Running: true}
	})
	defer d.update(func(st *Status) { st.Running = false })

	for i, req := range reqs {
		if err := ctx.Err(); err != nil {
			d.update(func(st *Status) { st.Error = err.Error() })
			return i, err
		}
		start := time.Now()
		err := backend.Retrieve(ctx, req)
		d.metrics.DispatchDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
		if err != nil {
			d.metrics.DispatchErrors.WithLabelValues(name).Inc()
			d.update(func(st *Status) { st.Error = err.Error() })
			logger.Error("retrieval failed", "request", i+1, "error", err)
			return i, fmt.Errorf("request %d: %w", i+1, err)
		}
		d.metrics.RequestsDispatched.WithLabelValues(name).Inc()
		d.update(func(st *Status) { st.Dispatched = i + 1 })
		logger.Debug("request dispatched", "request", i+1)
	}

	logger.Info("retrieval finished", "requests", len(reqs))
	return len(reqs), nil
}

type runIDKey struct{}

// WithRunID attaches a retrieval run ID to ctx.
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey{}, id)
}

// RunID returns the run ID stored in ctx, or "".
func RunID(ctx context.Context) string {
	id, _ := ctx.Value(runIDKey{}).(string)
	return id
}
