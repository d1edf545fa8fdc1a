// Package store defines the RunStore interface for persisting recovery
// sweeps and provides SQLite and in-memory implementations.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/nvandessel/ezdiff/internal/diffusion"
	"github.com/nvandessel/ezdiff/internal/simulation"
)

// ErrRunNotFound is returned when a run ID does not exist.
var ErrRunNotFound = errors.New("run not found")

// Run is one persisted sweep: the true parameters, the seed that drove
// the random source, and one result per sample size in sweep order.
type Run struct {
	ID        int64                `json:"id"`
	CreatedAt time.Time            `json:"created_at"`
	Seed      uint64               `json:"seed"`
	Params    diffusion.Parameters `json:"params"`
	Results   []simulation.Result  `json:"results"`
}

// RunStore persists sweep reports.
type RunStore interface {
	// SaveRun stores the report and returns the new run ID.
	SaveRun(ctx context.Context, report simulation.Report) (int64, error)

	// GetRun returns a run by ID, or ErrRunNotFound.
	GetRun(ctx context.Context, id int64) (*Run, error)

	// ListRuns returns up to limit runs, newest first. A limit <= 0
	// returns every run.
	ListRuns(ctx context.Context, limit int) ([]Run, error)

	// Close releases any resources held by the store.
	Close() error
}
