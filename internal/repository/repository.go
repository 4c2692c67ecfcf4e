package repository

import (
	"context"
	"database/sql"
	"errors"

	"irrigation_valve/internal/models"
)

// ErrBusy is returned when the store could not be written within the caller's deadline.
var ErrBusy = errors.New("state store busy")

// Snapshot is what Load recovers from the durable store.
// Initialized is false on first run (no marker), in which case State holds the defaults.
// Repairs lists every field that was dropped or replaced while decoding.
type Snapshot struct {
	State       models.ValveState
	Initialized bool
	Repairs     []string
}

// StateRepo is the Durable Store contract for the single valve state record.
type StateRepo interface {
	Save(ctx context.Context, s models.ValveState) error
	Load(ctx context.Context) (Snapshot, error)
	Erase(ctx context.Context) error
}

type Repository struct {
	StateRepo StateRepo
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		StateRepo: NewStateSQLite(db),
	}
}
