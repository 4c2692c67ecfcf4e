package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"irrigation_valve/internal/models"
)

type StateSQLite struct {
	db *sql.DB
}

func NewStateSQLite(db *sql.DB) *StateSQLite {
	return &StateSQLite{db: db}
}

// Ensure implementation of StateRepo interface at compile time.
var _ StateRepo = (*StateSQLite)(nil)

const (
	valveStateRowID = 1

	upsertStateSQL = `
		INSERT INTO valve_state (id, initialized, energized, is_manual,
			start_hour, start_minute, stop_hour, stop_minute,
			overheat_protected, intended, on_since, off_since, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			initialized=excluded.initialized,
			energized=excluded.energized,
			is_manual=excluded.is_manual,
			start_hour=excluded.start_hour,
			start_minute=excluded.start_minute,
			stop_hour=excluded.stop_hour,
			stop_minute=excluded.stop_minute,
			overheat_protected=excluded.overheat_protected,
			intended=excluded.intended,
			on_since=excluded.on_since,
			off_since=excluded.off_since,
			updated_at=excluded.updated_at
	`

	selectStateSQL = `
		SELECT initialized, energized, is_manual,
			start_hour, start_minute, stop_hour, stop_minute,
			overheat_protected, intended, on_since, off_since
		FROM valve_state WHERE id=?
	`

	deleteStateSQL = `DELETE FROM valve_state WHERE id=?`
)

// classify marks lock contention and deadline expiry as ErrBusy so callers can tell
// "try again" apart from a broken store.
func classify(ctx context.Context, op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) ||
		strings.Contains(err.Error(), "SQLITE_BUSY") || strings.Contains(err.Error(), "database is locked") {
		return fmt.Errorf("%s: %w: %v", op, ErrBusy, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// Save writes the single valve_state row (id always 1) and commits before returning.
func (r *StateSQLite) Save(ctx context.Context, s models.ValveState) error {
	rec := encodeState(s)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return classify(ctx, "begin state write", err)
	}
	defer func() {
		// no-op after a successful commit
		_ = tx.Rollback()
	}()

	_, err = tx.ExecContext(ctx, upsertStateSQL,
		valveStateRowID,
		rec.Initialized,
		rec.Energized,
		rec.IsManual,
		rec.StartHour,
		rec.StartMinute,
		rec.StopHour,
		rec.StopMinute,
		rec.OverheatProtected,
		rec.Intended,
		rec.OnSince,
		rec.OffSince,
		time.Now().UTC(),
	)
	if err != nil {
		return classify(ctx, "upsert valve_state", err)
	}
	if err := tx.Commit(); err != nil {
		return classify(ctx, "commit valve_state", err)
	}
	return nil
}

// Load reads the valve_state row. A missing row is a first run, not an error.
func (r *StateSQLite) Load(ctx context.Context) (Snapshot, error) {
	var rec stateRecord
	err := r.db.QueryRowContext(ctx, selectStateSQL, valveStateRowID).Scan(
		&rec.Initialized,
		&rec.Energized,
		&rec.IsManual,
		&rec.StartHour,
		&rec.StartMinute,
		&rec.StopHour,
		&rec.StopMinute,
		&rec.OverheatProtected,
		&rec.Intended,
		&rec.OnSince,
		&rec.OffSince,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Snapshot{State: models.DefaultValveState()}, nil
		}
		return Snapshot{}, classify(ctx, "select valve_state", err)
	}
	return decodeState(rec), nil
}

// Erase removes the record so the next boot starts from defaults.
func (r *StateSQLite) Erase(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, deleteStateSQL, valveStateRowID); err != nil {
		return classify(ctx, "delete valve_state", err)
	}
	return nil
}
