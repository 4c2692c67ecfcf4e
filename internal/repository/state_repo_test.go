package repository_test

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"irrigation_valve/internal/models"
	"irrigation_valve/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
)

// sqlmockArgumentFunc adapts a predicate to sqlmock.Argument.
type sqlmockArgumentFunc func(driver.Value) bool

func (f sqlmockArgumentFunc) Match(v driver.Value) bool { return f(v) }

var stateColumns = []string{
	"initialized", "energized", "is_manual",
	"start_hour", "start_minute", "stop_hour", "stop_minute",
	"overheat_protected", "intended", "on_since", "off_since",
}

func newMock(t *testing.T) (*repository.StateSQLite, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New(): %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return repository.NewStateSQLite(db), mock
}

func TestStateSQLite_Save_WritesSingleRowInTransaction(t *testing.T) {
	repo, mock := newMock(t)

	onSince := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)
	state := models.ValveState{
		Energized:     true,
		IntendedState: true,
		Mode:          models.ModeAutomatic,
		Schedule: models.Schedule{
			Start: models.TimeOfDay{Hour: 22, Minute: 15},
			Stop:  models.TimeOfDay{Hour: 6, Minute: 45},
		},
		OnSince: onSince,
	}

	isUTCRecent := sqlmockArgumentFunc(func(v driver.Value) bool {
		tm, ok := v.(time.Time)
		if !ok || tm.Location() != time.UTC {
			return false
		}
		now := time.Now().UTC()
		return !tm.Before(now.Add(-5*time.Second)) && !tm.After(now.Add(5*time.Second))
	})

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO valve_state")).
		WithArgs(
			1,    // row id
			0xA5, // initialized marker
			true, // energized
			false,
			22, 15, 6, 45,
			false, // overheat_protected
			true,  // intended
			onSince.Unix(),
			int64(0),
			isUTCRecent,
		).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	if err := repo.Save(context.Background(), state); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestStateSQLite_Save_RollsBackOnExecError(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO valve_state")).
		WillReturnError(errors.New("disk I/O error"))
	mock.ExpectRollback()

	err := repo.Save(context.Background(), models.DefaultValveState())
	if err == nil {
		t.Fatalf("expected error")
	}
	if errors.Is(err, repository.ErrBusy) {
		t.Fatalf("I/O error must not be classified as busy: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestStateSQLite_Save_LockedDatabaseIsBusy(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO valve_state")).
		WillReturnError(errors.New("database is locked (5) (SQLITE_BUSY)"))
	mock.ExpectRollback()

	if err := repo.Save(context.Background(), models.DefaultValveState()); !errors.Is(err, repository.ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
}

func TestStateSQLite_Save_BeginErrorIsReturned(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectBegin().WillReturnError(errors.New("boom"))

	if err := repo.Save(context.Background(), models.DefaultValveState()); err == nil {
		t.Fatalf("expected error")
	}
}

func TestStateSQLite_Load_DecodesRow(t *testing.T) {
	repo, mock := newMock(t)

	offSince := time.Date(2025, 7, 1, 10, 3, 0, 0, time.UTC)
	rows := sqlmock.NewRows(stateColumns).
		AddRow(0xA5, false, true, 7, 30, 9, 0, true, true, int64(0), offSince.Unix())
	mock.ExpectQuery(regexp.QuoteMeta("FROM valve_state WHERE id=?")).
		WithArgs(1).
		WillReturnRows(rows)

	snap, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !snap.Initialized || len(snap.Repairs) != 0 {
		t.Fatalf("unexpected snapshot meta: %+v", snap)
	}
	want := models.ValveState{
		IntendedState:     true,
		Mode:              models.ModeManual,
		Schedule:          models.Schedule{Start: models.TimeOfDay{Hour: 7, Minute: 30}, Stop: models.TimeOfDay{Hour: 9}},
		OverheatProtected: true,
		OffSince:          offSince,
	}
	if !snap.State.Equal(want) {
		t.Fatalf("Load() = %+v, want %+v", snap.State, want)
	}
}

func TestStateSQLite_Load_NoRowsIsFirstRun(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM valve_state")).
		WithArgs(1).
		WillReturnError(sql.ErrNoRows)

	snap, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if snap.Initialized || !snap.State.Equal(models.DefaultValveState()) {
		t.Fatalf("expected uninitialized defaults, got %+v", snap)
	}
}

func TestStateSQLite_Load_QueryError(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM valve_state")).
		WithArgs(1).
		WillReturnError(errors.New("corrupt"))

	if _, err := repo.Load(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
}

func TestStateSQLite_Erase(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM valve_state WHERE id=?")).
		WithArgs(1).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Erase(context.Background()); err != nil {
		t.Fatalf("Erase() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
