package status

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"time"

	"codeberg.org/mutker/fancontrol/internal/errors"
	"codeberg.org/mutker/fancontrol/internal/logger"
	_ "github.com/mattn/go-sqlite3"
)

type repository struct {
	db     *sql.DB
	logger logger.Logger
	mu     sync.Mutex
}

func newRepository(cfg Config, log logger.Logger) (*repository, error) {
	errFactory := errors.New()

	if cfg.DBPath == "" {
		return nil, errFactory.New(ErrInvalidDBPath)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), defaultDirPerm); err != nil {
		return nil, errFactory.WithData(ErrStorageInit, struct {
			Phase string
			Path  string
			Error string
		}{
			Phase: "create_directory",
			Path:  cfg.DBPath,
			Error: err.Error(),
		})
	}

	// WAL lets the status command read while the daemon writes.
	db, err := sql.Open("sqlite3", cfg.DBPath+"?_journal=WAL&_busy_timeout=1000")
	if err != nil {
		return nil, errFactory.WithData(ErrStorageInit, struct {
			Phase string
			Error string
		}{
			Phase: "open_database",
			Error: err.Error(),
		})
	}
	db.SetMaxOpenConns(1)

	if err := ValidateAndUpdateSchema(db, log); err != nil {
		db.Close()
		return nil, errFactory.WithData(ErrStorageInit, struct {
			Phase string
			Error string
		}{
			Phase: "schema_version",
			Error: err.Error(),
		})
	}

	log.Debug().
		Str("path", cfg.DBPath).
		Int("schema_version", SchemaVersion).
		Msg("Status repository initialized")

	return &repository{
		db:     db,
		logger: log,
	}, nil
}

func (r *repository) Record(ctx context.Context, s *Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.ExecContext(ctx, upsertStatusSQL,
		s.State,
		boolToInt(s.Enabled),
		s.Temperature,
		s.Raw,
		boolToInt(s.TempValid),
		s.Duty,
		s.DutyPercent,
		boolToInt(s.FailSafe),
		s.Failures,
		s.LastError,
		unixNano(s.LastErrorAt),
		s.ConfigError,
		unixNano(s.LastReadAt),
		unixNano(s.LastWriteAt),
		unixNano(s.UpdatedAt),
	)
	if err != nil {
		return errors.New().Wrap(ErrStorageRecord, err)
	}

	return nil
}

func (r *repository) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		r.logger.Debug().Err(err).Msg("Failed to checkpoint status database")
	}

	if err := r.db.Close(); err != nil {
		return errors.New().WithData(ErrStorageClose, struct {
			Phase string
			Error string
		}{
			Phase: "close_database",
			Error: err.Error(),
		})
	}

	return nil
}

// Load reads the last snapshot recorded in the database at path.
func Load(ctx context.Context, path string) (*Snapshot, error) {
	errFactory := errors.New()

	if path == "" {
		return nil, errFactory.New(ErrInvalidDBPath)
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, errFactory.WithData(ErrNoStatus, path)
		}
		return nil, errFactory.Wrap(ErrStorageLoad, err)
	}

	db, err := sql.Open("sqlite3", path+"?mode=ro&_busy_timeout=1000")
	if err != nil {
		return nil, errFactory.Wrap(ErrStorageLoad, err)
	}
	defer db.Close()

	exists, err := TableExists(ctx, db, "status")
	if err != nil {
		return nil, errFactory.Wrap(ErrStorageLoad, err)
	}
	if !exists {
		return nil, errFactory.WithData(ErrNoStatus, path)
	}

	var (
		s                                     Snapshot
		enabled, tempValid, failSafe          int
		lastErrorAt, lastRead, lastWrite, upd int64
	)
	err = db.QueryRowContext(ctx, selectStatusSQL).Scan(
		&s.State,
		&enabled,
		&s.Temperature,
		&s.Raw,
		&tempValid,
		&s.Duty,
		&s.DutyPercent,
		&failSafe,
		&s.Failures,
		&s.LastError,
		&lastErrorAt,
		&s.ConfigError,
		&lastRead,
		&lastWrite,
		&upd,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errFactory.WithData(ErrNoStatus, path)
	}
	if err != nil {
		return nil, errFactory.Wrap(ErrStorageLoad, err)
	}

	s.Enabled = enabled == 1
	s.TempValid = tempValid == 1
	s.FailSafe = failSafe == 1
	s.LastErrorAt = fromUnixNano(lastErrorAt)
	s.LastReadAt = fromUnixNano(lastRead)
	s.LastWriteAt = fromUnixNano(lastWrite)
	s.UpdatedAt = fromUnixNano(upd)

	return &s, nil
}

func unixNano(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func fromUnixNano(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n)
}
