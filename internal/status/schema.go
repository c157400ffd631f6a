package status

import (
	"context"
	"database/sql"

	"codeberg.org/mutker/fancontrol/internal/errors"
	"codeberg.org/mutker/fancontrol/internal/logger"
)

const (
	SchemaVersion = 1

	// The status table holds a single row, id 1, overwritten on every tick.
	createTablesSQL = `
	   CREATE TABLE IF NOT EXISTS schema_versions (
	       version     INTEGER PRIMARY KEY,
	       applied_at  TEXT NOT NULL
	   );
	   CREATE TABLE IF NOT EXISTS status (
	       id            INTEGER PRIMARY KEY CHECK (id = 1),
	       state         TEXT NOT NULL,
	       enabled       INTEGER NOT NULL CHECK (enabled IN (0, 1)),
	       temperature   REAL NOT NULL,
	       raw           INTEGER NOT NULL,
	       temp_valid    INTEGER NOT NULL CHECK (temp_valid IN (0, 1)),
	       duty          INTEGER NOT NULL CHECK (duty BETWEEN 0 AND 255),
	       duty_percent  REAL NOT NULL,
	       fail_safe     INTEGER NOT NULL CHECK (fail_safe IN (0, 1)),
	       failures      INTEGER NOT NULL,
	       last_error    TEXT NOT NULL,
	       last_error_at INTEGER NOT NULL,
	       config_error  TEXT NOT NULL,
	       last_read_at  INTEGER NOT NULL,
	       last_write_at INTEGER NOT NULL,
	       updated_at    INTEGER NOT NULL
	   );`

	upsertStatusSQL = `
    INSERT INTO status (
        id, state, enabled,
        temperature, raw, temp_valid,
        duty, duty_percent, fail_safe, failures,
        last_error, last_error_at, config_error,
        last_read_at, last_write_at, updated_at
    ) VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    ON CONFLICT(id) DO UPDATE SET
        state = excluded.state,
        enabled = excluded.enabled,
        temperature = excluded.temperature,
        raw = excluded.raw,
        temp_valid = excluded.temp_valid,
        duty = excluded.duty,
        duty_percent = excluded.duty_percent,
        fail_safe = excluded.fail_safe,
        failures = excluded.failures,
        last_error = excluded.last_error,
        last_error_at = excluded.last_error_at,
        config_error = excluded.config_error,
        last_read_at = excluded.last_read_at,
        last_write_at = excluded.last_write_at,
        updated_at = excluded.updated_at`

	selectStatusSQL = `
    SELECT state, enabled,
        temperature, raw, temp_valid,
        duty, duty_percent, fail_safe, failures,
        last_error, last_error_at, config_error,
        last_read_at, last_write_at, updated_at
    FROM status
    WHERE id = 1`
)

// InitSchema creates a new database schema with the current version
func InitSchema(db *sql.DB, log logger.Logger) error {
	errFactory := errors.New()

	tx, err := db.Begin()
	if err != nil {
		return errFactory.Wrap(ErrSchemaInitFailed, err)
	}

	committed := false
	defer func() {
		if !committed {
			if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
				log.Debug().Err(err).Msg("Failed to rollback transaction")
			}
		}
	}()

	if _, err := tx.Exec(createTablesSQL); err != nil {
		return errFactory.WithData(ErrSchemaInitFailed, struct {
			Phase string
			Error string
		}{
			Phase: "create_tables",
			Error: err.Error(),
		})
	}

	if _, err := tx.Exec(`
        INSERT INTO schema_versions (version, applied_at)
        VALUES (?, datetime('now'))
    `, SchemaVersion); err != nil {
		return errFactory.WithData(ErrSchemaInitFailed, struct {
			Phase string
			Error string
		}{
			Phase: "record_version",
			Error: err.Error(),
		})
	}

	if err := tx.Commit(); err != nil {
		return errFactory.Wrap(ErrSchemaInitFailed, err)
	}
	committed = true

	log.Debug().
		Int("version", SchemaVersion).
		Msg("Status schema initialized")

	return nil
}

// GetSchemaVersion returns the current schema version, 0 for an empty
// database.
func GetSchemaVersion(ctx context.Context, db *sql.DB) (int, error) {
	errFactory := errors.New()

	exists, err := TableExists(ctx, db, "schema_versions")
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, nil
	}

	var version int
	err = db.QueryRowContext(ctx, `
        SELECT version
        FROM schema_versions
        ORDER BY version DESC
        LIMIT 1
    `).Scan(&version)

	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, errFactory.WithData(ErrSchemaValidationFailed, struct {
			Phase string
			Error string
		}{
			Phase: "get_version",
			Error: err.Error(),
		})
	}

	return version, nil
}

// TableExists checks if a table exists
func TableExists(ctx context.Context, db *sql.DB, tableName string) (bool, error) {
	var exists bool
	err := db.QueryRowContext(ctx, `
        SELECT EXISTS (
            SELECT 1 FROM sqlite_master
            WHERE type='table' AND name=?
        )
    `, tableName).Scan(&exists)
	if err != nil {
		return false, errors.New().WithData(ErrSchemaValidationFailed, struct {
			Phase string
			Table string
			Error string
		}{
			Phase: "check_table_exists",
			Table: tableName,
			Error: err.Error(),
		})
	}

	return exists, nil
}
