package status

import "codeberg.org/mutker/fancontrol/internal/errors"

const (
	ErrInvalidDBPath = errors.ErrorCode("status_invalid_db_path")
	ErrInvalidStatus = errors.ErrorCode("status_invalid_snapshot")
	ErrNoStatus      = errors.ErrorCode("status_not_reported")

	ErrSchemaInitFailed       = errors.ErrorCode("status_schema_init_failed")
	ErrSchemaValidationFailed = errors.ErrorCode("status_schema_validation_failed")
	ErrSchemaMigrationFailed  = errors.ErrorCode("status_schema_migration_failed")

	ErrStorageInit   = errors.ErrInitStatus
	ErrStorageRecord = errors.ErrRecordStatus
	ErrStorageLoad   = errors.ErrLoadStatus
	ErrStorageClose  = errors.ErrCloseStatus

	ErrOperationTimeout = errors.ErrTimeout
)
