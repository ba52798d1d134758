package tabledb

import "errors"

var (
	ErrDuplicateKey   = errors.New("duplicate key")
	ErrDatabaseClosed = errors.New("database is closed")
	ErrDatabaseLocked = errors.New("database is locked by another process")

	ErrCorruptFile     = errors.New("db file is not a whole number of pages")
	ErrPageOutOfBounds = errors.New("page number out of bounds")
	ErrInvalidChild    = errors.New("invalid child page")
	ErrFlushNilPage    = errors.New("tried to flush unallocated page")
)
