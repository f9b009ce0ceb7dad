package db

import "errors"

// Sentinel errors for database operations.
var (
	ErrKeyNotFound   = errors.New("db: key not found")
	ErrIndexNotFound = errors.New("db: index not found")
	ErrIndexExists   = errors.New("db: index already exists")
	// ErrConnection matches any ConnectionError via errors.Is.
	ErrConnection = errors.New("db: connection error")
)

// Op constants map to Redis command names for error context.
const (
	OpConnect     = "CONNECT"
	OpPing        = "PING"
	OpCreateIndex = "FT.CREATE"
	OpDropIndex   = "FT.DROPINDEX"
	OpIndexInfo   = "FT.INFO"
	OpSearch      = "FT.SEARCH"
	OpJSONSet     = "JSON.SET"
	OpJSONGet     = "JSON.GET"
	OpDel         = "DEL"
	OpHGetAll     = "HGETALL"
	OpHSet        = "HSET"
	OpExists      = "EXISTS"
)

// Error wraps a server-side error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

// ConnectionError reports that the engine could not be reached at all
// (dial failure, closed connection, network timeout).
type ConnectionError struct {
	Op  string
	Err error
}

func (e *ConnectionError) Error() string { return e.Op + ": connection error: " + e.Err.Error() }
func (e *ConnectionError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrConnection) true for every ConnectionError.
func (e *ConnectionError) Is(target error) bool { return target == ErrConnection }
