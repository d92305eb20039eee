package store

import (
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
)

// NoCode is used when the failure did not come from the SQLite engine
const NoCode = -1

// DBError wraps a storage failure with the SQLite result code
type DBError struct {
	Op      string
	Message string
	Code    int
	Err     error
}

func (e *DBError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *DBError) Unwrap() error {
	return e.Err
}

func dbError(op string, err error) *DBError {
	code := NoCode
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		code = int(sqliteErr.Code)
	}
	return &DBError{Op: op, Message: err.Error(), Code: code, Err: err}
}
