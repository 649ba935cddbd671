// Package kvterr defines the error taxonomy shared by the KVT engine and
// the graph adapter built on top of it.
package kvterr

import (
	"fmt"

	"github.com/pingcap/errors"
)

// Code enumerates every condition the engine or the adapter can report.
// SUCCESS is never itself returned as an error; it exists only so zero
// value comparisons on a stored Code read as "no error" in logs.
type Code int

const (
	SUCCESS Code = iota
	KVTNotInitialized
	TableAlreadyExists
	TableNotFound
	InvalidPartitionMethod
	TransactionNotFound
	TransactionAlreadyRunning
	KeyNotFound
	KeyIsDeleted
	KeyIsLocked
	TransactionHasStaleData
	OneShotWriteNotAllowed
	OneShotDeleteNotAllowed
	BatchNotFullySuccess
	UnknownError
)

var codeNames = map[Code]string{
	SUCCESS:                   "SUCCESS",
	KVTNotInitialized:         "KVT_NOT_INITIALIZED",
	TableAlreadyExists:        "TABLE_ALREADY_EXISTS",
	TableNotFound:             "TABLE_NOT_FOUND",
	InvalidPartitionMethod:    "INVALID_PARTITION_METHOD",
	TransactionNotFound:       "TRANSACTION_NOT_FOUND",
	TransactionAlreadyRunning: "TRANSACTION_ALREADY_RUNNING",
	KeyNotFound:               "KEY_NOT_FOUND",
	KeyIsDeleted:              "KEY_IS_DELETED",
	KeyIsLocked:               "KEY_IS_LOCKED",
	TransactionHasStaleData:   "TRANSACTION_HAS_STALE_DATA",
	OneShotWriteNotAllowed:    "ONE_SHOT_WRITE_NOT_ALLOWED",
	OneShotDeleteNotAllowed:   "ONE_SHOT_DELETE_NOT_ALLOWED",
	BatchNotFullySuccess:      "BATCH_NOT_FULLY_SUCCESS",
	UnknownError:              "UNKNOWN_ERROR",
}

func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return "UNKNOWN_ERROR"
}

// Retryable reports whether c classifies as a conflict error a caller
// may retry. The façade's ExecuteWithRetry does not consult it: it
// retries only TransactionHasStaleData and KeyIsLocked.
func (c Code) Retryable() bool {
	switch c {
	case KeyIsLocked, TransactionHasStaleData, TransactionAlreadyRunning:
		return true
	default:
		return false
	}
}

// Error is the engine/adapter error type: a stable Code plus a
// pingcap/errors-wrapped cause carrying a stack trace and the
// table/key/tx context needed for diagnostics.
type Error struct {
	Code  Code
	msg   string
	trace error
}

func (e *Error) Error() string {
	if e.msg == "" {
		return e.Code.String()
	}
	return fmt.Sprintf("%s: %s", e.Code, e.msg)
}

// Unwrap exposes the traced cause so errors.Is/As keep working through
// pingcap/errors.
func (e *Error) Unwrap() error { return e.trace }

// New builds an Error for code with a formatted message, attaching a
// stack trace via pingcap/errors so logs can locate the failure site.
func New(code Code, format string, args ...interface{}) *Error {
	msg := fmt.Sprintf(format, args...)
	return &Error{Code: code, msg: msg, trace: errors.New(msg)}
}

// As extracts the Code from err, returning (UnknownError, false) if err
// is not one of ours.
func As(err error) (Code, bool) {
	if e, ok := err.(*Error); ok {
		return e.Code, true
	}
	return UnknownError, false
}

// CodeOf returns the Code carried by err, or SUCCESS if err is nil, or
// UnknownError if err is a foreign error.
func CodeOf(err error) Code {
	if err == nil {
		return SUCCESS
	}
	if code, ok := As(err); ok {
		return code
	}
	return UnknownError
}

// Stack returns a multi-line stack trace for err if it carries one
// (every *Error does, via pingcap/errors), or err.Error() otherwise.
func Stack(err error) string {
	if e, ok := err.(*Error); ok && e.trace != nil {
		return errors.ErrorStack(e.trace)
	}
	return err.Error()
}
