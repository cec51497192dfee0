package repository

import (
	"errors"
	"strings"
)

// Sentinel kinds for storage errors.
var (
	ErrNotFound          = errors.New("record not found")
	ErrDuplicateFeedback = errors.New("feedback already recorded for this analysis")
	ErrStoragePermission = errors.New("storage permission denied")
	ErrLocked            = errors.New("database is held by another process")
)

// SQLite primary result codes.
const (
	sqlitePerm       = 3
	sqliteBusy       = 5
	sqliteReadOnly   = 8
	sqliteConstraint = 19
	sqliteAuth       = 23
)

func sqliteCode(err error) int {
	var coder interface{ Code() int }
	if errors.As(err, &coder) {
		return coder.Code() & 0xff
	}
	return 0
}

func isConstraint(err error) bool {
	if err == nil {
		return false
	}
	return sqliteCode(err) == sqliteConstraint || strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func isPermission(err error) bool {
	if err == nil {
		return false
	}
	switch sqliteCode(err) {
	case sqlitePerm, sqliteReadOnly, sqliteAuth:
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "readonly database") || strings.Contains(msg, "permission denied")
}

func isBusy(err error) bool {
	if err == nil {
		return false
	}
	return sqliteCode(err) == sqliteBusy || strings.Contains(err.Error(), "database is locked")
}
