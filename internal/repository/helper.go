package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// querier is the subset of database/sql shared by *sql.DB and *sql.Tx.
// Repositories run against the transaction when one is attached via WithTx,
// otherwise against the plain connection.
type querier interface {
	Query(query string, args ...any) (*sql.Rows, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	Exec(query string, args ...any) (sql.Result, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// DateFormat is the storage format for DATE columns.
const DateFormat = "2006-01-02"

// ParseTime parses a date string in "2006-01-02" or RFC3339 format.
func ParseTime(str string) (time.Time, error) {
	returnTime, err := time.Parse(DateFormat, str)
	if err != nil {
		returnTime, err = time.Parse(time.RFC3339, str)
		if err != nil {
			return time.Time{}, fmt.Errorf("failed to parse date: %w", err)
		}
	}
	return returnTime.UTC(), nil
}

// FormatDate renders a time for a DATE column.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateFormat)
}

// ParseTimestamp parses a DATETIME column value. SQLite's CURRENT_TIMESTAMP
// produces "2006-01-02 15:04:05"; values written by this application use
// RFC3339.
func ParseTimestamp(str string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02 15:04:05", time.RFC3339, DateFormat} {
		if t, err := time.Parse(layout, str); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("failed to parse timestamp %q", str)
}
