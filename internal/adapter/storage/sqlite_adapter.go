package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/rl1809/banko/internal/core/domain"
	"github.com/rl1809/banko/internal/port"
)

//go:embed schema_sqlite.sql
var sqliteSchema string

// SQLiteAdapter stores drawn numbers and claims in a single SQLite file.
// Timestamps are kept as unix microseconds.
type SQLiteAdapter struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens (or creates) the database at path and applies the schema.
func OpenSQLite(path string) (*SQLiteAdapter, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	// one writer at a time avoids SQLITE_BUSY
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return NewSQLiteAdapter(db), nil
}

func NewSQLiteAdapter(db *sql.DB) *SQLiteAdapter {
	return &SQLiteAdapter{db: db, now: time.Now}
}

func (s *SQLiteAdapter) Close() error {
	return s.db.Close()
}

func (s *SQLiteAdapter) Append(ctx context.Context, value int) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO numbers (value, drawn_at) VALUES (?, ?)`,
		value, s.now().UnixMicro(),
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return 0, port.ErrDuplicateValue
		}
		return 0, fmt.Errorf("insert number: %w", err)
	}
	return result.LastInsertId()
}

func (s *SQLiteAdapter) AllDrawn(ctx context.Context) ([]domain.DrawnNumber, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, value, drawn_at FROM numbers ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query numbers: %w", err)
	}
	return scanSQLiteNumbers(rows)
}

func (s *SQLiteAdapter) DrawnBetween(ctx context.Context, from, to time.Time) ([]domain.DrawnNumber, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, value, drawn_at FROM numbers
		WHERE drawn_at >= ? AND drawn_at < ?
		ORDER BY id ASC`,
		from.UnixMicro(), to.UnixMicro(),
	)
	if err != nil {
		return nil, fmt.Errorf("query numbers: %w", err)
	}
	return scanSQLiteNumbers(rows)
}

func scanSQLiteNumbers(rows *sql.Rows) ([]domain.DrawnNumber, error) {
	defer rows.Close()

	numbers := []domain.DrawnNumber{}
	for rows.Next() {
		var n domain.DrawnNumber
		var drawnAt int64
		if err := rows.Scan(&n.ID, &n.Value, &drawnAt); err != nil {
			return nil, fmt.Errorf("scan number: %w", err)
		}
		n.DrawnAt = time.UnixMicro(drawnAt)
		numbers = append(numbers, n)
	}
	return numbers, rows.Err()
}

func (s *SQLiteAdapter) RecordClaim(ctx context.Context, name string, claimType domain.ClaimType) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO claims (name, claim_type, recorded_at) VALUES (?, ?, ?)`,
		name, int(claimType), s.now().UnixMicro(),
	)
	if err != nil {
		return 0, fmt.Errorf("insert claim: %w", err)
	}
	return result.LastInsertId()
}

func (s *SQLiteAdapter) ListClaims(ctx context.Context) ([]domain.Claim, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, claim_type, recorded_at FROM claims ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("query claims: %w", err)
	}
	defer rows.Close()

	claims := []domain.Claim{}
	for rows.Next() {
		var c domain.Claim
		var claimType int
		var recordedAt int64
		if err := rows.Scan(&c.ID, &c.ClaimantName, &claimType, &recordedAt); err != nil {
			return nil, fmt.Errorf("scan claim: %w", err)
		}
		c.Type = domain.ClaimType(claimType)
		c.RecordedAt = time.UnixMicro(recordedAt)
		claims = append(claims, c)
	}
	return claims, rows.Err()
}
