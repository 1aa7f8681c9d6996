package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/rl1809/banko/internal/core/domain"
	"github.com/rl1809/banko/internal/port"
)

const mysqlDuplicateEntry = 1062

//go:embed schema_mysql.sql
var mysqlSchema string

// MySQLAdapter expects a DSN with parseTime=true. Timestamps are stored in UTC.
type MySQLAdapter struct {
	db  *sql.DB
	now func() time.Time
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db, now: time.Now}
}

// EnsureSchema creates the tables if they are missing.
func (m *MySQLAdapter) EnsureSchema(ctx context.Context) error {
	for _, stmt := range strings.Split(mysqlSchema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := m.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

func (m *MySQLAdapter) Append(ctx context.Context, value int) (int64, error) {
	result, err := m.db.ExecContext(ctx,
		`INSERT INTO numbers (value, drawn_at) VALUES (?, ?)`,
		value, m.now().UTC(),
	)
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry {
			return 0, port.ErrDuplicateValue
		}
		return 0, fmt.Errorf("insert number: %w", err)
	}
	return result.LastInsertId()
}

func (m *MySQLAdapter) AllDrawn(ctx context.Context) ([]domain.DrawnNumber, error) {
	rows, err := m.db.QueryContext(ctx, `SELECT id, value, drawn_at FROM numbers ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query numbers: %w", err)
	}
	return scanMySQLNumbers(rows)
}

func (m *MySQLAdapter) DrawnBetween(ctx context.Context, from, to time.Time) ([]domain.DrawnNumber, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT id, value, drawn_at FROM numbers
		WHERE drawn_at >= ? AND drawn_at < ?
		ORDER BY id ASC`,
		from.UTC(), to.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("query numbers: %w", err)
	}
	return scanMySQLNumbers(rows)
}

func scanMySQLNumbers(rows *sql.Rows) ([]domain.DrawnNumber, error) {
	defer rows.Close()

	numbers := []domain.DrawnNumber{}
	for rows.Next() {
		var n domain.DrawnNumber
		if err := rows.Scan(&n.ID, &n.Value, &n.DrawnAt); err != nil {
			return nil, fmt.Errorf("scan number: %w", err)
		}
		numbers = append(numbers, n)
	}
	return numbers, rows.Err()
}

func (m *MySQLAdapter) RecordClaim(ctx context.Context, name string, claimType domain.ClaimType) (int64, error) {
	result, err := m.db.ExecContext(ctx,
		`INSERT INTO claims (name, claim_type, recorded_at) VALUES (?, ?, ?)`,
		name, int(claimType), m.now().UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("insert claim: %w", err)
	}
	return result.LastInsertId()
}

func (m *MySQLAdapter) ListClaims(ctx context.Context) ([]domain.Claim, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT id, name, claim_type, recorded_at
		FROM claims ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("query claims: %w", err)
	}
	defer rows.Close()

	claims := []domain.Claim{}
	for rows.Next() {
		var c domain.Claim
		var claimType int
		if err := rows.Scan(&c.ID, &c.ClaimantName, &claimType, &c.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan claim: %w", err)
		}
		c.Type = domain.ClaimType(claimType)
		claims = append(claims, c)
	}
	return claims, rows.Err()
}
