// Package sqlstore implements storage.Store on database/sql. The SQLite and
// PostgreSQL packages open the database, run their own schema and wrap a
// Store configured with their Dialect.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/mmynk/splitcheck/internal/storage"
)

// Ensure Store implements storage.Store
var _ storage.Store = (*Store)(nil)

// Dialect captures the differences between supported databases.
type Dialect struct {
	// Name prefixes connectivity errors.
	Name string

	// NumberedParams rewrites ? placeholders to $1, $2, ...
	NumberedParams bool

	// LockRow is appended to the session SELECT inside a join transaction.
	LockRow string
}

var (
	SQLite   = Dialect{Name: "sqlite"}
	Postgres = Dialect{Name: "postgres", NumberedParams: true, LockRow: " FOR UPDATE"}
)

// Store is a database/sql backed storage.Store.
type Store struct {
	db      *sql.DB
	dialect Dialect
}

// New wraps an open database. The schema must already exist.
func New(db *sql.DB, dialect Dialect) *Store {
	return &Store{db: db, dialect: dialect}
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%s: %w", s.dialect.Name, err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// bind rewrites a query written with ? placeholders for the dialect.
func (s *Store) bind(query string) string {
	if !s.dialect.NumberedParams {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}
