package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/EternisAI/silo-license/internal/licenses"
	"github.com/jmoiron/sqlx"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// licenseRow maps 1:1 to the licenses table columns.
type licenseRow struct {
	ID        string         `db:"id"`
	Key       string         `db:"key"`
	Owner     string         `db:"owner"`
	CreatedAt time.Time      `db:"created_at"`
	ExpiresAt time.Time      `db:"expires_at"`
	Revoked   bool           `db:"revoked"`
	Note      sql.NullString `db:"note"`
}

func rowFromModel(l licenses.License) licenseRow {
	return licenseRow{
		ID:        l.ID,
		Key:       l.Key,
		Owner:     l.Owner,
		CreatedAt: l.CreatedAt.UTC(),
		ExpiresAt: l.ExpiresAt.UTC(),
		Revoked:   l.Revoked,
		Note:      sql.NullString{String: l.Note, Valid: l.Note != ""},
	}
}

func (r licenseRow) toModel() licenses.License {
	return licenses.License{
		ID:        r.ID,
		Key:       r.Key,
		Owner:     r.Owner,
		CreatedAt: r.CreatedAt.UTC(),
		ExpiresAt: r.ExpiresAt.UTC(),
		Revoked:   r.Revoked,
		Note:      r.Note.String,
	}
}

type Store struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Find(ctx context.Context, key string) (licenses.License, error) {
	var row licenseRow
	if err := s.db.GetContext(ctx, &row, `SELECT * FROM licenses WHERE "key" = ?`, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return licenses.License{}, licenses.ErrNotFound
		}
		return licenses.License{}, fmt.Errorf("get license: %w", err)
	}
	return row.toModel(), nil
}

func (s *Store) Insert(ctx context.Context, license licenses.License) (licenses.License, error) {
	const q = `INSERT INTO licenses
		(id, "key", owner, created_at, expires_at, revoked, note)
		VALUES
		(:id, :key, :owner, :created_at, :expires_at, :revoked, :note)`

	if _, err := s.db.NamedExecContext(ctx, q, rowFromModel(license)); err != nil {
		if isUniqueViolation(err) {
			return licenses.License{}, licenses.ErrDuplicateKey
		}
		return licenses.License{}, fmt.Errorf("insert license: %w", err)
	}
	return s.Find(ctx, license.Key)
}

func (s *Store) Update(ctx context.Context, license licenses.License) (licenses.License, error) {
	result, err := s.db.ExecContext(ctx,
		`UPDATE licenses SET revoked = (revoked OR ?) WHERE "key" = ?`,
		license.Revoked, license.Key)
	if err != nil {
		return licenses.License{}, fmt.Errorf("update license: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return licenses.License{}, fmt.Errorf("update license: %w", err)
	}
	if n == 0 {
		return licenses.License{}, licenses.ErrNotFound
	}
	return s.Find(ctx, license.Key)
}

func (s *Store) List(ctx context.Context) ([]licenses.License, error) {
	var rows []licenseRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT * FROM licenses ORDER BY created_at, "key"`); err != nil {
		return nil, fmt.Errorf("list licenses: %w", err)
	}

	result := make([]licenses.License, len(rows))
	for i, r := range rows {
		result[i] = r.toModel()
	}
	return result, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	code := sqliteErr.Code()
	return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
}
