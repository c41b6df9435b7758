package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/EternisAI/silo-license/internal/licenses"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

const licenseColumns = `id, "key", owner, created_at, expires_at, revoked, note`

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Find(ctx context.Context, key string) (licenses.License, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+licenseColumns+` FROM licenses WHERE "key" = $1`, key)
	l, err := scanLicense(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return licenses.License{}, licenses.ErrNotFound
		}
		return licenses.License{}, fmt.Errorf("query license: %w", err)
	}
	return l, nil
}

func (s *Store) Insert(ctx context.Context, license licenses.License) (licenses.License, error) {
	id, err := uuid.Parse(license.ID)
	if err != nil {
		return licenses.License{}, fmt.Errorf("invalid license id: %w", err)
	}

	row := s.pool.QueryRow(ctx, `
		INSERT INTO licenses (id, "key", owner, created_at, expires_at, revoked, note)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+licenseColumns,
		pgtype.UUID{Bytes: id, Valid: true},
		license.Key,
		license.Owner,
		pgtype.Timestamptz{Time: license.CreatedAt, Valid: true},
		pgtype.Timestamptz{Time: license.ExpiresAt, Valid: true},
		license.Revoked,
		pgtype.Text{String: license.Note, Valid: license.Note != ""},
	)
	created, err := scanLicense(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return licenses.License{}, licenses.ErrDuplicateKey
		}
		return licenses.License{}, fmt.Errorf("insert license: %w", err)
	}
	return created, nil
}

func (s *Store) Update(ctx context.Context, license licenses.License) (licenses.License, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE licenses SET revoked = revoked OR $2
		WHERE "key" = $1
		RETURNING `+licenseColumns,
		license.Key, license.Revoked,
	)
	updated, err := scanLicense(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return licenses.License{}, licenses.ErrNotFound
		}
		return licenses.License{}, fmt.Errorf("update license: %w", err)
	}
	return updated, nil
}

func (s *Store) List(ctx context.Context) ([]licenses.License, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+licenseColumns+` FROM licenses ORDER BY created_at, "key"`)
	if err != nil {
		return nil, fmt.Errorf("list licenses: %w", err)
	}
	defer rows.Close()

	var result []licenses.License
	for rows.Next() {
		l, err := scanLicense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan license: %w", err)
		}
		result = append(result, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list licenses: %w", err)
	}
	return result, nil
}

func scanLicense(row pgx.Row) (licenses.License, error) {
	var (
		id        pgtype.UUID
		l         licenses.License
		createdAt pgtype.Timestamptz
		expiresAt pgtype.Timestamptz
		note      pgtype.Text
	)
	if err := row.Scan(&id, &l.Key, &l.Owner, &createdAt, &expiresAt, &l.Revoked, &note); err != nil {
		return licenses.License{}, err
	}

	l.ID = uuid.UUID(id.Bytes).String()
	l.CreatedAt = createdAt.Time.UTC()
	l.ExpiresAt = expiresAt.Time.UTC()
	l.Note = note.String
	return l, nil
}
