package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresKeyStore persists API keys in the api_keys table.
type PostgresKeyStore struct {
	pool *pgxpool.Pool
}

var _ KeyStore = (*PostgresKeyStore)(nil)

func NewPostgresKeyStore(pool *pgxpool.Pool) *PostgresKeyStore {
	return &PostgresKeyStore{pool: pool}
}

func (s *PostgresKeyStore) Create(ctx context.Context, key APIKey) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO api_keys (id, name, prefix, secret_hash, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, key.ID, key.Name, key.Prefix, key.Hash, key.CreatedBy, key.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert api key: %w", err)
	}
	return nil
}

func (s *PostgresKeyStore) GetByPrefix(ctx context.Context, prefix string) (APIKey, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, name, prefix, secret_hash, created_by, created_at, last_used_at, revoked_at
		FROM api_keys
		WHERE prefix = $1
	`, prefix)
	k, err := scanKey(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return APIKey{}, ErrNotFound
	}
	return k, err
}

func (s *PostgresKeyStore) List(ctx context.Context) ([]APIKey, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, prefix, secret_hash, created_by, created_at, last_used_at, revoked_at
		FROM api_keys
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list api keys: %w", err)
	}
	defer rows.Close()

	var keys []APIKey
	for rows.Next() {
		k, err := scanKey(rows)
		if err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

func (s *PostgresKeyStore) TouchLastUsed(ctx context.Context, id uuid.UUID, at time.Time) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE api_keys SET last_used_at = $2 WHERE id = $1
	`, id, at)
	if err != nil {
		return fmt.Errorf("touch api key: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresKeyStore) Revoke(ctx context.Context, id uuid.UUID, at time.Time) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE api_keys SET revoked_at = $2
		WHERE id = $1 AND revoked_at IS NULL
	`, id, at)
	if err != nil {
		return fmt.Errorf("revoke api key: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanKey(row pgx.Row) (APIKey, error) {
	var k APIKey
	err := row.Scan(&k.ID, &k.Name, &k.Prefix, &k.Hash,
		&k.CreatedBy, &k.CreatedAt, &k.LastUsedAt, &k.RevokedAt)
	if err != nil {
		return APIKey{}, err
	}
	return k, nil
}
