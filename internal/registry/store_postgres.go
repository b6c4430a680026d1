package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists config versions in the connector_config_versions
// table. A partial unique index on (pipeline_id, target) WHERE active backs
// the single-active invariant at the database level.
type PostgresStore struct {
	pool *pgxpool.Pool
}

var _ Store = (*PostgresStore)(nil)

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Save(ctx context.Context, v ConfigVersion) (ConfigVersion, error) {
	config, err := json.Marshal(v.Config)
	if err != nil {
		return ConfigVersion{}, fmt.Errorf("marshal connector config: %w", err)
	}
	// MAX+1 inside the insert keeps version assignment atomic.
	row := s.pool.QueryRow(ctx, `
		INSERT INTO connector_config_versions (
			id, pipeline_id, target, version, config, active,
			comment, created_by, created_at
		)
		SELECT $1, $2, $3, COALESCE(MAX(version), 0) + 1, $4, FALSE, $5, $6, $7
		FROM connector_config_versions
		WHERE pipeline_id = $2 AND target = $3
		RETURNING version
	`, v.ID, v.PipelineID, v.Target, config, v.Comment, v.CreatedBy, v.CreatedAt)
	if err := row.Scan(&v.Version); err != nil {
		return ConfigVersion{}, fmt.Errorf("insert config version: %w", err)
	}
	v.Active = false
	return v, nil
}

func (s *PostgresStore) List(ctx context.Context, pipelineID uuid.UUID, target Target) ([]ConfigVersion, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, pipeline_id, target, version, config, active,
		       comment, created_by, created_at
		FROM connector_config_versions
		WHERE pipeline_id = $1 AND target = $2
		ORDER BY version DESC
	`, pipelineID, target)
	if err != nil {
		return nil, fmt.Errorf("query config versions: %w", err)
	}
	defer rows.Close()

	var versions []ConfigVersion
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

func (s *PostgresStore) Get(ctx context.Context, pipelineID uuid.UUID, target Target, version int) (ConfigVersion, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, pipeline_id, target, version, config, active,
		       comment, created_by, created_at
		FROM connector_config_versions
		WHERE pipeline_id = $1 AND target = $2 AND version = $3
	`, pipelineID, target, version)
	v, err := scanVersion(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return ConfigVersion{}, ErrNotFound
	}
	return v, err
}

func (s *PostgresStore) Active(ctx context.Context, pipelineID uuid.UUID, target Target) (ConfigVersion, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, pipeline_id, target, version, config, active,
		       comment, created_by, created_at
		FROM connector_config_versions
		WHERE pipeline_id = $1 AND target = $2 AND active
	`, pipelineID, target)
	v, err := scanVersion(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return ConfigVersion{}, ErrNoActive
	}
	return v, err
}

func (s *PostgresStore) SetActive(ctx context.Context, pipelineID uuid.UUID, target Target, version int) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin activation tx: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		UPDATE connector_config_versions SET active = FALSE
		WHERE pipeline_id = $1 AND target = $2 AND active
	`, pipelineID, target)
	if err != nil {
		return fmt.Errorf("deactivate config versions: %w", err)
	}

	tag, err := tx.Exec(ctx, `
		UPDATE connector_config_versions SET active = TRUE
		WHERE pipeline_id = $1 AND target = $2 AND version = $3
	`, pipelineID, target, version)
	if err != nil {
		return fmt.Errorf("activate config version: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit activation tx: %w", err)
	}
	return nil
}

func scanVersion(row pgx.Row) (ConfigVersion, error) {
	var (
		v      ConfigVersion
		config []byte
	)
	err := row.Scan(&v.ID, &v.PipelineID, &v.Target, &v.Version, &config,
		&v.Active, &v.Comment, &v.CreatedBy, &v.CreatedAt)
	if err != nil {
		return ConfigVersion{}, err
	}
	if err := json.Unmarshal(config, &v.Config); err != nil {
		return ConfigVersion{}, fmt.Errorf("decode connector config: %w", err)
	}
	return v, nil
}
