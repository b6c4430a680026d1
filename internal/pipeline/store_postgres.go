package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists pipelines in the pipelines table. Connector configs
// are stored as JSONB so new connector properties never need a migration.
type PostgresStore struct {
	pool *pgxpool.Pool
}

var _ Store = (*PostgresStore)(nil)

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Create(ctx context.Context, p Pipeline) error {
	source, dest, err := marshalConfigs(p)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO pipelines (
			id, name, source_config, destination_config, topics,
			status, created_by, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, p.ID, p.Name, source, dest, p.Topics,
		p.Status, p.CreatedBy, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert pipeline: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id uuid.UUID) (Pipeline, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, name, source_config, destination_config, topics,
		       status, created_by, created_at, updated_at
		FROM pipelines
		WHERE id = $1
	`, id)
	p, err := scanPipeline(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Pipeline{}, ErrNotFound
	}
	return p, err
}

func (s *PostgresStore) List(ctx context.Context) ([]Pipeline, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, source_config, destination_config, topics,
		       status, created_by, created_at, updated_at
		FROM pipelines
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query pipelines: %w", err)
	}
	defer rows.Close()

	var pipelines []Pipeline
	for rows.Next() {
		p, err := scanPipeline(rows)
		if err != nil {
			return nil, err
		}
		pipelines = append(pipelines, p)
	}
	return pipelines, rows.Err()
}

func (s *PostgresStore) Update(ctx context.Context, p Pipeline) error {
	source, dest, err := marshalConfigs(p)
	if err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx, `
		UPDATE pipelines
		SET name = $2, source_config = $3, destination_config = $4,
		    topics = $5, status = $6, updated_at = $7
		WHERE id = $1
	`, p.ID, p.Name, source, dest, p.Topics, p.Status, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update pipeline: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) UpdateStatus(ctx context.Context, id uuid.UUID, status Status, updatedAt time.Time) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE pipelines SET status = $2, updated_at = $3 WHERE id = $1
	`, id, status, updatedAt)
	if err != nil {
		return fmt.Errorf("update pipeline status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM pipelines WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete pipeline: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func marshalConfigs(p Pipeline) ([]byte, []byte, error) {
	source, err := json.Marshal(p.SourceConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal source config: %w", err)
	}
	dest, err := json.Marshal(p.DestinationConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal destination config: %w", err)
	}
	return source, dest, nil
}

func scanPipeline(row pgx.Row) (Pipeline, error) {
	var (
		p            Pipeline
		source, dest []byte
	)
	err := row.Scan(&p.ID, &p.Name, &source, &dest, &p.Topics,
		&p.Status, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return Pipeline{}, err
	}
	if err := json.Unmarshal(source, &p.SourceConfig); err != nil {
		return Pipeline{}, fmt.Errorf("decode source config: %w", err)
	}
	if err := json.Unmarshal(dest, &p.DestinationConfig); err != nil {
		return Pipeline{}, fmt.Errorf("decode destination config: %w", err)
	}
	return p, nil
}
