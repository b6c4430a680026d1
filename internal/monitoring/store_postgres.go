package monitoring

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists points in the pipeline_status_points table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

var _ Store = (*PostgresStore)(nil)

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Insert(ctx context.Context, points []Point) error {
	if len(points) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, p := range points {
		batch.Queue(`
			INSERT INTO pipeline_status_points (
				pipeline_id, state, tasks_total, tasks_running,
				tasks_failed, lag, recorded_at
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, p.PipelineID, p.State, p.TasksTotal, p.TasksRunning,
			p.TasksFailed, p.Lag, p.RecordedAt)
	}
	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()
	for range points {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("insert status point: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) Timeseries(ctx context.Context, pipelineID uuid.UUID, since time.Time, step time.Duration) ([]Bucket, error) {
	stepSeconds := int64(step / time.Second)
	if stepSeconds < 1 {
		stepSeconds = 1
	}
	rows, err := s.pool.Query(ctx, `
		SELECT
			to_timestamp(floor(extract(epoch FROM recorded_at) / $3) * $3) AS bucket,
			COUNT(*),
			COUNT(*) FILTER (WHERE state = 'running'),
			MAX(tasks_failed),
			MAX(lag)
		FROM pipeline_status_points
		WHERE pipeline_id = $1 AND recorded_at >= $2
		GROUP BY bucket
		ORDER BY bucket
	`, pipelineID, since, stepSeconds)
	if err != nil {
		return nil, fmt.Errorf("query timeseries: %w", err)
	}
	defer rows.Close()

	var buckets []Bucket
	for rows.Next() {
		var b Bucket
		if err := rows.Scan(&b.Start, &b.Samples, &b.Running, &b.TasksFailed, &b.MaxLag); err != nil {
			return nil, fmt.Errorf("scan timeseries bucket: %w", err)
		}
		buckets = append(buckets, b)
	}
	return buckets, rows.Err()
}

func (s *PostgresStore) Latest(ctx context.Context, pipelineID uuid.UUID) (Point, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT pipeline_id, state, tasks_total, tasks_running,
		       tasks_failed, lag, recorded_at
		FROM pipeline_status_points
		WHERE pipeline_id = $1
		ORDER BY recorded_at DESC
		LIMIT 1
	`, pipelineID)

	var p Point
	err := row.Scan(&p.PipelineID, &p.State, &p.TasksTotal, &p.TasksRunning,
		&p.TasksFailed, &p.Lag, &p.RecordedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Point{}, ErrNoData
	}
	if err != nil {
		return Point{}, fmt.Errorf("query latest status point: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) Summary(ctx context.Context) (Summary, error) {
	// DISTINCT ON picks each pipeline's newest point.
	rows, err := s.pool.Query(ctx, `
		SELECT DISTINCT ON (pipeline_id) state, tasks_failed
		FROM pipeline_status_points
		ORDER BY pipeline_id, recorded_at DESC
	`)
	if err != nil {
		return Summary{}, fmt.Errorf("query status summary: %w", err)
	}
	defer rows.Close()

	summary := Summary{ByState: make(map[string]int)}
	for rows.Next() {
		var (
			state       string
			tasksFailed int
		)
		if err := rows.Scan(&state, &tasksFailed); err != nil {
			return Summary{}, fmt.Errorf("scan status summary: %w", err)
		}
		summary.Pipelines++
		summary.ByState[state]++
		summary.TasksFailed += tasksFailed
	}
	return summary, rows.Err()
}

func (s *PostgresStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM pipeline_status_points WHERE recorded_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete expired status points: %w", err)
	}
	return tag.RowsAffected(), nil
}
