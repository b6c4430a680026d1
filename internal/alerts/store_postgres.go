package alerts

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists preferences in the alert_preferences table. The
// (user_id, pipeline_id) pair is unique with NULL pipeline_id as the global
// scope, handled by a coalescing unique index.
type PostgresStore struct {
	pool *pgxpool.Pool
}

var _ Store = (*PostgresStore)(nil)

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Upsert(ctx context.Context, pref Preference) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO alert_preferences (
			id, user_id, pipeline_id, channels, notify_on_failure,
			notify_on_recovery, failure_threshold, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id, COALESCE(pipeline_id, '00000000-0000-0000-0000-000000000000'::uuid))
		DO UPDATE SET
			channels = EXCLUDED.channels,
			notify_on_failure = EXCLUDED.notify_on_failure,
			notify_on_recovery = EXCLUDED.notify_on_recovery,
			failure_threshold = EXCLUDED.failure_threshold,
			updated_at = EXCLUDED.updated_at
	`, pref.ID, pref.UserID, pref.PipelineID, pref.Channels,
		pref.NotifyOnFailure, pref.NotifyOnRecovery, pref.FailureThreshold, pref.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert alert preference: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, userID string, pipelineID *uuid.UUID) (Preference, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, user_id, pipeline_id, channels, notify_on_failure,
		       notify_on_recovery, failure_threshold, updated_at
		FROM alert_preferences
		WHERE user_id = $1 AND pipeline_id IS NOT DISTINCT FROM $2
	`, userID, pipelineID)
	pref, err := scanPreference(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Preference{}, ErrNotFound
	}
	return pref, err
}

func (s *PostgresStore) ListByUser(ctx context.Context, userID string) ([]Preference, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, pipeline_id, channels, notify_on_failure,
		       notify_on_recovery, failure_threshold, updated_at
		FROM alert_preferences
		WHERE user_id = $1
		ORDER BY pipeline_id NULLS FIRST
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("query alert preferences: %w", err)
	}
	defer rows.Close()

	var prefs []Preference
	for rows.Next() {
		pref, err := scanPreference(rows)
		if err != nil {
			return nil, err
		}
		prefs = append(prefs, pref)
	}
	return prefs, rows.Err()
}

func (s *PostgresStore) Delete(ctx context.Context, userID string, pipelineID *uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM alert_preferences
		WHERE user_id = $1 AND pipeline_id IS NOT DISTINCT FROM $2
	`, userID, pipelineID)
	if err != nil {
		return fmt.Errorf("delete alert preference: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanPreference(row pgx.Row) (Preference, error) {
	var pref Preference
	err := row.Scan(&pref.ID, &pref.UserID, &pref.PipelineID, &pref.Channels,
		&pref.NotifyOnFailure, &pref.NotifyOnRecovery, &pref.FailureThreshold, &pref.UpdatedAt)
	if err != nil {
		return Preference{}, err
	}
	return pref, nil
}
