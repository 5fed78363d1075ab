package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/j-veylop/gateway-console/internal/logger"
	"github.com/j-veylop/gateway-console/internal/models"
)

// InsertSyncRecord journals a completed sync cycle.
func (db *DB) InsertSyncRecord(rec *models.SyncRecord) error {
	query := `
		INSERT INTO sync_cycles (
			cycle, started_at, duration_ms, outcome, stats_error, projects_error
		) VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := db.ExecContext(context.Background(), query,
		int64(rec.Cycle),
		formatTime(rec.StartedAt),
		rec.DurationMs,
		rec.Outcome,
		nullString(rec.StatsError),
		nullString(rec.ProjectsError),
	)
	if err != nil {
		return fmt.Errorf("failed to insert sync record: %w", err)
	}

	id, err := result.LastInsertId()
	if err == nil {
		rec.ID = id
	}

	return nil
}

// GetRecentSyncRecords returns the most recent cycles, newest first.
func (db *DB) GetRecentSyncRecords(limit int) ([]models.SyncRecord, error) {
	query := `
		SELECT id, cycle, started_at, duration_ms, outcome, stats_error, projects_error
		FROM sync_cycles
		ORDER BY id DESC
		LIMIT ?
	`

	rows, err := db.QueryContext(context.Background(), query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query sync records: %w", err)
	}
	defer closeRows(rows)

	var records []models.SyncRecord
	for rows.Next() {
		var rec models.SyncRecord
		var cycle int64
		var startedAt string
		var statsErr, projectsErr sql.NullString

		err := rows.Scan(
			&rec.ID,
			&cycle,
			&startedAt,
			&rec.DurationMs,
			&rec.Outcome,
			&statsErr,
			&projectsErr,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sync record: %w", err)
		}

		rec.Cycle = uint64(cycle)
		rec.StartedAt = parseTime(startedAt)
		rec.StatsError = statsErr.String
		rec.ProjectsError = projectsErr.String
		records = append(records, rec)
	}

	return records, rows.Err()
}

// GetSyncHealth summarizes every journaled cycle.
func (db *DB) GetSyncHealth() (*models.SyncHealth, error) {
	query := `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN outcome = 'ok' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN outcome = 'partial' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN outcome = 'failed' THEN 1 ELSE 0 END), 0),
			COALESCE(MAX(CASE WHEN outcome = 'ok' THEN started_at END), ''),
			COALESCE(MAX(CASE WHEN outcome != 'ok' THEN started_at END), ''),
			COALESCE(AVG(duration_ms), 0)
		FROM sync_cycles
		WHERE outcome != 'discarded'
	`

	var h models.SyncHealth
	var lastOK, lastFail string
	var avgMs float64
	err := db.QueryRowContext(context.Background(), query).Scan(
		&h.Cycles,
		&h.OK,
		&h.Partial,
		&h.Failed,
		&lastOK,
		&lastFail,
		&avgMs,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query sync health: %w", err)
	}

	h.LastSuccess = parseTime(lastOK)
	h.LastFailure = parseTime(lastFail)
	h.AvgDuration = time.Duration(avgMs * float64(time.Millisecond))

	return &h, nil
}

// InsertStatsSample journals a stats snapshot.
func (db *DB) InsertStatsSample(sample *models.StatsSample) error {
	query := `
		INSERT INTO stats_samples (timestamp, total_requests, avg_latency_ms, top_model)
		VALUES (?, ?, ?, ?)
	`

	timestamp := sample.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	result, err := db.ExecContext(context.Background(), query,
		formatTime(timestamp),
		sample.TotalRequests,
		sample.AvgLatencyMs,
		nullString(sample.TopModel),
	)
	if err != nil {
		return fmt.Errorf("failed to insert stats sample: %w", err)
	}

	id, err := result.LastInsertId()
	if err == nil {
		sample.ID = id
	}

	return nil
}

// GetRecentStatsSamples returns up to limit samples, oldest first.
func (db *DB) GetRecentStatsSamples(limit int) ([]models.StatsSample, error) {
	query := `
		SELECT id, timestamp, total_requests, avg_latency_ms, top_model
		FROM (
			SELECT * FROM stats_samples ORDER BY id DESC LIMIT ?
		)
		ORDER BY id ASC
	`

	rows, err := db.QueryContext(context.Background(), query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query stats samples: %w", err)
	}
	defer closeRows(rows)

	var samples []models.StatsSample
	for rows.Next() {
		var s models.StatsSample
		var timestamp string
		var topModel sql.NullString

		if err := rows.Scan(&s.ID, &timestamp, &s.TotalRequests, &s.AvgLatencyMs, &topModel); err != nil {
			return nil, fmt.Errorf("failed to scan stats sample: %w", err)
		}

		s.Timestamp = parseTime(timestamp)
		s.TopModel = topModel.String
		samples = append(samples, s)
	}

	return samples, rows.Err()
}

// GetRequestDeltas returns how many requests arrived between consecutive
// samples, oldest first. A counter that went backwards (gateway restart)
// yields zero for that step.
func (db *DB) GetRequestDeltas(limit int) ([]float64, error) {
	query := `
		SELECT delta FROM (
			SELECT id,
				MAX(total_requests - LAG(total_requests) OVER (ORDER BY id), 0) AS delta
			FROM stats_samples
		)
		WHERE delta IS NOT NULL
		ORDER BY id DESC
		LIMIT ?
	`

	rows, err := db.QueryContext(context.Background(), query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query request deltas: %w", err)
	}
	defer closeRows(rows)

	var deltas []float64
	for rows.Next() {
		var d float64
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("failed to scan request delta: %w", err)
		}
		deltas = append(deltas, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Rows come newest first.
	for i, j := 0, len(deltas)-1; i < j; i, j = i+1, j-1 {
		deltas[i], deltas[j] = deltas[j], deltas[i]
	}
	return deltas, nil
}

// PruneStatsSamples keeps only the newest keep samples.
func (db *DB) PruneStatsSamples(keep int) (int64, error) {
	query := `
		DELETE FROM stats_samples
		WHERE id NOT IN (SELECT id FROM stats_samples ORDER BY id DESC LIMIT ?)
	`

	result, err := db.ExecContext(context.Background(), query, keep)
	if err != nil {
		return 0, fmt.Errorf("failed to prune stats samples: %w", err)
	}
	return result.RowsAffected()
}

// InsertMutation journals a toggle or create attempt.
func (db *DB) InsertMutation(rec *models.MutationRecord) error {
	query := `
		INSERT INTO mutations (timestamp, op, target, ok, error)
		VALUES (?, ?, ?, ?, ?)
	`

	timestamp := rec.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	result, err := db.ExecContext(context.Background(), query,
		formatTime(timestamp),
		rec.Op,
		nullString(rec.Target),
		rec.OK,
		nullString(rec.Error),
	)
	if err != nil {
		return fmt.Errorf("failed to insert mutation: %w", err)
	}

	id, err := result.LastInsertId()
	if err == nil {
		rec.ID = id
	}

	return nil
}

// GetRecentMutations returns the most recent mutations, newest first.
func (db *DB) GetRecentMutations(limit int) ([]models.MutationRecord, error) {
	query := `
		SELECT id, timestamp, op, target, ok, error
		FROM mutations
		ORDER BY id DESC
		LIMIT ?
	`

	rows, err := db.QueryContext(context.Background(), query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query mutations: %w", err)
	}
	defer closeRows(rows)

	var records []models.MutationRecord
	for rows.Next() {
		var rec models.MutationRecord
		var timestamp string
		var target, errStr sql.NullString

		if err := rows.Scan(&rec.ID, &timestamp, &rec.Op, &target, &rec.OK, &errStr); err != nil {
			return nil, fmt.Errorf("failed to scan mutation: %w", err)
		}

		rec.Timestamp = parseTime(timestamp)
		rec.Target = target.String
		rec.Error = errStr.String
		records = append(records, rec)
	}

	return records, rows.Err()
}

func closeRows(rows *sql.Rows) {
	if err := rows.Close(); err != nil {
		logger.Error("failed to close rows", "error", err)
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
