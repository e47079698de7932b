package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/deepthink-labs/deepthink-engine/internal/models"
)

// ErrNotFound marks a lookup for an absent row
var ErrNotFound = errors.New("record not found")

// PostgresRepository implements Repository using PostgreSQL
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// PostgresConfig holds PostgreSQL connection configuration
type PostgresConfig struct {
	DSN          string
	MaxOpenConns int32
	MaxIdleConns int32
	MaxLifetime  time.Duration
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(ctx context.Context, cfg PostgresConfig) (*PostgresRepository, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}

	// Set pool configuration
	if cfg.MaxOpenConns > 0 {
		poolConfig.MaxConns = cfg.MaxOpenConns
	} else {
		poolConfig.MaxConns = 25 // default
	}

	if cfg.MaxIdleConns > 0 {
		poolConfig.MinConns = cfg.MaxIdleConns
	} else {
		poolConfig.MinConns = 5 // default
	}

	if cfg.MaxLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.MaxLifetime
	} else {
		poolConfig.MaxConnLifetime = 30 * time.Minute
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{pool: pool}, nil
}

// Ping checks database connectivity
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close closes the database connection pool
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

// SaveSession writes the immutable history record for a finished session
func (r *PostgresRepository) SaveSession(ctx context.Context, s *models.Session) error {
	answersJSON, err := json.Marshal(s.Answers)
	if err != nil {
		return fmt.Errorf("failed to marshal answers: %w", err)
	}

	analysisJSON, err := json.Marshal(s.Analysis)
	if err != nil {
		return fmt.Errorf("failed to marshal analysis: %w", err)
	}

	query := `
		INSERT INTO sessions (id, scenario_id, scenario_name, job_type, level, user_id, start_time, end_time, answers, score, analysis)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err = r.pool.Exec(ctx, query,
		s.ID,
		s.ScenarioID,
		s.ScenarioName,
		s.JobType,
		string(s.Level),
		s.UserID,
		s.StartTime,
		s.EndTime,
		answersJSON,
		s.Score,
		analysisJSON,
	)

	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}

// GetSession retrieves one history record by ID
func (r *PostgresRepository) GetSession(ctx context.Context, id string) (*models.Session, error) {
	query := `
		SELECT id, scenario_id, scenario_name, job_type, level, user_id, start_time, end_time, answers, score, analysis
		FROM sessions
		WHERE id = $1
	`

	s, err := scanSession(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return s, nil
}

// ListSessions returns a user's history, newest first
func (r *PostgresRepository) ListSessions(ctx context.Context, userID string, limit, offset int) ([]*models.Session, error) {
	query := `
		SELECT id, scenario_id, scenario_name, job_type, level, user_id, start_time, end_time, answers, score, analysis
		FROM sessions
		WHERE user_id = $1
		ORDER BY end_time DESC
	`
	args := []interface{}{userID}
	argNum := 2

	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argNum)
		args = append(args, limit)
		argNum++
	}
	if offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argNum)
		args = append(args, offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*models.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, s)
	}

	return sessions, rows.Err()
}

// ListSessionsByJobType returns a user's history for one field, newest first
func (r *PostgresRepository) ListSessionsByJobType(ctx context.Context, userID, jobType string) ([]*models.Session, error) {
	query := `
		SELECT id, scenario_id, scenario_name, job_type, level, user_id, start_time, end_time, answers, score, analysis
		FROM sessions
		WHERE user_id = $1 AND job_type = $2
		ORDER BY end_time DESC
	`

	rows, err := r.pool.Query(ctx, query, userID, jobType)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions by job type: %w", err)
	}
	defer rows.Close()

	var sessions []*models.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, s)
	}

	return sessions, rows.Err()
}

// GetFieldLevels aggregates mastery per job type. The level formula mirrors
// the history page: floor(total score / 100) + 1.
func (r *PostgresRepository) GetFieldLevels(ctx context.Context, userID string) ([]*models.FieldLevel, error) {
	query := `
		SELECT job_type, COALESCE(SUM(score), 0) AS total_xp
		FROM sessions
		WHERE user_id = $1
		GROUP BY job_type
		ORDER BY total_xp DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get field levels: %w", err)
	}
	defer rows.Close()

	var levels []*models.FieldLevel
	for rows.Next() {
		var fl models.FieldLevel
		if err := rows.Scan(&fl.JobType, &fl.TotalXP); err != nil {
			return nil, fmt.Errorf("failed to scan field level: %w", err)
		}
		fl.Level = fl.TotalXP/100 + 1
		levels = append(levels, &fl)
	}

	return levels, rows.Err()
}

// UpsertSubscription writes the per-user billing row
func (r *PostgresRepository) UpsertSubscription(ctx context.Context, sub *models.Subscription) error {
	query := `
		INSERT INTO subscriptions (user_id, customer_id, subscription_id, status, plan_name, current_period_end, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id) DO UPDATE
		SET customer_id = EXCLUDED.customer_id,
		    subscription_id = EXCLUDED.subscription_id,
		    status = EXCLUDED.status,
		    plan_name = EXCLUDED.plan_name,
		    current_period_end = EXCLUDED.current_period_end,
		    updated_at = EXCLUDED.updated_at
	`

	_, err := r.pool.Exec(ctx, query,
		sub.UserID,
		nullString(sub.CustomerID),
		nullString(sub.SubscriptionID),
		string(sub.Status),
		sub.PlanName,
		nullTime(sub.CurrentPeriodEnd),
		sub.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to upsert subscription: %w", err)
	}

	return nil
}

// GetSubscription retrieves the billing row for a user
func (r *PostgresRepository) GetSubscription(ctx context.Context, userID string) (*models.Subscription, error) {
	query := `
		SELECT user_id, customer_id, subscription_id, status, plan_name, current_period_end, updated_at
		FROM subscriptions
		WHERE user_id = $1
	`

	var sub models.Subscription
	var statusStr string
	var customerID, subscriptionID sql.NullString
	var currentPeriodEnd sql.NullTime

	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&sub.UserID,
		&customerID,
		&subscriptionID,
		&statusStr,
		&sub.PlanName,
		&currentPeriodEnd,
		&sub.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}

	sub.Status = models.SubscriptionStatus(statusStr)
	sub.CustomerID = customerID.String
	sub.SubscriptionID = subscriptionID.String
	if currentPeriodEnd.Valid {
		sub.CurrentPeriodEnd = &currentPeriodEnd.Time
	}

	return &sub, nil
}

// ActivateSubscription flips the row matching the provider's subscription ID
// to active. Called by the verified payment webhook.
func (r *PostgresRepository) ActivateSubscription(ctx context.Context, subscriptionID string) error {
	query := `
		UPDATE subscriptions
		SET status = 'active', updated_at = NOW()
		WHERE subscription_id = $1
	`

	result, err := r.pool.Exec(ctx, query, subscriptionID)
	if err != nil {
		return fmt.Errorf("failed to activate subscription: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// scanSession reads one history row
func scanSession(row pgx.Row) (*models.Session, error) {
	var s models.Session
	var levelStr string
	var answersJSON, analysisJSON []byte

	err := row.Scan(
		&s.ID,
		&s.ScenarioID,
		&s.ScenarioName,
		&s.JobType,
		&levelStr,
		&s.UserID,
		&s.StartTime,
		&s.EndTime,
		&answersJSON,
		&s.Score,
		&analysisJSON,
	)
	if err != nil {
		return nil, err
	}

	s.Level = models.ScenarioLevel(levelStr)

	if answersJSON != nil {
		if err := json.Unmarshal(answersJSON, &s.Answers); err != nil {
			return nil, fmt.Errorf("failed to unmarshal answers: %w", err)
		}
	}
	if analysisJSON != nil {
		if err := json.Unmarshal(analysisJSON, &s.Analysis); err != nil {
			return nil, fmt.Errorf("failed to unmarshal analysis: %w", err)
		}
	}

	return &s, nil
}

// Helper functions for nullable values

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
