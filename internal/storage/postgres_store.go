package storage

import (
	"context"
	"errors"
	"fmt"
	"igmetrics/internal/models"
	"igmetrics/internal/providers"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const profilesSchema = `
CREATE TABLE IF NOT EXISTS profile_metrics (
	username             TEXT PRIMARY KEY,
	followers            BIGINT NOT NULL DEFAULT 0 CHECK (followers >= 0),
	following            BIGINT NOT NULL DEFAULT 0 CHECK (following >= 0),
	posts_count          BIGINT NOT NULL DEFAULT 0 CHECK (posts_count >= 0),
	bio                  TEXT NOT NULL DEFAULT '',
	engagement_rate      DOUBLE PRECISION CHECK (engagement_rate BETWEEN 0 AND 1),
	views                BIGINT NOT NULL DEFAULT 0,
	interactions         BIGINT NOT NULL DEFAULT 0,
	new_followers        BIGINT NOT NULL DEFAULT 0,
	messages             BIGINT NOT NULL DEFAULT 0,
	shares               BIGINT NOT NULL DEFAULT 0,
	screenshot_reference TEXT NOT NULL DEFAULT '',
	report_ru            TEXT NOT NULL DEFAULT '',
	report_en            TEXT NOT NULL DEFAULT '',
	report_generated_at  TIMESTAMPTZ,
	analyzed_at          TIMESTAMPTZ,
	created_at           TIMESTAMPTZ NOT NULL,
	updated_at           TIMESTAMPTZ NOT NULL,
	CHECK (updated_at >= created_at)
)`

const profileColumns = `username, followers, following, posts_count, bio, engagement_rate,
	views, interactions, new_followers, messages, shares, screenshot_reference,
	report_ru, report_en, report_generated_at, analyzed_at, created_at, updated_at`

// PostgresStore keeps profile records in PostgreSQL.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger providers.Logger
}

func NewPostgresStore(ctx context.Context, databaseURL string, logger providers.Logger) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, profilesSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	logger.Infof(providers.TypeApp, "PostgreSQL profile store ready")
	return &PostgresStore{pool: pool, logger: logger}, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) Load(ctx context.Context, username string) (*models.ProfileMetrics, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+profileColumns+` FROM profile_metrics WHERE username = $1`, username)
	p, err := scanProfile(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %q: %w", username, err)
	}
	return p, nil
}

// Save upserts the record. created_at of an existing row is never rewritten;
// a mismatch means the record was recreated under the same username.
func (s *PostgresStore) Save(ctx context.Context, p *models.ProfileMetrics) error {
	if err := p.Validate(); err != nil {
		return err
	}

	tag, err := s.pool.Exec(ctx, `
		INSERT INTO profile_metrics (`+profileColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		ON CONFLICT (username) DO UPDATE SET
			followers = EXCLUDED.followers,
			following = EXCLUDED.following,
			posts_count = EXCLUDED.posts_count,
			bio = EXCLUDED.bio,
			engagement_rate = EXCLUDED.engagement_rate,
			views = EXCLUDED.views,
			interactions = EXCLUDED.interactions,
			new_followers = EXCLUDED.new_followers,
			messages = EXCLUDED.messages,
			shares = EXCLUDED.shares,
			screenshot_reference = EXCLUDED.screenshot_reference,
			report_ru = EXCLUDED.report_ru,
			report_en = EXCLUDED.report_en,
			report_generated_at = EXCLUDED.report_generated_at,
			analyzed_at = EXCLUDED.analyzed_at,
			updated_at = EXCLUDED.updated_at
		WHERE profile_metrics.created_at = EXCLUDED.created_at`,
		p.Username, p.Followers, p.Following, p.PostsCount, p.Bio, p.EngagementRate,
		p.Views, p.Interactions, p.NewFollowers, p.Messages, p.Shares, p.ScreenshotRef,
		p.ReportRu, p.ReportEn, p.ReportGeneratedAt, p.AnalyzedAt, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return classifyPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrUsernameChanged
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, username string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM profile_metrics WHERE username = $1`, username)
	if err != nil {
		return classifyPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", models.ErrNotFound, username)
	}
	return nil
}

func (s *PostgresStore) DeleteAll(ctx context.Context) (int, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM profile_metrics`)
	if err != nil {
		return 0, classifyPgError(err)
	}
	return int(tag.RowsAffected()), nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*models.ProfileMetrics, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+profileColumns+` FROM profile_metrics ORDER BY username`)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	var out []*models.ProfileMetrics
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM profile_metrics`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count profiles: %w", err)
	}
	return n, nil
}

func scanProfile(row pgx.Row) (*models.ProfileMetrics, error) {
	var (
		p                    models.ProfileMetrics
		reportAt, analyzedAt *time.Time
	)
	err := row.Scan(
		&p.Username, &p.Followers, &p.Following, &p.PostsCount, &p.Bio, &p.EngagementRate,
		&p.Views, &p.Interactions, &p.NewFollowers, &p.Messages, &p.Shares, &p.ScreenshotRef,
		&p.ReportRu, &p.ReportEn, &reportAt, &analyzedAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.ReportGeneratedAt = reportAt
	p.AnalyzedAt = analyzedAt
	return &p, nil
}

// classifyPgError maps integrity violations (SQLSTATE class 23) to
// models.ErrPersistenceConflict.
func classifyPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && len(pgErr.Code) == 5 && pgErr.Code[:2] == "23" {
		return fmt.Errorf("%w: %s (%s)", models.ErrPersistenceConflict, pgErr.Message, pgErr.Code)
	}
	return err
}
