package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

const forecastColumns = `id, name, author, bins, mass_pct, is_truth,
	truth_id, score, scored_at,
	metadata, created_at, updated_at`

func (s *PostgresStore) CreateForecast(ctx context.Context, f *Forecast) error {
	metadataJSON, _ := json.Marshal(f.Metadata)

	return s.pool.QueryRow(ctx, `
		INSERT INTO forecasts (name, author, bins, mass_pct, is_truth, metadata)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`,
		f.Name, f.Author, f.Bins, f.MassPct, f.IsTruth, metadataJSON,
	).Scan(&f.ID, &f.CreatedAt, &f.UpdatedAt)
}

func (s *PostgresStore) GetForecast(ctx context.Context, id uuid.UUID) (*Forecast, error) {
	f := &Forecast{}
	var author sql.NullString
	var metadataJSON []byte
	err := s.pool.QueryRow(ctx, `
		SELECT `+forecastColumns+`
		FROM forecasts WHERE id = $1`, id,
	).Scan(
		&f.ID, &f.Name, &author, &f.Bins, &f.MassPct, &f.IsTruth,
		&f.TruthID, &f.Score, &f.ScoredAt,
		&metadataJSON, &f.CreatedAt, &f.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if author.Valid {
		f.Author = author.String
	}
	if metadataJSON != nil {
		_ = json.Unmarshal(metadataJSON, &f.Metadata)
	}
	return f, nil
}

func (s *PostgresStore) ListForecasts(ctx context.Context, filter ForecastFilter) ([]*Forecast, error) {
	query := `SELECT ` + forecastColumns + ` FROM forecasts WHERE 1=1`
	args := []interface{}{}
	n := 0

	if filter.Author != "" {
		n++
		query += fmt.Sprintf(" AND author = $%d", n)
		args = append(args, filter.Author)
	}
	if filter.IsTruth != nil {
		n++
		query += fmt.Sprintf(" AND is_truth = $%d", n)
		args = append(args, *filter.IsTruth)
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		n++
		query += fmt.Sprintf(" LIMIT $%d", n)
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		n++
		query += fmt.Sprintf(" OFFSET $%d", n)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var forecasts []*Forecast
	for rows.Next() {
		f := &Forecast{}
		var author sql.NullString
		var metadataJSON []byte
		if err := rows.Scan(
			&f.ID, &f.Name, &author, &f.Bins, &f.MassPct, &f.IsTruth,
			&f.TruthID, &f.Score, &f.ScoredAt,
			&metadataJSON, &f.CreatedAt, &f.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if author.Valid {
			f.Author = author.String
		}
		if metadataJSON != nil {
			_ = json.Unmarshal(metadataJSON, &f.Metadata)
		}
		forecasts = append(forecasts, f)
	}
	return forecasts, rows.Err()
}

func (s *PostgresStore) UpdateForecast(ctx context.Context, f *Forecast) error {
	metadataJSON, _ := json.Marshal(f.Metadata)

	tag, err := s.pool.Exec(ctx, `
		UPDATE forecasts
		SET name = $2, author = $3, bins = $4, mass_pct = $5, is_truth = $6,
			truth_id = $7, score = $8, scored_at = $9, metadata = $10,
			updated_at = now()
		WHERE id = $1`,
		f.ID, f.Name, f.Author, f.Bins, f.MassPct, f.IsTruth,
		f.TruthID, f.Score, f.ScoredAt, metadataJSON,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("forecast %s not found", f.ID)
	}
	return nil
}

func (s *PostgresStore) DeleteForecast(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM forecasts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("forecast %s not found", id)
	}
	return nil
}

const comparisonColumns = `id, metric, forecast1_id, forecast2_id, truth_id,
	winning, score1, score2, gap, factor, requested_by, created_at`

func (s *PostgresStore) CreateComparison(ctx context.Context, c *ComparisonRecord) error {
	return s.pool.QueryRow(ctx, `
		INSERT INTO comparisons (metric, forecast1_id, forecast2_id, truth_id,
			winning, score1, score2, gap, factor, requested_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at`,
		c.Metric, c.Forecast1ID, c.Forecast2ID, c.TruthID,
		c.Winning, c.Score1, c.Score2, c.Gap, c.Factor, c.RequestedBy,
	).Scan(&c.ID, &c.CreatedAt)
}

func (s *PostgresStore) GetComparison(ctx context.Context, id uuid.UUID) (*ComparisonRecord, error) {
	c := &ComparisonRecord{}
	var requestedBy sql.NullString
	err := s.pool.QueryRow(ctx, `
		SELECT `+comparisonColumns+`
		FROM comparisons WHERE id = $1`, id,
	).Scan(
		&c.ID, &c.Metric, &c.Forecast1ID, &c.Forecast2ID, &c.TruthID,
		&c.Winning, &c.Score1, &c.Score2, &c.Gap, &c.Factor,
		&requestedBy, &c.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if requestedBy.Valid {
		c.RequestedBy = requestedBy.String
	}
	return c, nil
}

func (s *PostgresStore) ListComparisons(ctx context.Context, filter ComparisonFilter) ([]*ComparisonRecord, error) {
	query := `SELECT ` + comparisonColumns + ` FROM comparisons WHERE 1=1`
	args := []interface{}{}
	n := 0

	if filter.Metric != "" {
		n++
		query += fmt.Sprintf(" AND metric = $%d", n)
		args = append(args, filter.Metric)
	}
	if filter.Winning != "" {
		n++
		query += fmt.Sprintf(" AND winning = $%d", n)
		args = append(args, filter.Winning)
	}
	if filter.RequestedBy != "" {
		n++
		query += fmt.Sprintf(" AND requested_by = $%d", n)
		args = append(args, filter.RequestedBy)
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		n++
		query += fmt.Sprintf(" LIMIT $%d", n)
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		n++
		query += fmt.Sprintf(" OFFSET $%d", n)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comparisons []*ComparisonRecord
	for rows.Next() {
		c := &ComparisonRecord{}
		var requestedBy sql.NullString
		if err := rows.Scan(
			&c.ID, &c.Metric, &c.Forecast1ID, &c.Forecast2ID, &c.TruthID,
			&c.Winning, &c.Score1, &c.Score2, &c.Gap, &c.Factor,
			&requestedBy, &c.CreatedAt,
		); err != nil {
			return nil, err
		}
		if requestedBy.Valid {
			c.RequestedBy = requestedBy.String
		}
		comparisons = append(comparisons, c)
	}
	return comparisons, rows.Err()
}

func (s *PostgresStore) PruneComparisons(ctx context.Context, before time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM comparisons WHERE created_at < $1`, before)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (s *PostgresStore) GetStats(ctx context.Context) (*Stats, error) {
	st := &Stats{}
	err := s.pool.QueryRow(ctx, `
		SELECT
			(SELECT count(*) FROM forecasts WHERE NOT is_truth),
			(SELECT count(*) FROM forecasts WHERE is_truth),
			(SELECT count(*) FROM comparisons),
			(SELECT count(*) FROM comparisons WHERE gap IS NULL),
			(SELECT coalesce(avg(abs(gap)), 0) FROM comparisons WHERE gap IS NOT NULL)`,
	).Scan(
		&st.TotalForecasts, &st.TotalTruths, &st.TotalComparisons,
		&st.InfiniteComparisons, &st.AvgFiniteGap,
	)
	if err != nil {
		return nil, err
	}
	return st, nil
}
