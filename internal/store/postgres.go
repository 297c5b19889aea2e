package store

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	_ "github.com/lib/pq"

	"github.com/jobpath-app/go-discovery/internal/domain"
)

// PostgresStore persists listings to PostgreSQL
type PostgresStore struct {
	db        *sql.DB
	tableName string
}

// NewPostgresStore opens the connection and ensures the table exists
func NewPostgresStore(connStr string, tableName string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("open postgres connection: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	s := &PostgresStore{
		db:        db,
		tableName: tableName,
	}

	if err := s.ensureTable(); err != nil {
		return nil, fmt.Errorf("ensure table: %w", err)
	}

	return s, nil
}

// ensureTable creates the listings table if it doesn't exist
func (s *PostgresStore) ensureTable() error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			internal_id BIGSERIAL PRIMARY KEY,
			source TEXT NOT NULL,
			external_id TEXT NOT NULL,
			title TEXT NOT NULL,
			company TEXT,
			description TEXT,
			requirements TEXT,
			location TEXT,
			latitude DOUBLE PRECISION,
			longitude DOUBLE PRECISION,
			salary_min DOUBLE PRECISION,
			salary_max DOUBLE PRECISION,
			salary_period TEXT,
			employment_type TEXT,
			url TEXT,
			posted_at TIMESTAMP WITH TIME ZONE,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			UNIQUE (source, external_id)
		)
	`, s.tableName)

	_, err := s.db.Exec(query)
	return err
}

// Upsert writes the batch one autocommitted statement per record, so a
// poison record cannot void the rest of the batch. Each record is keyed
// by (source, external_id); re-ingesting an existing record overwrites
// the mutable fields and bumps updated_at while internal_id is
// preserved. Per-record failures are logged and absent from the mapping.
func (s *PostgresStore) Upsert(ctx context.Context, listings []domain.Listing) (map[string]int64, error) {
	ids := make(map[string]int64, len(listings))
	if len(listings) == 0 {
		return ids, nil
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (
			source, external_id, title, company, description, requirements,
			location, latitude, longitude, salary_min, salary_max,
			salary_period, employment_type, url, posted_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10, $11,
			$12, $13, $14, $15, NOW()
		)
		ON CONFLICT (source, external_id) DO UPDATE SET
			title = EXCLUDED.title,
			company = EXCLUDED.company,
			description = EXCLUDED.description,
			requirements = EXCLUDED.requirements,
			location = EXCLUDED.location,
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			salary_min = EXCLUDED.salary_min,
			salary_max = EXCLUDED.salary_max,
			salary_period = EXCLUDED.salary_period,
			employment_type = EXCLUDED.employment_type,
			url = EXCLUDED.url,
			posted_at = EXCLUDED.posted_at,
			updated_at = NOW()
		RETURNING internal_id
	`, s.tableName)

	stmt, err := s.db.PrepareContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, l := range listings {
		var internalID int64
		err := stmt.QueryRowContext(ctx,
			string(l.Source), l.ExternalID, l.Title, l.Company, l.Description, l.Requirements,
			l.Location, l.Latitude, l.Longitude, nullFloat(l.SalaryMin), nullFloat(l.SalaryMax),
			string(l.SalaryPeriod), l.Employment, l.URL, nullTimePtr(l),
		).Scan(&internalID)
		if err != nil {
			log.Printf("[store] upsert error for %s/%s: %v", l.Source, l.ExternalID, err)
			continue
		}
		ids[l.ExternalID] = internalID
	}

	return ids, nil
}

// Query returns a page of stored listings matching the filters,
// ordered by posting timestamp descending.
func (s *PostgresStore) Query(ctx context.Context, f Filters, page, limit int) ([]domain.Listing, int, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	where, args := s.buildWhere(f)

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s %s`, s.tableName, where)
	var total int
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count listings: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT internal_id, source, external_id, title, company, description,
		       COALESCE(requirements, ''), COALESCE(location, ''), latitude, longitude,
		       COALESCE(salary_min, 0), COALESCE(salary_max, 0),
		       COALESCE(salary_period, ''), COALESCE(employment_type, ''),
		       COALESCE(url, ''), posted_at
		FROM %s %s
		ORDER BY posted_at DESC NULLS LAST, internal_id DESC
		LIMIT $%d OFFSET $%d
	`, s.tableName, where, len(args)+1, len(args)+2)

	args = append(args, limit, (page-1)*limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query listings: %w", err)
	}
	defer rows.Close()

	var listings []domain.Listing
	for rows.Next() {
		var l domain.Listing
		var source, period string
		var postedAt sql.NullTime
		if err := rows.Scan(
			&l.InternalID, &source, &l.ExternalID, &l.Title, &l.Company, &l.Description,
			&l.Requirements, &l.Location, &l.Latitude, &l.Longitude,
			&l.SalaryMin, &l.SalaryMax, &period, &l.Employment,
			&l.URL, &postedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan listing: %w", err)
		}
		l.Source = domain.Source(source)
		l.SalaryPeriod = domain.SalaryPeriod(period)
		if postedAt.Valid {
			l.PostedAt = postedAt.Time
		}
		listings = append(listings, l)
	}

	return listings, total, rows.Err()
}

func (s *PostgresStore) buildWhere(f Filters) (string, []any) {
	var conds []string
	var args []any

	add := func(cond string, val any) {
		args = append(args, val)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.Text != "" {
		add("(title ILIKE '%%' || $%d || '%%' OR description ILIKE '%%' || $%[1]d || '%%')", f.Text)
	}
	if f.Location != "" {
		add("location ILIKE '%%' || $%d || '%%'", f.Location)
	}
	if len(f.JobTypes) > 0 {
		placeholders := make([]string, 0, len(f.JobTypes))
		for _, t := range f.JobTypes {
			args = append(args, t)
			placeholders = append(placeholders, fmt.Sprintf("$%d", len(args)))
		}
		conds = append(conds, fmt.Sprintf("employment_type IN (%s)", strings.Join(placeholders, ", ")))
	}
	if f.SalaryMin > 0 {
		add("salary_max >= $%d", f.SalaryMin)
	}
	if !f.PostedAfter.IsZero() {
		add("posted_at >= $%d", f.PostedAfter)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

// Close closes the database connection
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func nullFloat(v float64) any {
	if v <= 0 {
		return nil
	}
	return v
}

func nullTimePtr(l domain.Listing) any {
	if l.PostedAt.IsZero() {
		return nil
	}
	return l.PostedAt
}
