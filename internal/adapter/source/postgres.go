package source

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/arturoeanton/go-license-rag-ollama/internal/domain"
)

// PostgresSource loads license-usage records from a Postgres table, for
// deployments where the license monitor writes straight into a database
// instead of dropping JSON exports.
type PostgresSource struct {
	db *sql.DB
}

// NewPostgresSource opens a connection pool and verifies it.
func NewPostgresSource(databaseURL string) (*PostgresSource, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &PostgresSource{db: db}, nil
}

// Close closes the database connection.
func (s *PostgresSource) Close() error {
	return s.db.Close()
}

// Name identifies the source for logging and health output.
func (s *PostgresSource) Name() string {
	return "postgres:license_usage"
}

// Fetch reads every record from the license_usage table in a stable order so
// the snapshot hash is deterministic across fetches of unchanged data.
func (s *PostgresSource) Fetch(ctx context.Context) ([]domain.Record, error) {
	query := `SELECT software, server, location, license,
	                 latest_license_issued, license_day_peak, license_day_average,
	                 license_work_peak, license_work_average,
	                 percentage_work_peak, percentage_work_average
	          FROM license_usage
	          ORDER BY software, server, license`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query license usage: %w", err)
	}
	defer rows.Close()

	var records []domain.Record
	for rows.Next() {
		var r domain.Record
		if err := rows.Scan(
			&r.Software, &r.Server, &r.Location, &r.License,
			&r.LatestLicenseIssued, &r.LicenseDayPeak, &r.LicenseDayAverage,
			&r.LicenseWorkPeak, &r.LicenseWorkAverage,
			&r.PercentageWorkPeak, &r.PercentageWorkAverage,
		); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return records, nil
}
