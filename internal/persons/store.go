package persons

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store is the persistence contract for reports. The production
// implementation is PostgresStore; tests use in-memory fakes.
type Store interface {
	Save(ctx context.Context, person *Person) error
	FindByID(ctx context.Context, id string) (*Person, error)
	FindActive(ctx context.Context, now time.Time, limit, offset int) ([]Person, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// PostgresStore persists reports in the persons table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a store backed by the given connection pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Save inserts a new report row.
func (s *PostgresStore) Save(ctx context.Context, person *Person) error {
	query := `
		INSERT INTO persons (id, full_name, image_path, published_at, expires_at, last_seen_latitude, last_seen_longitude)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := s.pool.Exec(ctx, query,
		person.ID,
		person.FullName,
		person.ImagePath,
		person.PublishedAt,
		person.ExpiresAt,
		person.LastSeenLatitude,
		person.LastSeenLongitude,
	)
	if err != nil {
		return fmt.Errorf("save person: %w", err)
	}
	return nil
}

// FindByID returns the report with the given id, or ErrNotFound.
func (s *PostgresStore) FindByID(ctx context.Context, id string) (*Person, error) {
	query := `
		SELECT id, full_name, image_path, published_at, expires_at, last_seen_latitude, last_seen_longitude
		FROM persons
		WHERE id = $1`

	var p Person
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&p.ID,
		&p.FullName,
		&p.ImagePath,
		&p.PublishedAt,
		&p.ExpiresAt,
		&p.LastSeenLatitude,
		&p.LastSeenLongitude,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find person %s: %w", id, err)
	}
	return &p, nil
}

// FindActive returns non-expired reports, newest first.
func (s *PostgresStore) FindActive(ctx context.Context, now time.Time, limit, offset int) ([]Person, error) {
	query := `
		SELECT id, full_name, image_path, published_at, expires_at, last_seen_latitude, last_seen_longitude
		FROM persons
		WHERE expires_at > $1
		ORDER BY published_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := s.pool.Query(ctx, query, now, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("find active persons: %w", err)
	}
	defer rows.Close()

	active := []Person{}
	for rows.Next() {
		var p Person
		if err := rows.Scan(
			&p.ID,
			&p.FullName,
			&p.ImagePath,
			&p.PublishedAt,
			&p.ExpiresAt,
			&p.LastSeenLatitude,
			&p.LastSeenLongitude,
		); err != nil {
			return nil, fmt.Errorf("scan person row: %w", err)
		}
		active = append(active, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate persons: %w", err)
	}
	return active, nil
}

// DeleteExpired removes every report whose expiry is strictly before now in
// one batched statement, returning the number of deleted rows.
func (s *PostgresStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM persons WHERE expires_at < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("delete expired persons: %w", err)
	}
	return tag.RowsAffected(), nil
}
