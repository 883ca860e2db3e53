package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/feralmap/catwatch/internal/core/domain"
)

const foreignKeyViolation = "23503"

type CatRepository struct {
	db *sql.DB
}

func NewCatRepository(db *sql.DB) *CatRepository {
	return &CatRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *CatRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026082701)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS cats (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	image_url TEXT,
	features JSONB,
	created_by TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS sightings (
	id TEXT PRIMARY KEY,
	cat_id TEXT NOT NULL REFERENCES cats(id) ON DELETE CASCADE,
	latitude DOUBLE PRECISION NOT NULL,
	longitude DOUBLE PRECISION NOT NULL,
	spotted_by TEXT NOT NULL,
	spotted_at TIMESTAMPTZ NOT NULL,
	notes TEXT
);

CREATE TABLE IF NOT EXISTS cat_activity (
	cat_id TEXT PRIMARY KEY REFERENCES cats(id) ON DELETE CASCADE,
	sighting_count BIGINT NOT NULL DEFAULT 0,
	last_seen_at TIMESTAMPTZ NOT NULL,
	last_latitude DOUBLE PRECISION NOT NULL,
	last_longitude DOUBLE PRECISION NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_cats_created_at ON cats(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_sightings_cat_id ON sightings(cat_id);
CREATE INDEX IF NOT EXISTS idx_sightings_spotted_at ON sightings(spotted_at DESC);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

// ListCats returns the whole catalog ordered most-recent-first. The
// resolver depends on this order for its first-seen tie break.
func (r *CatRepository) ListCats(ctx context.Context) ([]domain.Cat, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, name, image_url, features, created_by, created_at, updated_at
FROM cats
ORDER BY created_at DESC
`)
	if err != nil {
		return nil, fmt.Errorf("list cats: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Cat, 0)
	for rows.Next() {
		cat, err := scanCat(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, cat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cats: %w", err)
	}
	return out, nil
}

func (r *CatRepository) GetByID(ctx context.Context, id string) (*domain.Cat, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, name, image_url, features, created_by, created_at, updated_at
FROM cats
WHERE id = $1
`, id)

	cat, err := scanCat(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrCatNotFound, "get cat", fmt.Errorf("id %s", id))
		}
		return nil, err
	}
	return &cat, nil
}

// CreateCatWithFirstSighting persists a cat and its first sighting as one
// transaction. Either both rows land or neither does.
func (r *CatRepository) CreateCatWithFirstSighting(ctx context.Context, cat *domain.Cat, sighting *domain.Sighting) error {
	featuresJSON, err := marshalFeatures(cat.Features)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `
INSERT INTO cats (id, name, image_url, features, created_by, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
`, cat.ID, cat.Name, nullString(cat.ImageURL), featuresJSON, cat.CreatedBy, cat.CreatedAt, cat.UpdatedAt); err != nil {
		return fmt.Errorf("insert cat: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
INSERT INTO sightings (id, cat_id, latitude, longitude, spotted_by, spotted_at, notes)
VALUES ($1,$2,$3,$4,$5,$6,$7)
`, sighting.ID, sighting.CatID, sighting.Latitude, sighting.Longitude, sighting.SpottedBy, sighting.SpottedAt, nullString(sighting.Notes)); err != nil {
		return fmt.Errorf("insert first sighting: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create tx: %w", err)
	}
	return nil
}

// AddSighting appends one sighting to an existing cat. A foreign-key
// violation means the referenced cat does not exist.
func (r *CatRepository) AddSighting(ctx context.Context, sighting *domain.Sighting) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO sightings (id, cat_id, latitude, longitude, spotted_by, spotted_at, notes)
VALUES ($1,$2,$3,$4,$5,$6,$7)
`, sighting.ID, sighting.CatID, sighting.Latitude, sighting.Longitude, sighting.SpottedBy, sighting.SpottedAt, nullString(sighting.Notes))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
			return domain.WrapError(domain.ErrCatNotFound, "add sighting", fmt.Errorf("cat %s", sighting.CatID))
		}
		return fmt.Errorf("insert sighting: %w", err)
	}
	return nil
}

func (r *CatRepository) ListSightings(ctx context.Context, catID string) ([]domain.Sighting, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, cat_id, latitude, longitude, spotted_by, spotted_at, notes
FROM sightings
WHERE cat_id = $1
ORDER BY spotted_at DESC
`, catID)
	if err != nil {
		return nil, fmt.Errorf("list sightings: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Sighting, 0)
	for rows.Next() {
		var s domain.Sighting
		var notes sql.NullString
		if err := rows.Scan(&s.ID, &s.CatID, &s.Latitude, &s.Longitude, &s.SpottedBy, &s.SpottedAt, &notes); err != nil {
			return nil, fmt.Errorf("scan sighting: %w", err)
		}
		s.Notes = notes.String
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sightings: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCat(row rowScanner) (domain.Cat, error) {
	var cat domain.Cat
	var imageURL sql.NullString
	var featuresRaw []byte

	if err := row.Scan(&cat.ID, &cat.Name, &imageURL, &featuresRaw, &cat.CreatedBy, &cat.CreatedAt, &cat.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Cat{}, err
		}
		return domain.Cat{}, fmt.Errorf("scan cat: %w", err)
	}
	cat.ImageURL = imageURL.String

	if len(featuresRaw) > 0 {
		var features domain.FeatureRecord
		if err := json.Unmarshal(featuresRaw, &features); err != nil {
			return domain.Cat{}, fmt.Errorf("unmarshal features: %w", err)
		}
		cat.Features = &features
	}
	return cat, nil
}

func marshalFeatures(features *domain.FeatureRecord) (any, error) {
	if features == nil {
		return nil, nil
	}
	raw, err := json.Marshal(features)
	if err != nil {
		return nil, fmt.Errorf("marshal features: %w", err)
	}
	return raw, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
