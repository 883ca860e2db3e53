package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/feralmap/catwatch/internal/core/domain"
)

// ActivityRepository maintains the worker-fed cat_activity read model.
type ActivityRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewActivityRepository(db *sql.DB) *ActivityRepository {
	return &ActivityRepository{db: db, now: time.Now}
}

// ApplySighting upserts one event into the summary. The count is
// recomputed from the sightings table rather than incremented, so a
// redelivered event settles on the same value instead of double-counting,
// and the last-seen position only moves forward in time.
func (r *ActivityRepository) ApplySighting(ctx context.Context, event domain.SightingEvent) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO cat_activity (cat_id, sighting_count, last_seen_at, last_latitude, last_longitude, updated_at)
VALUES ($1, (SELECT COUNT(*) FROM sightings WHERE cat_id = $1), $2, $3, $4, $5)
ON CONFLICT (cat_id) DO UPDATE SET
	sighting_count = EXCLUDED.sighting_count,
	last_seen_at = GREATEST(cat_activity.last_seen_at, EXCLUDED.last_seen_at),
	last_latitude = CASE WHEN EXCLUDED.last_seen_at >= cat_activity.last_seen_at THEN EXCLUDED.last_latitude ELSE cat_activity.last_latitude END,
	last_longitude = CASE WHEN EXCLUDED.last_seen_at >= cat_activity.last_seen_at THEN EXCLUDED.last_longitude ELSE cat_activity.last_longitude END,
	updated_at = EXCLUDED.updated_at
`, event.CatID, event.SpottedAt, event.Latitude, event.Longitude, r.now().UTC())
	if err != nil {
		return fmt.Errorf("upsert cat activity: %w", err)
	}
	return nil
}

func (r *ActivityRepository) GetByCatID(ctx context.Context, catID string) (*domain.CatActivity, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT cat_id, sighting_count, last_seen_at, last_latitude, last_longitude, updated_at
FROM cat_activity
WHERE cat_id = $1
`, catID)

	var a domain.CatActivity
	err := row.Scan(&a.CatID, &a.SightingCount, &a.LastSeenAt, &a.LastLatitude, &a.LastLongitude, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrCatNotFound, "get cat activity", fmt.Errorf("cat %s", catID))
		}
		return nil, fmt.Errorf("scan cat activity: %w", err)
	}
	return &a, nil
}

func (r *ActivityRepository) ListByCatIDs(ctx context.Context, catIDs []string) (map[string]domain.CatActivity, error) {
	if len(catIDs) == 0 {
		return map[string]domain.CatActivity{}, nil
	}

	placeholders := make([]string, len(catIDs))
	args := make([]any, len(catIDs))
	for i, id := range catIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(`
SELECT cat_id, sighting_count, last_seen_at, last_latitude, last_longitude, updated_at
FROM cat_activity
WHERE cat_id IN (%s)
`, strings.Join(placeholders, ",")), args...)
	if err != nil {
		return nil, fmt.Errorf("list cat activity: %w", err)
	}
	defer rows.Close()

	out := make(map[string]domain.CatActivity, len(catIDs))
	for rows.Next() {
		var a domain.CatActivity
		if err := rows.Scan(&a.CatID, &a.SightingCount, &a.LastSeenAt, &a.LastLatitude, &a.LastLongitude, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan cat activity: %w", err)
		}
		out[a.CatID] = a
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cat activity: %w", err)
	}
	return out, nil
}
