package domain

import "time"

type AgeClass string

const (
	AgeYoung       AgeClass = "young"
	AgeAdult       AgeClass = "adult"
	AgeSenior      AgeClass = "senior"
	AgeUnspecified AgeClass = ""
)

type SizeClass string

const (
	SizeSmall       SizeClass = "small"
	SizeMedium      SizeClass = "medium"
	SizeLarge       SizeClass = "large"
	SizeUnspecified SizeClass = ""
)

// FeatureRecord holds the descriptive attributes extracted from one photo.
// Every field is best-effort; the extractor may leave any of them empty.
// EstimatedAge and Size are informational and do not participate in scoring.
type FeatureRecord struct {
	Breed               string    `json:"breed,omitempty"`
	Colors              []string  `json:"colors,omitempty"`
	Patterns            []string  `json:"patterns,omitempty"`
	DistinctiveFeatures []string  `json:"distinctive_features,omitempty"`
	EstimatedAge        AgeClass  `json:"estimated_age,omitempty"`
	Size                SizeClass `json:"size,omitempty"`
}

// Cat is the stable identity for one physical animal. Features is the
// reference record used for future matching; it is set at creation and a
// nil value means the cat can never be proposed as a match candidate.
type Cat struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	ImageURL  string         `json:"image_url,omitempty"`
	Features  *FeatureRecord `json:"features,omitempty"`
	CreatedBy string         `json:"created_by"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Sighting is one immutable observation event. It always references an
// existing cat; a cat and its first sighting are created together.
type Sighting struct {
	ID        string    `json:"id"`
	CatID     string    `json:"cat_id"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	SpottedBy string    `json:"spotted_by"`
	SpottedAt time.Time `json:"spotted_at"`
	Notes     string    `json:"notes,omitempty"`
}

// MatchOutcome is the transient result of comparing a query photo against
// the catalog. It is produced fresh per identification request and never
// persisted.
type MatchOutcome struct {
	Candidate       *Cat    `json:"candidate"`
	Score           float64 `json:"score"`
	IsLikelySameCat bool    `json:"is_likely_same_cat"`
}

// Decision selects the reconciliation path for a commit.
type Decision string

const (
	DecisionAppendToExisting Decision = "append"
	DecisionCreateNew        Decision = "create"
)

// CommitRequest carries everything needed to reconcile one confirmed
// submission. The identity decision has already been made by the caller
// via a prior proposal; commit never re-scores.
type CommitRequest struct {
	Decision    Decision
	CatID       string
	Name        string
	Photo       []byte
	Latitude    float64
	Longitude   float64
	SubmitterID string
	Notes       string
}

// SightingEvent is published after a successful commit and consumed by the
// activity worker. It is a notification, not a source of truth.
type SightingEvent struct {
	CatID      string    `json:"cat_id"`
	SightingID string    `json:"sighting_id"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	SpottedAt  time.Time `json:"spotted_at"`
	NewCat     bool      `json:"new_cat"`
}

// CatActivity is the worker-maintained read model summarizing sightings
// per cat.
type CatActivity struct {
	CatID         string    `json:"cat_id"`
	SightingCount int64     `json:"sighting_count"`
	LastSeenAt    time.Time `json:"last_seen_at"`
	LastLatitude  float64   `json:"last_latitude"`
	LastLongitude float64   `json:"last_longitude"`
	UpdatedAt     time.Time `json:"updated_at"`
}
