package storage

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Client is a person a dietitian builds plans for.
type Client struct {
	ID                 string    `json:"id"`
	Owner              string    `json:"owner"`
	Name               string    `json:"name"`
	Email              string    `json:"email,omitempty"`
	Phone              string    `json:"phone,omitempty"`
	BirthDate          string    `json:"birth_date,omitempty"`
	Sex                string    `json:"sex,omitempty"`
	HeightCm           float64   `json:"height_cm,omitempty"`
	Allergies          []string  `json:"allergies"`
	DietaryPreferences []string  `json:"dietary_preferences"`
	MedicalConditions  []string  `json:"medical_conditions"`
	Notes              string    `json:"notes,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// PlanRecord is the persisted form of a client's diet plan. Days and
// MealTypes hold the plan document as JSON; the dietplan package owns
// its structure.
type PlanRecord struct {
	ID           string          `json:"id"`
	Owner        string          `json:"owner"`
	ClientID     string          `json:"client_id"`
	Title        string          `json:"title,omitempty"`
	DurationDays int             `json:"duration_days"`
	StartDate    string          `json:"start_date,omitempty"`
	Days         json.RawMessage `json:"days"`
	MealTypes    json.RawMessage `json:"meal_types"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// DraftRecord is an unsaved editing session keyed by client and plan
// duration. Payload carries the full draft document.
type DraftRecord struct {
	Owner   string          `json:"owner"`
	Key     string          `json:"key"`
	Payload json.RawMessage `json:"payload"`
	SavedAt time.Time       `json:"saved_at"`
}

// Recipe is one catalog entry a dietitian can place on a plan.
type Recipe struct {
	ID                string    `json:"id"`
	Owner             string    `json:"owner"`
	Name              string    `json:"name"`
	Category          string    `json:"category,omitempty"`
	Unit              string    `json:"unit,omitempty"`
	Cal               float64   `json:"cal"`
	Carbs             float64   `json:"carbs"`
	Fats              float64   `json:"fats"`
	Protein           float64   `json:"protein"`
	Fiber             float64   `json:"fiber"`
	Allergens         []string  `json:"allergens"`
	DietaryTags       []string  `json:"dietary_tags"`
	Contraindications []string  `json:"contraindications"`
	Ingredients       []string  `json:"ingredients"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// JournalEntry is one dated wellness record for a client. Kind selects
// the payload schema (meals, water, steps, sleep, activity, progress,
// measurements, bca).
type JournalEntry struct {
	ID        string          `json:"id"`
	Owner     string          `json:"owner"`
	ClientID  string          `json:"client_id"`
	Date      string          `json:"date"` // YYYY-MM-DD
	Kind      string          `json:"kind"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// JournalTarget holds per-client daily goals used by journal
// summaries. Date is empty for the client's standing targets; a dated
// row overrides them for that day only.
type JournalTarget struct {
	Owner          string    `json:"owner"`
	ClientID       string    `json:"client_id"`
	Date           string    `json:"date,omitempty"`
	WaterTargetMl  int       `json:"water_target_ml"`
	StepsTarget    int       `json:"steps_target"`
	SleepTargetMin int       `json:"sleep_target_min"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ExportMeta describes one generated plan export stored in the blob
// store under Key.
type ExportMeta struct {
	ID        string    `json:"id"`
	Owner     string    `json:"owner"`
	ClientID  string    `json:"client_id"`
	Audience  string    `json:"audience"`
	Format    string    `json:"format"`
	FileName  string    `json:"file_name"`
	Key       string    `json:"key"`
	SizeBytes int64     `json:"size_bytes"`
	CreatedAt time.Time `json:"created_at"`
}

type ClientsStorage interface {
	CreateClient(ctx context.Context, c Client) (Client, error)
	GetClient(ctx context.Context, owner, id string) (Client, error)
	ListClients(ctx context.Context, owner string) ([]Client, error)
	UpdateClient(ctx context.Context, c Client) (Client, error)
	DeleteClient(ctx context.Context, owner, id string) error
}

type PlansStorage interface {
	UpsertPlan(ctx context.Context, p PlanRecord) (PlanRecord, error)
	GetPlan(ctx context.Context, owner, clientID string) (PlanRecord, error)
	DeletePlan(ctx context.Context, owner, clientID string) error
}

type DraftsStorage interface {
	PutDraft(ctx context.Context, d DraftRecord) error
	GetDraft(ctx context.Context, owner, key string) (DraftRecord, error)
	DeleteDraft(ctx context.Context, owner, key string) error
	DeleteExpiredDrafts(ctx context.Context, before time.Time) (int, error)
}

type RecipesStorage interface {
	CreateRecipe(ctx context.Context, r Recipe) (Recipe, error)
	GetRecipe(ctx context.Context, owner, id string) (Recipe, error)
	ListRecipes(ctx context.Context, owner string) ([]Recipe, error)
	UpdateRecipe(ctx context.Context, r Recipe) (Recipe, error)
	DeleteRecipe(ctx context.Context, owner, id string) error
}

type JournalStorage interface {
	CreateEntry(ctx context.Context, e JournalEntry) (JournalEntry, error)
	ListEntries(ctx context.Context, owner, clientID, date, kind string) ([]JournalEntry, error)
	DeleteEntry(ctx context.Context, owner, id string) error
	GetTargets(ctx context.Context, owner, clientID, date string) (JournalTarget, error)
	PutTargets(ctx context.Context, t JournalTarget) error
}

type ExportsStorage interface {
	CreateExport(ctx context.Context, m ExportMeta) (ExportMeta, error)
	GetExport(ctx context.Context, owner, id string) (ExportMeta, error)
	ListExports(ctx context.Context, owner, clientID string) ([]ExportMeta, error)
	DeleteExport(ctx context.Context, owner, id string) error
	CountExports(ctx context.Context, owner, clientID string) (int, error)
}

// Storage is the full persistence surface of the service.
type Storage interface {
	ClientsStorage
	PlansStorage
	DraftsStorage
	RecipesStorage
	JournalStorage
	ExportsStorage
	Close(ctx context.Context) error
}
