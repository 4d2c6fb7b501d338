package journal

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nutridesk/server/internal/storage"
)

// Entry kinds. Each kind carries its own payload schema.
const (
	KindMeals        = "meals"
	KindWater        = "water"
	KindSteps        = "steps"
	KindSleep        = "sleep"
	KindActivity     = "activity"
	KindProgress     = "progress"
	KindMeasurements = "measurements"
	KindBCA          = "bca"

	// KindCompliance is computed from meal entries; it accepts reads
	// only and never stores entries of its own.
	KindCompliance = "compliance"
)

var validKinds = map[string]bool{
	KindMeals: true, KindWater: true, KindSteps: true, KindSleep: true,
	KindActivity: true, KindProgress: true, KindMeasurements: true, KindBCA: true,
}

func ValidKind(kind string) bool { return validKinds[kind] }

// MealPayload records one meal eaten against the plan.
type MealPayload struct {
	Name      string `json:"name"`
	Time      string `json:"time,omitempty"`
	Compliant bool   `json:"compliant"`
	Notes     string `json:"notes,omitempty"`
}

// WaterPayload records one drink.
type WaterPayload struct {
	AmountMl int `json:"amount_ml"`
}

// StepsPayload records a step count reading.
type StepsPayload struct {
	Count int `json:"count"`
}

// SleepPayload records one sleep block in minutes.
type SleepPayload struct {
	Minutes int    `json:"minutes"`
	Quality string `json:"quality,omitempty"`
}

// ActivityPayload records one exercise session.
type ActivityPayload struct {
	Kind      string `json:"kind"`
	Minutes   int    `json:"minutes"`
	Intensity string `json:"intensity,omitempty"`
}

// ProgressPayload records body-weight progress.
type ProgressPayload struct {
	WeightKg float64 `json:"weight_kg"`
	Notes    string  `json:"notes,omitempty"`
}

// MeasurementsPayload records tape measurements in centimeters.
type MeasurementsPayload struct {
	WaistCm float64 `json:"waist_cm,omitempty"`
	HipsCm  float64 `json:"hips_cm,omitempty"`
	ChestCm float64 `json:"chest_cm,omitempty"`
	ArmCm   float64 `json:"arm_cm,omitempty"`
	ThighCm float64 `json:"thigh_cm,omitempty"`
}

// BCAPayload records a body composition analysis reading.
type BCAPayload struct {
	FatPercent float64 `json:"fat_percent,omitempty"`
	MuscleKg   float64 `json:"muscle_kg,omitempty"`
	WaterKg    float64 `json:"water_kg,omitempty"`
	BoneKg     float64 `json:"bone_kg,omitempty"`
}

// CreateRequest is the body of POST /v1/journal/{kind}.
type CreateRequest struct {
	ClientID string          `json:"client_id"`
	Date     string          `json:"date"`
	Payload  json.RawMessage `json:"payload"`
}

func (r *CreateRequest) Validate(kind string) error {
	if !ValidKind(kind) {
		return fmt.Errorf("unknown journal kind: %q", kind)
	}
	if r.ClientID == "" {
		return fmt.Errorf("client_id is required")
	}
	if _, err := time.Parse("2006-01-02", r.Date); err != nil {
		return fmt.Errorf("date must be YYYY-MM-DD")
	}
	if len(r.Payload) == 0 {
		return fmt.Errorf("payload is required")
	}
	return validatePayload(kind, r.Payload)
}

func validatePayload(kind string, raw json.RawMessage) error {
	switch kind {
	case KindMeals:
		var p MealPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return fmt.Errorf("invalid meals payload: %w", err)
		}
		if p.Name == "" {
			return fmt.Errorf("meal name is required")
		}
	case KindWater:
		var p WaterPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return fmt.Errorf("invalid water payload: %w", err)
		}
		if p.AmountMl <= 0 {
			return fmt.Errorf("amount_ml must be positive")
		}
	case KindSteps:
		var p StepsPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return fmt.Errorf("invalid steps payload: %w", err)
		}
		if p.Count < 0 {
			return fmt.Errorf("count must not be negative")
		}
	case KindSleep:
		var p SleepPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return fmt.Errorf("invalid sleep payload: %w", err)
		}
		if p.Minutes <= 0 {
			return fmt.Errorf("minutes must be positive")
		}
	case KindActivity:
		var p ActivityPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return fmt.Errorf("invalid activity payload: %w", err)
		}
		if p.Kind == "" {
			return fmt.Errorf("activity kind is required")
		}
	case KindProgress:
		var p ProgressPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return fmt.Errorf("invalid progress payload: %w", err)
		}
		if p.WeightKg <= 0 {
			return fmt.Errorf("weight_kg must be positive")
		}
	case KindMeasurements:
		var p MeasurementsPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return fmt.Errorf("invalid measurements payload: %w", err)
		}
	case KindBCA:
		var p BCAPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return fmt.Errorf("invalid bca payload: %w", err)
		}
	}
	return nil
}

// TargetsRequest is the body of PUT /v1/journal/targets. Date is
// optional: when set, the targets override the client's standing ones
// for that day only.
type TargetsRequest struct {
	ClientID       string `json:"client_id"`
	Date           string `json:"date,omitempty"`
	WaterTargetMl  int    `json:"water_target_ml"`
	StepsTarget    int    `json:"steps_target"`
	SleepTargetMin int    `json:"sleep_target_min"`
}

func (r *TargetsRequest) Validate() error {
	if r.ClientID == "" {
		return fmt.Errorf("client_id is required")
	}
	if r.Date != "" {
		if _, err := time.Parse("2006-01-02", r.Date); err != nil {
			return fmt.Errorf("date must be YYYY-MM-DD")
		}
	}
	if r.WaterTargetMl < 0 || r.StepsTarget < 0 || r.SleepTargetMin < 0 {
		return fmt.Errorf("targets must not be negative")
	}
	return nil
}

// WaterSummary aggregates one day of water entries.
type WaterSummary struct {
	TotalMl    int `json:"total_ml"`
	TargetMl   int `json:"target_ml"`
	Percentage int `json:"percentage"`
	Glasses    int `json:"glasses"`
}

// StepsSummary aggregates one day of step readings.
type StepsSummary struct {
	Total      int `json:"total"`
	Target     int `json:"target"`
	Percentage int `json:"percentage"`
}

// SleepSummary aggregates one day of sleep blocks.
type SleepSummary struct {
	TotalMinutes int `json:"total_minutes"`
	TargetMin    int `json:"target_min"`
	Percentage   int `json:"percentage"`
}

// MealsSummary aggregates one day of meal records.
type MealsSummary struct {
	Eaten     int `json:"eaten"`
	Compliant int `json:"compliant"`
	// CompliancePercent is compliant/eaten; 0 when nothing was logged.
	CompliancePercent int `json:"compliance_percent"`
}

// ProgressSummary reports the latest weight and its delta against the
// previous reading.
type ProgressSummary struct {
	LatestWeightKg   float64 `json:"latest_weight_kg,omitempty"`
	PreviousWeightKg float64 `json:"previous_weight_kg,omitempty"`
	DeltaKg          float64 `json:"delta_kg"`
	Readings         int     `json:"readings"`
}

// ActivitySummary aggregates one day of exercise sessions.
type ActivitySummary struct {
	TotalMinutes int `json:"total_minutes"`
}

// LatestSummary reports the newest and oldest reading in the range,
// for kinds whose payloads are compared rather than summed.
type LatestSummary struct {
	Readings int             `json:"readings"`
	Latest   json.RawMessage `json:"latest,omitempty"`
	First    json.RawMessage `json:"first,omitempty"`
}

// KindView is the response body of every /v1/journal/{kind} endpoint.
type KindView struct {
	Entries []storage.JournalEntry `json:"entries"`
	Summary any                    `json:"summary"`
}

// DaySummary is the computed view of one journal day.
type DaySummary struct {
	Date           string          `json:"date"`
	Water          WaterSummary    `json:"water"`
	Steps          StepsSummary    `json:"steps"`
	Sleep          SleepSummary    `json:"sleep"`
	Meals          MealsSummary    `json:"meals"`
	Progress       ProgressSummary `json:"progress"`
	ActivityMin    int             `json:"activity_minutes"`
	EntriesLogged  int             `json:"entries_logged"`
}
