package journal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/nutridesk/server/internal/config"
	"github.com/nutridesk/server/internal/storage"
)

// Service records daily wellness entries and computes per-day
// summaries.
type Service struct {
	store storage.JournalStorage
	cfg   *config.Config
}

func NewService(store storage.JournalStorage, cfg *config.Config) *Service {
	return &Service{store: store, cfg: cfg}
}

// Create appends one entry of the given kind.
func (s *Service) Create(ctx context.Context, owner, kind string, req *CreateRequest) (storage.JournalEntry, error) {
	if err := req.Validate(kind); err != nil {
		return storage.JournalEntry{}, fmt.Errorf("validation failed: %w", err)
	}
	return s.store.CreateEntry(ctx, storage.JournalEntry{
		Owner:    owner,
		ClientID: req.ClientID,
		Date:     req.Date,
		Kind:     kind,
		Payload:  req.Payload,
	})
}

// List returns entries of one kind, optionally narrowed to a date.
func (s *Service) List(ctx context.Context, owner, kind, clientID, date string) ([]storage.JournalEntry, error) {
	if !ValidKind(kind) {
		return nil, fmt.Errorf("validation failed: unknown journal kind: %q", kind)
	}
	if clientID == "" {
		return nil, fmt.Errorf("validation failed: client_id is required")
	}
	return s.store.ListEntries(ctx, owner, clientID, date, kind)
}

// View returns one kind's entries together with the computed summary
// section for that kind. Every read and write on a kind endpoint
// answers with this shape.
func (s *Service) View(ctx context.Context, owner, kind, clientID, date string) (*KindView, error) {
	// compliance stores nothing of its own: it reads the day's meal
	// entries and reports their compliance rollup.
	listKind := kind
	if kind == KindCompliance {
		listKind = KindMeals
	}
	entries, err := s.List(ctx, owner, listKind, clientID, date)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []storage.JournalEntry{}
	}

	view := &KindView{Entries: entries}
	switch kind {
	case KindCompliance:
		day, err := s.Summarize(ctx, owner, clientID, date)
		if err != nil {
			return nil, err
		}
		view.Summary = day.Meals
	case KindMeasurements, KindBCA:
		view.Summary = latestSummary(entries)
	default:
		day, err := s.Summarize(ctx, owner, clientID, date)
		if err != nil {
			return nil, err
		}
		view.Summary = summaryForKind(kind, day)
	}
	return view, nil
}

// Delete removes one entry.
func (s *Service) Delete(ctx context.Context, owner, id string) error {
	return s.store.DeleteEntry(ctx, owner, id)
}

func summaryForKind(kind string, day *DaySummary) any {
	switch kind {
	case KindWater:
		return day.Water
	case KindSteps:
		return day.Steps
	case KindSleep:
		return day.Sleep
	case KindMeals:
		return day.Meals
	case KindProgress:
		return day.Progress
	case KindActivity:
		return ActivitySummary{TotalMinutes: day.ActivityMin}
	default:
		return day
	}
}

func latestSummary(entries []storage.JournalEntry) LatestSummary {
	s := LatestSummary{Readings: len(entries)}
	if len(entries) > 0 {
		s.Latest = entries[len(entries)-1].Payload
		s.First = entries[0].Payload
	}
	return s
}

// SetTargets stores per-client daily goals.
func (s *Service) SetTargets(ctx context.Context, owner string, req *TargetsRequest) (storage.JournalTarget, error) {
	if err := req.Validate(); err != nil {
		return storage.JournalTarget{}, fmt.Errorf("validation failed: %w", err)
	}
	t := storage.JournalTarget{
		Owner:          owner,
		ClientID:       req.ClientID,
		Date:           req.Date,
		WaterTargetMl:  req.WaterTargetMl,
		StepsTarget:    req.StepsTarget,
		SleepTargetMin: req.SleepTargetMin,
	}
	if err := s.store.PutTargets(ctx, t); err != nil {
		return storage.JournalTarget{}, err
	}
	return t, nil
}

// targetsOrDefault resolves each goal through the precedence chain:
// per-date override, then the client's standing targets, then defaults.
func (s *Service) targetsOrDefault(ctx context.Context, owner, clientID, date string) storage.JournalTarget {
	t, err := s.store.GetTargets(ctx, owner, clientID, "")
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			return storage.JournalTarget{}
		}
		t = storage.JournalTarget{}
	}
	if date != "" {
		if o, err := s.store.GetTargets(ctx, owner, clientID, date); err == nil {
			if o.WaterTargetMl > 0 {
				t.WaterTargetMl = o.WaterTargetMl
			}
			if o.StepsTarget > 0 {
				t.StepsTarget = o.StepsTarget
			}
			if o.SleepTargetMin > 0 {
				t.SleepTargetMin = o.SleepTargetMin
			}
		}
	}
	if t.WaterTargetMl == 0 {
		t.WaterTargetMl = s.cfg.JournalWaterDefaultTargetMl
	}
	if t.StepsTarget == 0 {
		t.StepsTarget = s.cfg.JournalStepsDefaultTarget
	}
	if t.SleepTargetMin == 0 {
		t.SleepTargetMin = 480
	}
	return t
}

func percentage(value, target int) int {
	if target <= 0 {
		return 0
	}
	return int(math.Round(float64(value) / float64(target) * 100))
}

// Summarize computes the day's rollups across all entry kinds.
func (s *Service) Summarize(ctx context.Context, owner, clientID, date string) (*DaySummary, error) {
	if clientID == "" {
		return nil, fmt.Errorf("validation failed: client_id is required")
	}
	entries, err := s.store.ListEntries(ctx, owner, clientID, date, "")
	if err != nil {
		return nil, err
	}
	targets := s.targetsOrDefault(ctx, owner, clientID, date)

	summary := &DaySummary{Date: date, EntriesLogged: len(entries)}
	summary.Water.TargetMl = targets.WaterTargetMl
	summary.Steps.Target = targets.StepsTarget
	summary.Sleep.TargetMin = targets.SleepTargetMin

	var weights []float64
	for _, e := range entries {
		switch e.Kind {
		case KindWater:
			var p WaterPayload
			if json.Unmarshal(e.Payload, &p) == nil {
				summary.Water.TotalMl += p.AmountMl
				summary.Water.Glasses++
			}
		case KindSteps:
			var p StepsPayload
			if json.Unmarshal(e.Payload, &p) == nil {
				summary.Steps.Total += p.Count
			}
		case KindSleep:
			var p SleepPayload
			if json.Unmarshal(e.Payload, &p) == nil {
				summary.Sleep.TotalMinutes += p.Minutes
			}
		case KindMeals:
			var p MealPayload
			if json.Unmarshal(e.Payload, &p) == nil {
				summary.Meals.Eaten++
				if p.Compliant {
					summary.Meals.Compliant++
				}
			}
		case KindActivity:
			var p ActivityPayload
			if json.Unmarshal(e.Payload, &p) == nil {
				summary.ActivityMin += p.Minutes
			}
		case KindProgress:
			var p ProgressPayload
			if json.Unmarshal(e.Payload, &p) == nil && p.WeightKg > 0 {
				weights = append(weights, p.WeightKg)
			}
		}
	}

	summary.Water.Percentage = percentage(summary.Water.TotalMl, targets.WaterTargetMl)
	summary.Steps.Percentage = percentage(summary.Steps.Total, targets.StepsTarget)
	summary.Sleep.Percentage = percentage(summary.Sleep.TotalMinutes, targets.SleepTargetMin)
	summary.Meals.CompliancePercent = percentage(summary.Meals.Compliant, summary.Meals.Eaten)

	summary.Progress.Readings = len(weights)
	if len(weights) > 0 {
		summary.Progress.LatestWeightKg = weights[len(weights)-1]
	}
	if len(weights) > 1 {
		summary.Progress.PreviousWeightKg = weights[len(weights)-2]
		summary.Progress.DeltaKg = summary.Progress.LatestWeightKg - summary.Progress.PreviousWeightKg
	}

	return summary, nil
}
