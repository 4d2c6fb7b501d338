package dietplan

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nutridesk/server/internal/config"
	"github.com/nutridesk/server/internal/storage"
)

// Service owns plan documents: one per owner+client, persisted as JSON.
type Service struct {
	store        storage.PlansStorage
	cfg          *config.Config
	discardDraft func(ctx context.Context, owner, clientID string, durationDays int)
}

func NewService(store storage.PlansStorage, cfg *config.Config) *Service {
	return &Service{store: store, cfg: cfg}
}

// WithDraftDiscard registers a hook invoked after a successful Replace,
// so the matching auto-save draft is dropped once the plan is saved for
// real. Discard failures are the hook's problem; Replace never fails on
// them.
func (s *Service) WithDraftDiscard(fn func(ctx context.Context, owner, clientID string, durationDays int)) *Service {
	s.discardDraft = fn
	return s
}

func decodeDays(raw json.RawMessage) ([]DayPlan, error) {
	var days []DayPlan
	if len(raw) == 0 {
		return nil, nil
	}
	if err := json.Unmarshal(raw, &days); err != nil {
		return nil, fmt.Errorf("decode plan days: %w", err)
	}
	for i := range days {
		if days[i].Meals == nil {
			days[i].Meals = make(map[string]*Meal)
		}
	}
	return days, nil
}

func decodeConfigs(raw json.RawMessage) ([]MealTypeConfig, error) {
	var configs []MealTypeConfig
	if len(raw) == 0 {
		return nil, nil
	}
	if err := json.Unmarshal(raw, &configs); err != nil {
		return nil, fmt.Errorf("decode meal types: %w", err)
	}
	return configs, nil
}

func (s *Service) toResponse(rec storage.PlanRecord, days []DayPlan, configs []MealTypeConfig) *PlanResponse {
	names := make([]string, len(configs))
	for i, c := range configs {
		names[i] = c.Name
	}
	return &PlanResponse{
		ID:           rec.ID,
		ClientID:     rec.ClientID,
		Title:        rec.Title,
		DurationDays: rec.DurationDays,
		StartDate:    rec.StartDate,
		Days:         days,
		MealTypes:    configs,
		MealOrder:    OrderedMealTypes(names, configs, nil),
		Summary:      Summarize(days, rec.DurationDays),
		UpdatedAt:    rec.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}

func (s *Service) persist(ctx context.Context, rec storage.PlanRecord, days []DayPlan, configs []MealTypeConfig) (*PlanResponse, error) {
	daysJSON, err := json.Marshal(days)
	if err != nil {
		return nil, fmt.Errorf("encode plan days: %w", err)
	}
	configsJSON, err := json.Marshal(configs)
	if err != nil {
		return nil, fmt.Errorf("encode meal types: %w", err)
	}
	rec.Days = daysJSON
	rec.MealTypes = configsJSON

	saved, err := s.store.UpsertPlan(ctx, rec)
	if err != nil {
		return nil, err
	}
	return s.toResponse(saved, days, configs), nil
}

// Get loads a client's plan.
func (s *Service) Get(ctx context.Context, owner, clientID string) (*PlanResponse, error) {
	rec, err := s.store.GetPlan(ctx, owner, clientID)
	if err != nil {
		return nil, err
	}
	days, err := decodeDays(rec.Days)
	if err != nil {
		return nil, err
	}
	configs, err := decodeConfigs(rec.MealTypes)
	if err != nil {
		return nil, err
	}
	return s.toResponse(rec, days, configs), nil
}

// Replace overwrites the plan document. The day array is rebuilt from
// the duration and start date, merging content from the submitted days
// by position.
func (s *Service) Replace(ctx context.Context, owner string, req *ReplacePlanRequest) (*PlanResponse, error) {
	if err := req.Validate(s.cfg.PlanMaxDurationDays, s.cfg.PlanMaxMealTypes); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	for _, day := range req.Days {
		for name, meal := range day.Meals {
			if meal == nil {
				continue
			}
			if len(meal.FoodOptions) > s.cfg.PlanMaxOptions {
				return nil, fmt.Errorf("validation failed: meal %s exceeds %d options", name, s.cfg.PlanMaxOptions)
			}
		}
	}

	days := BuildDays(req.DurationDays, req.StartDate, req.Days)

	configs := req.MealTypes
	if len(configs) == 0 {
		configs = DefaultMealTypes()
	}
	for i := range configs {
		if t, ok := NormalizeTime(configs[i].Time); ok {
			configs[i].Time = t
		} else {
			configs[i].Time = ResolveMealTime(configs[i].Name, nil, nil)
		}
	}

	rec := storage.PlanRecord{
		Owner:        owner,
		ClientID:     req.ClientID,
		Title:        req.Title,
		DurationDays: req.DurationDays,
		StartDate:    req.StartDate,
	}
	resp, err := s.persist(ctx, rec, days, configs)
	if err != nil {
		return nil, err
	}
	if s.discardDraft != nil {
		s.discardDraft(ctx, owner, req.ClientID, req.DurationDays)
	}
	return resp, nil
}

// DefaultMealTypes is the column set a fresh plan starts with.
func DefaultMealTypes() []MealTypeConfig {
	return []MealTypeConfig{
		{Name: "Breakfast", Time: "08:00"},
		{Name: "Mid-Morning Snack", Time: "10:30"},
		{Name: "Lunch", Time: "13:00"},
		{Name: "Evening Snack", Time: "16:30"},
		{Name: "Dinner", Time: "19:30"},
	}
}

// Delete removes a client's plan.
func (s *Service) Delete(ctx context.Context, owner, clientID string) error {
	return s.store.DeletePlan(ctx, owner, clientID)
}

// ApplyOp loads the plan, applies one grid operation and persists the
// result.
func (s *Service) ApplyOp(ctx context.Context, owner string, req *ApplyOpRequest) (*PlanResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	rec, err := s.store.GetPlan(ctx, owner, req.ClientID)
	if err != nil {
		return nil, err
	}
	days, err := decodeDays(rec.Days)
	if err != nil {
		return nil, err
	}
	configs, err := decodeConfigs(rec.MealTypes)
	if err != nil {
		return nil, err
	}

	editor := NewEditor(days, configs, false, nil)
	applyOp(editor, &req.Op)

	return s.persist(ctx, rec, editor.Days(), editor.Configs())
}

func applyOp(e *Editor, op *Op) {
	switch op.Kind {
	case OpAddMeal:
		e.AddMealToCell(op.DayID, op.MealType)
	case OpAddOption:
		e.AddFoodOption(op.DayID, op.MealType)
	case OpRemoveOption:
		e.RemoveFoodOption(op.DayID, op.MealType, op.Index)
	case OpUpdateOption:
		e.UpdateOption(op.DayID, op.MealType, op.Index, *op.Option)
	case OpSetShowAlts:
		e.SetShowAlternatives(op.DayID, op.MealType, op.Show)
	case OpAddMealType:
		e.AddMealType(op.Name, op.Time)
	case OpRemoveMealType:
		e.RemoveMealType(op.Name)
	case OpSetMealTime:
		e.SetMealTimeForCell(op.DayID, op.MealType, op.Time)
	case OpSetTypeTime:
		e.SetMealTypeTime(op.Name, op.Time)
	case OpCopyMeal:
		e.CopyMealToTargets(*op.Source, op.Targets)
	case OpFindReplace:
		e.FindReplace(op.Term, *op.Replacement, ReplaceMode(op.Mode), op.TargetDays, op.TargetMealTypes)
	case OpFindDelete:
		e.FindDelete(op.Term, op.TargetDays, op.TargetMealTypes)
	case OpMoveOption:
		e.MoveOption(op.DayID, op.MealType, op.FromIndex, op.ToIndex)
	case OpCopyOption:
		e.CopyOption(*op.Source, op.Index, *op.Dest, op.InsertIndex)
	case OpSetFoods:
		e.SetFoods(op.DayID, op.MealType, op.Index, op.Foods)
	case OpAddFood:
		e.AddFood(op.DayID, op.MealType, op.Index, *op.Food)
	case OpRemoveFood:
		e.RemoveFood(op.DayID, op.MealType, op.Index, op.FoodIndex)
	case OpSetNote:
		e.SetNote(op.DayID, op.Note)
	case OpHoldDay:
		e.HoldDay(op.DayID, op.Reason)
	case OpReleaseDay:
		e.ReleaseDay(op.DayID)
	case OpFreezeDay:
		e.FreezeDay(op.DayID, op.Name)
	case OpUnfreezeDay:
		e.UnfreezeDay(op.DayID)
	}
}
