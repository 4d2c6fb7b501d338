package dietplan

import (
	"fmt"
	"strings"
)

// Op kinds accepted by POST /v1/plans/ops.
const (
	OpAddMeal        = "add_meal"
	OpAddOption      = "add_option"
	OpRemoveOption   = "remove_option"
	OpUpdateOption   = "update_option"
	OpSetShowAlts    = "set_show_alternatives"
	OpAddMealType    = "add_meal_type"
	OpRemoveMealType = "remove_meal_type"
	OpSetMealTime    = "set_meal_time"
	OpSetTypeTime    = "set_meal_type_time"
	OpCopyMeal       = "copy_meal"
	OpFindReplace    = "find_replace"
	OpFindDelete     = "find_delete"
	OpMoveOption     = "move_option"
	OpCopyOption     = "copy_option"
	OpSetFoods       = "set_foods"
	OpAddFood        = "add_food"
	OpRemoveFood     = "remove_food"
	OpSetNote        = "set_note"
	OpHoldDay        = "hold_day"
	OpReleaseDay     = "release_day"
	OpFreezeDay      = "freeze_day"
	OpUnfreezeDay    = "unfreeze_day"
)

var opKinds = map[string]bool{
	OpAddMeal: true, OpAddOption: true, OpRemoveOption: true, OpUpdateOption: true,
	OpSetShowAlts: true, OpAddMealType: true, OpRemoveMealType: true,
	OpSetMealTime: true, OpSetTypeTime: true, OpCopyMeal: true,
	OpFindReplace: true, OpFindDelete: true, OpMoveOption: true, OpCopyOption: true,
	OpSetFoods: true, OpAddFood: true, OpRemoveFood: true,
	OpSetNote: true, OpHoldDay: true, OpReleaseDay: true,
	OpFreezeDay: true, OpUnfreezeDay: true,
}

// Op is one grid operation. Fields are interpreted per Kind; unused
// fields are ignored.
type Op struct {
	Kind string `json:"kind"`

	DayID    string `json:"day_id,omitempty"`
	MealType string `json:"meal_type,omitempty"`
	Index    int    `json:"index,omitempty"`

	Option *FoodOption `json:"option,omitempty"`
	Foods  []FoodItem  `json:"foods,omitempty"`
	Food   *FoodItem   `json:"food,omitempty"`

	Name string `json:"name,omitempty"`
	Time string `json:"time,omitempty"`
	Note string `json:"note,omitempty"`
	Show bool   `json:"show,omitempty"`

	Term            string      `json:"term,omitempty"`
	Replacement     *FoodOption `json:"replacement,omitempty"`
	Mode            string      `json:"mode,omitempty"`
	TargetDays      []string    `json:"target_days,omitempty"`
	TargetMealTypes []string    `json:"target_meal_types,omitempty"`

	Targets []CellRef `json:"targets,omitempty"`
	Source  *CellRef  `json:"source,omitempty"`
	Dest    *CellRef  `json:"dest,omitempty"`

	FromIndex   int    `json:"from_index,omitempty"`
	ToIndex     int    `json:"to_index,omitempty"`
	InsertIndex int    `json:"insert_index,omitempty"`
	FoodIndex   int    `json:"food_index,omitempty"`
	Reason      string `json:"reason,omitempty"`
}

func (o *Op) Validate() error {
	if !opKinds[o.Kind] {
		return fmt.Errorf("unknown op kind: %q", o.Kind)
	}

	needsCell := map[string]bool{
		OpAddMeal: true, OpAddOption: true, OpRemoveOption: true, OpUpdateOption: true,
		OpSetShowAlts: true, OpSetMealTime: true,
		OpSetFoods: true, OpAddFood: true, OpRemoveFood: true,
	}
	if needsCell[o.Kind] {
		if o.DayID == "" {
			return fmt.Errorf("day_id is required for %s", o.Kind)
		}
		if o.MealType == "" {
			return fmt.Errorf("meal_type is required for %s", o.Kind)
		}
	}

	switch o.Kind {
	case OpUpdateOption:
		if o.Option == nil {
			return fmt.Errorf("option is required for %s", o.Kind)
		}
	case OpAddMealType, OpRemoveMealType, OpSetTypeTime:
		if strings.TrimSpace(o.Name) == "" {
			return fmt.Errorf("name is required for %s", o.Kind)
		}
	case OpCopyMeal:
		if o.Source == nil {
			return fmt.Errorf("source is required for %s", o.Kind)
		}
		if len(o.Targets) == 0 {
			return fmt.Errorf("targets are required for %s", o.Kind)
		}
	case OpFindReplace:
		if strings.TrimSpace(o.Term) == "" {
			return fmt.Errorf("term is required for %s", o.Kind)
		}
		if o.Replacement == nil {
			return fmt.Errorf("replacement is required for %s", o.Kind)
		}
		if o.Mode != "" && o.Mode != string(ReplaceModeRename) && o.Mode != string(ReplaceModeResolve) {
			return fmt.Errorf("mode must be rename or resolve")
		}
	case OpFindDelete:
		if strings.TrimSpace(o.Term) == "" {
			return fmt.Errorf("term is required for %s", o.Kind)
		}
	case OpMoveOption:
		if o.DayID == "" || o.MealType == "" {
			return fmt.Errorf("day_id and meal_type are required for %s", o.Kind)
		}
	case OpCopyOption:
		if o.Source == nil || o.Dest == nil {
			return fmt.Errorf("source and dest are required for %s", o.Kind)
		}
	case OpAddFood:
		if o.Food == nil {
			return fmt.Errorf("food is required for %s", o.Kind)
		}
	case OpSetNote, OpHoldDay, OpReleaseDay, OpFreezeDay, OpUnfreezeDay:
		if o.DayID == "" {
			return fmt.Errorf("day_id is required for %s", o.Kind)
		}
	}
	return nil
}

// ApplyOpRequest is the body of POST /v1/plans/ops.
type ApplyOpRequest struct {
	ClientID string `json:"client_id"`
	Op       Op     `json:"op"`
}

func (r *ApplyOpRequest) Validate() error {
	if r.ClientID == "" {
		return fmt.Errorf("client_id is required")
	}
	return r.Op.Validate()
}

// ReplacePlanRequest is the body of PUT /v1/plans/replace. Days may be
// shorter than DurationDays; the server rebuilds the array against the
// canonical template.
type ReplacePlanRequest struct {
	ClientID     string           `json:"client_id"`
	Title        string           `json:"title"`
	DurationDays int              `json:"duration_days"`
	StartDate    string           `json:"start_date"`
	Days         []DayPlan        `json:"days"`
	MealTypes    []MealTypeConfig `json:"meal_types"`
}

func (r *ReplacePlanRequest) Validate(maxDuration, maxMealTypes int) error {
	if r.ClientID == "" {
		return fmt.Errorf("client_id is required")
	}
	if r.DurationDays < 1 || r.DurationDays > maxDuration {
		return fmt.Errorf("duration_days must be between 1 and %d", maxDuration)
	}
	if len(r.MealTypes) > maxMealTypes {
		return fmt.Errorf("at most %d meal types allowed", maxMealTypes)
	}
	seen := make(map[string]bool, len(r.MealTypes))
	for _, mt := range r.MealTypes {
		name := strings.ToLower(strings.TrimSpace(mt.Name))
		if name == "" {
			return fmt.Errorf("meal type name must not be empty")
		}
		if seen[name] {
			return fmt.Errorf("duplicate meal type: %s", mt.Name)
		}
		seen[name] = true
	}
	return nil
}

// PlanResponse is the wire form of a plan document.
type PlanResponse struct {
	ID           string           `json:"id"`
	ClientID     string           `json:"client_id"`
	Title        string           `json:"title,omitempty"`
	DurationDays int              `json:"duration_days"`
	StartDate    string           `json:"start_date,omitempty"`
	Days         []DayPlan        `json:"days"`
	MealTypes    []MealTypeConfig `json:"meal_types"`
	MealOrder    []string         `json:"meal_order"`
	Summary      PlanSummary      `json:"summary"`
	UpdatedAt    string           `json:"updated_at"`
}
