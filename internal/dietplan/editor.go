package dietplan

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ReplaceMode selects what a find-replace writes into matched options.
type ReplaceMode string

const (
	// ReplaceModeRename rewrites only the food name, keeping the
	// option's nutrition values untouched.
	ReplaceModeRename ReplaceMode = "rename"
	// ReplaceModeResolve swaps in the full replacement food: name,
	// unit, nutrition and recipe link.
	ReplaceModeResolve ReplaceMode = "resolve"
)

// CellRef addresses one meal slot in the grid.
type CellRef struct {
	DayID    string `json:"day_id"`
	MealType string `json:"meal_type"`
}

// Editor applies grid operations to a plan's day array. All mutations
// go through a top-level clone; nested meals reachable from the clone
// are mutated in place. Every successful mutation invokes onUpdate with
// the new array.
type Editor struct {
	days        []DayPlan
	configs     []MealTypeConfig
	customTimes map[string]string
	readOnly    bool
	onUpdate    func(days []DayPlan, configs []MealTypeConfig)
	now         func() time.Time
}

// NewEditor builds an editor over the given state. onUpdate may be nil.
func NewEditor(days []DayPlan, configs []MealTypeConfig, readOnly bool, onUpdate func([]DayPlan, []MealTypeConfig)) *Editor {
	return &Editor{
		days:        days,
		configs:     configs,
		customTimes: make(map[string]string),
		readOnly:    readOnly,
		onUpdate:    onUpdate,
		now:         time.Now,
	}
}

// Days returns the current day array.
func (e *Editor) Days() []DayPlan { return e.days }

// Configs returns the current meal-type configuration list.
func (e *Editor) Configs() []MealTypeConfig { return e.configs }

func (e *Editor) commit(days []DayPlan) {
	e.days = days
	if e.onUpdate != nil {
		e.onUpdate(e.days, e.configs)
	}
}

func findDay(days []DayPlan, dayID string) *DayPlan {
	for i := range days {
		if days[i].ID == dayID {
			return &days[i]
		}
	}
	return nil
}

// AddMealToCell creates the meal slot for (day, mealType) when absent,
// seeded with one blank option and the resolved meal-type time. A slot
// that exists with an empty option list is re-seeded with one blank
// option; a slot that already has options is left alone.
func (e *Editor) AddMealToCell(dayID, mealType string) {
	if e.readOnly {
		return
	}
	days := CloneDays(e.days)
	day := findDay(days, dayID)
	if day == nil || day.IsFrozen {
		return
	}
	if meal, exists := day.Meals[mealType]; exists {
		if len(meal.FoodOptions) > 0 {
			return
		}
		meal.FoodOptions = []FoodOption{NewBlankOption(0)}
		e.commit(days)
		return
	}
	day.Meals[mealType] = NewMeal(mealType, ResolveMealTime(mealType, e.configs, e.customTimes))
	e.commit(days)
}

// AddFoodOption appends a blank option to the cell. Existing labels are
// not recomputed: the new option's label follows from its position.
func (e *Editor) AddFoodOption(dayID, mealType string) {
	if e.readOnly {
		return
	}
	days := CloneDays(e.days)
	day := findDay(days, dayID)
	if day == nil || day.IsFrozen {
		return
	}
	meal, ok := day.Meals[mealType]
	if !ok {
		return
	}
	meal.FoodOptions = append(meal.FoodOptions, NewBlankOption(len(meal.FoodOptions)))
	e.commit(days)
}

// RemoveFoodOption removes the option at index. Remaining options keep
// their labels. A cell never drops to zero options: removing the last
// one reinstates a single blank.
func (e *Editor) RemoveFoodOption(dayID, mealType string, index int) {
	if e.readOnly {
		return
	}
	days := CloneDays(e.days)
	day := findDay(days, dayID)
	if day == nil || day.IsFrozen {
		return
	}
	meal, ok := day.Meals[mealType]
	if !ok || index < 0 || index >= len(meal.FoodOptions) {
		return
	}
	meal.FoodOptions = append(meal.FoodOptions[:index], meal.FoodOptions[index+1:]...)
	if len(meal.FoodOptions) == 0 {
		meal.FoodOptions = []FoodOption{NewBlankOption(0)}
	}
	e.commit(days)
}

// RelabelOptions rewrites option labels to match positions.
func RelabelOptions(meal *Meal) {
	for i := range meal.FoodOptions {
		meal.FoodOptions[i].Label = LetterFor(i)
	}
}

// UpdateOption overwrites scalar fields of the option at index. Composite
// options ignore direct nutrition edits; their sums are derived.
func (e *Editor) UpdateOption(dayID, mealType string, index int, upd FoodOption) {
	if e.readOnly {
		return
	}
	days := CloneDays(e.days)
	day := findDay(days, dayID)
	if day == nil || day.IsFrozen {
		return
	}
	meal, ok := day.Meals[mealType]
	if !ok || index < 0 || index >= len(meal.FoodOptions) {
		return
	}
	opt := &meal.FoodOptions[index]
	if len(opt.Foods) > 0 {
		opt.Unit = upd.Unit
		e.commit(days)
		return
	}
	opt.Food = upd.Food
	opt.Unit = upd.Unit
	opt.Cal = upd.Cal
	opt.Carbs = upd.Carbs
	opt.Fats = upd.Fats
	opt.Protein = upd.Protein
	opt.Fiber = upd.Fiber
	opt.RecipeUUID = upd.RecipeUUID
	e.commit(days)
}

// SetShowAlternatives toggles whether the cell exposes non-primary
// options to the client audience.
func (e *Editor) SetShowAlternatives(dayID, mealType string, show bool) {
	if e.readOnly {
		return
	}
	days := CloneDays(e.days)
	day := findDay(days, dayID)
	if day == nil || day.IsFrozen {
		return
	}
	meal, ok := day.Meals[mealType]
	if !ok {
		return
	}
	meal.ShowAlternatives = show
	e.commit(days)
}

// SetMealTimeForCell sets the time of one concrete meal slot.
func (e *Editor) SetMealTimeForCell(dayID, mealType, timeStr string) {
	if e.readOnly {
		return
	}
	normalized, ok := NormalizeTime(timeStr)
	if !ok {
		return
	}
	days := CloneDays(e.days)
	day := findDay(days, dayID)
	if day == nil || day.IsFrozen {
		return
	}
	meal, exists := day.Meals[mealType]
	if !exists {
		return
	}
	meal.Time = normalized
	e.commit(days)
}

// AddMealType registers a new meal-type column. Names are unique after
// trimming; blank names are rejected. Existing cells are untouched: the
// column starts empty on every day.
func (e *Editor) AddMealType(name, timeStr string) bool {
	if e.readOnly {
		return false
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	for _, c := range e.configs {
		if strings.EqualFold(c.Name, name) {
			return false
		}
	}
	resolved := DefaultMealTime
	if t, ok := NormalizeTime(timeStr); ok {
		resolved = t
	} else if t, ok := MealTimeSuggestions[name]; ok {
		resolved = t
	}
	e.configs = append(e.configs, MealTypeConfig{Name: name, Time: resolved})
	e.commit(e.days)
	return true
}

// RemoveMealType drops a meal-type column and deletes its cells from
// every unfrozen day.
func (e *Editor) RemoveMealType(name string) {
	if e.readOnly {
		return
	}
	idx := -1
	for i, c := range e.configs {
		if c.Name == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}
	e.configs = append(e.configs[:idx], e.configs[idx+1:]...)
	days := CloneDays(e.days)
	for i := range days {
		if days[i].IsFrozen {
			continue
		}
		delete(days[i].Meals, name)
	}
	e.commit(days)
}

// SetMealTypeTime records a time override for a meal type. The override
// affects ordering and seeds new cells; existing concrete meals keep
// their own times.
func (e *Editor) SetMealTypeTime(name, timeStr string) {
	if e.readOnly {
		return
	}
	normalized, ok := NormalizeTime(timeStr)
	if !ok {
		return
	}
	e.customTimes[name] = normalized
	for i := range e.configs {
		if e.configs[i].Name == name {
			e.configs[i].Time = normalized
		}
	}
	e.commit(e.days)
}

// CopyMealToTargets deep-clones the source cell into every target cell.
// Every clone gets fresh identifiers; targets keep their own meal-type
// name and time. Frozen target days are skipped.
func (e *Editor) CopyMealToTargets(src CellRef, targets []CellRef) {
	if e.readOnly {
		return
	}
	srcDay := findDay(e.days, src.DayID)
	if srcDay == nil {
		return
	}
	srcMeal, ok := srcDay.Meals[src.MealType]
	if !ok {
		return
	}

	days := CloneDays(e.days)
	changed := false
	for _, t := range targets {
		if t.DayID == src.DayID && t.MealType == src.MealType {
			continue
		}
		day := findDay(days, t.DayID)
		if day == nil || day.IsFrozen {
			continue
		}
		clone := CloneMeal(srcMeal, true)
		clone.Name = t.MealType
		if existing, ok := day.Meals[t.MealType]; ok {
			clone.Time = existing.Time
		} else {
			clone.Time = ResolveMealTime(t.MealType, e.configs, e.customTimes)
		}
		day.Meals[t.MealType] = clone
		changed = true
	}
	if changed {
		e.commit(days)
	}
}

// matches reports whether an option's food equals the search term after
// trimming, ignoring case. Composite options match on their constituent
// food names as well as the joined display name.
func matches(o FoodOption, term string) bool {
	term = strings.TrimSpace(strings.ToLower(term))
	if term == "" {
		return false
	}
	if strings.TrimSpace(strings.ToLower(o.Food)) == term {
		return true
	}
	for _, f := range o.Foods {
		if strings.TrimSpace(strings.ToLower(f.Name)) == term {
			return true
		}
	}
	return false
}

// FindReplace rewrites every option matching term across the targeted
// days and meal types (an empty target list means all unfrozen days, or
// all meal types). Returns the number of options changed.
func (e *Editor) FindReplace(term string, replacement FoodOption, mode ReplaceMode, targetDayIDs, targetMealTypes []string) int {
	if e.readOnly {
		return 0
	}
	if mode == "" {
		mode = ReplaceModeRename
	}

	days := CloneDays(e.days)
	count := 0
	for i := range days {
		day := &days[i]
		if day.IsFrozen || !dayTargeted(day.ID, targetDayIDs) {
			continue
		}
		for mealType, meal := range day.Meals {
			if !mealTargeted(mealType, targetMealTypes) {
				continue
			}
			for j := range meal.FoodOptions {
				opt := &meal.FoodOptions[j]
				if !matches(*opt, term) {
					continue
				}
				switch mode {
				case ReplaceModeResolve:
					opt.Food = replacement.Food
					opt.Unit = replacement.Unit
					opt.Cal = replacement.Cal
					opt.Carbs = replacement.Carbs
					opt.Fats = replacement.Fats
					opt.Protein = replacement.Protein
					opt.Fiber = replacement.Fiber
					opt.RecipeUUID = replacement.RecipeUUID
					opt.Foods = nil
				default:
					opt.Food = replacement.Food
					opt.Foods = nil
				}
				count++
			}
		}
	}
	if count > 0 {
		e.commit(days)
	}
	return count
}

// FindDelete removes every option matching term across the targeted
// days and meal types. Surviving options are relabeled; a cell emptied
// by the deletion is reinstated with a single blank option. Returns the
// number removed.
func (e *Editor) FindDelete(term string, targetDayIDs, targetMealTypes []string) int {
	if e.readOnly {
		return 0
	}
	days := CloneDays(e.days)
	count := 0
	for i := range days {
		day := &days[i]
		if day.IsFrozen || !dayTargeted(day.ID, targetDayIDs) {
			continue
		}
		for mealType, meal := range day.Meals {
			if !mealTargeted(mealType, targetMealTypes) {
				continue
			}
			kept := meal.FoodOptions[:0]
			for _, opt := range meal.FoodOptions {
				if matches(opt, term) {
					count++
					continue
				}
				kept = append(kept, opt)
			}
			meal.FoodOptions = kept
			if len(meal.FoodOptions) == 0 {
				meal.FoodOptions = []FoodOption{NewBlankOption(0)}
			} else {
				RelabelOptions(meal)
			}
		}
	}
	if count > 0 {
		e.commit(days)
	}
	return count
}

func dayTargeted(dayID string, targets []string) bool {
	if len(targets) == 0 {
		return true
	}
	for _, t := range targets {
		if t == dayID {
			return true
		}
	}
	return false
}

func mealTargeted(mealType string, targets []string) bool {
	if len(targets) == 0 {
		return true
	}
	for _, t := range targets {
		if strings.EqualFold(t, mealType) {
			return true
		}
	}
	return false
}

// InsertionIndex maps a pointer position to an insertion slot given the
// vertical midpoints of the existing rows, scanned top to bottom. When
// the drag originates in the same cell at sourceIndex, the slot is
// compensated for the row that will vacate (pass -1 for cross-cell
// drags).
func InsertionIndex(pointerY float64, midpoints []float64, sourceIndex int) int {
	idx := len(midpoints)
	for i, mid := range midpoints {
		if pointerY < mid {
			idx = i
			break
		}
	}
	if sourceIndex >= 0 && idx > sourceIndex {
		idx--
	}
	return idx
}

// MoveOption reorders an option within its cell and relabels the result.
func (e *Editor) MoveOption(dayID, mealType string, from, to int) {
	if e.readOnly {
		return
	}
	days := CloneDays(e.days)
	day := findDay(days, dayID)
	if day == nil || day.IsFrozen {
		return
	}
	meal, ok := day.Meals[mealType]
	if !ok {
		return
	}
	n := len(meal.FoodOptions)
	if from < 0 || from >= n || to < 0 || to >= n || from == to {
		return
	}
	opt := meal.FoodOptions[from]
	meal.FoodOptions = append(meal.FoodOptions[:from], meal.FoodOptions[from+1:]...)
	meal.FoodOptions = append(meal.FoodOptions[:to], append([]FoodOption{opt}, meal.FoodOptions[to:]...)...)
	RelabelOptions(meal)
	e.commit(days)
}

// CopyOption clones an option into another cell at the given insertion
// index and relabels the destination. When the destination holds exactly
// one fully-blank option, the clone overwrites it in place and the cell
// keeps its single slot.
func (e *Editor) CopyOption(src CellRef, srcIndex int, dst CellRef, insertIndex int) {
	if e.readOnly {
		return
	}
	days := CloneDays(e.days)
	srcDay := findDay(days, src.DayID)
	if srcDay == nil {
		return
	}
	srcMeal, ok := srcDay.Meals[src.MealType]
	if !ok || srcIndex < 0 || srcIndex >= len(srcMeal.FoodOptions) {
		return
	}
	dstDay := findDay(days, dst.DayID)
	if dstDay == nil || dstDay.IsFrozen {
		return
	}
	dstMeal, ok := dstDay.Meals[dst.MealType]
	if !ok {
		return
	}
	if insertIndex < 0 {
		insertIndex = 0
	}
	if insertIndex > len(dstMeal.FoodOptions) {
		insertIndex = len(dstMeal.FoodOptions)
	}
	clone := CloneOption(srcMeal.FoodOptions[srcIndex], true)
	if len(dstMeal.FoodOptions) == 1 && IsBlankOption(dstMeal.FoodOptions[0]) {
		dstMeal.FoodOptions[0] = clone
	} else {
		dstMeal.FoodOptions = append(dstMeal.FoodOptions[:insertIndex], append([]FoodOption{clone}, dstMeal.FoodOptions[insertIndex:]...)...)
	}
	RelabelOptions(dstMeal)
	e.commit(days)
}

// recomputeComposite rewrites the option's display name and nutrition
// sums from its constituent foods. Each macro is rounded to the nearest
// whole number.
func recomputeComposite(opt *FoodOption) {
	if len(opt.Foods) == 0 {
		return
	}
	names := make([]string, 0, len(opt.Foods))
	var cal, carbs, fats, protein, fiber float64
	for _, f := range opt.Foods {
		if n := strings.TrimSpace(f.Name); n != "" {
			names = append(names, n)
		}
		cal += ParseNum(f.Cal)
		carbs += ParseNum(f.Carbs)
		fats += ParseNum(f.Fats)
		protein += ParseNum(f.Protein)
		fiber += ParseNum(f.Fiber)
	}
	opt.Food = strings.Join(names, " + ")
	opt.Cal = FormatNum(roundHalf(cal))
	opt.Carbs = FormatNum(roundHalf(carbs))
	opt.Fats = FormatNum(roundHalf(fats))
	opt.Protein = FormatNum(roundHalf(protein))
	opt.Fiber = FormatNum(roundHalf(fiber))
}

func roundHalf(v float64) float64 {
	if v < 0 {
		return -float64(int64(-v + 0.5))
	}
	return float64(int64(v + 0.5))
}

// SetFoods replaces the constituent list of a composite option and
// recomputes its sums. An empty list reverts the option to simple form
// with cleared nutrition.
func (e *Editor) SetFoods(dayID, mealType string, index int, foods []FoodItem) {
	if e.readOnly {
		return
	}
	days := CloneDays(e.days)
	day := findDay(days, dayID)
	if day == nil || day.IsFrozen {
		return
	}
	meal, ok := day.Meals[mealType]
	if !ok || index < 0 || index >= len(meal.FoodOptions) {
		return
	}
	opt := &meal.FoodOptions[index]
	if len(foods) == 0 {
		opt.Foods = nil
		opt.Food = ""
		opt.Cal, opt.Carbs, opt.Fats, opt.Protein, opt.Fiber = "", "", "", "", ""
		e.commit(days)
		return
	}
	opt.Foods = make([]FoodItem, len(foods))
	copy(opt.Foods, foods)
	for i := range opt.Foods {
		if opt.Foods[i].ID == "" {
			opt.Foods[i].ID = uuid.New().String()
		}
	}
	recomputeComposite(opt)
	e.commit(days)
}

// AddFood appends one constituent to a composite option. A simple option
// with an existing food becomes composite, its prior content preserved
// as the first constituent.
func (e *Editor) AddFood(dayID, mealType string, index int, food FoodItem) {
	if e.readOnly {
		return
	}
	days := CloneDays(e.days)
	day := findDay(days, dayID)
	if day == nil || day.IsFrozen {
		return
	}
	meal, ok := day.Meals[mealType]
	if !ok || index < 0 || index >= len(meal.FoodOptions) {
		return
	}
	opt := &meal.FoodOptions[index]
	if len(opt.Foods) == 0 && strings.TrimSpace(opt.Food) != "" {
		opt.Foods = []FoodItem{{
			ID:         uuid.New().String(),
			Name:       opt.Food,
			Unit:       opt.Unit,
			Cal:        opt.Cal,
			Carbs:      opt.Carbs,
			Fats:       opt.Fats,
			Protein:    opt.Protein,
			Fiber:      opt.Fiber,
			RecipeUUID: opt.RecipeUUID,
		}}
		opt.RecipeUUID = ""
	}
	if food.ID == "" {
		food.ID = uuid.New().String()
	}
	opt.Foods = append(opt.Foods, food)
	recomputeComposite(opt)
	e.commit(days)
}

// RemoveFood drops one constituent from a composite option. When a
// single constituent remains, the option collapses back to simple form.
func (e *Editor) RemoveFood(dayID, mealType string, index, foodIndex int) {
	if e.readOnly {
		return
	}
	days := CloneDays(e.days)
	day := findDay(days, dayID)
	if day == nil || day.IsFrozen {
		return
	}
	meal, ok := day.Meals[mealType]
	if !ok || index < 0 || index >= len(meal.FoodOptions) {
		return
	}
	opt := &meal.FoodOptions[index]
	if foodIndex < 0 || foodIndex >= len(opt.Foods) {
		return
	}
	opt.Foods = append(opt.Foods[:foodIndex], opt.Foods[foodIndex+1:]...)
	switch len(opt.Foods) {
	case 0:
		opt.Foods = nil
		opt.Food = ""
		opt.Cal, opt.Carbs, opt.Fats, opt.Protein, opt.Fiber = "", "", "", "", ""
	case 1:
		f := opt.Foods[0]
		opt.Foods = nil
		opt.Food = f.Name
		opt.Unit = f.Unit
		opt.Cal = f.Cal
		opt.Carbs = f.Carbs
		opt.Fats = f.Fats
		opt.Protein = f.Protein
		opt.Fiber = f.Fiber
		opt.RecipeUUID = f.RecipeUUID
	default:
		recomputeComposite(opt)
	}
	e.commit(days)
}

// SetNote sets the per-day note.
func (e *Editor) SetNote(dayID, note string) {
	if e.readOnly {
		return
	}
	days := CloneDays(e.days)
	day := findDay(days, dayID)
	if day == nil || day.IsFrozen {
		return
	}
	day.Note = note
	e.commit(days)
}

// HoldDay marks a day held with a reason. Held days keep their content
// but drop out of totals and exported summaries.
func (e *Editor) HoldDay(dayID, reason string) {
	if e.readOnly {
		return
	}
	days := CloneDays(e.days)
	day := findDay(days, dayID)
	if day == nil || day.IsFrozen {
		return
	}
	day.IsHeld = true
	day.HoldReason = reason
	e.commit(days)
}

// ReleaseDay clears the hold.
func (e *Editor) ReleaseDay(dayID string) {
	if e.readOnly {
		return
	}
	days := CloneDays(e.days)
	day := findDay(days, dayID)
	if day == nil || day.IsFrozen {
		return
	}
	day.IsHeld = false
	day.HoldReason = ""
	e.commit(days)
}

// FreezeDay locks a day against further edits, recording who froze it.
func (e *Editor) FreezeDay(dayID, by string) {
	if e.readOnly {
		return
	}
	days := CloneDays(e.days)
	day := findDay(days, dayID)
	if day == nil || day.IsFrozen {
		return
	}
	day.IsFrozen = true
	day.FrozenBy = by
	day.FrozenAt = e.now().UTC().Format(time.RFC3339)
	e.commit(days)
}

// UnfreezeDay lifts the lock.
func (e *Editor) UnfreezeDay(dayID string) {
	if e.readOnly {
		return
	}
	days := CloneDays(e.days)
	day := findDay(days, dayID)
	if day == nil {
		return
	}
	day.IsFrozen = false
	day.FrozenBy = ""
	day.FrozenAt = ""
	e.commit(days)
}
