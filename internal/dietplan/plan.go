package dietplan

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// FoodItem is one constituent of a composite food option.
type FoodItem struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Unit       string `json:"unit"`
	Cal        string `json:"cal"`
	Carbs      string `json:"carbs"`
	Fats       string `json:"fats"`
	Protein    string `json:"protein"`
	Fiber      string `json:"fiber"`
	RecipeUUID string `json:"recipe_uuid,omitempty"`
}

// FoodOption is a single food choice within a meal slot. When Foods is
// populated the option is a composite: the scalar nutrition fields are
// derived sums over Foods and must not be edited directly.
type FoodOption struct {
	ID         string     `json:"id"`
	Label      string     `json:"label"`
	Food       string     `json:"food"`
	Unit       string     `json:"unit"`
	Cal        string     `json:"cal"`
	Carbs      string     `json:"carbs"`
	Fats       string     `json:"fats"`
	Protein    string     `json:"protein"`
	Fiber      string     `json:"fiber"`
	RecipeUUID string     `json:"recipe_uuid,omitempty"`
	Foods      []FoodItem `json:"foods,omitempty"`
}

// Meal is one named, timed slot within a day. FoodOptions order is
// meaningful: the first option is primary, the rest are alternatives.
type Meal struct {
	ID               string       `json:"id"`
	Time             string       `json:"time"` // HH:MM, 24-hour
	Name             string       `json:"name"`
	ShowAlternatives bool         `json:"show_alternatives"`
	FoodOptions      []FoodOption `json:"food_options"`
}

// DayPlan is one calendar day of a multi-day plan. Meals is keyed by
// meal-type name; display order derives from MealTypeConfig times, never
// from map iteration.
type DayPlan struct {
	ID         string           `json:"id"`
	Day        string           `json:"day"` // display label, derived
	Date       string           `json:"date,omitempty"`
	Meals      map[string]*Meal `json:"meals"`
	Note       string           `json:"note,omitempty"`
	IsHeld     bool             `json:"is_held,omitempty"`
	HoldReason string           `json:"hold_reason,omitempty"`
	IsFrozen   bool             `json:"is_frozen,omitempty"`
	FrozenBy   string           `json:"frozen_by,omitempty"`
	FrozenAt   string           `json:"frozen_at,omitempty"`
}

// MealTypeConfig is one meal-type column shown across all days.
type MealTypeConfig struct {
	Name string `json:"name"`
	Time string `json:"time"` // HH:MM, 24-hour
}

const dateLayout = "2006-01-02"

// DefaultMealTime is the ordering fallback for meal types without a
// configured or suggested time.
const DefaultMealTime = "12:00"

// MealTimeSuggestions maps built-in meal types to their default times.
var MealTimeSuggestions = map[string]string{
	"Breakfast":         "08:00",
	"Mid-Morning Snack": "10:30",
	"Lunch":             "13:00",
	"Evening Snack":     "16:30",
	"Dinner":            "19:30",
	"Bedtime":           "22:00",
}

// mealSortOrder breaks same-time ties between built-in meal types.
// Custom types sort last on ties.
var mealSortOrder = map[string]int{
	"Breakfast":         1,
	"Mid-Morning Snack": 2,
	"Lunch":             3,
	"Evening Snack":     4,
	"Dinner":            5,
	"Bedtime":           6,
}

const customMealSortOrder = 99

// LetterFor returns the positional display label for option index i:
// "A Food", "B Food", and so on.
func LetterFor(i int) string {
	return string(rune('A'+i)) + " Food"
}

// NewBlankOption creates an empty food option with the label for index i.
func NewBlankOption(i int) FoodOption {
	return FoodOption{
		ID:    uuid.New().String(),
		Label: LetterFor(i),
	}
}

// NewMeal creates a meal slot seeded with a single blank option.
func NewMeal(name, timeStr string) *Meal {
	return &Meal{
		ID:          uuid.New().String(),
		Time:        timeStr,
		Name:        name,
		FoodOptions: []FoodOption{NewBlankOption(0)},
	}
}

// IsBlankOption reports whether the option carries no food.
func IsBlankOption(o FoodOption) bool {
	return strings.TrimSpace(o.Food) == "" && len(o.Foods) == 0
}

// DayLabel derives the display label for a day: "12 - Day 3 - Wednesday".
func DayLabel(date time.Time, ordinal int) string {
	return fmt.Sprintf("%d - Day %d - %s", date.Day(), ordinal, date.Weekday().String())
}

// BuildDays builds a DayPlan array of exactly duration entries starting
// at startDate (today when empty), merging per-day fields from existing
// by position. Labels and dates are always recomputed.
func BuildDays(duration int, startDate string, existing []DayPlan) []DayPlan {
	start, err := time.Parse(dateLayout, startDate)
	if err != nil {
		start = time.Now().UTC().Truncate(24 * time.Hour)
	}

	days := make([]DayPlan, duration)
	for i := 0; i < duration; i++ {
		date := start.AddDate(0, 0, i)
		day := DayPlan{
			ID:    uuid.New().String(),
			Day:   DayLabel(date, i+1),
			Date:  date.Format(dateLayout),
			Meals: make(map[string]*Meal),
		}

		if i < len(existing) {
			prev := existing[i]
			day.ID = prev.ID
			day.Note = prev.Note
			day.IsHeld = prev.IsHeld
			day.HoldReason = prev.HoldReason
			day.IsFrozen = prev.IsFrozen
			day.FrozenBy = prev.FrozenBy
			day.FrozenAt = prev.FrozenAt
			if prev.Meals != nil {
				day.Meals = prev.Meals
			}
		}
		days[i] = day
	}
	return days
}

// ParseNum parses a numeric-as-string nutrition field, defaulting to 0.
func ParseNum(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}

// FormatNum renders an aggregated value back to the string shape the
// nutrition fields use. Whole numbers drop the decimal part.
func FormatNum(v float64) string {
	if v == math.Trunc(v) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// NormalizeTime coerces a time string to zero-padded 24-hour HH:MM.
// Accepts "H:MM", "HH:MM" and 12-hour forms with AM/PM suffixes.
// Returns false when the input cannot be parsed.
func NormalizeTime(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}

	upper := strings.ToUpper(s)
	meridiem := ""
	for _, suffix := range []string{"AM", "PM"} {
		if strings.HasSuffix(upper, suffix) {
			meridiem = suffix
			upper = strings.TrimSpace(strings.TrimSuffix(upper, suffix))
			break
		}
	}

	parts := strings.Split(upper, ":")
	if len(parts) != 2 {
		return "", false
	}
	hour, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return "", false
	}
	minute, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return "", false
	}
	if minute < 0 || minute > 59 {
		return "", false
	}

	switch meridiem {
	case "AM":
		if hour < 1 || hour > 12 {
			return "", false
		}
		if hour == 12 {
			hour = 0
		}
	case "PM":
		if hour < 1 || hour > 12 {
			return "", false
		}
		if hour != 12 {
			hour += 12
		}
	default:
		if hour < 0 || hour > 23 {
			return "", false
		}
	}

	return fmt.Sprintf("%02d:%02d", hour, minute), true
}

// ResolveMealTime resolves the display/ordering time for a meal type:
// custom override, then configured time, then suggestion, then the
// default. The zero-padded 24-hour format makes lexicographic comparison
// order-correct.
func ResolveMealTime(name string, configs []MealTypeConfig, customTimes map[string]string) string {
	if t, ok := customTimes[name]; ok && t != "" {
		return t
	}
	for _, c := range configs {
		if c.Name == name && c.Time != "" {
			return c.Time
		}
	}
	if t, ok := MealTimeSuggestions[name]; ok {
		return t
	}
	return DefaultMealTime
}

// OrderedMealTypes sorts meal-type names by resolved time, using the
// canonical order table to break same-time ties (custom types last).
func OrderedMealTypes(names []string, configs []MealTypeConfig, customTimes map[string]string) []string {
	ordered := make([]string, len(names))
	copy(ordered, names)

	sortOrder := func(name string) int {
		if o, ok := mealSortOrder[name]; ok {
			return o
		}
		return customMealSortOrder
	}

	// Insertion sort keeps ordering stable for equal keys.
	for i := 1; i < len(ordered); i++ {
		for j := i; j > 0; j-- {
			a, b := ordered[j-1], ordered[j]
			ta := ResolveMealTime(a, configs, customTimes)
			tb := ResolveMealTime(b, configs, customTimes)
			if ta < tb || (ta == tb && sortOrder(a) <= sortOrder(b)) {
				break
			}
			ordered[j-1], ordered[j] = ordered[j], ordered[j-1]
		}
	}
	return ordered
}

// CloneDays deep-copies a DayPlan slice, including nested meals and
// option lists.
func CloneDays(days []DayPlan) []DayPlan {
	out := make([]DayPlan, len(days))
	for i, d := range days {
		out[i] = d
		out[i].Meals = make(map[string]*Meal, len(d.Meals))
		for name, meal := range d.Meals {
			out[i].Meals[name] = CloneMeal(meal, false)
		}
	}
	return out
}

// CloneMeal copies a meal. When freshIDs is set, the meal and every
// option and food item receive new identifiers (used by copy-to-many).
func CloneMeal(m *Meal, freshIDs bool) *Meal {
	if m == nil {
		return nil
	}
	clone := *m
	if freshIDs {
		clone.ID = uuid.New().String()
	}
	clone.FoodOptions = make([]FoodOption, len(m.FoodOptions))
	for i, opt := range m.FoodOptions {
		clone.FoodOptions[i] = CloneOption(opt, freshIDs)
	}
	return &clone
}

// CloneOption copies a food option and its constituent foods.
func CloneOption(o FoodOption, freshIDs bool) FoodOption {
	clone := o
	if freshIDs {
		clone.ID = uuid.New().String()
	}
	if o.Foods != nil {
		clone.Foods = make([]FoodItem, len(o.Foods))
		for i, f := range o.Foods {
			clone.Foods[i] = f
			if freshIDs {
				clone.Foods[i].ID = uuid.New().String()
			}
		}
	}
	return clone
}
