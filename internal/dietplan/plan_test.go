package dietplan

import (
	"testing"
	"time"
)

func TestLetterFor(t *testing.T) {
	cases := map[int]string{0: "A Food", 1: "B Food", 2: "C Food", 9: "J Food"}
	for i, want := range cases {
		if got := LetterFor(i); got != want {
			t.Errorf("LetterFor(%d) = %q, want %q", i, got, want)
		}
	}
}

func TestDayLabel(t *testing.T) {
	// 2025-03-12 is a Wednesday.
	date := time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)
	if got := DayLabel(date, 3); got != "12 - Day 3 - Wednesday" {
		t.Errorf("DayLabel = %q", got)
	}
}

func TestBuildDaysFresh(t *testing.T) {
	days := BuildDays(7, "2025-03-10", nil)
	if len(days) != 7 {
		t.Fatalf("expected 7 days, got %d", len(days))
	}
	if days[0].Date != "2025-03-10" {
		t.Errorf("first date = %s", days[0].Date)
	}
	if days[6].Date != "2025-03-16" {
		t.Errorf("last date = %s", days[6].Date)
	}
	// 2025-03-10 is a Monday.
	if days[0].Day != "10 - Day 1 - Monday" {
		t.Errorf("first label = %q", days[0].Day)
	}
	for _, d := range days {
		if d.ID == "" {
			t.Error("day missing ID")
		}
		if d.Meals == nil {
			t.Error("day missing meals map")
		}
	}
}

func TestBuildDaysMergesExistingByPosition(t *testing.T) {
	existing := BuildDays(3, "2025-03-10", nil)
	existing[1].Note = "fasting day"
	existing[1].IsHeld = true
	existing[1].HoldReason = "travel"
	existing[1].Meals["Lunch"] = NewMeal("Lunch", "13:00")

	days := BuildDays(5, "2025-03-10", existing)
	if len(days) != 5 {
		t.Fatalf("expected 5 days, got %d", len(days))
	}
	if days[1].Note != "fasting day" || !days[1].IsHeld || days[1].HoldReason != "travel" {
		t.Error("per-day fields not merged")
	}
	if _, ok := days[1].Meals["Lunch"]; !ok {
		t.Error("meals not merged")
	}
	if days[1].ID != existing[1].ID {
		t.Error("day identity not preserved")
	}
	// Labels are always recomputed.
	if days[1].Day != "11 - Day 2 - Tuesday" {
		t.Errorf("label = %q", days[1].Day)
	}
}

func TestBuildDaysShrinks(t *testing.T) {
	existing := BuildDays(7, "2025-03-10", nil)
	days := BuildDays(3, "2025-03-10", existing)
	if len(days) != 3 {
		t.Errorf("expected 3 days, got %d", len(days))
	}
}

func TestParseNum(t *testing.T) {
	cases := map[string]float64{
		"150":   150,
		" 89.5 ": 89.5,
		"":      0,
		"abc":   0,
	}
	for in, want := range cases {
		if got := ParseNum(in); got != want {
			t.Errorf("ParseNum(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestFormatNum(t *testing.T) {
	if got := FormatNum(239); got != "239" {
		t.Errorf("FormatNum(239) = %q", got)
	}
	if got := FormatNum(10.5); got != "10.5" {
		t.Errorf("FormatNum(10.5) = %q", got)
	}
}

func TestNormalizeTime(t *testing.T) {
	cases := map[string]string{
		"08:00":    "08:00",
		"8:00":     "08:00",
		"7:30 PM":  "19:30",
		"12:00 AM": "00:00",
		"12:15 PM": "12:15",
		"23:59":    "23:59",
	}
	for in, want := range cases {
		got, ok := NormalizeTime(in)
		if !ok {
			t.Errorf("NormalizeTime(%q) failed", in)
			continue
		}
		if got != want {
			t.Errorf("NormalizeTime(%q) = %q, want %q", in, got, want)
		}
	}

	for _, bad := range []string{"", "25:00", "12:60", "noon", "13:00 PM"} {
		if _, ok := NormalizeTime(bad); ok {
			t.Errorf("NormalizeTime(%q) should fail", bad)
		}
	}
}

func TestResolveMealTime(t *testing.T) {
	configs := []MealTypeConfig{{Name: "Lunch", Time: "12:30"}}
	custom := map[string]string{"Dinner": "20:00"}

	if got := ResolveMealTime("Dinner", configs, custom); got != "20:00" {
		t.Errorf("custom override: got %q", got)
	}
	if got := ResolveMealTime("Lunch", configs, custom); got != "12:30" {
		t.Errorf("configured time: got %q", got)
	}
	if got := ResolveMealTime("Breakfast", configs, custom); got != "08:00" {
		t.Errorf("suggestion: got %q", got)
	}
	if got := ResolveMealTime("Post-Workout", configs, custom); got != DefaultMealTime {
		t.Errorf("default: got %q", got)
	}
}

func TestOrderedMealTypesByTime(t *testing.T) {
	names := []string{"Dinner", "Breakfast", "Lunch"}
	got := OrderedMealTypes(names, nil, nil)
	want := []string{"Breakfast", "Lunch", "Dinner"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestOrderedMealTypesTieBreak(t *testing.T) {
	// Same time: canonical order decides, custom types last.
	configs := []MealTypeConfig{
		{Name: "Lunch", Time: "13:00"},
		{Name: "Breakfast", Time: "13:00"},
		{Name: "Post-Workout", Time: "13:00"},
	}
	got := OrderedMealTypes([]string{"Post-Workout", "Lunch", "Breakfast"}, configs, nil)
	want := []string{"Breakfast", "Lunch", "Post-Workout"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestInsertionIndex(t *testing.T) {
	mids := []float64{10, 30, 50}

	// Cross-cell drags: no compensation.
	if got := InsertionIndex(5, mids, -1); got != 0 {
		t.Errorf("above first midpoint: got %d", got)
	}
	if got := InsertionIndex(20, mids, -1); got != 1 {
		t.Errorf("between rows: got %d", got)
	}
	if got := InsertionIndex(100, mids, -1); got != 3 {
		t.Errorf("below all rows: got %d", got)
	}

	// Same-cell drag downward: the vacating row shifts the slot up one.
	if got := InsertionIndex(100, mids, 0); got != 2 {
		t.Errorf("same-cell down: got %d", got)
	}
	// Same-cell drag upward: no compensation.
	if got := InsertionIndex(5, mids, 2); got != 0 {
		t.Errorf("same-cell up: got %d", got)
	}
}

func TestCloneDaysIsDeep(t *testing.T) {
	days := BuildDays(1, "2025-03-10", nil)
	days[0].Meals["Lunch"] = NewMeal("Lunch", "13:00")
	days[0].Meals["Lunch"].FoodOptions[0].Food = "Rice"

	clone := CloneDays(days)
	clone[0].Meals["Lunch"].FoodOptions[0].Food = "Pasta"
	clone[0].Meals["Lunch"].FoodOptions = append(clone[0].Meals["Lunch"].FoodOptions, NewBlankOption(1))

	if days[0].Meals["Lunch"].FoodOptions[0].Food != "Rice" {
		t.Error("clone shares option data with original")
	}
	if len(days[0].Meals["Lunch"].FoodOptions) != 1 {
		t.Error("clone shares option slice with original")
	}
}

func TestCloneMealFreshIDs(t *testing.T) {
	meal := NewMeal("Lunch", "13:00")
	meal.FoodOptions[0].Food = "Rice"
	meal.FoodOptions[0].Foods = []FoodItem{{ID: "f1", Name: "Rice"}}

	clone := CloneMeal(meal, true)
	if clone.ID == meal.ID {
		t.Error("meal ID not refreshed")
	}
	if clone.FoodOptions[0].ID == meal.FoodOptions[0].ID {
		t.Error("option ID not refreshed")
	}
	if clone.FoodOptions[0].Foods[0].ID == "f1" {
		t.Error("food item ID not refreshed")
	}
	if clone.FoodOptions[0].Food != "Rice" {
		t.Error("content lost in clone")
	}
}
