package dietplan

import (
	"math"
	"testing"
)

func mealWith(primary FoodOption, alternatives ...FoodOption) *Meal {
	return &Meal{
		ID:          "m",
		FoodOptions: append([]FoodOption{primary}, alternatives...),
	}
}

func TestDayTotalsUsesPrimaryOptionOnly(t *testing.T) {
	day := DayPlan{
		Meals: map[string]*Meal{
			"Breakfast": mealWith(
				FoodOption{Food: "Oats", Cal: "150", Protein: "5"},
				FoodOption{Food: "Eggs", Cal: "300", Protein: "20"},
			),
			"Lunch": mealWith(FoodOption{Food: "Rice", Cal: "200", Protein: "4"}),
		},
	}

	got := DayTotals(day)
	if got.Cal != 350 {
		t.Errorf("cal = %v, alternatives must not count", got.Cal)
	}
	if got.Protein != 9 {
		t.Errorf("protein = %v", got.Protein)
	}
}

func TestSummarizeExcludesHeldDays(t *testing.T) {
	days := []DayPlan{
		{Meals: map[string]*Meal{"Lunch": mealWith(FoodOption{Food: "Rice", Cal: "200"})}},
		{IsHeld: true, Meals: map[string]*Meal{"Lunch": mealWith(FoodOption{Food: "Rice", Cal: "999"})}},
		{Meals: map[string]*Meal{"Lunch": mealWith(FoodOption{Food: "Pasta", Cal: "400"})}},
		{Meals: map[string]*Meal{}}, // empty day
	}

	s := Summarize(days, 7)
	if s.Total.Cal != 600 {
		t.Errorf("total cal = %v, held day must be excluded", s.Total.Cal)
	}
	if s.FilledDays != 2 {
		t.Errorf("filled days = %d", s.FilledDays)
	}
	if s.HeldDays != 1 {
		t.Errorf("held days = %d", s.HeldDays)
	}
	if s.DurationDays != 7 {
		t.Errorf("duration = %d", s.DurationDays)
	}
}

func TestSummarizeBothDenominators(t *testing.T) {
	days := []DayPlan{
		{Meals: map[string]*Meal{"Lunch": mealWith(FoodOption{Food: "A", Cal: "300"})}},
		{Meals: map[string]*Meal{"Lunch": mealWith(FoodOption{Food: "B", Cal: "500"})}},
	}

	s := Summarize(days, 4)
	if math.Abs(s.AvgPerDuration.Cal-200) > 1e-9 {
		t.Errorf("avg per duration = %v, want 800/4", s.AvgPerDuration.Cal)
	}
	if math.Abs(s.AvgPerFilled.Cal-400) > 1e-9 {
		t.Errorf("avg per filled = %v, want 800/2", s.AvgPerFilled.Cal)
	}
}

func TestSummarizeEmptyPlan(t *testing.T) {
	s := Summarize(nil, 7)
	if s.Total.Cal != 0 || s.AvgPerFilled.Cal != 0 || s.AvgPerDuration.Cal != 0 {
		t.Error("empty plan should produce zero totals without dividing by zero")
	}
}

func TestDayHasContent(t *testing.T) {
	blank := DayPlan{Meals: map[string]*Meal{"Lunch": mealWith(NewBlankOption(0))}}
	if DayHasContent(blank) {
		t.Error("blank primary option counts as content")
	}

	filled := DayPlan{Meals: map[string]*Meal{"Lunch": mealWith(FoodOption{Food: "Rice"})}}
	if !DayHasContent(filled) {
		t.Error("filled day not detected")
	}
}
