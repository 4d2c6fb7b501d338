package dietplan

// Totals aggregates the macro columns of a day or a plan. Only the
// primary (first) option of each meal contributes; alternatives are
// choices, not additions.
type Totals struct {
	Cal     float64 `json:"cal"`
	Carbs   float64 `json:"carbs"`
	Fats    float64 `json:"fats"`
	Protein float64 `json:"protein"`
	Fiber   float64 `json:"fiber"`
}

func (t *Totals) add(o FoodOption) {
	t.Cal += ParseNum(o.Cal)
	t.Carbs += ParseNum(o.Carbs)
	t.Fats += ParseNum(o.Fats)
	t.Protein += ParseNum(o.Protein)
	t.Fiber += ParseNum(o.Fiber)
}

func (t Totals) scale(div float64) Totals {
	if div == 0 {
		return Totals{}
	}
	return Totals{
		Cal:     t.Cal / div,
		Carbs:   t.Carbs / div,
		Fats:    t.Fats / div,
		Protein: t.Protein / div,
		Fiber:   t.Fiber / div,
	}
}

// DayTotals sums the primary option of every meal in the day.
func DayTotals(day DayPlan) Totals {
	var t Totals
	for _, meal := range day.Meals {
		if meal == nil || len(meal.FoodOptions) == 0 {
			continue
		}
		t.add(meal.FoodOptions[0])
	}
	return t
}

// DayHasContent reports whether any meal in the day carries a non-blank
// primary option.
func DayHasContent(day DayPlan) bool {
	for _, meal := range day.Meals {
		if meal == nil || len(meal.FoodOptions) == 0 {
			continue
		}
		if !IsBlankOption(meal.FoodOptions[0]) {
			return true
		}
	}
	return false
}

// PlanSummary carries plan-level aggregates with both averaging
// denominators exposed: the full plan duration and the count of days
// that actually have content. Held days contribute to neither the sums
// nor the filled-day count.
type PlanSummary struct {
	Total          Totals `json:"total"`
	DurationDays   int    `json:"duration_days"`
	FilledDays     int    `json:"filled_days"`
	HeldDays       int    `json:"held_days"`
	AvgPerDuration Totals `json:"avg_per_duration"`
	AvgPerFilled   Totals `json:"avg_per_filled"`
}

// Summarize computes plan totals over the unheld days.
func Summarize(days []DayPlan, duration int) PlanSummary {
	s := PlanSummary{DurationDays: duration}
	for _, day := range days {
		if day.IsHeld {
			s.HeldDays++
			continue
		}
		if !DayHasContent(day) {
			continue
		}
		t := DayTotals(day)
		s.Total.Cal += t.Cal
		s.Total.Carbs += t.Carbs
		s.Total.Fats += t.Fats
		s.Total.Protein += t.Protein
		s.Total.Fiber += t.Fiber
		s.FilledDays++
	}
	s.AvgPerDuration = s.Total.scale(float64(duration))
	s.AvgPerFilled = s.Total.scale(float64(s.FilledDays))
	return s
}
