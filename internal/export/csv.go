package export

import (
	"bytes"
	"encoding/csv"
	"time"

	"github.com/nutridesk/server/internal/dietplan"
)

// RenderCSV renders the plan as long-form CSV: one row per meal's
// primary food, one row per shown alternative, then a total row per
// day and a trailing plan summary block. Macro columns appear for the
// dietitian audience only. Held days keep their total row, marked in
// the note, but contribute nothing to the summary.
func RenderCSV(doc PlanDocument, audience string, generatedAt time.Time) ([]byte, error) {
	doc = doc.ForAudience(audience)
	days := OrderedDays(doc.Days)
	columns := MealColumns(days, doc.MealTypes)
	showMacros := audience != AudienceClient

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"day", "date", "meal", "entry", "food", "amount"}
	if showMacros {
		header = append(header, "cal", "carbs", "fats", "protein", "fiber")
	}
	header = append(header, "note")
	if err := w.Write(header); err != nil {
		return nil, err
	}

	writeRow := func(day, date, meal, entry string, opt *dietplan.FoodOption, totals *dietplan.Totals, note string) error {
		row := []string{day, date, meal, entry}
		if opt != nil {
			row = append(row, opt.Food, opt.Unit)
		} else {
			row = append(row, "", "")
		}
		if showMacros {
			switch {
			case totals != nil:
				row = append(row,
					dietplan.FormatNum(totals.Cal),
					dietplan.FormatNum(totals.Carbs),
					dietplan.FormatNum(totals.Fats),
					dietplan.FormatNum(totals.Protein),
					dietplan.FormatNum(totals.Fiber),
				)
			case opt != nil:
				row = append(row, opt.Cal, opt.Carbs, opt.Fats, opt.Protein, opt.Fiber)
			default:
				row = append(row, "", "", "", "", "")
			}
		}
		row = append(row, note)
		return w.Write(row)
	}

	for _, day := range days {
		for _, col := range columns {
			meal := day.Meals[col]
			if meal == nil || len(meal.FoodOptions) == 0 {
				continue
			}
			primary := meal.FoodOptions[0]
			if !dietplan.IsBlankOption(primary) {
				if err := writeRow(day.Day, day.Date, col, "primary", &primary, nil, ""); err != nil {
					return nil, err
				}
			}
			if !meal.ShowAlternatives {
				continue
			}
			for i := range meal.FoodOptions[1:] {
				alt := meal.FoodOptions[i+1]
				if dietplan.IsBlankOption(alt) {
					continue
				}
				if err := writeRow(day.Day, day.Date, col, "alternative", &alt, nil, ""); err != nil {
					return nil, err
				}
			}
		}

		note := day.Note
		if day.IsHeld {
			if day.HoldReason != "" {
				note = "ON HOLD: " + day.HoldReason
			} else {
				note = "ON HOLD"
			}
		}
		var totals *dietplan.Totals
		if showMacros && !day.IsHeld {
			t := dietplan.DayTotals(day)
			totals = &t
		}
		if err := writeRow(day.Day, day.Date, "", "day total", nil, totals, note); err != nil {
			return nil, err
		}
	}

	if showMacros {
		summary := dietplan.Summarize(days, doc.DurationDays)
		for _, block := range []struct {
			label string
			t     dietplan.Totals
		}{
			{"total", summary.Total},
			{"avg_per_duration", summary.AvgPerDuration},
			{"avg_per_filled", summary.AvgPerFilled},
		} {
			if err := writeRow("", "", "", block.label, nil, &block.t, ""); err != nil {
				return nil, err
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
