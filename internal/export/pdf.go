package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/nutridesk/server/internal/dietplan"
)

// RenderPDF renders the plan as a landscape A4 table. Column widths are
// split evenly across the meal types; long cell text is truncated to
// keep the grid readable.
func RenderPDF(doc PlanDocument, audience string, generatedAt time.Time) ([]byte, error) {
	doc = doc.ForAudience(audience)
	days := OrderedDays(doc.Days)
	columns := MealColumns(days, doc.MealTypes)
	showMacros := audience != AudienceClient

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetFont("Arial", "", 16)
	pdf.AddPage()

	title := doc.Title
	if title == "" {
		title = fmt.Sprintf("Diet Plan - %s", doc.ClientName)
	}
	pdf.Cell(0, 10, title)
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("%s - %d days - generated %s",
		doc.ClientName, doc.DurationDays, generatedAt.Format("2006-01-02")))
	pdf.Ln(10)

	const pageWidth = 277.0 // A4 landscape printable width
	dayW := 28.0
	macroW := 0.0
	macroCols := 0
	if showMacros {
		macroCols = 5
		macroW = 14.0
	}
	mealW := (pageWidth - dayW - float64(macroCols)*macroW) / float64(max(len(columns), 1))

	pdf.SetFont("Arial", "B", 8)
	pdf.CellFormat(dayW, 6, "Day", "1", 0, "C", false, 0, "")
	for _, col := range columns {
		pdf.CellFormat(mealW, 6, truncate(col, mealW), "1", 0, "C", false, 0, "")
	}
	if showMacros {
		for _, h := range []string{"Cal", "Carbs", "Fats", "Prot", "Fiber"} {
			pdf.CellFormat(macroW, 6, h, "1", 0, "C", false, 0, "")
		}
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 8)
	for _, day := range days {
		label := day.Day
		if day.IsHeld {
			label += " (hold)"
		}
		pdf.CellFormat(dayW, 6, truncate(label, dayW), "1", 0, "L", false, 0, "")
		for _, col := range columns {
			pdf.CellFormat(mealW, 6, truncate(cellText(day.Meals[col]), mealW), "1", 0, "L", false, 0, "")
		}
		if showMacros {
			if day.IsHeld {
				for i := 0; i < macroCols; i++ {
					pdf.CellFormat(macroW, 6, "", "1", 0, "C", false, 0, "")
				}
			} else {
				t := dietplan.DayTotals(day)
				for _, v := range []float64{t.Cal, t.Carbs, t.Fats, t.Protein, t.Fiber} {
					pdf.CellFormat(macroW, 6, dietplan.FormatNum(v), "1", 0, "C", false, 0, "")
				}
			}
		}
		pdf.Ln(-1)
	}

	if showMacros {
		summary := dietplan.Summarize(days, doc.DurationDays)
		pdf.Ln(6)
		pdf.SetFont("Arial", "", 10)
		pdf.Cell(0, 6, fmt.Sprintf("Total: %s kcal over %d filled days (%d held)",
			dietplan.FormatNum(summary.Total.Cal), summary.FilledDays, summary.HeldDays))
		pdf.Ln(5)
		pdf.Cell(0, 6, fmt.Sprintf("Average per %d-day plan: %s kcal",
			summary.DurationDays, dietplan.FormatNum(summary.AvgPerDuration.Cal)))
		pdf.Ln(5)
		pdf.Cell(0, 6, fmt.Sprintf("Average per filled day: %s kcal",
			dietplan.FormatNum(summary.AvgPerFilled.Cal)))
		pdf.Ln(5)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// truncate fits s into a cell of the given width, assuming roughly
// 2mm per character at the 8pt table font.
func truncate(s string, width float64) string {
	maxChars := int(width / 2.0)
	if maxChars < 4 {
		maxChars = 4
	}
	if len(s) <= maxChars {
		return s
	}
	return s[:maxChars-3] + "..."
}
