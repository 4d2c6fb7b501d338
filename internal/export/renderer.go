package export

import (
	"bytes"
	"fmt"
	"html/template"
	"sort"
	"strings"
	"time"

	"github.com/nutridesk/server/internal/dietplan"
)

// PlanDocument is the renderer input: a resolved plan plus the client
// display name. Renderers never reach into storage.
type PlanDocument struct {
	ClientName   string
	Title        string
	DurationDays int
	StartDate    string
	Days         []dietplan.DayPlan
	MealTypes    []dietplan.MealTypeConfig
}

// ForAudience returns a copy of the document prepared for the given
// audience. The client audience gets the macro fields stripped from
// every option and constituent, so exported files carry no macro data
// at all rather than hiding it in presentation.
func (d PlanDocument) ForAudience(audience string) PlanDocument {
	if audience != AudienceClient {
		return d
	}
	out := d
	out.Days = dietplan.CloneDays(d.Days)
	for _, day := range out.Days {
		for _, meal := range day.Meals {
			if meal == nil {
				continue
			}
			for i := range meal.FoodOptions {
				stripMacros(&meal.FoodOptions[i])
			}
		}
	}
	return out
}

func stripMacros(o *dietplan.FoodOption) {
	o.Cal, o.Carbs, o.Fats, o.Protein, o.Fiber = "", "", "", "", ""
	for i := range o.Foods {
		f := &o.Foods[i]
		f.Cal, f.Carbs, f.Fats, f.Protein, f.Fiber = "", "", "", "", ""
	}
}

// OrderedDays returns the days sorted by date when every day carries a
// parseable date; otherwise the stored order is kept.
func OrderedDays(days []dietplan.DayPlan) []dietplan.DayPlan {
	out := make([]dietplan.DayPlan, len(days))
	copy(out, days)

	parsed := make([]time.Time, len(out))
	for i, day := range out {
		t, err := time.Parse("2006-01-02", day.Date)
		if err != nil {
			return out
		}
		parsed[i] = t
	}
	sort.SliceStable(out, func(i, j int) bool {
		return parsedDate(out[i]).Before(parsedDate(out[j]))
	})
	return out
}

func parsedDate(day dietplan.DayPlan) time.Time {
	t, _ := time.Parse("2006-01-02", day.Date)
	return t
}

// MealColumns returns the meal-type column names for export: the union
// of meal keys that carry at least one non-blank option anywhere in the
// plan, time-sorted with the canonical tie-break.
func MealColumns(days []dietplan.DayPlan, configs []dietplan.MealTypeConfig) []string {
	seen := map[string]bool{}
	names := make([]string, 0, len(configs))
	for _, day := range days {
		for name, meal := range day.Meals {
			if seen[name] || meal == nil {
				continue
			}
			for _, o := range meal.FoodOptions {
				if !dietplan.IsBlankOption(o) {
					seen[name] = true
					names = append(names, name)
					break
				}
			}
		}
	}
	return dietplan.OrderedMealTypes(names, configs, nil)
}

// cellText renders one meal cell: primary food first, alternatives
// joined after it when the cell shows them.
func cellText(meal *dietplan.Meal) string {
	if meal == nil || len(meal.FoodOptions) == 0 {
		return ""
	}
	parts := make([]string, 0, len(meal.FoodOptions))
	for i, o := range meal.FoodOptions {
		if dietplan.IsBlankOption(o) {
			continue
		}
		if i > 0 && !meal.ShowAlternatives {
			break
		}
		parts = append(parts, o.Food)
	}
	return strings.Join(parts, " / ")
}

type htmlCell struct {
	Food         string
	Unit         string
	Alternatives []string
}

type htmlRow struct {
	Day    string
	Date   string
	Held   bool
	Reason string
	Note   string
	Cells  []htmlCell
	Totals *dietplan.Totals
}

type htmlDoc struct {
	Title       string
	ClientName  string
	GeneratedAt string
	Duration    int
	Columns     []string
	Rows        []htmlRow
	ShowMacros  bool
	Summary     dietplan.PlanSummary
}

var planTemplate = template.Must(template.New("plan").Funcs(template.FuncMap{
	"num": func(v float64) string { return dietplan.FormatNum(v) },
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: -apple-system, "Segoe UI", sans-serif; margin: 24px; color: #1a1a2e; }
h1 { font-size: 20px; margin-bottom: 4px; }
.meta { color: #666; font-size: 13px; margin-bottom: 16px; }
table { border-collapse: collapse; width: 100%; font-size: 12px; }
th, td { border: 1px solid #d0d0da; padding: 6px 8px; text-align: left; vertical-align: top; }
th { background: #f2f2f7; }
tr.held td { background: #fdf4e3; color: #8a6d1a; }
.alt { color: #777; font-size: 11px; }
.note { font-style: italic; color: #555; }
tfoot td { font-weight: 600; background: #fafafa; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<div class="meta">{{.ClientName}} &middot; {{.Duration}} days &middot; generated {{.GeneratedAt}}</div>
<table>
<thead>
<tr>
<th>Day</th>
{{- range .Columns}}<th>{{.}}</th>{{end -}}
{{- if .ShowMacros}}<th>Cal</th><th>Carbs</th><th>Fats</th><th>Protein</th><th>Fiber</th>{{end -}}
<th>Note</th>
</tr>
</thead>
<tbody>
{{- range .Rows}}
<tr{{if .Held}} class="held"{{end}}>
<td>{{.Day}}{{if .Held}}<br><span class="alt">on hold{{if .Reason}}: {{.Reason}}{{end}}</span>{{end}}</td>
{{- range .Cells}}
<td>{{.Food}}{{if .Unit}} <span class="alt">({{.Unit}})</span>{{end}}{{range .Alternatives}}<br><span class="alt">or {{.}}</span>{{end}}</td>
{{- end}}
{{- if $.ShowMacros}}
{{- with .Totals}}
<td>{{num .Cal}}</td><td>{{num .Carbs}}</td><td>{{num .Fats}}</td><td>{{num .Protein}}</td><td>{{num .Fiber}}</td>
{{- else}}
<td></td><td></td><td></td><td></td><td></td>
{{- end}}
{{- end}}
<td class="note">{{.Note}}</td>
</tr>
{{- end}}
</tbody>
{{- if .ShowMacros}}
<tfoot>
<tr>
<td>Total</td>
{{- range .Columns}}<td></td>{{end}}
<td>{{num .Summary.Total.Cal}}</td><td>{{num .Summary.Total.Carbs}}</td><td>{{num .Summary.Total.Fats}}</td><td>{{num .Summary.Total.Protein}}</td><td>{{num .Summary.Total.Fiber}}</td>
<td></td>
</tr>
<tr>
<td>Avg / {{.Summary.DurationDays}} days</td>
{{- range .Columns}}<td></td>{{end}}
<td>{{num .Summary.AvgPerDuration.Cal}}</td><td>{{num .Summary.AvgPerDuration.Carbs}}</td><td>{{num .Summary.AvgPerDuration.Fats}}</td><td>{{num .Summary.AvgPerDuration.Protein}}</td><td>{{num .Summary.AvgPerDuration.Fiber}}</td>
<td></td>
</tr>
<tr>
<td>Avg / {{.Summary.FilledDays}} filled</td>
{{- range .Columns}}<td></td>{{end}}
<td>{{num .Summary.AvgPerFilled.Cal}}</td><td>{{num .Summary.AvgPerFilled.Carbs}}</td><td>{{num .Summary.AvgPerFilled.Fats}}</td><td>{{num .Summary.AvgPerFilled.Protein}}</td><td>{{num .Summary.AvgPerFilled.Fiber}}</td>
<td></td>
</tr>
</tfoot>
{{- end}}
</table>
</body>
</html>
`))

// RenderHTML renders the plan as a standalone HTML document.
func RenderHTML(doc PlanDocument, audience string, generatedAt time.Time) ([]byte, error) {
	doc = doc.ForAudience(audience)
	days := OrderedDays(doc.Days)
	columns := MealColumns(days, doc.MealTypes)

	showMacros := audience != AudienceClient

	title := doc.Title
	if strings.TrimSpace(title) == "" {
		title = fmt.Sprintf("Diet Plan — %s", doc.ClientName)
	}

	rows := make([]htmlRow, 0, len(days))
	for _, day := range days {
		row := htmlRow{
			Day:    day.Day,
			Date:   day.Date,
			Held:   day.IsHeld,
			Reason: day.HoldReason,
			Note:   day.Note,
		}
		for _, col := range columns {
			row.Cells = append(row.Cells, buildCell(day.Meals[col]))
		}
		if showMacros && !day.IsHeld {
			t := dietplan.DayTotals(day)
			row.Totals = &t
		}
		rows = append(rows, row)
	}

	data := htmlDoc{
		Title:       title,
		ClientName:  doc.ClientName,
		GeneratedAt: generatedAt.Format("2006-01-02"),
		Duration:    doc.DurationDays,
		Columns:     columns,
		Rows:        rows,
		ShowMacros:  showMacros,
		Summary:     dietplan.Summarize(days, doc.DurationDays),
	}

	var buf bytes.Buffer
	if err := planTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render HTML: %w", err)
	}
	return buf.Bytes(), nil
}

func buildCell(meal *dietplan.Meal) htmlCell {
	if meal == nil || len(meal.FoodOptions) == 0 {
		return htmlCell{}
	}
	primary := meal.FoodOptions[0]
	cell := htmlCell{Food: primary.Food, Unit: primary.Unit}
	if meal.ShowAlternatives {
		for _, o := range meal.FoodOptions[1:] {
			if dietplan.IsBlankOption(o) {
				continue
			}
			cell.Alternatives = append(cell.Alternatives, o.Food)
		}
	}
	return cell
}
