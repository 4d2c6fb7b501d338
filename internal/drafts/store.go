package drafts

import (
	"fmt"
	"strings"
	"time"

	"github.com/nutridesk/server/internal/dietplan"
)

// NewClientKey is the key segment used before a client record exists.
const NewClientKey = "new"

// Key derives the storage key for a draft: one slot per client and
// plan duration.
func Key(clientID string, durationDays int) string {
	segment := strings.TrimSpace(clientID)
	if segment == "" {
		segment = NewClientKey
	}
	return fmt.Sprintf("dietPlan_draft_%s_%d", segment, durationDays)
}

// Payload is the draft document: the full editing state needed to
// resume a session.
type Payload struct {
	ClientID     string                    `json:"client_id,omitempty"`
	Title        string                    `json:"title,omitempty"`
	DurationDays int                       `json:"duration_days"`
	StartDate    string                    `json:"start_date,omitempty"`
	Days         []dietplan.DayPlan        `json:"days"`
	MealTypes    []dietplan.MealTypeConfig `json:"meal_types"`
}

// IsExpired reports whether a draft saved at savedAt has outlived ttl.
func IsExpired(savedAt time.Time, ttl time.Duration, now time.Time) bool {
	return now.Sub(savedAt) > ttl
}

// Restorable reports whether the draft holds anything worth offering
// back: at least one day with a non-blank meal or a note.
func Restorable(p *Payload) bool {
	for _, day := range p.Days {
		if strings.TrimSpace(day.Note) != "" {
			return true
		}
		if dietplan.DayHasContent(day) {
			return true
		}
	}
	return false
}

// Normalize coerces stored meal times to 24-hour HH:MM. A time that
// fails to parse falls back to the meal type's resolved time.
func Normalize(p *Payload) {
	for i := range p.Days {
		for name, meal := range p.Days[i].Meals {
			if meal == nil {
				continue
			}
			if t, ok := dietplan.NormalizeTime(meal.Time); ok {
				meal.Time = t
			} else {
				meal.Time = dietplan.ResolveMealTime(name, p.MealTypes, nil)
			}
		}
	}
	for i := range p.MealTypes {
		if t, ok := dietplan.NormalizeTime(p.MealTypes[i].Time); ok {
			p.MealTypes[i].Time = t
		}
	}
}
