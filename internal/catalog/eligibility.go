package catalog

import (
	"strings"

	"github.com/nutridesk/server/internal/storage"
)

// EligibilityRule decides whether a recipe must be excluded for a
// client. Excludes returns the reason when it does.
type EligibilityRule interface {
	Name() string
	Excludes(r storage.Recipe, c storage.Client) (bool, string)
}

// DefaultRules is the rule set applied to every catalog query.
func DefaultRules() []EligibilityRule {
	return []EligibilityRule{
		allergenRule{},
		dietaryRule{},
		medicalRule{},
	}
}

// tagMatch compares two tags case-insensitively after trimming, in
// both substring directions: "nuts" matches "tree nuts" and vice versa.
func tagMatch(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

func anyTagMatch(tags []string, needle string) (string, bool) {
	for _, t := range tags {
		if tagMatch(t, needle) {
			return t, true
		}
	}
	return "", false
}

// allergenRule excludes recipes whose allergens or ingredients match a
// client allergy.
type allergenRule struct{}

func (allergenRule) Name() string { return "allergen" }

func (allergenRule) Excludes(r storage.Recipe, c storage.Client) (bool, string) {
	for _, allergy := range c.Allergies {
		if hit, ok := anyTagMatch(r.Allergens, allergy); ok {
			return true, "contains allergen: " + hit
		}
		if tagMatch(r.Name, allergy) {
			return true, "name matches allergy: " + r.Name
		}
		if hit, ok := anyTagMatch(r.Ingredients, allergy); ok {
			return true, "ingredient matches allergy: " + hit
		}
	}
	return false, ""
}

// dietaryConflicts maps a dietary preference to tags that violate it.
var dietaryConflicts = map[string][]string{
	"vegetarian":  {"meat", "fish", "poultry", "gelatin"},
	"vegan":       {"meat", "fish", "poultry", "gelatin", "dairy", "milk", "cheese", "butter", "egg", "honey"},
	"pescatarian": {"meat", "poultry"},
	"gluten-free": {"gluten", "wheat", "barley", "rye"},
	"dairy-free":  {"dairy", "milk", "lactose", "cheese", "butter", "cream"},
	"halal":       {"pork", "alcohol"},
	"kosher":      {"pork", "shellfish"},
}

// dietaryRule excludes recipes tagged with something the client's
// dietary preference rules out. Unknown preferences fall back to a
// symmetric tag comparison. A tag naming the preference itself
// ("gluten-free" for a gluten-free client) declares compatibility and
// never conflicts, so "gluten" matches a "contains gluten" tag but not
// a "gluten-free" one.
type dietaryRule struct{}

func (dietaryRule) Name() string { return "dietary" }

func (dietaryRule) Excludes(r storage.Recipe, c storage.Client) (bool, string) {
	for _, pref := range c.DietaryPreferences {
		key := strings.ToLower(strings.TrimSpace(pref))
		if conflicts, ok := dietaryConflicts[key]; ok {
			for _, conflict := range conflicts {
				for _, tag := range r.DietaryTags {
					t := strings.ToLower(strings.TrimSpace(tag))
					if strings.Contains(t, key) {
						continue
					}
					if tagMatch(tag, conflict) {
						return true, "conflicts with " + key + ": " + tag
					}
				}
				if hit, ok := anyTagMatch(r.Allergens, conflict); ok {
					return true, "conflicts with " + key + ": " + hit
				}
				if hit, ok := anyTagMatch(r.Ingredients, conflict); ok {
					return true, "conflicts with " + key + ": " + hit
				}
			}
			continue
		}
		if hit, ok := anyTagMatch(r.DietaryTags, pref); ok {
			return true, "conflicts with " + key + ": " + hit
		}
	}
	return false, ""
}

// medicalConflicts maps a medical condition to tags it rules out.
var medicalConflicts = map[string][]string{
	"celiac":              {"gluten", "wheat", "barley", "rye"},
	"celiac disease":      {"gluten", "wheat", "barley", "rye"},
	"lactose intolerance": {"dairy", "milk", "lactose", "cheese", "butter", "cream"},
}

// medicalRule excludes recipes contraindicated for the client's medical
// conditions.
type medicalRule struct{}

func (medicalRule) Name() string { return "medical" }

func (medicalRule) Excludes(r storage.Recipe, c storage.Client) (bool, string) {
	for _, condition := range c.MedicalConditions {
		if hit, ok := anyTagMatch(r.Contraindications, condition); ok {
			return true, "contraindicated for " + condition + ": " + hit
		}

		key := strings.ToLower(strings.TrimSpace(condition))
		if conflicts, ok := medicalConflicts[key]; ok {
			for _, conflict := range conflicts {
				if hit, ok := anyTagMatch(r.Allergens, conflict); ok {
					return true, "contraindicated for " + key + ": " + hit
				}
				if hit, ok := anyTagMatch(r.Ingredients, conflict); ok {
					return true, "contraindicated for " + key + ": " + hit
				}
			}
		}
	}
	return false, ""
}

// Eligible filters recipes through the rule set for one client. The
// returned exclusions map recipe ID to the first reason that fired.
func Eligible(recipes []storage.Recipe, c storage.Client, rules []EligibilityRule) (kept []storage.Recipe, excluded map[string]string) {
	excluded = make(map[string]string)
	for _, r := range recipes {
		reason := ""
		for _, rule := range rules {
			if hit, why := rule.Excludes(r, c); hit {
				reason = why
				break
			}
		}
		if reason != "" {
			excluded[r.ID] = reason
			continue
		}
		kept = append(kept, r)
	}
	return kept, excluded
}
