package catalog

import (
	"testing"

	"github.com/nutridesk/server/internal/storage"
)

func TestAllergenRuleBothDirections(t *testing.T) {
	rule := allergenRule{}

	// Client says "nuts", recipe says "tree nuts": match.
	r := storage.Recipe{Allergens: []string{"tree nuts"}}
	c := storage.Client{Allergies: []string{"nuts"}}
	if hit, _ := rule.Excludes(r, c); !hit {
		t.Error("broad allergy should match specific allergen")
	}

	// Client says "tree nuts", recipe says "nuts": also match.
	r = storage.Recipe{Allergens: []string{"nuts"}}
	c = storage.Client{Allergies: []string{"tree nuts"}}
	if hit, _ := rule.Excludes(r, c); !hit {
		t.Error("specific allergy should match broad allergen")
	}
}

func TestAllergenRuleCaseInsensitive(t *testing.T) {
	rule := allergenRule{}
	r := storage.Recipe{Allergens: []string{"Peanuts"}}
	c := storage.Client{Allergies: []string{" PEANUTS "}}
	if hit, _ := rule.Excludes(r, c); !hit {
		t.Error("match must ignore case and surrounding whitespace")
	}
}

func TestAllergenRuleChecksIngredients(t *testing.T) {
	rule := allergenRule{}
	r := storage.Recipe{Ingredients: []string{"peanut butter", "oats"}}
	c := storage.Client{Allergies: []string{"peanut"}}
	if hit, _ := rule.Excludes(r, c); !hit {
		t.Error("allergy should match against ingredients too")
	}
}

func TestDietaryRuleVegetarian(t *testing.T) {
	rule := dietaryRule{}
	c := storage.Client{DietaryPreferences: []string{"vegetarian"}}

	meat := storage.Recipe{DietaryTags: []string{"red meat"}}
	if hit, _ := rule.Excludes(meat, c); !hit {
		t.Error("vegetarian should exclude meat")
	}

	salad := storage.Recipe{DietaryTags: []string{"plant-based"}}
	if hit, _ := rule.Excludes(salad, c); hit {
		t.Error("vegetarian should keep plant-based recipes")
	}
}

func TestDietaryRuleVeganExcludesDairy(t *testing.T) {
	rule := dietaryRule{}
	c := storage.Client{DietaryPreferences: []string{"Vegan"}}
	r := storage.Recipe{Ingredients: []string{"milk", "sugar"}}
	if hit, _ := rule.Excludes(r, c); !hit {
		t.Error("vegan should exclude dairy ingredients")
	}
}

func TestDietaryRuleGlutenFree(t *testing.T) {
	rule := dietaryRule{}
	c := storage.Client{DietaryPreferences: []string{"gluten-free"}}
	r := storage.Recipe{Ingredients: []string{"wheat flour"}}
	if hit, _ := rule.Excludes(r, c); !hit {
		t.Error("gluten-free should exclude wheat")
	}
}

func TestAllergenRuleChecksName(t *testing.T) {
	rule := allergenRule{}
	r := storage.Recipe{Name: "Peanut Bars"}
	c := storage.Client{Allergies: []string{"peanut"}}
	if hit, _ := rule.Excludes(r, c); !hit {
		t.Error("allergy should match against the recipe name")
	}
}

func TestDietaryRuleGlutenFreeKeepsGlutenFreeTag(t *testing.T) {
	rule := dietaryRule{}
	c := storage.Client{DietaryPreferences: []string{"gluten-free"}}

	compatible := storage.Recipe{DietaryTags: []string{"gluten-free"}}
	if hit, reason := rule.Excludes(compatible, c); hit {
		t.Errorf("gluten-free tag excluded for gluten-free client: %s", reason)
	}

	offending := storage.Recipe{DietaryTags: []string{"contains gluten"}}
	if hit, _ := rule.Excludes(offending, c); !hit {
		t.Error("tag containing gluten should be excluded")
	}
}

func TestDietaryRuleGlutenFreeExcludesGlutenAllergen(t *testing.T) {
	rule := dietaryRule{}
	c := storage.Client{DietaryPreferences: []string{"gluten-free"}}
	r := storage.Recipe{Allergens: []string{"gluten"}}
	if hit, _ := rule.Excludes(r, c); !hit {
		t.Error("allergen gluten should be excluded for gluten-free client")
	}
}

func TestMedicalRuleCeliac(t *testing.T) {
	rule := medicalRule{}
	c := storage.Client{MedicalConditions: []string{"celiac"}}
	r := storage.Recipe{Allergens: []string{"gluten"}}
	if hit, _ := rule.Excludes(r, c); !hit {
		t.Error("celiac should exclude gluten")
	}
}

func TestMedicalRuleCeliacDiseaseWording(t *testing.T) {
	rule := medicalRule{}
	c := storage.Client{MedicalConditions: []string{"Celiac Disease"}}
	r := storage.Recipe{Allergens: []string{"gluten"}}
	if hit, _ := rule.Excludes(r, c); !hit {
		t.Error("celiac disease should exclude gluten allergen")
	}
}

func TestMedicalRuleContraindications(t *testing.T) {
	rule := medicalRule{}
	c := storage.Client{MedicalConditions: []string{"hypertension"}}
	r := storage.Recipe{Contraindications: []string{"hypertension"}}
	if hit, reason := rule.Excludes(r, c); !hit || reason == "" {
		t.Error("explicit contraindication should exclude with a reason")
	}
}

func TestEligibleFiltersAndReports(t *testing.T) {
	recipes := []storage.Recipe{
		{ID: "r1", Name: "Peanut Bars", Allergens: []string{"peanuts"}},
		{ID: "r2", Name: "Oatmeal"},
		{ID: "r3", Name: "Beef Stew", DietaryTags: []string{"meat"}},
	}
	c := storage.Client{
		Allergies:          []string{"peanuts"},
		DietaryPreferences: []string{"vegetarian"},
	}

	kept, excluded := Eligible(recipes, c, DefaultRules())
	if len(kept) != 1 || kept[0].ID != "r2" {
		t.Fatalf("kept = %+v", kept)
	}
	if len(excluded) != 2 {
		t.Fatalf("excluded = %+v", excluded)
	}
	if excluded["r1"] == "" || excluded["r3"] == "" {
		t.Error("exclusion reasons missing")
	}
}

func TestEligibleNoRestrictions(t *testing.T) {
	recipes := []storage.Recipe{{ID: "r1", Allergens: []string{"peanuts"}}}
	kept, excluded := Eligible(recipes, storage.Client{}, DefaultRules())
	if len(kept) != 1 || len(excluded) != 0 {
		t.Error("unrestricted client should see everything")
	}
}
