package catalog

import (
	"fmt"
	"strings"

	"github.com/nutridesk/server/internal/storage"
)

// UpsertRequest is the body of POST /v1/recipes and PUT /v1/recipes/{id}.
type UpsertRequest struct {
	Name              string   `json:"name"`
	Category          string   `json:"category"`
	Unit              string   `json:"unit"`
	Cal               float64  `json:"cal"`
	Carbs             float64  `json:"carbs"`
	Fats              float64  `json:"fats"`
	Protein           float64  `json:"protein"`
	Fiber             float64  `json:"fiber"`
	Allergens         []string `json:"allergens"`
	DietaryTags       []string `json:"dietary_tags"`
	Contraindications []string `json:"contraindications"`
	Ingredients       []string `json:"ingredients"`
}

func (r *UpsertRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("name is required")
	}
	for _, v := range []float64{r.Cal, r.Carbs, r.Fats, r.Protein, r.Fiber} {
		if v < 0 {
			return fmt.Errorf("nutrition values must not be negative")
		}
	}
	return nil
}

// SearchResponse is the wire form of GET /v1/recipes.
type SearchResponse struct {
	Recipes []storage.Recipe  `json:"recipes"`
	Total   int               `json:"total"`
	Limit   int               `json:"limit"`
	Offset  int               `json:"offset"`
	// Excluded maps recipe ID to the exclusion reason when the query
	// was filtered for a client.
	Excluded map[string]string `json:"excluded,omitempty"`
}
