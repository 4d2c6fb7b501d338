package clients

import (
	"fmt"
	"strings"
	"time"
)

// UpsertRequest is the body of POST /v1/clients and PUT /v1/clients/{id}.
type UpsertRequest struct {
	Name               string   `json:"name"`
	Email              string   `json:"email"`
	Phone              string   `json:"phone"`
	BirthDate          string   `json:"birth_date"`
	Sex                string   `json:"sex"`
	HeightCm           float64  `json:"height_cm"`
	Allergies          []string `json:"allergies"`
	DietaryPreferences []string `json:"dietary_preferences"`
	MedicalConditions  []string `json:"medical_conditions"`
	Notes              string   `json:"notes"`
}

func (r *UpsertRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if r.BirthDate != "" {
		if _, err := time.Parse("2006-01-02", r.BirthDate); err != nil {
			return fmt.Errorf("birth_date must be YYYY-MM-DD")
		}
	}
	switch r.Sex {
	case "", "female", "male", "other":
	default:
		return fmt.Errorf("sex must be female, male or other")
	}
	if r.HeightCm < 0 || r.HeightCm > 300 {
		return fmt.Errorf("height_cm out of range")
	}
	return nil
}
