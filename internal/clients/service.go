package clients

import (
	"context"
	"fmt"
	"strings"

	"github.com/nutridesk/server/internal/storage"
)

// Service manages the dietitian's client roster.
type Service struct {
	store storage.ClientsStorage
}

func NewService(store storage.ClientsStorage) *Service {
	return &Service{store: store}
}

func fromRequest(req *UpsertRequest) storage.Client {
	norm := func(tags []string) []string {
		out := make([]string, 0, len(tags))
		for _, t := range tags {
			if t = strings.TrimSpace(t); t != "" {
				out = append(out, t)
			}
		}
		return out
	}
	return storage.Client{
		Name:               strings.TrimSpace(req.Name),
		Email:              strings.TrimSpace(req.Email),
		Phone:              strings.TrimSpace(req.Phone),
		BirthDate:          req.BirthDate,
		Sex:                req.Sex,
		HeightCm:           req.HeightCm,
		Allergies:          norm(req.Allergies),
		DietaryPreferences: norm(req.DietaryPreferences),
		MedicalConditions:  norm(req.MedicalConditions),
		Notes:              req.Notes,
	}
}

func (s *Service) Create(ctx context.Context, owner string, req *UpsertRequest) (storage.Client, error) {
	if err := req.Validate(); err != nil {
		return storage.Client{}, fmt.Errorf("validation failed: %w", err)
	}
	c := fromRequest(req)
	c.Owner = owner
	return s.store.CreateClient(ctx, c)
}

func (s *Service) Get(ctx context.Context, owner, id string) (storage.Client, error) {
	return s.store.GetClient(ctx, owner, id)
}

func (s *Service) List(ctx context.Context, owner string) ([]storage.Client, error) {
	return s.store.ListClients(ctx, owner)
}

func (s *Service) Update(ctx context.Context, owner, id string, req *UpsertRequest) (storage.Client, error) {
	if err := req.Validate(); err != nil {
		return storage.Client{}, fmt.Errorf("validation failed: %w", err)
	}
	c := fromRequest(req)
	c.ID = id
	c.Owner = owner
	return s.store.UpdateClient(ctx, c)
}

func (s *Service) Delete(ctx context.Context, owner, id string) error {
	return s.store.DeleteClient(ctx, owner, id)
}
