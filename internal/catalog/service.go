package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nutridesk/server/internal/config"
	"github.com/nutridesk/server/internal/storage"
)

// Service owns the food catalog: recipe CRUD plus ranked, filtered
// search.
type Service struct {
	recipes storage.RecipesStorage
	clients storage.ClientsStorage
	rules   []EligibilityRule
	cfg     *config.Config
}

func NewService(recipes storage.RecipesStorage, clients storage.ClientsStorage, cfg *config.Config) *Service {
	return &Service{
		recipes: recipes,
		clients: clients,
		rules:   DefaultRules(),
		cfg:     cfg,
	}
}

func fromUpsert(req *UpsertRequest) storage.Recipe {
	norm := func(tags []string) []string {
		out := make([]string, 0, len(tags))
		for _, t := range tags {
			if t = strings.TrimSpace(t); t != "" {
				out = append(out, t)
			}
		}
		return out
	}
	return storage.Recipe{
		Name:              strings.TrimSpace(req.Name),
		Category:          strings.TrimSpace(req.Category),
		Unit:              strings.TrimSpace(req.Unit),
		Cal:               req.Cal,
		Carbs:             req.Carbs,
		Fats:              req.Fats,
		Protein:           req.Protein,
		Fiber:             req.Fiber,
		Allergens:         norm(req.Allergens),
		DietaryTags:       norm(req.DietaryTags),
		Contraindications: norm(req.Contraindications),
		Ingredients:       norm(req.Ingredients),
	}
}

func (s *Service) Create(ctx context.Context, owner string, req *UpsertRequest) (storage.Recipe, error) {
	if err := req.Validate(); err != nil {
		return storage.Recipe{}, fmt.Errorf("validation failed: %w", err)
	}
	r := fromUpsert(req)
	r.Owner = owner
	return s.recipes.CreateRecipe(ctx, r)
}

func (s *Service) Get(ctx context.Context, owner, id string) (storage.Recipe, error) {
	return s.recipes.GetRecipe(ctx, owner, id)
}

func (s *Service) Update(ctx context.Context, owner, id string, req *UpsertRequest) (storage.Recipe, error) {
	if err := req.Validate(); err != nil {
		return storage.Recipe{}, fmt.Errorf("validation failed: %w", err)
	}
	r := fromUpsert(req)
	r.ID = id
	r.Owner = owner
	return s.recipes.UpdateRecipe(ctx, r)
}

func (s *Service) Delete(ctx context.Context, owner, id string) error {
	return s.recipes.DeleteRecipe(ctx, owner, id)
}

// Search ranks the owner's catalog against a query, optionally
// narrowed to one category. When clientID is set, recipes the client
// must not eat are filtered out first and reported in the response's
// Excluded map.
func (s *Service) Search(ctx context.Context, owner, query, category, clientID string, limit, offset int) (*SearchResponse, error) {
	if limit <= 0 {
		limit = s.cfg.CatalogPageSize
	}
	if offset < 0 {
		offset = 0
	}

	all, err := s.recipes.ListRecipes(ctx, owner)
	if err != nil {
		return nil, err
	}
	if len(all) > s.cfg.CatalogMaxItems {
		all = all[:s.cfg.CatalogMaxItems]
	}
	if category = strings.TrimSpace(category); category != "" {
		filtered := all[:0]
		for _, r := range all {
			if strings.EqualFold(r.Category, category) {
				filtered = append(filtered, r)
			}
		}
		all = filtered
	}

	var excluded map[string]string
	if clientID != "" {
		client, err := s.clients.GetClient(ctx, owner, clientID)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}
		if err == nil {
			all, excluded = Eligible(all, client, s.rules)
		}
	}

	ranked := Rank(all, query)
	page := Paginate(ranked, limit, offset)
	if page == nil {
		page = []storage.Recipe{}
	}

	return &SearchResponse{
		Recipes:  page,
		Total:    len(ranked),
		Limit:    limit,
		Offset:   offset,
		Excluded: excluded,
	}, nil
}
