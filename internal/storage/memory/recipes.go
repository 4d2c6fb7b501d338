package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nutridesk/server/internal/storage"
)

type recipesStorage struct {
	mu      sync.RWMutex
	recipes map[string]*storage.Recipe // key: id
	byOwner map[string][]string        // owner -> []id
}

func newRecipesStorage() *recipesStorage {
	return &recipesStorage{
		recipes: make(map[string]*storage.Recipe),
		byOwner: make(map[string][]string),
	}
}

func (s *recipesStorage) CreateRecipe(ctx context.Context, r storage.Recipe) (storage.Recipe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	r.CreatedAt = now
	r.UpdatedAt = now

	s.recipes[r.ID] = &r
	s.byOwner[r.Owner] = append(s.byOwner[r.Owner], r.ID)
	return r, nil
}

func (s *recipesStorage) GetRecipe(ctx context.Context, owner, id string) (storage.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.recipes[id]
	if !ok || r.Owner != owner {
		return storage.Recipe{}, storage.ErrNotFound
	}
	return *r, nil
}

func (s *recipesStorage) ListRecipes(ctx context.Context, owner string) ([]storage.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.byOwner[owner]
	results := make([]storage.Recipe, 0, len(ids))
	for _, id := range ids {
		if r, ok := s.recipes[id]; ok {
			results = append(results, *r)
		}
	}
	sort.Slice(results, func(i, j int) bool {
		return strings.ToLower(results[i].Name) < strings.ToLower(results[j].Name)
	})
	return results, nil
}

func (s *recipesStorage) UpdateRecipe(ctx context.Context, r storage.Recipe) (storage.Recipe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.recipes[r.ID]
	if !ok || existing.Owner != r.Owner {
		return storage.Recipe{}, storage.ErrNotFound
	}
	r.CreatedAt = existing.CreatedAt
	r.UpdatedAt = time.Now().UTC()
	s.recipes[r.ID] = &r
	return r, nil
}

func (s *recipesStorage) DeleteRecipe(ctx context.Context, owner, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.recipes[id]
	if !ok || r.Owner != owner {
		return storage.ErrNotFound
	}
	delete(s.recipes, id)

	ids := s.byOwner[owner]
	for i, rid := range ids {
		if rid == id {
			s.byOwner[owner] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	return nil
}
