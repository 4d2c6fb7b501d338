package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nutridesk/server/internal/storage"
)

type plansStorage struct {
	mu    sync.RWMutex
	plans map[string]*storage.PlanRecord // key: "owner:clientID"
}

func newPlansStorage() *plansStorage {
	return &plansStorage{
		plans: make(map[string]*storage.PlanRecord),
	}
}

func planKey(owner, clientID string) string {
	return fmt.Sprintf("%s:%s", owner, clientID)
}

func (s *plansStorage) UpsertPlan(ctx context.Context, p storage.PlanRecord) (storage.PlanRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	key := planKey(p.Owner, p.ClientID)

	if existing, ok := s.plans[key]; ok {
		p.ID = existing.ID
		p.CreatedAt = existing.CreatedAt
	} else {
		if p.ID == "" {
			p.ID = uuid.New().String()
		}
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	s.plans[key] = &p
	return p, nil
}

func (s *plansStorage) GetPlan(ctx context.Context, owner, clientID string) (storage.PlanRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.plans[planKey(owner, clientID)]
	if !ok {
		return storage.PlanRecord{}, storage.ErrNotFound
	}
	return *p, nil
}

func (s *plansStorage) DeletePlan(ctx context.Context, owner, clientID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := planKey(owner, clientID)
	if _, ok := s.plans[key]; !ok {
		return storage.ErrNotFound
	}
	delete(s.plans, key)
	return nil
}
