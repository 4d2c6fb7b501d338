package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nutridesk/server/internal/storage"
)

type clientsStorage struct {
	mu      sync.RWMutex
	clients map[string]*storage.Client // key: id
	byOwner map[string][]string        // owner -> []id
}

func newClientsStorage() *clientsStorage {
	return &clientsStorage{
		clients: make(map[string]*storage.Client),
		byOwner: make(map[string][]string),
	}
}

func (s *clientsStorage) CreateClient(ctx context.Context, c storage.Client) (storage.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	c.CreatedAt = now
	c.UpdatedAt = now

	s.clients[c.ID] = &c
	s.byOwner[c.Owner] = append(s.byOwner[c.Owner], c.ID)
	return c, nil
}

func (s *clientsStorage) GetClient(ctx context.Context, owner, id string) (storage.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.clients[id]
	if !ok || c.Owner != owner {
		return storage.Client{}, storage.ErrNotFound
	}
	return *c, nil
}

func (s *clientsStorage) ListClients(ctx context.Context, owner string) ([]storage.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.byOwner[owner]
	results := make([]storage.Client, 0, len(ids))
	for _, id := range ids {
		if c, ok := s.clients[id]; ok {
			results = append(results, *c)
		}
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].Name < results[j].Name
	})
	return results, nil
}

func (s *clientsStorage) UpdateClient(ctx context.Context, c storage.Client) (storage.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.clients[c.ID]
	if !ok || existing.Owner != c.Owner {
		return storage.Client{}, storage.ErrNotFound
	}
	c.CreatedAt = existing.CreatedAt
	c.UpdatedAt = time.Now().UTC()
	s.clients[c.ID] = &c
	return c, nil
}

func (s *clientsStorage) DeleteClient(ctx context.Context, owner, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.clients[id]
	if !ok || c.Owner != owner {
		return storage.ErrNotFound
	}
	delete(s.clients, id)

	ids := s.byOwner[owner]
	for i, cid := range ids {
		if cid == id {
			s.byOwner[owner] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	return nil
}
