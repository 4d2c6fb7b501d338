package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nutridesk/server/internal/storage"
)

type exportsStorage struct {
	mu      sync.RWMutex
	exports map[string]*storage.ExportMeta // key: id
	byOwner map[string][]string            // owner -> []id
}

func newExportsStorage() *exportsStorage {
	return &exportsStorage{
		exports: make(map[string]*storage.ExportMeta),
		byOwner: make(map[string][]string),
	}
}

func (s *exportsStorage) CreateExport(ctx context.Context, m storage.ExportMeta) (storage.ExportMeta, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	m.CreatedAt = time.Now().UTC()

	s.exports[m.ID] = &m
	s.byOwner[m.Owner] = append(s.byOwner[m.Owner], m.ID)
	return m, nil
}

func (s *exportsStorage) GetExport(ctx context.Context, owner, id string) (storage.ExportMeta, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.exports[id]
	if !ok || m.Owner != owner {
		return storage.ExportMeta{}, storage.ErrNotFound
	}
	return *m, nil
}

func (s *exportsStorage) ListExports(ctx context.Context, owner, clientID string) ([]storage.ExportMeta, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.byOwner[owner]
	results := make([]storage.ExportMeta, 0, len(ids))
	for _, id := range ids {
		m, ok := s.exports[id]
		if !ok {
			continue
		}
		if clientID != "" && m.ClientID != clientID {
			continue
		}
		results = append(results, *m)
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].CreatedAt.After(results[j].CreatedAt)
	})
	return results, nil
}

func (s *exportsStorage) DeleteExport(ctx context.Context, owner, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.exports[id]
	if !ok || m.Owner != owner {
		return storage.ErrNotFound
	}
	delete(s.exports, id)

	ids := s.byOwner[owner]
	for i, mid := range ids {
		if mid == id {
			s.byOwner[owner] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	return nil
}

func (s *exportsStorage) CountExports(ctx context.Context, owner, clientID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, id := range s.byOwner[owner] {
		m, ok := s.exports[id]
		if !ok {
			continue
		}
		if clientID != "" && m.ClientID != clientID {
			continue
		}
		count++
	}
	return count, nil
}
