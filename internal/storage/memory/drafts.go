package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nutridesk/server/internal/storage"
)

type draftsStorage struct {
	mu     sync.RWMutex
	drafts map[string]*storage.DraftRecord // key: "owner:draftKey"
}

func newDraftsStorage() *draftsStorage {
	return &draftsStorage{
		drafts: make(map[string]*storage.DraftRecord),
	}
}

func draftMapKey(owner, key string) string {
	return fmt.Sprintf("%s:%s", owner, key)
}

func (s *draftsStorage) PutDraft(ctx context.Context, d storage.DraftRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if d.SavedAt.IsZero() {
		d.SavedAt = time.Now().UTC()
	}
	s.drafts[draftMapKey(d.Owner, d.Key)] = &d
	return nil
}

func (s *draftsStorage) GetDraft(ctx context.Context, owner, key string) (storage.DraftRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.drafts[draftMapKey(owner, key)]
	if !ok {
		return storage.DraftRecord{}, storage.ErrNotFound
	}
	return *d, nil
}

func (s *draftsStorage) DeleteDraft(ctx context.Context, owner, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	mapKey := draftMapKey(owner, key)
	if _, ok := s.drafts[mapKey]; !ok {
		return storage.ErrNotFound
	}
	delete(s.drafts, mapKey)
	return nil
}

func (s *draftsStorage) DeleteExpiredDrafts(ctx context.Context, before time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, d := range s.drafts {
		if d.SavedAt.Before(before) {
			delete(s.drafts, key)
			removed++
		}
	}
	return removed, nil
}
