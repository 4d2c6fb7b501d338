package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nutridesk/server/internal/storage"
)

type journalStorage struct {
	mu       sync.RWMutex
	entries  map[string]*storage.JournalEntry // key: id
	byClient map[string][]string              // "owner:clientID" -> []id
	targets  map[string]*storage.JournalTarget
}

func newJournalStorage() *journalStorage {
	return &journalStorage{
		entries:  make(map[string]*storage.JournalEntry),
		byClient: make(map[string][]string),
		targets:  make(map[string]*storage.JournalTarget),
	}
}

func journalKey(owner, clientID string) string {
	return fmt.Sprintf("%s:%s", owner, clientID)
}

func (s *journalStorage) CreateEntry(ctx context.Context, e storage.JournalEntry) (storage.JournalEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	e.CreatedAt = time.Now().UTC()

	s.entries[e.ID] = &e
	key := journalKey(e.Owner, e.ClientID)
	s.byClient[key] = append(s.byClient[key], e.ID)
	return e, nil
}

func (s *journalStorage) ListEntries(ctx context.Context, owner, clientID, date, kind string) ([]storage.JournalEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.byClient[journalKey(owner, clientID)]
	results := make([]storage.JournalEntry, 0, len(ids))
	for _, id := range ids {
		e, ok := s.entries[id]
		if !ok {
			continue
		}
		if date != "" && e.Date != date {
			continue
		}
		if kind != "" && e.Kind != kind {
			continue
		}
		results = append(results, *e)
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Date != results[j].Date {
			return results[i].Date < results[j].Date
		}
		return results[i].CreatedAt.Before(results[j].CreatedAt)
	})
	return results, nil
}

func (s *journalStorage) DeleteEntry(ctx context.Context, owner, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok || e.Owner != owner {
		return storage.ErrNotFound
	}
	delete(s.entries, id)

	key := journalKey(e.Owner, e.ClientID)
	ids := s.byClient[key]
	for i, eid := range ids {
		if eid == id {
			s.byClient[key] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	return nil
}

func targetKey(owner, clientID, date string) string {
	return fmt.Sprintf("%s:%s:%s", owner, clientID, date)
}

func (s *journalStorage) GetTargets(ctx context.Context, owner, clientID, date string) (storage.JournalTarget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.targets[targetKey(owner, clientID, date)]
	if !ok {
		return storage.JournalTarget{}, storage.ErrNotFound
	}
	return *t, nil
}

func (s *journalStorage) PutTargets(ctx context.Context, t storage.JournalTarget) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t.UpdatedAt = time.Now().UTC()
	s.targets[targetKey(t.Owner, t.ClientID, t.Date)] = &t
	return nil
}
