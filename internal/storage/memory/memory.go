package memory

import (
	"context"
)

// MemoryStorage is the in-memory implementation of storage.Storage.
// Used when no database is configured and in tests.
type MemoryStorage struct {
	*clientsStorage
	*plansStorage
	*draftsStorage
	*recipesStorage
	*journalStorage
	*exportsStorage
}

func New() *MemoryStorage {
	return &MemoryStorage{
		clientsStorage: newClientsStorage(),
		plansStorage:   newPlansStorage(),
		draftsStorage:  newDraftsStorage(),
		recipesStorage: newRecipesStorage(),
		journalStorage: newJournalStorage(),
		exportsStorage: newExportsStorage(),
	}
}

func (m *MemoryStorage) Close(ctx context.Context) error {
	return nil
}
