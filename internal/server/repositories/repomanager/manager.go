// Package repomanager opens the storage backend chosen in the server
// configuration and hands out the sheet repository bound to it.
package repomanager

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/contractorbook/internal/sheet"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

// RepositoryManager owns a storage backend.
type RepositoryManager interface {
	Sheets() sheet.Repository
	Close() error
}

// Open returns the manager for storage. dsn is used only by postgres.
func Open(ctx context.Context, storage, dsn string) (RepositoryManager, error) {
	switch storage {
	case StorageMemory:
		return NewInMemoryRepositoryManager(), nil
	case StoragePostgres:
		return NewPostgresRepositoryManager(ctx, dsn)
	}
	return nil, fmt.Errorf("unknown storage %q", storage)
}

type InMemoryRepositoryManager struct {
	sheets *sheet.MemoryRepository
}

func NewInMemoryRepositoryManager() *InMemoryRepositoryManager {
	return &InMemoryRepositoryManager{sheets: sheet.NewMemoryRepository()}
}

func (m *InMemoryRepositoryManager) Sheets() sheet.Repository {
	return m.sheets
}

func (m *InMemoryRepositoryManager) Close() error {
	return nil
}
