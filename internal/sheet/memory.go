package sheet

import (
	"context"
	"slices"
	"sync"
)

// MemoryRepository keeps both sheets in process memory.
type MemoryRepository struct {
	mu       sync.RWMutex
	jobs     []JobRow
	expenses []ExpenseRow
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) EnsureSheets(ctx context.Context) error {
	return nil
}

func (r *MemoryRepository) UpsertJob(ctx context.Context, row JobRow) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.jobs {
		if r.jobs[i].ID == row.ID {
			r.jobs[i] = row
			return nil
		}
	}
	r.jobs = append(r.jobs, row)
	return nil
}

func (r *MemoryRepository) ReplaceReceipt(ctx context.Context, receiptID string, rows []ExpenseRow) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.expenses = slices.DeleteFunc(r.expenses, func(e ExpenseRow) bool {
		return e.ID == receiptID || e.Receipt() == receiptID
	})
	r.expenses = append(r.expenses, rows...)
	return nil
}

func (r *MemoryRepository) Jobs(ctx context.Context) ([]JobRow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.jobs), nil
}

func (r *MemoryRepository) Expenses(ctx context.Context) ([]ExpenseRow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.expenses), nil
}
