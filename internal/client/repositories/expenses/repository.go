// Package expenses persists receipts and their line items in the local
// SQLite book.
package expenses

import (
	"context"

	"github.com/dmitrijs2005/contractorbook/internal/client/models"
)

type Repository interface {
	List(ctx context.Context) ([]models.Expense, error)
	Insert(ctx context.Context, e models.Expense) error
	Update(ctx context.Context, e models.Expense) error
	Delete(ctx context.Context, id string) error
	SetSynced(ctx context.Context, id string, synced bool) error
	ReplaceAll(ctx context.Context, expenses []models.Expense) error
}
