// Package jobs persists jobs in the local SQLite book, keeping the
// display order in a position column.
package jobs

import (
	"context"

	"github.com/dmitrijs2005/contractorbook/internal/client/models"
)

type Repository interface {
	// List returns all jobs in display order.
	List(ctx context.Context) ([]models.Job, error)
	// Insert stores a new job ahead of every existing one.
	Insert(ctx context.Context, j models.Job) error
	// Update overwrites an existing job keeping its position.
	Update(ctx context.Context, j models.Job) error
	Delete(ctx context.Context, id string) error
	SetSynced(ctx context.Context, id string, synced bool) error
	// ReplaceAll swaps the whole table for jobs in one transaction.
	ReplaceAll(ctx context.Context, jobs []models.Job) error
}
