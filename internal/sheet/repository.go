package sheet

import "context"

// Repository persists the two sheets. Row order is insertion order; an
// upserted job keeps its row.
type Repository interface {
	// EnsureSheets creates the sheets when they do not exist yet.
	EnsureSheets(ctx context.Context) error
	UpsertJob(ctx context.Context, row JobRow) error
	// ReplaceReceipt deletes every expense row whose receipt part equals
	// receiptID exactly and appends rows, atomically.
	ReplaceReceipt(ctx context.Context, receiptID string, rows []ExpenseRow) error
	Jobs(ctx context.Context) ([]JobRow, error)
	Expenses(ctx context.Context) ([]ExpenseRow, error)
}
