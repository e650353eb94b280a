// Package sheets stores the Jobs and Expenses sheets in PostgreSQL.
package sheets

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/contractorbook/internal/dbx"
	"github.com/dmitrijs2005/contractorbook/internal/sheet"
)

// Conn is the database handle the repository needs; *sql.DB satisfies it.
type Conn interface {
	dbx.DBTX
	dbx.TxBeginner
	PingContext(ctx context.Context) error
}

type PostgresRepository struct {
	db Conn
}

var _ sheet.Repository = (*PostgresRepository)(nil)

func NewPostgresRepository(db Conn) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// EnsureSheets checks the database is reachable. The tables themselves are
// created by migrations.
func (r *PostgresRepository) EnsureSheets(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) UpsertJob(ctx context.Context, row sheet.JobRow) error {
	query :=
		`INSERT INTO jobs (id, name, client, address, contact_name, phone, email, status, budget, last_updated)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 ON CONFLICT (id) DO UPDATE SET
		   name = EXCLUDED.name,
		   client = EXCLUDED.client,
		   address = EXCLUDED.address,
		   contact_name = EXCLUDED.contact_name,
		   phone = EXCLUDED.phone,
		   email = EXCLUDED.email,
		   status = EXCLUDED.status,
		   budget = EXCLUDED.budget,
		   last_updated = EXCLUDED.last_updated
		 `

	_, err := r.db.ExecContext(ctx, query,
		row.ID, row.Name, row.Client, row.Address, row.ContactName,
		row.Phone, row.Email, row.Status, row.Budget.Decimal, row.LastUpdated)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ReplaceReceipt(ctx context.Context, receiptID string, rows []sheet.ExpenseRow) error {
	del := `DELETE FROM expenses WHERE receipt_id = $1 OR id = $1`
	ins :=
		`INSERT INTO expenses (id, receipt_id, date, merchant_name, job_id, job_name, category, amount, description, notes, synced_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 `

	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, del, receiptID); err != nil {
			return err
		}
		for _, e := range rows {
			if _, err := tx.ExecContext(ctx, ins,
				e.ID, e.Receipt(), e.Date, e.MerchantName, e.JobID, e.JobName,
				e.Category, e.Amount.Decimal, e.Description, e.Notes, e.SyncedAt); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Jobs(ctx context.Context) ([]sheet.JobRow, error) {
	query :=
		`SELECT id, name, client, address, contact_name, phone, email, status, budget, last_updated
		 FROM jobs ORDER BY row_no
		 `

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []sheet.JobRow
	for rows.Next() {
		var j sheet.JobRow
		if err := rows.Scan(&j.ID, &j.Name, &j.Client, &j.Address, &j.ContactName,
			&j.Phone, &j.Email, &j.Status, &j.Budget.Decimal, &j.LastUpdated); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) Expenses(ctx context.Context) ([]sheet.ExpenseRow, error) {
	query :=
		`SELECT id, date, merchant_name, job_id, job_name, category, amount, description, notes, synced_at
		 FROM expenses ORDER BY row_no
		 `

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []sheet.ExpenseRow
	for rows.Next() {
		var e sheet.ExpenseRow
		if err := rows.Scan(&e.ID, &e.Date, &e.MerchantName, &e.JobID, &e.JobName,
			&e.Category, &e.Amount.Decimal, &e.Description, &e.Notes, &e.SyncedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}
