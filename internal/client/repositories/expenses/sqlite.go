package expenses

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/contractorbook/internal/client/models"
	"github.com/dmitrijs2005/contractorbook/internal/dbx"
	"github.com/shopspring/decimal"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const columns = `id, merchant_name, date, total_amount, tax_amount, currency, category,
	notes, items, image_url, created_at, job_id, synced`

func (r *SQLiteRepository) List(ctx context.Context) ([]models.Expense, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+columns+` FROM expenses ORDER BY position, rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to select expenses: %w", err)
	}
	defer rows.Close()

	result := []models.Expense{}
	for rows.Next() {
		var (
			e          models.Expense
			total, tax string
			items      string
		)
		if err := rows.Scan(&e.ID, &e.MerchantName, &e.Date, &total, &tax, &e.Currency,
			&e.Category, &e.Notes, &items, &e.ImageURL, &e.Timestamp, &e.JobID, &e.IsSynced); err != nil {
			return nil, fmt.Errorf("failed to scan expense row: %w", err)
		}
		if e.TotalAmount, err = decimal.NewFromString(total); err != nil {
			return nil, fmt.Errorf("expense %s has invalid total %q: %w", e.ID, total, err)
		}
		if e.TaxAmount, err = decimal.NewFromString(tax); err != nil {
			return nil, fmt.Errorf("expense %s has invalid tax %q: %w", e.ID, tax, err)
		}
		if err := json.Unmarshal([]byte(items), &e.Items); err != nil {
			return nil, fmt.Errorf("expense %s has invalid items: %w", e.ID, err)
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expense rows: %w", err)
	}
	return result, nil
}

func encodeItems(e models.Expense) (string, error) {
	items := e.Items
	if items == nil {
		items = []models.LineItem{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("failed to encode items of expense %s: %w", e.ID, err)
	}
	return string(b), nil
}

func (r *SQLiteRepository) Insert(ctx context.Context, e models.Expense) error {
	return insert(ctx, r.db, e, `(SELECT COALESCE(MIN(position), 0) - 1 FROM expenses)`)
}

func insert(ctx context.Context, db dbx.DBTX, e models.Expense, position string, args ...any) error {
	items, err := encodeItems(e)
	if err != nil {
		return err
	}
	query := `INSERT INTO expenses (position, ` + columns + `)
		VALUES (` + position + `, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	args = append(args, e.ID, e.MerchantName, e.Date, e.TotalAmount.String(), e.TaxAmount.String(),
		e.Currency, e.Category, e.Notes, items, e.ImageURL, e.Timestamp, e.JobID, e.IsSynced)
	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert expense %s: %w", e.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) Update(ctx context.Context, e models.Expense) error {
	items, err := encodeItems(e)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `UPDATE expenses SET merchant_name = ?, date = ?,
		total_amount = ?, tax_amount = ?, currency = ?, category = ?, notes = ?, items = ?,
		image_url = ?, job_id = ?, synced = ?
		WHERE id = ?`,
		e.MerchantName, e.Date, e.TotalAmount.String(), e.TaxAmount.String(), e.Currency,
		e.Category, e.Notes, items, e.ImageURL, e.JobID, e.IsSynced, e.ID)
	if err != nil {
		return fmt.Errorf("failed to update expense %s: %w", e.ID, err)
	}
	return expectOne(res, e.ID)
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete expense %s: %w", id, err)
	}
	return nil
}

func (r *SQLiteRepository) SetSynced(ctx context.Context, id string, synced bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE expenses SET synced = ? WHERE id = ?`, synced, id)
	if err != nil {
		return fmt.Errorf("failed to mark expense %s: %w", id, err)
	}
	return expectOne(res, id)
}

func (r *SQLiteRepository) ReplaceAll(ctx context.Context, expenses []models.Expense) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM expenses`); err != nil {
			return fmt.Errorf("failed to clear expenses: %w", err)
		}
		for i, e := range expenses {
			if err := insert(ctx, tx, e, `?`, i); err != nil {
				return err
			}
		}
		return nil
	})
}

func expectOne(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n != 1 {
		return fmt.Errorf("expense %s: %w", id, sql.ErrNoRows)
	}
	return nil
}
