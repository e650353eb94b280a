package jobs

import (
	"context"
	"database/sql"
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

const columns = `id, name, client, address, contact_name, phone, email, status, budget, synced`

func (r *SQLiteRepository) List(ctx context.Context) ([]models.Job, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+columns+` FROM jobs ORDER BY position, rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to select jobs: %w", err)
	}
	defer rows.Close()

	result := []models.Job{}
	for rows.Next() {
		var (
			j      models.Job
			budget string
			status string
		)
		if err := rows.Scan(&j.ID, &j.Name, &j.Client, &j.Address, &j.ContactName,
			&j.Phone, &j.Email, &status, &budget, &j.IsSynced); err != nil {
			return nil, fmt.Errorf("failed to scan job row: %w", err)
		}
		j.Status = models.JobStatus(status)
		if j.Budget, err = decimal.NewFromString(budget); err != nil {
			return nil, fmt.Errorf("job %s has invalid budget %q: %w", j.ID, budget, err)
		}
		result = append(result, j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate job rows: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) Insert(ctx context.Context, j models.Job) error {
	return insert(ctx, r.db, j, `(SELECT COALESCE(MIN(position), 0) - 1 FROM jobs)`)
}

func insert(ctx context.Context, db dbx.DBTX, j models.Job, position string, args ...any) error {
	query := `INSERT INTO jobs (position, ` + columns + `)
		VALUES (` + position + `, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	args = append(args, j.ID, j.Name, j.Client, j.Address, j.ContactName,
		j.Phone, j.Email, string(j.Status), j.Budget.String(), j.IsSynced)
	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert job %s: %w", j.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) Update(ctx context.Context, j models.Job) error {
	res, err := r.db.ExecContext(ctx, `UPDATE jobs SET name = ?, client = ?, address = ?,
		contact_name = ?, phone = ?, email = ?, status = ?, budget = ?, synced = ?
		WHERE id = ?`,
		j.Name, j.Client, j.Address, j.ContactName, j.Phone, j.Email,
		string(j.Status), j.Budget.String(), j.IsSynced, j.ID)
	if err != nil {
		return fmt.Errorf("failed to update job %s: %w", j.ID, err)
	}
	return expectOne(res, j.ID)
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM jobs WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete job %s: %w", id, err)
	}
	return nil
}

func (r *SQLiteRepository) SetSynced(ctx context.Context, id string, synced bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE jobs SET synced = ? WHERE id = ?`, synced, id)
	if err != nil {
		return fmt.Errorf("failed to mark job %s: %w", id, err)
	}
	return expectOne(res, id)
}

func (r *SQLiteRepository) ReplaceAll(ctx context.Context, jobs []models.Job) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM jobs`); err != nil {
			return fmt.Errorf("failed to clear jobs: %w", err)
		}
		for i, j := range jobs {
			if err := insert(ctx, tx, j, `?`, i); err != nil {
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
		return fmt.Errorf("job %s: %w", id, sql.ErrNoRows)
	}
	return nil
}
