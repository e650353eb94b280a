// Package database opens the local SQLite book and wires its repositories.
package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/contractorbook/internal/client/migrations"
	"github.com/dmitrijs2005/contractorbook/internal/client/repositories/expenses"
	"github.com/dmitrijs2005/contractorbook/internal/client/repositories/jobs"
	"github.com/dmitrijs2005/contractorbook/internal/client/repositories/metadata"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

type Repositories struct {
	DB       *sql.DB
	Metadata metadata.Repository
	Jobs     jobs.Repository
	Expenses expenses.Repository
}

func (r *Repositories) Close() error {
	return r.DB.Close()
}

func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// Open opens (creating if needed) the SQLite file at dsn and migrates it.
// The pool is limited to a single connection so writes are serialised and
// ":memory:" databases behave.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return db, nil
}

func InitDatabase(ctx context.Context, dsn string) (*Repositories, error) {
	db, err := Open(ctx, dsn)
	if err != nil {
		return nil, err
	}

	return &Repositories{
		DB:       db,
		Metadata: metadata.NewSQLiteRepository(db),
		Jobs:     jobs.NewSQLiteRepository(db),
		Expenses: expenses.NewSQLiteRepository(db),
	}, nil
}
