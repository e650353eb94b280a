package store

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/contractorbook/internal/client/database"
	"github.com/dmitrijs2005/contractorbook/internal/client/models"
	"github.com/dmitrijs2005/contractorbook/internal/logging"
)

// Store bundles the collections and settings of one local book.
type Store struct {
	Jobs     *Collection[models.Job]
	Expenses *Collection[models.Expense]
	Settings *Settings
}

func New(repos *database.Repositories, logger logging.Logger) *Store {
	return &Store{
		Jobs:     NewCollection[models.Job]("jobs", repos.Jobs, logger),
		Expenses: NewCollection[models.Expense]("expenses", repos.Expenses, logger),
		Settings: NewSettings(repos.Metadata, logger),
	}
}

// Open loads everything from the repositories and inserts the sample jobs
// the first time a book is opened. Persistence failures while seeding are
// logged and do not fail Open.
func Open(ctx context.Context, repos *database.Repositories, logger logging.Logger) (*Store, error) {
	s := New(repos, logger)
	s.Settings.Load(ctx)

	if err := s.Jobs.Load(ctx); err != nil {
		return nil, err
	}
	if err := s.Expenses.Load(ctx); err != nil {
		return nil, err
	}

	if err := s.seed(ctx); err != nil && !errors.Is(err, ErrPersist) {
		return nil, err
	}
	return s, nil
}

func (s *Store) seed(ctx context.Context) error {
	if s.Settings.jobsSeeded() {
		return nil
	}
	if s.Jobs.Len() == 0 {
		seeds := models.SeedJobs()
		for i := len(seeds) - 1; i >= 0; i-- {
			if err := s.Jobs.Upsert(ctx, seeds[i]); err != nil {
				return err
			}
		}
	}
	return s.Settings.markJobsSeeded(ctx)
}

// PendingCount is the number of unsynced jobs and expenses.
func (s *Store) PendingCount() int {
	return s.Jobs.PendingCount() + s.Expenses.PendingCount()
}
