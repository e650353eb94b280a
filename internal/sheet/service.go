package sheet

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/contractorbook/internal/logging"
)

type Service struct {
	repo   Repository
	logger logging.Logger
}

func NewService(repo Repository, logger logging.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Handle applies one POST body. Unknown kinds are accepted and ignored.
func (s *Service) Handle(ctx context.Context, body []byte) error {
	req, err := decodeRequest(body)
	if err != nil {
		return err
	}

	switch req.kind {
	case KindTest:
		return s.repo.EnsureSheets(ctx)

	case KindJob:
		if err := s.repo.UpsertJob(ctx, *req.job); err != nil {
			return fmt.Errorf("upsert job %s: %w", req.job.ID, err)
		}
		s.logger.Info(ctx, "job stored", "id", req.job.ID)

	case KindExpenseBatch:
		rows := make([]ExpenseRow, len(req.batch.Entries))
		for i, e := range req.batch.Entries {
			rows[i] = e.row()
		}
		if err := s.repo.ReplaceReceipt(ctx, req.batch.ReceiptID, rows); err != nil {
			return fmt.Errorf("replace receipt %s: %w", req.batch.ReceiptID, err)
		}
		s.logger.Info(ctx, "receipt stored", "receipt", req.batch.ReceiptID, "entries", len(rows))

	default:
		s.logger.Debug(ctx, "payload ignored", "type", req.kind)
	}
	return nil
}

// Snapshot reads both sheets. Empty sheets come back as empty lists.
func (s *Service) Snapshot(ctx context.Context) (*Snapshot, error) {
	if err := s.repo.EnsureSheets(ctx); err != nil {
		return nil, err
	}
	jobs, err := s.repo.Jobs(ctx)
	if err != nil {
		return nil, fmt.Errorf("read jobs: %w", err)
	}
	expenses, err := s.repo.Expenses(ctx)
	if err != nil {
		return nil, fmt.Errorf("read expenses: %w", err)
	}
	if jobs == nil {
		jobs = []JobRow{}
	}
	if expenses == nil {
		expenses = []ExpenseRow{}
	}
	return &Snapshot{Jobs: jobs, Expenses: expenses}, nil
}
