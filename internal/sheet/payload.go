package sheet

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNoData      = errors.New("no data")
	ErrMissingID   = errors.New("missing id")
	ErrMissingType = errors.New("missing type")
)

// Kind is the type tag of a POST body.
type Kind string

const (
	KindJob          Kind = "job"
	KindExpenseBatch Kind = "expense_batch"
	KindTest         Kind = "test"
)

type jobPayload struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Client        string `json:"client"`
	Address       string `json:"address"`
	ContactName   string `json:"contactName"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	Status        string `json:"status"`
	Budget        Number `json:"budget"`
	SyncTimestamp string `json:"syncTimestamp"`
}

func (p jobPayload) row() JobRow {
	return JobRow{
		ID:          p.ID,
		Name:        p.Name,
		Client:      p.Client,
		Address:     p.Address,
		ContactName: p.ContactName,
		Phone:       p.Phone,
		Email:       p.Email,
		Status:      p.Status,
		Budget:      p.Budget,
		LastUpdated: p.SyncTimestamp,
	}
}

type entryPayload struct {
	ID            string `json:"id"`
	ReceiptID     string `json:"receiptId"`
	Date          string `json:"date"`
	MerchantName  string `json:"merchantName"`
	JobID         string `json:"jobId"`
	JobName       string `json:"jobName"`
	Category      string `json:"category"`
	Amount        Number `json:"amount"`
	Description   string `json:"description"`
	Notes         string `json:"notes"`
	SyncTimestamp string `json:"syncTimestamp"`
}

func (p entryPayload) row() ExpenseRow {
	return ExpenseRow{
		ID:           p.ID,
		Date:         p.Date,
		MerchantName: p.MerchantName,
		JobID:        p.JobID,
		JobName:      p.JobName,
		Category:     p.Category,
		Amount:       p.Amount,
		Description:  p.Description,
		Notes:        p.Notes,
		SyncedAt:     p.SyncTimestamp,
	}
}

type batchPayload struct {
	ReceiptID string         `json:"receiptId"`
	Entries   []entryPayload `json:"entries"`
}

// request is a decoded POST body. Exactly one of job and batch is set for
// the job and expense_batch kinds.
type request struct {
	kind  Kind
	job   *JobRow
	batch *batchPayload
}

func decodeRequest(body []byte) (*request, error) {
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil, ErrNoData
	}

	var head struct {
		Type Kind `json:"type"`
	}
	if err := json.Unmarshal(body, &head); err != nil {
		return nil, fmt.Errorf("decode body: %w", err)
	}

	req := &request{kind: head.Type}
	switch head.Type {
	case "":
		return nil, ErrMissingType
	case KindJob:
		var p jobPayload
		if err := json.Unmarshal(body, &p); err != nil {
			return nil, fmt.Errorf("decode job: %w", err)
		}
		if strings.TrimSpace(p.ID) == "" {
			return nil, fmt.Errorf("job: %w", ErrMissingID)
		}
		row := p.row()
		req.job = &row
	case KindExpenseBatch:
		var p batchPayload
		if err := json.Unmarshal(body, &p); err != nil {
			return nil, fmt.Errorf("decode expense batch: %w", err)
		}
		if strings.TrimSpace(p.ReceiptID) == "" {
			return nil, fmt.Errorf("expense batch: %w", ErrMissingID)
		}
		for i, e := range p.Entries {
			if strings.TrimSpace(e.ID) == "" {
				return nil, fmt.Errorf("expense batch entry %d: %w", i, ErrMissingID)
			}
		}
		req.batch = &p
	}
	return req, nil
}
