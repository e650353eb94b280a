package models

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is used when a receipt does not state one.
const DefaultCurrency = "$"

var ErrExpenseJobRequired = errors.New("expense must reference a job")

// LineItem is a single charge on a receipt. JobID, when set, overrides the
// job of the parent expense for this item.
type LineItem struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	JobID       string          `json:"jobId,omitempty"`
}

// Expense is one receipt with its line items.
type Expense struct {
	ID           string
	MerchantName string
	Date         string
	TotalAmount  decimal.Decimal
	TaxAmount    decimal.Decimal
	Currency     string
	Category     string
	Notes        string
	Items        []LineItem
	ImageURL     string
	// Timestamp is the creation time in Unix milliseconds and never changes.
	Timestamp int64
	JobID     string
	IsSynced  bool
}

func (e Expense) Key() string  { return e.ID }
func (e Expense) Synced() bool { return e.IsSynced }

func (e Expense) WithSynced(synced bool) Expense {
	e.IsSynced = synced
	e.Items = append([]LineItem(nil), e.Items...)
	return e
}

func (e Expense) Validate() error {
	if strings.TrimSpace(e.JobID) == "" {
		return ErrExpenseJobRequired
	}
	return nil
}

// CreatedAt converts Timestamp to time.Time.
func (e Expense) CreatedAt() time.Time {
	return time.UnixMilli(e.Timestamp)
}

// ItemJobID resolves the job an item is charged to.
func (e Expense) ItemJobID(i int) string {
	if e.Items[i].JobID != "" {
		return e.Items[i].JobID
	}
	return e.JobID
}

// ItemsTotal is the sum of all item amounts.
func (e Expense) ItemsTotal() decimal.Decimal {
	sum := decimal.Zero
	for _, it := range e.Items {
		sum = sum.Add(it.Amount)
	}
	return sum
}

// Reconciled returns a copy whose total equals the sum of its items. Totals
// are never recomputed implicitly.
func (e Expense) Reconciled() Expense {
	e.Items = append([]LineItem(nil), e.Items...)
	e.TotalAmount = e.ItemsTotal()
	return e
}

// SpentOn returns the portion of the expense charged to jobID. An expense
// without items charges its whole total to its own job.
func (e Expense) SpentOn(jobID string) decimal.Decimal {
	if len(e.Items) == 0 {
		if e.JobID == jobID {
			return e.TotalAmount
		}
		return decimal.Zero
	}
	sum := decimal.Zero
	for i := range e.Items {
		if e.ItemJobID(i) == jobID {
			sum = sum.Add(e.Items[i].Amount)
		}
	}
	return sum
}

// NewExpenseID returns a fresh expense identifier. Fresh ids never contain an
// underscore since the remote entry ids use it as a separator; pulled
// expenses keep their row id, underscore included.
func NewExpenseID() string {
	return uuid.NewString()
}
