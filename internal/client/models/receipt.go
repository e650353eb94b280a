package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ExtractedReceipt is what the receipt scanner reads off an image.
type ExtractedReceipt struct {
	MerchantName   string
	Date           string
	TotalAmount    decimal.Decimal
	TaxAmount      decimal.Decimal
	Currency       string
	Category       string
	Items          []LineItem
	Notes          string
	SuggestedJobID string
}

// Draft turns the extraction into an unsaved expense charged to jobID, or to
// the suggested job when jobID is empty.
func (r ExtractedReceipt) Draft(jobID string, now time.Time) Expense {
	if jobID == "" {
		jobID = r.SuggestedJobID
	}
	currency := strings.TrimSpace(r.Currency)
	if currency == "" {
		currency = DefaultCurrency
	}
	date := r.Date
	if date == "" {
		date = now.Format(time.DateOnly)
	}
	items := make([]LineItem, len(r.Items))
	copy(items, r.Items)
	total := r.TotalAmount
	if total.IsZero() && len(items) > 0 {
		total = decimal.Zero
		for _, it := range items {
			total = total.Add(it.Amount)
		}
	}

	return Expense{
		ID:           NewExpenseID(),
		MerchantName: r.MerchantName,
		Date:         date,
		TotalAmount:  total,
		TaxAmount:    r.TaxAmount,
		Currency:     currency,
		Category:     r.Category,
		Notes:        r.Notes,
		Items:        items,
		Timestamp:    now.UnixMilli(),
		JobID:        jobID,
	}
}
