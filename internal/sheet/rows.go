package sheet

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Number is a money cell. It is written as a bare JSON number and read from
// a number, a numeric string, an empty string or null.
type Number struct {
	decimal.Decimal
}

func NewNumber(s string) (Number, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Number{}, err
	}
	return Number{d}, nil
}

func (n Number) MarshalJSON() ([]byte, error) {
	return []byte(n.String()), nil
}

func (n *Number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		n.Decimal = decimal.Zero
		return nil
	}
	s := string(b)
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
	}
	s = strings.ReplaceAll(strings.TrimPrefix(strings.TrimSpace(s), "$"), ",", "")
	if s == "" {
		n.Decimal = decimal.Zero
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("invalid amount %q", s)
	}
	n.Decimal = d
	return nil
}

// JobRow is one row of the Jobs sheet.
type JobRow struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Client      string `json:"client"`
	Address     string `json:"address"`
	ContactName string `json:"contactName"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	Status      string `json:"status"`
	Budget      Number `json:"budget"`
	// LastUpdated is the sync timestamp of the last upsert.
	LastUpdated string `json:"-"`
}

// ExpenseRow is one row of the Expenses sheet: a single flattened line item.
type ExpenseRow struct {
	ID           string `json:"id"`
	Date         string `json:"date"`
	MerchantName string `json:"merchantName"`
	JobID        string `json:"jobId"`
	JobName      string `json:"jobName"`
	Category     string `json:"category"`
	Amount       Number `json:"amount"`
	Description  string `json:"description"`
	Notes        string `json:"notes"`
	SyncedAt     string `json:"-"`
}

// Receipt returns the receipt part of the row id.
func (r ExpenseRow) Receipt() string {
	return ReceiptIDOf(r.ID)
}

// Snapshot is the body served on GET.
type Snapshot struct {
	Jobs     []JobRow     `json:"jobs"`
	Expenses []ExpenseRow `json:"expenses"`
}

// ReceiptIDOf strips the trailing "_<index>" from a flattened entry id. Ids
// without such a suffix are their own receipt.
func ReceiptIDOf(entryID string) string {
	i := strings.LastIndexByte(entryID, '_')
	if i < 0 || i == len(entryID)-1 {
		return entryID
	}
	if _, err := strconv.ParseUint(entryID[i+1:], 10, 64); err != nil {
		return entryID
	}
	return entryID[:i]
}
