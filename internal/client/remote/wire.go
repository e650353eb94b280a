package remote

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/contractorbook/internal/client/models"
	"github.com/shopspring/decimal"
)

// Kind tags the payload of a push.
type Kind string

const (
	KindJob          Kind = "job"
	KindExpenseBatch Kind = "expense_batch"
	KindTest         Kind = "test"
)

const defaultJobName = "Default"

type testPayload struct {
	Type Kind `json:"type"`
}

type jobPayload struct {
	Type          Kind        `json:"type"`
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	Client        string      `json:"client"`
	Address       string      `json:"address"`
	ContactName   string      `json:"contactName"`
	Phone         string      `json:"phone"`
	Email         string      `json:"email"`
	Status        string      `json:"status"`
	Budget        json.Number `json:"budget"`
	SyncTimestamp string      `json:"syncTimestamp"`
}

// Entry is one flattened line item of an expense batch.
type Entry struct {
	ID            string      `json:"id"`
	ReceiptID     string      `json:"receiptId"`
	Date          string      `json:"date"`
	MerchantName  string      `json:"merchantName"`
	JobID         string      `json:"jobId"`
	JobName       string      `json:"jobName"`
	Category      string      `json:"category"`
	Amount        json.Number `json:"amount"`
	Description   string      `json:"description"`
	Notes         string      `json:"notes"`
	SyncTimestamp string      `json:"syncTimestamp"`
}

type expenseBatchPayload struct {
	Type      Kind    `json:"type"`
	ReceiptID string  `json:"receiptId"`
	Entries   []Entry `json:"entries"`
}

func money(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(2))
}

func newJobPayload(j models.Job, now time.Time) jobPayload {
	return jobPayload{
		Type:          KindJob,
		ID:            j.ID,
		Name:          j.Name,
		Client:        j.Client,
		Address:       j.Address,
		ContactName:   j.ContactName,
		Phone:         j.Phone,
		Email:         j.Email,
		Status:        string(j.Status),
		Budget:        money(j.Budget),
		SyncTimestamp: now.UTC().Format(time.RFC3339),
	}
}

const generalItem = "General Item"

// Flatten turns an expense into one entry per line item. Entry ids are
// "<receiptId>_<index>"; the job name is looked up in jobs. An expense
// without items is sent as a single entry carrying its total.
func Flatten(e models.Expense, jobs []models.Job, now time.Time) []Entry {
	date := e.Date
	if date == "" {
		date = e.CreatedAt().Format(time.DateOnly)
	}
	stamp := now.UTC().Format(time.RFC3339)

	if len(e.Items) == 0 {
		e.Items = []models.LineItem{{Description: generalItem, Amount: e.TotalAmount}}
	}

	entries := make([]Entry, len(e.Items))
	for i, it := range e.Items {
		jobID := e.ItemJobID(i)
		entries[i] = Entry{
			ID:            fmt.Sprintf("%s_%d", e.ID, i),
			ReceiptID:     e.ID,
			Date:          date,
			MerchantName:  e.MerchantName,
			JobID:         jobID,
			JobName:       models.JobName(jobs, jobID, defaultJobName),
			Category:      e.Category,
			Amount:        money(it.Amount),
			Description:   it.Description,
			Notes:         e.Notes,
			SyncTimestamp: stamp,
		}
	}
	return entries
}

// cell decodes a spreadsheet cell that may arrive as a string, number, bool
// or null into its text form.
type cell string

func (c *cell) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*c = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*c = cell(s)
	case bytes.Equal(b, []byte("true")), bytes.Equal(b, []byte("false")):
		*c = cell(b)
	case len(b) > 0 && (b[0] == '-' || (b[0] >= '0' && b[0] <= '9')):
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return err
		}
		*c = cell(n.String())
	default:
		return fmt.Errorf("unexpected cell value %s", string(b))
	}
	return nil
}

// amount parses a cell leniently: anything unparsable is zero.
func (c cell) amount() decimal.Decimal {
	s := strings.TrimSpace(string(c))
	s = strings.TrimLeft(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		if f, ferr := strconv.ParseFloat(s, 64); ferr == nil {
			return decimal.NewFromFloat(f)
		}
		return decimal.Zero
	}
	return d
}

type wireJob struct {
	ID          cell `json:"id"`
	Name        cell `json:"name"`
	Client      cell `json:"client"`
	Address     cell `json:"address"`
	ContactName cell `json:"contactName"`
	Phone       cell `json:"phone"`
	Email       cell `json:"email"`
	Status      cell `json:"status"`
	Budget      cell `json:"budget"`
}

type wireExpense struct {
	ID           cell `json:"id"`
	JobID        cell `json:"jobId"`
	MerchantName cell `json:"merchantName"`
	Date         cell `json:"date"`
	Amount       cell `json:"amount"`
	TotalAmount  cell `json:"totalAmount"`
	TaxAmount    cell `json:"taxAmount"`
	Category     cell `json:"category"`
	Description  cell `json:"description"`
	Notes        cell `json:"notes"`
}

// Snapshot is the transient result of a pull.
type Snapshot struct {
	Jobs     []models.Job
	Expenses []models.Expense
}

// dateLayouts are tried in order when turning a sheet date into a timestamp.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.DateOnly,
	"1/2/2006",
	"01/02/2006",
	"1/2/2006, 3:04:05 PM",
}

func parseDate(s string, now time.Time) int64 {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t.UnixMilli()
		}
	}
	return now.UnixMilli()
}

func decodeSnapshot(body []byte, now time.Time) (*Snapshot, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(body, &top); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	if top == nil {
		return nil, fmt.Errorf("%w: not an object", ErrMalformedResponse)
	}
	if msg, ok := top["error"]; ok {
		return nil, fmt.Errorf("%w: remote error %s", ErrMalformedResponse, string(msg))
	}

	var jobs []wireJob
	if raw, ok := top["jobs"]; ok {
		if err := json.Unmarshal(raw, &jobs); err != nil {
			return nil, fmt.Errorf("%w: jobs: %w", ErrMalformedResponse, err)
		}
	}
	var expenses []wireExpense
	if raw, ok := top["expenses"]; ok {
		if err := json.Unmarshal(raw, &expenses); err != nil {
			return nil, fmt.Errorf("%w: expenses: %w", ErrMalformedResponse, err)
		}
	}

	snap := &Snapshot{
		Jobs:     make([]models.Job, 0, len(jobs)),
		Expenses: make([]models.Expense, 0, len(expenses)),
	}
	for i, w := range jobs {
		if strings.TrimSpace(string(w.ID)) == "" {
			return nil, fmt.Errorf("%w: job row %d has no id", ErrMalformedResponse, i)
		}
		snap.Jobs = append(snap.Jobs, w.toJob())
	}
	for i, w := range expenses {
		if strings.TrimSpace(string(w.ID)) == "" {
			return nil, fmt.Errorf("%w: expense row %d has no id", ErrMalformedResponse, i)
		}
		snap.Expenses = append(snap.Expenses, w.toExpense(now))
	}
	return snap, nil
}

func (w wireJob) toJob() models.Job {
	status, err := models.ParseJobStatus(string(w.Status))
	if err != nil {
		status = models.JobStatusActive
	}
	return models.Job{
		ID:          string(w.ID),
		Name:        string(w.Name),
		Client:      string(w.Client),
		Address:     string(w.Address),
		ContactName: string(w.ContactName),
		Phone:       string(w.Phone),
		Email:       string(w.Email),
		Status:      status,
		Budget:      w.Budget.amount(),
		IsSynced:    true,
	}
}

// toExpense maps one sheet row onto a single-item expense. The row id (the
// flattened "<receiptId>_<index>") becomes the expense id.
func (w wireExpense) toExpense(now time.Time) models.Expense {
	total := w.Amount.amount()
	if total.IsZero() {
		total = w.TotalAmount.amount()
	}
	category := string(w.Category)
	if category == "" {
		category = models.CategoryOther
	}
	description := string(w.Description)
	if description == "" {
		description = generalItem
	}

	return models.Expense{
		ID:           string(w.ID),
		MerchantName: string(w.MerchantName),
		Date:         string(w.Date),
		TotalAmount:  total,
		TaxAmount:    w.TaxAmount.amount(),
		Currency:     models.DefaultCurrency,
		Category:     category,
		Notes:        string(w.Notes),
		Items: []models.LineItem{
			{Description: description, Amount: total, JobID: string(w.JobID)},
		},
		Timestamp: parseDate(string(w.Date), now),
		JobID:     string(w.JobID),
		IsSynced:  true,
	}
}
