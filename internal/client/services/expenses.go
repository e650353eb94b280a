package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dmitrijs2005/contractorbook/internal/client/extract"
	"github.com/dmitrijs2005/contractorbook/internal/client/images"
	"github.com/dmitrijs2005/contractorbook/internal/client/models"
	"github.com/dmitrijs2005/contractorbook/internal/client/store"
	"github.com/dmitrijs2005/contractorbook/internal/filex"
	"github.com/dmitrijs2005/contractorbook/internal/logging"
	"github.com/shopspring/decimal"
)

var ErrScanUnavailable = errors.New("receipt scanning is not configured")

// ExpenseService records expenses. Any signed-in user may add one; only an
// admin may delete.
type ExpenseService struct {
	store     *store.Store
	sched     Scheduler
	delay     Delays
	extractor extract.Extractor
	images    images.Store
	logger    logging.Logger
	now       func() time.Time
}

type ExpenseOption func(*ExpenseService)

func WithExtractor(x extract.Extractor) ExpenseOption {
	return func(s *ExpenseService) { s.extractor = x }
}

func WithImageStore(is images.Store) ExpenseOption {
	return func(s *ExpenseService) { s.images = is }
}

func WithClock(now func() time.Time) ExpenseOption {
	return func(s *ExpenseService) { s.now = now }
}

func NewExpenseService(st *store.Store, sched Scheduler, delays Delays, logger logging.Logger, opts ...ExpenseOption) *ExpenseService {
	s := &ExpenseService{
		store:  st,
		sched:  sched,
		delay:  delays,
		logger: logger.With("service", "expenses"),
		now:    time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// List returns expenses newest first, optionally only those touching jobID.
func (s *ExpenseService) List(jobID string) []models.Expense {
	return s.Search("", jobID)
}

// Search matches query against merchant, job name and notes, ignoring case.
func (s *ExpenseService) Search(query, jobID string) []models.Expense {
	query = strings.ToLower(strings.TrimSpace(query))
	jobs := s.store.Jobs.All()

	var out []models.Expense
	for _, e := range s.store.Expenses.All() {
		if jobID != "" && !touchesJob(e, jobID) {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(e.MerchantName), query) &&
			!strings.Contains(strings.ToLower(models.JobName(jobs, e.JobID, "")), query) &&
			!strings.Contains(strings.ToLower(e.Notes), query) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func touchesJob(e models.Expense, jobID string) bool {
	if e.JobID == jobID {
		return true
	}
	for i := range e.Items {
		if e.ItemJobID(i) == jobID {
			return true
		}
	}
	return false
}

func (s *ExpenseService) Get(id string) (models.Expense, bool) {
	return s.store.Expenses.Get(id)
}

// Save stores e as unsynced and schedules a push.
func (s *ExpenseService) Save(ctx context.Context, e models.Expense) (models.Expense, error) {
	if s.store.Settings.CurrentUser() == nil {
		return models.Expense{}, ErrNotSignedIn
	}
	if e.ID == "" {
		e.ID = models.NewExpenseID()
	}
	if prev, ok := s.store.Expenses.Get(e.ID); ok && prev.Timestamp != 0 {
		e.Timestamp = prev.Timestamp
	}
	if e.Timestamp == 0 {
		e.Timestamp = s.now().UnixMilli()
	}
	if strings.TrimSpace(e.Currency) == "" {
		e.Currency = models.DefaultCurrency
	}
	if e.Date == "" {
		e.Date = s.now().Format(time.DateOnly)
	}
	e.Category = models.NormalizeCategory(e.Category, s.store.Settings.Categories())
	if err := e.Validate(); err != nil {
		return models.Expense{}, err
	}

	e = e.WithSynced(false)
	if err := persisted(s.store.Expenses.Upsert(ctx, e)); err != nil {
		return models.Expense{}, err
	}
	s.sched.Schedule(s.delay.Expense)
	return e, nil
}

func (s *ExpenseService) Delete(ctx context.Context, id string) error {
	if err := requireAdmin(s.store.Settings); err != nil {
		return err
	}
	return persisted(s.store.Expenses.Remove(ctx, id))
}

// Reconcile sets the total of an expense to the sum of its items.
func (s *ExpenseService) Reconcile(ctx context.Context, id string) (models.Expense, error) {
	e, ok := s.store.Expenses.Get(id)
	if !ok {
		return models.Expense{}, store.ErrNotFound
	}
	return s.Save(ctx, e.Reconciled())
}

// Scan extracts a receipt image into an unsaved expense charged to jobID,
// or to the job the extractor suggests, or to the first active job. The
// image is kept in the image store when one is configured.
func (s *ExpenseService) Scan(ctx context.Context, image []byte, jobID string) (models.Expense, error) {
	if s.extractor == nil {
		return models.Expense{}, ErrScanUnavailable
	}

	jobs := s.store.Jobs.All()
	var active []models.Job
	for _, j := range jobs {
		if j.IsActive() {
			active = append(active, j)
		}
	}

	r, err := s.extractor.Extract(ctx, image, extract.Hints{
		Categories: s.store.Settings.Categories(),
		Jobs:       active,
	})
	if err != nil {
		return models.Expense{}, err
	}

	if jobID == "" && r.SuggestedJobID == "" && len(active) > 0 {
		jobID = active[0].ID
	}
	draft := r.Draft(jobID, s.now())
	draft.Category = models.NormalizeCategory(draft.Category, s.store.Settings.Categories())

	if s.images != nil {
		ref, err := s.images.Put(ctx, image)
		if err != nil {
			s.logger.Warn(ctx, "receipt image not stored", "error", err)
		} else {
			draft.ImageURL = ref
		}
	}
	return draft, nil
}

// ImportReceipt scans the image at path and saves the result right away.
func (s *ExpenseService) ImportReceipt(ctx context.Context, path string) (models.Expense, error) {
	data, err := filex.ReadImage(path)
	if err != nil {
		return models.Expense{}, err
	}
	draft, err := s.Scan(ctx, data, "")
	if err != nil {
		return models.Expense{}, fmt.Errorf("scan %s: %w", path, err)
	}
	return s.Save(ctx, draft)
}

// JobSpend is a job's spending against its budget.
type JobSpend struct {
	Job   models.Job
	Spent decimal.Decimal
}

func (j JobSpend) Remaining() decimal.Decimal { return j.Job.Budget.Sub(j.Spent) }
func (j JobSpend) OverBudget() bool {
	return j.Job.Budget.IsPositive() && j.Spent.GreaterThan(j.Job.Budget)
}

type Dashboard struct {
	TotalSpent decimal.Decimal
	Jobs       []JobSpend
	Pending    int
	Recent     []models.Expense
}

const recentCount = 3

func (s *ExpenseService) Dashboard() Dashboard {
	expenses := s.store.Expenses.All()
	d := Dashboard{TotalSpent: decimal.Zero, Pending: s.store.PendingCount()}

	for _, e := range expenses {
		d.TotalSpent = d.TotalSpent.Add(e.TotalAmount)
	}
	for _, j := range s.store.Jobs.All() {
		js := JobSpend{Job: j, Spent: decimal.Zero}
		for _, e := range expenses {
			js.Spent = js.Spent.Add(e.SpentOn(j.ID))
		}
		d.Jobs = append(d.Jobs, js)
	}

	recent := append([]models.Expense(nil), expenses...)
	sort.SliceStable(recent, func(a, b int) bool { return recent[a].Timestamp > recent[b].Timestamp })
	if len(recent) > recentCount {
		recent = recent[:recentCount]
	}
	d.Recent = recent
	return d
}
