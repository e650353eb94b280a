package store

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/dmitrijs2005/contractorbook/internal/client/database"
	"github.com/dmitrijs2005/contractorbook/internal/client/models"
	"github.com/dmitrijs2005/contractorbook/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/contractorbook/internal/logging"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openRepos(t *testing.T, dsn string) *database.Repositories {
	t.Helper()
	repos, err := database.InitDatabase(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repos.Close() })
	return repos
}

func openStore(t *testing.T) (*Store, string) {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "book.db")
	s, err := Open(context.Background(), openRepos(t, dsn), logging.Discard())
	require.NoError(t, err)
	return s, dsn
}

func jobIDs(js []models.Job) []string {
	out := make([]string, len(js))
	for i, j := range js {
		out[i] = j.ID
	}
	return out
}

func TestOpen_SeedsJobsOnce(t *testing.T) {
	s, dsn := openStore(t)
	ctx := context.Background()

	assert.Equal(t, []string{"job-1", "job-2"}, jobIDs(s.Jobs.All()))
	assert.Equal(t, 2, s.PendingCount(), "seed jobs start unsynced")

	require.NoError(t, s.Jobs.Remove(ctx, "job-1"))
	require.NoError(t, s.Jobs.Remove(ctx, "job-2"))

	reopened, err := Open(ctx, openRepos(t, dsn), logging.Discard())
	require.NoError(t, err)
	assert.Empty(t, reopened.Jobs.All(), "seeding must not repeat")
}

func TestUpsert_PrependsNewAndReplacesInPlace(t *testing.T) {
	s, dsn := openStore(t)
	ctx := context.Background()

	deck := models.Job{ID: "job-deck", Name: "Deck", Status: models.JobStatusActive}
	require.NoError(t, s.Jobs.Upsert(ctx, deck))
	assert.Equal(t, []string{"job-deck", "job-1", "job-2"}, jobIDs(s.Jobs.All()))

	kitchen, ok := s.Jobs.Get("job-2")
	require.True(t, ok)
	kitchen.Name = "Kitchen v2"
	require.NoError(t, s.Jobs.Upsert(ctx, kitchen))
	assert.Equal(t, []string{"job-deck", "job-1", "job-2"}, jobIDs(s.Jobs.All()))

	got, _ := s.Jobs.Get("job-2")
	assert.Equal(t, "Kitchen v2", got.Name)

	reopened, err := Open(ctx, openRepos(t, dsn), logging.Discard())
	require.NoError(t, err)
	assert.Equal(t, []string{"job-deck", "job-1", "job-2"}, jobIDs(reopened.Jobs.All()))
	got, _ = reopened.Jobs.Get("job-2")
	assert.Equal(t, "Kitchen v2", got.Name)
}

func TestExpense_OptimisticWriteSurvivesRestart(t *testing.T) {
	s, dsn := openStore(t)
	ctx := context.Background()

	e := models.Expense{
		ID:          "r1",
		JobID:       "job-1",
		TotalAmount: decimal.RequireFromString("45"),
		Items:       []models.LineItem{{Description: "Lumber", Amount: decimal.RequireFromString("45")}},
		Timestamp:   1700000000000,
	}
	require.NoError(t, s.Expenses.Upsert(ctx, e))

	got, ok := s.Expenses.Get("r1")
	require.True(t, ok)
	assert.False(t, got.IsSynced)

	reopened, err := Open(ctx, openRepos(t, dsn), logging.Discard())
	require.NoError(t, err)
	got, ok = reopened.Expenses.Get("r1")
	require.True(t, ok)
	assert.False(t, got.IsSynced)
	assert.Equal(t, 3, reopened.PendingCount())
}

func TestRemove_Missing(t *testing.T) {
	s, _ := openStore(t)
	err := s.Expenses.Remove(context.Background(), "nope")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMarkSynced_RespectsRevision(t *testing.T) {
	s, _ := openStore(t)
	ctx := context.Background()

	snap := s.Jobs.Snapshot()
	require.Len(t, snap, 2)

	edited := snap[0].Record
	edited.Name = "edited while pushing"
	require.NoError(t, s.Jobs.Upsert(ctx, edited))

	changed, err := s.Jobs.MarkSynced(ctx, snap[0].Record.ID, snap[0].Rev)
	require.NoError(t, err)
	assert.False(t, changed, "a record edited after the snapshot stays pending")

	changed, err = s.Jobs.MarkSynced(ctx, snap[1].Record.ID, snap[1].Rev)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = s.Jobs.MarkSynced(ctx, "ghost", 1)
	require.NoError(t, err)
	assert.False(t, changed)

	assert.Equal(t, 1, s.Jobs.PendingCount())
	assert.Len(t, s.Jobs.Unsynced(), 1)
}

func TestApply_IsAtomicWithUpserts(t *testing.T) {
	s, _ := openStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = s.Expenses.Upsert(ctx, models.Expense{ID: models.NewExpenseID(), JobID: "job-1"})
		}()
		go func() {
			defer wg.Done()
			_ = s.Expenses.Apply(ctx, func(cur []models.Expense) []models.Expense { return cur })
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, s.Expenses.Len())
}

type failingRepo[T any] struct {
	Repository[T]
	err error
}

func (f failingRepo[T]) List(context.Context) ([]T, error)         { return nil, nil }
func (f failingRepo[T]) Insert(context.Context, T) error            { return f.err }
func (f failingRepo[T]) Update(context.Context, T) error            { return f.err }
func (f failingRepo[T]) Delete(context.Context, string) error       { return f.err }
func (f failingRepo[T]) SetSynced(context.Context, string, bool) error { return f.err }
func (f failingRepo[T]) ReplaceAll(context.Context, []T) error      { return f.err }

func TestPersistFailure_KeepsMemoryAndReportsErrPersist(t *testing.T) {
	full := errors.New("database or disk is full")
	c := NewCollection[models.Job]("jobs", failingRepo[models.Job]{err: full}, logging.Discard())
	ctx := context.Background()
	require.NoError(t, c.Load(ctx))

	err := c.Upsert(ctx, models.Job{ID: "job-x", Name: "X"})
	require.ErrorIs(t, err, ErrPersist)
	require.ErrorIs(t, err, full)

	got, ok := c.Get("job-x")
	require.True(t, ok, "memory keeps the write")
	assert.Equal(t, "X", got.Name)

	err = c.ReplaceAll(ctx, []models.Job{{ID: "a"}, {ID: "b"}})
	require.ErrorIs(t, err, ErrPersist)
	assert.Equal(t, 2, c.Len())

	snap := c.Snapshot()
	require.Len(t, snap, 2)
	changed, err := c.MarkSynced(ctx, "a", snap[0].Rev)
	require.ErrorIs(t, err, ErrPersist)
	assert.True(t, changed)
	assert.Equal(t, 1, c.PendingCount())
}

func TestSettings_DefaultsAndPersistence(t *testing.T) {
	s, dsn := openStore(t)
	ctx := context.Background()

	assert.Nil(t, s.Settings.CurrentUser())
	assert.Equal(t, models.DefaultCategories(), s.Settings.Categories())
	assert.Equal(t, models.DefaultProfile(), s.Settings.Profile())
	assert.Empty(t, s.Settings.EndpointURL())

	admin, _ := models.FindAccount("admin-1")
	require.NoError(t, s.Settings.SetUser(ctx, admin))
	require.NoError(t, s.Settings.SetCategories(ctx, []string{" Fuel ", "fuel", "Tools", ""}))
	require.NoError(t, s.Settings.SetProfile(ctx, models.ContractorProfile{CompanyName: "Acme", LogoEmoji: "🔨"}))
	require.NoError(t, s.Settings.SetEndpointURL(ctx, "  https://script.google.com/macros/s/abc/exec  "))

	reopened, err := Open(ctx, openRepos(t, dsn), logging.Discard())
	require.NoError(t, err)
	assert.True(t, reopened.Settings.CurrentUser().IsAdmin())
	assert.Equal(t, []string{"Fuel", "Tools", "Other"}, reopened.Settings.Categories())
	assert.Equal(t, "Acme", reopened.Settings.Profile().CompanyName)
	assert.Equal(t, "https://script.google.com/macros/s/abc/exec", reopened.Settings.EndpointURL())

	require.NoError(t, reopened.Settings.ClearUser(ctx))
	assert.Nil(t, reopened.Settings.CurrentUser())
}

func TestSettings_CorruptValueFallsBackToDefault(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "book.db")
	repos := openRepos(t, dsn)
	ctx := context.Background()
	require.NoError(t, repos.Metadata.Set(ctx, metadata.KeyCategories, []byte("not json")))

	s, err := Open(ctx, repos, logging.Discard())
	require.NoError(t, err)
	assert.Equal(t, models.DefaultCategories(), s.Settings.Categories())
}
