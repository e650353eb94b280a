// Package syncer drives the push and pull cycles between the local store and
// the spreadsheet webhook. Each direction has its own single-flight lock; a
// trigger that arrives while a cycle of that direction runs is dropped.
package syncer

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/contractorbook/internal/client/merge"
	"github.com/dmitrijs2005/contractorbook/internal/client/models"
	"github.com/dmitrijs2005/contractorbook/internal/client/remote"
	"github.com/dmitrijs2005/contractorbook/internal/client/store"
	"github.com/dmitrijs2005/contractorbook/internal/logging"
)

// Remote is the webhook side of a cycle.
type Remote interface {
	PushJob(ctx context.Context, endpoint string, j models.Job) error
	PushExpense(ctx context.Context, endpoint string, e models.Expense, jobs []models.Job) error
	Test(ctx context.Context, endpoint string) error
	Pull(ctx context.Context, endpoint string) (*remote.Snapshot, error)
}

type Mode string

const (
	ModeOnline   Mode = "online"
	ModeOffline  Mode = "offline"
	ModeDisabled Mode = "disabled"
)

type State string

const (
	StateIdle     State = "idle"
	StateInFlight State = "in-flight"
)

type Direction string

const (
	DirectionPush Direction = "push"
	DirectionPull Direction = "pull"
)

// PushReport summarises one push cycle.
type PushReport struct {
	Ran    bool
	Pushed int
	Failed int
	// Stale counts records pushed successfully but edited meanwhile, so
	// they stay pending.
	Stale int
}

// PullReport summarises one pull cycle.
type PullReport struct {
	Ran      bool
	Applied  bool
	Jobs     int
	Expenses int
	Carried  int
	Dropped  int
}

type Syncer struct {
	store  *store.Store
	remote Remote
	policy merge.Policy
	logger logging.Logger

	pushing atomic.Bool
	pulling atomic.Bool

	modeMu sync.RWMutex
	mode   Mode

	timerMu sync.Mutex
	timers  map[Direction]*time.Timer
	closed  bool
	wg      sync.WaitGroup
}

type Option func(*Syncer)

func WithPolicy(p merge.Policy) Option { return func(s *Syncer) { s.policy = p } }

func New(st *store.Store, r Remote, logger logging.Logger, opts ...Option) *Syncer {
	s := &Syncer{
		store:  st,
		remote: r,
		policy: merge.RemoteWins,
		logger: logger.With("component", "syncer"),
		timers: make(map[Direction]*time.Timer),
	}
	for _, o := range opts {
		o(s)
	}
	s.mode = s.initialMode()
	return s
}

func (s *Syncer) initialMode() Mode {
	if remote.IsValidEndpoint(s.store.Settings.EndpointURL()) {
		return ModeOffline
	}
	return ModeDisabled
}

func (s *Syncer) Mode() Mode {
	s.modeMu.RLock()
	defer s.modeMu.RUnlock()
	return s.mode
}

func (s *Syncer) setMode(ctx context.Context, m Mode) {
	s.modeMu.Lock()
	prev := s.mode
	s.mode = m
	s.modeMu.Unlock()
	if prev != m {
		s.logger.Info(ctx, "sync mode changed", "from", prev, "to", m)
	}
}

// State reports whether a cycle of the given direction is running.
func (s *Syncer) State(d Direction) State {
	lock := &s.pushing
	if d == DirectionPull {
		lock = &s.pulling
	}
	if lock.Load() {
		return StateInFlight
	}
	return StateIdle
}

// PendingCount is the number of unsynced records right now.
func (s *Syncer) PendingCount() int {
	return s.store.PendingCount()
}

func (s *Syncer) endpoint(ctx context.Context) (string, bool) {
	url, err := remote.ValidateEndpoint(s.store.Settings.EndpointURL())
	if err != nil {
		s.setMode(ctx, ModeDisabled)
		return "", false
	}
	if s.Mode() == ModeDisabled {
		s.setMode(ctx, ModeOffline)
	}
	return url, true
}

// Push drains the unsynced queue: jobs first, then expenses, each marked
// synced as soon as its own push succeeds. It does nothing unless the
// endpoint is valid, the current user is an admin and no push is running.
func (s *Syncer) Push(ctx context.Context) PushReport {
	url, ok := s.endpoint(ctx)
	if !ok || !s.store.Settings.CurrentUser().IsAdmin() {
		return PushReport{}
	}
	if !s.pushing.CompareAndSwap(false, true) {
		return PushReport{}
	}
	defer s.pushing.Store(false)

	ctx = context.WithoutCancel(ctx)
	report := PushReport{Ran: true}

	jobs := s.store.Jobs.Snapshot()
	expenses := s.store.Expenses.Snapshot()
	if len(jobs) == 0 && len(expenses) == 0 {
		return report
	}
	allJobs := s.store.Jobs.All()

	for _, p := range jobs {
		err := s.remote.PushJob(ctx, url, p.Record)
		s.settle(ctx, &report, "job", p.Record.ID, err, func() (bool, error) {
			return s.store.Jobs.MarkSynced(ctx, p.Record.ID, p.Rev)
		})
	}
	for _, p := range expenses {
		err := s.remote.PushExpense(ctx, url, p.Record, allJobs)
		s.settle(ctx, &report, "expense", p.Record.ID, err, func() (bool, error) {
			return s.store.Expenses.MarkSynced(ctx, p.Record.ID, p.Rev)
		})
	}

	switch {
	case report.Pushed > 0 || report.Stale > 0:
		s.setMode(ctx, ModeOnline)
	case report.Failed > 0:
		s.setMode(ctx, ModeOffline)
	}
	s.logger.Info(ctx, "push cycle finished",
		"pushed", report.Pushed, "failed", report.Failed, "stale", report.Stale,
		"pending", s.store.PendingCount())
	return report
}

func (s *Syncer) settle(ctx context.Context, r *PushReport, kind, id string, pushErr error, mark func() (bool, error)) {
	if pushErr != nil {
		r.Failed++
		s.logger.Warn(ctx, "push failed, will retry", "kind", kind, "id", id, "error", pushErr)
		return
	}
	changed, err := mark()
	if err != nil {
		s.logger.Warn(ctx, "could not persist synced flag", "kind", kind, "id", id, "error", err)
	}
	if changed {
		r.Pushed++
	} else {
		r.Stale++
	}
}

// Pull fetches the remote snapshot and merges it into both collections. A
// failed fetch leaves local state untouched.
func (s *Syncer) Pull(ctx context.Context) PullReport {
	url, ok := s.endpoint(ctx)
	if !ok {
		return PullReport{}
	}
	if !s.pulling.CompareAndSwap(false, true) {
		return PullReport{}
	}
	defer s.pulling.Store(false)

	ctx = context.WithoutCancel(ctx)
	report := PullReport{Ran: true}

	snap, err := s.remote.Pull(ctx, url)
	if err != nil {
		s.setMode(ctx, ModeOffline)
		s.logger.Warn(ctx, "pull failed", "error", err)
		return report
	}
	s.setMode(ctx, ModeOnline)

	var jr merge.Result[models.Job]
	err = s.store.Jobs.Apply(ctx, func(cur []models.Job) []models.Job {
		jr = merge.Merge(cur, snap.Jobs, s.policy)
		return jr.Records
	})
	if err != nil {
		s.logger.Warn(ctx, "merged jobs not persisted", "error", err)
	}

	var er merge.Result[models.Expense]
	err = s.store.Expenses.Apply(ctx, func(cur []models.Expense) []models.Expense {
		er = merge.Merge(cur, snap.Expenses, s.policy)
		return er.Records
	})
	if err != nil {
		s.logger.Warn(ctx, "merged expenses not persisted", "error", err)
	}

	report.Applied = true
	report.Jobs = len(jr.Records)
	report.Expenses = len(er.Records)
	report.Carried = jr.Carried + er.Carried
	report.Dropped = jr.Dropped + er.Dropped
	s.logger.Info(ctx, "pull cycle finished",
		"jobs", report.Jobs, "expenses", report.Expenses,
		"carried", report.Carried, "dropped", report.Dropped,
		"superseded", jr.Superseded+er.Superseded, "policy", s.policy)
	return report
}

// Test probes the endpoint without touching local state.
func (s *Syncer) Test(ctx context.Context) bool {
	url, ok := s.endpoint(ctx)
	if !ok {
		return false
	}
	if err := s.remote.Test(ctx, url); err != nil {
		s.setMode(ctx, ModeOffline)
		s.logger.Warn(ctx, "connection test failed", "error", err)
		return false
	}
	s.setMode(ctx, ModeOnline)
	return true
}

// Schedule runs a push after delay. A newer schedule replaces one that has
// not fired yet.
func (s *Syncer) Schedule(delay time.Duration) {
	s.schedule(DirectionPush, delay, func(ctx context.Context) { s.Push(ctx) })
}

// SchedulePull runs a pull after delay.
func (s *Syncer) SchedulePull(delay time.Duration) {
	s.schedule(DirectionPull, delay, func(ctx context.Context) { s.Pull(ctx) })
}

func (s *Syncer) schedule(d Direction, delay time.Duration, run func(context.Context)) {
	s.timerMu.Lock()
	defer s.timerMu.Unlock()
	if s.closed {
		return
	}
	if t, ok := s.timers[d]; ok && t.Stop() {
		s.wg.Done()
	}
	s.wg.Add(1)
	s.timers[d] = time.AfterFunc(delay, func() {
		defer s.wg.Done()
		run(context.Background())
	})
}

// Run retries pending pushes every interval until ctx is done.
func (s *Syncer) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if s.store.PendingCount() > 0 {
				s.Push(ctx)
			} else {
				s.endpoint(ctx)
			}
		case <-ctx.Done():
			return
		}
	}
}

// Close cancels scheduled cycles that have not started and waits for
// running scheduled cycles to finish.
func (s *Syncer) Close() {
	s.timerMu.Lock()
	s.closed = true
	for d, t := range s.timers {
		if t.Stop() {
			s.wg.Done()
		}
		delete(s.timers, d)
	}
	s.timerMu.Unlock()
	s.wg.Wait()
}
