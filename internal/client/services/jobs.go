package services

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/contractorbook/internal/client/models"
	"github.com/dmitrijs2005/contractorbook/internal/client/store"
	"github.com/dmitrijs2005/contractorbook/internal/logging"
)

// JobService manages jobs. Only an admin may change them.
type JobService struct {
	store  *store.Store
	sched  Scheduler
	delay  Delays
	logger logging.Logger
}

func NewJobService(st *store.Store, sched Scheduler, delays Delays, logger logging.Logger) *JobService {
	return &JobService{store: st, sched: sched, delay: delays, logger: logger.With("service", "jobs")}
}

func (s *JobService) List() []models.Job {
	return s.store.Jobs.All()
}

// Active lists the jobs expenses can still be charged to.
func (s *JobService) Active() []models.Job {
	var out []models.Job
	for _, j := range s.store.Jobs.All() {
		if j.IsActive() {
			out = append(out, j)
		}
	}
	return out
}

func (s *JobService) Get(id string) (models.Job, bool) {
	return s.store.Jobs.Get(id)
}

// Save creates a job, assigning an id when it has none.
func (s *JobService) Save(ctx context.Context, j models.Job) (models.Job, error) {
	if j.ID == "" {
		j.ID = models.NewJobID()
	}
	return s.write(ctx, j)
}

// Update replaces an existing job, keeping its id.
func (s *JobService) Update(ctx context.Context, j models.Job) (models.Job, error) {
	if _, ok := s.store.Jobs.Get(j.ID); !ok {
		return models.Job{}, store.ErrNotFound
	}
	return s.write(ctx, j)
}

func (s *JobService) write(ctx context.Context, j models.Job) (models.Job, error) {
	if err := requireAdmin(s.store.Settings); err != nil {
		return models.Job{}, err
	}
	j.Name = strings.TrimSpace(j.Name)
	if j.Status == "" {
		j.Status = models.JobStatusActive
	}
	if err := j.Validate(); err != nil {
		return models.Job{}, err
	}

	j = j.WithSynced(false)
	if err := persisted(s.store.Jobs.Upsert(ctx, j)); err != nil {
		return models.Job{}, err
	}
	s.sched.Schedule(s.delay.Job)
	return j, nil
}

// Delete removes the job locally. The remote copy is left alone.
func (s *JobService) Delete(ctx context.Context, id string) error {
	if err := requireAdmin(s.store.Settings); err != nil {
		return err
	}
	return persisted(s.store.Jobs.Remove(ctx, id))
}
