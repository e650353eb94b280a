package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// JobStatus is the lifecycle state of a job site.
type JobStatus string

const (
	JobStatusActive    JobStatus = "active"
	JobStatusCompleted JobStatus = "completed"
	JobStatusPending   JobStatus = "pending"
)

func (s JobStatus) Valid() bool {
	switch s {
	case JobStatusActive, JobStatusCompleted, JobStatusPending:
		return true
	}
	return false
}

// ParseJobStatus accepts any casing; empty input means active.
func ParseJobStatus(s string) (JobStatus, error) {
	st := JobStatus(strings.ToLower(strings.TrimSpace(s)))
	if st == "" {
		return JobStatusActive, nil
	}
	if !st.Valid() {
		return "", fmt.Errorf("unknown job status %q", s)
	}
	return st, nil
}

var (
	ErrJobNameRequired = errors.New("job name is required")
	ErrNegativeBudget  = errors.New("budget must not be negative")
)

// Job is a client project that expenses are charged against.
type Job struct {
	ID          string
	Name        string
	Client      string
	Address     string
	ContactName string
	Phone       string
	Email       string
	Status      JobStatus
	Budget      decimal.Decimal
	IsSynced    bool
}

func (j Job) Key() string    { return j.ID }
func (j Job) Synced() bool   { return j.IsSynced }
func (j Job) IsActive() bool { return j.Status == JobStatusActive }

func (j Job) WithSynced(synced bool) Job {
	j.IsSynced = synced
	return j
}

func (j Job) Validate() error {
	if strings.TrimSpace(j.Name) == "" {
		return ErrJobNameRequired
	}
	if j.Budget.IsNegative() {
		return ErrNegativeBudget
	}
	if !j.Status.Valid() {
		return fmt.Errorf("unknown job status %q", j.Status)
	}
	return nil
}

// NewJobID returns a fresh job identifier.
func NewJobID() string {
	return "job-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// SeedJobs are the sample jobs a fresh installation starts with.
func SeedJobs() []Job {
	return []Job{
		{
			ID:          "job-1",
			Name:        "Living Room Remodel",
			Client:      "John Smith",
			Address:     "123 Oak St, Springfield",
			ContactName: "John Smith",
			Phone:       "555-0101",
			Email:       "john@example.com",
			Status:      JobStatusActive,
			Budget:      decimal.NewFromInt(5000),
		},
		{
			ID:          "job-2",
			Name:        "Kitchen Renovation",
			Client:      "Alice Johnson",
			Address:     "456 Maple Ave, Riverside",
			ContactName: "Alice Johnson",
			Phone:       "555-0102",
			Email:       "alice@example.com",
			Status:      JobStatusActive,
			Budget:      decimal.NewFromInt(15000),
		},
	}
}

// JobName looks the job up by id, returning def when it is unknown.
func JobName(jobs []Job, id, def string) string {
	for _, j := range jobs {
		if j.ID == id {
			return j.Name
		}
	}
	return def
}
