// Package services holds the use cases behind the terminal front end. Every
// write goes to the local store first and then asks the scheduler for a
// delayed sync; remote failures never reach the caller.
package services

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/contractorbook/internal/client/models"
	"github.com/dmitrijs2005/contractorbook/internal/client/store"
	"github.com/dmitrijs2005/contractorbook/internal/logging"
)

var (
	ErrForbidden      = errors.New("admin role required")
	ErrUnknownAccount = errors.New("unknown account")
	ErrNotSignedIn    = errors.New("not signed in")
)

// Scheduler is the part of the sync orchestrator the services trigger.
type Scheduler interface {
	Schedule(delay time.Duration)
	SchedulePull(delay time.Duration)
}

// Delays between a local write and the sync it triggers.
type Delays struct {
	Job     time.Duration
	Expense time.Duration
	Pull    time.Duration
}

func DefaultDelays() Delays {
	return Delays{
		Job:     500 * time.Millisecond,
		Expense: 1000 * time.Millisecond,
		Pull:    500 * time.Millisecond,
	}
}

func requireAdmin(s *store.Settings) error {
	if !s.CurrentUser().IsAdmin() {
		return ErrForbidden
	}
	return nil
}

// persisted drops ErrPersist: the record lives on in memory and the store
// has already logged the failure.
func persisted(err error) error {
	if errors.Is(err, store.ErrPersist) {
		return nil
	}
	return err
}

// SessionService signs one of the built-in accounts in and out.
type SessionService struct {
	settings *store.Settings
	logger   logging.Logger
}

func NewSessionService(st *store.Store, logger logging.Logger) *SessionService {
	return &SessionService{settings: st.Settings, logger: logger.With("service", "session")}
}

func (s *SessionService) Login(ctx context.Context, idOrEmail string) (models.User, error) {
	u, ok := models.FindAccount(idOrEmail)
	if !ok {
		return models.User{}, ErrUnknownAccount
	}
	if err := persisted(s.settings.SetUser(ctx, u)); err != nil {
		return models.User{}, err
	}
	s.logger.Info(ctx, "signed in", "user", u.ID, "role", u.Role)
	return u, nil
}

func (s *SessionService) Logout(ctx context.Context) error {
	if err := persisted(s.settings.ClearUser(ctx)); err != nil {
		return err
	}
	s.logger.Info(ctx, "signed out")
	return nil
}

// Current returns nil when nobody is signed in.
func (s *SessionService) Current() *models.User {
	return s.settings.CurrentUser()
}
