package store

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/contractorbook/internal/client/models"
	"github.com/dmitrijs2005/contractorbook/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/contractorbook/internal/logging"
)

// Settings caches the metadata keys of the book in memory. Getters never
// fail; setters update memory first and then persist.
type Settings struct {
	repo   metadata.Repository
	logger logging.Logger

	mu         sync.RWMutex
	user       *models.User
	categories []string
	profile    models.ContractorProfile
	endpoint   string
	seeded     bool
}

func NewSettings(repo metadata.Repository, logger logging.Logger) *Settings {
	return &Settings{
		repo:       repo,
		logger:     logger.With("collection", "settings"),
		categories: models.DefaultCategories(),
		profile:    models.DefaultProfile(),
	}
}

// Load reads every key, falling back to the built-in default for keys that
// are absent or unreadable.
func (s *Settings) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var u models.User
	if ok := s.load(ctx, metadata.KeyUser, &u); ok {
		s.user = &u
	}

	var cats []string
	if ok := s.load(ctx, metadata.KeyCategories, &cats); ok && len(cats) > 0 {
		s.categories = cats
	}

	var p models.ContractorProfile
	if ok := s.load(ctx, metadata.KeyProfile, &p); ok {
		s.profile = p
	}

	var endpoint string
	if ok := s.load(ctx, metadata.KeyEndpointURL, &endpoint); ok {
		s.endpoint = endpoint
	}

	var seeded bool
	if ok := s.load(ctx, metadata.KeyJobsSeeded, &seeded); ok {
		s.seeded = seeded
	}
}

func (s *Settings) load(ctx context.Context, key string, v any) bool {
	ok, err := metadata.GetJSON(ctx, s.repo, key, v)
	if err != nil {
		s.logger.Warn(ctx, "setting unreadable, using default", "key", key, "error", err)
		return false
	}
	return ok
}

func (s *Settings) save(ctx context.Context, key string, v any) error {
	if err := metadata.SetJSON(ctx, s.repo, key, v); err != nil {
		s.logger.Warn(ctx, "write-through failed", "key", key, "error", err)
		return fmt.Errorf("save %s: %w: %w", key, ErrPersist, err)
	}
	return nil
}

// CurrentUser returns nil when nobody is signed in.
func (s *Settings) CurrentUser() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *Settings) SetUser(ctx context.Context, u models.User) error {
	s.mu.Lock()
	s.user = &u
	s.mu.Unlock()
	return s.save(ctx, metadata.KeyUser, u)
}

func (s *Settings) ClearUser(ctx context.Context) error {
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()
	if err := s.repo.Delete(ctx, metadata.KeyUser); err != nil {
		s.logger.Warn(ctx, "write-through failed", "key", metadata.KeyUser, "error", err)
		return fmt.Errorf("clear user: %w: %w", ErrPersist, err)
	}
	return nil
}

func (s *Settings) Categories() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.categories...)
}

// SetCategories stores the trimmed, de-duplicated list. "Other" is always kept
// as the fallback category.
func (s *Settings) SetCategories(ctx context.Context, cats []string) error {
	seen := make(map[string]struct{}, len(cats))
	clean := make([]string, 0, len(cats)+1)
	for _, c := range cats {
		c = strings.TrimSpace(c)
		key := strings.ToLower(c)
		if c == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		clean = append(clean, c)
	}
	if _, ok := seen[strings.ToLower(models.CategoryOther)]; !ok {
		clean = append(clean, models.CategoryOther)
	}

	s.mu.Lock()
	s.categories = clean
	s.mu.Unlock()
	return s.save(ctx, metadata.KeyCategories, clean)
}

func (s *Settings) Profile() models.ContractorProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile
}

func (s *Settings) SetProfile(ctx context.Context, p models.ContractorProfile) error {
	s.mu.Lock()
	s.profile = p
	s.mu.Unlock()
	return s.save(ctx, metadata.KeyProfile, p)
}

// EndpointURL returns the stored webhook URL as typed by the user.
func (s *Settings) EndpointURL() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.endpoint
}

func (s *Settings) SetEndpointURL(ctx context.Context, url string) error {
	url = strings.TrimSpace(url)
	s.mu.Lock()
	s.endpoint = url
	s.mu.Unlock()
	return s.save(ctx, metadata.KeyEndpointURL, url)
}

func (s *Settings) jobsSeeded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.seeded
}

func (s *Settings) markJobsSeeded(ctx context.Context) error {
	s.mu.Lock()
	s.seeded = true
	s.mu.Unlock()
	return s.save(ctx, metadata.KeyJobsSeeded, true)
}
