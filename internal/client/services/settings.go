package services

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/contractorbook/internal/client/models"
	"github.com/dmitrijs2005/contractorbook/internal/client/remote"
	"github.com/dmitrijs2005/contractorbook/internal/client/store"
	"github.com/dmitrijs2005/contractorbook/internal/logging"
)

type SettingsService struct {
	settings *store.Settings
	sched    Scheduler
	delay    Delays
	logger   logging.Logger
}

func NewSettingsService(st *store.Store, sched Scheduler, delays Delays, logger logging.Logger) *SettingsService {
	return &SettingsService{settings: st.Settings, sched: sched, delay: delays, logger: logger.With("service", "settings")}
}

func (s *SettingsService) EndpointURL() string { return s.settings.EndpointURL() }

// SetEndpointURL stores the webhook URL and pulls from it shortly after.
// An empty url turns syncing off.
func (s *SettingsService) SetEndpointURL(ctx context.Context, url string) error {
	if err := requireAdmin(s.settings); err != nil {
		return err
	}
	url = strings.TrimSpace(url)
	if url != "" {
		if _, err := remote.ValidateEndpoint(url); err != nil {
			return err
		}
	}
	if err := persisted(s.settings.SetEndpointURL(ctx, url)); err != nil {
		return err
	}
	if url != "" {
		s.sched.SchedulePull(s.delay.Pull)
	}
	return nil
}

func (s *SettingsService) Categories() []string { return s.settings.Categories() }

func (s *SettingsService) SetCategories(ctx context.Context, cats []string) error {
	if err := requireAdmin(s.settings); err != nil {
		return err
	}
	return persisted(s.settings.SetCategories(ctx, cats))
}

func (s *SettingsService) Profile() models.ContractorProfile { return s.settings.Profile() }

func (s *SettingsService) SetProfile(ctx context.Context, p models.ContractorProfile) error {
	if err := requireAdmin(s.settings); err != nil {
		return err
	}
	def := models.DefaultProfile()
	if p.CompanyName == "" {
		p.CompanyName = def.CompanyName
	}
	if p.LogoEmoji == "" {
		p.LogoEmoji = def.LogoEmoji
	}
	return persisted(s.settings.SetProfile(ctx, p))
}
