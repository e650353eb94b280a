package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/dmitrijs2005/contractorbook/internal/client/config"
	"github.com/dmitrijs2005/contractorbook/internal/client/database"
	"github.com/dmitrijs2005/contractorbook/internal/client/extract"
	"github.com/dmitrijs2005/contractorbook/internal/client/images"
	"github.com/dmitrijs2005/contractorbook/internal/client/inbox"
	"github.com/dmitrijs2005/contractorbook/internal/client/merge"
	"github.com/dmitrijs2005/contractorbook/internal/client/remote"
	"github.com/dmitrijs2005/contractorbook/internal/client/services"
	"github.com/dmitrijs2005/contractorbook/internal/client/store"
	"github.com/dmitrijs2005/contractorbook/internal/client/syncer"
	"github.com/dmitrijs2005/contractorbook/internal/logging"
)

// syncService is the part of the orchestrator the REPL drives directly.
type syncService interface {
	Push(ctx context.Context) syncer.PushReport
	Pull(ctx context.Context) syncer.PullReport
	Test(ctx context.Context) bool
	Mode() syncer.Mode
	State(d syncer.Direction) syncer.State
	PendingCount() int
}

type App struct {
	cfg      *config.Config
	session  *services.SessionService
	jobs     *services.JobService
	expenses *services.ExpenseService
	settings *services.SettingsService
	sync     syncService
	images   images.Store

	reader *bufio.Reader
	out    io.Writer
	logger logging.Logger

	background []func(ctx context.Context)
	closers    []func() error
}

// NewApp opens the local book and wires every component described by c.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger, logCloser, err := logging.NewFileLogger(logging.FileOptions{
		Path:       c.LogFile,
		Level:      c.LogLevel,
		MaxSizeMB:  10,
		MaxBackups: 3,
		MaxAgeDays: 28,
	})
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}

	a := &App{
		cfg:     c,
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
		logger:  logger,
		closers: []func() error{logCloser.Close},
	}
	if err := a.wire(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) wire(ctx context.Context) error {
	c := a.cfg

	repos, err := database.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	a.closers = append(a.closers, repos.Close)

	st, err := store.Open(ctx, repos, a.logger)
	if err != nil {
		return err
	}
	if st.Settings.EndpointURL() == "" && c.EndpointURL != "" {
		_ = st.Settings.SetEndpointURL(ctx, c.EndpointURL)
	}

	mode, _ := remote.ParsePushMode(c.PushMode)
	policy, _ := merge.ParsePolicy(c.MergePolicy)

	rc := remote.New(a.logger, remote.WithPushMode(mode), remote.WithTimeout(c.HTTPTimeout))
	sy := syncer.New(st, rc, a.logger, syncer.WithPolicy(policy))
	a.sync = sy
	a.closers = append(a.closers, func() error { sy.Close(); return nil })
	a.background = append(a.background, func(ctx context.Context) { sy.Run(ctx, c.SyncInterval) })

	delays := services.Delays{Job: c.JobSyncDelay, Expense: c.ExpenseSyncDelay, Pull: c.PullDelay}

	var opts []services.ExpenseOption
	if c.AnthropicAPIKey != "" {
		x, err := extract.NewAnthropicExtractor(extract.Config{
			APIKey:  c.AnthropicAPIKey,
			Model:   c.AnthropicModel,
			Timeout: extract.DefaultTimeout,
		}, a.logger)
		if err != nil {
			return err
		}
		opts = append(opts, services.WithExtractor(x))
	} else {
		a.logger.Info(ctx, "receipt scanning disabled", "reason", "no "+config.EnvAnthropicAPIKey)
	}

	if a.images, err = openImageStore(ctx, c); err != nil {
		return err
	}
	opts = append(opts, services.WithImageStore(a.images))

	a.session = services.NewSessionService(st, a.logger)
	a.jobs = services.NewJobService(st, sy, delays, a.logger)
	a.expenses = services.NewExpenseService(st, sy, delays, a.logger, opts...)
	a.settings = services.NewSettingsService(st, sy, delays, a.logger)

	if c.InboxDir != "" {
		w, err := inbox.New(c.InboxDir, func(ctx context.Context, path string) error {
			e, err := a.expenses.ImportReceipt(ctx, path)
			if err != nil {
				return err
			}
			a.logger.Info(ctx, "receipt imported", "expense", e.ID, "merchant", e.MerchantName)
			return nil
		}, a.logger)
		if err != nil {
			return err
		}
		a.background = append(a.background, func(ctx context.Context) { _ = w.Run(ctx) })
	}
	return nil
}

func openImageStore(ctx context.Context, c *config.Config) (images.Store, error) {
	if c.S3Bucket != "" {
		return images.NewS3Store(ctx, images.S3Config{
			Bucket:       c.S3Bucket,
			Region:       c.S3Region,
			BaseEndpoint: c.S3Endpoint,
			AccessKey:    c.S3AccessKey,
			SecretKey:    c.S3SecretKey,
		})
	}
	return images.NewLocalStore(c.ImageDir)
}

// Run starts the background workers and the REPL, and shuts everything down
// when the user exits or ctx is cancelled.
func (a *App) Run(ctx context.Context) {
	defer func() { _ = a.Close() }()

	bg, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	for _, fn := range a.background {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn(bg)
		}()
	}

	printlnFn(fmt.Sprintf("%s %s (type 'help' for commands)",
		a.settings.Profile().LogoEmoji, a.settings.Profile().CompanyName))
	if a.session.Current() == nil {
		a.report(a.login(ctx, nil))
	}
	runREPL(ctx, a.commands(), a.status, a.reader)

	cancel()
	wg.Wait()
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) status() string {
	who := "signed out"
	if u := a.session.Current(); u != nil {
		who = fmt.Sprintf("%s/%s", u.Name, u.Role)
	}
	return fmt.Sprintf("%s | %s | %d pending", who, a.sync.Mode(), a.sync.PendingCount())
}

// report prints a command failure in user terms.
func (a *App) report(err error) {
	switch {
	case err == nil:
	case errors.Is(err, services.ErrForbidden):
		fmt.Fprintln(a.out, "Only an admin can do that.")
	case errors.Is(err, services.ErrNotSignedIn):
		fmt.Fprintln(a.out, "Sign in first (login).")
	case errors.Is(err, store.ErrNotFound):
		fmt.Fprintln(a.out, "No such record.")
	default:
		fmt.Fprintln(a.out, "Error:", err)
	}
}
