// Package remote talks to the spreadsheet webhook: it pushes jobs and
// flattened expense batches and pulls the whole sheet back as a snapshot.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/contractorbook/internal/client/models"
	"github.com/dmitrijs2005/contractorbook/internal/logging"
)

// PushMode selects what counts as a delivered push.
type PushMode string

const (
	// PushConfirmed requires a 2xx status and a body that does not start
	// with "Error".
	PushConfirmed PushMode = "confirmed"
	// PushDispatch only requires the request to leave without a transport
	// error.
	PushDispatch PushMode = "dispatch"
)

func ParsePushMode(s string) (PushMode, error) {
	switch m := PushMode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return PushConfirmed, nil
	case PushConfirmed, PushDispatch:
		return m, nil
	}
	return "", fmt.Errorf("unknown push mode %q", s)
}

const (
	DefaultTimeout = 30 * time.Second
	maxBodySize    = 32 << 20
)

type Client struct {
	http   *http.Client
	mode   PushMode
	now    func() time.Time
	logger logging.Logger
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.http = h } }
func WithPushMode(m PushMode) Option      { return func(c *Client) { c.mode = m } }
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

func New(logger logging.Logger, opts ...Option) *Client {
	c := &Client{
		http:   &http.Client{Timeout: DefaultTimeout},
		mode:   PushConfirmed,
		now:    time.Now,
		logger: logger.With("component", "remote"),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) PushJob(ctx context.Context, endpoint string, j models.Job) error {
	return c.post(ctx, endpoint, KindJob, newJobPayload(j, c.now()))
}

// PushExpense sends the expense as one batch; jobs is only used to resolve
// job names.
func (c *Client) PushExpense(ctx context.Context, endpoint string, e models.Expense, jobs []models.Job) error {
	return c.post(ctx, endpoint, KindExpenseBatch, expenseBatchPayload{
		Type:      KindExpenseBatch,
		ReceiptID: e.ID,
		Entries:   Flatten(e, jobs, c.now()),
	})
}

// Test sends the connectivity probe.
func (c *Client) Test(ctx context.Context, endpoint string) error {
	return c.post(ctx, endpoint, KindTest, testPayload{Type: KindTest})
}

func (c *Client) post(ctx context.Context, endpoint string, kind Kind, payload any) error {
	url, err := ValidateEndpoint(endpoint)
	if err != nil {
		return err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", kind, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build %s request: %w", kind, err)
	}
	req.Header.Set("Content-Type", "text/plain;charset=utf-8")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("push %s: %w", kind, err)
	}
	defer resp.Body.Close()

	if c.mode == PushDispatch {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
		return nil
	}

	reply, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %s answered %d", ErrPushRejected, kind, resp.StatusCode)
	}
	if text := strings.TrimSpace(string(reply)); strings.HasPrefix(text, "Error") {
		return fmt.Errorf("%w: %s", ErrPushRejected, text)
	}

	c.logger.Debug(ctx, "push delivered", "kind", kind, "status", resp.StatusCode)
	return nil
}

// Pull fetches the whole sheet. Any failure to get a well-formed object
// back is an error; the snapshot is never partial.
func (c *Client) Pull(ctx context.Context, endpoint string) (*Snapshot, error) {
	url, err := ValidateEndpoint(endpoint)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build pull request: %w", err)
	}
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pull: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d", ErrMalformedResponse, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("pull: read body: %w", err)
	}

	snap, err := decodeSnapshot(body, c.now())
	if err != nil {
		return nil, err
	}
	c.logger.Debug(ctx, "pull decoded", "jobs", len(snap.Jobs), "expenses", len(snap.Expenses))
	return snap, nil
}
