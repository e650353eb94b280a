// Package extract reads structured receipt fields out of a photo using the
// Anthropic vision API.
package extract

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/dmitrijs2005/contractorbook/internal/client/models"
	"github.com/dmitrijs2005/contractorbook/internal/logging"
	"github.com/shopspring/decimal"
)

var ErrExtract = errors.New("receipt extraction failed")

const (
	DefaultModel   = "claude-sonnet-4-5"
	DefaultTimeout = 60 * time.Second
	maxTokens      = 1024
)

// Hints narrow what the model may answer with.
type Hints struct {
	Categories []string
	Jobs       []models.Job
}

type Extractor interface {
	Extract(ctx context.Context, image []byte, hints Hints) (models.ExtractedReceipt, error)
}

type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

type AnthropicExtractor struct {
	client  anthropic.Client
	model   string
	timeout time.Duration
	logger  logging.Logger
}

func NewAnthropicExtractor(cfg Config, logger logging.Logger) (*AnthropicExtractor, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("%w: no API key configured", ErrExtract)
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(1),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &AnthropicExtractor{
		client:  anthropic.NewClient(opts...),
		model:   cfg.Model,
		timeout: cfg.Timeout,
		logger:  logger.With("component", "extract"),
	}, nil
}

func (x *AnthropicExtractor) Extract(ctx context.Context, image []byte, hints Hints) (models.ExtractedReceipt, error) {
	if len(image) == 0 {
		return models.ExtractedReceipt{}, fmt.Errorf("%w: empty image", ErrExtract)
	}
	mediaType := http.DetectContentType(image)
	if !strings.HasPrefix(mediaType, "image/") {
		return models.ExtractedReceipt{}, fmt.Errorf("%w: unsupported content type %s", ErrExtract, mediaType)
	}

	ctx, cancel := context.WithTimeout(ctx, x.timeout)
	defer cancel()

	msg, err := x.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(x.model),
		MaxTokens: maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewImageBlockBase64(mediaType, base64.StdEncoding.EncodeToString(image)),
				anthropic.NewTextBlock(prompt(hints)),
			),
		},
	})
	if err != nil {
		return models.ExtractedReceipt{}, fmt.Errorf("%w: %w", ErrExtract, err)
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	r, err := Parse(text.String(), hints)
	if err != nil {
		return models.ExtractedReceipt{}, err
	}
	x.logger.Info(ctx, "receipt extracted", "merchant", r.MerchantName, "items", len(r.Items), "model", x.model)
	return r, nil
}

func prompt(h Hints) string {
	var b strings.Builder
	b.WriteString("Analyze this receipt image for bookkeeping. Extract the merchant name, date, ")
	b.WriteString("total amount, tax, currency symbol and the list of line items with their amounts.\n")
	fmt.Fprintf(&b, "Pick the most appropriate category from: %s.\n", strings.Join(h.Categories, ", "))
	b.WriteString("Put handwritten notes or project references in \"notes\".\n")
	if len(h.Jobs) > 0 {
		b.WriteString("If the receipt clearly belongs to one of these jobs, set \"suggestedJobId\" to its id:\n")
		for _, j := range h.Jobs {
			fmt.Fprintf(&b, "- %s: %s (%s, %s)\n", j.ID, j.Name, j.Client, j.Address)
		}
	}
	b.WriteString("Answer with a single JSON object and nothing else, shaped as ")
	b.WriteString(`{"merchantName":"","date":"YYYY-MM-DD","totalAmount":0,"taxAmount":0,"currency":"$",`)
	b.WriteString(`"category":"","notes":"","suggestedJobId":"","items":[{"description":"","amount":0}]}`)
	return b.String()
}

type wireReceipt struct {
	MerchantName   string          `json:"merchantName"`
	Date           string          `json:"date"`
	TotalAmount    decimal.Decimal `json:"totalAmount"`
	TaxAmount      decimal.Decimal `json:"taxAmount"`
	Currency       string          `json:"currency"`
	Category       string          `json:"category"`
	Notes          string          `json:"notes"`
	SuggestedJobID string          `json:"suggestedJobId"`
	Items          []struct {
		Description string          `json:"description"`
		Amount      decimal.Decimal `json:"amount"`
	} `json:"items"`
}

// Parse decodes the model's answer, tolerating a fenced code block around
// the JSON. The category is normalised onto hints.Categories and a suggested
// job that is not among hints.Jobs is dropped.
func Parse(text string, hints Hints) (models.ExtractedReceipt, error) {
	raw := strings.TrimSpace(text)
	if i := strings.Index(raw, "{"); i >= 0 {
		if j := strings.LastIndex(raw, "}"); j > i {
			raw = raw[i : j+1]
		}
	}

	var w wireReceipt
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	if err := dec.Decode(&w); err != nil {
		return models.ExtractedReceipt{}, fmt.Errorf("%w: unreadable answer: %w", ErrExtract, err)
	}
	if strings.TrimSpace(w.MerchantName) == "" && w.TotalAmount.IsZero() && len(w.Items) == 0 {
		return models.ExtractedReceipt{}, fmt.Errorf("%w: nothing recognised on the image", ErrExtract)
	}

	categories := hints.Categories
	if len(categories) == 0 {
		categories = models.DefaultCategories()
	}

	r := models.ExtractedReceipt{
		MerchantName: strings.TrimSpace(w.MerchantName),
		Date:         strings.TrimSpace(w.Date),
		TotalAmount:  w.TotalAmount.Round(2),
		TaxAmount:    w.TaxAmount.Round(2),
		Currency:     strings.TrimSpace(w.Currency),
		Category:     models.NormalizeCategory(w.Category, categories),
		Notes:        strings.TrimSpace(w.Notes),
	}
	for _, it := range w.Items {
		r.Items = append(r.Items, models.LineItem{Description: strings.TrimSpace(it.Description), Amount: it.Amount.Round(2)})
	}
	for _, j := range hints.Jobs {
		if j.ID == w.SuggestedJobID {
			r.SuggestedJobID = j.ID
			break
		}
	}
	return r, nil
}
