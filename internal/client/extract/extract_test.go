package extract

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/dmitrijs2005/contractorbook/internal/client/models"
	"github.com/dmitrijs2005/contractorbook/internal/logging"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pngHeader is enough for http.DetectContentType to answer image/png.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func hints() Hints {
	return Hints{Categories: models.DefaultCategories(), Jobs: models.SeedJobs()}
}

func TestParse_FencedAnswer(t *testing.T) {
	answer := "```json\n" + `{
		"merchantName":" Home Depot ","date":"2024-05-03","totalAmount":45.5,"taxAmount":3.2,
		"currency":"$","category":"materials","notes":"deck job",
		"suggestedJobId":"job-2",
		"items":[{"description":"Lumber","amount":40},{"description":"Screws","amount":5.5}]
	}` + "\n```"

	r, err := Parse(answer, hints())
	require.NoError(t, err)
	assert.Equal(t, "Home Depot", r.MerchantName)
	assert.Equal(t, "Materials", r.Category)
	assert.Equal(t, "job-2", r.SuggestedJobID)
	assert.True(t, r.TotalAmount.Equal(decimal.RequireFromString("45.5")))
	require.Len(t, r.Items, 2)
	assert.True(t, r.Items[1].Amount.Equal(decimal.RequireFromString("5.5")))
}

func TestParse_UnknownCategoryAndJob(t *testing.T) {
	r, err := Parse(`{"merchantName":"Cafe","totalAmount":4,"category":"Snacks","suggestedJobId":"job-404"}`, hints())
	require.NoError(t, err)
	assert.Equal(t, models.CategoryOther, r.Category)
	assert.Empty(t, r.SuggestedJobID)
}

func TestParse_Failures(t *testing.T) {
	for _, in := range []string{"", "I cannot read this receipt.", `{"merchantName":""}`, `{"totalAmount":"abc"}`} {
		_, err := Parse(in, hints())
		require.ErrorIs(t, err, ErrExtract, "input %q", in)
	}
}

func TestNewAnthropicExtractor_RequiresKey(t *testing.T) {
	_, err := NewAnthropicExtractor(Config{}, logging.Discard())
	require.ErrorIs(t, err, ErrExtract)
}

func TestExtract_CallsMessagesAPI(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))

		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "test-model", body["model"])

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":    "msg_1",
			"type":  "message",
			"role":  "assistant",
			"model": "test-model",
			"content": []map[string]any{{
				"type": "text",
				"text": `{"merchantName":"Depot","totalAmount":12,"category":"Tools","items":[{"description":"Drill bit","amount":12}]}`,
			}},
			"stop_reason": "end_turn",
			"usage":       map[string]any{"input_tokens": 10, "output_tokens": 20},
		})
	}))
	t.Cleanup(srv.Close)

	x, err := NewAnthropicExtractor(Config{APIKey: "test-key", Model: "test-model", BaseURL: srv.URL}, logging.Discard())
	require.NoError(t, err)

	r, err := x.Extract(context.Background(), pngHeader, hints())
	require.NoError(t, err)
	assert.Equal(t, "Depot", r.MerchantName)
	assert.Equal(t, "Tools", r.Category)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestExtract_RejectsNonImage(t *testing.T) {
	x, err := NewAnthropicExtractor(Config{APIKey: "k", BaseURL: "http://127.0.0.1:1"}, logging.Discard())
	require.NoError(t, err)

	_, err = x.Extract(context.Background(), []byte("plain text"), hints())
	require.ErrorIs(t, err, ErrExtract)

	_, err = x.Extract(context.Background(), nil, hints())
	require.ErrorIs(t, err, ErrExtract)
}

func TestExtract_APIErrorIsWrapped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"invalid_request_error","message":"bad image"}}`))
	}))
	t.Cleanup(srv.Close)

	x, err := NewAnthropicExtractor(Config{APIKey: "k", BaseURL: srv.URL}, logging.Discard())
	require.NoError(t, err)

	_, err = x.Extract(context.Background(), pngHeader, hints())
	require.ErrorIs(t, err, ErrExtract)
}
