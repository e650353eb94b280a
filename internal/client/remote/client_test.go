package remote

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/contractorbook/internal/client/models"
	"github.com/dmitrijs2005/contractorbook/internal/logging"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const execPath = "/macros/s/deploy-1/exec"

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func newClient(opts ...Option) *Client {
	return New(logging.Discard(), append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)...)
}

type captured struct {
	method      string
	contentType string
	body        []byte
}

func recordingServer(t *testing.T, status int, reply string, calls *int32, last *captured) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		b, _ := io.ReadAll(r.Body)
		if last != nil {
			*last = captured{method: r.Method, contentType: r.Header.Get("Content-Type"), body: b}
		}
		w.WriteHeader(status)
		_, _ = io.WriteString(w, reply)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestValidateEndpoint(t *testing.T) {
	tests := []struct {
		in string
		ok bool
	}{
		{"https://script.google.com/macros/s/AKfy123/exec", true},
		{"  https://script.google.com/macros/s/AKfy123/exec\n", true},
		{"https://script.google.com/macros/s/AKfy123/dev", true},
		{"https://script.google.com/a/example.com/macros/s/AKfy123/exec", true},
		{"http://127.0.0.1:8080/macros/s/local/exec", true},
		{"", false},
		{"   ", false},
		{"https://docs.google.com/spreadsheets/d/xyz/edit", false},
		{"https://script.google.com/macros/s//exec", false},
		{"https://script.google.com/macros/s/AKfy123/edit", false},
		{"ftp://script.google.com/macros/s/AKfy123/exec", false},
		{"script.google.com/macros/s/AKfy123/exec", false},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			_, err := ValidateEndpoint(tc.in)
			if tc.ok {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, ErrInvalidEndpoint)
			}
			assert.Equal(t, tc.ok, IsValidEndpoint(tc.in))
		})
	}
}

func TestInvalidEndpoint_NoRequestIsMade(t *testing.T) {
	var calls int32
	srv := recordingServer(t, 200, "Success", &calls, nil)
	c := newClient()
	ctx := context.Background()

	require.ErrorIs(t, c.PushJob(ctx, srv.URL+"/not/a/webapp", models.Job{ID: "j"}), ErrInvalidEndpoint)
	_, err := c.Pull(ctx, "")
	require.ErrorIs(t, err, ErrInvalidEndpoint)
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestPushJob_Payload(t *testing.T) {
	var calls int32
	var last captured
	srv := recordingServer(t, 200, "Success", &calls, &last)
	c := newClient()

	j := models.Job{
		ID: "job-7", Name: "Deck", Client: "Bob", Address: "1 Main", ContactName: "Bob B",
		Phone: "555", Email: "b@x.io", Status: models.JobStatusPending,
		Budget: decimal.RequireFromString("1500"),
	}
	require.NoError(t, c.PushJob(context.Background(), srv.URL+execPath, j))

	assert.Equal(t, http.MethodPost, last.method)
	assert.Equal(t, "text/plain;charset=utf-8", last.contentType)
	assert.JSONEq(t, `{
		"type":"job","id":"job-7","name":"Deck","client":"Bob","address":"1 Main",
		"contactName":"Bob B","phone":"555","email":"b@x.io","status":"pending",
		"budget":1500.00,"syncTimestamp":"2024-06-01T12:00:00Z"
	}`, string(last.body))
}

func TestPushExpense_FlattensItems(t *testing.T) {
	var calls int32
	var last captured
	srv := recordingServer(t, 200, "Success", &calls, &last)
	c := newClient()

	jobs := []models.Job{{ID: "job-1", Name: "Living Room"}, {ID: "job-2", Name: "Kitchen"}}
	e := models.Expense{
		ID:           "abc",
		MerchantName: "Depot",
		Category:     "Materials",
		Notes:        "n",
		JobID:        "job-1",
		Timestamp:    time.Date(2024, 5, 3, 9, 0, 0, 0, time.Local).UnixMilli(),
		Items: []models.LineItem{
			{Description: "Lumber", Amount: decimal.RequireFromString("30")},
			{Description: "Tile", Amount: decimal.RequireFromString("15.5"), JobID: "job-2"},
			{Description: "Misc", Amount: decimal.RequireFromString("1"), JobID: "job-9"},
		},
	}
	require.NoError(t, c.PushExpense(context.Background(), srv.URL+execPath, e, jobs))

	var got expenseBatchPayload
	require.NoError(t, json.Unmarshal(last.body, &got))
	assert.Equal(t, KindExpenseBatch, got.Type)
	assert.Equal(t, "abc", got.ReceiptID)
	require.Len(t, got.Entries, 3)

	assert.Equal(t, "abc_0", got.Entries[0].ID)
	assert.Equal(t, "job-1", got.Entries[0].JobID)
	assert.Equal(t, "Living Room", got.Entries[0].JobName)
	assert.Equal(t, json.Number("30.00"), got.Entries[0].Amount)

	assert.Equal(t, "abc_1", got.Entries[1].ID)
	assert.Equal(t, "job-2", got.Entries[1].JobID)
	assert.Equal(t, "Kitchen", got.Entries[1].JobName)

	assert.Equal(t, "Default", got.Entries[2].JobName)

	for _, en := range got.Entries {
		assert.Equal(t, "abc", en.ReceiptID)
		assert.Equal(t, "2024-05-03", en.Date)
		assert.Equal(t, "Depot", en.MerchantName)
		assert.Equal(t, "2024-06-01T12:00:00Z", en.SyncTimestamp)
	}
}

func TestFlatten_UsesRecordDateWhenSet(t *testing.T) {
	e := models.Expense{ID: "x", Date: "03/04/2024", Items: []models.LineItem{{Description: "a"}}}
	entries := Flatten(e, nil, fixedNow)
	require.Len(t, entries, 1)
	assert.Equal(t, "03/04/2024", entries[0].Date)
	assert.Equal(t, "", entries[0].JobID)
}

func TestFlatten_NoItemsSendsTotal(t *testing.T) {
	e := models.Expense{ID: "x", JobID: "job-1", TotalAmount: decimal.RequireFromString("45")}
	entries := Flatten(e, nil, fixedNow)
	require.Len(t, entries, 1)
	assert.Equal(t, "x_0", entries[0].ID)
	assert.Equal(t, "General Item", entries[0].Description)
	assert.Equal(t, "45.00", entries[0].Amount.String())
	assert.Equal(t, "job-1", entries[0].JobID)
	assert.Equal(t, "Default", entries[0].JobName)
}

func TestTest_SendsProbe(t *testing.T) {
	var calls int32
	var last captured
	srv := recordingServer(t, 200, "Success", &calls, &last)

	require.NoError(t, newClient().Test(context.Background(), srv.URL+execPath))
	assert.JSONEq(t, `{"type":"test"}`, string(last.body))
}

func TestPush_ConfirmedModeRejections(t *testing.T) {
	ctx := context.Background()

	var calls int32
	srv := recordingServer(t, 500, "boom", &calls, nil)
	require.ErrorIs(t, newClient().Test(ctx, srv.URL+execPath), ErrPushRejected)

	srv = recordingServer(t, 200, "Error: Sheet missing", &calls, nil)
	err := newClient().Test(ctx, srv.URL+execPath)
	require.ErrorIs(t, err, ErrPushRejected)
	assert.Contains(t, err.Error(), "Sheet missing")
}

func TestPush_DispatchModeIgnoresReply(t *testing.T) {
	var calls int32
	srv := recordingServer(t, 500, "Error: nope", &calls, nil)

	c := newClient(WithPushMode(PushDispatch))
	require.NoError(t, c.Test(context.Background(), srv.URL+execPath))
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestPush_TransportErrorAndTimeout(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL + execPath
	srv.Close()
	require.Error(t, newClient().Test(context.Background(), url))

	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(slow.Close)

	c := newClient(WithTimeout(50 * time.Millisecond))
	start := time.Now()
	require.Error(t, c.Test(context.Background(), slow.URL+execPath))
	assert.Less(t, time.Since(start), time.Second)
}

func TestParsePushMode(t *testing.T) {
	m, err := ParsePushMode("")
	require.NoError(t, err)
	assert.Equal(t, PushConfirmed, m)

	m, err = ParsePushMode("Dispatch")
	require.NoError(t, err)
	assert.Equal(t, PushDispatch, m)

	_, err = ParsePushMode("fire-and-forget")
	require.Error(t, err)
}
