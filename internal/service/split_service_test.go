package service

import (
	"context"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ddublado/slush-bill-splitter/internal/calculator"
	"github.com/ddublado/slush-bill-splitter/internal/metrics"
	"github.com/ddublado/slush-bill-splitter/internal/models"
	"github.com/ddublado/slush-bill-splitter/internal/money"
)

// setupTestServer starts the full handler stack on an httptest server.
func setupTestServer(t *testing.T, opts ...Option) (*httptest.Server, *metrics.Recorder) {
	t.Helper()

	rec := metrics.New()
	svc := NewSplitService(rec, opts...)
	server := httptest.NewServer(NewHandler(svc, rec, "*"))
	t.Cleanup(server.Close)
	return server, rec
}

type apiResponse struct {
	Success    bool         `json:"success"`
	Message    string       `json:"message"`
	Difference *money.Cents `json:"difference"`
}

func post(t *testing.T, url, body string) (int, apiResponse) {
	t.Helper()

	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var out apiResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestValidateSplit_REST(t *testing.T) {
	server, _ := setupTestServer(t)
	url := server.URL + "/api/validate-split"

	tests := []struct {
		name        string
		body        string
		wantStatus  int
		wantSuccess bool
		wantDiff    *money.Cents
		wantMessage string
	}{
		{
			name:        "valid split",
			body:        `{"total": 125, "splits": {"Alice": 60, "Bob": 65}}`,
			wantStatus:  http.StatusOK,
			wantSuccess: true,
			wantDiff:    ptr(money.Cents(0)),
			wantMessage: "Split is valid.",
		},
		{
			name:        "imbalanced split reports difference",
			body:        `{"total": 125, "splits": {"Alice": 60, "Bob": 60}}`,
			wantStatus:  http.StatusOK,
			wantSuccess: false,
			wantDiff:    ptr(money.Cents(500)),
			wantMessage: "Split is invalid. Total is 125 but sum of splits is 120.00.",
		},
		{
			name:        "over-assigned split has negative difference",
			body:        `{"total": 10, "splits": {"Alice": 5, "Bob": 5.5}}`,
			wantStatus:  http.StatusOK,
			wantSuccess: false,
			wantDiff:    ptr(money.Cents(-50)),
		},
		{
			name:        "floating point precision",
			body:        `{"total": 100.00, "splits": {"Alice": 33.33, "Bob": 33.33, "Charlie": 33.34}}`,
			wantStatus:  http.StatusOK,
			wantSuccess: true,
			wantDiff:    ptr(money.Cents(0)),
		},
		{
			name:        "zero total is accepted",
			body:        `{"total": 0, "splits": {"Alice": 0}}`,
			wantStatus:  http.StatusOK,
			wantSuccess: true,
			wantDiff:    ptr(money.Cents(0)),
		},
		{
			name:        "negative values",
			body:        `{"total": 125, "splits": {"Alice": -60, "Bob": 185}}`,
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Negative values are not allowed.",
		},
		{
			name:        "negative total",
			body:        `{"total": -125, "splits": {"Alice": 60}}`,
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Negative values are not allowed.",
		},
		{
			name:        "empty splits",
			body:        `{"total": 125, "splits": {}}`,
			wantStatus:  http.StatusBadRequest,
			wantMessage: "At least one participant is required.",
		},
		{
			name:        "missing total",
			body:        `{"splits": {"Alice": 60}}`,
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Invalid input. Total must be a number and splits must be an object.",
		},
		{
			name:        "string total",
			body:        `{"total": "125", "splits": {"Alice": 125}}`,
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Invalid input. Total must be a number and splits must be an object.",
		},
		{
			name:        "splits is an array",
			body:        `{"total": 125, "splits": [125]}`,
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Invalid input. Total must be a number and splits must be an object.",
		},
		{
			name:        "invalid JSON",
			body:        `{"total": 125,`,
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Invalid input. Total must be a number and splits must be an object.",
		},
		{
			name:        "blank participant name",
			body:        `{"total": 10, "splits": {"": 10}}`,
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Participant names must not be empty.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, got := post(t, url, tt.body)

			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantSuccess, got.Success)
			if tt.wantMessage != "" {
				assert.Equal(t, tt.wantMessage, got.Message)
			}
			if tt.wantStatus == http.StatusBadRequest {
				assert.Nil(t, got.Difference, "error responses carry no difference")
			} else if tt.wantDiff != nil {
				require.NotNil(t, got.Difference)
				assert.Equal(t, *tt.wantDiff, *got.Difference)
			}
		})
	}
}

func TestValidateSplit_REST_DifferenceIsPlainNumber(t *testing.T) {
	server, _ := setupTestServer(t)

	resp, err := http.Post(server.URL+"/api/validate-split", "application/json",
		strings.NewReader(`{"total": 125, "splits": {"Alice": 60, "Bob": 60}}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"success": false, "message": "Split is invalid. Total is 125 but sum of splits is 120.00.", "difference": 5}`, string(body))
}

func TestValidateSplit_REST_MethodAndBodyLimits(t *testing.T) {
	server, _ := setupTestServer(t, WithMaxBodyBytes(64))

	resp, err := http.Get(server.URL + "/api/validate-split")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	big := `{"total": 125, "splits": {"Alice": 60, "Bob": 65, "Charlie": 0, "Dana": 0, "Eve": 0}}`
	status, got := post(t, server.URL+"/api/validate-split", big)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid input. Total must be a number and splits must be an object.", got.Message)
}

func TestValidateSplit_REST_OversizedNumbers(t *testing.T) {
	server, _ := setupTestServer(t)
	url := server.URL + "/api/validate-split"

	for _, body := range []string{
		`{"total":1e20000000,"splits":{"A":1}}`,
		`{"total":1e1000000,"splits":{"A":1}}`,
		`{"total":10,"splits":{"A":1e20000000}}`,
		`{"total":10,"splits":{"A":1e-20000000}}`,
		`{"total":123456789012345678,"splits":{"A":1}}`,
	} {
		start := time.Now()
		status, got := post(t, url, body)
		assert.Equal(t, http.StatusBadRequest, status, body)
		assert.False(t, got.Success, body)
		assert.Equal(t, "Invalid input. Total must be a number and splits must be an object.", got.Message, body)
		assert.Less(t, time.Since(start), 2*time.Second, body)
	}

	status, got := post(t, url, `{"total":12345678901234567,"splits":{"A":12345678901234567}}`)
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, got.Success)
}

func TestValidateSplit_REST_CORSAndRequestID(t *testing.T) {
	server, _ := setupTestServer(t)

	req, err := http.NewRequest(http.MethodOptions, server.URL+"/api/validate-split", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, resp.Header.Get("X-Request-Id"))
}

func TestEvenSplit_REST(t *testing.T) {
	server, _ := setupTestServer(t)

	resp, err := http.Post(server.URL+"/api/even-split", "application/json",
		strings.NewReader(`{"total": 10, "participants": ["Alice", "Bob", "Charlie"]}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"success": true,
		"amounts": [3.33, 3.33, 3.34],
		"shares": [
			{"name": "Alice", "amount": 3.33},
			{"name": "Bob", "amount": 3.33},
			{"name": "Charlie", "amount": 3.34}
		]
	}`, string(body))
}

func TestEvenSplit_REST_PolicyAndErrors(t *testing.T) {
	server, _ := setupTestServer(t, WithPolicy(calculator.PolicySpread))
	url := server.URL + "/api/even-split"

	resp, err := http.Post(url, "application/json", strings.NewReader(`{"total": 10, "count": 3}`))
	require.NoError(t, err)
	var got models.EvenSplitResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	resp.Body.Close()
	assert.Equal(t, []money.Cents{334, 333, 333}, got.Amounts, "server default policy applies")

	resp, err = http.Post(url, "application/json", strings.NewReader(`{"total": 10, "count": 3, "policy": "last"}`))
	require.NoError(t, err)
	got = models.EvenSplitResponse{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	resp.Body.Close()
	assert.Equal(t, []money.Cents{333, 333, 334}, got.Amounts, "request policy overrides default")

	for _, tc := range []struct{ body, wantMessage string }{
		{`{"total": 10, "count": 0}`, "Participant count must be between 1 and 10000."},
		{`{"total": -10, "count": 2}`, "Negative values are not allowed."},
		{`{"total": 10, "count": 1.5}`, "Invalid input. Total must be a number and splits must be an object."},
		{`{"total": 10, "count": 2, "policy": "shuffle"}`, "Invalid input. Total must be a number and splits must be an object."},
		{`{"total": 10, "count": 10001}`, "Participant count must be between 1 and 10000."},
		{`{"total": 10, "count": 2000000000}`, "Participant count must be between 1 and 10000."},
		{`{"total": 10, "count": 4611686018427387904}`, "Participant count must be between 1 and 10000."},
		{`{"total": 10, "count": 3, "participants": ["Alice", "Bob"]}`, "Invalid input. Total must be a number and splits must be an object."},
		{`{"total": 10, "participants": ["Alice", ""]}`, "Participant names must not be empty."},
		{`{"total": 1e20000000, "count": 2}`, "Invalid input. Total must be a number and splits must be an object."},
	} {
		body, wantMessage := tc.body, tc.wantMessage
		status, out := post(t, url, body)
		assert.Equal(t, http.StatusBadRequest, status, body)
		assert.False(t, out.Success, body)
		assert.Equal(t, wantMessage, out.Message, body)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	server, _ := setupTestServer(t)

	post(t, server.URL+"/api/validate-split", `{"total": 125, "splits": {"Alice": 60, "Bob": 65}}`)
	post(t, server.URL+"/api/validate-split", `{"total": 125, "splits": {"Alice": 60, "Bob": 60}}`)
	post(t, server.URL+"/api/validate-split", `{"total": 125, "splits": {}}`)

	resp, err := http.Get(server.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	text := string(body)
	assert.Contains(t, text, `slush_split_validations_total{outcome="balanced"} 1`)
	assert.Contains(t, text, `slush_split_validations_total{outcome="imbalanced"} 1`)
	assert.Contains(t, text, `slush_split_validations_total{outcome="rejected"} 1`)
	assert.Contains(t, text, `slush_http_requests_total{method="POST",route="POST /api/validate-split",status="400"} 1`)
}

func TestValidateSplit_Connect(t *testing.T) {
	server, _ := setupTestServer(t)
	client := NewSplitServiceClient(http.DefaultClient, server.URL)

	resp, err := client.ValidateSplit(context.Background(), connect.NewRequest(&models.SplitRequest{
		Total: decimal.NewFromInt(125),
		Splits: []models.Participant{
			{Name: "Alice", Amount: decimal.NewFromInt(60)},
			{Name: "Bob", Amount: decimal.NewFromInt(60)},
		},
	}))
	require.NoError(t, err)
	assert.False(t, resp.Msg.Success)
	assert.Equal(t, money.Cents(500), resp.Msg.Difference)

	resp, err = client.ValidateSplit(context.Background(), connect.NewRequest(&models.SplitRequest{
		Total: decimal.RequireFromString("100.00"),
		Splits: []models.Participant{
			{Name: "Alice", Amount: decimal.RequireFromString("33.33")},
			{Name: "Bob", Amount: decimal.RequireFromString("33.33")},
			{Name: "Charlie", Amount: decimal.RequireFromString("33.34")},
		},
	}))
	require.NoError(t, err)
	assert.True(t, resp.Msg.Success)
}

func TestValidateSplit_Connect_InputErrors(t *testing.T) {
	server, _ := setupTestServer(t)
	client := NewSplitServiceClient(http.DefaultClient, server.URL)

	_, err := client.ValidateSplit(context.Background(), connect.NewRequest(&models.SplitRequest{
		Total:  decimal.NewFromInt(125),
		Splits: []models.Participant{},
	}))
	require.Error(t, err)
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))
	assert.Contains(t, err.Error(), "At least one participant is required.")

	_, err = client.ValidateSplit(context.Background(), connect.NewRequest(&models.SplitRequest{
		Total:  decimal.NewFromInt(125),
		Splits: []models.Participant{{Name: "Alice", Amount: decimal.NewFromInt(-60)}},
	}))
	require.Error(t, err)
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))
}

func TestEvenSplit_Connect(t *testing.T) {
	server, _ := setupTestServer(t)
	client := NewSplitServiceClient(http.DefaultClient, server.URL)

	resp, err := client.EvenSplit(context.Background(), connect.NewRequest(&models.EvenSplitRequest{
		Total: decimal.NewFromInt(10),
		Count: 3,
	}))
	require.NoError(t, err)
	assert.True(t, resp.Msg.Success)
	assert.Equal(t, []money.Cents{333, 333, 334}, resp.Msg.Amounts)

	_, err = client.EvenSplit(context.Background(), connect.NewRequest(&models.EvenSplitRequest{
		Total: decimal.NewFromInt(10),
		Count: -1,
	}))
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))

	for _, count := range []int{calculator.MaxSlots + 1, math.MaxInt} {
		_, err = client.EvenSplit(context.Background(), connect.NewRequest(&models.EvenSplitRequest{
			Total: decimal.NewFromInt(10),
			Count: count,
		}))
		assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err), "count %d", count)
		assert.Contains(t, err.Error(), "Participant count must be between 1 and 10000.")
	}
}

func ptr[T any](v T) *T { return &v }
