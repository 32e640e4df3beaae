package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/jonathan/headline-scorer/internal/scoring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// call sends a JSON API request and decodes the response into out (if non-nil)
func (b *browser) call(method, path, contentType, body string, out any) int {
	b.t.Helper()
	req, err := http.NewRequest(method, b.base+path, strings.NewReader(body))
	require.NoError(b.t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := b.client.Do(req)
	require.NoError(b.t, err)
	defer resp.Body.Close() //nolint:errcheck

	raw, err := io.ReadAll(resp.Body)
	require.NoError(b.t, err)
	if out != nil {
		require.NoError(b.t, json.Unmarshal(raw, out), string(raw))
	}
	return resp.StatusCode
}

func TestAPI_ListStartsEmpty(t *testing.T) {
	b := newBrowser(t, newTestServer(t, &fakeScorer{label: keywordLabel}))

	var resp ListResponse
	status := b.call(http.MethodGet, "/api/headlines", "", "", &resp)

	assert.Equal(t, http.StatusOK, status)
	assert.Empty(t, resp.Headlines)
	assert.Nil(t, resp.Result)
}

func TestAPI_Add(t *testing.T) {
	b := newBrowser(t, newTestServer(t, &fakeScorer{label: keywordLabel}))

	var resp ListResponse
	status := b.call(http.MethodPost, "/api/headlines", "application/json", `{"text":"  Stocks up  "}`, &resp)
	require.Equal(t, http.StatusOK, status)
	require.NotNil(t, resp.Added)
	assert.True(t, *resp.Added)
	assert.Equal(t, []string{"Stocks up"}, resp.Headlines)

	for _, blank := range []string{`{"text":""}`, `{"text":"   "}`} {
		resp = ListResponse{}
		status = b.call(http.MethodPost, "/api/headlines", "application/json", blank, &resp)
		assert.Equal(t, http.StatusOK, status, blank)
		require.NotNil(t, resp.Added, blank)
		assert.False(t, *resp.Added, blank)
		assert.Equal(t, []string{"Stocks up"}, resp.Headlines)
	}
}

func TestAPI_ImportBlankBlock(t *testing.T) {
	b := newBrowser(t, newTestServer(t, &fakeScorer{label: keywordLabel}))

	var resp ListResponse
	status := b.call(http.MethodPost, "/api/headlines/import", "application/json", `{"block":""}`, &resp)

	assert.Equal(t, http.StatusOK, status)
	require.NotNil(t, resp.Imported)
	assert.Equal(t, 0, *resp.Imported)

	var errResp map[string]string
	status = b.call(http.MethodPost, "/api/headlines/import", "application/json", `{}`, &errResp)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "validation error: block - required", errResp["error"])
}

func TestAPI_AddRejectsBadBodies(t *testing.T) {
	b := newBrowser(t, newTestServer(t, &fakeScorer{label: keywordLabel}))

	tests := []struct {
		name string
		body string
		want string
	}{
		{"malformed", `{"text":`, "invalid request body"},
		{"missing text", `{}`, "validation error: text - required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var resp map[string]string
			status := b.call(http.MethodPost, "/api/headlines", "application/json", tt.body, &resp)
			assert.Equal(t, http.StatusBadRequest, status)
			assert.Contains(t, resp["error"], tt.want)
		})
	}
}

func TestAPI_ImportEditRemoveClear(t *testing.T) {
	b := newBrowser(t, newTestServer(t, &fakeScorer{label: keywordLabel}))

	var resp ListResponse
	b.call(http.MethodPost, "/api/headlines/import", "application/json", `{"block":"A\nA\n\nB"}`, &resp)
	require.NotNil(t, resp.Imported)
	assert.Equal(t, 3, *resp.Imported)
	assert.Equal(t, []string{"A", "A", "B"}, resp.Headlines)

	resp = ListResponse{}
	b.call(http.MethodPut, "/api/headlines/1", "application/json", `{"text":"  edited "}`, &resp)
	require.NotNil(t, resp.Changed)
	assert.True(t, *resp.Changed)
	assert.Equal(t, []string{"A", "  edited ", "B"}, resp.Headlines, "edits are stored verbatim")

	resp = ListResponse{}
	b.call(http.MethodPut, "/api/headlines/7", "application/json", `{"text":"x"}`, &resp)
	assert.False(t, *resp.Changed)

	resp = ListResponse{}
	b.call(http.MethodDelete, "/api/headlines/0", "", "", &resp)
	assert.True(t, *resp.Changed)
	assert.Equal(t, []string{"  edited ", "B"}, resp.Headlines)

	resp = ListResponse{}
	b.call(http.MethodDelete, "/api/headlines/-1", "", "", &resp)
	assert.False(t, *resp.Changed)

	resp = ListResponse{}
	b.call(http.MethodDelete, "/api/headlines", "", "", &resp)
	assert.Empty(t, resp.Headlines)
}

func TestAPI_EditValidation(t *testing.T) {
	b := newBrowser(t, newTestServer(t, &fakeScorer{label: keywordLabel}))

	var resp map[string]string
	status := b.call(http.MethodPut, "/api/headlines/x", "application/json", `{"text":"a"}`, &resp)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, resp["error"], "invalid headline index")

	resp = nil
	status = b.call(http.MethodPut, "/api/headlines/0", "application/json", `{}`, &resp)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "validation error: text - required", resp["error"])
}

func TestAPI_Upload(t *testing.T) {
	b := newBrowser(t, newTestServer(t, &fakeScorer{label: keywordLabel}))
	b.call(http.MethodPost, "/api/headlines", "application/json", `{"text":"A"}`, nil)

	var resp ListResponse
	status := b.call(http.MethodPost, "/api/headlines/upload", "text/plain", "A\nB\nB\n", &resp)

	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 2, *resp.Imported)
	assert.Equal(t, []string{"A", "B", "B"}, resp.Headlines)
}

func TestAPI_UploadInvalidUTF8(t *testing.T) {
	b := newBrowser(t, newTestServer(t, &fakeScorer{label: keywordLabel}))

	var resp ErrorResponse
	status := b.call(http.MethodPost, "/api/headlines/upload", "text/plain", "\xff\xfe", &resp)

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, KindDecode, resp.Kind)

	var list ListResponse
	b.call(http.MethodGet, "/api/headlines", "", "", &list)
	assert.Empty(t, list.Headlines)
}

func TestAPI_UploadTooLarge(t *testing.T) {
	s := newTestServer(t, &fakeScorer{label: keywordLabel})
	s.maxUploadBytes = 8
	b := newBrowser(t, s)

	var resp map[string]string
	status := b.call(http.MethodPost, "/api/headlines/upload", "text/plain", "0123456789\n", &resp)

	assert.Equal(t, http.StatusRequestEntityTooLarge, status)
	assert.Contains(t, resp["error"], "8 bytes")
}

func TestAPI_Score(t *testing.T) {
	b := newBrowser(t, newTestServer(t, &fakeScorer{label: keywordLabel}))
	b.call(http.MethodPost, "/api/headlines/import", "application/json", `{"block":"good\nbad\ngood"}`, nil)

	var resp ScoreResponse
	status := b.call(http.MethodPost, "/api/score", "", "", &resp)

	require.Equal(t, http.StatusOK, status)
	require.Len(t, resp.Rows, 3)
	assert.Equal(t, scoring.Row{Headline: "bad", Label: "Pessimistic", Sentiment: scoring.SentimentNegative}, resp.Rows[1])
	assert.Equal(t, []scoring.SummaryRow{{Label: "Optimistic", Count: 2}, {Label: "Pessimistic", Count: 1}}, resp.Summary)

	var list ListResponse
	b.call(http.MethodGet, "/api/headlines", "", "", &list)
	require.NotNil(t, list.Result)
	assert.Len(t, list.Result.Rows, 3)
}

func TestAPI_ScoreErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		kind   string
	}{
		{"empty list", nil, http.StatusBadRequest, KindValidation},
		{"schema", &scoring.SchemaError{Message: "missing labels"}, http.StatusBadGateway, KindSchema},
		{"backend", &scoring.BackendError{StatusCode: 503, Body: "busy"}, http.StatusBadGateway, KindBackend},
		{"transport", &scoring.TransportError{Endpoint: testEndpoint, Cause: io.ErrUnexpectedEOF}, http.StatusGatewayTimeout, KindTransport},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBrowser(t, newTestServer(t, &fakeScorer{label: keywordLabel, err: tt.err}))
			if tt.err != nil {
				b.call(http.MethodPost, "/api/headlines", "application/json", `{"text":"good"}`, nil)
			}

			var resp ErrorResponse
			status := b.call(http.MethodPost, "/api/score", "", "", &resp)

			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.kind, resp.Kind)
			assert.NotEmpty(t, resp.Error)
		})
	}
}
