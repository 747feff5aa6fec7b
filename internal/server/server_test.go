package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/elsayed85/quick-rag/internal/domain"
	"github.com/elsayed85/quick-rag/internal/metrics"
	"github.com/elsayed85/quick-rag/internal/service"
)

type mockAsker struct {
	mock.Mock
}

func (m *mockAsker) Ask(ctx context.Context, req service.AskRequest) (*service.AskResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*service.AskResponse)
	return resp, args.Error(1)
}

func (m *mockAsker) Health(ctx context.Context) service.HealthReport {
	return m.Called(ctx).Get(0).(service.HealthReport)
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAsk_WithSources(t *testing.T) {
	asker := &mockAsker{}
	asker.On("Ask", mock.Anything, service.AskRequest{Question: "What is a cell?", IncludeSources: true}).
		Return(&service.AskResponse{
			Question: "What is a cell?",
			Answer:   "The basic unit of life.",
			Sources:  []service.Source{{SourceFile: "bio.txt", Page: 3, ContentPreview: "Cells are..."}},
		}, nil)

	rec := do(t, New(asker).Handler(), http.MethodPost, "/api/ask", `{"question":"What is a cell?","include_sources":true}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "The basic unit of life.", body["answer"])
	sources := body["sources"].([]any)
	require.Len(t, sources, 1)
	assert.Equal(t, "bio.txt", sources[0].(map[string]any)["source_file"])
	assert.NotContains(t, body, "Trace")
	asker.AssertExpectations(t)
}

func TestAsk_SourcesOffByDefault(t *testing.T) {
	asker := &mockAsker{}
	asker.On("Ask", mock.Anything, service.AskRequest{Question: "Hello", IncludeSources: false}).
		Return(&service.AskResponse{Question: "Hello", Answer: "Hi!"}, nil)

	rec := do(t, New(asker).Handler(), http.MethodPost, "/api/ask", `{"question":"Hello"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"question":"Hello","answer":"Hi!","sources":null}`, rec.Body.String())
}

func TestAsk_RejectsBadRequests(t *testing.T) {
	asker := &mockAsker{}
	h := New(asker).Handler()

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/api/ask", `{`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/api/ask", `{"question":""}`).Code)
	asker.AssertNotCalled(t, "Ask", mock.Anything, mock.Anything)
}

func TestAsk_ErrorStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: empty question", domain.ErrInvalidInput), http.StatusBadRequest},
		{&domain.StepError{Step: "retrieve", Err: domain.ErrIndexUnavailable}, http.StatusServiceUnavailable},
		{&domain.StepError{Step: "grade", Err: domain.ErrModelUnavailable}, http.StatusServiceUnavailable},
		{context.Canceled, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			asker := &mockAsker{}
			asker.On("Ask", mock.Anything, mock.Anything).Return(nil, tt.err)

			rec := do(t, New(asker).Handler(), http.MethodPost, "/api/ask", `{"question":"  "}`)

			assert.Equal(t, tt.want, rec.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.err.Error(), body["detail"])
		})
	}
}

func TestHealth(t *testing.T) {
	asker := &mockAsker{}
	asker.On("Health", mock.Anything).Return(service.HealthReport{Status: "healthy", IndexConnected: true, CollectionExists: true, DocumentsCount: 7})

	rec := do(t, New(asker).Handler(), http.MethodGet, "/health", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy","qdrant_connected":true,"collection_exists":true,"documents_count":7}`, rec.Body.String())
}

func TestRootAndMetrics(t *testing.T) {
	rec := metrics.New()
	h := New(&mockAsker{}, func(o *Options) { o.Metrics = rec }).Handler()

	root := do(t, h, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, root.Code)
	assert.Contains(t, root.Body.String(), "POST /api/ask")

	m := do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, m.Code)
	assert.Contains(t, m.Body.String(), `rag_http_requests_total{route="/",status="200"} 1`)
}

func TestCORS(t *testing.T) {
	h := New(&mockAsker{}, func(o *Options) { o.AllowedOrigins = []string{"https://school.example"} }).Handler()

	req := httptest.NewRequest(http.MethodOptions, "/api/ask", nil)
	req.Header.Set("Origin", "https://school.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "https://school.example", rec.Header().Get("Access-Control-Allow-Origin"))
}
