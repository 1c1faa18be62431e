package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/contact-cli/internal/model"
)

func testRouter(t *testing.T) http.Handler {
	t.Helper()
	p, classifier, err := newPipeline(testConfig(t))
	require.NoError(t, err)
	return buildRouter(p, classifier, []string{"https://app.example.com"})
}

func post(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestRouter_Health(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	testRouter(t).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "application/json")

	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestRouter_Reconcile(t *testing.T) {
	payload := map[string]any{
		"sources": []map[string]any{
			{"kind": "phone", "records": []map[string]string{{"Name": "Smith, John", "Phone": "555-0100"}}},
			{"kind": "crm", "records": []map[string]string{
				{"First Name": "John", "Last Name": "Smith", "Changes Made": "Updated phone"},
				{"First Name": "Ann", "Last Name": "Lee"},
			}},
		},
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	rr := post(t, testRouter(t), "/v1/reconcile", string(body))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp reconcileResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.SessionID)
	assert.Equal(t, 3, resp.Stats.Total)
	assert.Equal(t, 1, resp.Stats.DuplicateGroups)
	assert.Empty(t, resp.Error)
	require.Len(t, resp.Sets, 4)
	require.Len(t, resp.Sets["changed-only"], 1)
	assert.Equal(t, "555-0100", resp.Sets["changed-only"][0]["Phone"])
	assert.Equal(t, 2, resp.Categories[model.CategoryOther])
}

func TestRouter_Reconcile_BadRequests(t *testing.T) {
	h := testRouter(t)

	rr := post(t, h, "/v1/reconcile", "{not json")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "invalid request body")

	rr = post(t, h, "/v1/reconcile", `{"sources":[]}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "sources are required")

	rr = post(t, h, "/v1/reconcile", `{"sources":[{"kind":"fax","records":[]}]}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "unknown source kind")
}

func TestRouter_Classify(t *testing.T) {
	rr := post(t, testRouter(t), "/v1/classify",
		`{"records":[{"Email":"agent@compass.com"},{"Email":"jane@gmail.com","Company":"ABC Corporation"}]}`)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp classifyResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 2)
	assert.Equal(t, model.CategoryAgent, resp.Results[0].Category)
	assert.NotEqual(t, model.CategoryAgent, resp.Results[1].Category)
}

func TestRouter_NotConfigured(t *testing.T) {
	h := buildRouter(nil, nil, nil)

	rr := post(t, h, "/v1/reconcile", `{"sources":[]}`)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)

	rr = post(t, h, "/v1/classify", `{"records":[]}`)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestRouter_CORSPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/v1/classify", bytes.NewReader(nil))
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	testRouter(t).ServeHTTP(rr, req)

	assert.Equal(t, "https://app.example.com", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_UnknownRoute(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/nope", nil)
	rr := httptest.NewRecorder()
	testRouter(t).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
