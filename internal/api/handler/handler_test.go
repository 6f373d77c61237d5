package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ValHeil/kartensets/internal/api"
	"github.com/ValHeil/kartensets/internal/api/handler"
	"github.com/ValHeil/kartensets/internal/config"
	"github.com/ValHeil/kartensets/internal/repository/localstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	cfg := &config.Config{
		Server: config.ServerConfig{
			MiddlewareTimeout: 30 * time.Second,
			PublicURL:         "https://boards.example",
		},
	}
	adapter := localstore.NewAdapter(localstore.NewMemoryBackend(), 0)
	repo := localstore.NewSessionRepository(adapter)
	return api.NewRouter(cfg, adapter, repo, nil, nil)
}

func doJSON(t *testing.T, router http.Handler, method, path, userID string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	data, _ := resp["data"].(map[string]any)
	return data
}

func TestHealthCheck(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rec := httptest.NewRecorder()

	handler.HealthCheck(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var response map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if response["success"] != true {
		t.Error("expected success to be true")
	}
}

func TestSessionLifecycle(t *testing.T) {
	router := newTestRouter(t)

	// Create
	rec := doJSON(t, router, http.MethodPost, "/api/v1/sessions/", "u1", map[string]any{
		"name":        "Standup",
		"board_key":   "board1",
		"cardset_key": "c1",
		"owner_name":  "Alice",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeData(t, rec)
	sessionID, _ := created["id"].(string)
	require.NotEmpty(t, sessionID)

	participants, _ := created["participants"].([]any)
	require.Len(t, participants, 1)
	owner := participants[0].(map[string]any)
	assert.Equal(t, "u1", owner["id"])
	assert.Equal(t, "Alice", owner["name"])
	assert.Equal(t, "owner", owner["role"])

	// List for owner
	rec = doJSON(t, router, http.MethodGet, "/api/v1/sessions/", "u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// List for a stranger is empty
	rec = doJSON(t, router, http.MethodGet, "/api/v1/sessions/", "nobody", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var listResp struct {
		Data []any `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&listResp))
	assert.Empty(t, listResp.Data)

	// Rename via patch
	rec = doJSON(t, router, http.MethodPatch, "/api/v1/sessions/"+sessionID, "", map[string]any{
		"name": "Retro",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/sessions/"+sessionID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Retro", decodeData(t, rec)["name"])

	// Invite links
	rec = doJSON(t, router, http.MethodPost, "/api/v1/sessions/"+sessionID+"/invite", "", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	links := decodeData(t, rec)
	assert.Contains(t, links["guest_link"], "join=true")
	assert.Contains(t, links["owner_link"], "owner=1")

	// Delete, then 404 on get
	rec = doJSON(t, router, http.MethodDelete, "/api/v1/sessions/"+sessionID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = doJSON(t, router, http.MethodGet, "/api/v1/sessions/"+sessionID, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateSessionValidation(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/sessions/", "u1", map[string]any{
		"board_key":   "board1",
		"cardset_key": "c1",
		"owner_name":  "Alice",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Missing identity header
	rec = doJSON(t, router, http.MethodPost, "/api/v1/sessions/", "", map[string]any{
		"name": "X", "board_key": "b", "cardset_key": "c", "owner_name": "A",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestJoinFlowEndpoints(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/sessions/", "u1", map[string]any{
		"name":        "Gated",
		"board_key":   "board1",
		"cardset_key": "c1",
		"owner_name":  "Alice",
		"password":    "abc",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	sessionID := decodeData(t, rec)["id"].(string)

	// Missing session id aborts.
	rec = doJSON(t, router, http.MethodPost, "/api/v1/join", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Guest with wrong password is rejected.
	rec = doJSON(t, router, http.MethodPost, "/api/v1/join?id="+sessionID+"&join=true", "", map[string]any{
		"name": "Bob", "password": "ABC",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Guest with the right password but empty name keeps the prompt.
	rec = doJSON(t, router, http.MethodPost, "/api/v1/join?id="+sessionID+"&join=true&submitted=true", "", map[string]any{
		"password": "abc",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	prompt := decodeData(t, rec)
	assert.Equal(t, true, prompt["prompt_visible"])
	assert.NotEmpty(t, prompt["validation_message"])

	// Guest with password and name joins.
	rec = doJSON(t, router, http.MethodPost, "/api/v1/join?id="+sessionID+"&join=true", "", map[string]any{
		"name": "Bob", "password": "abc",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	joined := decodeData(t, rec)
	assert.Equal(t, "joined", joined["state"])

	// Owner fast path never prompts, even on a gated session.
	rec = doJSON(t, router, http.MethodPost, "/api/v1/join?id="+sessionID+"&owner=1&n=Carol", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	fast := decodeData(t, rec)
	assert.Equal(t, "joined", fast["state"])
	assert.Equal(t, false, fast["prompt_visible"])
}
