package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ValHeil/kartensets/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func respond(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"success": status < 300,
		"data":    data,
	})
}

func TestSessionRepository_GetAndNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/sessions/s1":
			respond(w, http.StatusOK, domain.Session{ID: "s1", Name: "Standup"})
		default:
			respond(w, http.StatusNotFound, nil)
		}
	}))
	defer srv.Close()

	repo := NewSessionRepository(NewClient(srv.URL, time.Second))
	ctx := context.Background()

	s, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "Standup", s.Name)

	_, err = repo.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSessionRepository_ListFor(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sessions", r.URL.Path)
		assert.Equal(t, "u1", r.URL.Query().Get("user"))
		respond(w, http.StatusOK, []domain.Session{{ID: "a"}, {ID: "b"}})
	}))
	defer srv.Close()

	repo := NewSessionRepository(NewClient(srv.URL, time.Second))
	sessions, err := repo.ListFor(context.Background(), "u1")
	require.NoError(t, err)
	assert.Len(t, sessions, 2)
}

func TestSessionRepository_UpdateStatuses(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr error
	}{
		{"ok", http.StatusOK, nil},
		{"missing is noop", http.StatusNotFound, nil},
		{"conflict", http.StatusConflict, domain.ErrVersionConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPatch, r.Method)
				respond(w, tt.status, nil)
			}))
			defer srv.Close()

			repo := NewSessionRepository(NewClient(srv.URL, time.Second))
			name := "Renamed"
			err := repo.Update(context.Background(), "s1", domain.SessionPatch{Name: &name})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSessionRepository_NetworkFailureSurfaced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // unreachable on purpose

	repo := NewSessionRepository(NewClient(srv.URL, time.Second))
	_, err := repo.Get(context.Background(), "s1")
	assert.ErrorIs(t, err, domain.ErrNetwork)
}

func TestSessionRepository_Invite(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sessions/s1/invite", r.URL.Path)
		respond(w, http.StatusCreated, map[string]string{"link": "https://boards.example/join?id=s1&join=true"})
	}))
	defer srv.Close()

	repo := NewSessionRepository(NewClient(srv.URL, time.Second))
	link, err := repo.Invite(context.Background(), "s1")
	require.NoError(t, err)
	assert.Contains(t, link, "join=true")
}
