package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ValHeil/kartensets/internal/api/middleware"
	"github.com/ValHeil/kartensets/internal/api/response"
	"github.com/ValHeil/kartensets/internal/domain"
	"github.com/ValHeil/kartensets/internal/service"
	"github.com/go-chi/chi/v5"
)

type SessionHandler struct {
	sessions *service.SessionService
}

func NewSessionHandler(sessions *service.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// List returns the sessions the acting user owns or participates in.
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.BadRequest(w, "missing user identity")
		return
	}

	sessions, err := h.sessions.ListFor(r.Context(), userID)
	if err != nil {
		response.InternalError(w, "Failed to list sessions")
		return
	}
	if sessions == nil {
		sessions = []domain.Session{}
	}

	response.OK(w, sessions)
}

// Create creates a new session owned by the acting user.
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.BadRequest(w, "missing user identity")
		return
	}

	var req struct {
		Name       string  `json:"name"`
		BoardKey   string  `json:"board_key"`
		CardsetKey string  `json:"cardset_key"`
		Password   *string `json:"password,omitempty"`
		OwnerName  string  `json:"owner_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	session, err := h.sessions.Create(r.Context(), domain.SessionCreate{
		Name:        req.Name,
		BoardKey:    req.BoardKey,
		CardsetKey:  req.CardsetKey,
		Password:    req.Password,
		OwnerUserID: userID,
		OwnerName:   req.OwnerName,
	})
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			response.BadRequest(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to create session")
		return
	}

	response.Created(w, session)
}

// Get returns a single session.
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	session, err := h.sessions.Get(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			response.NotFound(w, "session not found")
			return
		}
		response.InternalError(w, "Failed to fetch session")
		return
	}

	response.OK(w, session)
}

// Update applies a shallow patch: rename, rekey, password changes.
func (h *SessionHandler) Update(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var patch domain.SessionPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := h.sessions.Update(r.Context(), sessionID, patch); err != nil {
		if errors.Is(err, domain.ErrValidation) {
			response.BadRequest(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to update session")
		return
	}

	response.OK(w, map[string]string{"message": "Session updated"})
}

// Delete removes a session; a missing id still answers 200.
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	if err := h.sessions.Delete(r.Context(), sessionID); err != nil {
		response.InternalError(w, "Failed to delete session")
		return
	}

	response.OK(w, map[string]string{"message": "Session deleted"})
}

// SaveBoard merges a board snapshot into the session.
func (h *SessionHandler) SaveBoard(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var state domain.BoardState
	if err := json.NewDecoder(r.Body).Decode(&state); err != nil {
		response.BadRequest(w, "invalid board state")
		return
	}

	if err := h.sessions.SaveBoardState(r.Context(), sessionID, state); err != nil {
		response.InternalError(w, "Failed to save board state")
		return
	}

	response.OK(w, map[string]string{"message": "Board state saved"})
}

// Open stamps the last-opened timestamp without touching last-edited.
func (h *SessionHandler) Open(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	if err := h.sessions.UpdateLastAccess(r.Context(), sessionID); err != nil {
		response.InternalError(w, "Failed to touch session")
		return
	}

	response.OK(w, map[string]string{"message": "Session opened"})
}

// Invite returns shareable join links for the session.
func (h *SessionHandler) Invite(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	links, err := h.sessions.Invite(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			response.NotFound(w, "session not found")
			return
		}
		response.InternalError(w, "Failed to build invite links")
		return
	}

	response.Created(w, links)
}
