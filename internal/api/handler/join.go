package handler

import (
	"encoding/json"
	"net/http"

	"github.com/ValHeil/kartensets/internal/access"
	"github.com/ValHeil/kartensets/internal/api/response"
	"github.com/ValHeil/kartensets/internal/reconcile"
)

// JoinHandler runs the join flow for owner and guest links. Each request
// is one page load: the flow starts from the link's query parameters and,
// for guests, consumes the submitted name in the same request.
type JoinHandler struct {
	reconciler *reconcile.Reconciler
}

func NewJoinHandler(reconciler *reconcile.Reconciler) *JoinHandler {
	return &JoinHandler{reconciler: reconciler}
}

type joinResult struct {
	State             string `json:"state"`
	SessionID         string `json:"session_id,omitempty"`
	User              any    `json:"user,omitempty"`
	PromptVisible     bool   `json:"prompt_visible"`
	ValidationMessage string `json:"validation_message,omitempty"`
}

// Join handles POST /join?id=...&owner=1|join=true with an optional
// body carrying the guest name and password.
func (h *JoinHandler) Join(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Password string `json:"password"`
	}
	if r.Body != nil {
		// Body is optional; owner links carry everything in the URL.
		json.NewDecoder(r.Body).Decode(&req)
	}

	flow := reconcile.NewJoinFlow(h.reconciler)
	state := flow.Start(r.Context(), r.URL.Query())

	if state == reconcile.StateAborted {
		response.NotFound(w, flow.AbortMessage())
		return
	}

	if state == reconcile.StateGuestPrompt {
		// The password gate applies to guests only; the owner fast
		// path above never prompts.
		if !access.CheckPassword(flow.Session(), req.Password) {
			response.Forbidden(w, "invalid session password")
			return
		}

		if req.Name != "" || r.URL.Query().Get("submitted") == "true" {
			state = flow.SubmitName(r.Context(), req.Name)
		}
	}

	result := joinResult{
		State:         state.String(),
		PromptVisible: flow.PromptVisible(),
	}
	if flow.Session() != nil {
		result.SessionID = flow.Session().ID
	}
	if state == reconcile.StateJoined {
		result.User = flow.User()
	}
	if msg := flow.ValidationMessage(); msg != "" {
		result.ValidationMessage = msg
		response.JSON(w, http.StatusUnprocessableEntity, result)
		return
	}

	response.OK(w, result)
}
