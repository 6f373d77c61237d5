package reconcile

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/ValHeil/kartensets/internal/domain"
	"github.com/ValHeil/kartensets/internal/repository/localstore"
	"github.com/rs/zerolog/log"
)

// State is the join flow's position. Joined and Aborted are terminal
// within a page load and are never re-entered.
type State int

const (
	StateResolving State = iota
	StateOwnerFastPath
	StateGuestPrompt
	StateJoined
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateOwnerFastPath:
		return "owner_fast_path"
	case StateGuestPrompt:
		return "guest_prompt"
	case StateJoined:
		return "joined"
	case StateAborted:
		return "aborted"
	default:
		return "resolving"
	}
}

// JoinFlow runs the per-page-load join state machine over the URL query
// parameters of a join link.
type JoinFlow struct {
	rec *Reconciler

	state   State
	session *domain.Session
	user    domain.User

	promptVisible bool
	validationMsg string
	abortMsg      string
}

// NewJoinFlow creates a flow in the Resolving state.
func NewJoinFlow(rec *Reconciler) *JoinFlow {
	return &JoinFlow{rec: rec, state: StateResolving}
}

func (f *JoinFlow) terminal() bool {
	return f.state == StateJoined || f.state == StateAborted
}

func (f *JoinFlow) abort(msg string) State {
	f.state = StateAborted
	f.abortMsg = msg
	f.promptVisible = false
	return f.state
}

// Start consumes the URL parameters (`id`, `join`, `owner`, `n`/`name`)
// and advances to the first resting state.
func (f *JoinFlow) Start(ctx context.Context, params url.Values) State {
	if f.terminal() {
		return f.state
	}

	id := params.Get("id")
	if id == "" {
		return f.abort("join link is missing the session id")
	}

	session, err := f.rec.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return f.abort("session not found")
		}
		log.Warn().Err(err).Str("session_id", id).Msg("join flow could not load session")
		return f.abort("session could not be loaded")
	}
	f.session = session

	if params.Get("owner") == "1" {
		return f.ownerFastPath(ctx, params)
	}

	if params.Get("join") == "true" {
		f.state = StateGuestPrompt
		f.promptVisible = true
		return f.state
	}

	// Plain open: viewing an own session, no prompt needed.
	f.state = StateJoined
	return f.state
}

// ownerFastPath joins as the asserted owner without any interaction.
// Prompts are actively suppressed even if one was already rendered.
func (f *JoinFlow) ownerFastPath(ctx context.Context, params url.Values) State {
	f.state = StateOwnerFastPath
	f.promptVisible = false
	f.validationMsg = ""

	hint := params.Get("n")
	if hint == "" {
		hint = params.Get("name")
	}

	owner, err := f.rec.ResolveOwnerIdentity(ctx, hint)
	if err != nil {
		log.Warn().Err(err).Msg("owner identity resolution failed")
		return f.abort("could not resolve owner identity")
	}
	f.user = owner

	if err := f.rec.EnsureOwnerParticipant(ctx, f.session.ID, owner); err != nil {
		log.Warn().Err(err).Str("session_id", f.session.ID).Msg("owner reconciliation failed")
		return f.abort("could not join as owner")
	}

	f.state = StateJoined
	return f.state
}

// SubmitName handles a guest prompt submission. An empty name keeps the
// prompt visible with a validation message; there is no silent submit.
func (f *JoinFlow) SubmitName(ctx context.Context, name string) State {
	if f.state != StateGuestPrompt {
		return f.state
	}

	name = strings.TrimSpace(name)
	if name == "" {
		f.validationMsg = "please enter a name to join"
		return f.state
	}

	guest := f.rec.ResolveGuestIdentity(name)
	if err := f.rec.identities.SaveUser(ctx, localstore.KeyCurrentUser, guest); err != nil {
		log.Warn().Err(err).Msg("failed to cache guest identity")
	}

	if !f.rec.JoinAsParticipant(ctx, f.session, guest) {
		f.validationMsg = "joining failed, please try again"
		return f.state
	}

	f.user = guest
	f.validationMsg = ""
	f.promptVisible = false
	f.state = StateJoined
	return f.state
}

// State returns the current state.
func (f *JoinFlow) State() State { return f.state }

// Session returns the resolved session, nil before Start succeeds.
func (f *JoinFlow) Session() *domain.Session { return f.session }

// User returns the identity that joined, zero before Joined.
func (f *JoinFlow) User() domain.User { return f.user }

// PromptVisible reports whether the name prompt should be rendered.
func (f *JoinFlow) PromptVisible() bool { return f.promptVisible }

// ValidationMessage returns the current prompt validation text.
func (f *JoinFlow) ValidationMessage() string { return f.validationMsg }

// AbortMessage returns the user-visible abort reason.
func (f *JoinFlow) AbortMessage() string { return f.abortMsg }
