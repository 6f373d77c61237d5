package domain

import (
	"context"
	"time"
)

// BoardState is the opaque board snapshot carried by a session. The board
// tool owns its internals; the repository only merges and persists it.
type BoardState struct {
	FocusNote string           `json:"focus_note"`
	Notes     []map[string]any `json:"notes"`
	Cards     []map[string]any `json:"cards"`
}

// NewBoardState returns an empty board snapshot.
func NewBoardState() BoardState {
	return BoardState{
		FocusNote: "",
		Notes:     []map[string]any{},
		Cards:     []map[string]any{},
	}
}

// Session represents a shareable card-board instance
type Session struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	OwnerUserID  string        `json:"owner_user_id"`
	BoardKey     string        `json:"board_key"`
	CardsetKey   string        `json:"cardset_key"`
	Password     *string       `json:"password,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	LastOpenedAt time.Time     `json:"last_opened_at"`
	LastEditedAt time.Time     `json:"last_edited_at"`
	BoardState   BoardState    `json:"board_state"`
	Participants []Participant `json:"participants"`
	// Rev is bumped on every mutation so concurrent writers can detect
	// a lost update instead of silently overwriting it.
	Rev int64 `json:"rev"`
}

// Participant captures membership in a session, unique by ID
type Participant struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Role     string     `json:"role"`
	JoinedAt *time.Time `json:"joined_at,omitempty"`
}

// Participant roles
const (
	RoleOwner       = "owner"
	RoleParticipant = "participant"
)

// HasParticipant reports whether a participant with the given id exists.
func (s *Session) HasParticipant(id string) bool {
	for _, p := range s.Participants {
		if p.ID == id {
			return true
		}
	}
	return false
}

// OwnerParticipant returns the participant holding the owner role, if any.
func (s *Session) OwnerParticipant() *Participant {
	for i := range s.Participants {
		if s.Participants[i].Role == RoleOwner {
			return &s.Participants[i]
		}
	}
	return nil
}

// IsOpen reports whether the session can be joined without a password.
func (s *Session) IsOpen() bool {
	return s.Password == nil
}

// SessionCreate represents session creation data
type SessionCreate struct {
	Name        string  `json:"name" validate:"required,max=255"`
	BoardKey    string  `json:"board_key" validate:"required"`
	CardsetKey  string  `json:"cardset_key" validate:"required"`
	Password    *string `json:"password,omitempty"`
	OwnerUserID string  `json:"owner_user_id" validate:"required"`
	OwnerName   string  `json:"owner_name" validate:"required"`
}

// SessionPatch represents a shallow partial update. Nil fields are left
// untouched; SetPassword distinguishes "clear the password" from
// "password unchanged".
type SessionPatch struct {
	Name        *string     `json:"name,omitempty" validate:"omitempty,max=255"`
	BoardKey    *string     `json:"board_key,omitempty"`
	CardsetKey  *string     `json:"cardset_key,omitempty"`
	Password    *string     `json:"password,omitempty"`
	SetPassword bool        `json:"set_password,omitempty"`
	BoardState  *BoardState `json:"board_state,omitempty"`
}

// SessionRepository defines the interface for session storage. It is
// implementable against the local persisted-state layout or the remote
// REST collaborator interchangeably.
type SessionRepository interface {
	Create(ctx context.Context, session *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	// ListFor returns sessions the user owns or participates in.
	// Ordering is the caller's concern.
	ListFor(ctx context.Context, userID string) ([]Session, error)
	// Update shallow-merges patch and stamps LastEditedAt. A missing id
	// is a no-op, not an error.
	Update(ctx context.Context, id string, patch SessionPatch) error
	Delete(ctx context.Context, id string) error
	SaveBoardState(ctx context.Context, id string, state BoardState) error
	// UpdateLastAccess stamps LastOpenedAt only.
	UpdateLastAccess(ctx context.Context, id string) error
	// AddParticipant is idempotent by participant id.
	AddParticipant(ctx context.Context, id string, p Participant) error
}
