package service

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/ValHeil/kartensets/internal/domain"
	"github.com/ValHeil/kartensets/internal/repository/redis"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// SessionService drives all session mutations: it validates input,
// stamps timestamps, generates ids, and publishes change hints after
// successful writes. Handlers never touch the repository directly.
type SessionService struct {
	repo     domain.SessionRepository
	validate *validator.Validate
	notifier *redis.Notifier
	// publicURL is the externally visible base for invite links.
	publicURL string
}

// NewSessionService creates a session service. notifier may be nil when
// no Redis is configured.
func NewSessionService(repo domain.SessionRepository, notifier *redis.Notifier, publicURL string) *SessionService {
	return &SessionService{
		repo:      repo,
		validate:  validator.New(),
		notifier:  notifier,
		publicURL: publicURL,
	}
}

func (s *SessionService) notify(ctx context.Context, sessionID, op string) {
	if s.notifier != nil {
		s.notifier.Publish(ctx, redis.ChangeHint{SessionID: sessionID, Op: op})
	}
}

// Create builds and persists a new session. The creator is seeded as the
// sole owner participant without a JoinedAt stamp; JoinedAt marks
// non-creator joins only.
func (s *SessionService) Create(ctx context.Context, input domain.SessionCreate) (*domain.Session, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	now := time.Now()
	session := &domain.Session{
		ID:           uuid.NewString(),
		Name:         input.Name,
		OwnerUserID:  input.OwnerUserID,
		BoardKey:     input.BoardKey,
		CardsetKey:   input.CardsetKey,
		Password:     input.Password,
		CreatedAt:    now,
		LastOpenedAt: now,
		LastEditedAt: now,
		BoardState:   domain.NewBoardState(),
		Participants: []domain.Participant{
			{ID: input.OwnerUserID, Name: input.OwnerName, Role: domain.RoleOwner},
		},
	}

	if err := s.repo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.notify(ctx, session.ID, "create")
	return session, nil
}

// Get retrieves a session. Absence surfaces as domain.ErrNotFound.
func (s *SessionService) Get(ctx context.Context, id string) (*domain.Session, error) {
	return s.repo.Get(ctx, id)
}

// ListFor returns sessions owned by or joined by the user. Ordering is
// left to the caller; the dashboard sorts by recency or name itself.
func (s *SessionService) ListFor(ctx context.Context, userID string) ([]domain.Session, error) {
	sessions, err := s.repo.ListFor(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return sessions, nil
}

// Update applies a shallow patch.
func (s *SessionService) Update(ctx context.Context, id string, patch domain.SessionPatch) error {
	if err := s.validate.Struct(patch); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	if err := s.repo.Update(ctx, id, patch); err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	s.notify(ctx, id, "update")
	return nil
}

// Rename is a thin wrapper over Update.
func (s *SessionService) Rename(ctx context.Context, id, newName string) error {
	if newName == "" {
		return fmt.Errorf("%w: name must not be empty", domain.ErrValidation)
	}
	return s.Update(ctx, id, domain.SessionPatch{Name: &newName})
}

// SetPassword gates (non-nil) or opens (nil) the session.
func (s *SessionService) SetPassword(ctx context.Context, id string, password *string) error {
	return s.Update(ctx, id, domain.SessionPatch{Password: password, SetPassword: true})
}

// Delete removes a session; deleting a missing id is not an error.
func (s *SessionService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	s.notify(ctx, id, "delete")
	return nil
}

// SaveBoardState merges the board snapshot and stamps LastEditedAt.
func (s *SessionService) SaveBoardState(ctx context.Context, id string, state domain.BoardState) error {
	if err := s.repo.SaveBoardState(ctx, id, state); err != nil {
		return fmt.Errorf("failed to save board state: %w", err)
	}
	s.notify(ctx, id, "board")
	return nil
}

// UpdateLastAccess stamps LastOpenedAt only.
func (s *SessionService) UpdateLastAccess(ctx context.Context, id string) error {
	if err := s.repo.UpdateLastAccess(ctx, id); err != nil {
		return fmt.Errorf("failed to touch session: %w", err)
	}
	s.notify(ctx, id, "open")
	return nil
}

// AddParticipant appends a participant, idempotently by id.
func (s *SessionService) AddParticipant(ctx context.Context, id string, p domain.Participant) error {
	if err := s.repo.AddParticipant(ctx, id, p); err != nil {
		return fmt.Errorf("failed to add participant: %w", err)
	}
	s.notify(ctx, id, "join")
	return nil
}

// InviteLinks carries the shareable join URLs for a session. The owner
// link embeds the unauthenticated owner marker; whoever holds it is
// treated as the owner (see the reconcile package).
type InviteLinks struct {
	SessionID string `json:"session_id"`
	GuestLink string `json:"guest_link"`
	OwnerLink string `json:"owner_link"`
}

// Invite builds join links for an existing session.
func (s *SessionService) Invite(ctx context.Context, id string) (*InviteLinks, error) {
	session, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	guest := url.Values{}
	guest.Set("id", session.ID)
	guest.Set("join", "true")

	owner := url.Values{}
	owner.Set("id", session.ID)
	owner.Set("owner", "1")

	return &InviteLinks{
		SessionID: session.ID,
		GuestLink: s.publicURL + "/join?" + guest.Encode(),
		OwnerLink: s.publicURL + "/join?" + owner.Encode(),
	}, nil
}
