package localstore

import (
	"context"
	"sync"
	"time"

	"github.com/ValHeil/kartensets/internal/domain"
	"github.com/rs/zerolog/log"
)

// SessionRepository implements domain.SessionRepository over the
// quota-aware adapter. Every mutation is a full-collection
// read-modify-write; the mutex serializes in-process writers so no
// update is silently lost, and Rev lets out-of-process writers detect
// races (last-write-wins is not replicated silently).
type SessionRepository struct {
	mu      sync.Mutex
	adapter *Adapter
	key     string

	// OnSave, when set, receives the status of every collection write.
	// The service uses it to surface eviction and degradation.
	OnSave func(SaveStatus)
}

// NewSessionRepository creates a repository persisting under the
// standard sessions key.
func NewSessionRepository(adapter *Adapter) *SessionRepository {
	return &SessionRepository{adapter: adapter, key: KeySessions}
}

func (r *SessionRepository) persist(ctx context.Context, sessions []domain.Session) error {
	status, err := r.adapter.SaveSessions(ctx, r.key, sessions)
	if err != nil {
		return err
	}
	if status != StatusOK {
		log.Warn().Str("status", status.String()).Msg("session collection saved with reduced content")
	}
	if r.OnSave != nil {
		r.OnSave(status)
	}
	return nil
}

func (r *SessionRepository) Create(ctx context.Context, session *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	sessions := r.adapter.LoadSessions(ctx, r.key)
	sessions = append(sessions, *session)
	return r.persist(ctx, sessions)
}

func (r *SessionRepository) Get(ctx context.Context, id string) (*domain.Session, error) {
	for _, s := range r.adapter.LoadSessions(ctx, r.key) {
		if s.ID == id {
			return &s, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *SessionRepository) ListFor(ctx context.Context, userID string) ([]domain.Session, error) {
	var out []domain.Session
	for _, s := range r.adapter.LoadSessions(ctx, r.key) {
		if s.OwnerUserID == userID || s.HasParticipant(userID) {
			out = append(out, s)
		}
	}
	return out, nil
}

// mutate applies fn to the session with the given id and writes the
// whole collection back. A missing id is a no-op, not an error; fn
// returning false means nothing changed and the write is skipped.
func (r *SessionRepository) mutate(ctx context.Context, id string, fn func(*domain.Session) bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	sessions := r.adapter.LoadSessions(ctx, r.key)
	changed := false
	for i := range sessions {
		if sessions[i].ID == id {
			if fn(&sessions[i]) {
				sessions[i].Rev++
				changed = true
			}
			break
		}
	}
	if !changed {
		return nil
	}
	return r.persist(ctx, sessions)
}

func (r *SessionRepository) Update(ctx context.Context, id string, patch domain.SessionPatch) error {
	return r.mutate(ctx, id, func(s *domain.Session) bool {
		applyPatch(s, patch)
		s.LastEditedAt = time.Now()
		return true
	})
}

func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	sessions := r.adapter.LoadSessions(ctx, r.key)
	kept := sessions[:0]
	for _, s := range sessions {
		if s.ID != id {
			kept = append(kept, s)
		}
	}
	// Deleting a missing id is idempotent; skip the write.
	if len(kept) == len(sessions) {
		return nil
	}
	return r.persist(ctx, kept)
}

func (r *SessionRepository) SaveBoardState(ctx context.Context, id string, state domain.BoardState) error {
	return r.mutate(ctx, id, func(s *domain.Session) bool {
		mergeBoardState(&s.BoardState, state)
		s.LastEditedAt = time.Now()
		return true
	})
}

func (r *SessionRepository) UpdateLastAccess(ctx context.Context, id string) error {
	return r.mutate(ctx, id, func(s *domain.Session) bool {
		s.LastOpenedAt = time.Now()
		return true
	})
}

func (r *SessionRepository) AddParticipant(ctx context.Context, id string, p domain.Participant) error {
	return r.mutate(ctx, id, func(s *domain.Session) bool {
		if s.HasParticipant(p.ID) {
			return false
		}
		if p.JoinedAt == nil {
			now := time.Now()
			p.JoinedAt = &now
		}
		s.Participants = append(s.Participants, p)
		return true
	})
}

func applyPatch(s *domain.Session, patch domain.SessionPatch) {
	if patch.Name != nil {
		s.Name = *patch.Name
	}
	if patch.BoardKey != nil {
		s.BoardKey = *patch.BoardKey
	}
	if patch.CardsetKey != nil {
		s.CardsetKey = *patch.CardsetKey
	}
	if patch.SetPassword {
		s.Password = patch.Password
	}
	if patch.BoardState != nil {
		mergeBoardState(&s.BoardState, *patch.BoardState)
	}
}

// mergeBoardState replaces only the parts the incoming snapshot carries.
func mergeBoardState(dst *domain.BoardState, src domain.BoardState) {
	dst.FocusNote = src.FocusNote
	if src.Notes != nil {
		dst.Notes = src.Notes
	}
	if src.Cards != nil {
		dst.Cards = src.Cards
	}
}
