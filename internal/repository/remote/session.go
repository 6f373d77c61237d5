package remote

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ValHeil/kartensets/internal/domain"
)

// SessionRepository implements domain.SessionRepository against the
// REST collaborator, interchangeably with the local store.
type SessionRepository struct {
	client *Client
}

// NewSessionRepository creates a REST-backed session repository.
func NewSessionRepository(client *Client) *SessionRepository {
	return &SessionRepository{client: client}
}

func (r *SessionRepository) Create(ctx context.Context, session *domain.Session) error {
	code, err := r.client.do(ctx, http.MethodPost, "/sessions", session, session)
	if err != nil {
		return err
	}
	if code != http.StatusCreated && code != http.StatusOK {
		return fmt.Errorf("create session: unexpected status %d", code)
	}
	return nil
}

func (r *SessionRepository) Get(ctx context.Context, id string) (*domain.Session, error) {
	var s domain.Session
	code, err := r.client.do(ctx, http.MethodGet, "/sessions/"+id, nil, &s)
	if err != nil {
		return nil, err
	}
	if code == http.StatusNotFound {
		return nil, domain.ErrNotFound
	}
	if code != http.StatusOK {
		return nil, fmt.Errorf("get session: unexpected status %d", code)
	}
	return &s, nil
}

func (r *SessionRepository) ListFor(ctx context.Context, userID string) ([]domain.Session, error) {
	var sessions []domain.Session
	code, err := r.client.do(ctx, http.MethodGet, "/sessions?user="+userID, nil, &sessions)
	if err != nil {
		return nil, err
	}
	if code != http.StatusOK {
		return nil, fmt.Errorf("list sessions: unexpected status %d", code)
	}
	return sessions, nil
}

func (r *SessionRepository) Update(ctx context.Context, id string, patch domain.SessionPatch) error {
	code, err := r.client.do(ctx, http.MethodPatch, "/sessions/"+id, patch, nil)
	if err != nil {
		return err
	}
	switch code {
	case http.StatusOK, http.StatusNoContent:
		return nil
	case http.StatusNotFound:
		// Matches the repository contract: patching a missing id is a no-op.
		return nil
	case http.StatusConflict:
		return domain.ErrVersionConflict
	default:
		return fmt.Errorf("update session: unexpected status %d", code)
	}
}

func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	code, err := r.client.do(ctx, http.MethodDelete, "/sessions/"+id, nil, nil)
	if err != nil {
		return err
	}
	if code != http.StatusOK && code != http.StatusNoContent && code != http.StatusNotFound {
		return fmt.Errorf("delete session: unexpected status %d", code)
	}
	return nil
}

func (r *SessionRepository) SaveBoardState(ctx context.Context, id string, state domain.BoardState) error {
	return r.Update(ctx, id, domain.SessionPatch{BoardState: &state})
}

func (r *SessionRepository) UpdateLastAccess(ctx context.Context, id string) error {
	code, err := r.client.do(ctx, http.MethodPost, "/sessions/"+id+"/open", nil, nil)
	if err != nil {
		return err
	}
	if code != http.StatusOK && code != http.StatusNoContent && code != http.StatusNotFound {
		return fmt.Errorf("touch session: unexpected status %d", code)
	}
	return nil
}

func (r *SessionRepository) AddParticipant(ctx context.Context, id string, p domain.Participant) error {
	code, err := r.client.do(ctx, http.MethodPost, "/sessions/"+id+"/participants", p, nil)
	if err != nil {
		return err
	}
	if code != http.StatusOK && code != http.StatusCreated && code != http.StatusNotFound {
		return fmt.Errorf("add participant: unexpected status %d", code)
	}
	return nil
}

// Invite asks the collaborator to issue a join link for the session.
func (r *SessionRepository) Invite(ctx context.Context, id string) (string, error) {
	var out struct {
		Link string `json:"link"`
	}
	code, err := r.client.do(ctx, http.MethodPost, "/sessions/"+id+"/invite", nil, &out)
	if err != nil {
		return "", err
	}
	if code == http.StatusNotFound {
		return "", domain.ErrNotFound
	}
	if code != http.StatusOK && code != http.StatusCreated {
		return "", fmt.Errorf("invite: unexpected status %d", code)
	}
	return out.Link, nil
}
