// Package reconcile merges URL-carried identity assertions with the
// cached local identity and a session's participant list.
//
// Trust boundary: the owner marker in a join link is an unauthenticated,
// client-controlled signal. Any link bearing it is treated as
// authoritative, by compatibility with the persisted-state layout this
// replaces. All of that trust is concentrated in ResolveOwnerIdentity
// and the owner fast path so it can be swapped for real authentication
// without touching callers.
package reconcile

import (
	"context"
	"fmt"

	"github.com/ValHeil/kartensets/internal/domain"
	"github.com/ValHeil/kartensets/internal/repository/localstore"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// DefaultOwnerName is used when an owner link carries no name hint.
const DefaultOwnerName = "Moderator"

// IdentityStore caches the browser-local identity under a fixed key.
type IdentityStore interface {
	LoadUser(ctx context.Context, key string) *domain.User
	SaveUser(ctx context.Context, key string, user domain.User) error
}

// Reconciler resolves identities and keeps a session's participant list
// consistent with them.
type Reconciler struct {
	identities IdentityStore
	repo       domain.SessionRepository
}

// NewReconciler creates a reconciler over the given identity cache and
// session repository.
func NewReconciler(identities IdentityStore, repo domain.SessionRepository) *Reconciler {
	return &Reconciler{identities: identities, repo: repo}
}

// ResolveOwnerIdentity returns the identity to use on the owner fast
// path. A cached identity keeps its id and is upgraded to the owner
// role; otherwise a fresh owner id is minted. The asserted owner is
// never prompted for a name or password.
func (r *Reconciler) ResolveOwnerIdentity(ctx context.Context, nameHint string) (domain.User, error) {
	user := domain.User{}
	if cached := r.identities.LoadUser(ctx, localstore.KeyCurrentUser); cached != nil {
		user = *cached
	} else {
		user.ID = "owner-" + uuid.NewString()
	}

	user.Role = domain.RoleOwner
	if nameHint != "" {
		user.Name = nameHint
	} else if user.Name == "" {
		user.Name = DefaultOwnerName
	}

	if err := r.identities.SaveUser(ctx, localstore.KeyCurrentUser, user); err != nil {
		return domain.User{}, fmt.Errorf("failed to cache owner identity: %w", err)
	}
	return user, nil
}

// EnsureOwnerParticipant appends owner to the session's participant
// list unless some participant already holds the owner role. The
// single-owner invariant holds across any call sequence.
func (r *Reconciler) EnsureOwnerParticipant(ctx context.Context, sessionID string, owner domain.User) error {
	session, err := r.repo.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	if session.OwnerParticipant() != nil {
		return nil
	}
	return r.repo.AddParticipant(ctx, sessionID, domain.Participant{
		ID:   owner.ID,
		Name: owner.Name,
		Role: domain.RoleOwner,
	})
}

// ResolveGuestIdentity mints a fresh participant identity. Guests get a
// new id on every call; reuse across sessions is deliberately not
// attempted, callers cache the result if they want continuity.
func (r *Reconciler) ResolveGuestIdentity(name string) domain.User {
	return domain.User{
		ID:   uuid.NewString(),
		Name: name,
		Role: domain.RoleParticipant,
	}
}

// JoinAsParticipant adds user to the session's participant list.
// Idempotent by user id; reports whether the operation logically
// succeeded, which is always true unless the storage write fails.
func (r *Reconciler) JoinAsParticipant(ctx context.Context, session *domain.Session, user domain.User) bool {
	err := r.repo.AddParticipant(ctx, session.ID, domain.Participant{
		ID:   user.ID,
		Name: user.Name,
		Role: domain.RoleParticipant,
	})
	if err != nil {
		log.Warn().Err(err).Str("session_id", session.ID).Msg("join failed")
		return false
	}
	return true
}
