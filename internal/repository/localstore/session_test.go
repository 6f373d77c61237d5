package localstore

import (
	"context"
	"testing"
	"time"

	"github.com/ValHeil/kartensets/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo() *SessionRepository {
	return NewSessionRepository(NewAdapter(NewMemoryBackend(), 0))
}

func seedSession(t *testing.T, repo *SessionRepository, id, owner string) *domain.Session {
	t.Helper()
	now := time.Now()
	s := &domain.Session{
		ID:           id,
		Name:         "Session " + id,
		OwnerUserID:  owner,
		BoardKey:     "board1",
		CardsetKey:   "c1",
		CreatedAt:    now,
		LastOpenedAt: now,
		LastEditedAt: now,
		BoardState:   domain.NewBoardState(),
		Participants: []domain.Participant{
			{ID: owner, Name: "Owner of " + id, Role: domain.RoleOwner},
		},
	}
	require.NoError(t, repo.Create(context.Background(), s))
	return s
}

func TestSessionRepository_CreateAndGet(t *testing.T) {
	repo := newTestRepo()
	ctx := context.Background()

	seedSession(t, repo, "s1", "u1")

	got, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "Session s1", got.Name)
	assert.Equal(t, "u1", got.OwnerUserID)

	_, err = repo.Get(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSessionRepository_ListFor(t *testing.T) {
	repo := newTestRepo()
	ctx := context.Background()

	seedSession(t, repo, "mine", "u1")
	seedSession(t, repo, "theirs", "u2")
	joined := seedSession(t, repo, "joined", "u3")
	require.NoError(t, repo.AddParticipant(ctx, joined.ID, domain.Participant{
		ID: "u1", Name: "Alice", Role: domain.RoleParticipant,
	}))

	sessions, err := repo.ListFor(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, sessions, 2)

	ids := []string{sessions[0].ID, sessions[1].ID}
	assert.Contains(t, ids, "mine")
	assert.Contains(t, ids, "joined")
}

func TestSessionRepository_UpdateStampsLastEdited(t *testing.T) {
	repo := newTestRepo()
	ctx := context.Background()

	s := seedSession(t, repo, "s1", "u1")
	before := s.LastEditedAt

	time.Sleep(5 * time.Millisecond)
	name := "Renamed"
	require.NoError(t, repo.Update(ctx, "s1", domain.SessionPatch{Name: &name}))

	got, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
	assert.True(t, got.LastEditedAt.After(before))
	assert.Equal(t, int64(1), got.Rev)
}

func TestSessionRepository_UpdateMissingIsNoop(t *testing.T) {
	repo := newTestRepo()
	name := "whatever"
	err := repo.Update(context.Background(), "missing", domain.SessionPatch{Name: &name})
	assert.NoError(t, err)
}

func TestSessionRepository_SetAndClearPassword(t *testing.T) {
	repo := newTestRepo()
	ctx := context.Background()
	seedSession(t, repo, "s1", "u1")

	pw := "abc"
	require.NoError(t, repo.Update(ctx, "s1", domain.SessionPatch{Password: &pw, SetPassword: true}))
	got, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, got.Password)
	assert.Equal(t, "abc", *got.Password)
	assert.False(t, got.IsOpen())

	require.NoError(t, repo.Update(ctx, "s1", domain.SessionPatch{Password: nil, SetPassword: true}))
	got, err = repo.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, got.Password)
	assert.True(t, got.IsOpen())
}

func TestSessionRepository_DeleteIdempotent(t *testing.T) {
	repo := newTestRepo()
	ctx := context.Background()
	seedSession(t, repo, "s1", "u1")

	require.NoError(t, repo.Delete(ctx, "s1"))
	_, err := repo.Get(ctx, "s1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Second delete of the same id is not an error.
	assert.NoError(t, repo.Delete(ctx, "s1"))
}

func TestSessionRepository_SaveBoardStateMerges(t *testing.T) {
	repo := newTestRepo()
	ctx := context.Background()
	seedSession(t, repo, "s1", "u1")

	require.NoError(t, repo.SaveBoardState(ctx, "s1", domain.BoardState{
		FocusNote: "retro",
		Notes:     []map[string]any{{"text": "went well"}},
	}))

	got, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "retro", got.BoardState.FocusNote)
	require.Len(t, got.BoardState.Notes, 1)
	// Cards were not part of the snapshot and must survive the merge.
	assert.NotNil(t, got.BoardState.Cards)
}

func TestSessionRepository_UpdateLastAccessOnly(t *testing.T) {
	repo := newTestRepo()
	ctx := context.Background()
	s := seedSession(t, repo, "s1", "u1")
	edited := s.LastEditedAt

	time.Sleep(5 * time.Millisecond)
	require.NoError(t, repo.UpdateLastAccess(ctx, "s1"))

	got, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, got.LastOpenedAt.After(s.LastOpenedAt))
	assert.True(t, got.LastEditedAt.Equal(edited))
}

func TestSessionRepository_AddParticipantIdempotent(t *testing.T) {
	repo := newTestRepo()
	ctx := context.Background()
	seedSession(t, repo, "s1", "u1")

	p := domain.Participant{ID: "g1", Name: "Bob", Role: domain.RoleParticipant}
	require.NoError(t, repo.AddParticipant(ctx, "s1", p))
	require.NoError(t, repo.AddParticipant(ctx, "s1", p))

	got, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, got.Participants, 2)
	assert.NotNil(t, got.Participants[1].JoinedAt)
}
