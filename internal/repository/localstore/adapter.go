package localstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/ValHeil/kartensets/internal/domain"
	"github.com/rs/zerolog/log"
)

// DefaultMaxSize is the byte budget for the serialized session
// collection, mirroring common browser localStorage limits.
const DefaultMaxSize = 5 * 1024 * 1024

// SaveStatus reports what a save had to do to fit the byte budget.
type SaveStatus int

const (
	// StatusOK means the collection was written as given.
	StatusOK SaveStatus = iota
	// StatusEvicted means oldest sessions were dropped to fit the budget.
	StatusEvicted
	// StatusDegraded means the backend rejected even the reduced
	// collection and the key was cleared. Success with data loss:
	// callers must surface it, never swallow it.
	StatusDegraded
)

func (s SaveStatus) String() string {
	switch s {
	case StatusEvicted:
		return "evicted"
	case StatusDegraded:
		return "degraded"
	default:
		return "ok"
	}
}

// Adapter is the quota-aware persistence layer over a Backend. It owns
// serialization, the eviction policy, and quota degradation; everything
// above it deals in typed records only.
type Adapter struct {
	backend Backend
	maxSize int
}

// NewAdapter creates an adapter with the given byte budget. A
// non-positive maxSize falls back to DefaultMaxSize.
func NewAdapter(backend Backend, maxSize int) *Adapter {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &Adapter{backend: backend, maxSize: maxSize}
}

// SaveSessions persists the collection under key. Sessions are sorted
// ascending by CreatedAt and the oldest are dropped while the serialized
// form exceeds the budget. A quota-rejected write gets one compaction
// pass and a single retry; if that still fails, the key is cleared and
// StatusDegraded is returned so callers can tell the data was lost.
func (a *Adapter) SaveSessions(ctx context.Context, key string, sessions []domain.Session) (SaveStatus, error) {
	kept := make([]domain.Session, len(sessions))
	copy(kept, sessions)
	sort.Slice(kept, func(i, j int) bool {
		return kept[i].CreatedAt.Before(kept[j].CreatedAt)
	})

	data, err := json.Marshal(kept)
	if err != nil {
		return StatusOK, fmt.Errorf("failed to marshal sessions: %w", err)
	}

	status := StatusOK
	for len(data) > a.maxSize && len(kept) > 0 {
		log.Warn().
			Str("key", key).
			Str("session_id", kept[0].ID).
			Int("size", len(data)).
			Int("budget", a.maxSize).
			Msg("byte budget exceeded, evicting oldest session")
		kept = kept[1:]
		status = StatusEvicted
		if data, err = json.Marshal(kept); err != nil {
			return status, fmt.Errorf("failed to marshal sessions: %w", err)
		}
	}

	err = a.backend.Write(ctx, key, data)
	if err == nil {
		return status, nil
	}
	if !errors.Is(err, ErrQuotaExceeded) {
		return status, err
	}

	// The backend is tighter than our budget. One compaction pass: keep
	// the newer half and retry once.
	if len(kept) > 1 {
		kept = kept[len(kept)/2:]
		if data, err = json.Marshal(kept); err != nil {
			return StatusEvicted, fmt.Errorf("failed to marshal sessions: %w", err)
		}
		if err = a.backend.Write(ctx, key, data); err == nil {
			return StatusEvicted, nil
		}
	}

	log.Warn().Str("key", key).Msg("quota still exceeded after compaction, clearing key")
	if err := a.backend.Remove(ctx, key); err != nil {
		return StatusDegraded, fmt.Errorf("failed to clear %s after quota failure: %w", key, err)
	}
	return StatusDegraded, nil
}

// LoadSessions returns the stored collection. An absent key or corrupt
// payload yields an empty slice; parse failures are logged, never
// returned. Malformed individual records are rejected here so partial
// objects do not propagate upward.
func (a *Adapter) LoadSessions(ctx context.Context, key string) []domain.Session {
	data, err := a.backend.Read(ctx, key)
	if errors.Is(err, ErrKeyNotFound) {
		return []domain.Session{}
	}
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("failed to read session collection")
		return []domain.Session{}
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("corrupt session collection, treating as empty")
		return []domain.Session{}
	}

	sessions := make([]domain.Session, 0, len(raw))
	for _, r := range raw {
		var s domain.Session
		if err := json.Unmarshal(r, &s); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("dropping malformed session record")
			continue
		}
		if s.ID == "" || s.CreatedAt.IsZero() {
			log.Warn().Str("key", key).Str("session_id", s.ID).Msg("dropping session record with missing identity")
			continue
		}
		sessions = append(sessions, s)
	}
	return sessions
}

// SaveUser persists the browser-local identity.
func (a *Adapter) SaveUser(ctx context.Context, key string, user domain.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}
	return a.backend.Write(ctx, key, data)
}

// LoadUser returns the cached identity, or nil when absent or corrupt.
func (a *Adapter) LoadUser(ctx context.Context, key string) *domain.User {
	data, err := a.backend.Read(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrKeyNotFound) {
			log.Warn().Err(err).Str("key", key).Msg("failed to read cached identity")
		}
		return nil
	}
	var u domain.User
	if err := json.Unmarshal(data, &u); err != nil || u.ID == "" {
		log.Warn().Str("key", key).Msg("corrupt cached identity, ignoring")
		return nil
	}
	return &u
}
