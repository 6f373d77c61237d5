package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

const changeChannel = "kartensets:sessions:changed"

// ChangeHint is broadcast after a successful mutation. It is a
// best-effort cache-invalidation hint for other tabs and processes, not
// a synchronization primitive: receivers reload the session list, they
// do not replay the change.
type ChangeHint struct {
	SessionID string    `json:"session_id"`
	Op        string    `json:"op"`
	Status    string    `json:"status,omitempty"`
	At        time.Time `json:"at"`
}

// Notifier publishes and subscribes to session change hints.
type Notifier struct {
	client *Client
}

// NewNotifier creates a new change notifier
func NewNotifier(client *Client) *Notifier {
	return &Notifier{client: client}
}

// Publish broadcasts a change hint. Publish failures are logged, never
// returned: a lost hint only delays a reload.
func (n *Notifier) Publish(ctx context.Context, hint ChangeHint) {
	if hint.At.IsZero() {
		hint.At = time.Now()
	}
	data, err := json.Marshal(hint)
	if err != nil {
		log.Warn().Err(err).Msg("failed to marshal change hint")
		return
	}
	if err := n.client.rdb.Publish(ctx, changeChannel, data).Err(); err != nil {
		log.Warn().Err(err).Str("session_id", hint.SessionID).Msg("failed to publish change hint")
	}
}

// Subscribe delivers hints on the returned channel until ctx is done.
// Undecodable messages are dropped with a log line.
func (n *Notifier) Subscribe(ctx context.Context) (<-chan ChangeHint, error) {
	sub := n.client.rdb.Subscribe(ctx, changeChannel)
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, fmt.Errorf("failed to subscribe to change channel: %w", err)
	}

	out := make(chan ChangeHint)
	go func() {
		defer close(out)
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var hint ChangeHint
				if err := json.Unmarshal([]byte(msg.Payload), &hint); err != nil {
					log.Warn().Err(err).Msg("dropping malformed change hint")
					continue
				}
				select {
				case out <- hint:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
