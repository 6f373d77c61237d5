// Package access gates session joins behind the optional session
// password. The comparison is plaintext and case-sensitive: the gate is
// a courtesy lock carried over from the persisted-state layout, not an
// authentication mechanism. Anything needing real auth belongs behind a
// different boundary.
package access

import "github.com/ValHeil/kartensets/internal/domain"

// CheckPassword reports whether candidate opens the session. A session
// without a password is open to everyone.
func CheckPassword(session *domain.Session, candidate string) bool {
	if session == nil || session.Password == nil {
		return true
	}
	return candidate == *session.Password
}
