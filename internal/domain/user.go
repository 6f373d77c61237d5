package domain

// User is the browser-local identity persisted under the currentUser key.
// There is no account system behind it; the id is minted client-side and
// trusted as-is (see reconcile package for the trust boundary).
type User struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role,omitempty"`
}

// IsOwner reports whether the identity carries the owner role.
func (u User) IsOwner() bool {
	return u.Role == RoleOwner
}
