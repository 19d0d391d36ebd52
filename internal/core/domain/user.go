package domain

import "errors"

// Well-known role names seeded into the store. Arbitrary additional roles may
// exist; nothing in the core depends on this list being exhaustive.
const (
	RoleAdmin = "ROLE_ADMIN"
	RoleUser  = "ROLE_USER"
)

var ErrUserNotFound = errors.New("user not found")
var ErrUserExists = errors.New("user already exists")
var ErrRoleNotFound = errors.New("role not found")
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrPrincipalNotFound signals that a username has no matching account during
// authentication. It is deliberately distinct from ErrUserNotFound: the login
// flow must translate it into an authentication failure, never into a generic
// lookup error.
var ErrPrincipalNotFound = errors.New("principal not found")

// User is the managed identity record. Password holds only a bcrypt digest
// once the record has been persisted; plaintext exists transiently in the
// create/update flows before hashing.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Age      int    `json:"age"`
	Email    string `json:"email"`
	Password string `json:"-"`
	Roles    []Role `json:"roles"`
}

// HasRole reports whether the user carries a role with the given name.
func (u *User) HasRole(name string) bool {
	for _, r := range u.Roles {
		if r.Name == name {
			return true
		}
	}
	return false
}

// Role is reference data: created and maintained outside this service,
// read-only here. Its name doubles verbatim as a granted authority label.
type Role struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
