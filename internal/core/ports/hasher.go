package ports

// PasswordHasher produces and verifies one-way, salted password digests.
// Hash is non-deterministic across calls for the same input; Matches is the
// only way to compare a plaintext against a digest.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Matches(plaintext, digest string) bool
}
