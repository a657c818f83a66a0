// Package credential provides password hashing for account passwords and
// folder lock passwords.
package credential

// Hasher hashes secrets for storage and verifies candidates against
// stored hashes. The same hasher is used for account passwords and for
// folder lock passwords; only hashes are ever persisted.
type Hasher interface {
	// Hash derives a storable hash from the plaintext secret.
	Hash(secret string) (string, error)

	// Verify reports whether the plaintext secret matches the stored hash.
	Verify(hash, secret string) bool
}
