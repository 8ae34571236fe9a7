package account

import "errors"

// PasswordHasher defines the interface for password hashing implementations
type PasswordHasher interface {
	// Hash hashes a password
	Hash(password string) (string, error)

	// Verify checks if the provided password matches the stored hash
	Verify(password, hashedPassword string) (bool, error)

	// Handles reports whether the stored hash was produced by this hasher
	Handles(hashedPassword string) bool
}

// HasherRegistry picks the hasher for a stored hash by its format.
// The first registered hasher is used for new hashes.
type HasherRegistry struct {
	hashers []PasswordHasher
}

// NewHasherRegistry creates a registry with bcrypt as the default hasher and argon2id for verification
func NewHasherRegistry(hashers ...PasswordHasher) *HasherRegistry {
	if len(hashers) == 0 {
		hashers = []PasswordHasher{&BcryptHasher{}, NewArgon2Hasher()}
	}
	return &HasherRegistry{hashers: hashers}
}

// Current returns the hasher used for new passwords
func (r *HasherRegistry) Current() PasswordHasher {
	return r.hashers[0]
}

// HasherFor returns the hasher able to verify the given stored hash
func (r *HasherRegistry) HasherFor(hashedPassword string) (PasswordHasher, error) {
	for _, h := range r.hashers {
		if h.Handles(hashedPassword) {
			return h, nil
		}
	}
	return nil, errors.New("unsupported password hash format")
}
