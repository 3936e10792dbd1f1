package secrets

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"sync"

	"golang.org/x/crypto/bcrypt"

	dErrors "campus/pkg/domain-errors"
)

// Cost is the bcrypt work factor for stored password hashes.
const Cost = bcrypt.DefaultCost

// ErrCorruptHash is returned by Verify when the stored hash cannot be parsed.
var ErrCorruptHash = errors.New("corrupt password hash")

// Generate creates a cryptographically secure random secret.
// Returns a base64-encoded string suitable for bootstrap passwords.
func Generate() (string, error) {
	buf := make([]byte, 18)
	if _, err := rand.Read(buf); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "could not generate secret")
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// Hash creates a salted bcrypt hash of the provided secret.
// Two calls with the same input return different hashes; Verify accepts both.
func Hash(secret string) (string, error) {
	if secret == "" {
		return "", dErrors.New(dErrors.CodeValidation, "secret cannot be empty")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), Cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", dErrors.New(dErrors.CodeValidation, "secret is too long")
		}
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "could not hash secret")
	}
	return string(hashed), nil
}

// Verify reports whether secret matches hash. A mismatch is (false, nil);
// only an unparseable hash is an error.
func Verify(secret, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, dErrors.Wrap(errors.Join(ErrCorruptHash, err), dErrors.CodeInternal, "could not verify secret")
	}
}

// DummyHash returns a process-wide bcrypt hash at Cost that matches no
// real password. Comparing against it costs the same as a real check.
var DummyHash = sync.OnceValue(func() string {
	hashed, err := bcrypt.GenerateFromPassword([]byte("campus-sin-usuario"), Cost)
	if err != nil {
		panic("secrets: dummy hash: " + err.Error())
	}
	return string(hashed)
})

// Bcrypt adapts the package functions to the service's credential interface.
type Bcrypt struct{}

func (Bcrypt) Hash(secret string) (string, error) { return Hash(secret) }

func (Bcrypt) Verify(secret, hash string) (bool, error) { return Verify(secret, hash) }
