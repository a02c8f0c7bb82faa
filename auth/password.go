package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// ErrEmptyPassword is returned when hashing an empty string.
var ErrEmptyPassword = errors.New("password must not be empty")

// Scheme verifies a plaintext password against a stored digest.
// The store carries digests from more than one generation of hashing
// code, so verification tries each scheme in order.
type Scheme interface {
	// Matches reports whether the digest looks like it was produced
	// by this scheme.
	Matches(digest string) bool
	Verify(plain, digest string) bool
}

// Hasher hashes new passwords with bcrypt and verifies against an
// ordered list of schemes, newest first.
type Hasher struct {
	schemes []Scheme
}

// NewHasher returns a Hasher that writes bcrypt digests and still
// verifies legacy salted SHA-256 digests from pre-migration records.
func NewHasher() *Hasher {
	return &Hasher{schemes: []Scheme{bcryptScheme{}, legacySHA256Scheme{}}}
}

// Hash generates a bcrypt digest with a per-call random salt.
func (h *Hasher) Hash(plain string) (string, error) {
	if plain == "" {
		return "", ErrEmptyPassword
	}
	digest, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// Verify tries each scheme in sequence and succeeds on the first match.
func (h *Hasher) Verify(plain, digest string) bool {
	for _, s := range h.schemes {
		if s.Matches(digest) {
			return s.Verify(plain, digest)
		}
	}
	return false
}

type bcryptScheme struct{}

func (bcryptScheme) Matches(digest string) bool {
	return strings.HasPrefix(digest, "$2")
}

func (bcryptScheme) Verify(plain, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plain)) == nil
}

// legacySHA256Scheme verifies digests of the form
// "sha256$<hexsalt>$<hexdigest>" where digest = SHA-256(salt || password).
// These were written by the pre-migration credential code; new hashes
// are never produced in this format.
type legacySHA256Scheme struct{}

const legacyPrefix = "sha256$"

func (legacySHA256Scheme) Matches(digest string) bool {
	return strings.HasPrefix(digest, legacyPrefix)
}

func (legacySHA256Scheme) Verify(plain, digest string) bool {
	parts := strings.SplitN(strings.TrimPrefix(digest, legacyPrefix), "$", 2)
	if len(parts) != 2 {
		return false
	}
	salt, err := hex.DecodeString(parts[0])
	if err != nil {
		return false
	}
	sum := sha256.Sum256(append(salt, []byte(plain)...))
	want, err := hex.DecodeString(parts[1])
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare(sum[:], want) == 1
}

// legacyDigest builds a legacy-format digest. Kept only so tests can
// construct pre-migration records.
func legacyDigest(plain string, salt []byte) string {
	sum := sha256.Sum256(append(salt, []byte(plain)...))
	return legacyPrefix + hex.EncodeToString(salt) + "$" + hex.EncodeToString(sum[:])
}
