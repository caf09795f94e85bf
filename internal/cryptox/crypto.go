// Package cryptox holds the password hashing schemes and token minting of
// the local credential store.
package cryptox

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/jara/internal/common"
	"golang.org/x/crypto/argon2"
)

// TokenPrefix is the fixed first segment of locally minted tokens.
const TokenPrefix = "local"

// Hash scheme names accepted by NewPasswordHasher.
const (
	SchemeSHA256   = "sha256"
	SchemeChecksum = "checksum"
	SchemeArgon2ID = "argon2id"
)

var ErrUnknownScheme = errors.New("unknown password hash scheme")

// PasswordHasher turns a password into the string stored in a user record
// and checks candidates against it.
type PasswordHasher interface {
	Hash(password []byte) (string, error)
	Verify(password []byte, stored string) bool
}

// NewPasswordHasher returns the hasher registered under scheme.
// An empty scheme selects SHA-256.
func NewPasswordHasher(scheme string) (PasswordHasher, error) {
	switch strings.ToLower(strings.TrimSpace(scheme)) {
	case "", SchemeSHA256:
		return SHA256Hasher{}, nil
	case SchemeChecksum:
		return ChecksumHasher{}, nil
	case SchemeArgon2ID:
		return Argon2Hasher{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownScheme, scheme)
	}
}

// SHA256Hasher stores base64(SHA-256(password)). It is unsalted, matching
// the record layout of existing local profiles.
type SHA256Hasher struct{}

func (SHA256Hasher) Hash(password []byte) (string, error) {
	sum := sha256.Sum256(password)
	return base64.StdEncoding.EncodeToString(sum[:]), nil
}

func (h SHA256Hasher) Verify(password []byte, stored string) bool {
	got, _ := h.Hash(password)
	return subtle.ConstantTimeCompare([]byte(got), []byte(stored)) == 1
}

// ChecksumHasher is a 32-bit rolling checksum (h = h*31 + rune).
//
// It is NOT a cryptographic hash: collisions are trivial to find. It exists
// for environments without a usable digest and must not be used otherwise.
type ChecksumHasher struct{}

func (ChecksumHasher) Hash(password []byte) (string, error) {
	var h int32
	for _, u := range utf16Units(string(password)) {
		h = (h << 5) - h + int32(u)
	}
	return strconv.FormatInt(int64(h), 10), nil
}

func (h ChecksumHasher) Verify(password []byte, stored string) bool {
	got, _ := h.Hash(password)
	return subtle.ConstantTimeCompare([]byte(got), []byte(stored)) == 1
}

// utf16Units yields the UTF-16 code units of s, so the checksum agrees with
// profiles written by the browser build.
func utf16Units(s string) []uint16 {
	units := make([]uint16, 0, len(s))
	for _, r := range s {
		if r >= 0x10000 {
			r -= 0x10000
			units = append(units, uint16(0xD800+(r>>10)), uint16(0xDC00+(r&0x3FF)))
			continue
		}
		units = append(units, uint16(r))
	}
	return units
}

// Argon2Hasher stores "argon2id$<salt>$<key>" with a random 16-byte salt.
type Argon2Hasher struct{}

const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32
)

func (Argon2Hasher) Hash(password []byte) (string, error) {
	salt := common.GenerateRandByteArray(16)
	key := argon2.IDKey(password, salt, argonTime, argonMemory, argonThreads, argonKeyLen)
	enc := base64.RawStdEncoding
	return SchemeArgon2ID + "$" + enc.EncodeToString(salt) + "$" + enc.EncodeToString(key), nil
}

func (Argon2Hasher) Verify(password []byte, stored string) bool {
	parts := strings.Split(stored, "$")
	if len(parts) != 3 || parts[0] != SchemeArgon2ID {
		return false
	}
	enc := base64.RawStdEncoding
	salt, err := enc.DecodeString(parts[1])
	if err != nil {
		return false
	}
	want, err := enc.DecodeString(parts[2])
	if err != nil {
		return false
	}
	got := argon2.IDKey(password, salt, argonTime, argonMemory, argonThreads, uint32(len(want)))
	return subtle.ConstantTimeCompare(got, want) == 1
}

// NewLocalToken mints "local.<userID>.<32 hex chars>". The token carries no
// signature and no expiry; uniqueness comes from the random part only.
func NewLocalToken(userID string) (string, error) {
	part, err := common.MakeRandHexString(16)
	if err != nil {
		return "", fmt.Errorf("token entropy: %w", err)
	}
	return TokenPrefix + "." + userID + "." + part, nil
}

// ParseLocalToken splits a local token into its user id. It checks shape
// only; local tokens cannot be verified.
func ParseLocalToken(token string) (userID string, ok bool) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 || parts[0] != TokenPrefix || parts[1] == "" || len(parts[2]) != 32 {
		return "", false
	}
	return parts[1], true
}
