// AngelaMos | 2026
// security.go

package core

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

const saltLength = 16

var errMalformedHash = errors.New("malformed password hash")

// argonParams are the argon2id cost settings embedded in every stored
// hash. Hashes carrying other settings still verify and are flagged stale.
type argonParams struct {
	memory  uint32
	time    uint32
	threads uint8
	keyLen  uint32
}

var currentParams = argonParams{
	memory:  64 * 1024,
	time:    1,
	threads: 4,
	keyLen:  32,
}

func (p argonParams) derive(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, p.time, p.memory, p.threads, p.keyLen)
}

// phc renders the hash in PHC string format.
func (p argonParams) phc(salt, key []byte) string {
	enc := base64.RawStdEncoding
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, p.memory, p.time, p.threads,
		enc.EncodeToString(salt), enc.EncodeToString(key),
	)
}

type storedHash struct {
	params argonParams
	salt   []byte
	key    []byte
}

func parsePHC(encoded string) (*storedHash, error) {
	fields := strings.Split(encoded, "$")
	if len(fields) != 6 || fields[0] != "" || fields[1] != "argon2id" {
		return nil, errMalformedHash
	}

	var version int
	if _, err := fmt.Sscanf(fields[2], "v=%d", &version); err != nil || version != argon2.Version {
		return nil, fmt.Errorf("%w: version %q", errMalformedHash, fields[2])
	}

	var h storedHash
	if _, err := fmt.Sscanf(fields[3], "m=%d,t=%d,p=%d",
		&h.params.memory, &h.params.time, &h.params.threads,
	); err != nil {
		return nil, fmt.Errorf("%w: params %q", errMalformedHash, fields[3])
	}

	var err error
	if h.salt, err = base64.RawStdEncoding.DecodeString(fields[4]); err != nil {
		return nil, fmt.Errorf("%w: salt", errMalformedHash)
	}
	if h.key, err = base64.RawStdEncoding.DecodeString(fields[5]); err != nil || len(h.key) == 0 {
		return nil, fmt.Errorf("%w: key", errMalformedHash)
	}
	//nolint:gosec // G115: argon2 keys are a few dozen bytes
	h.params.keyLen = uint32(len(h.key))

	return &h, nil
}

func (h *storedHash) matches(password string) bool {
	return subtle.ConstantTimeCompare(h.key, h.params.derive(password, h.salt)) == 1
}

// HashPassword derives an argon2id PHC string with a fresh random salt.
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	return currentParams.phc(salt, currentParams.derive(password, salt)), nil
}

func VerifyPassword(password, encodedHash string) (bool, error) {
	h, err := parsePHC(encodedHash)
	if err != nil {
		return false, err
	}
	return h.matches(password), nil
}

// CheckPassword verifies password against encodedHash and reports whether
// the stored hash was produced with outdated parameters. An empty hash is
// checked against a dummy hash so unknown accounts cost the same time.
func CheckPassword(password, encodedHash string) (valid, stale bool, err error) {
	if encodedHash == "" {
		dummy.matches(password)
		return false, false, nil
	}

	h, err := parsePHC(encodedHash)
	if err != nil {
		return false, false, err
	}
	if !h.matches(password) {
		return false, false, nil
	}
	return true, h.params != currentParams, nil
}

var dummy = func() *storedHash {
	salt := make([]byte, saltLength)
	return &storedHash{
		params: currentParams,
		salt:   salt,
		key:    currentParams.derive("storefront-dummy-credential", salt),
	}
}()

// IsPasswordHash reports whether s is an argon2id PHC string.
func IsPasswordHash(s string) bool {
	_, err := parsePHC(s)
	return err == nil
}

// GenerateRefreshToken returns 32 random bytes, URL-safe encoded.
func GenerateRefreshToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate refresh token: %w", err)
	}
	return base64.URLEncoding.EncodeToString(buf), nil
}

// HashToken is the lookup key stored for a refresh token.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func CompareTokenHash(token, hash string) bool {
	return subtle.ConstantTimeCompare([]byte(HashToken(token)), []byte(hash)) == 1
}
