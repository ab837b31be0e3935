// Password digest schemes. The salted-SHA256 scheme matches the digest
// format already present in stored account records (salt, separator, hex
// hash in one string); bcrypt is available for new deployments.
package password

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"
)

const (
	saltAlphabet  = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	saltLength    = 12
	saltSeparator = "&"
)

// Hasher turns a plaintext password into a digest safe to persist and
// verifies a plaintext against a stored digest. Verify must fail closed:
// a malformed or corrupted digest is a mismatch, never an error.
type Hasher interface {
	Hash(password string) (string, error)
	Verify(password, digest string) bool
}

// SaltedSHA256 stores digests as "<salt>&<hex(sha256(salt || password))>".
// Keeping the salt inside the digest makes verification a pure function of
// the stored string.
type SaltedSHA256 struct{}

func NewSaltedSHA256() *SaltedSHA256 {
	return &SaltedSHA256{}
}

func (h *SaltedSHA256) Hash(password string) (string, error) {
	salt, err := randomSalt(saltLength)
	if err != nil {
		return "", err
	}
	return encode(salt, password), nil
}

func (h *SaltedSHA256) Verify(password, digest string) bool {
	parsed, ok := parseDigest(digest)
	if !ok {
		return false
	}
	computed := hashWithSalt(parsed.salt, password)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(parsed.hash)) == 1
}

// saltedDigest is the parsed form of a stored digest string.
type saltedDigest struct {
	salt string
	hash string
}

func parseDigest(digest string) (saltedDigest, bool) {
	parts := strings.Split(digest, saltSeparator)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return saltedDigest{}, false
	}
	return saltedDigest{salt: parts[0], hash: parts[1]}, true
}

func encode(salt, password string) string {
	return salt + saltSeparator + hashWithSalt(salt, password)
}

func hashWithSalt(salt, password string) string {
	sum := sha256.Sum256([]byte(salt + password))
	return hex.EncodeToString(sum[:])
}

func randomSalt(n int) (string, error) {
	raw := make([]byte, n)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	out := make([]byte, n)
	for i, b := range raw {
		out[i] = saltAlphabet[int(b)%len(saltAlphabet)]
	}
	return string(out), nil
}
