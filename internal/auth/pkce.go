package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
)

// DefaultVerifierLength is the verifier length used for login flows.
// RFC 7636 permits 43-128 characters.
const DefaultVerifierLength = 64

const verifierCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// GenerateVerifier produces a random string of length characters drawn from
// [A-Za-z0-9] using the supplied random source. A nil source falls back to
// [rand.Reader]. Output is deterministic for a fixed source.
func GenerateVerifier(r io.Reader, length int) (string, error) {
	if r == nil {
		r = rand.Reader
	}

	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}

	for i, b := range buf {
		buf[i] = verifierCharset[int(b)%len(verifierCharset)]
	}

	return string(buf), nil
}

// DeriveChallenge computes the S256 code challenge for a verifier:
// base64url (no padding) of SHA-256 over the verifier's UTF-8 bytes.
func DeriveChallenge(verifier string) string {
	digest := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(digest[:])
}
