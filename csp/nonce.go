package csp

import (
	"crypto/rand"
	"encoding/base64"
	"io"

	"github.com/pkg/errors"
)

// NonceSize is the number of random bytes backing a generated nonce,
// 128 bits as required for CSP nonces.
const NonceSize = 16

// GenerateNonce reads NonceSize bytes from random and returns them base64
// encoded, suitable for NewNonceSource and element nonce attributes. When
// the random source fails no nonce is produced; callers decide the fallback
// (typically 'unsafe-inline' via the injection helpers).
func GenerateNonce(random io.Reader) (string, error) {
	buf := make([]byte, NonceSize)
	if _, err := io.ReadFull(random, buf); err != nil {
		return "", errors.Wrap(err, "reading nonce random bytes")
	}
	return base64.StdEncoding.EncodeToString(buf), nil
}

// NewNonce generates a nonce from the platform CSPRNG.
func NewNonce() (string, error) {
	return GenerateNonce(rand.Reader)
}
