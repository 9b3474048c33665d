/**
 * @description
 * This package generates opaque refresh tokens. Tokens are 96 hexadecimal
 * characters (48 bytes of crypto/rand entropy), unique per issuance and not
 * guessable.
 */

package token

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

const refreshTokenBytes = 48

// Generator produces refresh tokens. The interface exists so tests can
// substitute a deterministic implementation.
type Generator interface {
	NewRefreshToken() (string, error)
}

// CryptoGenerator is the production Generator backed by crypto/rand.
type CryptoGenerator struct{}

// NewCryptoGenerator creates the production token generator.
func NewCryptoGenerator() CryptoGenerator {
	return CryptoGenerator{}
}

// NewRefreshToken returns a 96-character hex token.
func (CryptoGenerator) NewRefreshToken() (string, error) {
	buf := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read token entropy: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
