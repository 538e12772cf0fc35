package security

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
)

// refreshTokenBytes is the amount of randomness in one refresh token.
const refreshTokenBytes = 32

// IssueRefreshToken returns an opaque refresh token: 32 bytes from crypto/rand, base64url without padding.
// It carries no claims and is only meaningful against a stored session.
func IssueRefreshToken() (string, error) {
	b := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// HashRefreshToken returns the hex SHA-256 of token. Sessions persist this instead of the raw token.
func HashRefreshToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

// RefreshTokenMatches reports whether presented hashes to storedHash, in constant time.
// An empty presented token or an empty stored hash never matches.
func RefreshTokenMatches(presented, storedHash string) bool {
	if presented == "" || storedHash == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(HashRefreshToken(presented)), []byte(storedHash)) == 1
}

// IssueRefreshToken returns a new opaque refresh token. See the package-level IssueRefreshToken.
func (c *TokenCodec) IssueRefreshToken() (string, error) {
	return IssueRefreshToken()
}
