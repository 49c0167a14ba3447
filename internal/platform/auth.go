package platform

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenValidity bounds how long a signed request token stays usable.
const tokenValidity = 2 * time.Minute

type requestClaims struct {
	jwt.RegisteredClaims
	URIs []string `json:"uris"`
}

type walletAuthClaims struct {
	jwt.RegisteredClaims
	ReqHash string `json:"reqHash"`
}

// SignRequest produces a short-lived ES256 bearer token scoped to a single
// method and path on the platform host.
func (c *Client) SignRequest(method, path string) (string, error) {
	if c.keyID == "" || c.keySecret == "" {
		return "", fmt.Errorf("platform API credentials are not configured")
	}

	key, err := jwt.ParseECPrivateKeyFromPEM([]byte(c.keySecret))
	if err != nil {
		return "", fmt.Errorf("parse API key secret: %w", err)
	}

	now := time.Now()
	claims := requestClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "cdp",
			Subject:   c.keyID,
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenValidity)),
		},
		URIs: []string{fmt.Sprintf("%s %s%s", method, c.base.Host, path)},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodES256, claims)
	token.Header["kid"] = c.keyID
	return token.SignedString(key)
}

// signWalletAuth produces the write-authorization token the platform demands
// for mutating endpoints, binding the token to the request body hash.
func (c *Client) signWalletAuth(body []byte) (string, error) {
	key, err := jwt.ParseECPrivateKeyFromPEM([]byte(c.walletSecret))
	if err != nil {
		return "", fmt.Errorf("parse wallet secret: %w", err)
	}

	digest := sha256.Sum256(body)
	now := time.Now()
	claims := walletAuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenValidity)),
		},
		ReqHash: hex.EncodeToString(digest[:]),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodES256, claims)
	return token.SignedString(key)
}
