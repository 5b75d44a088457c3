package tokenizer

import "github.com/golang-jwt/jwt/v5"

// SessionClaims combines standard claims with the identity fields a
// session token carries.
type SessionClaims struct {
	jwt.RegisteredClaims
	StellarPublicKey string `json:"stellarPublicKey,omitempty"`
	AuthType         string `json:"authType"`
}
