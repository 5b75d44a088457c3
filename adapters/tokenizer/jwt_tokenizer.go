package tokenizer

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/lumenpulse/anchor/core"
	"github.com/lumenpulse/anchor/ports"
)

const audienceAccess = "anchor:access"

// DefaultAccessTTL applies when no TTL is configured.
const DefaultAccessTTL = 15 * time.Minute

// JWTTokenizer implements the Tokenizer port with HS256 JWTs. The access
// token TTL is fixed at construction time and applies process-wide.
type JWTTokenizer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTTokenizer creates a tokenizer signing with the given secret.
func NewJWTTokenizer(secret []byte, ttl time.Duration) *JWTTokenizer {
	if ttl <= 0 {
		ttl = DefaultAccessTTL
	}
	return &JWTTokenizer{
		secret: secret,
		ttl:    ttl,
		now:    time.Now,
	}
}

var _ ports.Tokenizer = (*JWTTokenizer)(nil)

// Issue mints a signed access token for the session.
func (j *JWTTokenizer) Issue(session *core.Session) (string, error) {
	now := j.now()
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   session.UserID.String(),
			ID:        uuid.New().String(),
			Audience:  jwt.ClaimStrings{audienceAccess},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
		},
		StellarPublicKey: session.PublicKey,
		AuthType:         session.AuthType,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(j.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, nil
}

// Parse validates a token string and returns the session it carries.
func (j *JWTTokenizer) Parse(tokenStr string) (*core.Session, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.secret, nil
	}, jwt.WithAudience(audienceAccess), jwt.WithTimeFunc(func() time.Time { return j.now() }))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, core.ErrTokenExpired
		}
		return nil, core.ErrInvalidToken
	}
	if !token.Valid {
		return nil, core.ErrInvalidToken
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok {
		return nil, core.ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, core.ErrInvalidToken
	}

	return &core.Session{
		UserID:    userID,
		PublicKey: claims.StellarPublicKey,
		AuthType:  claims.AuthType,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
