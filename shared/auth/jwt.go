package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidSession = errors.New("invalid session token")

// SessionClaims is the claims set carried by a session token. The subject
// registered claim holds the user id.
type SessionClaims struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Avatar string `json:"avatar"`
	Gender string `json:"gender"`
	jwt.RegisteredClaims
}

// SessionManager mints and checks signed, stateless session tokens.
type SessionManager interface {
	// Mint signs claims. Registered claims left empty are filled in.
	Mint(claims SessionClaims) (string, error)

	// Verify checks signature, expiry, audience and issuer and returns the claims.
	Verify(token string) (*SessionClaims, error)

	// Parse decodes claims without checking the signature or expiry.
	Parse(token string) (*SessionClaims, error)
}

// JWTAuthenticator represents a JWT based authenticator.
type JWTAuthenticator struct {
	audience  string
	issuer    string
	secret    []byte
	expiresIn time.Duration
	now       func() time.Time
}

// NewJWTAuthenticator creates a new JWTAuthenticator instance.
func NewJWTAuthenticator(audience, issuer, secret string, expiresIn time.Duration) *JWTAuthenticator {
	return &JWTAuthenticator{
		audience:  audience,
		issuer:    issuer,
		secret:    []byte(secret),
		expiresIn: expiresIn,
		now:       time.Now,
	}
}

// Mint generates a HS256 session token for claims.
func (a *JWTAuthenticator) Mint(claims SessionClaims) (string, error) {
	now := a.now()
	if claims.IssuedAt == nil {
		claims.IssuedAt = jwt.NewNumericDate(now)
	}
	if claims.NotBefore == nil {
		claims.NotBefore = jwt.NewNumericDate(now)
	}
	if claims.ExpiresAt == nil {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(a.expiresIn))
	}
	claims.Issuer = a.issuer
	claims.Audience = jwt.ClaimStrings{a.audience}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenStr, err := token.SignedString(a.secret)
	if err != nil {
		return "", err
	}

	return tokenStr, nil
}

// Verify validates a session token and returns its claims.
func (a *JWTAuthenticator) Verify(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}

		return a.secret, nil
	},
		jwt.WithExpirationRequired(),
		jwt.WithAudience(a.audience),
		jwt.WithIssuer(a.issuer),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}

	if !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidSession
	}

	return claims, nil
}

// Parse decodes the claims of a token without validating it.
func (a *JWTAuthenticator) Parse(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}

	return claims, nil
}
