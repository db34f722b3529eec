package jwttoken

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"checklist/pkg/requestcontext"
)

var (
	// ErrTokenExpired means the signature checked out but the session is past
	// its expiry; the claims are still usable for a refresh.
	ErrTokenExpired = errors.New("session token expired")
	ErrTokenInvalid = errors.New("invalid session token")
)

// SessionClaims is the content of the gateway's session cookie. ClientID is
// the tenant the driver signed in to; UpstreamToken is the backend access
// token used on the driver's behalf.
type SessionClaims struct {
	UserID        string `json:"user_id"`
	ClientID      string `json:"client_id"`
	UpstreamToken string `json:"upstream_token"`
	jwt.RegisteredClaims
}

// JWTService mints and validates HS256 session tokens.
type JWTService struct {
	signingKey []byte
	issuer     string
	sessionTTL time.Duration
}

func NewJWTService(signingKey, issuer string, sessionTTL time.Duration) *JWTService {
	return &JWTService{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		sessionTTL: sessionTTL,
	}
}

// IssueSession signs a session token. ttl <= 0 uses the configured session TTL.
func (s *JWTService) IssueSession(ctx context.Context, userID, clientID, upstreamToken string, ttl time.Duration) (string, time.Time, error) {
	if ttl <= 0 {
		ttl = s.sessionTTL
	}
	now := requestcontext.Now(ctx)
	expiresAt := now.Add(ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, SessionClaims{
		UserID:        userID,
		ClientID:      clientID,
		UpstreamToken: upstreamToken,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
	})

	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// ValidateSession verifies signature, issuer and expiry. An expired but
// otherwise valid token returns its claims together with ErrTokenExpired.
func (s *JWTService) ValidateSession(tokenString string) (*SessionClaims, error) {
	if tokenString == "" {
		return nil, ErrTokenInvalid
	}

	claims := new(SessionClaims)
	parsed, err := jwt.ParseWithClaims(tokenString, claims, s.keyFunc, jwt.WithIssuer(s.issuer), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return s.parseExpired(tokenString)
		}
		return nil, ErrTokenInvalid
	}
	if !parsed.Valid || claims.ClientID == "" {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// parseExpired re-parses without time checks so refresh can read the tenant.
func (s *JWTService) parseExpired(tokenString string) (*SessionClaims, error) {
	claims := new(SessionClaims)
	parsed, err := jwt.ParseWithClaims(tokenString, claims, s.keyFunc, jwt.WithoutClaimsValidation())
	if err != nil || !parsed.Valid || claims.Issuer != s.issuer || claims.ClientID == "" {
		return nil, ErrTokenInvalid
	}
	return claims, ErrTokenExpired
}

func (s *JWTService) keyFunc(t *jwt.Token) (any, error) {
	if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
		return nil, jwt.ErrTokenUnverifiable
	}
	return s.signingKey, nil
}
