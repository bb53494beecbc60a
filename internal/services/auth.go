package services

import (
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/opencdb/cdb-backend/internal/platform/apierr"
	"github.com/opencdb/cdb-backend/internal/platform/logger"
)

// Access levels form a strict ladder: get < set < admin. A token's issuer
// claim names a configured user; the user's level decides which part of
// the surface the request may reach.
const (
	AccessGet   = "get"
	AccessSet   = "set"
	AccessAdmin = "admin"
)

// UserCred is one configured API user: the HMAC secret its tokens are
// signed with and the access level it grants.
type UserCred struct {
	Secret string
	Access string
}

// Principal is the authenticated caller derived from a verified token.
type Principal struct {
	User   string
	Access string
}

func (p *Principal) CanGet() bool {
	return p.Access == AccessGet || p.Access == AccessSet || p.Access == AccessAdmin
}

func (p *Principal) CanSet() bool {
	return p.Access == AccessSet || p.Access == AccessAdmin
}

func (p *Principal) CanAdmin() bool {
	return p.Access == AccessAdmin
}

type AuthService interface {
	Verify(tokenString string) (*Principal, error)
	Issue(user string, ttl time.Duration) (string, error)
}

type authService struct {
	log   *logger.Logger
	users map[string]UserCred
}

func NewAuthService(baseLog *logger.Logger, users map[string]UserCred) AuthService {
	return &authService{
		log:   baseLog.With("service", "AuthService"),
		users: users,
	}
}

// Verify checks an HS256 bearer token: issuer must name a configured user,
// the signature must match that user's secret, and iat/exp must bracket
// the current time.
func (as *authService) Verify(tokenString string) (*Principal, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		iss, err := t.Claims.GetIssuer()
		if err != nil || iss == "" {
			return nil, fmt.Errorf("token has no issuer")
		}
		cred, ok := as.users[iss]
		if !ok {
			return nil, fmt.Errorf("unknown user %q", iss)
		}
		return []byte(cred.Secret), nil
	},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	)
	if err != nil {
		return nil, apierr.New(http.StatusUnauthorized, apierr.CodeUnauthorized, fmt.Errorf("token rejected: %w", err))
	}

	cred := as.users[claims.Issuer]
	return &Principal{User: claims.Issuer, Access: cred.Access}, nil
}

// Issue mints a token for a configured user, signed with that user's own
// secret. Used by bootstrap tooling and tests; the server itself only
// verifies.
func (as *authService) Issue(user string, ttl time.Duration) (string, error) {
	cred, ok := as.users[user]
	if !ok {
		return "", fmt.Errorf("unknown user %q", user)
	}
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    user,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	})
	return token.SignedString([]byte(cred.Secret))
}
