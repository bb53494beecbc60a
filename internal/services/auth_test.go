package services

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/opencdb/cdb-backend/internal/platform/apierr"
	"github.com/opencdb/cdb-backend/internal/platform/logger"
)

func testUsers() map[string]UserCred {
	return map[string]UserCred{
		"reader": {Secret: "reader-secret", Access: AccessGet},
		"writer": {Secret: "writer-secret", Access: AccessSet},
		"oper":   {Secret: "oper-secret", Access: AccessAdmin},
	}
}

func newTestAuth(t *testing.T) AuthService {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return NewAuthService(log, testUsers())
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	auth := newTestAuth(t)

	for user, cred := range testUsers() {
		token, err := auth.Issue(user, time.Minute)
		if err != nil {
			t.Fatalf("Issue(%s): %v", user, err)
		}
		p, err := auth.Verify(token)
		if err != nil {
			t.Fatalf("Verify(%s): %v", user, err)
		}
		if p.User != user || p.Access != cred.Access {
			t.Fatalf("principal: want=%s/%s got=%s/%s", user, cred.Access, p.User, p.Access)
		}
	}
}

func TestAccessLadder(t *testing.T) {
	cases := []struct {
		access                   string
		canGet, canSet, canAdmin bool
	}{
		{AccessGet, true, false, false},
		{AccessSet, true, true, false},
		{AccessAdmin, true, true, true},
	}
	for _, tc := range cases {
		p := &Principal{User: "u", Access: tc.access}
		if p.CanGet() != tc.canGet || p.CanSet() != tc.canSet || p.CanAdmin() != tc.canAdmin {
			t.Fatalf("%s: want get=%v set=%v admin=%v got get=%v set=%v admin=%v",
				tc.access, tc.canGet, tc.canSet, tc.canAdmin, p.CanGet(), p.CanSet(), p.CanAdmin())
		}
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	auth := newTestAuth(t)

	now := time.Now()
	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    "oper",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
	})
	token, err := forged.SignedString([]byte("guessed-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := auth.Verify(token); !apierr.IsCode(err, apierr.CodeUnauthorized) {
		t.Fatalf("forged token: want unauthorized, got err=%v", err)
	}
}

func TestVerifyRejectsUnknownIssuer(t *testing.T) {
	auth := newTestAuth(t)

	now := time.Now()
	stranger := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    "nobody",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
	})
	token, err := stranger.SignedString([]byte("whatever"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := auth.Verify(token); !apierr.IsCode(err, apierr.CodeUnauthorized) {
		t.Fatalf("unknown issuer: want unauthorized, got err=%v", err)
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	auth := newTestAuth(t)

	token, err := auth.Issue("reader", -time.Minute)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := auth.Verify(token); !apierr.IsCode(err, apierr.CodeUnauthorized) {
		t.Fatalf("expired token: want unauthorized, got err=%v", err)
	}
}

func TestVerifyRejectsMissingExpiry(t *testing.T) {
	auth := newTestAuth(t)

	bare := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:   "reader",
		IssuedAt: jwt.NewNumericDate(time.Now()),
	})
	token, err := bare.SignedString([]byte("reader-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := auth.Verify(token); !apierr.IsCode(err, apierr.CodeUnauthorized) {
		t.Fatalf("token without exp: want unauthorized, got err=%v", err)
	}
}

func TestIssueUnknownUser(t *testing.T) {
	auth := newTestAuth(t)

	if _, err := auth.Issue("nobody", time.Minute); err == nil {
		t.Fatalf("Issue for unknown user succeeded")
	}
}
