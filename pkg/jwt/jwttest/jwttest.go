// Package jwttest issues viewer tokens for tests, signed the way the mentor
// platform signs them.
package jwttest

import (
	"fmt"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"

	"github.com/getmentor/mentor-finder/pkg/jwt"
)

// Viewer describes the token to issue. A zero TTL means one hour; a
// negative TTL yields an already expired token.
type Viewer struct {
	Secret  string
	Issuer  string
	UserID  int64
	Role    string
	ClassID *int64
	TTL     time.Duration
}

// Token signs a token for v with HS256 and fails the test on error
func Token(t testing.TB, v Viewer) string {
	t.Helper()

	ttl := v.TTL
	if ttl == 0 {
		ttl = time.Hour
	}
	now := time.Now()

	claims := jwt.ViewerClaims{
		UserID:  v.UserID,
		Role:    v.Role,
		ClassID: v.ClassID,
		RegisteredClaims: gojwt.RegisteredClaims{
			ExpiresAt: gojwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  gojwt.NewNumericDate(now),
			Issuer:    v.Issuer,
			Subject:   fmt.Sprintf("%d", v.UserID),
		},
	}

	signed, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString([]byte(v.Secret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}
