package jwt_test

import (
	"testing"
	"time"

	"github.com/getmentor/mentor-finder/pkg/jwt"
	"github.com/getmentor/mentor-finder/pkg/jwt/jwttest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager_ValidToken(t *testing.T) {
	tm := jwt.NewTokenManager("secret", "mentor-platform")
	classID := int64(7)
	token := jwttest.Token(t, jwttest.Viewer{
		Secret: "secret", Issuer: "mentor-platform", UserID: 42, Role: "STUDENT", ClassID: &classID,
	})

	claims, err := tm.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "STUDENT", claims.Role)
	require.NotNil(t, claims.ClassID)
	assert.Equal(t, int64(7), *claims.ClassID)
}

func TestTokenManager_NoClass(t *testing.T) {
	token := jwttest.Token(t, jwttest.Viewer{Secret: "secret", UserID: 1, Role: "STUDENT"})

	claims, err := jwt.NewTokenManager("secret", "").ValidateToken(token)
	require.NoError(t, err)
	assert.Nil(t, claims.ClassID)
}

func TestTokenManager_WrongSecret(t *testing.T) {
	token := jwttest.Token(t, jwttest.Viewer{Secret: "secret", UserID: 1})

	_, err := jwt.NewTokenManager("other", "").ValidateToken(token)
	assert.ErrorIs(t, err, jwt.ErrInvalidToken)
}

func TestTokenManager_Expired(t *testing.T) {
	token := jwttest.Token(t, jwttest.Viewer{Secret: "secret", UserID: 1, TTL: -time.Minute})

	_, err := jwt.NewTokenManager("secret", "").ValidateToken(token)
	assert.ErrorIs(t, err, jwt.ErrExpiredToken)
}

func TestTokenManager_WrongIssuer(t *testing.T) {
	token := jwttest.Token(t, jwttest.Viewer{Secret: "secret", Issuer: "someone-else", UserID: 1})

	_, err := jwt.NewTokenManager("secret", "mentor-platform").ValidateToken(token)
	assert.ErrorIs(t, err, jwt.ErrInvalidToken)
}

func TestTokenManager_Garbage(t *testing.T) {
	_, err := jwt.NewTokenManager("secret", "").ValidateToken("not-a-token")
	assert.ErrorIs(t, err, jwt.ErrInvalidToken)
}
