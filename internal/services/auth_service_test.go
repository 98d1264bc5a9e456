package services_test

import (
	"fmt"
	"testing"
	"time"

	"smartcontact/internal/models"
	"smartcontact/internal/services"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "test_jwt_secret"

func TestAuthService_IssueToken(t *testing.T) {
	authService := services.NewAuthService(testJWTSecret, time.Hour, nil)
	user := &models.User{ID: 7, Name: "Ann", Email: "ann@x.com"}

	token, err := authService.IssueToken(user)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	parsedToken, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(testJWTSecret), nil
	})
	require.NoError(t, err)
	claims, ok := parsedToken.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, float64(7), claims["user_id"])
	assert.Equal(t, "Ann", claims["user_name"])
	assert.Equal(t, "ann@x.com", claims["email"])
}

func TestAuthService_ValidateToken(t *testing.T) {
	authService := services.NewAuthService(testJWTSecret, time.Hour, nil)

	// valid token round trip
	token, err := authService.IssueToken(&models.User{ID: 3, Name: "Bob"})
	require.NoError(t, err)
	claims, err := authService.ValidateToken(token)
	require.NoError(t, err)
	id, err := services.UserIDFromClaims(claims)
	require.NoError(t, err)
	assert.Equal(t, uint(3), id)

	// garbage
	_, err = authService.ValidateToken("invalid.token.string")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid token")

	// wrong secret
	other := services.NewAuthService("another_secret", time.Hour, nil)
	foreign, err := other.IssueToken(&models.User{ID: 3})
	require.NoError(t, err)
	_, err = authService.ValidateToken(foreign)
	assert.Error(t, err)

	// expired
	expiredToken := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": 3,
		"exp":     jwt.TimeFunc().Add(-time.Hour).Unix(),
	})
	expiredTokenString, _ := expiredToken.SignedString([]byte(testJWTSecret))
	_, err = authService.ValidateToken(expiredTokenString)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid token")
}

func TestUserIDFromClaims_Invalid(t *testing.T) {
	_, err := services.UserIDFromClaims(jwt.MapClaims{})
	assert.Error(t, err)

	_, err = services.UserIDFromClaims(jwt.MapClaims{"user_id": "7"})
	assert.Error(t, err)

	_, err = services.UserIDFromClaims(jwt.MapClaims{"user_id": float64(0)})
	assert.Error(t, err)
}
