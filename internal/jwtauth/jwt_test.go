package jwtauth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "tradegate/pkg/domain"
	dErrors "tradegate/pkg/domain-errors"
)

var service = New("test-signing-key", "test-issuer", time.Hour)

func TestGenerateAndValidate(t *testing.T) {
	userID := id.NewUserID()

	token, err := service.Generate(userID, "importer")
	require.NoError(t, err)

	claims, err := service.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, "importer", claims.Role)
	assert.Equal(t, "test-issuer", claims.Issuer)
	assert.NotEmpty(t, claims.ID)
}

func TestValidateExpired(t *testing.T) {
	short := New("test-signing-key", "test-issuer", -time.Minute)
	token, err := short.Generate(id.NewUserID(), "supplier")
	require.NoError(t, err)

	_, err = service.Validate(token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestValidateWrongKey(t *testing.T) {
	other := New("different-key", "test-issuer", time.Hour)
	token, err := other.Generate(id.NewUserID(), "carrier")
	require.NoError(t, err)

	_, err = service.Validate(token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestValidateGarbage(t *testing.T) {
	_, err := service.Validate("not.a.jwt")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestAdapterMapsClaims(t *testing.T) {
	userID := id.NewUserID()
	token, err := service.Generate(userID, "warehouse")
	require.NoError(t, err)

	claims, err := NewAdapter(service).ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, "warehouse", claims.Role)
	assert.NotEmpty(t, claims.JTI)
}
