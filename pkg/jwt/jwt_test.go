package jwt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/flota-crm-api/pkg/jwt"
)

func TestGenerateParse(t *testing.T) {
	token, err := jwt.Generate("s3cr3t", "u1", "accountant", "flota-crm", 5)
	require.NoError(t, err)

	userID, role, err := jwt.Parse("s3cr3t", token)
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)
	assert.Equal(t, "accountant", role)

	_, _, err = jwt.Parse("otro", token)
	assert.Error(t, err)
}

func TestGenerate_SecretVacio(t *testing.T) {
	_, err := jwt.Generate("", "u1", "admin", "x", 5)
	assert.Error(t, err)
}

func TestParse_Expirado(t *testing.T) {
	token, err := jwt.Generate("s", "u1", "admin", "x", -1)
	require.NoError(t, err)
	_, _, err = jwt.Parse("s", token)
	assert.Error(t, err)
}
