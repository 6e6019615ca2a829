package jwt_test

import (
	"testing"

	pkgjwt "github.com/jhoicas/Inventario-minero/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret-key-for-unit-tests"

func TestGenerateAndParse_ConRol(t *testing.T) {
	tok, err := pkgjwt.Generate(secret, "u1", "c1", "bodeguero", "minero-test", 60)
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	claims, err := pkgjwt.Parse(secret, tok)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "c1", claims.CompanyID)
	assert.Equal(t, "bodeguero", claims.Role)
	assert.Empty(t, claims.WarehouseID)
	assert.Equal(t, "minero-test", claims.Issuer)
}

func TestGenerateScoped_LlevaBodega(t *testing.T) {
	tok, err := pkgjwt.GenerateScoped(secret, "u1", "c1", "bodeguero", "w1", "minero-test", 60)
	require.NoError(t, err)

	claims, err := pkgjwt.Parse(secret, tok)
	require.NoError(t, err)
	assert.Equal(t, "w1", claims.WarehouseID)
}

func TestParse_TokenExpirado(t *testing.T) {
	tok, err := pkgjwt.Generate(secret, "u1", "c1", "admin", "minero-test", -1)
	require.NoError(t, err)

	_, err = pkgjwt.Parse(secret, tok)
	assert.Error(t, err, "token expirado debe retornar error")
}

func TestParse_SecretIncorrecto(t *testing.T) {
	tok, err := pkgjwt.Generate(secret, "u1", "c1", "admin", "minero-test", 60)
	require.NoError(t, err)

	_, err = pkgjwt.Parse("otro-secret-completamente-distinto", tok)
	assert.Error(t, err)
}

func TestGenerate_SecretVacio(t *testing.T) {
	_, err := pkgjwt.Generate("", "u1", "c1", "admin", "minero-test", 60)
	assert.Error(t, err)
}
