package jwt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/farmstock-api/pkg/jwt"
)

func TestGenerateParse(t *testing.T) {
	token, err := jwt.Generate("secret", "u1", "store_manager", "farmstock-api", 5)
	require.NoError(t, err)

	userID, role, err := jwt.Parse("secret", "farmstock-api", token)
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)
	assert.Equal(t, "store_manager", role)

	_, _, err = jwt.Parse("otro", "farmstock-api", token)
	assert.Error(t, err)

	_, _, err = jwt.Parse("secret", "otro-emisor", token)
	assert.Error(t, err)
}

func TestParse_Expirado(t *testing.T) {
	token, err := jwt.Generate("secret", "u1", "admin", "", -1)
	require.NoError(t, err)
	_, _, err = jwt.Parse("secret", "", token)
	assert.Error(t, err)
}

func TestGenerate_SinSecreto(t *testing.T) {
	_, err := jwt.Generate("", "u1", "admin", "", 5)
	assert.Error(t, err)
}
