package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveTokenFromEnv(t *testing.T) {
	t.Setenv("TEST_GITHUB_TOKEN", "ghp-test-12345")
	token, err := ResolveToken("env", "", "TEST_GITHUB_TOKEN")
	require.NoError(t, err)
	assert.Equal(t, "ghp-test-12345", token)
}

func TestResolveTokenFromConfig(t *testing.T) {
	token, err := ResolveToken("config", "glpat-from-config", "")
	require.NoError(t, err)
	assert.Equal(t, "glpat-from-config", token)
}

func TestResolveTokenNone(t *testing.T) {
	for _, source := range []string{"", "none"} {
		token, err := ResolveToken(source, "ignored", "IGNORED")
		require.NoError(t, err)
		assert.Empty(t, token)
	}
}

func TestResolveTokenMissingEnvVar(t *testing.T) {
	_, err := ResolveToken("env", "", "NONEXISTENT_TOKEN_VAR")
	assert.Error(t, err)
}

func TestResolveTokenNoEnvVarName(t *testing.T) {
	_, err := ResolveToken("env", "", "")
	assert.Error(t, err)
}

func TestResolveTokenEmptyConfig(t *testing.T) {
	_, err := ResolveToken("config", "", "")
	assert.Error(t, err)
}

func TestResolveTokenUnknownSource(t *testing.T) {
	_, err := ResolveToken("keyring", "", "")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "keyring")
}

func TestHostConfigResolveToken(t *testing.T) {
	t.Setenv("TEST_GITLAB_TOKEN", "glpat-env")
	host := HostConfig{TokenSource: "env", TokenEnv: "TEST_GITLAB_TOKEN"}
	token, err := host.ResolveToken()
	require.NoError(t, err)
	assert.Equal(t, "glpat-env", token)
}
