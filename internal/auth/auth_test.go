package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticToken(t *testing.T) {
	token, err := Static("secret").Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "secret", token)

	_, err = Static("").Token(context.Background())
	require.Error(t, err)
}

func TestEnvSource(t *testing.T) {
	t.Setenv("GATEWAY_TOKEN", "from-env")

	token, err := EnvSource{Name: "GATEWAY_TOKEN"}.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "from-env", token)

	_, err = EnvSource{Name: "GATEWAY_TOKEN_MISSING"}.Token(context.Background())
	require.Error(t, err)
}

func TestAuthorize(t *testing.T) {
	got, err := Authorize(context.Background(), "wss://gw.example.com/v1/stream", Static("abc"))
	require.NoError(t, err)
	assert.Equal(t, "wss://gw.example.com/v1/stream?token=abc", got)
}

func TestAuthorizePreservesQuery(t *testing.T) {
	got, err := Authorize(context.Background(), "wss://gw.example.com/v1/stream?session=s1", Static("a b"))
	require.NoError(t, err)
	assert.Equal(t, "wss://gw.example.com/v1/stream?session=s1&token=a+b", got)
}

func TestAuthorizeNilSource(t *testing.T) {
	got, err := Authorize(context.Background(), "wss://gw.example.com/v1/stream", nil)
	require.NoError(t, err)
	assert.Equal(t, "wss://gw.example.com/v1/stream", got)
}
