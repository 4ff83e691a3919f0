// Package auth supplies bearer tokens for gateway connections.
package auth

import (
	"context"
	"fmt"
	"net/url"
	"os"
)

// TokenSource yields the credential appended to the connection target. The
// source is consulted on every dial so rotated tokens are picked up across
// reconnects.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Static is a fixed token.
type Static string

func (s Static) Token(context.Context) (string, error) {
	if s == "" {
		return "", fmt.Errorf("empty static token")
	}
	return string(s), nil
}

// EnvSource reads the token from an environment variable on each call.
type EnvSource struct {
	// Name is the environment variable holding the token.
	Name string
}

func (e EnvSource) Token(context.Context) (string, error) {
	token := os.Getenv(e.Name)
	if token == "" {
		return "", fmt.Errorf("environment variable %s is empty or unset", e.Name)
	}
	return token, nil
}

// Authorize appends the source's token to target as a query parameter. A nil
// source returns target unchanged.
func Authorize(ctx context.Context, target string, src TokenSource) (string, error) {
	if src == nil {
		return target, nil
	}

	token, err := src.Token(ctx)
	if err != nil {
		return "", fmt.Errorf("fetch token: %w", err)
	}

	u, err := url.Parse(target)
	if err != nil {
		return "", fmt.Errorf("parse target: %w", err)
	}

	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()

	return u.String(), nil
}
