package auth

import (
	"context"
	"errors"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"mycogenesis/internal/config"
)

// ErrOIDCDisabled is returned when the admin login is not configured.
var ErrOIDCDisabled = errors.New("oidc login is disabled")

// Authenticator is a struct that holds the OIDC provider, OAuth2 config, and ID token verifier.
type Authenticator struct {
	*oidc.Provider
	*oauth2.Config
	*oidc.IDTokenVerifier
}

// Claims are the ID token claims the site reads.
type Claims struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
}

// NewAuthenticator creates a new Authenticator by setting up the OIDC provider
// and OAuth2 configuration based on the application's config.
func NewAuthenticator(ctx context.Context, cfg config.OIDCConfig) (*Authenticator, error) {
	if !cfg.Enabled {
		return nil, ErrOIDCDisabled
	}
	provider, err := oidc.NewProvider(ctx, cfg.IssuerURL)
	if err != nil {
		return nil, err
	}

	verifier := provider.Verifier(&oidc.Config{ClientID: cfg.ClientID})

	oauth2Config := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Endpoint:     provider.Endpoint(),
		Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
	}

	return &Authenticator{
		Provider:        provider,
		Config:          oauth2Config,
		IDTokenVerifier: verifier,
	}, nil
}

// VerifyCode exchanges an authorization code and verifies the returned ID
// token. It returns the token subject and its claims.
func (a *Authenticator) VerifyCode(ctx context.Context, code string) (string, Claims, error) {
	var claims Claims
	token, err := a.Exchange(ctx, code)
	if err != nil {
		return "", claims, err
	}
	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		return "", claims, errors.New("no id_token field in oauth2 token")
	}
	idToken, err := a.Verify(ctx, rawIDToken)
	if err != nil {
		return "", claims, err
	}
	if err := idToken.Claims(&claims); err != nil {
		return "", claims, err
	}
	return idToken.Subject, claims, nil
}
