package auth

import (
	"context"
	"errors"
	"fmt"

	oidc "github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"github.com/spec-kit/identity-service/internal/config"
	"github.com/spec-kit/identity-service/internal/domain"
)

// IdentityProvider is the collaborator that turns validated external tokens
// into identity tuples.
type IdentityProvider interface {
	VerifyIDToken(ctx context.Context, rawIDToken string) (*domain.Identity, error)
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*domain.Identity, error)
}

// OIDCProvider implements IdentityProvider against a discovered OIDC issuer.
type OIDCProvider struct {
	issuer   string
	provider *oidc.Provider
	verifier *oidc.IDTokenVerifier
	oauth    oauth2.Config
}

// NewOIDCProvider discovers the issuer and prepares verifier and code-flow
// configuration.
func NewOIDCProvider(ctx context.Context, cfg config.OIDCConfig) (*OIDCProvider, error) {
	if cfg.IssuerURL == "" {
		return nil, errors.New("OIDC_ISSUER_URL not configured")
	}

	provider, err := oidc.NewProvider(ctx, cfg.IssuerURL)
	if err != nil {
		return nil, fmt.Errorf("discover oidc issuer: %w", err)
	}

	return &OIDCProvider{
		issuer:   cfg.IssuerURL,
		provider: provider,
		verifier: provider.Verifier(&oidc.Config{ClientID: cfg.ClientID}),
		oauth: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       cfg.Scopes,
		},
	}, nil
}

// VerifyIDToken validates the raw token against the issuer and extracts the
// identity tuple.
func (p *OIDCProvider) VerifyIDToken(ctx context.Context, rawIDToken string) (*domain.Identity, error) {
	idToken, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("verify id token: %w", err)
	}

	var claims struct {
		PreferredUsername string `json:"preferred_username"`
		Email             string `json:"email"`
		PhoneNumber       string `json:"phone_number"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("decode id token claims: %w", err)
	}

	return &domain.Identity{
		Issuer:            idToken.Issuer,
		Subject:           idToken.Subject,
		PreferredUsername: claims.PreferredUsername,
		Email:             claims.Email,
		Phone:             claims.PhoneNumber,
		AuthenticatedAt:   idToken.IssuedAt,
	}, nil
}

// AuthCodeURL returns the provider's authorization endpoint URL for the
// code flow.
func (p *OIDCProvider) AuthCodeURL(state string) string {
	return p.oauth.AuthCodeURL(state)
}

// Exchange redeems an authorization code and verifies the id_token it
// carries.
func (p *OIDCProvider) Exchange(ctx context.Context, code string) (*domain.Identity, error) {
	token, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, errors.New("token response missing id_token")
	}
	return p.VerifyIDToken(ctx, rawIDToken)
}
