package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/spec-kit/identity-service/internal/api/dto"
	"github.com/spec-kit/identity-service/internal/auth"
	"github.com/spec-kit/identity-service/internal/domain"
	"github.com/spec-kit/identity-service/internal/observability"
	"github.com/spec-kit/identity-service/internal/service"
	"github.com/spec-kit/identity-service/internal/session"
	apperrors "github.com/spec-kit/identity-service/pkg/util"
)

// AuthHandler exposes the token exchange and session endpoints.
type AuthHandler struct {
	provider IdentityProvider
	users    *service.UserService
	tokens   *auth.TokenManager
	cache    *session.LoginCache
}

// IdentityProvider is the subset of the OIDC collaborator the handler needs.
type IdentityProvider = auth.IdentityProvider

// NewAuthHandler constructs handler.
func NewAuthHandler(provider IdentityProvider, users *service.UserService, tokens *auth.TokenManager, cache *session.LoginCache) *AuthHandler {
	return &AuthHandler{provider: provider, users: users, tokens: tokens, cache: cache}
}

// ExchangeToken handles POST /auth/token: a validated external id_token is
// traded for an internal access token. Login activity is recorded at the
// token's issue time.
func (h *AuthHandler) ExchangeToken(c *fiber.Ctx) error {
	var req dto.TokenExchangeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.IDToken == "" {
		return fiber.NewError(http.StatusBadRequest, "id_token required")
	}

	identity, err := h.provider.VerifyIDToken(c.Context(), req.IDToken)
	if err != nil {
		return apperrors.NewUnauthorized("invalid id token")
	}

	return h.issueToken(c, *identity)
}

// Authorize handles GET /auth/authorize: redirects to the provider's
// authorization endpoint for the code flow.
func (h *AuthHandler) Authorize(c *fiber.Ctx) error {
	state := uuid.NewString()
	return c.Redirect(h.provider.AuthCodeURL(state), http.StatusFound)
}

// Callback handles GET /auth/callback: redeems the authorization code.
func (h *AuthHandler) Callback(c *fiber.Ctx) error {
	code := c.Query("code")
	if code == "" {
		return fiber.NewError(http.StatusBadRequest, "code required")
	}

	identity, err := h.provider.Exchange(c.Context(), code)
	if err != nil {
		return apperrors.NewUnauthorized("code exchange failed")
	}

	return h.issueToken(c, *identity)
}

// Logout handles POST /auth/logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("not authenticated")
	}

	h.cache.Logout(principal.User.ID)
	observability.Logouts.Inc()
	return c.SendStatus(http.StatusNoContent)
}

func (h *AuthHandler) issueToken(c *fiber.Ctx, identity domain.Identity) error {
	user, err := h.users.CreateFromIdentity(c.Context(), identity)
	if err != nil {
		return apperrors.MapError(err)
	}
	if err := user.CheckInactive(); err != nil {
		return apperrors.MapError(err)
	}

	token, exp, err := h.tokens.GenerateToken(user.ID, user.NameSpace, user.Name, user.Authorities)
	if err != nil {
		return apperrors.MapError(err)
	}

	// record login activity at the moment the user authenticated with the
	// provider, so an id_token redeemed long after issue does not revive a
	// session the inactivity limit already closed
	if identity.AuthenticatedAt.IsZero() {
		h.cache.Login(user.ID)
	} else {
		h.cache.LoginAt(user.ID, identity.AuthenticatedAt)
	}
	observability.Logins.Inc()

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"user": dto.FromUser(user),
			"auth": dto.AuthResponse{Token: token, ExpiresAt: exp},
		},
	})
}
