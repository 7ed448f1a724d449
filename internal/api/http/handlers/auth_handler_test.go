package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/identity-service/internal/auth"
	"github.com/spec-kit/identity-service/internal/domain"
	"github.com/spec-kit/identity-service/internal/events"
	"github.com/spec-kit/identity-service/internal/service"
	"github.com/spec-kit/identity-service/internal/session"
	apperrors "github.com/spec-kit/identity-service/pkg/util"
)

type stubProvider struct {
	identity *domain.Identity
}

func (s *stubProvider) VerifyIDToken(ctx context.Context, rawIDToken string) (*domain.Identity, error) {
	return s.identity, nil
}

func (s *stubProvider) AuthCodeURL(state string) string { return "https://idp.example.com/authorize" }

func (s *stubProvider) Exchange(ctx context.Context, code string) (*domain.Identity, error) {
	return s.identity, nil
}

type fixedUserRepo struct {
	user *domain.User
}

func (r *fixedUserRepo) Create(ctx context.Context, user *domain.User) error { return nil }
func (r *fixedUserRepo) Update(ctx context.Context, user *domain.User) error { return nil }

func (r *fixedUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if r.user != nil && r.user.ID == id {
		return r.user, nil
	}
	return nil, pgx.ErrNoRows
}

func (r *fixedUserRepo) GetByIssuerSubject(ctx context.Context, issuer, subject string) (*domain.User, error) {
	if r.user != nil && r.user.Issuer == issuer && r.user.Subject == subject {
		return r.user, nil
	}
	return nil, pgx.ErrNoRows
}

func (r *fixedUserRepo) GetByName(ctx context.Context, nameSpace, name string) (*domain.User, error) {
	return nil, pgx.ErrNoRows
}

func (r *fixedUserRepo) List(ctx context.Context, nameSpace string) ([]*domain.User, error) {
	return nil, nil
}

func (r *fixedUserRepo) Remove(ctx context.Context, id uuid.UUID) error { return nil }

func newExchangeApp(user *domain.User, identity *domain.Identity, cache *session.LoginCache) *fiber.App {
	users := service.NewUserService(&fixedUserRepo{user: user}, events.NewInMemoryDispatcher(), zap.NewNop())
	tokens := auth.NewTokenManager("test-secret", 60)
	handler := NewAuthHandler(&stubProvider{identity: identity}, users, tokens, cache)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			de := apperrors.ToDomainError(err)
			return c.Status(de.HTTPStatus).JSON(fiber.Map{"error": fiber.Map{"code": de.Code}})
		},
	})
	app.Post("/auth/token", handler.ExchangeToken)
	return app
}

func exchangeRequest(t *testing.T) *http.Request {
	t.Helper()
	body, err := json.Marshal(fiber.Map{"id_token": "external-token"})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/auth/token", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestExchangeTokenRecordsLoginAtAuthenticationTime(t *testing.T) {
	user := domain.NewUser(domain.Identity{Issuer: "https://idp.example.com", Subject: "alice"}, "acme", "alice")
	identity := &domain.Identity{
		Issuer:          user.Issuer,
		Subject:         user.Subject,
		AuthenticatedAt: time.Now().Add(-time.Minute),
	}
	cache := session.NewLoginCache(0)

	app := newExchangeApp(user, identity, cache)
	resp, err := app.Test(exchangeRequest(t))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, cache.IsLoggedIn(user.ID))
}

// An id_token redeemed long after the provider issued it must not open a
// session the inactivity limit would already have closed.
func TestExchangeTokenDoesNotOpenStaleSession(t *testing.T) {
	user := domain.NewUser(domain.Identity{Issuer: "https://idp.example.com", Subject: "alice"}, "acme", "alice")
	identity := &domain.Identity{
		Issuer:          user.Issuer,
		Subject:         user.Subject,
		AuthenticatedAt: time.Now().Add(-2 * time.Hour),
	}
	cache := session.NewLoginCache(0)

	app := newExchangeApp(user, identity, cache)
	resp, err := app.Test(exchangeRequest(t))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, cache.IsLoggedIn(user.ID))
}

func TestExchangeTokenRefusesBannedUser(t *testing.T) {
	user := domain.NewUser(domain.Identity{Issuer: "https://idp.example.com", Subject: "mallory"}, "acme", "mallory")
	user.Ban(context.Background(), nil)
	identity := &domain.Identity{Issuer: user.Issuer, Subject: user.Subject}
	cache := session.NewLoginCache(0)

	app := newExchangeApp(user, identity, cache)
	resp, err := app.Test(exchangeRequest(t))
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.False(t, cache.IsLoggedIn(user.ID))
}
