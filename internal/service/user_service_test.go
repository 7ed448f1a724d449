package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/identity-service/internal/domain"
	"github.com/spec-kit/identity-service/internal/events"
	"github.com/spec-kit/identity-service/internal/session"
)

type mockUserRepo struct {
	createFn             func(ctx context.Context, user *domain.User) error
	updateFn             func(ctx context.Context, user *domain.User) error
	getByIDFn            func(ctx context.Context, id uuid.UUID) (*domain.User, error)
	getByIssuerSubjectFn func(ctx context.Context, issuer, subject string) (*domain.User, error)
	getByNameFn          func(ctx context.Context, nameSpace, name string) (*domain.User, error)
	listFn               func(ctx context.Context, nameSpace string) ([]*domain.User, error)
	removeFn             func(ctx context.Context, id uuid.UUID) error
}

func (m *mockUserRepo) Create(ctx context.Context, user *domain.User) error {
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	return nil
}

func (m *mockUserRepo) Update(ctx context.Context, user *domain.User) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, user)
	}
	return nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, pgx.ErrNoRows
}

func (m *mockUserRepo) GetByIssuerSubject(ctx context.Context, issuer, subject string) (*domain.User, error) {
	if m.getByIssuerSubjectFn != nil {
		return m.getByIssuerSubjectFn(ctx, issuer, subject)
	}
	return nil, pgx.ErrNoRows
}

func (m *mockUserRepo) GetByName(ctx context.Context, nameSpace, name string) (*domain.User, error) {
	if m.getByNameFn != nil {
		return m.getByNameFn(ctx, nameSpace, name)
	}
	return nil, pgx.ErrNoRows
}

func (m *mockUserRepo) List(ctx context.Context, nameSpace string) ([]*domain.User, error) {
	if m.listFn != nil {
		return m.listFn(ctx, nameSpace)
	}
	return nil, nil
}

func (m *mockUserRepo) Remove(ctx context.Context, id uuid.UUID) error {
	if m.removeFn != nil {
		return m.removeFn(ctx, id)
	}
	return nil
}

func storedUser() *domain.User {
	return domain.NewUser(domain.Identity{
		Issuer:            "https://idp.example.com",
		Subject:           "subject-1",
		PreferredUsername: "alice",
	}, "idp.example.com", "alice")
}

func TestCreateFromIdentityReturnsExistingUser(t *testing.T) {
	existing := storedUser()
	repo := &mockUserRepo{
		getByIssuerSubjectFn: func(_ context.Context, issuer, subject string) (*domain.User, error) {
			assert.Equal(t, existing.Issuer, issuer)
			assert.Equal(t, existing.Subject, subject)
			return existing, nil
		},
		createFn: func(_ context.Context, _ *domain.User) error {
			t.Fatal("must not create when a binding exists")
			return nil
		},
	}
	svc := NewUserService(repo, events.NewInMemoryDispatcher(), zap.NewNop())

	user, err := svc.CreateFromIdentity(context.Background(), domain.Identity{
		Issuer:  existing.Issuer,
		Subject: existing.Subject,
	})
	require.NoError(t, err)
	assert.Same(t, existing, user)
}

func TestCreateFromIdentityProvisionsNewUser(t *testing.T) {
	var created *domain.User
	repo := &mockUserRepo{
		createFn: func(_ context.Context, user *domain.User) error {
			created = user
			return nil
		},
	}
	svc := NewUserService(repo, events.NewInMemoryDispatcher(), zap.NewNop())

	user, err := svc.CreateFromIdentity(context.Background(), domain.Identity{
		Issuer:            "https://idp.example.com/realms/main",
		Subject:           "subject-9",
		PreferredUsername: "bob",
		Email:             "bob@example.com",
	})
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Same(t, created, user)
	assert.Equal(t, "idp.example.com", user.NameSpace)
	assert.Equal(t, "bob", user.Name)
	assert.Equal(t, "bob@example.com", user.Email)
}

func TestGetByNameResolvesNamespaceScopedName(t *testing.T) {
	existing := storedUser()
	repo := &mockUserRepo{
		getByNameFn: func(_ context.Context, nameSpace, name string) (*domain.User, error) {
			if nameSpace == existing.NameSpace && name == existing.Name {
				return existing, nil
			}
			return nil, pgx.ErrNoRows
		},
	}
	svc := NewUserService(repo, events.NewInMemoryDispatcher(), zap.NewNop())

	user, err := svc.GetByName(context.Background(), existing.NameSpace, existing.Name)
	require.NoError(t, err)
	assert.Same(t, existing, user)

	_, err = svc.GetByName(context.Background(), existing.NameSpace, "nobody")
	assert.ErrorIs(t, err, pgx.ErrNoRows)
}

func TestDetainPersistsThroughSyncListener(t *testing.T) {
	user := storedUser()
	updates := 0
	repo := &mockUserRepo{
		getByIDFn: func(_ context.Context, id uuid.UUID) (*domain.User, error) {
			assert.Equal(t, user.ID, id)
			return user, nil
		},
		updateFn: func(_ context.Context, updated *domain.User) error {
			updates++
			assert.Same(t, user, updated)
			return nil
		},
	}
	dispatcher := events.NewInMemoryDispatcher()
	NewSyncService(repo, dispatcher, zap.NewNop()).RegisterHandlers()
	svc := NewUserService(repo, dispatcher, zap.NewNop())

	got, err := svc.Detain(context.Background(), user.ID, 14)
	require.NoError(t, err)
	assert.True(t, got.IsDetained())
	assert.Equal(t, 1, updates, "sync listener mirrors exactly one event")
}

func TestDetainRejectsInvalidDays(t *testing.T) {
	user := storedUser()
	repo := &mockUserRepo{
		getByIDFn: func(_ context.Context, _ uuid.UUID) (*domain.User, error) { return user, nil },
		updateFn: func(_ context.Context, _ *domain.User) error {
			t.Fatal("no persistence for rejected transitions")
			return nil
		},
	}
	dispatcher := events.NewInMemoryDispatcher()
	NewSyncService(repo, dispatcher, zap.NewNop()).RegisterHandlers()
	svc := NewUserService(repo, dispatcher, zap.NewNop())

	_, err := svc.Detain(context.Background(), user.ID, 2000)
	assert.Error(t, err)
	assert.False(t, user.IsDetained())
}

func TestBanForcesLogoutThroughPresenceListener(t *testing.T) {
	user := storedUser()
	repo := &mockUserRepo{
		getByIDFn: func(_ context.Context, _ uuid.UUID) (*domain.User, error) { return user, nil },
	}
	dispatcher := events.NewInMemoryDispatcher()
	cache := session.NewLoginCache(time.Hour)
	NewPresenceService(nil, cache, dispatcher, zap.NewNop()).RegisterHandlers()
	svc := NewUserService(repo, dispatcher, zap.NewNop())

	cache.Login(user.ID)
	require.True(t, cache.IsLoggedIn(user.ID))

	_, err := svc.Ban(context.Background(), user.ID)
	require.NoError(t, err)
	assert.False(t, cache.IsLoggedIn(user.ID), "banned users are logged out immediately")
}

func TestReleaseAfterBanLeavesUserLoggedOutButActive(t *testing.T) {
	user := storedUser()
	repo := &mockUserRepo{
		getByIDFn: func(_ context.Context, _ uuid.UUID) (*domain.User, error) { return user, nil },
	}
	dispatcher := events.NewInMemoryDispatcher()
	cache := session.NewLoginCache(time.Hour)
	NewPresenceService(nil, cache, dispatcher, zap.NewNop()).RegisterHandlers()
	svc := NewUserService(repo, dispatcher, zap.NewNop())

	cache.Login(user.ID)
	_, err := svc.Ban(context.Background(), user.ID)
	require.NoError(t, err)
	_, err = svc.Release(context.Background(), user.ID)
	require.NoError(t, err)

	assert.False(t, user.IsInactive())
	assert.False(t, cache.IsLoggedIn(user.ID), "release does not restore a session")
}

func TestStateClassification(t *testing.T) {
	user := storedUser()
	repo := &mockUserRepo{
		getByIDFn: func(_ context.Context, _ uuid.UUID) (*domain.User, error) { return user, nil },
	}
	dispatcher := events.NewInMemoryDispatcher()
	svc := NewUserService(repo, dispatcher, zap.NewNop())

	state, err := svc.State(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StateActive, state.Kind())

	_, err = svc.Delete(context.Background(), user.ID)
	require.NoError(t, err)
	state, err = svc.State(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StateDeleted, state.Kind())
}

func TestNamespaceFromIssuer(t *testing.T) {
	cases := map[string]string{
		"https://idp.example.com/realms/main": "idp.example.com",
		"http://localhost:8081":               "localhost:8081",
		"":                                    "default",
	}
	for issuer, expected := range cases {
		assert.Equal(t, expected, namespaceFromIssuer(issuer), "issuer=%q", issuer)
	}
}
