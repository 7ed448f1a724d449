package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/identity-service/internal/domain"
	"github.com/spec-kit/identity-service/internal/events"
	"github.com/spec-kit/identity-service/internal/repository"
)

// UserService coordinates user provisioning and lifecycle transitions.
// Transitions run on the entity with the shared dispatcher; persistence of
// the result is the sync listener's job, not this service's.
type UserService struct {
	users      repository.UserRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewUserService builds the service.
func NewUserService(users repository.UserRepository, dispatcher events.Dispatcher, logger *zap.Logger) *UserService {
	return &UserService{users: users, dispatcher: dispatcher, logger: logger}
}

// CreateFromIdentity locates the user bound to the identity tuple, or
// provisions a new one when none exists. The namespace is derived from the
// issuer host; the name from the preferred username.
func (s *UserService) CreateFromIdentity(ctx context.Context, identity domain.Identity) (*domain.User, error) {
	user, err := s.users.GetByIssuerSubject(ctx, identity.Issuer, identity.Subject)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	name := identity.PreferredUsername
	if name == "" {
		name = identity.Subject
	}
	user = domain.NewUser(identity, namespaceFromIssuer(identity.Issuer), name)
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("user can't be created: %w", err)
	}

	s.logger.Info("provisioned user",
		zap.String("user_id", user.ID.String()),
		zap.String("namespace", user.NameSpace),
		zap.String("name", user.Name))
	return user, nil
}

// Get loads a user by id.
func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

// GetByName loads a user by its namespace-scoped name.
func (s *UserService) GetByName(ctx context.Context, nameSpace, name string) (*domain.User, error) {
	return s.users.GetByName(ctx, nameSpace, name)
}

// List returns the users of a namespace.
func (s *UserService) List(ctx context.Context, nameSpace string) ([]*domain.User, error) {
	return s.users.List(ctx, nameSpace)
}

// Detain temporarily restricts a user for the given number of days.
func (s *UserService) Detain(ctx context.Context, id uuid.UUID, days int) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return user.Detain(ctx, s.dispatcher, days)
}

// Release returns a user to active, clearing detainment and ban.
func (s *UserService) Release(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return user.Release(ctx, s.dispatcher), nil
}

// Ban permanently restricts a user.
func (s *UserService) Ban(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return user.Ban(ctx, s.dispatcher), nil
}

// Delete soft-deletes a user.
func (s *UserService) Delete(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return user.Delete(ctx, s.dispatcher), nil
}

// Undelete clears the soft-deletion marker.
func (s *UserService) Undelete(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return user.Undelete(ctx, s.dispatcher), nil
}

// Remove hard-removes the user row. No lifecycle event: removal is a
// persistence operation, not a state transition.
func (s *UserService) Remove(ctx context.Context, id uuid.UUID) error {
	return s.users.Remove(ctx, id)
}

// State returns the classified state of a user.
func (s *UserService) State(ctx context.Context, id uuid.UUID) (domain.UserState, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return user.State(s.dispatcher), nil
}

func namespaceFromIssuer(issuer string) string {
	ns := strings.TrimPrefix(issuer, "https://")
	ns = strings.TrimPrefix(ns, "http://")
	if i := strings.IndexByte(ns, '/'); i >= 0 {
		ns = ns[:i]
	}
	if ns == "" {
		ns = "default"
	}
	return ns
}
