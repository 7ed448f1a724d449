package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/identity-service/internal/domain"
	"github.com/spec-kit/identity-service/internal/repository"
)

func TestToDomainErrorPassesThroughDomainError(t *testing.T) {
	orig := NewDomainError("SOMETHING", "it happened", http.StatusTeapot, nil)
	mapped := ToDomainError(fmt.Errorf("wrapped: %w", orig))
	assert.Same(t, orig, mapped)
}

func TestToDomainErrorMapsLifecycleGuards(t *testing.T) {
	user := domain.NewUser(domain.Identity{Issuer: "https://idp.example.com", Subject: "alice"}, "acme", "alice")

	cases := []struct {
		err  error
		code string
	}{
		{&domain.UserBannedError{User: user}, "USER_BANNED"},
		{&domain.UserDeletedError{User: user}, "USER_DELETED"},
		{&domain.UserDetainedError{User: user}, "USER_DETAINED"},
	}
	for _, tc := range cases {
		mapped := ToDomainError(tc.err)
		assert.Equal(t, tc.code, mapped.Code)
		assert.Equal(t, http.StatusForbidden, mapped.HTTPStatus)
	}
}

func TestToDomainErrorMapsMissingRows(t *testing.T) {
	mapped := ToDomainError(fmt.Errorf("load user: %w", pgx.ErrNoRows))
	assert.Equal(t, "NOT_FOUND", mapped.Code)
	assert.Equal(t, http.StatusNotFound, mapped.HTTPStatus)
}

// A lost optimistic update is a retryable conflict, not a server fault.
func TestToDomainErrorMapsConcurrentModification(t *testing.T) {
	mapped := ToDomainError(fmt.Errorf("update user: %w", repository.ErrConcurrentModification))
	require.NotNil(t, mapped)
	assert.Equal(t, "CONFLICT", mapped.Code)
	assert.Equal(t, http.StatusConflict, mapped.HTTPStatus)
	assert.True(t, errors.Is(mapped, repository.ErrConcurrentModification))
}

func TestToDomainErrorDefaultsToInternal(t *testing.T) {
	mapped := ToDomainError(errors.New("boom"))
	assert.Equal(t, "INTERNAL_ERROR", mapped.Code)
	assert.Equal(t, http.StatusInternalServerError, mapped.HTTPStatus)
}
