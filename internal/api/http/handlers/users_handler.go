package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/spec-kit/identity-service/internal/api/dto"
	"github.com/spec-kit/identity-service/internal/service"
	apperrors "github.com/spec-kit/identity-service/pkg/util"
)

// UsersHandler exposes user lookup and lifecycle administration.
type UsersHandler struct {
	users *service.UserService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(users *service.UserService) *UsersHandler {
	return &UsersHandler{users: users}
}

// List handles GET /users?namespace=...
func (h *UsersHandler) List(c *fiber.Ctx) error {
	nameSpace := c.Query("namespace")
	if nameSpace == "" {
		return fiber.NewError(http.StatusBadRequest, "namespace required")
	}

	users, err := h.users.List(c.Context(), nameSpace)
	if err != nil {
		return apperrors.MapError(err)
	}

	out := make([]dto.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, dto.FromUser(u))
	}
	return c.JSON(fiber.Map{"data": out})
}

// Lookup handles GET /users/lookup?namespace=...&name=... and resolves a
// user by its namespace-scoped name.
func (h *UsersHandler) Lookup(c *fiber.Ctx) error {
	nameSpace := c.Query("namespace")
	name := c.Query("name")
	if nameSpace == "" || name == "" {
		return fiber.NewError(http.StatusBadRequest, "namespace and name required")
	}

	user, err := h.users.GetByName(c.Context(), nameSpace, name)
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"data": dto.FromUser(user)})
}

// Get handles GET /users/:id.
func (h *UsersHandler) Get(c *fiber.Ctx) error {
	id, err := parseUserID(c)
	if err != nil {
		return err
	}

	user, err := h.users.Get(c.Context(), id)
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"data": dto.FromUser(user)})
}

// GetState handles GET /users/:id/state.
func (h *UsersHandler) GetState(c *fiber.Ctx) error {
	id, err := parseUserID(c)
	if err != nil {
		return err
	}

	state, err := h.users.State(c.Context(), id)
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"state": string(state.Kind())}})
}

// Detain handles POST /users/:id/detain.
func (h *UsersHandler) Detain(c *fiber.Ctx) error {
	id, err := parseUserID(c)
	if err != nil {
		return err
	}

	var req dto.DetainRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	user, err := h.users.Detain(c.Context(), id, req.Days)
	if err != nil {
		if user != nil {
			// range violation from the transition itself
			return apperrors.NewValidationError(err.Error(), map[string]any{"days": req.Days})
		}
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"data": dto.FromUser(user)})
}

// Release handles POST /users/:id/release.
func (h *UsersHandler) Release(c *fiber.Ctx) error {
	id, err := parseUserID(c)
	if err != nil {
		return err
	}

	user, err := h.users.Release(c.Context(), id)
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"data": dto.FromUser(user)})
}

// Ban handles POST /users/:id/ban.
func (h *UsersHandler) Ban(c *fiber.Ctx) error {
	id, err := parseUserID(c)
	if err != nil {
		return err
	}

	user, err := h.users.Ban(c.Context(), id)
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"data": dto.FromUser(user)})
}

// Delete handles DELETE /users/:id (soft delete).
func (h *UsersHandler) Delete(c *fiber.Ctx) error {
	id, err := parseUserID(c)
	if err != nil {
		return err
	}

	user, err := h.users.Delete(c.Context(), id)
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"data": dto.FromUser(user)})
}

// Undelete handles POST /users/:id/undelete.
func (h *UsersHandler) Undelete(c *fiber.Ctx) error {
	id, err := parseUserID(c)
	if err != nil {
		return err
	}

	user, err := h.users.Undelete(c.Context(), id)
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"data": dto.FromUser(user)})
}

// Purge handles DELETE /users/:id/purge (hard remove).
func (h *UsersHandler) Purge(c *fiber.Ctx) error {
	id, err := parseUserID(c)
	if err != nil {
		return err
	}

	if err := h.users.Remove(c.Context(), id); err != nil {
		return apperrors.MapError(err)
	}
	return c.SendStatus(http.StatusNoContent)
}

func parseUserID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, fiber.NewError(http.StatusBadRequest, "invalid user id")
	}
	return id, nil
}
