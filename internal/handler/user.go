package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ticketbari/ticketbari-api/internal/service"
)

// UserHandler exposes account endpoints: the login upsert, the
// current profile, and the admin role and fraud controls.
type UserHandler struct {
	users *service.UserService
}

// NewUserHandler wires a UserHandler.
func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// Upsert records a federated login.  The profile comes from the
// verified token claims set by the JWT middleware, never from the
// request body, so a client cannot impersonate another account.
func (h *UserHandler) Upsert(c echo.Context) error {
	email, _ := c.Get("email").(string)
	name, _ := c.Get("name").(string)
	photo, _ := c.Get("photo_url").(string)
	if name == "" {
		name = email
	}
	u, err := h.users.Upsert(c.Request().Context(), name, email, photo)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, u)
}

// Me returns the authenticated account.
func (h *UserHandler) Me(c echo.Context) error {
	a, ok := actor(c)
	if !ok {
		return nil
	}
	u, err := h.users.Get(c.Request().Context(), a.ID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, u)
}

// ListAll returns every account.  Admin only.
func (h *UserHandler) ListAll(c echo.Context) error {
	users, err := h.users.ListAll(c.Request().Context())
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"users": users})
}

type setRoleRequest struct {
	Role string `json:"role"`
}

// SetRole changes an account's role.  Admin only.
func (h *UserHandler) SetRole(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return writeServiceError(c, err)
	}
	var req setRoleRequest
	if err := c.Bind(&req); err != nil {
		return writeServiceError(c, service.ErrValidation)
	}
	u, err := h.users.SetRole(c.Request().Context(), id, req.Role)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, u)
}

// FlagFraud marks an account fraudulent and hides its listings.
// Admin only.
func (h *UserHandler) FlagFraud(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return writeServiceError(c, err)
	}
	u, err := h.users.FlagFraud(c.Request().Context(), id)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, u)
}
