package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ticketbari/ticketbari-api/internal/model"
)

// Requirement states what a route group demands of the resolved
// actor: an allowed role set and, for write surfaces, that the
// account is not fraud-flagged.
type Requirement struct {
	Roles     []model.Role
	FraudGate bool
}

// Authorize enforces a Requirement against the actor placed in
// context by ResolveActor.  Must run after ResolveActor.
func Authorize(req Requirement) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			actor, ok := CurrentActor(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing identity"})
			}
			if len(req.Roles) > 0 {
				allowed := false
				for _, r := range req.Roles {
					if actor.Role == r {
						allowed = true
						break
					}
				}
				if !allowed {
					return c.JSON(http.StatusForbidden, echo.Map{"error": "insufficient role"})
				}
			}
			if req.FraudGate && actor.Fraud {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "account is restricted"})
			}
			return next(c)
		}
	}
}
