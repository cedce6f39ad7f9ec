package middleware

// identity.go resolves the authenticated account behind a validated
// token.  The token only proves who the caller is; role, fraud flag
// and the numeric account id come from the database on every request.

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/ticketbari/ticketbari-api/internal/model"
	"github.com/ticketbari/ticketbari-api/internal/repository"
	"github.com/ticketbari/ticketbari-api/internal/service"
)

// UserResolver looks up an account by its normalized email.
type UserResolver interface {
	GetByEmail(ctx echo.Context, email string) (*model.User, error)
}

// userResolverFunc adapts a plain function to UserResolver.
type userResolverFunc func(c echo.Context, email string) (*model.User, error)

func (f userResolverFunc) GetByEmail(c echo.Context, email string) (*model.User, error) {
	return f(c, email)
}

// ResolverFromRepo builds a UserResolver over the user repository.
func ResolverFromRepo(users *repository.UserRepo) UserResolver {
	return userResolverFunc(func(c echo.Context, email string) (*model.User, error) {
		return users.GetByEmail(c.Request().Context(), email)
	})
}

// ResolveActor loads the account matching the token's email claim and
// stores it as a service.Actor under "actor".  Requests whose email has
// no account yet are rejected; the account is created by the login
// upsert endpoint, which runs behind JWTAuth only.
func ResolveActor(users UserResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			email, _ := c.Get("email").(string)
			if email == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing identity"})
			}
			u, err := users.GetByEmail(c, email)
			if err == repository.ErrUserNotFound {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unknown account"})
			}
			if err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
			}
			c.Set("actor", service.Actor{
				ID:    u.ID,
				Name:  u.Name,
				Email: u.Email,
				Role:  u.Role,
				Fraud: u.FraudFlag,
			})
			// Expose the id for the rate limiter key builder.
			c.Set("user_id", strconv.FormatUint(u.ID, 10))
			return next(c)
		}
	}
}

// CurrentActor returns the resolved actor for the request.
func CurrentActor(c echo.Context) (service.Actor, bool) {
	a, ok := c.Get("actor").(service.Actor)
	return a, ok
}
