package middleware // reusable HTTP middleware functions

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// JWTAuth returns an Echo middleware that validates a Bearer access token
// issued by the identity provider and injects its claims into the request
// context.  The provided secret must match the one used when issuing
// tokens.  Tokens carry the federated profile (email, name, picture);
// role and fraud state live in the database and are resolved by the
// ResolveActor middleware, so a stale token can never outrank a revoked
// account.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// A valid header starts with "Bearer " followed by the JWT.
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			// Parse with HS256 and our secret; reject other signing methods.
			tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, echo.ErrUnauthorized
				}
				return []byte(secret), nil
			})
			if err != nil || !tok.Valid {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
			}

			email, _ := claims["email"].(string)
			if email == "" {
				// Some issuers put the email in the subject.
				email, _ = claims["sub"].(string)
			}
			if email == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "token missing email claim"})
			}
			name, _ := claims["name"].(string)
			photo, _ := claims["picture"].(string)

			c.Set("email", strings.ToLower(strings.TrimSpace(email)))
			c.Set("name", name)
			c.Set("photo_url", photo)
			return next(c)
		}
	}
}
