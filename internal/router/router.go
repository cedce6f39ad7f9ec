package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/ticketbari/ticketbari-api/internal/handler"
	"github.com/ticketbari/ticketbari-api/internal/middleware"
	"github.com/ticketbari/ticketbari-api/internal/model"
)

// Handlers bundles the handler set the router wires up.
type Handlers struct {
	Users        *handler.UserHandler
	Tickets      *handler.TicketHandler
	Bookings     *handler.BookingHandler
	Payments     *handler.PaymentHandler
	Transactions *handler.TransactionHandler
}

// RegisterRoutes registers routes that require no authentication at
// all.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterPublic registers the unauthenticated browse endpoints.
// These are the highest-traffic routes, so they run behind the Redis
// response cache and the token-bucket rate limiter.
func RegisterPublic(e *echo.Echo, t *handler.TicketHandler, mws ...echo.MiddlewareFunc) {
	g := e.Group("/v1/tickets", mws...)
	g.GET("", t.Browse)
	g.GET("/advertised", t.Advertised)
	g.GET("/latest", t.Latest)
	g.GET("/:id", t.Get)
}

// RegisterAPI registers the authenticated surface.  Every route runs
// behind JWT validation; all but the login upsert additionally
// resolve the account so role and fraud state are enforced from the
// database, not from token claims.
func RegisterAPI(e *echo.Echo, h Handlers, jwtSecret string, users middleware.UserResolver) {
	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))

	// The login upsert is the one route that must work before an
	// account row exists, so it runs behind JWT only.
	auth.POST("/users", h.Users.Upsert)

	api := auth.Group("")
	api.Use(middleware.ResolveActor(users))

	anyRole := middleware.Authorize(middleware.Requirement{})
	writeGate := middleware.Authorize(middleware.Requirement{FraudGate: true})
	vendor := middleware.Authorize(middleware.Requirement{
		Roles:     []model.Role{model.RoleVendor, model.RoleAdmin},
		FraudGate: true,
	})
	// The booking decision belongs to the vendor the booking targets;
	// admins do not get a bypass here.
	vendorOnly := middleware.Authorize(middleware.Requirement{
		Roles:     []model.Role{model.RoleVendor},
		FraudGate: true,
	})
	admin := middleware.Authorize(middleware.Requirement{
		Roles: []model.Role{model.RoleAdmin},
	})

	// Accounts.
	api.GET("/users/me", h.Users.Me, anyRole)
	api.GET("/users", h.Users.ListAll, admin)
	api.PATCH("/users/:id/role", h.Users.SetRole, admin)
	api.POST("/users/:id/fraud", h.Users.FlagFraud, admin)

	// Vendor listing management and admin moderation.
	api.POST("/tickets", h.Tickets.Create, vendor)
	api.PUT("/tickets/:id", h.Tickets.Update, vendor)
	api.DELETE("/tickets/:id", h.Tickets.Delete, vendor)
	api.GET("/tickets/mine", h.Tickets.Mine, vendor)
	api.GET("/tickets/all", h.Tickets.ListAll, admin)
	api.PATCH("/tickets/:id/verification", h.Tickets.Moderate, admin)
	api.PATCH("/tickets/:id/advertise", h.Tickets.Advertise, admin)

	// Booking lifecycle.
	api.POST("/bookings", h.Bookings.Create, writeGate)
	api.GET("/bookings/mine", h.Bookings.Mine, anyRole)
	api.GET("/bookings/requests", h.Bookings.Requests, vendor)
	api.GET("/bookings/all", h.Bookings.ListAll, admin)
	api.GET("/bookings/:id", h.Bookings.Get, anyRole)
	api.PATCH("/bookings/:id/status", h.Bookings.Decide, vendorOnly)
	api.DELETE("/bookings/:id", h.Bookings.Cancel, anyRole)

	// Payment capture and revenue.
	api.POST("/payments/intent", h.Payments.CreateIntent, writeGate)
	api.POST("/payments/confirm", h.Payments.Confirm, writeGate)
	api.POST("/payments/manual", h.Payments.Manual, writeGate)
	api.POST("/payments/direct", h.Payments.Direct, writeGate)
	api.GET("/payments/revenue", h.Payments.Revenue, vendor)

	// Ledger views.
	api.GET("/transactions", h.Transactions.Mine, anyRole)
	api.GET("/transactions/stats", h.Transactions.Stats, anyRole)
	api.GET("/transactions/sales", h.Transactions.Sales, vendor)
	api.GET("/transactions/:id", h.Transactions.Get, anyRole)
}
