package model

import "time"

// Role enumerates the access levels a user can hold.  The role is
// resolved by the identity gate and trusted by the rest of the
// application; operations never re-verify identity themselves.
type Role string

const (
	RoleUser   Role = "user"   // regular customer who books tickets
	RoleVendor Role = "vendor" // lists tickets and approves bookings
	RoleAdmin  Role = "admin"  // moderates tickets and users
)

// ValidRole reports whether s is one of the known roles.
func ValidRole(s string) bool {
	switch Role(s) {
	case RoleUser, RoleVendor, RoleAdmin:
		return true
	}
	return false
}

// User represents an application user record as stored in the
// users table.  Identity federation happens outside this service;
// the row only carries the resolved profile plus the role and
// fraud flag that authorization decisions are based on.
//
// Fields:
//  ID        – primary key identifier.
//  Name      – display name.
//  Email     – unique email address.
//  PhotoURL  – optional avatar URL.
//  Role      – access level (user, vendor, admin).
//  FraudFlag – set by admins; fraud-flagged vendors cannot list
//              or update tickets and their listings are hidden.
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type User struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	PhotoURL  string    `json:"photo_url,omitempty"`
	Role      Role      `json:"role"`
	FraudFlag bool      `json:"fraud_flag"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
