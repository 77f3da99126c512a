package types

import (
	"github.com/google/uuid"

	"github.com/reviewpromax/reviewpromax-backend/pkg/enums"
)

// Caller identifies the authenticated principal behind a request. Services
// receive it explicitly instead of digging through context values.
type Caller struct {
	UserID uuid.UUID
	Role   enums.UserRole
}

// IsAdmin reports whether the caller holds the admin role.
func (c Caller) IsAdmin() bool {
	return c.Role == enums.UserRoleAdmin
}

// IsZero reports whether the caller is unauthenticated.
func (c Caller) IsZero() bool {
	return c.UserID == uuid.Nil
}
