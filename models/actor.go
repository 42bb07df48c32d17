package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Roles.
const (
	RoleAdmin     = "admin"
	RoleModerator = "moderator"
	RoleUser      = "user"
)

// RoleAtLeast checks if role meets or exceeds the minimum required role.
func RoleAtLeast(role, minimum string) bool {
	levels := map[string]int{
		RoleAdmin:     3,
		RoleModerator: 2,
		RoleUser:      1,
	}
	return levels[role] >= levels[minimum]
}

// Actor is the authenticated caller of an operation.
type Actor struct {
	UserID primitive.ObjectID
	Role   string
}

func (a Actor) CanModerate() bool {
	return RoleAtLeast(a.Role, RoleModerator)
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}
