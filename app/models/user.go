package models

import "go.mongodb.org/mongo-driver/bson/primitive"

const (
	RoleMember = "member"
	RoleAdmin  = "admin"
)

// User is a registered identity. A missing role means member.
type User struct {
	ID    primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name  string             `bson:"name"          json:"name"`
	Email string             `bson:"email"         json:"email"`
	Photo string             `bson:"photo,omitempty" json:"photo,omitempty"`
	Role  string             `bson:"role,omitempty"  json:"role,omitempty"`
}

// IsAdmin reports whether the stored role grants admin access.
func (u User) IsAdmin() bool { return u.Role == RoleAdmin }
