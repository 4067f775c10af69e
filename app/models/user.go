package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Role gates access to admin-only routes. Stored as an int to match the
// wire contract: 0 = standard customer, 1 = admin.
type Role int

const (
	RoleStandard Role = 0
	RoleAdmin    Role = 1
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleStandard || r == RoleAdmin
}

// User is a registered account. The password field holds a bcrypt hash
// and is never serialised to JSON.
type User struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name     string             `bson:"name"          json:"name"`
	Email    string             `bson:"email"         json:"email"`
	Password string             `bson:"password"      json:"-"`
	Role     Role               `bson:"role"          json:"role"`
}
