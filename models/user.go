// models/user.go
package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User roles.
const (
	RoleAdmin = "admin"
	RoleIT    = "it"
	RoleUser  = "user"
)

type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	BadgeNumber  string             `bson:"badgeNumber" json:"badgeNumber"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email,omitempty" json:"email,omitempty"`
	Role         string             `bson:"role" json:"role"`
	PasswordHash string             `bson:"password" json:"-"`
	Photo        string             `bson:"photo,omitempty" json:"photo,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
}

// NormalizeRole maps free-form role input to one of the three valid roles.
func NormalizeRole(role string) string {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case RoleAdmin:
		return RoleAdmin
	case RoleIT:
		return RoleIT
	default:
		return RoleUser
	}
}
