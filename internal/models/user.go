package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role represents the two kinds of authenticated callers.
type Role string

const (
	RoleRider   Role = "rider"
	RoleCaptain Role = "captain"
)

// IsValidRole checks if a role is valid
func IsValidRole(role Role) bool {
	return role == RoleRider || role == RoleCaptain
}

// Fullname holds a user's first and last name.
type Fullname struct {
	Firstname string `bson:"firstname" json:"firstname"`
	Lastname  string `bson:"lastname" json:"lastname"`
}

// Rider represents a passenger account.
type Rider struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Fullname     Fullname           `bson:"fullname" json:"fullname"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password_hash" json:"-"`
	SocketID     string             `bson:"socket_id,omitempty" json:"socket_id,omitempty"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}

// Claims represents the authenticated identity carried through a request.
type Claims struct {
	UserID string
	Email  string
	Role   Role
	Exp    int64
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRiderRequest represents a rider registration request
type RegisterRiderRequest struct {
	Fullname Fullname `json:"fullname"`
	Email    string   `json:"email"`
	Password string   `json:"password"`
}

// LoginResponse is returned on successful login or registration.
type LoginResponse struct {
	Token string      `json:"token"`
	User  interface{} `json:"user"`
}
