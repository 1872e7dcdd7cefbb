package models

import "time"

// User is keyed by username, which doubles as the document _id.
type User struct {
	Username       string    `bson:"_id" json:"username"`
	Email          string    `bson:"email" json:"email"`
	HashedPassword string    `bson:"hashed_password" json:"-"`
	CreatedAt      time.Time `bson:"created_at" json:"created_at"`
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Identity is what a bearer token proves about its holder.
type Identity struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
