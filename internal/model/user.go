package model

import "time"

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Password  string    `json:"password"` // bcrypt hash, never the plaintext
	CreatedAt time.Time `json:"created_at"`
}
