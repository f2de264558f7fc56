package model

import "time"

// User is a registered account. Password holds a bcrypt hash; entries
// written by older versions hold plain text until their next login.
type User struct {
	Username  string    `json:"username" validate:"required,username"`
	Password  string    `json:"password" validate:"required"`
	CreatedAt time.Time `json:"created_at"`
}
