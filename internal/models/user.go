package models

import "time"

// Account roles for API access control.
const (
	AccountRoleUser  = "user"
	AccountRoleAdmin = "admin"
)

// User is an account row. PasswordHash never leaves the store layer.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}
