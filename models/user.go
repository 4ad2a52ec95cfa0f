package models

import "time"

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

type User struct {
	ID           int       `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Phone        string    `json:"phone"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Viewer is the authenticated caller as seen by services. The zero value is
// an anonymous guest.
type Viewer struct {
	UserID int
	Email  string
	Role   string
}

func (v Viewer) IsAdmin() bool {
	return v.Role == RoleAdmin
}

func (v Viewer) IsGuest() bool {
	return v.UserID == 0
}
