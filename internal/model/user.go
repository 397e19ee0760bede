package model

import (
	"time"

	"github.com/google/uuid"
)

// Role decides which views and operations a signed-in user gets.
type Role string

const (
	RoleCouple   Role = "couple"
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "employee"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleCouple, RoleAdmin, RoleEmployee:
		return true
	}
	return false
}

// User is the stored account row, credentials included.
type User struct {
	ID        uuid.UUID `db:"id"`
	Email     string    `db:"email"`
	PassHash  []byte    `db:"pass_hash"`
	FullName  string    `db:"full_name"`
	Phone     string    `db:"phone"`
	Role      Role      `db:"role"`
	AvatarURL *string   `db:"avatar_url"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// UserProfile is the credential-free view handed to the session store
// and serialized to clients.
type UserProfile struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Phone     string    `json:"phone"`
	Role      Role      `json:"role"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
}

func (u *User) Profile() UserProfile {
	return UserProfile{
		ID:        u.ID,
		Email:     u.Email,
		FullName:  u.FullName,
		Phone:     u.Phone,
		Role:      u.Role,
		AvatarURL: u.AvatarURL,
	}
}

type UpdateProfileParams struct {
	FullName  *string
	Phone     *string
	AvatarURL *string
}
