package entity

import (
	"time"

	"github.com/google/uuid"
)

type UserRole string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"
)

type User struct {
	Id           uuid.UUID
	Email        string
	PasswordHash *string
	FullName     string
	Role         UserRole
	AvatarURL    *string
	LastActiveAt *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ProfileSummary is the slice of a user embedded in the Contact
// projection.
type ProfileSummary struct {
	Id        uuid.UUID
	FullName  string
	AvatarURL *string
}

func (u *User) Summary() ProfileSummary {
	return ProfileSummary{
		Id:        u.Id,
		FullName:  u.FullName,
		AvatarURL: u.AvatarURL,
	}
}
