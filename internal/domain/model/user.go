package model

import (
	"time"

	"heritage-access-platform/internal/domain"

	"github.com/google/uuid"
)

type UserRole string

const (
	RoleVisitor UserRole = "visitor"
	RoleAgency  UserRole = "agency"
	RoleAdmin   UserRole = "admin"
)

// User is the platform account as this service sees it. DisplayTier is a
// denormalized hint for UI badges only; authorization always goes through
// entitlement resolution and never trusts this field.
type User struct {
	ID           string
	Email        string
	DisplayName  string
	Role         UserRole
	DisplayTier  AccessTier
	RegisteredAt time.Time
	LastActiveAt time.Time
}

func NewUser(id, email, displayName string) (*User, error) {
	if id == "" {
		id = uuid.NewString()
	}
	if email == "" {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &User{
		ID:           id,
		Email:        email,
		DisplayName:  displayName,
		Role:         RoleVisitor,
		DisplayTier:  TierFree,
		RegisteredAt: now,
		LastActiveAt: now,
	}, nil
}

func (u *User) IsZero() bool { return u == nil || u.ID == "" }
func (u *User) Touch()       { u.LastActiveAt = time.Now() }
