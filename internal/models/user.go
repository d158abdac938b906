package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID               uuid.UUID
	Email            string
	Role             string
	TokenBalance     int
	SubscriptionPlan string
	Status           string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Plan describes a purchasable token bundle.
type Plan struct {
	ID      string
	Credits int
}

// Plans mirrors the pricing page bundles.
var Plans = map[string]Plan{
	"starter": {ID: "starter", Credits: 100},
	"builder": {ID: "builder", Credits: 250},
	"pro":     {ID: "pro", Credits: 500},
}
