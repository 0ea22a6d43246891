package domain

import (
	"context"
	"errors"
)

var ErrUserNotFound = errors.New("user not found")

type Role string

const (
	RoleUser        Role = "USER"
	RoleInstitution Role = "INSTITUTION"
)

// Subscription plan names as stored on institution accounts.
const (
	PlanBasic    = "BASIC"
	PlanBusiness = "BUSINESS"
	PlanPremium  = "PREMIUM"
)

// UserIdentity is the denormalized slice of a user record used to
// enrich tokens and presence payloads.
type UserIdentity struct {
	Username     string `bson:"username" json:"username"`
	MobileNumber string `bson:"mobile_number" json:"mobileNumber"`
}

type UserRepository interface {
	// FindIdentity returns ErrUserNotFound when no such user exists.
	FindIdentity(ctx context.Context, userID string) (*UserIdentity, error)

	// FindRole returns ErrUserNotFound when no such user exists.
	FindRole(ctx context.Context, userID string) (Role, error)

	// FindSubscriptionPlan returns the plan name of an institution
	// account, or "" when the account has no plan.
	FindSubscriptionPlan(ctx context.Context, institutionID string) (string, error)
}
