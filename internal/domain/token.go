package domain

import (
	"context"
	"errors"
	"time"
)

var ErrTokenNotFound = errors.New("token not found")

// Token is a queue entry scoped to an institution. Username and
// MobileNumber are denormalized from the submitting user when the
// token is read for broadcast; they are never written back.
type Token struct {
	ID            string    `bson:"_id" json:"id"`
	InstitutionID string    `bson:"institution_id" json:"institutionId"`
	UserID        string    `bson:"user_id,omitempty" json:"userId,omitempty"`
	Number        int       `bson:"number" json:"number"`
	Processing    bool      `bson:"processing" json:"processing"`
	Completed     bool      `bson:"completed" json:"completed"`
	CreatedAt     time.Time `bson:"created_at" json:"createdAt"`

	Username     *string `bson:"username,omitempty" json:"username"`
	MobileNumber *string `bson:"mobile_number,omitempty" json:"mobileNumber"`
}

// TokenPatch carries the flag updates a handler may apply. Nil fields
// are left untouched.
type TokenPatch struct {
	Processing *bool
	Completed  *bool
}

type TokenRepository interface {
	// FindActive returns the newest non-completed token for the
	// institution, or (nil, nil) when the queue is empty.
	FindActive(ctx context.Context, institutionID string) (*Token, error)

	// ListCompleted returns up to limit completed tokens, newest first,
	// enriched with the submitter's identity.
	ListCompleted(ctx context.Context, institutionID string, limit int) ([]Token, error)

	// ListProcessing returns tokens with processing=true and
	// completed=false, oldest first, enriched with the submitter's
	// identity.
	ListProcessing(ctx context.Context, institutionID string) ([]Token, error)

	// Update applies the patch and returns the updated token.
	Update(ctx context.Context, tokenID string, patch TokenPatch) (*Token, error)
}
