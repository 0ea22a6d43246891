package ws

import (
	"context"
	"errors"
	"time"

	"github.com/queueline/realtime/internal/domain"
)

// messageTTL is the retention window for conversations that are not
// covered by a premium institution plan.
const messageTTL = 48 * time.Hour

// messageExpiry applies the retention policy. Between two plain users
// the message always expires after 48 hours. When either side is an
// institution, its subscription plan decides: PREMIUM keeps messages
// forever, everything else (BASIC, BUSINESS, or no plan at all) gets
// the 48 hour window. A missing receiver aborts the send.
func (c *Core) messageExpiry(ctx context.Context, senderID string, senderType domain.Role, receiverID string) (*time.Time, error) {
	receiverRole, err := c.repos.Users.FindRole(ctx, receiverID)
	if err != nil {
		return nil, err
	}

	if senderType == domain.RoleUser && receiverRole == domain.RoleUser {
		expiry := c.now().Add(messageTTL)
		return &expiry, nil
	}

	institutionID := receiverID
	if senderType == domain.RoleInstitution {
		institutionID = senderID
	}

	plan, err := c.repos.Users.FindSubscriptionPlan(ctx, institutionID)
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	if plan == domain.PlanPremium {
		return nil, nil
	}

	expiry := c.now().Add(messageTTL)
	return &expiry, nil
}
