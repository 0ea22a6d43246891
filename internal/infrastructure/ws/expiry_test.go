package ws

import (
	"context"
	"errors"
	"testing"

	"github.com/queueline/realtime/internal/domain"
	"github.com/stretchr/testify/require"
)

func TestMessageExpiry_UserToUser_48Hours(t *testing.T) {
	req := require.New(t)
	f := newCoreFixture()
	f.users.roles["bob"] = domain.RoleUser

	expiry, err := f.core.messageExpiry(context.Background(), "alice", domain.RoleUser, "bob")

	req.NoError(err)
	req.NotNil(expiry)
	req.Equal(testNow.Add(messageTTL), *expiry)
}

func TestMessageExpiry_PremiumInstitutionReceiver_NoExpiry(t *testing.T) {
	req := require.New(t)
	f := newCoreFixture()
	f.users.roles["clinic"] = domain.RoleInstitution
	f.users.plans["clinic"] = domain.PlanPremium

	expiry, err := f.core.messageExpiry(context.Background(), "alice", domain.RoleUser, "clinic")

	req.NoError(err)
	req.Nil(expiry)
}

func TestMessageExpiry_InstitutionSender_OwnPlanDecides(t *testing.T) {
	req := require.New(t)
	f := newCoreFixture()
	f.users.roles["bob"] = domain.RoleUser
	f.users.plans["clinic"] = domain.PlanPremium

	// The institution is the sender; its plan, not the receiver's,
	// controls retention.
	expiry, err := f.core.messageExpiry(context.Background(), "clinic", domain.RoleInstitution, "bob")

	req.NoError(err)
	req.Nil(expiry)
}

func TestMessageExpiry_BasicPlan_48Hours(t *testing.T) {
	req := require.New(t)
	f := newCoreFixture()
	f.users.roles["clinic"] = domain.RoleInstitution
	f.users.plans["clinic"] = domain.PlanBasic

	expiry, err := f.core.messageExpiry(context.Background(), "alice", domain.RoleUser, "clinic")

	req.NoError(err)
	req.NotNil(expiry)
	req.Equal(testNow.Add(messageTTL), *expiry)
}

func TestMessageExpiry_BusinessPlan_48Hours(t *testing.T) {
	req := require.New(t)
	f := newCoreFixture()
	f.users.roles["clinic"] = domain.RoleInstitution
	f.users.plans["clinic"] = domain.PlanBusiness

	expiry, err := f.core.messageExpiry(context.Background(), "alice", domain.RoleUser, "clinic")

	req.NoError(err)
	req.NotNil(expiry)
}

func TestMessageExpiry_InstitutionWithoutPlan_48Hours(t *testing.T) {
	req := require.New(t)
	f := newCoreFixture()
	f.users.roles["clinic"] = domain.RoleInstitution

	expiry, err := f.core.messageExpiry(context.Background(), "alice", domain.RoleUser, "clinic")

	req.NoError(err)
	req.NotNil(expiry)
	req.Equal(testNow.Add(messageTTL), *expiry)
}

func TestMessageExpiry_UnknownReceiver_Errors(t *testing.T) {
	req := require.New(t)
	f := newCoreFixture()

	expiry, err := f.core.messageExpiry(context.Background(), "alice", domain.RoleUser, "ghost")

	req.ErrorIs(err, domain.ErrUserNotFound)
	req.Nil(expiry)
}

func TestMessageExpiry_PlanLookupFailure_Errors(t *testing.T) {
	req := require.New(t)
	f := newCoreFixture()
	f.users.roles["clinic"] = domain.RoleInstitution
	f.users.planErr = errors.New("mongo timeout")

	_, err := f.core.messageExpiry(context.Background(), "alice", domain.RoleUser, "clinic")

	req.Error(err)
}
