package membership_test

import (
	"testing"
	"time"

	"github.com/commodore-dev/commodore/internal/membership"
	"github.com/commodore-dev/commodore/internal/models"
	"github.com/commodore-dev/commodore/internal/testutil"
	"github.com/commodore-dev/commodore/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openEvent(status string) *models.Event {
	now := time.Now()
	return &models.Event{
		Title:              "Commodore's Ball",
		StartsAt:           now.Add(24 * time.Hour),
		EndsAt:             now.Add(28 * time.Hour),
		RegistrationStatus: status,
	}
}

func TestCanRegisterStatuses(t *testing.T) {
	database := testutil.OpenDB(t)
	member := testutil.CreateUser(t, database, types.RoleMember)
	now := time.Now()

	closed := []string{
		types.RegistrationNotRequired,
		types.RegistrationClosed,
		types.RegistrationExternal,
		types.RegistrationTemporarilyUnavailable,
	}
	for _, status := range closed {
		decision := membership.CanRegister(openEvent(status), member, now)
		assert.False(t, decision.Allowed, "status %s should deny", status)
		assert.NotEmpty(t, decision.Reason)
	}

	open := []string{
		types.RegistrationRecommended,
		types.RegistrationRequired,
		types.RegistrationRequiredByCloseDate,
	}
	for _, status := range open {
		decision := membership.CanRegister(openEvent(status), member, now)
		assert.True(t, decision.Allowed, "status %s should allow", status)
	}
}

func TestCanRegisterAdminsContactsOnly(t *testing.T) {
	database := testutil.OpenDB(t)

	member := testutil.CreateUser(t, database, types.RoleMember)
	admin := testutil.CreateUser(t, database, types.RoleAdmin)
	contact := testutil.CreateUser(t, database, types.RoleMember)

	event := openEvent(types.RegistrationAdminsContactsOnly)
	event.Contacts = []models.EventContact{{MemberID: contact.ID}}

	now := time.Now()
	assert.False(t, membership.CanRegister(event, member, now).Allowed)
	assert.True(t, membership.CanRegister(event, admin, now).Allowed)
	assert.True(t, membership.CanRegister(event, contact, now).Allowed)
}

func TestCanRegisterTimingGates(t *testing.T) {
	database := testutil.OpenDB(t)
	member := testutil.CreateUser(t, database, types.RoleMember)
	now := time.Now()

	notYetOpen := openEvent(types.RegistrationRequired)
	opensAt := now.Add(time.Hour)
	notYetOpen.RegistrationOpensAt = &opensAt
	decision := membership.CanRegister(notYetOpen, member, now)
	assert.False(t, decision.Allowed)
	assert.Equal(t, "registration has not opened yet", decision.Reason)

	// Once the opening time passes the same event allows registration.
	assert.True(t, membership.CanRegister(notYetOpen, member, now.Add(2*time.Hour)).Allowed)

	ended := openEvent(types.RegistrationRequired)
	ended.StartsAt = now.Add(-48 * time.Hour)
	ended.EndsAt = now.Add(-24 * time.Hour)
	decision = membership.CanRegister(ended, member, now)
	assert.False(t, decision.Allowed)
	assert.Equal(t, "this event has already ended", decision.Reason)
}

func TestCanRegisterMemberTypeGate(t *testing.T) {
	database := testutil.OpenDB(t)

	regular := testutil.CreateMemberType(t, database, "Regular", true, false)
	junior := testutil.CreateMemberType(t, database, "Junior", false, true)

	regularMember := testutil.CreateUser(t, database, types.RoleMember)
	testutil.AssignMemberTypes(t, database, regularMember, regular)

	juniorMember := testutil.CreateUser(t, database, types.RoleMember)
	testutil.AssignMemberTypes(t, database, juniorMember, junior)

	untyped := testutil.CreateUser(t, database, types.RoleMember)

	event := openEvent(types.RegistrationRequired)
	event.AllowedMemberTypes = []models.MemberType{*regular}

	now := time.Now()
	assert.True(t, membership.CanRegister(event, regularMember, now).Allowed)
	assert.False(t, membership.CanRegister(event, juniorMember, now).Allowed)
	assert.False(t, membership.CanRegister(event, untyped, now).Allowed)

	// No allowed types means the event is open to every member.
	unrestricted := openEvent(types.RegistrationRequired)
	assert.True(t, membership.CanRegister(unrestricted, juniorMember, now).Allowed)
	assert.True(t, membership.CanRegister(unrestricted, untyped, now).Allowed)
}

func TestCanRegisterInactiveUser(t *testing.T) {
	database := testutil.OpenDB(t)

	member := testutil.CreateUser(t, database, types.RoleMember)
	member.IsActive = false

	decision := membership.CanRegister(openEvent(types.RegistrationRequired), member, time.Now())
	assert.False(t, decision.Allowed)

	decision = membership.CanRegister(openEvent(types.RegistrationRequired), nil, time.Now())
	assert.False(t, decision.Allowed)
}

func TestResolveFeePicksLowestMatchingAmount(t *testing.T) {
	database := testutil.OpenDB(t)

	regular := testutil.CreateMemberType(t, database, "Regular", true, false)
	life := testutil.CreateMemberType(t, database, "Life", true, false)
	junior := testutil.CreateMemberType(t, database, "Junior", false, true)

	event := openEvent(types.RegistrationRequired)
	require.NoError(t, database.Create(event).Error)

	fees := []models.EventRegistrationFee{
		{EventID: event.ID, MemberTypeID: regular.ID, Amount: 45},
		{EventID: event.ID, MemberTypeID: life.ID, Amount: 25},
		{EventID: event.ID, MemberTypeID: junior.ID, Amount: 10},
	}
	for i := range fees {
		require.NoError(t, database.Create(&fees[i]).Error)
	}

	member := testutil.CreateUser(t, database, types.RoleMember)
	testutil.AssignMemberTypes(t, database, member, regular, life)

	fee, err := membership.ResolveFee(database, event, member)
	require.NoError(t, err)
	assert.Equal(t, 25.0, fee)

	// Members with no matching fee row attend for free.
	untyped := testutil.CreateUser(t, database, types.RoleMember)
	fee, err = membership.ResolveFee(database, event, untyped)
	require.NoError(t, err)
	assert.Zero(t, fee)
}
