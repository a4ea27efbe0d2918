package models_test

import (
	"testing"
	"time"

	"github.com/commodore-dev/commodore/internal/models"
	"github.com/commodore-dev/commodore/internal/testutil"
	"github.com/commodore-dev/commodore/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrimaryContactDemotion(t *testing.T) {
	database := testutil.OpenDB(t)

	first := testutil.CreateUser(t, database, types.RoleMember)
	second := testutil.CreateUser(t, database, types.RoleMember)

	event := models.Event{
		Title:            "Opening Day",
		ShortDescription: "Season opener",
		StartsAt:         time.Now().Add(24 * time.Hour),
		EndsAt:           time.Now().Add(30 * time.Hour),
	}
	require.NoError(t, database.Create(&event).Error)

	original := models.EventContact{EventID: event.ID, MemberID: first.ID, IsPrimary: true}
	require.NoError(t, database.Create(&original).Error)

	// Promoting a second contact demotes the first.
	replacement := models.EventContact{EventID: event.ID, MemberID: second.ID, IsPrimary: true}
	require.NoError(t, database.Create(&replacement).Error)

	var primaries []models.EventContact
	require.NoError(t, database.Where("event_id = ? AND is_primary = ?", event.ID, true).Find(&primaries).Error)
	require.Len(t, primaries, 1)
	assert.Equal(t, second.ID, primaries[0].MemberID)

	var demoted models.EventContact
	require.NoError(t, database.First(&demoted, original.ID).Error)
	assert.False(t, demoted.IsPrimary)
}

func TestPrimaryContactScopedPerEvent(t *testing.T) {
	database := testutil.OpenDB(t)

	member := testutil.CreateUser(t, database, types.RoleMember)

	makeEvent := func(title string) models.Event {
		event := models.Event{
			Title:            title,
			ShortDescription: title,
			StartsAt:         time.Now().Add(24 * time.Hour),
			EndsAt:           time.Now().Add(30 * time.Hour),
		}
		require.NoError(t, database.Create(&event).Error)
		return event
	}

	regatta := makeEvent("Regatta")
	dinner := makeEvent("Dinner")

	require.NoError(t, database.Create(&models.EventContact{EventID: regatta.ID, MemberID: member.ID, IsPrimary: true}).Error)
	require.NoError(t, database.Create(&models.EventContact{EventID: dinner.ID, MemberID: member.ID, IsPrimary: true}).Error)

	var count int64
	database.Model(&models.EventContact{}).Where("is_primary = ?", true).Count(&count)
	assert.EqualValues(t, 2, count)
}
