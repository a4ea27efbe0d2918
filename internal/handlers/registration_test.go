package handlers_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/commodore-dev/commodore/internal/models"
	"github.com/commodore-dev/commodore/internal/testutil"
	"github.com/commodore-dev/commodore/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func createOpenEvent(t *testing.T, database *gorm.DB, visibility string) *models.Event {
	t.Helper()

	now := time.Now().UTC()
	event := models.Event{
		Title:                    "Summer Sailpast",
		ShortDescription:         "Annual sailpast",
		StartsAt:                 now.Add(72 * time.Hour),
		EndsAt:                   now.Add(76 * time.Hour),
		RegistrationStatus:       types.RegistrationRequired,
		RegistrantListVisibility: visibility,
	}
	require.NoError(t, database.Create(&event).Error)
	return &event
}

func TestRegistrationLifecycle(t *testing.T) {
	database, engine := setupAPI(t)

	member := testutil.CreateUser(t, database, types.RoleMember)
	event := createOpenEvent(t, database, types.RegistrantListNone)

	registerPath := fmt.Sprintf("/api/events/%d/register", event.ID)

	recorder := doJSON(t, engine, http.MethodPost, registerPath, nil, member)
	expectStatus(t, recorder, http.StatusCreated)

	// Registering twice conflicts.
	recorder = doJSON(t, engine, http.MethodPost, registerPath, nil, member)
	expectStatus(t, recorder, http.StatusConflict)

	// Cancelling stamps the row instead of deleting it.
	recorder = doJSON(t, engine, http.MethodDelete, registerPath, nil, member)
	expectStatus(t, recorder, http.StatusOK)

	var cancelled models.EventRegistration
	require.NoError(t, database.Where("event_id = ? AND member_id = ?", event.ID, member.ID).First(&cancelled).Error)
	assert.True(t, cancelled.Cancelled)
	assert.NotNil(t, cancelled.CancelledAt)

	// Cancelling again finds nothing active.
	recorder = doJSON(t, engine, http.MethodDelete, registerPath, nil, member)
	expectStatus(t, recorder, http.StatusNotFound)

	// Re-registering after a cancellation is allowed.
	recorder = doJSON(t, engine, http.MethodPost, registerPath, nil, member)
	expectStatus(t, recorder, http.StatusCreated)

	var count int64
	database.Model(&models.EventRegistration{}).
		Where("event_id = ? AND member_id = ?", event.ID, member.ID).Count(&count)
	assert.EqualValues(t, 2, count)
}

func TestRegisterChargesResolvedFee(t *testing.T) {
	database, engine := setupAPI(t)

	regular := testutil.CreateMemberType(t, database, "Regular", true, false)
	member := testutil.CreateUser(t, database, types.RoleMember)
	testutil.AssignMemberTypes(t, database, member, regular)

	event := createOpenEvent(t, database, types.RegistrantListNone)
	fee := models.EventRegistrationFee{EventID: event.ID, MemberTypeID: regular.ID, Amount: 35}
	require.NoError(t, database.Create(&fee).Error)

	recorder := doJSON(t, engine, http.MethodPost, fmt.Sprintf("/api/events/%d/register", event.ID), nil, member)
	expectStatus(t, recorder, http.StatusCreated)

	var registration models.EventRegistration
	require.NoError(t, database.Where("event_id = ? AND member_id = ?", event.ID, member.ID).First(&registration).Error)
	assert.Equal(t, 35.0, registration.FeeCharged)
}

func TestRegisterClosedEventForbidden(t *testing.T) {
	database, engine := setupAPI(t)

	member := testutil.CreateUser(t, database, types.RoleMember)
	event := createOpenEvent(t, database, types.RegistrantListNone)
	require.NoError(t, database.Model(event).Update("registration_status", types.RegistrationClosed).Error)

	recorder := doJSON(t, engine, http.MethodPost, fmt.Sprintf("/api/events/%d/register", event.ID), nil, member)
	expectStatus(t, recorder, http.StatusForbidden)
}

func TestRegistrantListVisibility(t *testing.T) {
	database, engine := setupAPI(t)

	registrant := testutil.CreateUser(t, database, types.RoleMember)
	otherMember := testutil.CreateUser(t, database, types.RoleMember)
	viewer := testutil.CreateUser(t, database, types.RoleViewer)
	editor := testutil.CreateUser(t, database, types.RoleEditor)

	event := createOpenEvent(t, database, types.RegistrantListMembers)
	registration := models.EventRegistration{EventID: event.ID, MemberID: registrant.ID}
	require.NoError(t, database.Create(&registration).Error)

	path := fmt.Sprintf("/api/events/%d/registrants", event.ID)

	// "members": any non-viewer role can look.
	recorder := doJSON(t, engine, http.MethodGet, path, nil, otherMember)
	expectStatus(t, recorder, http.StatusOK)
	assert.Len(t, decodeList(t, recorder), 1)

	recorder = doJSON(t, engine, http.MethodGet, path, nil, viewer)
	expectStatus(t, recorder, http.StatusForbidden)

	// Event editors always can.
	require.NoError(t, database.Model(event).Update("registrant_list_visibility", types.RegistrantListNone).Error)
	recorder = doJSON(t, engine, http.MethodGet, path, nil, editor)
	expectStatus(t, recorder, http.StatusOK)

	recorder = doJSON(t, engine, http.MethodGet, path, nil, otherMember)
	expectStatus(t, recorder, http.StatusForbidden)

	// "registered_members_only": the registrant sees the list, others do not.
	require.NoError(t, database.Model(event).Update("registrant_list_visibility", types.RegistrantListRegisteredMembersOnly).Error)
	recorder = doJSON(t, engine, http.MethodGet, path, nil, registrant)
	expectStatus(t, recorder, http.StatusOK)
	recorder = doJSON(t, engine, http.MethodGet, path, nil, otherMember)
	expectStatus(t, recorder, http.StatusForbidden)
}

func TestGuests(t *testing.T) {
	database, engine := setupAPI(t)

	registrant := testutil.CreateUser(t, database, types.RoleMember)
	stranger := testutil.CreateUser(t, database, types.RoleMember)

	event := createOpenEvent(t, database, types.RegistrantListNone)
	registration := models.EventRegistration{EventID: event.ID, MemberID: registrant.ID}
	require.NoError(t, database.Create(&registration).Error)

	guestPath := fmt.Sprintf("/api/registrations/%d/guests", registration.ID)
	payload := map[string]string{"name": "Sam Crew", "notes": "vegetarian"}

	// Only the registrant (or an editor) manages guests.
	recorder := doJSON(t, engine, http.MethodPost, guestPath, payload, stranger)
	expectStatus(t, recorder, http.StatusForbidden)

	recorder = doJSON(t, engine, http.MethodPost, guestPath, payload, registrant)
	expectStatus(t, recorder, http.StatusCreated)
	guest := decodeBody(t, recorder)
	guestID := uint(guest["id"].(float64))

	recorder = doJSON(t, engine, http.MethodDelete, fmt.Sprintf("/api/guests/%d", guestID), nil, stranger)
	expectStatus(t, recorder, http.StatusForbidden)

	recorder = doJSON(t, engine, http.MethodDelete, fmt.Sprintf("/api/guests/%d", guestID), nil, registrant)
	expectStatus(t, recorder, http.StatusNoContent)
}

func TestGuestsRejectedOnCancelledRegistration(t *testing.T) {
	database, engine := setupAPI(t)

	registrant := testutil.CreateUser(t, database, types.RoleMember)
	event := createOpenEvent(t, database, types.RegistrantListNone)

	registration := models.EventRegistration{EventID: event.ID, MemberID: registrant.ID}
	require.NoError(t, database.Create(&registration).Error)
	require.NoError(t, registration.Cancel(database))

	recorder := doJSON(t, engine, http.MethodPost,
		fmt.Sprintf("/api/registrations/%d/guests", registration.ID),
		map[string]string{"name": "Late Guest"}, registrant)
	expectStatus(t, recorder, http.StatusBadRequest)
}

func TestReplaceEventFees(t *testing.T) {
	database, engine := setupAPI(t)

	editor := testutil.CreateUser(t, database, types.RoleEditor)
	regular := testutil.CreateMemberType(t, database, "Regular", true, false)
	junior := testutil.CreateMemberType(t, database, "Junior", false, true)

	event := createOpenEvent(t, database, types.RegistrantListNone)
	feesPath := fmt.Sprintf("/api/events/%d/fees", event.ID)

	payload := map[string]interface{}{
		"fees": []map[string]interface{}{
			{"member_type_id": regular.ID, "amount": 40.0},
			{"member_type_id": junior.ID, "amount": 15.0},
		},
	}
	recorder := doJSON(t, engine, http.MethodPut, feesPath, payload, editor)
	expectStatus(t, recorder, http.StatusOK)
	assert.Len(t, decodeList(t, recorder), 2)

	// Duplicate member types in one schedule are rejected.
	payload = map[string]interface{}{
		"fees": []map[string]interface{}{
			{"member_type_id": regular.ID, "amount": 40.0},
			{"member_type_id": regular.ID, "amount": 20.0},
		},
	}
	recorder = doJSON(t, engine, http.MethodPut, feesPath, payload, editor)
	expectStatus(t, recorder, http.StatusBadRequest)

	// Replacing shrinks the schedule rather than accumulating rows.
	payload = map[string]interface{}{
		"fees": []map[string]interface{}{
			{"member_type_id": junior.ID, "amount": 10.0},
		},
	}
	recorder = doJSON(t, engine, http.MethodPut, feesPath, payload, editor)
	expectStatus(t, recorder, http.StatusOK)

	var count int64
	database.Model(&models.EventRegistrationFee{}).Where("event_id = ?", event.ID).Count(&count)
	assert.EqualValues(t, 1, count)
}
