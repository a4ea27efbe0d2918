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
)

func TestCategoryCRUDRequiresManagePermission(t *testing.T) {
	database, engine := setupAPI(t)

	member := testutil.CreateUser(t, database, types.RoleMember)
	editor := testutil.CreateUser(t, database, types.RoleEditor)

	payload := map[string]string{"name": "Racing", "color": "#aa0000"}

	recorder := doJSON(t, engine, http.MethodPost, "/api/categories", payload, member)
	expectStatus(t, recorder, http.StatusForbidden)

	recorder = doJSON(t, engine, http.MethodPost, "/api/categories", payload, editor)
	expectStatus(t, recorder, http.StatusCreated)
	created := decodeBody(t, recorder)
	assert.Equal(t, "#aa0000", created["color"])

	// Duplicate names conflict.
	recorder = doJSON(t, engine, http.MethodPost, "/api/categories", payload, editor)
	expectStatus(t, recorder, http.StatusConflict)
}

func TestCreateCategoryDefaultColor(t *testing.T) {
	database, engine := setupAPI(t)

	editor := testutil.CreateUser(t, database, types.RoleEditor)

	recorder := doJSON(t, engine, http.MethodPost, "/api/categories", map[string]string{"name": "Cruising"}, editor)
	expectStatus(t, recorder, http.StatusCreated)
	created := decodeBody(t, recorder)
	assert.Equal(t, types.DefaultCategoryColor, created["color"])
}

func TestRecreateCategoryAfterDelete(t *testing.T) {
	database, engine := setupAPI(t)

	editor := testutil.CreateUser(t, database, types.RoleEditor)

	payload := map[string]string{"name": "Racing"}

	recorder := doJSON(t, engine, http.MethodPost, "/api/categories", payload, editor)
	expectStatus(t, recorder, http.StatusCreated)
	categoryID := uint(decodeBody(t, recorder)["id"].(float64))

	recorder = doJSON(t, engine, http.MethodDelete, fmt.Sprintf("/api/categories/%d", categoryID), nil, editor)
	expectStatus(t, recorder, http.StatusOK)

	// The name is free again once the category is gone.
	recorder = doJSON(t, engine, http.MethodPost, "/api/categories", payload, editor)
	expectStatus(t, recorder, http.StatusCreated)
}

func TestDeleteCategoryUncategorizesEvents(t *testing.T) {
	database, engine := setupAPI(t)

	editor := testutil.CreateUser(t, database, types.RoleEditor)

	category := models.EventCategory{Name: "Social", Color: "#00ff00"}
	require.NoError(t, database.Create(&category).Error)

	now := time.Now().UTC()
	event := models.Event{
		Title:            "Dock Party",
		ShortDescription: "x",
		CategoryID:       &category.ID,
		StartsAt:         now.Add(24 * time.Hour),
		EndsAt:           now.Add(27 * time.Hour),
	}
	require.NoError(t, database.Create(&event).Error)

	recorder := doJSON(t, engine, http.MethodDelete, fmt.Sprintf("/api/categories/%d", category.ID), nil, editor)
	expectStatus(t, recorder, http.StatusOK)
	body := decodeBody(t, recorder)
	assert.EqualValues(t, 1, body["uncategorized"])

	var reloaded models.Event
	require.NoError(t, database.First(&reloaded, event.ID).Error)
	assert.Nil(t, reloaded.CategoryID)
}
