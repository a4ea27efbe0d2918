package handlers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/commodore-dev/commodore/internal/models"
	"github.com/commodore-dev/commodore/internal/testutil"
	"github.com/commodore-dev/commodore/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func grantFolder(t *testing.T, database *gorm.DB, folderID uint, roleID uint, view, add, edit, del bool) {
	t.Helper()

	permission := models.FolderPermission{
		FolderID:  folderID,
		RoleID:    roleID,
		CanView:   view,
		CanAdd:    add,
		CanEdit:   edit,
		CanDelete: del,
	}
	require.NoError(t, database.Create(&permission).Error)
}

func TestListFoldersShowsOnlyAccessibleRoots(t *testing.T) {
	database, engine := setupAPI(t)

	member := testutil.CreateUser(t, database, types.RoleMember)

	visible := testutil.CreateFolder(t, database, "Cruising", nil)
	testutil.CreateFolder(t, database, "Board", nil)

	grantFolder(t, database, visible.ID, *member.RoleID, true, false, false, false)

	recorder := doJSON(t, engine, http.MethodGet, "/api/folders", nil, member)
	expectStatus(t, recorder, http.StatusOK)

	folders := decodeList(t, recorder)
	require.Len(t, folders, 1)
	assert.Equal(t, "Cruising", folders[0]["name"])
}

func TestGetFolderEnforcesView(t *testing.T) {
	database, engine := setupAPI(t)

	member := testutil.CreateUser(t, database, types.RoleMember)
	admin := testutil.CreateUser(t, database, types.RoleAdmin)

	root := testutil.CreateFolder(t, database, "Racing", nil)
	child := testutil.CreateFolder(t, database, "Results", &root.ID)

	recorder := doJSON(t, engine, http.MethodGet, fmt.Sprintf("/api/folders/%d", child.ID), nil, member)
	expectStatus(t, recorder, http.StatusForbidden)

	// A grant on the root cascades to the child.
	grantFolder(t, database, root.ID, *member.RoleID, true, false, false, false)
	recorder = doJSON(t, engine, http.MethodGet, fmt.Sprintf("/api/folders/%d", child.ID), nil, member)
	expectStatus(t, recorder, http.StatusOK)

	body := decodeBody(t, recorder)
	assert.Equal(t, "Racing/Results", body["path"])
	caps, ok := body["capabilities"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, true, caps["can_view"])
	assert.Equal(t, false, caps["can_add"])
	// Permission rows are an admin-only detail.
	assert.Nil(t, body["permissions"])

	recorder = doJSON(t, engine, http.MethodGet, fmt.Sprintf("/api/folders/%d", root.ID), nil, admin)
	expectStatus(t, recorder, http.StatusOK)
	body = decodeBody(t, recorder)
	assert.NotNil(t, body["permissions"])
}

func TestCreateFolderPermissions(t *testing.T) {
	database, engine := setupAPI(t)

	member := testutil.CreateUser(t, database, types.RoleMember)
	admin := testutil.CreateUser(t, database, types.RoleAdmin)

	// Root folders are admin territory.
	recorder := doJSON(t, engine, http.MethodPost, "/api/folders", map[string]interface{}{"name": "Library"}, member)
	expectStatus(t, recorder, http.StatusForbidden)

	recorder = doJSON(t, engine, http.MethodPost, "/api/folders", map[string]interface{}{"name": "Library"}, admin)
	expectStatus(t, recorder, http.StatusCreated)
	root := decodeBody(t, recorder)
	rootID := uint(root["id"].(float64))

	// Subfolders need the add capability on the parent.
	payload := map[string]interface{}{"name": "Minutes", "parent_id": rootID}
	recorder = doJSON(t, engine, http.MethodPost, "/api/folders", payload, member)
	expectStatus(t, recorder, http.StatusForbidden)

	grantFolder(t, database, rootID, *member.RoleID, true, true, false, false)
	recorder = doJSON(t, engine, http.MethodPost, "/api/folders", payload, member)
	expectStatus(t, recorder, http.StatusCreated)

	// Sibling name collision.
	recorder = doJSON(t, engine, http.MethodPost, "/api/folders", payload, member)
	expectStatus(t, recorder, http.StatusConflict)
}

func TestUpdateFolderRejectsCycle(t *testing.T) {
	database, engine := setupAPI(t)

	admin := testutil.CreateUser(t, database, types.RoleAdmin)

	root := testutil.CreateFolder(t, database, "Root", nil)
	child := testutil.CreateFolder(t, database, "Child", &root.ID)

	payload := map[string]interface{}{"name": "Root", "parent_id": child.ID}
	recorder := doJSON(t, engine, http.MethodPut, fmt.Sprintf("/api/folders/%d", root.ID), payload, admin)
	expectStatus(t, recorder, http.StatusBadRequest)
}

func TestDeleteFolderRemovesSubtree(t *testing.T) {
	database, engine := setupAPI(t)

	admin := testutil.CreateUser(t, database, types.RoleAdmin)

	root := testutil.CreateFolder(t, database, "Old", nil)
	child := testutil.CreateFolder(t, database, "Archive", &root.ID)

	recorder := doJSON(t, engine, http.MethodDelete, fmt.Sprintf("/api/folders/%d", root.ID), nil, admin)
	expectStatus(t, recorder, http.StatusNoContent)

	var count int64
	database.Model(&models.DocumentFolder{}).Where("id IN ?", []uint{root.ID, child.ID}).Count(&count)
	assert.Zero(t, count)

	// The (name, parent) slot is free again.
	recorder = doJSON(t, engine, http.MethodPost, "/api/folders", map[string]interface{}{"name": "Old"}, admin)
	expectStatus(t, recorder, http.StatusCreated)
}

func TestSetFolderPermissionUpsert(t *testing.T) {
	database, engine := setupAPI(t)

	admin := testutil.CreateUser(t, database, types.RoleAdmin)
	member := testutil.CreateUser(t, database, types.RoleMember)
	memberRole := testutil.RoleByName(t, database, types.RoleMember)

	folder := testutil.CreateFolder(t, database, "Shared", nil)
	path := fmt.Sprintf("/api/folders/%d/permissions", folder.ID)

	// Non-admins cannot manage grants.
	recorder := doJSON(t, engine, http.MethodPut, path, map[string]interface{}{
		"role_id": memberRole.ID, "can_view": true,
	}, member)
	expectStatus(t, recorder, http.StatusForbidden)

	recorder = doJSON(t, engine, http.MethodPut, path, map[string]interface{}{
		"role_id": memberRole.ID, "can_view": true,
	}, admin)
	expectStatus(t, recorder, http.StatusCreated)

	// Saving again replaces the same (folder, role) row.
	recorder = doJSON(t, engine, http.MethodPut, path, map[string]interface{}{
		"role_id": memberRole.ID, "can_view": true, "can_add": true,
	}, admin)
	expectStatus(t, recorder, http.StatusOK)

	var count int64
	database.Model(&models.FolderPermission{}).
		Where("folder_id = ? AND role_id = ?", folder.ID, memberRole.ID).Count(&count)
	assert.EqualValues(t, 1, count)
}
