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
)

func TestMemberTypeCRUD(t *testing.T) {
	database, engine := setupAPI(t)

	admin := testutil.CreateUser(t, database, types.RoleAdmin)
	member := testutil.CreateUser(t, database, types.RoleMember)

	payload := map[string]interface{}{"name": "Regular", "can_be_parent": true}
	recorder := doJSON(t, engine, http.MethodPost, "/api/admin/member-types", payload, member)
	expectStatus(t, recorder, http.StatusForbidden)

	recorder = doJSON(t, engine, http.MethodPost, "/api/admin/member-types", payload, admin)
	expectStatus(t, recorder, http.StatusCreated)
	created := decodeBody(t, recorder)
	typeID := uint(created["id"].(float64))
	assert.Equal(t, true, created["is_active"])

	recorder = doJSON(t, engine, http.MethodPost, "/api/admin/member-types", payload, admin)
	expectStatus(t, recorder, http.StatusConflict)

	// Any authenticated user can read the list.
	recorder = doJSON(t, engine, http.MethodGet, "/api/member-types", nil, member)
	expectStatus(t, recorder, http.StatusOK)
	assert.Len(t, decodeList(t, recorder), 1)

	recorder = doJSON(t, engine, http.MethodDelete, fmt.Sprintf("/api/admin/member-types/%d", typeID), nil, admin)
	expectStatus(t, recorder, http.StatusNoContent)

	// The name can be reused after deletion.
	recorder = doJSON(t, engine, http.MethodPost, "/api/admin/member-types", payload, admin)
	expectStatus(t, recorder, http.StatusCreated)
}

func TestDeleteMemberTypeInUse(t *testing.T) {
	database, engine := setupAPI(t)

	admin := testutil.CreateUser(t, database, types.RoleAdmin)
	regular := testutil.CreateMemberType(t, database, "Regular", true, false)

	holder := testutil.CreateUser(t, database, types.RoleMember)
	testutil.AssignMemberTypes(t, database, holder, regular)

	recorder := doJSON(t, engine, http.MethodDelete, fmt.Sprintf("/api/admin/member-types/%d", regular.ID), nil, admin)
	expectStatus(t, recorder, http.StatusConflict)
}

func TestReorderMemberTypes(t *testing.T) {
	database, engine := setupAPI(t)

	admin := testutil.CreateUser(t, database, types.RoleAdmin)

	first := testutil.CreateMemberType(t, database, "Regular", true, false)
	second := testutil.CreateMemberType(t, database, "Life", true, false)
	third := testutil.CreateMemberType(t, database, "Junior", false, true)

	payload := map[string]interface{}{"ordered_ids": []uint{third.ID, first.ID, second.ID}}
	recorder := doJSON(t, engine, http.MethodPost, "/api/admin/member-types/reorder", payload, admin)
	expectStatus(t, recorder, http.StatusOK)

	listed := decodeList(t, recorder)
	require.Len(t, listed, 3)
	assert.Equal(t, "Junior", listed[0]["name"])
	assert.Equal(t, "Regular", listed[1]["name"])
	assert.Equal(t, "Life", listed[2]["name"])
}

func TestMemberTypeRelationships(t *testing.T) {
	database, engine := setupAPI(t)

	admin := testutil.CreateUser(t, database, types.RoleAdmin)

	regular := testutil.CreateMemberType(t, database, "Regular", true, false)
	junior := testutil.CreateMemberType(t, database, "Junior", false, true)

	// A type cannot be related to itself, even when it could hold both ends.
	family := testutil.CreateMemberType(t, database, "Family", true, true)
	recorder := doJSON(t, engine, http.MethodPost, "/api/admin/member-type-relationships", map[string]interface{}{
		"parent_type_id": family.ID,
		"child_type_id":  family.ID,
	}, admin)
	expectStatus(t, recorder, http.StatusBadRequest)

	// Child type must be child-capable.
	honorary := testutil.CreateMemberType(t, database, "Honorary", false, false)
	recorder = doJSON(t, engine, http.MethodPost, "/api/admin/member-type-relationships", map[string]interface{}{
		"parent_type_id": regular.ID,
		"child_type_id":  honorary.ID,
	}, admin)
	expectStatus(t, recorder, http.StatusBadRequest)

	payload := map[string]interface{}{
		"parent_type_id":    regular.ID,
		"child_type_id":     junior.ID,
		"relationship_name": "Child",
		"max_children":      2,
	}
	recorder = doJSON(t, engine, http.MethodPost, "/api/admin/member-type-relationships", payload, admin)
	expectStatus(t, recorder, http.StatusCreated)
	created := decodeBody(t, recorder)
	relationshipID := uint(created["id"].(float64))
	assert.Equal(t, "Regular", created["parent_type_name"])
	assert.Equal(t, "Child", created["relationship_name"])
	assert.EqualValues(t, 2, created["max_children"])

	recorder = doJSON(t, engine, http.MethodPost, "/api/admin/member-type-relationships", payload, admin)
	expectStatus(t, recorder, http.StatusConflict)

	recorder = doJSON(t, engine, http.MethodDelete,
		fmt.Sprintf("/api/admin/member-type-relationships/%d", relationshipID), nil, admin)
	expectStatus(t, recorder, http.StatusNoContent)

	var count int64
	database.Model(&models.MemberTypeRelationship{}).Count(&count)
	assert.Zero(t, count)
}
