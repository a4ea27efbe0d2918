package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/commodore-dev/commodore/internal/auth"
	"github.com/commodore-dev/commodore/internal/models"
	"github.com/commodore-dev/commodore/internal/router"
	"github.com/commodore-dev/commodore/internal/testutil"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupAPI(t *testing.T) (*gorm.DB, *gin.Engine) {
	t.Helper()

	gin.SetMode(gin.TestMode)
	require.NoError(t, auth.SetJWTSecret("test-secret"))

	database := testutil.OpenDB(t)
	return database, router.NewRouter()
}

// doJSON performs a request against the engine, optionally authenticated as
// the given user, and returns the recorder.
func doJSON(t *testing.T, engine *gin.Engine, method, path string, body interface{}, user *models.ClubUser) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	if user != nil {
		token, err := auth.GenerateJWT(user.ID, user.Email)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	recorder := httptest.NewRecorder()
	engine.ServeHTTP(recorder, req)
	return recorder
}

func decodeBody(t *testing.T, recorder *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	return body
}

func decodeList(t *testing.T, recorder *httptest.ResponseRecorder) []map[string]interface{} {
	t.Helper()

	var body []map[string]interface{}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	return body
}

func expectStatus(t *testing.T, recorder *httptest.ResponseRecorder, status int) {
	t.Helper()

	require.Equal(t, status, recorder.Code, "unexpected status, body: %s", recorder.Body.String())
}
