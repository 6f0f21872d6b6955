package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusdocs/admp-api/internal/models"
	"github.com/campusdocs/admp-api/internal/service"
)

func newTestAuthHandler(store *fakeStore) *AuthHandler {
	activity := service.NewActivityService(store, nil)
	auth := service.NewAuthService(store, activity, nil, nil, service.SessionTokenConfig{
		Secret:     "test-secret",
		Expiration: time.Hour,
		Issuer:     "admp-test",
	})
	return NewAuthHandler(auth)
}

func TestLoginHandlerSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := &fakeStore{users: []models.User{
		{ID: "u1", Name: "Anita", Email: "anita@college.edu", Role: models.RoleStaff, Department: models.DeptCSE},
	}}
	handler := newTestAuthHandler(store)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"anita@college.edu"}`))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Login(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	data := envelope.Data.(map[string]interface{})
	assert.NotEmpty(t, data["access_token"])
	require.NotNil(t, store.session)
	assert.Equal(t, "u1", store.session.ID)
}

func TestLoginHandlerUnknownEmail(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newTestAuthHandler(&fakeStore{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"ghost@college.edu"}`))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Login(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLoginHandlerMalformedBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newTestAuthHandler(&fakeStore{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{`))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Login(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMeReturnsActor(t *testing.T) {
	handler := newTestAuthHandler(&fakeStore{})
	actor := models.User{ID: "u1", Name: "Anita", Email: "anita@college.edu", Role: models.RoleHOD, Department: models.DeptECE}
	c, rec := testContextWithActor(t, actor)
	c.Request = httptest.NewRequest(http.MethodGet, "/auth/me", nil)

	handler.Me(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	data := envelope.Data.(map[string]interface{})
	assert.Equal(t, "u1", data["id"])
	assert.Equal(t, "HOD", data["role"])
}

func TestMeWithoutSession(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newTestAuthHandler(&fakeStore{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/auth/me", nil)

	handler.Me(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogoutClearsSession(t *testing.T) {
	actor := models.User{ID: "u1", Name: "Anita", Email: "anita@college.edu"}
	store := &fakeStore{session: &actor}
	handler := newTestAuthHandler(store)

	c, rec := testContextWithActor(t, actor)
	c.Request = httptest.NewRequest(http.MethodPost, "/auth/logout", nil)

	handler.Logout(c)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Nil(t, store.session)
	require.Len(t, store.activity, 1)
	assert.Equal(t, models.ActivityLogout, store.activity[0].Action)
}
