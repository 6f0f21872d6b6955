package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusdocs/admp-api/internal/models"
	"github.com/campusdocs/admp-api/internal/service"
)

func newTestAdminHandler(store *fakeStore) *AdminHandler {
	activity := service.NewActivityService(store, nil)
	auth := service.NewAuthService(store, activity, nil, nil, service.SessionTokenConfig{
		Secret: "test-secret", Expiration: time.Hour, Issuer: "admp-test",
	})
	admin := service.NewAdminService(store, activity, auth, nil, nil)
	return NewAdminHandler(admin)
}

func TestResetHandlerWithoutConfirm(t *testing.T) {
	store := &fakeStore{users: []models.User{{ID: "u1"}}}
	handler := newTestAdminHandler(store)
	admin := models.User{ID: "a1", Name: "Admin", Role: models.RoleAdmin, Department: models.DeptCSE}

	c, rec := testContextWithActor(t, admin)
	c.Request = httptest.NewRequest(http.MethodPost, "/admin/reset", nil)

	handler.Reset(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Len(t, store.users, 1)
}

func TestResetHandlerConfirmed(t *testing.T) {
	store := &fakeStore{
		users: []models.User{{ID: "u1"}},
		docs:  []models.Document{{ID: "d1"}},
	}
	handler := newTestAdminHandler(store)
	admin := models.User{ID: "a1", Name: "Admin", Role: models.RoleAdmin, Department: models.DeptCSE}

	c, rec := testContextWithActor(t, admin)
	c.Request = httptest.NewRequest(http.MethodPost, "/admin/reset?confirm=true", nil)

	handler.Reset(c)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, store.docs)
	// Bootstrap accounts return after the wipe.
	require.Len(t, store.users, 2)
}

func TestSeedDemoHandler(t *testing.T) {
	store := &fakeStore{}
	handler := newTestAdminHandler(store)
	admin := models.User{ID: "a1", Name: "Admin", Role: models.RoleAdmin, Department: models.DeptCSE}

	c, rec := testContextWithActor(t, admin)
	c.Request = httptest.NewRequest(http.MethodPost, "/admin/seed-demo", nil)

	handler.SeedDemo(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, store.docs)
	assert.NotEmpty(t, store.users)
}
