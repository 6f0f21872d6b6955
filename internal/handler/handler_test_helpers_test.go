package handler

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/campusdocs/admp-api/internal/middleware"
	"github.com/campusdocs/admp-api/internal/models"
)

type responseEnvelope struct {
	Data  interface{}            `json:"data"`
	Error map[string]interface{} `json:"error"`
	Meta  map[string]interface{} `json:"meta"`
}

// fakeStore backs handler tests with an in-memory record store.
type fakeStore struct {
	users    []models.User
	docs     []models.Document
	activity []models.ActivityEntry
	session  *models.User
}

func (f *fakeStore) GetUsers(context.Context) ([]models.User, error) {
	return append([]models.User{}, f.users...), nil
}

func (f *fakeStore) MutateUsers(_ context.Context, fn func(users []models.User) ([]models.User, error)) error {
	next, err := fn(append([]models.User{}, f.users...))
	if err != nil {
		return err
	}
	f.users = append([]models.User{}, next...)
	return nil
}

func (f *fakeStore) GetDocuments(context.Context) ([]models.Document, error) {
	return append([]models.Document{}, f.docs...), nil
}

func (f *fakeStore) MutateDocuments(_ context.Context, fn func(docs []models.Document) ([]models.Document, error)) error {
	next, err := fn(append([]models.Document{}, f.docs...))
	if err != nil {
		return err
	}
	f.docs = append([]models.Document{}, next...)
	return nil
}

func (f *fakeStore) GetActivity(context.Context) ([]models.ActivityEntry, error) {
	return append([]models.ActivityEntry{}, f.activity...), nil
}

func (f *fakeStore) MutateActivity(_ context.Context, fn func(entries []models.ActivityEntry) ([]models.ActivityEntry, error)) error {
	next, err := fn(append([]models.ActivityEntry{}, f.activity...))
	if err != nil {
		return err
	}
	f.activity = append([]models.ActivityEntry{}, next...)
	return nil
}

func (f *fakeStore) GetSession(context.Context) (*models.User, error) { return f.session, nil }

func (f *fakeStore) SetSession(_ context.Context, user models.User) error {
	f.session = &user
	return nil
}

func (f *fakeStore) ClearSession(context.Context) error {
	f.session = nil
	return nil
}

func (f *fakeStore) ClearAll(context.Context) error {
	f.users, f.docs, f.activity, f.session = nil, nil, nil, nil
	return nil
}

func testContextWithActor(t *testing.T, actor models.User) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Set(middleware.ContextUserKey, &models.SessionClaims{
		UserID:     actor.ID,
		Name:       actor.Name,
		Email:      actor.Email,
		Role:       actor.Role,
		Department: actor.Department,
	})
	return c, rec
}
