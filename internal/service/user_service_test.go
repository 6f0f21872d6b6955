package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusdocs/admp-api/internal/models"
	appErrors "github.com/campusdocs/admp-api/pkg/errors"
)

func TestCreateUser(t *testing.T) {
	store := &memStore{}
	activity := &noopActivity{}
	svc := NewUserService(store, activity, nil, nil)

	user, err := svc.Create(context.Background(), CreateUserRequest{
		Name:       "  Anita Verma ",
		Email:      "Anita.Verma@College.EDU",
		Role:       "STAFF",
		Department: "CSE",
	}, testAdmin)
	require.NoError(t, err)

	assert.Equal(t, "Anita Verma", user.Name)
	assert.Equal(t, "anita.verma@college.edu", user.Email)
	assert.Equal(t, models.RoleStaff, user.Role)
	assert.False(t, user.CreatedDate.IsZero())
	require.Len(t, store.users, 1)
	require.Len(t, activity.entries, 1)
	assert.Contains(t, activity.entries[0], models.ActivityAdmin)
}

func TestCreateUserDuplicateEmailConflicts(t *testing.T) {
	store := &memStore{users: []models.User{
		{ID: "u1", Email: "anita@college.edu"},
	}}
	svc := NewUserService(store, &noopActivity{}, nil, nil)

	_, err := svc.Create(context.Background(), CreateUserRequest{
		Name: "Anita", Email: " ANITA@college.edu", Role: "STAFF", Department: "CSE",
	}, testAdmin)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestCreateUserRejectsUnknownRoleOrDepartment(t *testing.T) {
	svc := NewUserService(&memStore{}, &noopActivity{}, nil, nil)

	_, err := svc.Create(context.Background(), CreateUserRequest{
		Name: "X", Email: "x@college.edu", Role: "OVERLORD", Department: "CSE",
	}, testAdmin)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.Create(context.Background(), CreateUserRequest{
		Name: "X", Email: "x@college.edu", Role: "STAFF", Department: "ARTS",
	}, testAdmin)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestUpdateProfileEditsNameAndEmail(t *testing.T) {
	actor := models.User{ID: "u1", Name: "Anita", Email: "anita@college.edu", Role: models.RoleStaff, Department: models.DeptCSE}
	store := &memStore{users: []models.User{actor}, session: &actor}
	svc := NewUserService(store, &noopActivity{}, nil, nil)

	name := "Anita V."
	email := "Anita.V@College.edu"
	updated, err := svc.UpdateProfile(context.Background(), UpdateProfileRequest{Name: &name, Email: &email}, actor)
	require.NoError(t, err)

	assert.Equal(t, "Anita V.", updated.Name)
	assert.Equal(t, "anita.v@college.edu", updated.Email)
	assert.Equal(t, models.RoleStaff, updated.Role)

	// The session slot follows the edit.
	require.NotNil(t, store.session)
	assert.Equal(t, "Anita V.", store.session.Name)
}

func TestUpdateProfileEmailConflict(t *testing.T) {
	actor := models.User{ID: "u1", Email: "anita@college.edu"}
	store := &memStore{users: []models.User{
		actor,
		{ID: "u2", Email: "taken@college.edu"},
	}}
	svc := NewUserService(store, &noopActivity{}, nil, nil)

	email := "taken@college.edu"
	_, err := svc.UpdateProfile(context.Background(), UpdateProfileRequest{Email: &email}, actor)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestUpdateProfileUnknownActor(t *testing.T) {
	svc := NewUserService(&memStore{}, &noopActivity{}, nil, nil)

	name := "Ghost"
	_, err := svc.UpdateProfile(context.Background(), UpdateProfileRequest{Name: &name}, models.User{ID: "ghost"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
