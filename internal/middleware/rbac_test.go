package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/campusdocs/admp-api/internal/models"
)

func rbacContext(role models.UserRole) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/users", nil)
	c.Set(ContextUserKey, &models.SessionClaims{UserID: "u1", Role: role})
	return c, rec
}

func TestRBACAllowsListedRole(t *testing.T) {
	c, rec := rbacContext(models.RoleAdmin)

	RBAC(models.RoleAdmin)(c)

	assert.False(t, c.IsAborted())
	assert.NotEqual(t, http.StatusForbidden, rec.Code)
}

func TestRBACRejectsOtherRole(t *testing.T) {
	c, rec := rbacContext(models.RoleStaff)

	RBAC(models.RoleAdmin)(c)

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRBACRejectsMissingClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/users", nil)

	RBAC(models.RoleAdmin)(c)

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
