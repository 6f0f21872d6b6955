package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campusdocs/admp-api/internal/service"
	appErrors "github.com/campusdocs/admp-api/pkg/errors"
	"github.com/campusdocs/admp-api/pkg/response"
)

// AdminHandler hosts maintenance endpoints.
type AdminHandler struct {
	service *service.AdminService
}

// NewAdminHandler creates a new handler.
func NewAdminHandler(svc *service.AdminService) *AdminHandler {
	return &AdminHandler{service: svc}
}

// SeedDemo godoc
// @Summary Seed demonstration data
// @Description Loads the demo accounts and documents; re-running skips existing records
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /admin/seed-demo [post]
func (h *AdminHandler) SeedDemo(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	seeded, err := h.service.SeedDemo(c.Request.Context(), claims.Actor())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, gin.H{"seeded": seeded}, nil)
}

// Reset godoc
// @Summary Factory reset
// @Description Wipes all collections and re-seeds the bootstrap accounts; requires confirm=true
// @Tags Admin
// @Produce json
// @Param confirm query bool true "Must be true"
// @Success 204 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /admin/reset [post]
func (h *AdminHandler) Reset(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	confirm := c.Query("confirm") == "true"
	if err := h.service.Reset(c.Request.Context(), confirm, claims.Actor()); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
