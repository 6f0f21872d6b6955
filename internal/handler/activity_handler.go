package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/campusdocs/admp-api/internal/service"
	appErrors "github.com/campusdocs/admp-api/pkg/errors"
	"github.com/campusdocs/admp-api/pkg/response"
)

// ActivityHandler exposes the portal activity trail.
type ActivityHandler struct {
	service *service.ActivityService
}

// NewActivityHandler creates a new handler.
func NewActivityHandler(svc *service.ActivityService) *ActivityHandler {
	return &ActivityHandler{service: svc}
}

// List godoc
// @Summary Recent activity
// @Description Returns recent activity entries, newest first
// @Tags Activity
// @Produce json
// @Param limit query int false "Maximum number of entries"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /activity [get]
func (h *ActivityHandler) List(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "limit must be a non-negative integer"))
			return
		}
		limit = parsed
	}

	entries, err := h.service.List(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, entries, map[string]interface{}{"count": len(entries)})
}
