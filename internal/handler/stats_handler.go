package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campusdocs/admp-api/internal/service"
	appErrors "github.com/campusdocs/admp-api/pkg/errors"
	"github.com/campusdocs/admp-api/pkg/export"
	"github.com/campusdocs/admp-api/pkg/response"
)

// StatsHandler wires HTTP endpoints to the aggregation service.
type StatsHandler struct {
	service *service.StatsService
	csv     *export.CSVExporter
	pdf     *export.PDFExporter
}

// NewStatsHandler creates a new handler.
func NewStatsHandler(svc *service.StatsService) *StatsHandler {
	return &StatsHandler{service: svc, csv: export.NewCSVExporter(), pdf: export.NewPDFExporter()}
}

// Overview godoc
// @Summary Dashboard overview
// @Description Totals, active categories, growth rate and recent uploads
// @Tags Statistics
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /stats/overview [get]
func (h *StatsHandler) Overview(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	stats, err := h.service.Overview(c.Request.Context(), claims.Actor())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, stats, nil)
}

// Distribution godoc
// @Summary Category and department distribution
// @Description Per-category and per-department counts of visible documents
// @Tags Statistics
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /stats/distribution [get]
func (h *StatsHandler) Distribution(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	dist, err := h.service.Distribution(c.Request.Context(), claims.Actor())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, dist, nil)
}

// Trend godoc
// @Summary Six-month upload trend
// @Description Upload counts for the trailing six calendar months
// @Tags Statistics
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /stats/trend [get]
func (h *StatsHandler) Trend(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	trend, err := h.service.Trend(c.Request.Context(), claims.Actor())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, trend, nil)
}

// Leaderboard godoc
// @Summary Top contributors
// @Description The five contributors with the most visible uploads
// @Tags Statistics
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /stats/leaderboard [get]
func (h *StatsHandler) Leaderboard(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	entries, err := h.service.Leaderboard(c.Request.Context(), claims.Actor())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, entries, nil)
}

// Export godoc
// @Summary Export the visible catalog
// @Description Streams the caller's visible documents as CSV or PDF
// @Tags Statistics
// @Produce text/csv
// @Produce application/pdf
// @Param format query string true "Export format: csv or pdf"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /stats/export [get]
func (h *StatsHandler) Export(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	dataset, err := h.service.ExportDataset(c.Request.Context(), claims.Actor())
	if err != nil {
		response.Error(c, err)
		return
	}

	format := c.DefaultQuery("format", "csv")
	switch format {
	case "csv":
		payload, err := h.csv.Render(*dataset)
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv"))
			return
		}
		c.Header("Content-Disposition", `attachment; filename="documents.csv"`)
		c.Data(http.StatusOK, "text/csv", payload)
	case "pdf":
		payload, err := h.pdf.Render(*dataset, "Document Catalog Report")
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf"))
			return
		}
		c.Header("Content-Disposition", `attachment; filename="documents.pdf"`)
		c.Data(http.StatusOK, "application/pdf", payload)
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format: %s", format)))
	}
}
