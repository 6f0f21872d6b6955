package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campusdocs/admp-api/internal/models"
	"github.com/campusdocs/admp-api/internal/service"
	appErrors "github.com/campusdocs/admp-api/pkg/errors"
	"github.com/campusdocs/admp-api/pkg/response"
)

// DocumentHandler wires HTTP endpoints to the document catalog service.
type DocumentHandler struct {
	service *service.DocumentService
}

// NewDocumentHandler creates a new handler.
func NewDocumentHandler(svc *service.DocumentService) *DocumentHandler {
	return &DocumentHandler{service: svc}
}

// List godoc
// @Summary List visible documents
// @Description Returns the caller's visible documents, optionally filtered
// @Tags Documents
// @Produce json
// @Param search query string false "Case-insensitive title or uploader match"
// @Param category query string false "Category filter, or All"
// @Param department query string false "Department filter, or All"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /documents [get]
func (h *DocumentHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	filter := models.DocumentFilter{
		Search:     c.Query("search"),
		Category:   c.Query("category"),
		Department: c.Query("department"),
	}

	docs, err := h.service.ListForActor(c.Request.Context(), claims.Actor(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, docs, map[string]interface{}{"count": len(docs)})
}

// Upload godoc
// @Summary Upload a document
// @Description Creates a catalog entry from upload metadata
// @Tags Documents
// @Accept json
// @Produce json
// @Param payload body service.UploadRequest true "Upload payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /documents [post]
func (h *DocumentHandler) Upload(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.UploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid upload payload"))
		return
	}

	doc, err := h.service.Upload(c.Request.Context(), req, claims.Actor())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, doc)
}

// Update godoc
// @Summary Update a document
// @Description Applies a partial edit to an existing document
// @Tags Documents
// @Accept json
// @Produce json
// @Param id path string true "Document ID"
// @Param payload body service.UpdateDocumentRequest true "Update payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /documents/{id} [patch]
func (h *DocumentHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.UpdateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid update payload"))
		return
	}

	doc, err := h.service.Update(c.Request.Context(), c.Param("id"), req, claims.Actor())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, doc, nil)
}

// Delete godoc
// @Summary Delete a document
// @Description Permanently removes a document from the catalog
// @Tags Documents
// @Produce json
// @Param id path string true "Document ID"
// @Success 204 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /documents/{id} [delete]
func (h *DocumentHandler) Delete(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.service.Delete(c.Request.Context(), c.Param("id"), claims.Actor()); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// Folders godoc
// @Summary Browse the folder hierarchy
// @Description Lists departments with counts, or categories within a department
// @Tags Documents
// @Produce json
// @Param department query string false "Department to drill into"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /documents/folders [get]
func (h *DocumentHandler) Folders(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	entries, err := h.service.Folders(c.Request.Context(), claims.Actor(), c.Query("department"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, entries, nil)
}
