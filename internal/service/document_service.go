package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campusdocs/admp-api/internal/models"
	"github.com/campusdocs/admp-api/internal/policy"
	appErrors "github.com/campusdocs/admp-api/pkg/errors"
)

type documentStore interface {
	GetDocuments(ctx context.Context) ([]models.Document, error)
	MutateDocuments(ctx context.Context, fn func(docs []models.Document) ([]models.Document, error)) error
}

// storeFailure wraps raw store errors as internal errors while letting typed
// errors raised inside a mutation callback pass through untouched.
func storeFailure(err error, message string) error {
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return err
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}

type statsInvalidator interface {
	Invalidate(ctx context.Context, pattern string) error
}

// UploadRequest carries the metadata of a simulated upload. FileName and
// FileSize describe the selected file; no bytes are transmitted or stored.
type UploadRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	Category    string `json:"category" validate:"required"`
	Year        int    `json:"year" validate:"required,gte=1990"`
	FileName    string `json:"file_name" validate:"required"`
	FileSize    int64  `json:"file_size" validate:"gte=0"`
}

// UpdateDocumentRequest merges partial fields into an existing document.
type UpdateDocumentRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	Year        *int    `json:"year"`
}

// DocumentServiceConfig tunes the upload pipeline.
type DocumentServiceConfig struct {
	SimulatedDelay   time.Duration
	MaxFileSizeBytes int64
}

// DocumentService provides catalog CRUD over the documents collection.
// Authorization is enforced here, not in route gating: the policy check is
// the security boundary and runs at mutation time.
type DocumentService struct {
	store     documentStore
	activity  activityRecorder
	cache     statsInvalidator
	validator *validator.Validate
	logger    *zap.Logger
	config    DocumentServiceConfig
	now       func() time.Time
}

// NewDocumentService constructs a DocumentService.
func NewDocumentService(store documentStore, activity activityRecorder, cache statsInvalidator, validate *validator.Validate, logger *zap.Logger, config DocumentServiceConfig) *DocumentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &DocumentService{store: store, activity: activity, cache: cache, validator: validate, logger: logger, config: config, now: time.Now}
}

var slugPattern = regexp.MustCompile(`\s+`)

func synthesizeFilePath(dept models.Department, cat models.Category, year int, title string) string {
	slug := strings.ToLower(slugPattern.ReplaceAllString(strings.TrimSpace(title), "_"))
	return fmt.Sprintf("/uploads/%s/%s/%d_%s.pdf", dept, cat, year, slug)
}

// Upload creates a document attributed to the actor. The document lands in
// the actor's own department at the head of the stored ordering, with both
// timestamps stamped equal.
func (s *DocumentService) Upload(ctx context.Context, req UploadRequest, actor models.User) (*models.Document, error) {
	if !policy.CanUpload(actor) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "your role may not upload documents")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "a title and a file selection are required")
	}
	category := models.Category(req.Category)
	if !category.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown category")
	}
	if s.config.MaxFileSizeBytes > 0 && req.FileSize > s.config.MaxFileSizeBytes {
		return nil, appErrors.Clone(appErrors.ErrValidation, "file exceeds the maximum allowed size")
	}

	// Stand-in for the transfer a real backend would perform.
	if s.config.SimulatedDelay > 0 {
		time.Sleep(s.config.SimulatedDelay)
	}

	now := s.now().UTC()
	doc := models.Document{
		ID:           uuid.NewString(),
		Title:        req.Title,
		Description:  req.Description,
		Category:     category,
		Department:   actor.Department,
		UploadedBy:   actor.ID,
		UploaderName: actor.Name,
		Year:         req.Year,
		FilePath:     synthesizeFilePath(actor.Department, category, req.Year, req.Title),
		UploadDate:   now,
		LastUpdated:  now,
	}

	err := s.store.MutateDocuments(ctx, func(docs []models.Document) ([]models.Document, error) {
		return append([]models.Document{doc}, docs...), nil
	})
	if err != nil {
		return nil, storeFailure(err, "failed to persist document")
	}

	if err := s.activity.Record(ctx, models.ActivityUpload, actor.Name, fmt.Sprintf("Uploaded document: %s", doc.Title)); err != nil {
		s.logger.Warn("failed to record upload activity", zap.Error(err))
	}
	s.invalidateStats(ctx)

	return &doc, nil
}

// Update merges partial fields into the document, bumping lastUpdated and
// leaving uploadDate untouched. Missing ids are an explicit not-found.
func (s *DocumentService) Update(ctx context.Context, id string, req UpdateDocumentRequest, actor models.User) (*models.Document, error) {
	var updated models.Document
	err := s.store.MutateDocuments(ctx, func(docs []models.Document) ([]models.Document, error) {
		idx := indexOfDocument(docs, id)
		if idx < 0 {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "document not found")
		}
		if !policy.CanManage(actor, docs[idx]) {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "you may not modify this document")
		}

		doc := docs[idx]
		if req.Title != nil {
			if strings.TrimSpace(*req.Title) == "" {
				return nil, appErrors.Clone(appErrors.ErrValidation, "title must not be empty")
			}
			doc.Title = *req.Title
		}
		if req.Description != nil {
			doc.Description = *req.Description
		}
		if req.Category != nil {
			category := models.Category(*req.Category)
			if !category.Valid() {
				return nil, appErrors.Clone(appErrors.ErrValidation, "unknown category")
			}
			doc.Category = category
		}
		if req.Year != nil {
			doc.Year = *req.Year
		}
		doc.LastUpdated = s.now().UTC()

		docs[idx] = doc
		updated = doc
		return docs, nil
	})
	if err != nil {
		return nil, storeFailure(err, "failed to persist document")
	}

	if err := s.activity.Record(ctx, models.ActivityUpdate, actor.Name, fmt.Sprintf("Updated document ID: %s", id)); err != nil {
		s.logger.Warn("failed to record update activity", zap.Error(err))
	}
	s.invalidateStats(ctx)

	return &updated, nil
}

// Delete removes the document permanently. There is no tombstone and no
// undo; handlers must collect explicit confirmation before calling.
func (s *DocumentService) Delete(ctx context.Context, id string, actor models.User) error {
	err := s.store.MutateDocuments(ctx, func(docs []models.Document) ([]models.Document, error) {
		idx := indexOfDocument(docs, id)
		if idx < 0 {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "document not found")
		}
		if !policy.CanManage(actor, docs[idx]) {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "you may not delete this document")
		}
		return append(docs[:idx], docs[idx+1:]...), nil
	})
	if err != nil {
		return storeFailure(err, "failed to persist documents")
	}

	if err := s.activity.Record(ctx, models.ActivityDelete, actor.Name, fmt.Sprintf("Deleted document ID: %s", id)); err != nil {
		s.logger.Warn("failed to record delete activity", zap.Error(err))
	}
	s.invalidateStats(ctx)

	return nil
}

// ListForActor returns the actor's visible documents narrowed by the
// filter. The department filter is pinned to the actor's own department for
// STAFF and HOD; the "All" sentinel bypasses a filter entirely.
func (s *DocumentService) ListForActor(ctx context.Context, actor models.User, filter models.DocumentFilter) ([]models.Document, error) {
	docs, err := s.store.GetDocuments(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load documents")
	}

	visible := policy.VisibleDocuments(actor, docs)

	dept := policy.PinnedDepartment(actor, filter.Department)
	search := strings.ToLower(strings.TrimSpace(filter.Search))

	out := make([]models.Document, 0, len(visible))
	for _, d := range visible {
		if search != "" &&
			!strings.Contains(strings.ToLower(d.Title), search) &&
			!strings.Contains(strings.ToLower(d.UploaderName), search) {
			continue
		}
		if filter.Category != "" && filter.Category != models.FilterAll && string(d.Category) != filter.Category {
			continue
		}
		if dept != "" && dept != models.FilterAll && string(d.Department) != dept {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

// Folders derives the navigation hierarchy for the actor. With no
// department selected it lists the actor's visible departments and their
// counts; within a department it lists only categories holding at least one
// visible document.
func (s *DocumentService) Folders(ctx context.Context, actor models.User, department string) ([]models.FolderEntry, error) {
	docs, err := s.store.GetDocuments(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load documents")
	}

	visible := policy.VisibleDocuments(actor, docs)

	if department == "" {
		entries := make([]models.FolderEntry, 0, len(models.Departments))
		for _, dept := range policy.VisibleDepartments(actor) {
			count := 0
			for _, d := range visible {
				if d.Department == dept {
					count++
				}
			}
			entries = append(entries, models.FolderEntry{Name: string(dept), Count: count})
		}
		return entries, nil
	}

	dept := models.Department(department)
	if !dept.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown department")
	}

	entries := make([]models.FolderEntry, 0, len(models.Categories))
	for _, cat := range models.Categories {
		count := 0
		for _, d := range visible {
			if d.Department == dept && d.Category == cat {
				count++
			}
		}
		if count > 0 {
			entries = append(entries, models.FolderEntry{Name: string(cat), Count: count})
		}
	}
	return entries, nil
}

func (s *DocumentService) invalidateStats(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, "stats:*"); err != nil {
		s.logger.Warn("failed to invalidate stats cache", zap.Error(err))
	}
}

func indexOfDocument(docs []models.Document, id string) int {
	for i := range docs {
		if docs[i].ID == id {
			return i
		}
	}
	return -1
}
