package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campusdocs/admp-api/internal/models"
	appErrors "github.com/campusdocs/admp-api/pkg/errors"
)

type activityStore interface {
	GetActivity(ctx context.Context) ([]models.ActivityEntry, error)
	MutateActivity(ctx context.Context, fn func(entries []models.ActivityEntry) ([]models.ActivityEntry, error)) error
}

// ActivityService appends to and reads the portal's bounded activity trail.
// Entries are newest-first and never edited or individually deleted; once
// the collection holds MaxActivityEntries, the oldest entry is dropped.
type ActivityService struct {
	store  activityStore
	logger *zap.Logger
	now    func() time.Time
}

// NewActivityService constructs an ActivityService.
func NewActivityService(store activityStore, logger *zap.Logger) *ActivityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActivityService{store: store, logger: logger, now: time.Now}
}

// Record appends an activity entry attributed to the actor's display name.
func (s *ActivityService) Record(ctx context.Context, action, userName, details string) error {
	entry := models.ActivityEntry{
		ID:        uuid.NewString(),
		Action:    action,
		User:      userName,
		Timestamp: s.now().UTC(),
		Details:   details,
	}

	err := s.store.MutateActivity(ctx, func(entries []models.ActivityEntry) ([]models.ActivityEntry, error) {
		entries = append([]models.ActivityEntry{entry}, entries...)
		if len(entries) > models.MaxActivityEntries {
			entries = entries[:models.MaxActivityEntries]
		}
		return entries, nil
	})
	if err != nil {
		return storeFailure(err, "failed to persist activity log")
	}
	return nil
}

// List returns up to limit recent entries, newest first. A non-positive
// limit returns the full trail.
func (s *ActivityService) List(ctx context.Context, limit int) ([]models.ActivityEntry, error) {
	entries, err := s.store.GetActivity(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load activity log")
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}
