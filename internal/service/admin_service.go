package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/campusdocs/admp-api/internal/models"
	appErrors "github.com/campusdocs/admp-api/pkg/errors"
)

type adminStore interface {
	identityStore
	documentStore
	ClearAll(ctx context.Context) error
}

// AdminService hosts the maintenance operations behind the admin routes:
// demo-data seeding and the factory reset.
type AdminService struct {
	store    adminStore
	activity activityRecorder
	auth     *AuthService
	cache    statsInvalidator
	logger   *zap.Logger
	now      func() time.Time
}

// NewAdminService constructs an AdminService.
func NewAdminService(store adminStore, activity activityRecorder, auth *AuthService, cache statsInvalidator, logger *zap.Logger) *AdminService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminService{store: store, activity: activity, auth: auth, cache: cache, logger: logger, now: time.Now}
}

// demo fixtures carry stable ids so seeding twice changes nothing.
var demoUsers = []models.User{
	{ID: "demo-hod-cse", Name: "Dr. Ramesh Kumar", Email: "hod.cse@college.edu", Role: models.RoleHOD, Department: models.DeptCSE},
	{ID: "demo-hod-ece", Name: "Dr. Priya Sharma", Email: "hod.ece@college.edu", Role: models.RoleHOD, Department: models.DeptECE},
	{ID: "demo-staff-cse", Name: "Anita Verma", Email: "anita.verma@college.edu", Role: models.RoleStaff, Department: models.DeptCSE},
	{ID: "demo-staff-mech", Name: "Suresh Babu", Email: "suresh.babu@college.edu", Role: models.RoleStaff, Department: models.DeptMech},
}

type demoDoc struct {
	id       string
	title    string
	category models.Category
	owner    int // index into demoUsers
	year     int
}

var demoDocs = []demoDoc{
	{"demo-doc-1", "Machine Learning Fundamentals", models.CategoryBooks, 2, 2024},
	{"demo-doc-2", "Neural Architecture Search Survey", models.CategoryResearchPapers, 0, 2025},
	{"demo-doc-3", "IEEE Transactions Submission", models.CategoryJournals, 1, 2025},
	{"demo-doc-4", "Smart Campus IoT Project", models.CategoryProjects, 2, 2024},
	{"demo-doc-5", "Low-Power Sensor Patent Filing", models.CategoryPatents, 1, 2023},
	{"demo-doc-6", "Thermal Analysis Conference Talk", models.CategoryConferences, 3, 2025},
	{"demo-doc-7", "Best Faculty Award Citation", models.CategoryAchievements, 0, 2024},
}

// SeedDemo loads the demonstration fixtures. Users and documents carry
// fixed ids, so re-running skips everything already present.
func (s *AdminService) SeedDemo(ctx context.Context, actor models.User) (int, error) {
	now := s.now().UTC()
	seeded := 0

	err := s.store.MutateUsers(ctx, func(users []models.User) ([]models.User, error) {
		userByID := make(map[string]struct{}, len(users))
		for _, u := range users {
			userByID[u.ID] = struct{}{}
		}
		for _, du := range demoUsers {
			if _, ok := userByID[du.ID]; ok {
				continue
			}
			du.CreatedDate = now
			users = append(users, du)
			seeded++
		}
		return users, nil
	})
	if err != nil {
		return 0, storeFailure(err, "failed to persist demo users")
	}

	err = s.store.MutateDocuments(ctx, func(docs []models.Document) ([]models.Document, error) {
		docIDs := make(map[string]struct{}, len(docs))
		for _, d := range docs {
			docIDs[d.ID] = struct{}{}
		}
		for i, dd := range demoDocs {
			if _, ok := docIDs[dd.id]; ok {
				continue
			}
			owner := demoUsers[dd.owner]
			uploaded := now.AddDate(0, 0, -(i * 11))
			doc := models.Document{
				ID:           dd.id,
				Title:        dd.title,
				Description:  fmt.Sprintf("Demonstration record in %s", dd.category),
				Category:     dd.category,
				Department:   owner.Department,
				UploadedBy:   owner.ID,
				UploaderName: owner.Name,
				Year:         dd.year,
				FilePath:     synthesizeFilePath(owner.Department, dd.category, dd.year, dd.title),
				UploadDate:   uploaded,
				LastUpdated:  uploaded,
			}
			docs = append([]models.Document{doc}, docs...)
			seeded++
		}
		return docs, nil
	})
	if err != nil {
		return 0, storeFailure(err, "failed to persist demo documents")
	}

	if seeded == 0 {
		return 0, nil
	}

	if err := s.activity.Record(ctx, models.ActivityAdmin, actor.Name, fmt.Sprintf("Seeded %d demo records", seeded)); err != nil {
		s.logger.Warn("failed to record demo seeding", zap.Error(err))
	}
	s.invalidateStats(ctx)

	return seeded, nil
}

// Reset wipes every collection and the session slot, then re-seeds the two
// bootstrap accounts. The caller must pass confirm=true; anything else is
// rejected before any data is touched.
func (s *AdminService) Reset(ctx context.Context, confirm bool, actor models.User) error {
	if !confirm {
		return appErrors.Clone(appErrors.ErrConfirmNeeded, "factory reset requires confirm=true")
	}

	// ClearAll wipes the session slot along with the collections.
	if err := s.store.ClearAll(ctx); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear collections")
	}

	if err := s.auth.Bootstrap(ctx); err != nil {
		return err
	}

	if err := s.activity.Record(ctx, models.ActivityAdmin, actor.Name, "Factory reset performed"); err != nil {
		s.logger.Warn("failed to record factory reset", zap.Error(err))
	}
	s.invalidateStats(ctx)

	s.logger.Info("factory reset completed", zap.String("actor", actor.ID))
	return nil
}

func (s *AdminService) invalidateStats(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, "stats:*"); err != nil {
		s.logger.Warn("failed to invalidate stats cache", zap.Error(err))
	}
}
