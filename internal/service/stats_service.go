package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/campusdocs/admp-api/internal/models"
	"github.com/campusdocs/admp-api/internal/policy"
	appErrors "github.com/campusdocs/admp-api/pkg/errors"
	"github.com/campusdocs/admp-api/pkg/export"
)

const (
	recentDocumentsLimit = 5
	leaderboardLimit     = 5
	trendMonths          = 6
)

// StatsService derives dashboard aggregates from the actor's visible
// document set. Every figure is computed over visibility-scoped data, so
// two actors looking at the same dashboard can see different numbers.
type StatsService struct {
	store  documentStore
	cache  *CacheService
	logger *zap.Logger
	ttl    time.Duration
	now    func() time.Time
}

// NewStatsService constructs a StatsService.
func NewStatsService(store documentStore, cache *CacheService, logger *zap.Logger, ttl time.Duration) *StatsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatsService{store: store, cache: cache, logger: logger, ttl: ttl, now: time.Now}
}

// cacheKey scopes cached aggregates to the actor's visibility. Role and
// department cover HOD/PRINCIPAL/ADMIN scoping; the user id covers STAFF,
// whose visible set is their own uploads.
func (s *StatsService) cacheKey(kind string, actor models.User) string {
	return fmt.Sprintf("stats:%s:%s:%s:%s", kind, actor.Role, actor.Department, actor.ID)
}

func (s *StatsService) visible(ctx context.Context, actor models.User) ([]models.Document, error) {
	docs, err := s.store.GetDocuments(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load documents")
	}
	return policy.VisibleDocuments(actor, docs), nil
}

// Overview computes the summary card figures: totals, active categories,
// month-over-month growth and the five most recent uploads.
func (s *StatsService) Overview(ctx context.Context, actor models.User) (*models.OverviewStats, error) {
	key := s.cacheKey("overview", actor)
	if s.cache.Enabled() {
		var cached models.OverviewStats
		if hit, _ := s.cache.Get(ctx, key, &cached); hit {
			return &cached, nil
		}
	}

	visible, err := s.visible(ctx, actor)
	if err != nil {
		return nil, err
	}

	deptCount := 0
	categorySeen := make(map[models.Category]struct{})
	for _, d := range visible {
		if d.Department == actor.Department {
			deptCount++
		}
		categorySeen[d.Category] = struct{}{}
	}

	recent := visible
	if len(recent) > recentDocumentsLimit {
		recent = recent[:recentDocumentsLimit]
	}

	stats := &models.OverviewStats{
		TotalDocuments:      len(visible),
		DepartmentDocuments: deptCount,
		ActiveCategories:    len(categorySeen),
		GrowthRatePercent:   growthRate(visible, s.now().UTC()),
		RecentDocuments:     append([]models.Document{}, recent...),
	}

	if err := s.cache.Set(ctx, key, stats, s.ttl); err != nil {
		s.logger.Debug("overview cache set failed", zap.Error(err))
	}
	return stats, nil
}

// growthRate compares this calendar month's uploads against last month's.
// A zero baseline yields +100 when anything was uploaded this month, else 0;
// otherwise the delta is expressed as a rounded percentage of the baseline.
func growthRate(docs []models.Document, now time.Time) int {
	thisMonth, thisYear := now.Month(), now.Year()
	lastMonthTime := now.AddDate(0, -1, 0)
	lastMonth, lastYear := lastMonthTime.Month(), lastMonthTime.Year()

	var thisCount, lastCount int
	for _, d := range docs {
		u := d.UploadDate
		if u.Month() == thisMonth && u.Year() == thisYear {
			thisCount++
		}
		if u.Month() == lastMonth && u.Year() == lastYear {
			lastCount++
		}
	}

	if lastCount == 0 {
		if thisCount > 0 {
			return 100
		}
		return 0
	}
	return int(math.Round(float64(thisCount-lastCount) / float64(lastCount) * 100))
}

// Distribution tallies visible documents per category and per department.
// Empty categories are omitted; every department is always reported, so the
// department chart keeps a stable axis.
func (s *StatsService) Distribution(ctx context.Context, actor models.User) (*models.Distribution, error) {
	key := s.cacheKey("distribution", actor)
	if s.cache.Enabled() {
		var cached models.Distribution
		if hit, _ := s.cache.Get(ctx, key, &cached); hit {
			return &cached, nil
		}
	}

	visible, err := s.visible(ctx, actor)
	if err != nil {
		return nil, err
	}

	dist := &models.Distribution{
		Categories:  make([]models.CategoryCount, 0, len(models.Categories)),
		Departments: make([]models.DepartmentCount, 0, len(models.Departments)),
	}
	for _, cat := range models.Categories {
		count := 0
		for _, d := range visible {
			if d.Category == cat {
				count++
			}
		}
		if count > 0 {
			dist.Categories = append(dist.Categories, models.CategoryCount{Name: string(cat), Count: count})
		}
	}
	for _, dept := range models.Departments {
		count := 0
		for _, d := range visible {
			if d.Department == dept {
				count++
			}
		}
		dist.Departments = append(dist.Departments, models.DepartmentCount{Name: string(dept), Count: count})
	}

	if err := s.cache.Set(ctx, key, dist, s.ttl); err != nil {
		s.logger.Debug("distribution cache set failed", zap.Error(err))
	}
	return dist, nil
}

// Trend buckets visible uploads into the trailing six calendar months,
// oldest first. Matching is by month index alone, so a document uploaded in
// the same month of an earlier year lands in the current bucket.
func (s *StatsService) Trend(ctx context.Context, actor models.User) ([]models.MonthlyCount, error) {
	key := s.cacheKey("trend", actor)
	if s.cache.Enabled() {
		var cached []models.MonthlyCount
		if hit, _ := s.cache.Get(ctx, key, &cached); hit {
			return cached, nil
		}
	}

	visible, err := s.visible(ctx, actor)
	if err != nil {
		return nil, err
	}

	currentMonth := int(s.now().UTC().Month()) - 1
	trend := make([]models.MonthlyCount, 0, trendMonths)
	for i := 0; i < trendMonths; i++ {
		monthIndex := (currentMonth - (trendMonths - 1 - i) + 12) % 12
		count := 0
		for _, d := range visible {
			if int(d.UploadDate.Month())-1 == monthIndex {
				count++
			}
		}
		trend = append(trend, models.MonthlyCount{
			Month:   time.Month(monthIndex + 1).String()[:3],
			Uploads: count,
		})
	}

	if err := s.cache.Set(ctx, key, trend, s.ttl); err != nil {
		s.logger.Debug("trend cache set failed", zap.Error(err))
	}
	return trend, nil
}

// Leaderboard ranks contributors of the visible set by upload count, top
// five. The sort is stable over first-encounter order, so ties keep the
// order in which contributors first appear in the stored collection.
func (s *StatsService) Leaderboard(ctx context.Context, actor models.User) ([]models.LeaderboardEntry, error) {
	key := s.cacheKey("leaderboard", actor)
	if s.cache.Enabled() {
		var cached []models.LeaderboardEntry
		if hit, _ := s.cache.Get(ctx, key, &cached); hit {
			return cached, nil
		}
	}

	visible, err := s.visible(ctx, actor)
	if err != nil {
		return nil, err
	}

	index := make(map[string]int)
	entries := make([]models.LeaderboardEntry, 0)
	for _, d := range visible {
		if pos, ok := index[d.UploadedBy]; ok {
			entries[pos].Count++
			continue
		}
		index[d.UploadedBy] = len(entries)
		entries = append(entries, models.LeaderboardEntry{
			UserID: d.UploadedBy,
			Name:   d.UploaderName,
			Count:  1,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Count > entries[j].Count
	})
	if len(entries) > leaderboardLimit {
		entries = entries[:leaderboardLimit]
	}

	if err := s.cache.Set(ctx, key, entries, s.ttl); err != nil {
		s.logger.Debug("leaderboard cache set failed", zap.Error(err))
	}
	return entries, nil
}

// ExportDataset flattens the actor's visible documents into a tabular
// dataset for the CSV and PDF exporters.
func (s *StatsService) ExportDataset(ctx context.Context, actor models.User) (*export.Dataset, error) {
	visible, err := s.visible(ctx, actor)
	if err != nil {
		return nil, err
	}

	dataset := &export.Dataset{
		Headers:     []string{"Title", "Category", "Department", "Uploaded By", "Year", "Upload Date"},
		Rows:        make([]map[string]string, 0, len(visible)),
		GeneratedAt: s.now().UTC(),
	}
	for _, d := range visible {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Title":       d.Title,
			"Category":    string(d.Category),
			"Department":  string(d.Department),
			"Uploaded By": d.UploaderName,
			"Year":        fmt.Sprintf("%d", d.Year),
			"Upload Date": d.UploadDate.Format("2006-01-02"),
		})
	}
	return dataset, nil
}
