package models

// CategoryCount pairs a category with its document count.
type CategoryCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// DepartmentCount pairs a department with its document count.
type DepartmentCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// MonthlyCount is one bucket of the trailing six-month upload trend.
type MonthlyCount struct {
	Month   string `json:"month"`
	Uploads int    `json:"uploads"`
}

// LeaderboardEntry ranks one contributor by upload count.
type LeaderboardEntry struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Count  int    `json:"count"`
}

// OverviewStats backs the dashboard summary cards.
type OverviewStats struct {
	TotalDocuments      int        `json:"totalDocuments"`
	DepartmentDocuments int        `json:"departmentDocuments"`
	ActiveCategories    int        `json:"activeCategories"`
	GrowthRatePercent   int        `json:"growthRatePercent"`
	RecentDocuments     []Document `json:"recentDocuments"`
}

// Distribution groups per-category and per-department counts. Categories
// with zero documents are excluded; every department is always listed.
type Distribution struct {
	Categories  []CategoryCount   `json:"categories"`
	Departments []DepartmentCount `json:"departments"`
}
