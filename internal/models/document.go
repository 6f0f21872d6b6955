package models

import "time"

// Category classifies catalog documents.
type Category string

const (
	CategoryBooks          Category = "Books"
	CategoryResearchPapers Category = "Research Papers"
	CategoryJournals       Category = "Journals"
	CategoryProjects       Category = "Projects"
	CategoryPatents        Category = "Patents"
	CategoryConferences    Category = "Conferences"
	CategoryAchievements   Category = "Achievements"
	CategoryOthers         Category = "Others"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryBooks,
	CategoryResearchPapers,
	CategoryJournals,
	CategoryProjects,
	CategoryPatents,
	CategoryConferences,
	CategoryAchievements,
	CategoryOthers,
}

// Valid reports whether the category is known.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Document is a catalog entry. Only metadata is recorded; FilePath is a
// synthetic, non-dereferenceable location. UploaderName is a denormalized
// snapshot taken at upload time and is not refreshed when the user renames
// their account. UploadedBy references a User but is never validated or
// cascaded, so orphaned references are tolerated.
type Document struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Category     Category   `json:"category"`
	Department   Department `json:"department"`
	UploadedBy   string     `json:"uploadedBy"`
	UploaderName string     `json:"uploaderName"`
	Year         int        `json:"year"`
	FilePath     string     `json:"filePath"`
	UploadDate   time.Time  `json:"uploadDate"`
	LastUpdated  time.Time  `json:"lastUpdated"`
}

// FilterAll is the sentinel that bypasses a category or department filter.
const FilterAll = "All"

// DocumentFilter narrows a visible document set.
type DocumentFilter struct {
	Search     string
	Category   string
	Department string
}

// FolderEntry is one node of the two-level department/category folder view.
type FolderEntry struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}
