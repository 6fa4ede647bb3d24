package models

import "time"

// Level represents the difficulty level of a course
type Level string

const (
	LevelBeginner     Level = "Beginner"
	LevelIntermediate Level = "Intermediate"
	LevelAdvanced     Level = "Advanced"
	LevelAllLevels    Level = "All Levels"
)

// IsValid reports whether l is one of the known levels
func (l Level) IsValid() bool {
	switch l {
	case LevelBeginner, LevelIntermediate, LevelAdvanced, LevelAllLevels:
		return true
	}
	return false
}

// LessonType represents the kind of lesson content
type LessonType string

const (
	LessonTypeVideo LessonType = "video"
	LessonTypeText  LessonType = "text"
	LessonTypeQuiz  LessonType = "quiz"
)

// IsValid reports whether t is one of the known lesson types
func (t LessonType) IsValid() bool {
	switch t {
	case LessonTypeVideo, LessonTypeText, LessonTypeQuiz:
		return true
	}
	return false
}

// DefaultThumbnail is used when a course is created without a thumbnail
const DefaultThumbnail = "https://via.placeholder.com/640x360.png?text=No+Image"

// Course represents a course with its ordered modules
type Course struct {
	ID          int       `json:"id"`
	EducatorID  int       `json:"educatorId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Category    string    `json:"category"`
	Level       Level     `json:"level"`
	Thumbnail   string    `json:"thumbnail"`
	Modules     []Module  `json:"modules"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// LessonIDs flattens the lesson IDs of all modules in order
func (c *Course) LessonIDs() []int {
	ids := make([]int, 0)
	for _, m := range c.Modules {
		for _, l := range m.Lessons {
			ids = append(ids, l.ID)
		}
	}
	return ids
}

// Module is an ordered group of lessons inside a course
type Module struct {
	ID       int      `json:"id"`
	CourseID int      `json:"courseId,omitempty"`
	Title    string   `json:"title"`
	Position int      `json:"position"`
	Lessons  []Lesson `json:"lessons"`
}

// Lesson is the atomic unit of content inside a module
type Lesson struct {
	ID       int        `json:"id"`
	ModuleID int        `json:"moduleId,omitempty"`
	Title    string     `json:"title"`
	Type     LessonType `json:"type"`
	URL      string     `json:"url,omitempty"`
	Content  string     `json:"content,omitempty"`
	Duration string     `json:"duration,omitempty"`
	Position int        `json:"position"`
}

// EducatorCourseListItem is a course in the educator's own listing
type EducatorCourseListItem struct {
	Course
	StudentCount int `json:"studentCount"`
}

// CatalogCourse is a course as seen by a browsing student
type CatalogCourse struct {
	Course
	Instructor string `json:"instructor"`
}

// LessonInput describes a lesson to create
//
// On a tree update a non-zero ID keeps an existing lesson of the course.
type LessonInput struct {
	ID       int        `json:"id,omitempty"`
	Title    string     `json:"title"`
	Type     LessonType `json:"type"`
	URL      string     `json:"url"`
	Content  string     `json:"content"`
	Duration string     `json:"duration"`
}

// ModuleInput describes a module to create, with its lessons
//
// On a tree update a non-zero ID keeps an existing module of the course.
type ModuleInput struct {
	ID      int           `json:"id,omitempty"`
	Title   string        `json:"title"`
	Lessons []LessonInput `json:"lessons"`
}

// CreateCourseRequest represents a request to create a course
type CreateCourseRequest struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Price       *float64      `json:"price,omitempty"`
	Category    string        `json:"category"`
	Level       Level         `json:"level,omitempty"`
	Thumbnail   string        `json:"thumbnail,omitempty"`
	Modules     []ModuleInput `json:"modules,omitempty"`
}

// UpdateCourseRequest represents a partial course update
//
// A non-nil Modules becomes the new module tree. Entries with an ID update the
// matching rows, entries without one are created, and rows left out are removed.
type UpdateCourseRequest struct {
	Title       *string        `json:"title,omitempty"`
	Description *string        `json:"description,omitempty"`
	Price       *float64       `json:"price,omitempty"`
	Category    *string        `json:"category,omitempty"`
	Level       *Level         `json:"level,omitempty"`
	Thumbnail   *string        `json:"thumbnail,omitempty"`
	Modules     *[]ModuleInput `json:"modules,omitempty"`
}

// IsEmpty reports whether the request carries no field to update
func (r *UpdateCourseRequest) IsEmpty() bool {
	return r.Title == nil && r.Description == nil && r.Price == nil && r.Category == nil &&
		r.Level == nil && r.Thumbnail == nil && r.Modules == nil
}
