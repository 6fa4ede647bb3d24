package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/coursehub/backend/internal/models"
	"github.com/coursehub/backend/libs/apperr"
)

// CourseRepository defines methods for course data access for educators
type CourseRepository interface {
	// Create creates a course together with its nested modules and lessons
	//
	// "ctx" is the context for the request.
	// "course" is the course to create; its ID and Modules are set on success.
	// "modules" are the modules to create, in order.
	//
	// Returns an error if any.
	Create(ctx context.Context, course *models.Course, modules []models.ModuleInput) error
	// GetByID retrieves a course without its modules
	//
	// "ctx" is the context for the request.
	// "id" is the ID of the course.
	//
	// Returns the course and an error if any.
	GetByID(ctx context.Context, id int) (*models.Course, error)
	// GetWithModules retrieves a course with its ordered modules and lessons
	//
	// "ctx" is the context for the request.
	// "id" is the ID of the course.
	//
	// Returns the course and an error if any.
	GetWithModules(ctx context.Context, id int) (*models.Course, error)
	// ListByEducator retrieves the courses owned by an educator
	//
	// "ctx" is the context for the request.
	// "educatorID" is the ID of the owner.
	//
	// Returns the courses, newest first, and an error if any.
	ListByEducator(ctx context.Context, educatorID int) ([]models.EducatorCourseListItem, error)
	// Update applies a partial update to a course
	//
	// "ctx" is the context for the request.
	// "id" is the ID of the course.
	// "req" holds the fields to change; a non-nil Modules is synced into the tree by ID.
	//
	// Returns an error if any.
	Update(ctx context.Context, id int, req *models.UpdateCourseRequest) error
	// Delete deletes a course with everything that belongs to it
	//
	// "ctx" is the context for the request.
	// "id" is the ID of the course.
	//
	// Returns an error if any.
	Delete(ctx context.Context, id int) error
	// AddModule appends a module to a course
	//
	// "ctx" is the context for the request.
	// "courseID" is the ID of the course.
	// "input" is the module to create with its lessons.
	//
	// Returns the created module and an error if any.
	AddModule(ctx context.Context, courseID int, input models.ModuleInput) (*models.Module, error)
	// DeleteModule deletes a module of a course
	//
	// "ctx" is the context for the request.
	// "courseID" is the ID of the course.
	// "moduleID" is the ID of the module.
	//
	// Returns an error if any.
	DeleteModule(ctx context.Context, courseID, moduleID int) error
	// AddLesson appends a lesson to a module of a course
	//
	// "ctx" is the context for the request.
	// "courseID" is the ID of the course.
	// "moduleID" is the ID of the module.
	// "input" is the lesson to create.
	//
	// Returns the created lesson and an error if any.
	AddLesson(ctx context.Context, courseID, moduleID int, input models.LessonInput) (*models.Lesson, error)
	// DeleteLesson deletes a lesson of a course
	//
	// "ctx" is the context for the request.
	// "courseID" is the ID of the course.
	// "lessonID" is the ID of the lesson.
	//
	// Returns an error if any.
	DeleteLesson(ctx context.Context, courseID, lessonID int) error
}

type courseService struct {
	courseRepo CourseRepository
}

// NewCourseService creates a new educator course service
func NewCourseService(courseRepo CourseRepository) *courseService {
	return &courseService{
		courseRepo: courseRepo,
	}
}

var errNotCourseOwner = apperr.Forbidden("you do not have rights to manage this course")

// Column widths of the catalog tables
const (
	maxTitleLength    = 255
	maxCategoryLength = 100
	maxURLLength      = 1024
	maxDurationLength = 50
)

// checkLength rejects values longer than the column that stores them
func checkLength(name, value string, limit int) error {
	if utf8.RuneCountInString(value) > limit {
		return apperr.Invalid(fmt.Sprintf("%s must be at most %d characters long", name, limit))
	}
	return nil
}

// CreateCourse validates and creates a course owned by the educator
func (s *courseService) CreateCourse(ctx context.Context, educatorID int, req *models.CreateCourseRequest) (*models.Course, error) {
	course := &models.Course{
		EducatorID:  educatorID,
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Category:    strings.TrimSpace(req.Category),
		Level:       req.Level,
		Thumbnail:   strings.TrimSpace(req.Thumbnail),
	}
	if course.Title == "" {
		return nil, apperr.Invalid("title is required")
	}
	if course.Description == "" {
		return nil, apperr.Invalid("description is required")
	}
	if course.Category == "" {
		return nil, apperr.Invalid("category is required")
	}
	if req.Price != nil {
		if *req.Price < 0 {
			return nil, apperr.Invalid("price cannot be negative")
		}
		course.Price = *req.Price
	}
	if course.Level == "" {
		course.Level = models.LevelBeginner
	}
	if !course.Level.IsValid() {
		return nil, apperr.Invalid("invalid level")
	}
	if course.Thumbnail == "" {
		course.Thumbnail = models.DefaultThumbnail
	}
	if err := errors.Join(
		checkLength("title", course.Title, maxTitleLength),
		checkLength("category", course.Category, maxCategoryLength),
		checkLength("thumbnail", course.Thumbnail, maxURLLength),
	); err != nil {
		return nil, err
	}

	modules, err := normalizeModules(req.Modules)
	if err != nil {
		return nil, err
	}

	if err := s.courseRepo.Create(ctx, course, modules); err != nil {
		return nil, err
	}

	return course, nil
}

// ListMyCourses returns the educator's own courses
func (s *courseService) ListMyCourses(ctx context.Context, educatorID int) ([]models.EducatorCourseListItem, error) {
	return s.courseRepo.ListByEducator(ctx, educatorID)
}

// GetCourse returns the full tree of a course owned by the educator
func (s *courseService) GetCourse(ctx context.Context, educatorID, courseID int) (*models.Course, error) {
	course, err := s.courseRepo.GetWithModules(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if course.EducatorID != educatorID {
		return nil, errNotCourseOwner
	}
	return course, nil
}

// UpdateCourse applies a partial update to a course owned by the educator
func (s *courseService) UpdateCourse(ctx context.Context, educatorID, courseID int, req *models.UpdateCourseRequest) error {
	if req.IsEmpty() {
		return apperr.Invalid("at least one field must be provided")
	}
	if err := validateUpdateCourse(req); err != nil {
		return err
	}

	if err := s.authorize(ctx, educatorID, courseID); err != nil {
		return err
	}

	return s.courseRepo.Update(ctx, courseID, req)
}

// validateUpdateCourse trims the provided fields in place and rejects invalid ones
func validateUpdateCourse(req *models.UpdateCourseRequest) error {
	for _, field := range []struct {
		value *string
		name  string
		limit int
	}{
		{req.Title, "title", maxTitleLength},
		{req.Description, "description", 0},
		{req.Category, "category", maxCategoryLength},
	} {
		if field.value == nil {
			continue
		}
		*field.value = strings.TrimSpace(*field.value)
		if *field.value == "" {
			return apperr.Invalid(field.name + " cannot be empty")
		}
		if field.limit > 0 {
			if err := checkLength(field.name, *field.value, field.limit); err != nil {
				return err
			}
		}
	}
	if req.Price != nil && *req.Price < 0 {
		return apperr.Invalid("price cannot be negative")
	}
	if req.Level != nil && !req.Level.IsValid() {
		return apperr.Invalid("invalid level")
	}
	if req.Thumbnail != nil {
		thumbnail := strings.TrimSpace(*req.Thumbnail)
		if thumbnail == "" {
			thumbnail = models.DefaultThumbnail
		}
		if err := checkLength("thumbnail", thumbnail, maxURLLength); err != nil {
			return err
		}
		req.Thumbnail = &thumbnail
	}
	if req.Modules != nil {
		modules, err := normalizeModules(*req.Modules)
		if err != nil {
			return err
		}
		req.Modules = &modules
	}
	return nil
}

// DeleteCourse deletes a course owned by the educator
func (s *courseService) DeleteCourse(ctx context.Context, educatorID, courseID int) error {
	if err := s.authorize(ctx, educatorID, courseID); err != nil {
		return err
	}
	return s.courseRepo.Delete(ctx, courseID)
}

// AddModule appends a module to a course owned by the educator
func (s *courseService) AddModule(ctx context.Context, educatorID, courseID int, input *models.ModuleInput) (*models.Module, error) {
	modules, err := normalizeModules([]models.ModuleInput{*input})
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, educatorID, courseID); err != nil {
		return nil, err
	}
	return s.courseRepo.AddModule(ctx, courseID, modules[0])
}

// DeleteModule deletes a module of a course owned by the educator
func (s *courseService) DeleteModule(ctx context.Context, educatorID, courseID, moduleID int) error {
	if err := s.authorize(ctx, educatorID, courseID); err != nil {
		return err
	}
	return s.courseRepo.DeleteModule(ctx, courseID, moduleID)
}

// AddLesson appends a lesson to a module of a course owned by the educator
func (s *courseService) AddLesson(ctx context.Context, educatorID, courseID, moduleID int, input *models.LessonInput) (*models.Lesson, error) {
	lesson, err := normalizeLesson(*input)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, educatorID, courseID); err != nil {
		return nil, err
	}
	return s.courseRepo.AddLesson(ctx, courseID, moduleID, lesson)
}

// DeleteLesson deletes a lesson of a course owned by the educator
func (s *courseService) DeleteLesson(ctx context.Context, educatorID, courseID, lessonID int) error {
	if err := s.authorize(ctx, educatorID, courseID); err != nil {
		return err
	}
	return s.courseRepo.DeleteLesson(ctx, courseID, lessonID)
}

// authorize loads the course and checks that the educator owns it
func (s *courseService) authorize(ctx context.Context, educatorID, courseID int) error {
	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return err
	}
	if course.EducatorID != educatorID {
		return errNotCourseOwner
	}
	return nil
}

// normalizeModules trims and validates a module tree
//
// IDs are kept so a tree update can match existing rows; an ID may appear only once.
func normalizeModules(inputs []models.ModuleInput) ([]models.ModuleInput, error) {
	modules := make([]models.ModuleInput, 0, len(inputs))
	seenModules := make(map[int]struct{})
	seenLessons := make(map[int]struct{})
	for _, input := range inputs {
		module := models.ModuleInput{
			ID:      input.ID,
			Title:   strings.TrimSpace(input.Title),
			Lessons: make([]models.LessonInput, 0, len(input.Lessons)),
		}
		if module.Title == "" {
			return nil, apperr.Invalid("module title is required")
		}
		if err := checkLength("module title", module.Title, maxTitleLength); err != nil {
			return nil, err
		}
		if err := checkInputID("module", module.ID, seenModules); err != nil {
			return nil, err
		}
		for _, lessonInput := range input.Lessons {
			lesson, err := normalizeLesson(lessonInput)
			if err != nil {
				return nil, err
			}
			if err := checkInputID("lesson", lesson.ID, seenLessons); err != nil {
				return nil, err
			}
			module.Lessons = append(module.Lessons, lesson)
		}
		modules = append(modules, module)
	}
	return modules, nil
}

func checkInputID(kind string, id int, seen map[int]struct{}) error {
	if id < 0 {
		return apperr.Invalid("invalid " + kind + " id")
	}
	if id == 0 {
		return nil
	}
	if _, ok := seen[id]; ok {
		return apperr.Invalid(fmt.Sprintf("%s %d appears more than once", kind, id))
	}
	seen[id] = struct{}{}
	return nil
}

func normalizeLesson(input models.LessonInput) (models.LessonInput, error) {
	lesson := models.LessonInput{
		ID:       input.ID,
		Title:    strings.TrimSpace(input.Title),
		Type:     input.Type,
		URL:      strings.TrimSpace(input.URL),
		Content:  input.Content,
		Duration: strings.TrimSpace(input.Duration),
	}
	if lesson.Title == "" {
		return lesson, apperr.Invalid("lesson title is required")
	}
	if lesson.Type == "" {
		lesson.Type = models.LessonTypeVideo
	}
	if !lesson.Type.IsValid() {
		return lesson, apperr.Invalid("invalid lesson type")
	}
	if err := errors.Join(
		checkLength("lesson title", lesson.Title, maxTitleLength),
		checkLength("lesson url", lesson.URL, maxURLLength),
		checkLength("lesson duration", lesson.Duration, maxDurationLength),
	); err != nil {
		return lesson, err
	}
	return lesson, nil
}
