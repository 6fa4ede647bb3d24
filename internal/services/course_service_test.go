package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/coursehub/backend/internal/models"
	"github.com/coursehub/backend/libs/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockCourseRepository is a mock implementation of CourseRepository
type mockCourseRepository struct {
	course    *models.Course
	getErr    error
	list      []models.EducatorCourseListItem
	listErr   error
	createErr error
	writeErr  error
	module    *models.Module
	lesson    *models.Lesson

	createdCourse  *models.Course
	createdModules []models.ModuleInput
	updateReq      *models.UpdateCourseRequest
	writes         []string
}

func (m *mockCourseRepository) Create(ctx context.Context, course *models.Course, modules []models.ModuleInput) error {
	if m.createErr != nil {
		return m.createErr
	}
	course.ID = 42
	m.createdCourse = course
	m.createdModules = modules
	return nil
}

func (m *mockCourseRepository) GetByID(ctx context.Context, id int) (*models.Course, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.course, nil
}

func (m *mockCourseRepository) GetWithModules(ctx context.Context, id int) (*models.Course, error) {
	return m.GetByID(ctx, id)
}

func (m *mockCourseRepository) ListByEducator(ctx context.Context, educatorID int) ([]models.EducatorCourseListItem, error) {
	return m.list, m.listErr
}

func (m *mockCourseRepository) Update(ctx context.Context, id int, req *models.UpdateCourseRequest) error {
	m.writes = append(m.writes, "update")
	m.updateReq = req
	return m.writeErr
}

func (m *mockCourseRepository) Delete(ctx context.Context, id int) error {
	m.writes = append(m.writes, "delete")
	return m.writeErr
}

func (m *mockCourseRepository) AddModule(ctx context.Context, courseID int, input models.ModuleInput) (*models.Module, error) {
	m.writes = append(m.writes, "add_module")
	if m.writeErr != nil {
		return nil, m.writeErr
	}
	return m.module, nil
}

func (m *mockCourseRepository) DeleteModule(ctx context.Context, courseID, moduleID int) error {
	m.writes = append(m.writes, "delete_module")
	return m.writeErr
}

func (m *mockCourseRepository) AddLesson(ctx context.Context, courseID, moduleID int, input models.LessonInput) (*models.Lesson, error) {
	m.writes = append(m.writes, "add_lesson")
	if m.writeErr != nil {
		return nil, m.writeErr
	}
	return m.lesson, nil
}

func (m *mockCourseRepository) DeleteLesson(ctx context.Context, courseID, lessonID int) error {
	m.writes = append(m.writes, "delete_lesson")
	return m.writeErr
}

func ptr[T any](v T) *T {
	return &v
}

func TestCourseService_CreateCourse(t *testing.T) {
	tests := []struct {
		name          string
		req           *models.CreateCourseRequest
		repo          *mockCourseRepository
		expectedError bool
		errorContains string
		validate      func(t *testing.T, course *models.Course, repo *mockCourseRepository)
	}{
		{
			name: "success with defaults",
			req: &models.CreateCourseRequest{
				Title:       " Go Basics ",
				Description: "Learn Go",
				Category:    "Programming",
				Modules: []models.ModuleInput{
					{Title: "Intro", Lessons: []models.LessonInput{{Title: "Hello"}, {Title: "Setup", Type: models.LessonTypeText}}},
				},
			},
			repo: &mockCourseRepository{},
			validate: func(t *testing.T, course *models.Course, repo *mockCourseRepository) {
				assert.Equal(t, 42, course.ID)
				assert.Equal(t, 7, course.EducatorID)
				assert.Equal(t, "Go Basics", course.Title)
				assert.Equal(t, models.LevelBeginner, course.Level)
				assert.Equal(t, models.DefaultThumbnail, course.Thumbnail)
				assert.Zero(t, course.Price)
				require.Len(t, repo.createdModules, 1)
				require.Len(t, repo.createdModules[0].Lessons, 2)
				assert.Equal(t, models.LessonTypeVideo, repo.createdModules[0].Lessons[0].Type)
				assert.Equal(t, models.LessonTypeText, repo.createdModules[0].Lessons[1].Type)
			},
		},
		{
			name: "explicit price and level",
			req: &models.CreateCourseRequest{
				Title: "Go", Description: "d", Category: "c", Price: ptr(49.99), Level: models.LevelAdvanced,
			},
			repo: &mockCourseRepository{},
			validate: func(t *testing.T, course *models.Course, repo *mockCourseRepository) {
				assert.Equal(t, 49.99, course.Price)
				assert.Equal(t, models.LevelAdvanced, course.Level)
				assert.Empty(t, repo.createdModules)
			},
		},
		{
			name:          "missing title",
			req:           &models.CreateCourseRequest{Title: "  ", Description: "d", Category: "c"},
			repo:          &mockCourseRepository{},
			expectedError: true,
			errorContains: "title is required",
		},
		{
			name:          "missing category",
			req:           &models.CreateCourseRequest{Title: "t", Description: "d"},
			repo:          &mockCourseRepository{},
			expectedError: true,
			errorContains: "category is required",
		},
		{
			name:          "negative price",
			req:           &models.CreateCourseRequest{Title: "t", Description: "d", Category: "c", Price: ptr(-1.0)},
			repo:          &mockCourseRepository{},
			expectedError: true,
			errorContains: "price cannot be negative",
		},
		{
			name:          "unknown level",
			req:           &models.CreateCourseRequest{Title: "t", Description: "d", Category: "c", Level: "Expert"},
			repo:          &mockCourseRepository{},
			expectedError: true,
			errorContains: "invalid level",
		},
		{
			name: "lesson without title",
			req: &models.CreateCourseRequest{
				Title: "t", Description: "d", Category: "c",
				Modules: []models.ModuleInput{{Title: "m", Lessons: []models.LessonInput{{Title: ""}}}},
			},
			repo:          &mockCourseRepository{},
			expectedError: true,
			errorContains: "lesson title is required",
		},
		{
			name: "unknown lesson type",
			req: &models.CreateCourseRequest{
				Title: "t", Description: "d", Category: "c",
				Modules: []models.ModuleInput{{Title: "m", Lessons: []models.LessonInput{{Title: "l", Type: "podcast"}}}},
			},
			repo:          &mockCourseRepository{},
			expectedError: true,
			errorContains: "invalid lesson type",
		},
		{
			name:          "title longer than its column",
			req:           &models.CreateCourseRequest{Title: strings.Repeat("é", 256), Description: "d", Category: "c"},
			repo:          &mockCourseRepository{},
			expectedError: true,
			errorContains: "title must be at most 255 characters long",
		},
		{
			name: "thumbnail url too long",
			req: &models.CreateCourseRequest{
				Title: "t", Description: "d", Category: "c", Thumbnail: "https://cdn/" + strings.Repeat("x", 1024),
			},
			repo:          &mockCourseRepository{},
			expectedError: true,
			errorContains: "thumbnail must be at most 1024 characters long",
		},
		{
			name: "lesson url too long",
			req: &models.CreateCourseRequest{
				Title: "t", Description: "d", Category: "c",
				Modules: []models.ModuleInput{{Title: "m", Lessons: []models.LessonInput{{Title: "l", URL: strings.Repeat("u", 1025)}}}},
			},
			repo:          &mockCourseRepository{},
			expectedError: true,
			errorContains: "lesson url must be at most 1024 characters long",
		},
		{
			name:          "repository error",
			req:           &models.CreateCourseRequest{Title: "t", Description: "d", Category: "c"},
			repo:          &mockCourseRepository{createErr: errors.New("database error")},
			expectedError: true,
			errorContains: "database error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewCourseService(tt.repo)

			course, err := svc.CreateCourse(context.Background(), 7, tt.req)

			if tt.expectedError {
				assert.Error(t, err)
				assert.Nil(t, course)
				assert.Contains(t, err.Error(), tt.errorContains)
				if tt.repo.createErr == nil {
					assert.ErrorIs(t, err, apperr.ErrInvalid)
				}
				return
			}

			require.NoError(t, err)
			if tt.validate != nil {
				tt.validate(t, course, tt.repo)
			}
		})
	}
}

func TestCourseService_GetCourse(t *testing.T) {
	owned := &models.Course{ID: 1, EducatorID: 7, Title: "Go"}

	t.Run("owner gets the tree", func(t *testing.T) {
		svc := NewCourseService(&mockCourseRepository{course: owned})

		course, err := svc.GetCourse(context.Background(), 7, 1)

		require.NoError(t, err)
		assert.Equal(t, owned, course)
	})

	t.Run("other educator is forbidden", func(t *testing.T) {
		svc := NewCourseService(&mockCourseRepository{course: owned})

		course, err := svc.GetCourse(context.Background(), 8, 1)

		assert.Nil(t, course)
		assert.ErrorIs(t, err, apperr.ErrForbidden)
	})

	t.Run("missing course", func(t *testing.T) {
		svc := NewCourseService(&mockCourseRepository{getErr: apperr.NotFound("course not found")})

		_, err := svc.GetCourse(context.Background(), 7, 1)

		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})
}

func TestCourseService_OwnershipGate(t *testing.T) {
	owned := &models.Course{ID: 1, EducatorID: 7}

	operations := []struct {
		name  string
		write string
		call  func(svc *courseService, educatorID int) error
	}{
		{
			name:  "update",
			write: "update",
			call: func(svc *courseService, educatorID int) error {
				return svc.UpdateCourse(context.Background(), educatorID, 1, &models.UpdateCourseRequest{Title: ptr("New")})
			},
		},
		{
			name:  "delete",
			write: "delete",
			call: func(svc *courseService, educatorID int) error {
				return svc.DeleteCourse(context.Background(), educatorID, 1)
			},
		},
		{
			name:  "add module",
			write: "add_module",
			call: func(svc *courseService, educatorID int) error {
				_, err := svc.AddModule(context.Background(), educatorID, 1, &models.ModuleInput{Title: "m"})
				return err
			},
		},
		{
			name:  "delete module",
			write: "delete_module",
			call: func(svc *courseService, educatorID int) error {
				return svc.DeleteModule(context.Background(), educatorID, 1, 3)
			},
		},
		{
			name:  "add lesson",
			write: "add_lesson",
			call: func(svc *courseService, educatorID int) error {
				_, err := svc.AddLesson(context.Background(), educatorID, 1, 3, &models.LessonInput{Title: "l"})
				return err
			},
		},
		{
			name:  "delete lesson",
			write: "delete_lesson",
			call: func(svc *courseService, educatorID int) error {
				return svc.DeleteLesson(context.Background(), educatorID, 1, 9)
			},
		},
	}

	for _, op := range operations {
		t.Run(op.name+" by owner", func(t *testing.T) {
			repo := &mockCourseRepository{
				course: owned,
				module: &models.Module{ID: 3},
				lesson: &models.Lesson{ID: 9},
			}
			svc := NewCourseService(repo)

			err := op.call(svc, 7)

			assert.NoError(t, err)
			assert.Equal(t, []string{op.write}, repo.writes)
		})

		t.Run(op.name+" by another educator", func(t *testing.T) {
			repo := &mockCourseRepository{course: owned}
			svc := NewCourseService(repo)

			err := op.call(svc, 8)

			assert.ErrorIs(t, err, apperr.ErrForbidden)
			assert.Empty(t, repo.writes, "course must not be modified")
		})

		t.Run(op.name+" of a missing course", func(t *testing.T) {
			repo := &mockCourseRepository{getErr: apperr.NotFound("course not found")}
			svc := NewCourseService(repo)

			err := op.call(svc, 7)

			assert.ErrorIs(t, err, apperr.ErrNotFound)
			assert.Empty(t, repo.writes)
		})
	}
}

func TestCourseService_UpdateCourse(t *testing.T) {
	owned := &models.Course{ID: 1, EducatorID: 7}

	tests := []struct {
		name          string
		req           *models.UpdateCourseRequest
		expectedError bool
		errorContains string
		validate      func(t *testing.T, req *models.UpdateCourseRequest)
	}{
		{
			name:          "empty request",
			req:           &models.UpdateCourseRequest{},
			expectedError: true,
			errorContains: "at least one field must be provided",
		},
		{
			name:          "blank title",
			req:           &models.UpdateCourseRequest{Title: ptr("   ")},
			expectedError: true,
			errorContains: "title cannot be empty",
		},
		{
			name:          "negative price",
			req:           &models.UpdateCourseRequest{Price: ptr(-5.0)},
			expectedError: true,
			errorContains: "price cannot be negative",
		},
		{
			name:          "invalid level",
			req:           &models.UpdateCourseRequest{Level: ptr(models.Level("Guru"))},
			expectedError: true,
			errorContains: "invalid level",
		},
		{
			name:          "invalid module",
			req:           &models.UpdateCourseRequest{Modules: &[]models.ModuleInput{{Title: ""}}},
			expectedError: true,
			errorContains: "module title is required",
		},
		{
			name:          "category too long",
			req:           &models.UpdateCourseRequest{Category: ptr(strings.Repeat("c", 101))},
			expectedError: true,
			errorContains: "category must be at most 100 characters long",
		},
		{
			name: "lesson listed twice",
			req: &models.UpdateCourseRequest{Modules: &[]models.ModuleInput{
				{ID: 1, Title: "A", Lessons: []models.LessonInput{{ID: 3, Title: "L"}}},
				{ID: 2, Title: "B", Lessons: []models.LessonInput{{ID: 3, Title: "L"}}},
			}},
			expectedError: true,
			errorContains: "lesson 3 appears more than once",
		},
		{
			name:          "negative module id",
			req:           &models.UpdateCourseRequest{Modules: &[]models.ModuleInput{{ID: -1, Title: "A"}}},
			expectedError: true,
			errorContains: "invalid module id",
		},
		{
			name: "keeps ids of existing rows",
			req: &models.UpdateCourseRequest{Modules: &[]models.ModuleInput{
				{ID: 5, Title: " Renamed ", Lessons: []models.LessonInput{{ID: 7, Title: "Intro"}, {Title: "New"}}},
			}},
			validate: func(t *testing.T, req *models.UpdateCourseRequest) {
				require.Len(t, *req.Modules, 1)
				module := (*req.Modules)[0]
				assert.Equal(t, 5, module.ID)
				assert.Equal(t, "Renamed", module.Title)
				require.Len(t, module.Lessons, 2)
				assert.Equal(t, 7, module.Lessons[0].ID)
				assert.Zero(t, module.Lessons[1].ID)
			},
		},
		{
			name: "trims fields and defaults thumbnail",
			req: &models.UpdateCourseRequest{
				Title:     ptr(" Advanced Go "),
				Thumbnail: ptr(" "),
				Modules:   &[]models.ModuleInput{{Title: " One ", Lessons: []models.LessonInput{{Title: "L"}}}},
			},
			validate: func(t *testing.T, req *models.UpdateCourseRequest) {
				assert.Equal(t, "Advanced Go", *req.Title)
				assert.Equal(t, models.DefaultThumbnail, *req.Thumbnail)
				require.Len(t, *req.Modules, 1)
				assert.Equal(t, "One", (*req.Modules)[0].Title)
				assert.Equal(t, models.LessonTypeVideo, (*req.Modules)[0].Lessons[0].Type)
			},
		},
		{
			name: "empty module list clears the tree",
			req:  &models.UpdateCourseRequest{Modules: &[]models.ModuleInput{}},
			validate: func(t *testing.T, req *models.UpdateCourseRequest) {
				require.NotNil(t, req.Modules)
				assert.Empty(t, *req.Modules)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockCourseRepository{course: owned}
			svc := NewCourseService(repo)

			err := svc.UpdateCourse(context.Background(), 7, 1, tt.req)

			if tt.expectedError {
				assert.ErrorIs(t, err, apperr.ErrInvalid)
				assert.Contains(t, err.Error(), tt.errorContains)
				assert.Empty(t, repo.writes)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, repo.updateReq)
			if tt.validate != nil {
				tt.validate(t, repo.updateReq)
			}
		})
	}
}

func TestCourseService_ListMyCourses(t *testing.T) {
	items := []models.EducatorCourseListItem{{Course: models.Course{ID: 1}, StudentCount: 3}}
	svc := NewCourseService(&mockCourseRepository{list: items})

	result, err := svc.ListMyCourses(context.Background(), 7)

	require.NoError(t, err)
	assert.Equal(t, items, result)
}
