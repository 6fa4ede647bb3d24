package integration

import (
	"context"
	"database/sql"
	"fmt"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/coursehub/backend/client"
	"github.com/coursehub/backend/internal/handlers"
	"github.com/coursehub/backend/internal/models"
	"github.com/coursehub/backend/internal/repositories"
	"github.com/coursehub/backend/internal/services"
	"github.com/coursehub/backend/internal/storage"
	"github.com/coursehub/backend/libs/apperr"
	authMiddleware "github.com/coursehub/backend/libs/auth/middleware"
	"github.com/coursehub/backend/libs/auth/service"
	"github.com/coursehub/backend/libs/config"
	"github.com/go-chi/chi/v5"
	_ "github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testTimeout = 2 * time.Second
	testTick    = 10 * time.Millisecond
)

var (
	testDB     *sql.DB
	testServer *httptest.Server
	testLogger *zap.Logger
	testNotes  *recordingNotifier
)

// recordingNotifier stands in for the asynq enqueuer
type recordingNotifier struct {
	mu    sync.Mutex
	tasks []string
}

func (n *recordingNotifier) add(task string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.tasks = append(n.tasks, task)
}

func (n *recordingNotifier) count(task string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	count := 0
	for _, t := range n.tasks {
		if t == task {
			count++
		}
	}
	return count
}

func (n *recordingNotifier) EnqueueWelcome(ctx context.Context, email, fullName string, role models.Role) error {
	n.add("welcome")
	return nil
}

func (n *recordingNotifier) EnqueueEnrollment(ctx context.Context, studentID, courseID int) error {
	n.add("enrollment")
	return nil
}

func (n *recordingNotifier) EnqueueCourseCompleted(ctx context.Context, studentID, courseID int) error {
	n.add("course_completed")
	return nil
}

// setupTestRouter wires the API the same way cmd/api does
func setupTestRouter(db *sql.DB, cfg *config.Config, logger *zap.Logger) chi.Router {
	tokenGenerator := service.NewTokenGenerator(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)
	mediaStorage := storage.NewLocalStorage(cfg.Storage.BasePath, cfg.Storage.BaseURL)

	educatorRepo := repositories.NewEducatorRepository(db, logger)
	studentRepo := repositories.NewStudentRepository(db, logger)
	courseRepo := repositories.NewCourseRepository(db)
	enrollmentRepo := repositories.NewEnrollmentRepository(db)
	mediaRepo := repositories.NewMediaRepository(db)

	authService := services.NewAuthService(educatorRepo, studentRepo, tokenGenerator, testNotes, cfg.Auth.BcryptCost, logger)
	courseService := services.NewCourseService(courseRepo)
	studentService := services.NewStudentService(courseRepo, enrollmentRepo, testNotes, logger)
	mediaService := services.NewMediaService(mediaRepo, mediaStorage, logger)

	educatorOnly := authMiddleware.RoleMiddleware(tokenGenerator, string(models.RoleEducator))
	studentOnly := authMiddleware.RoleMiddleware(tokenGenerator, string(models.RoleStudent))

	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		handlers.NewHealthHandler(db, logger).RegisterRoutes(r)
		handlers.NewAuthHandler(authService, logger).RegisterRoutes(r)
		handlers.NewEducatorCourseHandler(courseService, logger).RegisterRoutes(r, educatorOnly)
		handlers.NewStudentHandler(studentService, logger).RegisterRoutes(r, studentOnly)
		handlers.NewMediaHandler(mediaService, time.Minute, logger).RegisterRoutes(r, educatorOnly)
	})
	return r
}

// TestMain sets up and tears down the test environment
func TestMain(m *testing.M) {
	cfg, err := config.LoadTestConfig()
	if err != nil {
		panic(fmt.Sprintf("Failed to load test config: %v", err))
	}
	if cfg.DSN() == "" {
		fmt.Println("TEST_DB_* not set, skipping integration tests")
		os.Exit(0)
	}

	testLogger, err = zap.NewDevelopment()
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	testDB, err = sql.Open("mysql", cfg.DSN())
	if err != nil {
		panic(fmt.Sprintf("Failed to connect to test database: %v", err))
	}
	if err = testDB.Ping(); err != nil {
		panic(fmt.Sprintf("Failed to ping test database: %v", err))
	}
	if err = migrateUp(testDB); err != nil {
		panic(fmt.Sprintf("Failed to run migrations: %v", err))
	}

	mediaDir, err := os.MkdirTemp("", "coursehub-media")
	if err != nil {
		panic(fmt.Sprintf("Failed to create media dir: %v", err))
	}
	cfg.Storage.BasePath = mediaDir

	testNotes = &recordingNotifier{}
	testServer = httptest.NewServer(setupTestRouter(testDB, cfg, testLogger))

	code := m.Run()

	testServer.Close()
	testDB.Close()
	os.RemoveAll(mediaDir)
	os.Exit(code)
}

func migrateUp(db *sql.DB) error {
	driver, err := mysql.WithInstance(db, &mysql.Config{
		MigrationsTable: "coursehub_test_schema_migrations",
	})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithDatabaseInstance("file://../../migrations", "mysql", driver)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}

// cleanupTestData removes all rows in dependency order
func cleanupTestData(t *testing.T, db *sql.DB) {
	t.Helper()
	for _, table := range []string{"enrollment_lessons", "enrollments", "media", "lessons", "course_modules", "courses", "students", "educators"} {
		_, err := db.Exec("DELETE FROM " + table)
		require.NoError(t, err, "Failed to cleanup %s", table)
	}
}

func goCourse() *models.CreateCourseRequest {
	price := 49.99
	return &models.CreateCourseRequest{
		Title:       "Go in Practice",
		Description: "Services, tests and tooling",
		Category:    "Programming",
		Price:       &price,
		Modules: []models.ModuleInput{
			{
				Title: "Basics",
				Lessons: []models.LessonInput{
					{Title: "Setup", Type: models.LessonTypeVideo, URL: "https://cdn.example.com/setup.mp4", Duration: "05:00"},
					{Title: "Types", Type: models.LessonTypeText, Content: "int, string, struct"},
				},
			},
			{
				Title: "Concurrency",
				Lessons: []models.LessonInput{
					{Title: "Channels", Type: models.LessonTypeQuiz},
				},
			},
		},
	}
}

func TestIntegration_EnrollmentFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}
	cleanupTestData(t, testDB)
	defer cleanupTestData(t, testDB)

	ctx := context.Background()
	c := client.New(testServer.URL)

	require.NoError(t, c.Health(ctx))

	educator, err := c.SignupEducator(ctx, &models.EducatorSignupRequest{
		FullName:       "Grace Hopper",
		Email:          "grace@example.com",
		Password:       "cobol1959",
		Specialization: "Compilers",
	})
	require.NoError(t, err)
	student, err := c.SignupStudent(ctx, &models.StudentSignupRequest{
		FullName: "Alan Turing",
		Email:    "alan@example.com",
		Password: "enigma42",
	})
	require.NoError(t, err)

	// Emails are unique per principal type, case-insensitively
	_, err = c.SignupStudent(ctx, &models.StudentSignupRequest{FullName: "Alan", Email: "ALAN@example.com", Password: "enigma42"})
	assert.ErrorIs(t, err, apperr.ErrConflict)

	course, err := c.CreateCourse(ctx, educator, goCourse())
	require.NoError(t, err)
	require.Len(t, course.Modules, 2)
	lessonIDs := course.LessonIDs()
	require.Len(t, lessonIDs, 3)

	t.Run("role gating", func(t *testing.T) {
		_, err := c.ListMyCourses(ctx, student)
		assert.ErrorIs(t, err, apperr.ErrForbidden)

		_, err = c.Enroll(ctx, educator, course.ID)
		assert.ErrorIs(t, err, apperr.ErrForbidden)

		_, err = c.BrowseCourses(ctx, client.NewSession("garbage", 1, models.RoleStudent))
		assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
	})

	t.Run("ownership gating", func(t *testing.T) {
		other, err := c.SignupEducator(ctx, &models.EducatorSignupRequest{
			FullName:       "Other Educator",
			Email:          "other@example.com",
			Password:       "password1",
			Specialization: "Databases",
		})
		require.NoError(t, err)

		title := "Hijacked"
		err = c.UpdateCourse(ctx, other, course.ID, &models.UpdateCourseRequest{Title: &title})
		assert.ErrorIs(t, err, apperr.ErrForbidden)
		assert.ErrorIs(t, c.DeleteCourse(ctx, other, course.ID), apperr.ErrForbidden)

		got, err := c.GetCourse(ctx, educator, course.ID)
		require.NoError(t, err)
		assert.Equal(t, "Go in Practice", got.Title)
	})

	t.Run("catalog", func(t *testing.T) {
		courses, err := c.BrowseCourses(ctx, student)
		require.NoError(t, err)
		require.Len(t, courses, 1)
		assert.Equal(t, "Grace Hopper", courses[0].Instructor)
		assert.Equal(t, lessonIDs, courses[0].LessonIDs())
	})

	t.Run("enroll and complete", func(t *testing.T) {
		_, err := c.GetEnrollment(ctx, student, course.ID)
		assert.ErrorIs(t, err, apperr.ErrNotFound)
		state, err := c.EnrollmentState(ctx, student, course.ID)
		require.NoError(t, err)
		assert.Equal(t, models.EnrollmentStateNotEnrolled, state)

		enrollment, err := c.Enroll(ctx, student, course.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, enrollment.Progress)
		assert.False(t, enrollment.IsCompleted)

		_, err = c.Enroll(ctx, student, course.ID)
		assert.ErrorIs(t, err, apperr.ErrConflict)

		_, err = c.RefreshDashboard(ctx, student)
		require.NoError(t, err)

		expected := []int{33, 67, 67, 100}
		for i, lessonID := range []int{lessonIDs[0], lessonIDs[1], lessonIDs[1], lessonIDs[2]} {
			cmd := c.MarkLessonComplete(student, course.ID, lessonID)
			require.NoError(t, c.Run(ctx, student, cmd))
			assert.Equal(t, expected[i], cmd.Result().Progress, "step %d", i)
		}

		items, ok := student.Dashboard()
		require.True(t, ok)
		require.Len(t, items, 1)
		assert.Equal(t, 100, items[0].Progress)
		assert.True(t, items[0].IsCompleted)
		assert.ElementsMatch(t, lessonIDs, items[0].CompletedLessonIDs)

		require.Eventually(t, func() bool {
			return testNotes.count("course_completed") == 1 && testNotes.count("enrollment") == 1
		}, testTimeout, testTick)
	})

	t.Run("completion is sticky", func(t *testing.T) {
		added := make([]int, 0, 2)
		for _, title := range []string{"Select", "Mutexes"} {
			lesson, err := c.AddLesson(ctx, educator, course.ID, course.Modules[1].ID, models.LessonInput{
				Title: title,
				Type:  models.LessonTypeVideo,
			})
			require.NoError(t, err)
			added = append(added, lesson.ID)
		}

		enrollment, err := c.GetEnrollment(ctx, student, course.ID)
		require.NoError(t, err)
		assert.True(t, enrollment.IsCompleted)

		resp, err := c.UpdateProgress(ctx, student, course.ID, added[0])
		require.NoError(t, err)
		assert.Equal(t, 80, resp.Progress)
		assert.True(t, resp.IsCompleted)

		// Completing a lesson twice changes nothing
		again, err := c.UpdateProgress(ctx, student, course.ID, added[0])
		require.NoError(t, err)
		assert.Equal(t, resp.Progress, again.Progress)
		assert.Len(t, again.CompletedLessons, 4)

		assert.Equal(t, 1, testNotes.count("course_completed"))
	})

	t.Run("tree edit keeps completions", func(t *testing.T) {
		current, err := c.GetCourse(ctx, educator, course.ID)
		require.NoError(t, err)
		before := current.LessonIDs()
		require.Len(t, before, 5)

		// Send the loaded tree back with new titles, the way an edit form does
		modules := make([]models.ModuleInput, 0, len(current.Modules))
		for _, module := range current.Modules {
			input := models.ModuleInput{ID: module.ID, Title: module.Title + " (revised)"}
			for _, lesson := range module.Lessons {
				input.Lessons = append(input.Lessons, models.LessonInput{
					ID:       lesson.ID,
					Title:    strings.ToUpper(lesson.Title),
					Type:     lesson.Type,
					URL:      lesson.URL,
					Content:  lesson.Content,
					Duration: lesson.Duration,
				})
			}
			modules = append(modules, input)
		}
		require.NoError(t, c.UpdateCourse(ctx, educator, course.ID, &models.UpdateCourseRequest{Modules: &modules}))

		edited, err := c.GetCourse(ctx, educator, course.ID)
		require.NoError(t, err)
		assert.Equal(t, before, edited.LessonIDs())
		assert.Equal(t, "Basics (revised)", edited.Modules[0].Title)
		assert.Equal(t, "SETUP", edited.Modules[0].Lessons[0].Title)

		// Four of five lessons were done before the edit; the last one completes the course
		resp, err := c.UpdateProgress(ctx, student, course.ID, before[4])
		require.NoError(t, err)
		assert.Equal(t, 100, resp.Progress)
		assert.Len(t, resp.CompletedLessons, 5)

		state, err := c.EnrollmentState(ctx, student, course.ID)
		require.NoError(t, err)
		assert.Equal(t, models.EnrollmentStateComplete, state)

		// A lesson of another course cannot be claimed through the tree
		foreign := []models.ModuleInput{{ID: current.Modules[0].ID, Title: "Basics", Lessons: []models.LessonInput{
			{ID: before[0] + 10000, Title: "Foreign", Type: models.LessonTypeVideo},
		}}}
		err = c.UpdateCourse(ctx, educator, course.ID, &models.UpdateCourseRequest{Modules: &foreign})
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})

	t.Run("foreign lesson", func(t *testing.T) {
		_, err := c.UpdateProgress(ctx, student, course.ID, lessonIDs[0]+10000)
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})

	t.Run("upload", func(t *testing.T) {
		resp, err := c.Upload(ctx, educator, "notes.pdf", strings.NewReader("%PDF-1.4"))
		require.NoError(t, err)
		assert.Equal(t, int64(8), resp.Size)
		assert.Equal(t, "application/pdf", resp.ContentType)
		assert.True(t, strings.HasSuffix(resp.URL, ".pdf"))

		_, err = c.Upload(ctx, educator, "script.sh", strings.NewReader("echo"))
		assert.ErrorIs(t, err, apperr.ErrInvalid)
	})

	t.Run("delete course cascades", func(t *testing.T) {
		require.NoError(t, c.DeleteCourse(ctx, educator, course.ID))

		_, err := c.GetEnrollment(ctx, student, course.ID)
		assert.ErrorIs(t, err, apperr.ErrNotFound)

		items, err := c.RefreshDashboard(ctx, student)
		require.NoError(t, err)
		assert.Empty(t, items)
	})
}
