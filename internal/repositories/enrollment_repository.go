package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/coursehub/backend/internal/models"
	"github.com/coursehub/backend/libs/apperr"
)

type enrollmentRepository struct {
	db *sql.DB
}

// NewEnrollmentRepository creates a new enrollment repository
func NewEnrollmentRepository(db *sql.DB) *enrollmentRepository {
	return &enrollmentRepository{
		db: db,
	}
}

// Create inserts a fresh enrollment with zero progress
func (r *enrollmentRepository) Create(ctx context.Context, studentID, courseID int) (*models.Enrollment, error) {
	query := `
		INSERT INTO enrollments (student_id, course_id, progress, is_completed)
		VALUES (?, ?, 0, FALSE)
	`

	result, err := r.db.ExecContext(ctx, query, studentID, courseID)
	if err != nil {
		if isDuplicateEntry(err) {
			return nil, apperr.Conflict("already enrolled in this course")
		}
		if isMissingReference(err) {
			return nil, apperr.NotFound("course not found")
		}
		return nil, fmt.Errorf("failed to create enrollment: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	now := time.Now()
	return &models.Enrollment{
		ID:                 int(id),
		StudentID:          studentID,
		CourseID:           courseID,
		Progress:           0,
		CompletedLessonIDs: []int{},
		IsCompleted:        false,
		CreatedAt:          now,
		UpdatedAt:          now,
	}, nil
}

// ExistsByStudentAndCourse checks if the student is enrolled in the course
func (r *enrollmentRepository) ExistsByStudentAndCourse(ctx context.Context, studentID, courseID int) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM enrollments WHERE student_id = ? AND course_id = ?)`

	var exists bool
	err := r.db.QueryRowContext(ctx, query, studentID, courseID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check enrollment existence: %w", err)
	}

	return exists, nil
}

// GetByStudentAndCourse retrieves an enrollment with its completed lesson set
func (r *enrollmentRepository) GetByStudentAndCourse(ctx context.Context, studentID, courseID int) (*models.Enrollment, error) {
	query := `
		SELECT id, student_id, course_id, progress, is_completed, created_at, updated_at
		FROM enrollments
		WHERE student_id = ? AND course_id = ?
		LIMIT 1
	`

	enrollment, err := scanEnrollment(r.db.QueryRowContext(ctx, query, studentID, courseID))
	if err != nil {
		return nil, err
	}

	completed, err := completedLessonIDs(ctx, r.db, []int{enrollment.ID})
	if err != nil {
		return nil, err
	}
	enrollment.CompletedLessonIDs = idsOrEmpty(completed[enrollment.ID])

	return enrollment, nil
}

func scanEnrollment(row rowScanner) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	err := row.Scan(
		&enrollment.ID,
		&enrollment.StudentID,
		&enrollment.CourseID,
		&enrollment.Progress,
		&enrollment.IsCompleted,
		&enrollment.CreatedAt,
		&enrollment.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("enrollment not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get enrollment: %w", err)
	}
	return &enrollment, nil
}

// ListDashboard retrieves the student's enrollments joined with the course and its owner
//
// Enrollments whose course no longer exists are dropped by the inner join.
func (r *enrollmentRepository) ListDashboard(ctx context.Context, studentID int) ([]models.DashboardItem, error) {
	query := `
		SELECT e.id, c.id, c.title, c.description, c.thumbnail, c.price,
			COALESCE(ed.full_name, '') AS instructor, e.progress, e.is_completed
		FROM enrollments e
		JOIN courses c ON c.id = e.course_id
		LEFT JOIN educators ed ON ed.id = c.educator_id
		WHERE e.student_id = ?
		ORDER BY e.created_at DESC, e.id DESC
	`

	rows, err := r.db.QueryContext(ctx, query, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query enrollments: %w", err)
	}
	defer rows.Close()

	items := make([]models.DashboardItem, 0)
	enrollmentIDs := make([]int, 0)
	courseIDs := make([]int, 0)
	for rows.Next() {
		var (
			item         models.DashboardItem
			enrollmentID int
		)
		err := rows.Scan(
			&enrollmentID,
			&item.CourseID,
			&item.Title,
			&item.Description,
			&item.Thumbnail,
			&item.Price,
			&item.Instructor,
			&item.Progress,
			&item.IsCompleted,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan enrollment: %w", err)
		}
		if item.Instructor == "" {
			item.Instructor = models.UnknownInstructor
		}
		items = append(items, item)
		enrollmentIDs = append(enrollmentIDs, enrollmentID)
		courseIDs = append(courseIDs, item.CourseID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	completed, err := completedLessonIDs(ctx, r.db, enrollmentIDs)
	if err != nil {
		return nil, err
	}
	modules, err := loadModules(ctx, r.db, courseIDs)
	if err != nil {
		return nil, err
	}

	for i := range items {
		items[i].CompletedLessonIDs = idsOrEmpty(completed[enrollmentIDs[i]])
		items[i].Modules = modulesOrEmpty(modules[items[i].CourseID])
	}

	return items, nil
}

// MarkLessonComplete adds a lesson to the completed set and recomputes progress in one transaction
//
// calculate computes the new percentage from the live lesson set and the completed set.
// The enrollment row is locked for the duration, so concurrent completions of the same
// enrollment are serialized. Completing an already completed lesson changes nothing.
// The completion flag is only ever raised.
func (r *enrollmentRepository) MarkLessonComplete(ctx context.Context, studentID, courseID, lessonID int, calculate func(courseLessonIDs, completedLessonIDs []int) int) (*models.LessonCompletion, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		SELECT id, student_id, course_id, progress, is_completed, created_at, updated_at
		FROM enrollments
		WHERE student_id = ? AND course_id = ?
		FOR UPDATE
	`
	enrollment, err := scanEnrollment(tx.QueryRowContext(ctx, query, studentID, courseID))
	if err != nil {
		return nil, err
	}

	completed, err := completedLessonIDs(ctx, tx, []int{enrollment.ID})
	if err != nil {
		return nil, err
	}
	enrollment.CompletedLessonIDs = idsOrEmpty(completed[enrollment.ID])

	if enrollment.HasCompleted(lessonID) {
		return &models.LessonCompletion{Enrollment: enrollment}, nil
	}

	var belongs bool
	err = tx.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM lessons l
			JOIN course_modules m ON m.id = l.module_id
			WHERE l.id = ? AND m.course_id = ?
		)`, lessonID, courseID).Scan(&belongs)
	if err != nil {
		return nil, fmt.Errorf("failed to check lesson: %w", err)
	}
	if !belongs {
		return nil, apperr.NotFound("lesson not found in this course")
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO enrollment_lessons (enrollment_id, lesson_id) VALUES (?, ?)`,
		enrollment.ID, lessonID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to record completed lesson: %w", err)
	}
	enrollment.CompletedLessonIDs = append(enrollment.CompletedLessonIDs, lessonID)

	lessonIDs, err := courseLessonIDs(ctx, tx, courseID)
	if err != nil {
		return nil, err
	}

	wasCompleted := enrollment.IsCompleted
	enrollment.Progress = calculate(lessonIDs, enrollment.CompletedLessonIDs)
	enrollment.IsCompleted = wasCompleted || enrollment.Progress >= 100

	// ON UPDATE does not fire when progress rounds to the same value, and ListStalled reads updated_at
	_, err = tx.ExecContext(ctx,
		`UPDATE enrollments SET progress = ?, is_completed = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		enrollment.Progress, enrollment.IsCompleted, enrollment.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update progress: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	enrollment.UpdatedAt = time.Now()
	return &models.LessonCompletion{
		Enrollment:    enrollment,
		Changed:       true,
		JustCompleted: !wasCompleted && enrollment.IsCompleted,
	}, nil
}

// ListStalled retrieves in-progress enrollments without activity since the given time
func (r *enrollmentRepository) ListStalled(ctx context.Context, inactiveSince time.Time, limit int) ([]models.StalledEnrollment, error) {
	query := `
		SELECT e.id, s.full_name, s.email, c.title, e.progress
		FROM enrollments e
		JOIN students s ON s.id = e.student_id
		JOIN courses c ON c.id = e.course_id
		WHERE e.is_completed = FALSE AND e.updated_at < ?
		ORDER BY e.updated_at
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query, inactiveSince, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query stalled enrollments: %w", err)
	}
	defer rows.Close()

	stalled := make([]models.StalledEnrollment, 0)
	for rows.Next() {
		var item models.StalledEnrollment
		err := rows.Scan(
			&item.EnrollmentID,
			&item.StudentName,
			&item.StudentEmail,
			&item.CourseTitle,
			&item.Progress,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan stalled enrollment: %w", err)
		}
		stalled = append(stalled, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return stalled, nil
}

// GetRecipient resolves the student and course names used in enrollment e-mails
func (r *enrollmentRepository) GetRecipient(ctx context.Context, studentID, courseID int) (*models.EnrollmentRecipient, error) {
	query := `
		SELECT s.full_name, s.email, c.title
		FROM students s
		JOIN courses c ON c.id = ?
		WHERE s.id = ?
		LIMIT 1
	`

	var recipient models.EnrollmentRecipient
	err := r.db.QueryRowContext(ctx, query, courseID, studentID).Scan(
		&recipient.StudentName,
		&recipient.StudentEmail,
		&recipient.CourseTitle,
	)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("student or course not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get enrollment recipient: %w", err)
	}

	return &recipient, nil
}

// completedLessonIDs loads the completed sets of the given enrollments keyed by enrollment ID
func completedLessonIDs(ctx context.Context, q querier, enrollmentIDs []int) (map[int][]int, error) {
	result := make(map[int][]int, len(enrollmentIDs))
	if len(enrollmentIDs) == 0 {
		return result, nil
	}

	placeholders, args := inClause(enrollmentIDs)
	query := fmt.Sprintf(`
		SELECT enrollment_id, lesson_id
		FROM enrollment_lessons
		WHERE enrollment_id IN (%s)
		ORDER BY completed_at, lesson_id
	`, placeholders)

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query completed lessons: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var enrollmentID, lessonID int
		if err := rows.Scan(&enrollmentID, &lessonID); err != nil {
			return nil, fmt.Errorf("failed to scan completed lesson: %w", err)
		}
		result[enrollmentID] = append(result[enrollmentID], lessonID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return result, nil
}

func idsOrEmpty(ids []int) []int {
	if ids == nil {
		return []int{}
	}
	return ids
}
