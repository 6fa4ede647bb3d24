package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/coursehub/backend/internal/models"
	"github.com/coursehub/backend/libs/apperr"
)

type courseRepository struct {
	db *sql.DB
}

// NewCourseRepository creates a new course repository
func NewCourseRepository(db *sql.DB) *courseRepository {
	return &courseRepository{
		db: db,
	}
}

const courseColumns = `c.id, c.educator_id, c.title, c.description, c.price, c.category, c.level, c.thumbnail, c.created_at, c.updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCourse(row rowScanner, course *models.Course, extra ...any) error {
	dest := []any{
		&course.ID,
		&course.EducatorID,
		&course.Title,
		&course.Description,
		&course.Price,
		&course.Category,
		&course.Level,
		&course.Thumbnail,
		&course.CreatedAt,
		&course.UpdatedAt,
	}
	return row.Scan(append(dest, extra...)...)
}

// Create inserts a course together with its modules and lessons in one transaction
func (r *courseRepository) Create(ctx context.Context, course *models.Course, modules []models.ModuleInput) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO courses (educator_id, title, description, price, category, level, thumbnail)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	result, err := tx.ExecContext(ctx, query,
		course.EducatorID,
		course.Title,
		course.Description,
		course.Price,
		course.Category,
		course.Level,
		course.Thumbnail,
	)
	if err != nil {
		return fmt.Errorf("failed to create course: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	course.ID = int(id)

	created, err := insertModules(ctx, tx, course.ID, modules)
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	course.Modules = created
	return nil
}

// insertModules writes modules and lessons at positions following input order
func insertModules(ctx context.Context, q querier, courseID int, modules []models.ModuleInput) ([]models.Module, error) {
	created := make([]models.Module, 0, len(modules))
	for i, input := range modules {
		result, err := q.ExecContext(ctx,
			`INSERT INTO course_modules (course_id, title, position) VALUES (?, ?, ?)`,
			courseID, input.Title, i+1,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create module: %w", err)
		}
		moduleID, err := result.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("failed to get module id: %w", err)
		}

		module := models.Module{
			ID:       int(moduleID),
			CourseID: courseID,
			Title:    input.Title,
			Position: i + 1,
			Lessons:  make([]models.Lesson, 0, len(input.Lessons)),
		}
		for j, lessonInput := range input.Lessons {
			lesson, err := insertLesson(ctx, q, module.ID, lessonInput, j+1)
			if err != nil {
				return nil, err
			}
			module.Lessons = append(module.Lessons, *lesson)
		}
		created = append(created, module)
	}
	return created, nil
}

func insertLesson(ctx context.Context, q querier, moduleID int, input models.LessonInput, position int) (*models.Lesson, error) {
	query := `
		INSERT INTO lessons (module_id, title, type, url, content, duration, position)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	result, err := q.ExecContext(ctx, query,
		moduleID,
		input.Title,
		input.Type,
		input.URL,
		nullableString(input.Content),
		input.Duration,
		position,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create lesson: %w", err)
	}
	lessonID, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get lesson id: %w", err)
	}

	return &models.Lesson{
		ID:       int(lessonID),
		ModuleID: moduleID,
		Title:    input.Title,
		Type:     input.Type,
		URL:      input.URL,
		Content:  input.Content,
		Duration: input.Duration,
		Position: position,
	}, nil
}

func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// GetByID retrieves a course row without its modules
func (r *courseRepository) GetByID(ctx context.Context, id int) (*models.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses c WHERE c.id = ? LIMIT 1`

	var course models.Course
	err := scanCourse(r.db.QueryRowContext(ctx, query, id), &course)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("course not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get course by id: %w", err)
	}

	return &course, nil
}

// GetWithModules retrieves a course with its ordered modules and lessons
func (r *courseRepository) GetWithModules(ctx context.Context, id int) (*models.Course, error) {
	course, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	modules, err := loadModules(ctx, r.db, []int{id})
	if err != nil {
		return nil, err
	}
	course.Modules = modulesOrEmpty(modules[id])

	return course, nil
}

// ListByEducator retrieves the educator's courses, newest first, with enrolled student counts
func (r *courseRepository) ListByEducator(ctx context.Context, educatorID int) ([]models.EducatorCourseListItem, error) {
	query := `
		SELECT ` + courseColumns + `,
			(SELECT COUNT(*) FROM enrollments e WHERE e.course_id = c.id) AS student_count
		FROM courses c
		WHERE c.educator_id = ?
		ORDER BY c.created_at DESC, c.id DESC
	`

	rows, err := r.db.QueryContext(ctx, query, educatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to query courses: %w", err)
	}
	defer rows.Close()

	courses := make([]models.EducatorCourseListItem, 0)
	ids := make([]int, 0)
	for rows.Next() {
		var item models.EducatorCourseListItem
		if err := scanCourse(rows, &item.Course, &item.StudentCount); err != nil {
			return nil, fmt.Errorf("failed to scan course: %w", err)
		}
		courses = append(courses, item)
		ids = append(ids, item.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	modules, err := loadModules(ctx, r.db, ids)
	if err != nil {
		return nil, err
	}
	for i := range courses {
		courses[i].Modules = modulesOrEmpty(modules[courses[i].ID])
	}

	return courses, nil
}

// ListAll retrieves every course, newest first, with its owner's name and module tree
func (r *courseRepository) ListAll(ctx context.Context) ([]models.CatalogCourse, error) {
	query := `
		SELECT ` + courseColumns + `, COALESCE(ed.full_name, '') AS instructor
		FROM courses c
		LEFT JOIN educators ed ON ed.id = c.educator_id
		ORDER BY c.created_at DESC, c.id DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query courses: %w", err)
	}
	defer rows.Close()

	courses := make([]models.CatalogCourse, 0)
	ids := make([]int, 0)
	for rows.Next() {
		var item models.CatalogCourse
		if err := scanCourse(rows, &item.Course, &item.Instructor); err != nil {
			return nil, fmt.Errorf("failed to scan course: %w", err)
		}
		if item.Instructor == "" {
			item.Instructor = models.UnknownInstructor
		}
		courses = append(courses, item)
		ids = append(ids, item.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	modules, err := loadModules(ctx, r.db, ids)
	if err != nil {
		return nil, err
	}
	for i := range courses {
		courses[i].Modules = modulesOrEmpty(modules[courses[i].ID])
	}

	return courses, nil
}

// Update applies a partial update; a non-nil Modules is synced into the tree by ID
func (r *courseRepository) Update(ctx context.Context, id int, req *models.UpdateCourseRequest) error {
	setParts := []string{}
	args := []any{}

	if req.Title != nil {
		setParts = append(setParts, "title = ?")
		args = append(args, *req.Title)
	}
	if req.Description != nil {
		setParts = append(setParts, "description = ?")
		args = append(args, *req.Description)
	}
	if req.Price != nil {
		setParts = append(setParts, "price = ?")
		args = append(args, *req.Price)
	}
	if req.Category != nil {
		setParts = append(setParts, "category = ?")
		args = append(args, *req.Category)
	}
	if req.Level != nil {
		setParts = append(setParts, "level = ?")
		args = append(args, *req.Level)
	}
	if req.Thumbnail != nil {
		setParts = append(setParts, "thumbnail = ?")
		args = append(args, *req.Thumbnail)
	}
	// A tree edit alone still counts as a course change
	setParts = append(setParts, "updated_at = CURRENT_TIMESTAMP")
	args = append(args, id)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := fmt.Sprintf("UPDATE courses SET %s WHERE id = ?", strings.Join(setParts, ", "))
	// Rows affected is not checked: MySQL reports 0 for an unchanged row.
	// Callers load the course for the ownership check first.
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to update course: %w", err)
	}

	if req.Modules != nil {
		if err := syncModules(ctx, tx, id, *req.Modules); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// syncModules makes the module tree of a course match modules
//
// Entries with an ID update that row and keep its identity, so completions
// recorded against kept lessons stay valid. Entries without an ID are inserted
// and rows missing from modules are deleted.
func syncModules(ctx context.Context, q querier, courseID int, modules []models.ModuleInput) error {
	existingModules, existingLessons, err := treeIDs(ctx, q, courseID)
	if err != nil {
		return err
	}

	moduleSet := idSet(existingModules)
	lessonSet := idSet(existingLessons)
	keptModules := make(map[int]struct{})
	keptLessons := make(map[int]struct{})
	for _, module := range modules {
		if module.ID != 0 {
			if _, ok := moduleSet[module.ID]; !ok {
				return apperr.NotFound(fmt.Sprintf("module %d not found in this course", module.ID))
			}
			keptModules[module.ID] = struct{}{}
		}
		for _, lesson := range module.Lessons {
			if lesson.ID == 0 {
				continue
			}
			if _, ok := lessonSet[lesson.ID]; !ok {
				return apperr.NotFound(fmt.Sprintf("lesson %d not found in this course", lesson.ID))
			}
			keptLessons[lesson.ID] = struct{}{}
		}
	}

	if dropped := missingIDs(existingLessons, keptLessons); len(dropped) > 0 {
		placeholders, args := inClause(dropped)
		query := fmt.Sprintf(`DELETE FROM lessons WHERE id IN (%s)`, placeholders)
		if _, err := q.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to delete lessons: %w", err)
		}
	}

	for i, module := range modules {
		moduleID := module.ID
		if moduleID == 0 {
			result, err := q.ExecContext(ctx,
				`INSERT INTO course_modules (course_id, title, position) VALUES (?, ?, ?)`,
				courseID, module.Title, i+1,
			)
			if err != nil {
				return fmt.Errorf("failed to create module: %w", err)
			}
			lastID, err := result.LastInsertId()
			if err != nil {
				return fmt.Errorf("failed to get module id: %w", err)
			}
			moduleID = int(lastID)
		} else {
			_, err := q.ExecContext(ctx,
				`UPDATE course_modules SET title = ?, position = ? WHERE id = ?`,
				module.Title, i+1, moduleID,
			)
			if err != nil {
				return fmt.Errorf("failed to update module: %w", err)
			}
		}

		for j, lesson := range module.Lessons {
			if lesson.ID == 0 {
				if _, err := insertLesson(ctx, q, moduleID, lesson, j+1); err != nil {
					return err
				}
				continue
			}
			if err := updateLesson(ctx, q, moduleID, lesson, j+1); err != nil {
				return err
			}
		}
	}

	// Lessons moved out of a dropped module were re-parented above
	if dropped := missingIDs(existingModules, keptModules); len(dropped) > 0 {
		placeholders, args := inClause(dropped)
		query := fmt.Sprintf(`DELETE FROM course_modules WHERE id IN (%s)`, placeholders)
		if _, err := q.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to delete modules: %w", err)
		}
	}

	return nil
}

func updateLesson(ctx context.Context, q querier, moduleID int, input models.LessonInput, position int) error {
	query := `
		UPDATE lessons
		SET module_id = ?, title = ?, type = ?, url = ?, content = ?, duration = ?, position = ?
		WHERE id = ?
	`
	_, err := q.ExecContext(ctx, query,
		moduleID,
		input.Title,
		input.Type,
		input.URL,
		nullableString(input.Content),
		input.Duration,
		position,
		input.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update lesson: %w", err)
	}
	return nil
}

// treeIDs locks the module and lesson rows of a course and returns their IDs in tree order
func treeIDs(ctx context.Context, q querier, courseID int) ([]int, []int, error) {
	query := `
		SELECT m.id, l.id
		FROM course_modules m
		LEFT JOIN lessons l ON l.module_id = m.id
		WHERE m.course_id = ?
		ORDER BY m.position, m.id, l.position, l.id
		FOR UPDATE
	`

	rows, err := q.QueryContext(ctx, query, courseID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query course tree: %w", err)
	}
	defer rows.Close()

	modules := make([]int, 0)
	lessons := make([]int, 0)
	for rows.Next() {
		var (
			moduleID int
			lessonID sql.NullInt64
		)
		if err := rows.Scan(&moduleID, &lessonID); err != nil {
			return nil, nil, fmt.Errorf("failed to scan course tree: %w", err)
		}
		if len(modules) == 0 || modules[len(modules)-1] != moduleID {
			modules = append(modules, moduleID)
		}
		if lessonID.Valid {
			lessons = append(lessons, int(lessonID.Int64))
		}
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return modules, lessons, nil
}

func idSet(ids []int) map[int]struct{} {
	set := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// missingIDs returns the ids not present in keep, preserving order
func missingIDs(ids []int, keep map[int]struct{}) []int {
	missing := make([]int, 0)
	for _, id := range ids {
		if _, ok := keep[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}

// Delete removes a course; modules, lessons and enrollments cascade
func (r *courseRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM courses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete course: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperr.NotFound("course not found")
	}

	return nil
}

// AddModule appends a module with its lessons to the end of the course
func (r *courseRepository) AddModule(ctx context.Context, courseID int, input models.ModuleInput) (*models.Module, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var position int
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(position), 0) + 1 FROM course_modules WHERE course_id = ? FOR UPDATE`,
		courseID,
	).Scan(&position)
	if err != nil {
		return nil, fmt.Errorf("failed to get next module position: %w", err)
	}

	result, err := tx.ExecContext(ctx,
		`INSERT INTO course_modules (course_id, title, position) VALUES (?, ?, ?)`,
		courseID, input.Title, position,
	)
	if err != nil {
		if isMissingReference(err) {
			return nil, apperr.NotFound("course not found")
		}
		return nil, fmt.Errorf("failed to create module: %w", err)
	}
	moduleID, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get module id: %w", err)
	}

	module := &models.Module{
		ID:       int(moduleID),
		CourseID: courseID,
		Title:    input.Title,
		Position: position,
		Lessons:  make([]models.Lesson, 0, len(input.Lessons)),
	}
	for i, lessonInput := range input.Lessons {
		lesson, err := insertLesson(ctx, tx, module.ID, lessonInput, i+1)
		if err != nil {
			return nil, err
		}
		module.Lessons = append(module.Lessons, *lesson)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return module, nil
}

// DeleteModule removes a module of the course; its lessons cascade
func (r *courseRepository) DeleteModule(ctx context.Context, courseID, moduleID int) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM course_modules WHERE id = ? AND course_id = ?`,
		moduleID, courseID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete module: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperr.NotFound("module not found")
	}

	return nil
}

// AddLesson appends a lesson to a module that belongs to the course
func (r *courseRepository) AddLesson(ctx context.Context, courseID, moduleID int, input models.LessonInput) (*models.Lesson, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists bool
	err = tx.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM course_modules WHERE id = ? AND course_id = ?)`,
		moduleID, courseID,
	).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check module existence: %w", err)
	}
	if !exists {
		return nil, apperr.NotFound("module not found")
	}

	var position int
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(position), 0) + 1 FROM lessons WHERE module_id = ? FOR UPDATE`,
		moduleID,
	).Scan(&position)
	if err != nil {
		return nil, fmt.Errorf("failed to get next lesson position: %w", err)
	}

	lesson, err := insertLesson(ctx, tx, moduleID, input, position)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return lesson, nil
}

// DeleteLesson removes a lesson if it belongs to the course
func (r *courseRepository) DeleteLesson(ctx context.Context, courseID, lessonID int) error {
	query := `
		DELETE l FROM lessons l
		JOIN course_modules m ON m.id = l.module_id
		WHERE l.id = ? AND m.course_id = ?
	`

	result, err := r.db.ExecContext(ctx, query, lessonID, courseID)
	if err != nil {
		return fmt.Errorf("failed to delete lesson: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperr.NotFound("lesson not found")
	}

	return nil
}

// loadModules loads the ordered module trees of the given courses keyed by course ID
func loadModules(ctx context.Context, q querier, courseIDs []int) (map[int][]models.Module, error) {
	result := make(map[int][]models.Module, len(courseIDs))
	if len(courseIDs) == 0 {
		return result, nil
	}

	placeholders, args := inClause(courseIDs)
	query := fmt.Sprintf(`
		SELECT m.id, m.course_id, m.title, m.position,
			l.id, l.title, l.type, l.url, l.content, l.duration, l.position
		FROM course_modules m
		LEFT JOIN lessons l ON l.module_id = m.id
		WHERE m.course_id IN (%s)
		ORDER BY m.course_id, m.position, m.id, l.position, l.id
	`, placeholders)

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query modules: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			module         models.Module
			lessonID       sql.NullInt64
			lessonTitle    sql.NullString
			lessonType     sql.NullString
			lessonURL      sql.NullString
			lessonContent  sql.NullString
			lessonDuration sql.NullString
			lessonPosition sql.NullInt64
		)
		err := rows.Scan(
			&module.ID,
			&module.CourseID,
			&module.Title,
			&module.Position,
			&lessonID,
			&lessonTitle,
			&lessonType,
			&lessonURL,
			&lessonContent,
			&lessonDuration,
			&lessonPosition,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan module: %w", err)
		}

		modules := result[module.CourseID]
		if len(modules) == 0 || modules[len(modules)-1].ID != module.ID {
			module.Lessons = []models.Lesson{}
			modules = append(modules, module)
		}
		if lessonID.Valid {
			last := &modules[len(modules)-1]
			last.Lessons = append(last.Lessons, models.Lesson{
				ID:       int(lessonID.Int64),
				ModuleID: module.ID,
				Title:    lessonTitle.String,
				Type:     models.LessonType(lessonType.String),
				URL:      lessonURL.String,
				Content:  lessonContent.String,
				Duration: lessonDuration.String,
				Position: int(lessonPosition.Int64),
			})
		}
		result[module.CourseID] = modules
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return result, nil
}

// courseLessonIDs returns the live lesson IDs of a course
func courseLessonIDs(ctx context.Context, q querier, courseID int) ([]int, error) {
	query := `
		SELECT l.id
		FROM lessons l
		JOIN course_modules m ON m.id = l.module_id
		WHERE m.course_id = ?
		ORDER BY m.position, l.position
	`

	rows, err := q.QueryContext(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query course lessons: %w", err)
	}
	defer rows.Close()

	ids := make([]int, 0)
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan lesson id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return ids, nil
}

func modulesOrEmpty(modules []models.Module) []models.Module {
	if modules == nil {
		return []models.Module{}
	}
	return modules
}
