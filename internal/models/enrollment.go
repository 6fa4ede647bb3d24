package models

import (
	"encoding/json"
	"time"
)

// EnrollmentState is the lifecycle state of a (student, course) pair
type EnrollmentState string

const (
	EnrollmentStateNotEnrolled EnrollmentState = "not_enrolled"
	EnrollmentStateInProgress  EnrollmentState = "enrolled_in_progress"
	EnrollmentStateComplete    EnrollmentState = "enrolled_complete"
)

// Enrollment links one student to one course and carries the progress state
type Enrollment struct {
	ID                 int       `json:"id"`
	StudentID          int       `json:"studentId"`
	CourseID           int       `json:"courseId"`
	Progress           int       `json:"progress"`
	CompletedLessonIDs []int     `json:"completedLessonIds"`
	IsCompleted        bool      `json:"isCompleted"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// State returns the lifecycle state of the enrollment
func (e *Enrollment) State() EnrollmentState {
	if e == nil {
		return EnrollmentStateNotEnrolled
	}
	if e.IsCompleted {
		return EnrollmentStateComplete
	}
	return EnrollmentStateInProgress
}

// MarshalJSON adds the derived lifecycle state to the payload
func (e Enrollment) MarshalJSON() ([]byte, error) {
	type enrollment Enrollment
	return json.Marshal(struct {
		enrollment
		State EnrollmentState `json:"state"`
	}{
		enrollment: enrollment(e),
		State:      e.State(),
	})
}

// HasCompleted reports whether lessonID is in the completed set
func (e *Enrollment) HasCompleted(lessonID int) bool {
	for _, id := range e.CompletedLessonIDs {
		if id == lessonID {
			return true
		}
	}
	return false
}

// LessonCompletion is the outcome of marking a lesson complete
type LessonCompletion struct {
	Enrollment *Enrollment
	// Changed is false when the lesson was already completed
	Changed bool
	// JustCompleted is true when this call moved the enrollment to complete
	JustCompleted bool
}

// DashboardItem is one enrolled course on the student dashboard
type DashboardItem struct {
	CourseID           int      `json:"courseId"`
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	Thumbnail          string   `json:"thumbnail"`
	Price              float64  `json:"price"`
	Instructor         string   `json:"instructor"`
	Progress           int      `json:"progress"`
	CompletedLessonIDs []int    `json:"completedLessonIds"`
	IsCompleted        bool     `json:"isCompleted"`
	Modules            []Module `json:"modules"`
}

// UpdateProgressRequest marks one lesson of a course as complete
type UpdateProgressRequest struct {
	CourseID int `json:"courseId"`
	LessonID int `json:"lessonId"`
}

// ProgressResponse is returned after a progress update
type ProgressResponse struct {
	Message          string `json:"message"`
	Progress         int    `json:"progress"`
	CompletedLessons []int  `json:"completedLessons"`
	IsCompleted      bool   `json:"isCompleted"`
}

// StalledEnrollment is an in-progress enrollment without recent activity
type StalledEnrollment struct {
	EnrollmentID int
	StudentName  string
	StudentEmail string
	CourseTitle  string
	Progress     int
}

// UnknownInstructor is shown when a course owner cannot be resolved
const UnknownInstructor = "Unknown Instructor"

// EnrollmentRecipient is who and what an enrollment notification is about
type EnrollmentRecipient struct {
	StudentName  string
	StudentEmail string
	CourseTitle  string
}
