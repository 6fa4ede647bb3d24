package tasks

import (
	"bytes"
	"fmt"
	"html/template"
)

// email is a subject line with its HTML body template
type email struct {
	subject string
	body    *template.Template
}

var (
	welcomeEducatorEmail = email{
		subject: "Welcome to CourseHub",
		body: template.Must(template.New("welcome_educator").Parse(
			`<p>Hi {{.FullName}},</p><p>Your educator account is ready. Create your first course from the dashboard.</p>`)),
	}
	welcomeStudentEmail = email{
		subject: "Welcome to CourseHub",
		body: template.Must(template.New("welcome_student").Parse(
			`<p>Hi {{.FullName}},</p><p>Your student account is ready. Browse the catalog and enroll in your first course.</p>`)),
	}
	enrollmentEmail = email{
		subject: "You are enrolled",
		body: template.Must(template.New("enrollment").Parse(
			`<p>Hi {{.StudentName}},</p><p>You are now enrolled in <b>{{.CourseTitle}}</b>. Happy learning!</p>`)),
	}
	courseCompletedEmail = email{
		subject: "Course completed",
		body: template.Must(template.New("course_completed").Parse(
			`<p>Congratulations {{.StudentName}}!</p><p>You have completed <b>{{.CourseTitle}}</b>.</p>`)),
	}
	progressReminderEmail = email{
		subject: "Keep going",
		body: template.Must(template.New("progress_reminder").Parse(
			`<p>Hi {{.StudentName}},</p><p>You are {{.Progress}}% through <b>{{.CourseTitle}}</b>. Pick up where you left off.</p>`)),
	}
)

func (e email) render(data any) (string, error) {
	var buf bytes.Buffer
	if err := e.body.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render %s email: %w", e.body.Name(), err)
	}
	return buf.String(), nil
}
