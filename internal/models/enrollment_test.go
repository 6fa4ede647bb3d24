package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnrollment_State(t *testing.T) {
	tests := []struct {
		name       string
		enrollment *Enrollment
		expected   EnrollmentState
	}{
		{name: "no record", enrollment: nil, expected: EnrollmentStateNotEnrolled},
		{name: "fresh enrollment", enrollment: &Enrollment{ID: 1}, expected: EnrollmentStateInProgress},
		{name: "partially done", enrollment: &Enrollment{ID: 1, Progress: 67}, expected: EnrollmentStateInProgress},
		{name: "completed", enrollment: &Enrollment{ID: 1, Progress: 100, IsCompleted: true}, expected: EnrollmentStateComplete},
		{name: "completed stays complete below 100", enrollment: &Enrollment{ID: 1, Progress: 80, IsCompleted: true}, expected: EnrollmentStateComplete},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.enrollment.State())
		})
	}
}

func TestEnrollment_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(&Enrollment{ID: 3, StudentID: 4, CourseID: 5, Progress: 100, CompletedLessonIDs: []int{1}, IsCompleted: true})
	require.NoError(t, err)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(data, &payload))
	assert.Equal(t, "enrolled_complete", payload["state"])
	assert.Equal(t, float64(3), payload["id"])
	assert.Equal(t, float64(100), payload["progress"])
	assert.Equal(t, true, payload["isCompleted"])

	var decoded Enrollment
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, []int{1}, decoded.CompletedLessonIDs)
	assert.Equal(t, EnrollmentStateComplete, decoded.State())
}
