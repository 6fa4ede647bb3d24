package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculate(t *testing.T) {
	tests := []struct {
		name      string
		lessons   []int
		completed []int
		expected  int
	}{
		{name: "no lessons", lessons: nil, completed: nil, expected: 0},
		{name: "no lessons with stale completions", lessons: []int{}, completed: []int{1, 2}, expected: 0},
		{name: "nothing completed", lessons: []int{1, 2, 3}, completed: nil, expected: 0},
		{name: "two of five", lessons: []int{1, 2, 3, 4, 5}, completed: []int{1, 3}, expected: 40},
		{name: "one of three rounds down", lessons: []int{1, 2, 3}, completed: []int{2}, expected: 33},
		{name: "two of three rounds up", lessons: []int{1, 2, 3}, completed: []int{1, 3}, expected: 67},
		{name: "half rounds up", lessons: []int{10, 20, 30, 40, 50, 60, 70, 80}, completed: []int{10, 20, 30, 40, 50, 60, 70}, expected: 88},
		{name: "all completed", lessons: []int{1, 2}, completed: []int{2, 1}, expected: 100},
		{name: "duplicates counted once", lessons: []int{1, 2, 3, 4}, completed: []int{1, 1, 1}, expected: 25},
		{name: "foreign lessons ignored", lessons: []int{1, 2}, completed: []int{1, 99, 100}, expected: 50},
		{name: "removed lessons ignored", lessons: []int{4, 5}, completed: []int{1, 2, 3, 4}, expected: 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Calculate(tt.lessons, tt.completed)

			assert.Equal(t, tt.expected, got)
			assert.GreaterOrEqual(t, got, 0)
			assert.LessOrEqual(t, got, 100)
		})
	}
}

func TestCalculate_AlwaysInRange(t *testing.T) {
	for n := 1; n <= 40; n++ {
		lessons := make([]int, n)
		for i := range lessons {
			lessons[i] = i + 1
		}
		for k := 0; k <= n; k++ {
			got := Calculate(lessons, lessons[:k])
			assert.GreaterOrEqual(t, got, 0)
			assert.LessOrEqual(t, got, 100)
			if k == n {
				assert.Equal(t, 100, got)
			}
		}
	}
}

func TestIsComplete(t *testing.T) {
	assert.True(t, IsComplete(100))
	assert.False(t, IsComplete(99))
	assert.False(t, IsComplete(0))
}
