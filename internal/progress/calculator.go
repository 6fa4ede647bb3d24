// Package progress computes course completion percentages.
package progress

import "math"

// Complete is the percentage of a finished course
const Complete = 100

// Calculate returns round(100 * |completed ∩ courseLessons| / |courseLessons|)
//
// Completed IDs that are not lessons of the course are ignored and duplicates are
// counted once. A course without lessons yields 0. The result is always in [0, 100].
func Calculate(courseLessons []int, completed []int) int {
	if len(courseLessons) == 0 {
		return 0
	}

	lessons := make(map[int]struct{}, len(courseLessons))
	for _, id := range courseLessons {
		lessons[id] = struct{}{}
	}

	done := make(map[int]struct{}, len(completed))
	for _, id := range completed {
		if _, ok := lessons[id]; ok {
			done[id] = struct{}{}
		}
	}

	pct := int(math.Round(100 * float64(len(done)) / float64(len(lessons))))
	return clamp(pct)
}

// IsComplete reports whether pct means the course is finished
func IsComplete(pct int) bool {
	return pct >= Complete
}

func clamp(pct int) int {
	if pct < 0 {
		return 0
	}
	if pct > Complete {
		return Complete
	}
	return pct
}
