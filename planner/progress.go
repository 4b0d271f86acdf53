package planner

import "math"

// Progress is round(100 * completed / total), 0 when there is nothing to complete.
// The result is clamped to [0,100].
func Progress(completed, total int) int {
	if total <= 0 || completed <= 0 {
		return 0
	}
	if completed > total {
		completed = total
	}
	return int(math.Round(100 * float64(completed) / float64(total)))
}

// ProgressOf computes Progress over a list of completion flags.
func ProgressOf(done []bool) int {
	n := 0
	for _, d := range done {
		if d {
			n++
		}
	}
	return Progress(n, len(done))
}
