// Package rating derives average star ratings from feedback at read time.
// Averages are never stored; every profile recomputes them.
package rating

import (
	"math"

	"anoa.com/feedbackportal/internal/entity"
)

// AverageStars returns the mean of the present star ratings rounded to two
// decimals (half away from zero). It returns nil when nothing is rated.
func AverageStars(feedbacks []*entity.Feedback) *float64 {
	var sum float64
	var n int
	for _, f := range feedbacks {
		if f == nil || f.Stars == nil {
			continue
		}
		sum += *f.Stars
		n++
	}
	if n == 0 {
		return nil
	}

	avg := round2(sum / float64(n))
	return &avg
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Summary is the average together with the number of rated entries.
type Summary struct {
	Average *float64 `json:"average_stars"`
	Count   int      `json:"rated_count"`
}

func Summarize(feedbacks []*entity.Feedback) Summary {
	count := 0
	for _, f := range feedbacks {
		if f != nil && f.Stars != nil {
			count++
		}
	}
	return Summary{Average: AverageStars(feedbacks), Count: count}
}
