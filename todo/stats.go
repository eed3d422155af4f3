package todo

import (
	"math"
	"time"
)

// Stats summarizes a collection.
type Stats struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Active    int `json:"active"`

	// CompletionRate is the completed share as a whole percentage.
	CompletionRate int `json:"completionRate"`

	ByPriority map[Priority]int `json:"byPriority"`
	Overdue    int              `json:"overdue"`
}

// ComputeStats counts todos by state and priority.
func ComputeStats(todos []Todo, now time.Time) Stats {
	stats := Stats{
		Total:      len(todos),
		ByPriority: make(map[Priority]int, len(ValidPriorities())),
	}
	for _, priority := range ValidPriorities() {
		stats.ByPriority[priority] = 0
	}
	for _, t := range todos {
		if t.Completed {
			stats.Completed++
		}
		if t.IsOverdue(now) {
			stats.Overdue++
		}
		if t.Priority.IsValid() {
			stats.ByPriority[t.Priority]++
		}
	}
	stats.Active = stats.Total - stats.Completed
	if stats.Total > 0 {
		stats.CompletionRate = int(math.Round(float64(stats.Completed) / float64(stats.Total) * 100))
	}
	return stats
}
