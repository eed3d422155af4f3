package todo

import (
	"time"

	"github.com/amonks/glasstodo/internal/ids"
)

// maxIDAttempts bounds retries when a generated ID collides.
const maxIDAttempts = 16

// GenerateID creates a random 8-character base32 ID.
func GenerateID(timestamp time.Time) string {
	return ids.New(timestamp, ids.DefaultLength)
}

// uniqueID returns an ID not used by any of todos. After maxIDAttempts
// short collisions it falls back to a longer ID.
func uniqueID(todos []Todo, now time.Time, generate func(time.Time) string) string {
	taken := make(map[string]bool, len(todos))
	for _, t := range todos {
		taken[t.ID] = true
	}
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		id := generate(now)
		if id != "" && !taken[id] {
			return id
		}
	}
	for {
		id := ids.New(now, ids.DefaultLength*2)
		if !taken[id] {
			return id
		}
	}
}
