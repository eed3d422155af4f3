package api

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/amonks/glasstodo/todo"
)

// Envelope is the JSON body of every API response.
type Envelope[T any] struct {
	Success bool     `json:"success"`
	Data    T        `json:"data,omitempty"`
	Message string   `json:"message,omitempty"`
	Errors  []string `json:"errors,omitempty"`
	Error   string   `json:"error,omitempty"`

	// Total is the number of todos in a list response.
	Total *int `json:"total,omitempty"`

	// Affected is the number of todos a bulk operation touched.
	Affected *int `json:"affected,omitempty"`
}

// CreateRequest is the body of POST /api/todos.
type CreateRequest struct {
	Text        string         `json:"text"`
	Description string         `json:"description,omitempty"`
	Priority    string         `json:"priority,omitempty"`
	Category    string         `json:"category,omitempty"`
	DueDate     NullableString `json:"dueDate,omitzero"`
	Completed   bool           `json:"completed,omitempty"`
}

// UpdateRequest is the body of PUT and PATCH /api/todos/{id}.
// Absent fields are left unchanged; a null or empty dueDate clears it.
type UpdateRequest struct {
	Text        *string        `json:"text,omitempty"`
	Description *string        `json:"description,omitempty"`
	Priority    *string        `json:"priority,omitempty"`
	Category    *string        `json:"category,omitempty"`
	DueDate     NullableString `json:"dueDate,omitzero"`
	Completed   *bool          `json:"completed,omitempty"`
}

// BulkRequest is the body of POST /api/todos/bulk.
type BulkRequest struct {
	Action string   `json:"action"`
	IDs    []string `json:"ids"`
}

// MoveRequest is the body of POST /api/todos/{id}/move.
type MoveRequest struct {
	Position *int `json:"position"`
}

// ClearResponse is the data of DELETE /api/todos.
type ClearResponse struct {
	DeletedCount   int         `json:"deletedCount"`
	RemainingTodos []todo.Todo `json:"remainingTodos"`
}

// HealthResponse is the body of GET /api/health.
type HealthResponse struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Todos     int       `json:"todos"`
}

var errNotAString = errors.New("not a string")

// NullableString distinguishes an absent JSON field from null.
// Set reports presence; Valid reports a non-null string.
type NullableString struct {
	Set   bool
	Valid bool
	Value string
}

// StringValue returns a set, valid NullableString.
func StringValue(value string) NullableString {
	return NullableString{Set: true, Valid: true, Value: value}
}

// Null returns a set, null NullableString.
func Null() NullableString {
	return NullableString{Set: true}
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *NullableString) UnmarshalJSON(data []byte) error {
	n.Set = true
	if string(data) == "null" {
		n.Valid = false
		n.Value = ""
		return nil
	}
	if err := json.Unmarshal(data, &n.Value); err != nil {
		return errNotAString
	}
	n.Valid = true
	return nil
}

// MarshalJSON implements json.Marshaler. Unset values encode as null.
func (n NullableString) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

// IsZero reports whether the value was never set, for omitzero.
func (n NullableString) IsZero() bool {
	return !n.Set
}
