package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	internalstrings "github.com/amonks/glasstodo/internal/strings"
	"github.com/amonks/glasstodo/todo"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	count, err := s.manager.Count()
	if err != nil {
		s.writeError(w, r, err, "Health check failed")
		return
	}
	writeJSON(w, http.StatusOK, HealthResponse{
		Success:   true,
		Message:   "API is running",
		Timestamp: s.now().UTC(),
		Todos:     count,
	})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	q, err := todo.ParseQuery(
		params.Get("search"),
		params.Get("filter"),
		params.Get("priority"),
		params.Get("due"),
		params.Get("sort"),
	)
	if err != nil {
		s.writeError(w, r, err, "Failed to fetch todos")
		return
	}

	result, err := s.manager.List(q)
	if err != nil {
		s.writeError(w, r, err, "Failed to fetch todos")
		return
	}
	total := len(result.Todos)
	writeJSON(w, http.StatusOK, Envelope[any]{Success: true, Data: result.Todos, Total: &total})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.manager.Stats()
	if err != nil {
		s.writeError(w, r, err, "Failed to compute stats")
		return
	}
	writeData(w, http.StatusOK, stats, "")
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	found, err := s.manager.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err, "Failed to fetch todo")
		return
	}
	writeData(w, http.StatusOK, found, "")
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, bodyError(err, true), "Failed to create todo")
		return
	}

	in, err := req.input()
	if err != nil {
		s.writeError(w, r, err, "Failed to create todo")
		return
	}
	created, err := s.manager.Create(in)
	if err != nil {
		s.writeError(w, r, err, "Failed to create todo")
		return
	}
	writeData(w, http.StatusCreated, created, "Todo created successfully")
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var req UpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, bodyError(err, false), "Failed to update todo")
		return
	}

	in, err := req.input()
	if err != nil {
		s.writeError(w, r, err, "Failed to update todo")
		return
	}
	updated, err := s.manager.Update(chi.URLParam(r, "id"), in)
	if err != nil {
		s.writeError(w, r, err, "Failed to update todo")
		return
	}
	writeData(w, http.StatusOK, updated, "Todo updated successfully")
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	toggled, err := s.manager.Toggle(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err, "Failed to toggle todo")
		return
	}
	writeData(w, http.StatusOK, toggled, "")
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	removed, err := s.manager.Remove(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err, "Failed to delete todo")
		return
	}
	writeData(w, http.StatusOK, removed, "Todo deleted successfully")
}

func (s *Server) handleClearCompleted(w http.ResponseWriter, r *http.Request) {
	result, err := s.manager.ClearCompleted()
	if err != nil {
		s.writeError(w, r, err, "Failed to clear completed todos")
		return
	}
	writeData(w, http.StatusOK, ClearResponse{
		DeletedCount:   result.DeletedCount,
		RemainingTodos: result.Remaining,
	}, fmt.Sprintf("Cleared %d completed todos", result.DeletedCount))
}

func (s *Server) handleBulk(w http.ResponseWriter, r *http.Request) {
	var req BulkRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, argumentBodyError(err), "Failed to perform bulk operation")
		return
	}
	if internalstrings.IsBlank(req.Action) || req.IDs == nil {
		s.writeError(w, r, fmt.Errorf("%w: Action and ids array are required", todo.ErrInvalidArgument), "")
		return
	}

	action := todo.BulkAction(internalstrings.NormalizeLowerTrimSpace(req.Action))
	result, err := s.manager.Bulk(action, req.IDs)
	if err != nil {
		s.writeError(w, r, err, "Failed to perform bulk operation")
		return
	}
	writeJSON(w, http.StatusOK, Envelope[any]{
		Success:  true,
		Data:     result.Affected,
		Message:  fmt.Sprintf("Bulk %s completed successfully", action),
		Affected: &result.Count,
	})
}

func (s *Server) handleToggleAll(w http.ResponseWriter, r *http.Request) {
	result, err := s.manager.ToggleAll()
	if err != nil {
		s.writeError(w, r, err, "Failed to toggle todos")
		return
	}
	writeJSON(w, http.StatusOK, Envelope[any]{
		Success:  true,
		Data:     result.Affected,
		Affected: &result.Count,
	})
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	var req MoveRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, argumentBodyError(err), "Failed to move todo")
		return
	}
	if req.Position == nil {
		s.writeError(w, r, fmt.Errorf("%w: position is required", todo.ErrInvalidArgument), "")
		return
	}

	moved, err := s.manager.Move(chi.URLParam(r, "id"), *req.Position)
	if err != nil {
		s.writeError(w, r, err, "Failed to move todo")
		return
	}
	writeData(w, http.StatusOK, moved, "")
}

func (req CreateRequest) input() (todo.CreateInput, error) {
	in := todo.CreateInput{
		Text:        req.Text,
		Description: req.Description,
		Priority:    parsePriority(req.Priority),
		Category:    req.Category,
		Completed:   req.Completed,
	}
	due, _, err := parseDueDate(req.DueDate)
	if err != nil {
		return todo.CreateInput{}, err
	}
	in.DueDate = due
	return in, nil
}

func (req UpdateRequest) input() (todo.UpdateInput, error) {
	in := todo.UpdateInput{
		Text:        req.Text,
		Description: req.Description,
		Category:    req.Category,
		Completed:   req.Completed,
	}
	if req.Priority != nil && !internalstrings.IsBlank(*req.Priority) {
		priority := parsePriority(*req.Priority)
		in.Priority = &priority
	}
	due, cleared, err := parseDueDate(req.DueDate)
	if err != nil {
		return todo.UpdateInput{}, err
	}
	in.DueDate = due
	in.ClearDueDate = cleared
	return in, nil
}

func parsePriority(value string) todo.Priority {
	return todo.Priority(internalstrings.NormalizeLowerTrimSpace(value))
}

// parseDueDate returns the due date in value, or cleared when value is set
// to null or a blank string.
func parseDueDate(value NullableString) (due *time.Time, cleared bool, err error) {
	if !value.Set {
		return nil, false, nil
	}
	if !value.Valid || strings.TrimSpace(value.Value) == "" {
		return nil, true, nil
	}
	parsed, err := todo.ParseDueDate(value.Value)
	if err != nil {
		return nil, false, &todo.ValidationError{Problems: []string{"Due date must be a valid date (YYYY-MM-DD)"}}
	}
	return &parsed, false, nil
}
