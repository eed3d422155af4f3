package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/amonks/glasstodo/todo"
	"go.uber.org/zap"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

var errInvalidBody = errors.New("invalid JSON body")

const (
	todoNotFoundMessage     = "Todo not found"
	endpointNotFoundMessage = "Endpoint not found"
)

func decodeJSON(w http.ResponseWriter, r *http.Request, dest any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := decoder.Decode(dest); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	if decoder.More() {
		return fmt.Errorf("%w: unexpected extra JSON data", errInvalidBody)
	}
	return nil
}

// bodyError converts a decode failure into a validation or argument error.
func bodyError(err error, textRequired bool) error {
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &typeErr):
		return &todo.ValidationError{Problems: []string{typeProblem(typeErr.Field, textRequired)}}
	case errors.Is(err, errNotAString):
		return &todo.ValidationError{Problems: []string{typeProblem("dueDate", textRequired)}}
	case errors.Is(err, errInvalidBody):
		return fmt.Errorf("%w: %w", todo.ErrInvalidArgument, err)
	default:
		return fmt.Errorf("%w: %w: %w", todo.ErrInvalidArgument, errInvalidBody, err)
	}
}

// argumentBodyError converts a decode failure for a bulk or move request.
// Wrongly typed fields are malformed arguments there, not validation
// problems.
func argumentBodyError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return fmt.Errorf("%w: %s", todo.ErrInvalidArgument, argumentProblem(typeErr.Field))
	}
	return bodyError(err, false)
}

func argumentProblem(field string) string {
	switch {
	case field == "ids" || strings.HasPrefix(field, "ids."):
		return "ids must be an array of strings"
	case field == "action":
		return "action must be a string"
	case field == "position":
		return "position must be an integer"
	case field == "":
		return "Request body must be a JSON object"
	default:
		return fmt.Sprintf("Field %s has the wrong type", field)
	}
}

func typeProblem(field string, textRequired bool) string {
	switch field {
	case "text":
		if textRequired {
			return "Todo text is required and must be a non-empty string"
		}
		return "Todo text must be a string"
	case "description":
		return "Description must be a string"
	case "priority":
		return "Priority must be low, medium, or high"
	case "category":
		return "Category must be a string"
	case "dueDate":
		return "Due date must be a date string"
	case "completed":
		return "Completed must be a boolean"
	case "":
		return "Request body must be a JSON object"
	default:
		return fmt.Sprintf("Field %s has the wrong type", field)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeData(w http.ResponseWriter, status int, data any, message string) {
	writeJSON(w, status, Envelope[any]{Success: true, Data: data, Message: message})
}

// statusForError maps todo errors onto HTTP statuses.
func statusForError(err error) int {
	switch {
	case errors.Is(err, todo.ErrValidation), errors.Is(err, todo.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, todo.ErrTodoNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeError writes the envelope for err. failure names the operation for
// server errors, e.g. "Failed to create todo".
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error, failure string) {
	status := statusForError(err)
	body := Envelope[any]{}
	switch {
	case errors.Is(err, todo.ErrValidation):
		body.Message = "Validation failed"
		body.Errors = todo.ValidationProblems(err)
	case errors.Is(err, todo.ErrTodoNotFound):
		body.Message = todoNotFoundMessage
	case status == http.StatusBadRequest:
		body.Message = strings.TrimPrefix(err.Error(), todo.ErrInvalidArgument.Error()+": ")
	default:
		body.Message = failure
		body.Error = err.Error()
	}

	level := zap.DebugLevel
	if status >= http.StatusInternalServerError {
		level = zap.ErrorLevel
	}
	if ce := s.logger.Check(level, "request failed"); ce != nil {
		ce.Write(
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Error(err),
		)
	}
	writeJSON(w, status, body)
}
