package todo

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/amonks/glasstodo/internal/validation"
	"github.com/go-playground/validator/v10"
)

// Default length limits, in characters.
const (
	DefaultMaxTextLength        = 500
	DefaultMinTextLength        = 1
	DefaultMaxDescriptionLength = 500
)

// Rules configures validation limits and policies.
type Rules struct {
	// MaxTextLength bounds the text length. Zero means DefaultMaxTextLength.
	MaxTextLength int

	// MinTextLength is the shortest allowed trimmed text. Zero means
	// DefaultMinTextLength.
	MinTextLength int

	// MaxDescriptionLength bounds the description length. Zero means
	// DefaultMaxDescriptionLength.
	MaxDescriptionLength int

	// RejectPastDueDates rejects due dates before the current calendar day.
	RejectPastDueDates bool
}

// DefaultRules returns the default validation rules.
func DefaultRules() Rules {
	return Rules{
		MaxTextLength:        DefaultMaxTextLength,
		MinTextLength:        DefaultMinTextLength,
		MaxDescriptionLength: DefaultMaxDescriptionLength,
	}
}

func (r Rules) withDefaults() Rules {
	if r.MaxTextLength <= 0 {
		r.MaxTextLength = DefaultMaxTextLength
	}
	if r.MinTextLength <= 0 {
		r.MinTextLength = DefaultMinTextLength
	}
	if r.MaxDescriptionLength <= 0 {
		r.MaxDescriptionLength = DefaultMaxDescriptionLength
	}
	return r
}

// Candidate holds the fields of a todo under validation.
// A nil field was not provided.
type Candidate struct {
	Text        *string
	Description *string
	Priority    *Priority
	Category    *string
	DueDate     *time.Time
}

// CandidateFromTodo returns a candidate with every field of t provided.
func CandidateFromTodo(t Todo) Candidate {
	candidate := Candidate{
		Text:        &t.Text,
		Description: &t.Description,
		Priority:    &t.Priority,
		Category:    &t.Category,
	}
	if t.DueDate != nil {
		due := *t.DueDate
		candidate.DueDate = &due
	}
	return candidate
}

var validate = validator.New()

// Validate checks a candidate against the rules and returns every problem
// found. An empty result means the candidate is valid. When partial is
// false the text is required; when true only provided fields are checked.
// The candidate is never modified.
func Validate(candidate Candidate, partial bool, rules Rules, now time.Time) []string {
	rules = rules.withDefaults()
	var problems []string
	add := func(problem string) {
		if problem != "" {
			problems = append(problems, problem)
		}
	}

	switch {
	case candidate.Text == nil && !partial:
		add("Todo text is required and must be a non-empty string")
	case candidate.Text != nil:
		text := *candidate.Text
		trimmed := strings.TrimSpace(text)
		if checkVar(trimmed, "required") != nil {
			if partial {
				add("Todo text cannot be empty")
			} else {
				add("Todo text is required and must be a non-empty string")
			}
			break
		}
		if rules.MinTextLength > 1 {
			add(lengthProblem("Todo text", trimmed, "min", rules.MinTextLength))
		}
		add(lengthProblem("Todo text", text, "max", rules.MaxTextLength))
	}

	if candidate.Description != nil {
		add(lengthProblem("Description", *candidate.Description, "max", rules.MaxDescriptionLength))
	}

	if candidate.Priority != nil {
		tag := "oneof=" + strings.Join(priorityNames(), " ")
		if checkVar(string(*candidate.Priority), tag) != nil {
			add("Priority must be " + validation.FormatAlternatives(ValidPriorities()))
		}
	}

	if candidate.DueDate != nil && rules.RejectPastDueDates {
		if StartOfDay(*candidate.DueDate).Before(StartOfDay(now)) {
			add("Due date cannot be in the past")
		}
	}

	return problems
}

// ValidateTodo checks a complete todo and returns a *ValidationError when
// any rule is violated.
func ValidateTodo(t Todo, rules Rules, now time.Time) error {
	return newValidationError(Validate(CandidateFromTodo(t), false, rules, now))
}

func checkVar(value any, tag string) error {
	return validate.Var(value, tag)
}

func lengthProblem(label, value, tag string, limit int) string {
	err := checkVar(value, fmt.Sprintf("%s=%d", tag, limit))
	if err == nil {
		return ""
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Sprintf("%s is invalid: %v", label, err)
	}
	switch fieldErrs[0].Tag() {
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", label, fieldErrs[0].Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", label, fieldErrs[0].Param())
	default:
		return fmt.Sprintf("%s failed %s validation", label, fieldErrs[0].Tag())
	}
}

func priorityNames() []string {
	valid := ValidPriorities()
	names := make([]string, len(valid))
	for i, priority := range valid {
		names[i] = string(priority)
	}
	return names
}
