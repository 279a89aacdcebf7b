package parsererrors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorCategory represents the category of parser error.
type ErrorCategory string

const (
	// ErrorCategoryGrammarUnavailable marks a language identifier that
	// could not be resolved to a loadable grammar.
	ErrorCategoryGrammarUnavailable ErrorCategory = "grammar_unavailable"

	// ErrorCategoryParseFailure marks an underlying parser failure for a
	// resolvable grammar.
	ErrorCategoryParseFailure ErrorCategory = "parse_failure"
)

// ParserError represents a structured parsing error with context. It is
// raised only by the parse step and recovered exactly once, at the top of
// the comparison service.
type ParserError struct {
	Message   string         `json:"message"`
	Category  ErrorCategory  `json:"category"`
	Language  string         `json:"language,omitempty"`
	Operation string         `json:"operation,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
	Timestamp time.Time      `json:"timestamp"`

	// Underlying error, if any.
	Cause error `json:"-"`
}

// NewParserError creates a new parser error with the given category and message.
func NewParserError(category ErrorCategory, message string) *ParserError {
	return &ParserError{
		Message:   message,
		Category:  category,
		Timestamp: time.Now(),
	}
}

// NewGrammarUnavailableError creates an error for an unresolvable language.
func NewGrammarUnavailableError(language string) *ParserError {
	return NewParserError(
		ErrorCategoryGrammarUnavailable,
		fmt.Sprintf("no grammar available for language %q", language),
	).WithLanguage(language)
}

// NewParseFailureError creates an error for a failed parse of a resolvable
// grammar.
func NewParseFailureError(language, message string) *ParserError {
	return NewParserError(ErrorCategoryParseFailure, message).WithLanguage(language)
}

// Error implements the error interface.
func (e *ParserError) Error() string {
	if e.Language != "" && e.Operation != "" {
		return fmt.Sprintf("%s error in %s %s: %s", e.Category, e.Language, e.Operation, e.Message)
	}
	if e.Language != "" {
		return fmt.Sprintf("%s error in %s: %s", e.Category, e.Language, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Category, e.Message)
}

// Unwrap returns the underlying error for error chain unwrapping.
func (e *ParserError) Unwrap() error {
	return e.Cause
}

// WithCause adds a cause to the error.
func (e *ParserError) WithCause(cause error) *ParserError {
	e.Cause = cause
	return e
}

// WithLanguage sets the language context.
func (e *ParserError) WithLanguage(language string) *ParserError {
	e.Language = language
	return e
}

// WithOperation sets the operation context.
func (e *ParserError) WithOperation(operation string) *ParserError {
	e.Operation = operation
	return e
}

// WithDetails adds a detail entry to the error.
func (e *ParserError) WithDetails(key string, value any) *ParserError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// IsGrammarUnavailable checks whether err is a grammar resolution failure.
func IsGrammarUnavailable(err error) bool {
	var parserErr *ParserError
	return errors.As(err, &parserErr) && parserErr.Category == ErrorCategoryGrammarUnavailable
}

// IsParseFailure checks whether err is an underlying parse failure.
func IsParseFailure(err error) bool {
	var parserErr *ParserError
	return errors.As(err, &parserErr) && parserErr.Category == ErrorCategoryParseFailure
}

// IsParserError checks whether err originated in the parse step at all.
func IsParserError(err error) bool {
	var parserErr *ParserError
	return errors.As(err, &parserErr)
}
