package entities

import (
	"errors"
	"fmt"
	"strings"
)

// Common errors
var (
	ErrSeminarNotFound  = errors.New("seminar not found")
	ErrInvalidSeminarID = errors.New("invalid seminar id")
	ErrDuplicateID      = errors.New("duplicate seminar id")
)

// Field bounds shared by every path that accepts a seminar as input.
const (
	TitleMaxLength = 50
	MinYear        = 1971
	MaxYear        = 2050
)

// SeminarDetails holds the client-editable fields of a seminar.
type SeminarDetails struct {
	Title       string  `json:"title" validate:"required,title_length"`
	Description *string `json:"description,omitempty"`
	Date        string  `json:"date" validate:"required,seminar_date,calendar_date"`
	Time        string  `json:"time" validate:"required,seminar_time,clock_time"`
	Photo       string  `json:"photo" validate:"required,url"`
}

// Seminar represents a seminar record as stored and served
type Seminar struct {
	ID int `json:"id" validate:"gt=0"`
	SeminarDetails
}

// NewSeminar builds a seminar with the given id from validated details
func NewSeminar(id int, details SeminarDetails) Seminar {
	return Seminar{ID: id, SeminarDetails: details}
}

// SeminarsFile is the on-disk document layout
type SeminarsFile struct {
	Seminars []Seminar `json:"seminars"`
}

// FieldError describes one violated rule on one field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every field rule a candidate seminar violated,
// in struct field order.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add appends a field error
func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// HasField reports whether any error was recorded for field
func (e *ValidationError) HasField(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// PersistenceError reports a failed read or write of the seminars file.
type PersistenceError struct {
	Op   string
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// StringPtr returns a pointer to s
func StringPtr(s string) *string {
	return &s
}
