// Package validation enforces the seminar field rules on every path that
// accepts a seminar: request bodies, the data file at boot, and client
// edit forms.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/seminarhub/core/internal/domain/entities"
)

var (
	datePattern = regexp.MustCompile(`^(\d{2})\.(\d{2})\.(\d{4})$`)
	timePattern = regexp.MustCompile(`^(\d{2}):(\d{2})$`)
)

// Validator wraps go-playground/validator with the seminar rule set.
// It satisfies echo.Validator.
type Validator struct {
	validate *validator.Validate
}

// New creates a validator with the seminar tags registered
func New() *Validator {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Registration only fails on empty tags or nil funcs.
	_ = v.RegisterValidation("title_length", validateTitleLength)
	_ = v.RegisterValidation("seminar_date", validateDateFormat)
	_ = v.RegisterValidation("calendar_date", validateCalendarDate)
	_ = v.RegisterValidation("seminar_time", validateTimeFormat)
	_ = v.RegisterValidation("clock_time", validateClockTime)

	return &Validator{validate: v}
}

// Validate checks i against its validate tags. It returns nil or a
// *entities.ValidationError listing one message per violated rule.
func (v *Validator) Validate(i interface{}) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate: %w", err)
	}

	verr := &entities.ValidationError{}
	for _, fe := range fieldErrs {
		verr.Add(fe.Field(), message(fe))
	}
	return verr
}

// ValidateDetails validates the client-editable fields of a seminar
func (v *Validator) ValidateDetails(details entities.SeminarDetails) error {
	return v.Validate(&details)
}

// ValidateSeminar validates a full record including its id
func (v *Validator) ValidateSeminar(seminar entities.Seminar) error {
	return v.Validate(&seminar)
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		if fe.Field() == "title" {
			return "title must not be empty"
		}
		return fe.Field() + " is required"
	case "title_length":
		return fmt.Sprintf("title must not exceed %d characters", entities.TitleMaxLength)
	case "seminar_date":
		return "date must be in DD.MM.YYYY format"
	case "calendar_date":
		return fmt.Sprintf("invalid date or year outside %d-%d", entities.MinYear, entities.MaxYear)
	case "seminar_time":
		return "time must be in HH:MM format"
	case "clock_time":
		return "invalid time"
	case "url":
		return "enter a valid URL"
	case "gt":
		return fe.Field() + " must be a positive integer"
	default:
		return fmt.Sprintf("%s failed on the %s rule", fe.Field(), fe.Tag())
	}
}

func validateTitleLength(fl validator.FieldLevel) bool {
	return utf8.RuneCountInString(fl.Field().String()) <= entities.TitleMaxLength
}

func validateDateFormat(fl validator.FieldLevel) bool {
	return datePattern.MatchString(fl.Field().String())
}

func validateTimeFormat(fl validator.FieldLevel) bool {
	return timePattern.MatchString(fl.Field().String())
}

// validateCalendarDate rebuilds the date from its components and requires
// the result to match, so 31.02 is not silently rolled into March.
func validateCalendarDate(fl validator.FieldLevel) bool {
	return IsCalendarDate(fl.Field().String())
}

func validateClockTime(fl validator.FieldLevel) bool {
	return IsClockTime(fl.Field().String())
}

// IsCalendarDate reports whether s is a DD.MM.YYYY date that exists on
// the calendar with a year in [MinYear, MaxYear].
func IsCalendarDate(s string) bool {
	m := datePattern.FindStringSubmatch(s)
	if m == nil {
		return false
	}
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])

	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if d.Day() != day || int(d.Month()) != month || d.Year() != year {
		return false
	}

	return year >= entities.MinYear && year <= entities.MaxYear
}

// IsClockTime reports whether s is an HH:MM time of day.
func IsClockTime(s string) bool {
	m := timePattern.FindStringSubmatch(s)
	if m == nil {
		return false
	}
	hours, _ := strconv.Atoi(m[1])
	minutes, _ := strconv.Atoi(m[2])

	return hours >= 0 && hours <= 23 && minutes >= 0 && minutes <= 59
}
