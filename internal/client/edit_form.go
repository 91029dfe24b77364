package client

import (
	"context"
	"errors"
	"sync"

	"github.com/seminarhub/core/internal/domain/entities"
	"github.com/seminarhub/core/internal/domain/validation"
	"github.com/seminarhub/core/internal/ports"
)

// EditForm runs the seminar rules over user input before it is
// submitted. Field rules run first; only if they pass is the photo URL
// checked remotely, during which PhotoCheckPending reports true.
type EditForm struct {
	validator *validation.Validator
	checker   ports.ImageChecker

	mu      sync.Mutex
	pending bool
	errors  []entities.FieldError
}

// NewEditForm creates a form. checker may be nil to skip the remote check.
func NewEditForm(validator *validation.Validator, checker ports.ImageChecker) *EditForm {
	return &EditForm{
		validator: validator,
		checker:   checker,
	}
}

// Validate checks details and records any field errors. It returns nil
// or a *entities.ValidationError.
func (f *EditForm) Validate(ctx context.Context, details entities.SeminarDetails) error {
	f.setErrors(nil)

	if err := f.validator.ValidateDetails(details); err != nil {
		var verr *entities.ValidationError
		if errors.As(err, &verr) {
			f.setErrors(verr.Fields)
		}
		return err
	}

	if f.checker == nil {
		return nil
	}

	f.setPending(true)
	defer f.setPending(false)

	result := make(chan error, 1)
	go func() {
		result <- f.checker.Check(ctx, details.Photo)
	}()

	var err error
	select {
	case err = <-result:
	case <-ctx.Done():
		err = ctx.Err()
	}

	if err == nil {
		return nil
	}

	var verr *entities.ValidationError
	if !errors.As(err, &verr) {
		verr = &entities.ValidationError{}
		verr.Add("photo", photoUnverified)
	}
	f.setErrors(verr.Fields)
	return verr
}

const photoUnverified = "could not verify the image"

// PhotoCheckPending reports whether the remote photo check is running
func (f *EditForm) PhotoCheckPending() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pending
}

// Errors returns the field errors from the last Validate call
func (f *EditForm) Errors() []entities.FieldError {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]entities.FieldError(nil), f.errors...)
}

// FieldError returns the first message recorded for field, if any
func (f *EditForm) FieldError(field string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, fe := range f.errors {
		if fe.Field == field {
			return fe.Message, true
		}
	}
	return "", false
}

func (f *EditForm) setErrors(errs []entities.FieldError) {
	f.mu.Lock()
	f.errors = errs
	f.mu.Unlock()
}

func (f *EditForm) setPending(pending bool) {
	f.mu.Lock()
	f.pending = pending
	f.mu.Unlock()
}
