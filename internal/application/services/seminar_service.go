package services

import (
	"context"
	"fmt"

	"github.com/seminarhub/core/internal/domain/entities"
	"github.com/seminarhub/core/internal/domain/validation"
	"github.com/seminarhub/core/internal/infrastructure/logger"
	"github.com/seminarhub/core/internal/ports"
)

// SeminarService handles seminar-related operations
type SeminarService struct {
	seminarRepo  ports.SeminarRepository
	validator    *validation.Validator
	imageChecker ports.ImageChecker
	logger       *logger.Logger
}

// NewSeminarService creates a new seminar service. imageChecker may be
// nil, in which case photo URLs are only checked for syntax.
func NewSeminarService(seminarRepo ports.SeminarRepository, validator *validation.Validator, imageChecker ports.ImageChecker, logger *logger.Logger) *SeminarService {
	return &SeminarService{
		seminarRepo:  seminarRepo,
		validator:    validator,
		imageChecker: imageChecker,
		logger:       logger.WithComponent("seminar_service"),
	}
}

var _ ports.SeminarService = (*SeminarService)(nil)

// ListSeminars returns every seminar in stored order
func (s *SeminarService) ListSeminars(ctx context.Context) ([]entities.Seminar, error) {
	seminars, err := s.seminarRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list seminars: %w", err)
	}
	return seminars, nil
}

// GetSeminar retrieves a seminar by ID
func (s *SeminarService) GetSeminar(ctx context.Context, id int) (*entities.Seminar, error) {
	seminar, err := s.seminarRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return seminar, nil
}

// CreateSeminar validates the request and stores it under a new id
func (s *SeminarService) CreateSeminar(ctx context.Context, req ports.SeminarRequest) (*entities.Seminar, error) {
	if err := s.validate(ctx, req.SeminarDetails); err != nil {
		return nil, err
	}

	seminar, err := s.seminarRepo.Create(ctx, req.SeminarDetails)
	if err != nil {
		return nil, fmt.Errorf("failed to create seminar: %w", err)
	}

	s.logger.Infow("Seminar created successfully", "seminar_id", seminar.ID, "title", seminar.Title)

	return seminar, nil
}

// UpdateSeminar replaces every field of an existing seminar. The id is
// always taken from the path.
func (s *SeminarService) UpdateSeminar(ctx context.Context, id int, req ports.SeminarRequest) (*entities.Seminar, error) {
	if _, err := s.seminarRepo.GetByID(ctx, id); err != nil {
		return nil, err
	}

	if err := s.validate(ctx, req.SeminarDetails); err != nil {
		return nil, err
	}

	updated, err := s.seminarRepo.Update(ctx, entities.NewSeminar(id, req.SeminarDetails))
	if err != nil {
		return nil, fmt.Errorf("failed to update seminar: %w", err)
	}

	s.logger.Infow("Seminar updated successfully", "seminar_id", updated.ID, "title", updated.Title)

	return updated, nil
}

// DeleteSeminar deletes a seminar
func (s *SeminarService) DeleteSeminar(ctx context.Context, id int) error {
	if err := s.seminarRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete seminar: %w", err)
	}

	s.logger.Infow("Seminar deleted successfully", "seminar_id", id)

	return nil
}

func (s *SeminarService) validate(ctx context.Context, details entities.SeminarDetails) error {
	if err := s.validator.ValidateDetails(details); err != nil {
		return err
	}

	if s.imageChecker != nil {
		if err := s.imageChecker.Check(ctx, details.Photo); err != nil {
			return err
		}
	}

	return nil
}
