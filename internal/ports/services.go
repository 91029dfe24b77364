package ports

import (
	"context"

	"github.com/seminarhub/core/internal/domain/entities"
)

// SeminarService interface for seminar management operations
type SeminarService interface {
	ListSeminars(ctx context.Context) ([]entities.Seminar, error)
	GetSeminar(ctx context.Context, id int) (*entities.Seminar, error)
	CreateSeminar(ctx context.Context, req SeminarRequest) (*entities.Seminar, error)
	UpdateSeminar(ctx context.Context, id int, req SeminarRequest) (*entities.Seminar, error)
	DeleteSeminar(ctx context.Context, id int) error
}

// ImageChecker verifies that a photo URL serves an image
type ImageChecker interface {
	Check(ctx context.Context, rawURL string) error
}

// SeminarRequest is the body accepted by create and update. Any id in
// the body is ignored.
type SeminarRequest struct {
	entities.SeminarDetails
}
