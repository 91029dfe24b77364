package ports

import (
	"context"

	"github.com/seminarhub/core/internal/domain/entities"
)

// SeminarRepository defines the interface for seminar data operations.
// Mutations are applied to the in-memory collection only after the
// backing store has been written.
type SeminarRepository interface {
	Load(ctx context.Context) error
	List(ctx context.Context) ([]entities.Seminar, error)
	GetByID(ctx context.Context, id int) (*entities.Seminar, error)
	Create(ctx context.Context, details entities.SeminarDetails) (*entities.Seminar, error)
	Update(ctx context.Context, seminar entities.Seminar) (*entities.Seminar, error)
	Delete(ctx context.Context, id int) error
	Count() int
}
