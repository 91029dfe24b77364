package client

import (
	"context"
	"fmt"
	"sync"

	"github.com/seminarhub/core/internal/domain/entities"
	"github.com/seminarhub/core/internal/infrastructure/logger"
)

// LoadErrorMessage is shown in place of the list when fetching fails
const LoadErrorMessage = "Could not load seminars from the server. Please try again later."

// SeminarAPI is the part of the API the list needs
type SeminarAPI interface {
	List(ctx context.Context) ([]entities.Seminar, error)
	Update(ctx context.Context, id int, details entities.SeminarDetails) (*entities.Seminar, error)
	Delete(ctx context.Context, id int) error
}

// ListState is a snapshot of the list for rendering. Loading and Error
// are mutually exclusive.
type ListState struct {
	Loading       bool
	Error         string
	Seminars      []entities.Seminar
	MutationError error
}

// Visible returns the seminars to render: none while loading or after a
// failed fetch.
func (s ListState) Visible() []entities.Seminar {
	if s.Loading || s.Error != "" {
		return nil
	}
	return s.Seminars
}

// SeminarList holds a local, possibly stale copy of the seminars and
// reconciles it with the server after every round trip.
type SeminarList struct {
	api    SeminarAPI
	logger *logger.Logger

	mu          sync.Mutex
	seminars    []entities.Seminar
	loading     bool
	loadErr     string
	mutationErr error
	token       uint64
	// mutations applied while a Load is in flight, replayed over its response
	journal []mutation
}

type mutation struct {
	deletedID int
	updated   *entities.Seminar
}

func (m mutation) apply(seminars []entities.Seminar) []entities.Seminar {
	if m.updated != nil {
		return replaceSeminar(seminars, *m.updated)
	}
	return removeSeminar(seminars, m.deletedID)
}

// NewSeminarList creates a list in the loading state
func NewSeminarList(api SeminarAPI, appLogger *logger.Logger) *SeminarList {
	return &SeminarList{
		api:     api,
		logger:  appLogger.WithComponent("seminar_list"),
		loading: true,
	}
}

// Load fetches the full list. If another Load starts before this one
// returns, this response is discarded.
func (l *SeminarList) Load(ctx context.Context) error {
	l.mu.Lock()
	l.token++
	token := l.token
	l.loading = true
	l.loadErr = ""
	l.journal = nil
	l.mu.Unlock()

	seminars, err := l.api.List(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()

	if token != l.token {
		l.logger.Debugw("Discarding stale seminar list response", "token", token)
		return nil
	}

	l.loading = false
	journal := l.journal
	l.journal = nil
	if err != nil {
		l.loadErr = LoadErrorMessage
		l.logger.WithError(err).Errorw("Failed to load seminars")
		return err
	}

	for _, m := range journal {
		seminars = m.apply(seminars)
	}
	l.seminars = seminars
	return nil
}

// State returns a snapshot of the list
func (l *SeminarList) State() ListState {
	l.mu.Lock()
	defer l.mu.Unlock()

	return ListState{
		Loading:       l.loading,
		Error:         l.loadErr,
		Seminars:      append([]entities.Seminar(nil), l.seminars...),
		MutationError: l.mutationErr,
	}
}

// Delete removes a seminar on the server and, once that succeeds,
// locally. On failure the local list is unchanged.
func (l *SeminarList) Delete(ctx context.Context, id int) error {
	if err := l.api.Delete(ctx, id); err != nil {
		return l.mutationFailed("delete", id, err)
	}

	l.record(mutation{deletedID: id})
	return nil
}

// Edit validates details with form, submits them, and replaces the local
// item with the representation the server returned.
func (l *SeminarList) Edit(ctx context.Context, id int, form *EditForm, details entities.SeminarDetails) error {
	if err := form.Validate(ctx, details); err != nil {
		return err
	}

	updated, err := l.api.Update(ctx, id, details)
	if err != nil {
		return l.mutationFailed("update", id, err)
	}

	l.record(mutation{updated: updated})
	return nil
}

// record applies a successful mutation locally. A Load still in flight
// would overwrite it, so it is also journaled for that Load to replay.
func (l *SeminarList) record(m mutation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.seminars = m.apply(l.seminars)
	if l.loading {
		l.journal = append(l.journal, m)
	}
	l.mutationErr = nil
}

func removeSeminar(seminars []entities.Seminar, id int) []entities.Seminar {
	kept := seminars[:0:0]
	for _, s := range seminars {
		if s.ID != id {
			kept = append(kept, s)
		}
	}
	return kept
}

func replaceSeminar(seminars []entities.Seminar, updated entities.Seminar) []entities.Seminar {
	out := append([]entities.Seminar(nil), seminars...)
	for i, s := range out {
		if s.ID == updated.ID {
			out[i] = updated
		}
	}
	return out
}

func (l *SeminarList) mutationFailed(op string, id int, err error) error {
	l.logger.WithError(err).Errorw("Seminar mutation failed", "operation", op, "seminar_id", id)

	wrapped := fmt.Errorf("%s seminar %d: %w", op, id, err)

	l.mu.Lock()
	l.mutationErr = wrapped
	l.mu.Unlock()

	return wrapped
}
