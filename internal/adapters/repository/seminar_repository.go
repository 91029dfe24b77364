package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/seminarhub/core/internal/domain/entities"
	"github.com/seminarhub/core/internal/domain/validation"
	"github.com/seminarhub/core/internal/infrastructure/logger"
	"github.com/seminarhub/core/internal/infrastructure/storage"
	"github.com/seminarhub/core/internal/ports"
)

// DataFile is the persistence backend used by the repository
type DataFile interface {
	Path() string
	Read() ([]byte, error)
	WriteAtomic(data []byte) error
}

var _ DataFile = (*storage.DataFile)(nil)

// SeminarRepository is the file-backed seminar store. It owns the
// canonical ordered collection; every mutation holds the write lock
// across the file write and is committed to memory only once the write
// has succeeded.
type SeminarRepository struct {
	mu        sync.RWMutex
	seminars  []entities.Seminar
	file      DataFile
	validator *validation.Validator
	logger    *logger.Logger

	operations *prometheus.CounterVec
}

// NewSeminarRepository creates a new seminar repository. Load must be
// called before serving requests.
func NewSeminarRepository(file DataFile, validator *validation.Validator, appLogger *logger.Logger) *SeminarRepository {
	return &SeminarRepository{
		seminars:  []entities.Seminar{},
		file:      file,
		validator: validator,
		logger:    appLogger.WithComponent("seminar_repository"),
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "seminar_store_operations_total",
				Help: "Total number of seminar store operations",
			},
			[]string{"operation", "result"},
		),
	}
}

var _ ports.SeminarRepository = (*SeminarRepository)(nil)

// Collectors returns the Prometheus collectors owned by the repository
func (r *SeminarRepository) Collectors() []prometheus.Collector {
	stored := prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "seminars_stored",
			Help: "Number of seminars currently held by the store",
		},
		func() float64 { return float64(r.Count()) },
	)
	return []prometheus.Collector{r.operations, stored}
}

// Load reads and validates the data file and replaces the in-memory
// collection. Any error means the file cannot be served.
func (r *SeminarRepository) Load(ctx context.Context) error {
	start := time.Now()

	data, err := r.file.Read()
	if err != nil {
		err = &entities.PersistenceError{Op: "read", Path: r.file.Path(), Err: err}
		r.observe("load", 0, start, err)
		return err
	}

	seminars, err := Decode(data)
	if err != nil {
		err = &entities.PersistenceError{Op: "decode", Path: r.file.Path(), Err: err}
		r.observe("load", 0, start, err)
		return err
	}

	if err := r.validateCollection(seminars); err != nil {
		err = &entities.PersistenceError{Op: "validate", Path: r.file.Path(), Err: err}
		r.observe("load", 0, start, err)
		return err
	}

	r.mu.Lock()
	r.seminars = seminars
	r.mu.Unlock()

	r.observe("load", 0, start, nil)
	r.logger.Infow("Seminars loaded", "path", r.file.Path(), "count", len(seminars))

	return nil
}

// Initialize writes an empty seminars document and resets the collection
func (r *SeminarRepository) Initialize(ctx context.Context) error {
	start := time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	err := r.commit([]entities.Seminar{})
	r.observe("initialize", 0, start, err)
	return err
}

func (r *SeminarRepository) validateCollection(seminars []entities.Seminar) error {
	seen := make(map[int]struct{}, len(seminars))
	for i, s := range seminars {
		if err := r.validator.ValidateSeminar(s); err != nil {
			return fmt.Errorf("seminars[%d]: %w", i, err)
		}
		if _, dup := seen[s.ID]; dup {
			return fmt.Errorf("seminars[%d]: %w: %d", i, entities.ErrDuplicateID, s.ID)
		}
		seen[s.ID] = struct{}{}
	}
	return nil
}

// List returns a copy of all seminars in stored order
func (r *SeminarRepository) List(ctx context.Context) ([]entities.Seminar, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return clone(r.seminars), nil
}

// GetByID retrieves a seminar by ID
func (r *SeminarRepository) GetByID(ctx context.Context, id int) (*entities.Seminar, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	idx := Find(r.seminars, id)
	if idx < 0 {
		return nil, entities.ErrSeminarNotFound
	}

	seminar := copySeminar(r.seminars[idx])
	return &seminar, nil
}

// Count returns the number of stored seminars
func (r *SeminarRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.seminars)
}

// Create appends a seminar with the next id and persists the collection
func (r *SeminarRepository) Create(ctx context.Context, details entities.SeminarDetails) (*entities.Seminar, error) {
	start := time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	seminar := entities.NewSeminar(NextID(r.seminars), details)

	next := make([]entities.Seminar, 0, len(r.seminars)+1)
	next = append(next, r.seminars...)
	next = append(next, seminar)

	if err := r.commit(next); err != nil {
		r.observe("create", seminar.ID, start, err)
		return nil, err
	}

	r.observe("create", seminar.ID, start, nil)
	created := copySeminar(seminar)
	return &created, nil
}

// Update replaces the seminar with the same id at its existing position
func (r *SeminarRepository) Update(ctx context.Context, seminar entities.Seminar) (*entities.Seminar, error) {
	start := time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	idx := Find(r.seminars, seminar.ID)
	if idx < 0 {
		r.observe("update", seminar.ID, start, entities.ErrSeminarNotFound)
		return nil, entities.ErrSeminarNotFound
	}

	next := clone(r.seminars)
	next[idx] = copySeminar(seminar)

	if err := r.commit(next); err != nil {
		r.observe("update", seminar.ID, start, err)
		return nil, err
	}

	r.observe("update", seminar.ID, start, nil)
	updated := copySeminar(seminar)
	return &updated, nil
}

// Delete removes the seminar with the given id
func (r *SeminarRepository) Delete(ctx context.Context, id int) error {
	start := time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	idx := Find(r.seminars, id)
	if idx < 0 {
		r.observe("delete", id, start, entities.ErrSeminarNotFound)
		return entities.ErrSeminarNotFound
	}

	next := make([]entities.Seminar, 0, len(r.seminars)-1)
	next = append(next, r.seminars[:idx]...)
	next = append(next, r.seminars[idx+1:]...)

	if err := r.commit(next); err != nil {
		r.observe("delete", id, start, err)
		return err
	}

	r.observe("delete", id, start, nil)
	return nil
}

// commit persists next and swaps it in. Callers hold the write lock.
func (r *SeminarRepository) commit(next []entities.Seminar) error {
	if err := r.persist(next); err != nil {
		return err
	}
	r.seminars = next
	return nil
}

func (r *SeminarRepository) persist(seminars []entities.Seminar) error {
	data, err := Encode(seminars)
	if err != nil {
		return &entities.PersistenceError{Op: "encode", Path: r.file.Path(), Err: err}
	}

	if err := r.file.WriteAtomic(data); err != nil {
		return &entities.PersistenceError{Op: "write", Path: r.file.Path(), Err: err}
	}

	return nil
}

func (r *SeminarRepository) observe(operation string, seminarID int, start time.Time, err error) {
	result := "ok"
	switch {
	case err == nil:
	case errors.Is(err, entities.ErrSeminarNotFound):
		result = "not_found"
	default:
		result = "error"
	}
	r.operations.WithLabelValues(operation, result).Inc()

	if result == "not_found" {
		return
	}
	r.logger.LogStoreOperation(operation, seminarID, float64(time.Since(start).Microseconds())/1000, err)
}

// NextID returns one more than the largest id in seminars, or 1 when the
// collection is empty.
func NextID(seminars []entities.Seminar) int {
	maxID := 0
	for _, s := range seminars {
		if s.ID > maxID {
			maxID = s.ID
		}
	}
	return maxID + 1
}

// Find returns the index of the seminar with id, or -1
func Find(seminars []entities.Seminar, id int) int {
	for i, s := range seminars {
		if s.ID == id {
			return i
		}
	}
	return -1
}

// Encode renders the file document with two-space indentation
func Encode(seminars []entities.Seminar) ([]byte, error) {
	if seminars == nil {
		seminars = []entities.Seminar{}
	}

	data, err := json.MarshalIndent(entities.SeminarsFile{Seminars: seminars}, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// Decode parses the file document. The seminars field is required.
func Decode(data []byte) ([]entities.Seminar, error) {
	var doc struct {
		Seminars *[]entities.Seminar `json:"seminars"`
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("invalid seminars document: %w", err)
	}
	if doc.Seminars == nil {
		return nil, errors.New("invalid seminars document: missing seminars field")
	}

	return *doc.Seminars, nil
}

func clone(seminars []entities.Seminar) []entities.Seminar {
	out := make([]entities.Seminar, len(seminars))
	for i, s := range seminars {
		out[i] = copySeminar(s)
	}
	return out
}

func copySeminar(s entities.Seminar) entities.Seminar {
	if s.Description != nil {
		s.Description = entities.StringPtr(*s.Description)
	}
	return s
}
