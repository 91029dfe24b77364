package client

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seminarhub/core/internal/domain/entities"
	"github.com/seminarhub/core/internal/domain/validation"
	"github.com/seminarhub/core/internal/infrastructure/logger"
)

type listResult struct {
	seminars []entities.Seminar
	err      error
}

// fakeAPI answers List calls from a queue of channels so tests control
// the order in which responses arrive.
type fakeAPI struct {
	mu        sync.Mutex
	lists     []chan listResult
	started   chan struct{}
	updateErr error
	deleteErr error
	updated   []entities.Seminar
	deleted   []int
}

func newFakeAPI(n int) *fakeAPI {
	f := &fakeAPI{started: make(chan struct{}, n)}
	for i := 0; i < n; i++ {
		f.lists = append(f.lists, make(chan listResult, 1))
	}
	return f
}

func (f *fakeAPI) List(ctx context.Context) ([]entities.Seminar, error) {
	f.mu.Lock()
	ch := f.lists[0]
	f.lists = f.lists[1:]
	f.mu.Unlock()

	f.started <- struct{}{}
	r := <-ch
	return r.seminars, r.err
}

func (f *fakeAPI) Update(_ context.Context, id int, details entities.SeminarDetails) (*entities.Seminar, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	s := entities.NewSeminar(id, details)
	f.updated = append(f.updated, s)
	return &s, nil
}

func (f *fakeAPI) Delete(_ context.Context, id int) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func seminars(titles ...string) []entities.Seminar {
	out := make([]entities.Seminar, 0, len(titles))
	for i, title := range titles {
		out = append(out, entities.NewSeminar(i+1, sampleDetails(title)))
	}
	return out
}

func loadedList(t *testing.T, api *fakeAPI, items []entities.Seminar) *SeminarList {
	t.Helper()
	list := NewSeminarList(api, logger.NewNop())
	api.lists[0] <- listResult{seminars: items}
	require.NoError(t, list.Load(context.Background()))
	return list
}

func TestNewListIsLoading(t *testing.T) {
	list := NewSeminarList(newFakeAPI(0), logger.NewNop())

	state := list.State()
	assert.True(t, state.Loading)
	assert.Empty(t, state.Error)
	assert.Nil(t, state.Visible())
}

func TestLoadSuccess(t *testing.T) {
	list := loadedList(t, newFakeAPI(1), seminars("a", "b"))

	state := list.State()
	assert.False(t, state.Loading)
	assert.Empty(t, state.Error)
	assert.Len(t, state.Visible(), 2)
}

func TestLoadFailureShowsMessageOnly(t *testing.T) {
	api := newFakeAPI(2)
	list := loadedList(t, api, seminars("a"))

	api.lists[0] <- listResult{err: errors.New("connection refused")}
	require.Error(t, list.Load(context.Background()))

	state := list.State()
	assert.False(t, state.Loading)
	assert.Equal(t, LoadErrorMessage, state.Error)
	assert.Nil(t, state.Visible())
}

func TestStaleLoadIsDiscarded(t *testing.T) {
	api := newFakeAPI(2)
	list := NewSeminarList(api, logger.NewNop())
	ctx := context.Background()

	first, second := api.lists[0], api.lists[1]

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, list.Load(ctx))
	}()
	<-api.started

	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, list.Load(ctx))
	}()
	<-api.started

	second <- listResult{seminars: seminars("fresh")}
	first <- listResult{seminars: seminars("stale", "stale")}
	wg.Wait()

	state := list.State()
	require.Len(t, state.Visible(), 1)
	assert.Equal(t, "fresh", state.Seminars[0].Title)
}

func TestStaleFailureIsDiscarded(t *testing.T) {
	api := newFakeAPI(2)
	list := NewSeminarList(api, logger.NewNop())
	ctx := context.Background()

	first, second := api.lists[0], api.lists[1]

	done := make(chan error, 1)
	go func() { done <- list.Load(ctx) }()
	<-api.started

	go func() {
		second <- listResult{seminars: seminars("ok")}
	}()
	require.NoError(t, list.Load(ctx))

	first <- listResult{err: errors.New("timeout")}
	assert.NoError(t, <-done)

	state := list.State()
	assert.Empty(t, state.Error)
	assert.Len(t, state.Visible(), 1)
}

func TestDeleteRemovesAfterServerSuccess(t *testing.T) {
	api := newFakeAPI(1)
	list := loadedList(t, api, seminars("a", "b", "c"))

	require.NoError(t, list.Delete(context.Background(), 2))

	assert.Equal(t, []int{2}, api.deleted)
	visible := list.State().Visible()
	require.Len(t, visible, 2)
	assert.Equal(t, 1, visible[0].ID)
	assert.Equal(t, 3, visible[1].ID)
}

func TestDeleteFailureKeepsItemAndSurfacesError(t *testing.T) {
	api := newFakeAPI(1)
	list := loadedList(t, api, seminars("a", "b"))
	api.deleteErr = &APIError{StatusCode: 500, Message: "Failed to save seminars"}

	err := list.Delete(context.Background(), 2)
	require.Error(t, err)

	var apiErr *APIError
	assert.True(t, errors.As(err, &apiErr))

	state := list.State()
	assert.Len(t, state.Visible(), 2)
	assert.ErrorIs(t, state.MutationError, api.deleteErr)
}

func TestEditReplacesWithServerResponse(t *testing.T) {
	api := newFakeAPI(1)
	list := loadedList(t, api, seminars("a", "b"))
	form := NewEditForm(validation.New(), nil)

	require.NoError(t, list.Edit(context.Background(), 2, form, sampleDetails("edited")))

	visible := list.State().Visible()
	assert.Equal(t, "a", visible[0].Title)
	assert.Equal(t, "edited", visible[1].Title)
	assert.Nil(t, list.State().MutationError)
}

func TestEditInvalidNeverReachesServer(t *testing.T) {
	api := newFakeAPI(1)
	list := loadedList(t, api, seminars("a"))
	form := NewEditForm(validation.New(), nil)

	bad := sampleDetails("a")
	bad.Date = "32.01.2025"
	err := list.Edit(context.Background(), 1, form, bad)

	var verr *entities.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Empty(t, api.updated)

	msg, ok := form.FieldError("date")
	assert.True(t, ok)
	assert.NotEmpty(t, msg)
}

func TestEditFailureSurfacesError(t *testing.T) {
	api := newFakeAPI(1)
	list := loadedList(t, api, seminars("a"))
	api.updateErr = &APIError{StatusCode: 404, Message: "Seminar not found"}

	err := list.Edit(context.Background(), 1, NewEditForm(validation.New(), nil), sampleDetails("changed"))
	assert.True(t, IsNotFound(err))

	state := list.State()
	assert.Equal(t, "a", state.Visible()[0].Title)
	assert.True(t, IsNotFound(state.MutationError))
}

func TestDeleteDuringLoadIsNotUndone(t *testing.T) {
	api := newFakeAPI(1)
	list := NewSeminarList(api, logger.NewNop())
	ctx := context.Background()

	response := api.lists[0]
	done := make(chan error, 1)
	go func() { done <- list.Load(ctx) }()
	<-api.started

	require.NoError(t, list.Delete(ctx, 2))

	// The list response was produced before the delete reached the server.
	response <- listResult{seminars: seminars("a", "b", "c")}
	require.NoError(t, <-done)

	visible := list.State().Visible()
	require.Len(t, visible, 2)
	assert.Equal(t, 1, visible[0].ID)
	assert.Equal(t, 3, visible[1].ID)
}

func TestEditDuringLoadIsNotUndone(t *testing.T) {
	api := newFakeAPI(1)
	list := NewSeminarList(api, logger.NewNop())
	ctx := context.Background()

	response := api.lists[0]
	done := make(chan error, 1)
	go func() { done <- list.Load(ctx) }()
	<-api.started

	require.NoError(t, list.Edit(ctx, 1, NewEditForm(validation.New(), nil), sampleDetails("edited")))

	response <- listResult{seminars: seminars("a", "b")}
	require.NoError(t, <-done)

	visible := list.State().Visible()
	require.Len(t, visible, 2)
	assert.Equal(t, "edited", visible[0].Title)
	assert.Equal(t, "b", visible[1].Title)
}

func TestMutationsAfterLoadAreNotReplayed(t *testing.T) {
	api := newFakeAPI(2)
	list := loadedList(t, api, seminars("a", "b"))
	ctx := context.Background()

	require.NoError(t, list.Delete(ctx, 2))

	// A fresh load reflects the server, which now has "b" again.
	api.lists[0] <- listResult{seminars: seminars("a", "b")}
	require.NoError(t, list.Load(ctx))
	assert.Len(t, list.State().Visible(), 2)
}
