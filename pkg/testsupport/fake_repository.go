package testsupport

import (
	"context"
	"errors"
	"fmt"
	"sync"

	repository "github.com/goliatone/go-repository-bun"
)

// ErrNotFound is returned by FakeRepository.GetByID for unknown ids.
var ErrNotFound = errors.New("testsupport: record not found")

// FakeRepository serves a fixed set of records in place of a bun backed
// repository. Criteria are recorded but never applied: seed each fake with
// exactly the rows a query is expected to return.
type FakeRepository[T any] struct {
	mu       sync.Mutex
	records  []T
	id       func(T) string
	err      error
	calls    map[string]int
	criteria [][]repository.SelectCriteria
}

// NewFakeRepository returns a fake holding records.
func NewFakeRepository[T any](records ...T) *FakeRepository[T] {
	return &FakeRepository[T]{
		records: records,
		calls:   make(map[string]int),
	}
}

// WithID sets how GetByID reads a record's id.
func (r *FakeRepository[T]) WithID(id func(T) string) *FakeRepository[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.id = id
	return r
}

// FailWith makes every following call return err. A nil err clears it.
func (r *FakeRepository[T]) FailWith(err error) *FakeRepository[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
	return r
}

// List returns every record.
func (r *FakeRepository[T]) List(_ context.Context, criteria ...repository.SelectCriteria) ([]T, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.record("List", criteria)
	if r.err != nil {
		return nil, 0, r.err
	}
	out := make([]T, len(r.records))
	copy(out, r.records)
	return out, len(out), nil
}

// GetByID returns the record whose id matches.
func (r *FakeRepository[T]) GetByID(_ context.Context, id string, criteria ...repository.SelectCriteria) (T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var zero T
	r.record("GetByID", criteria)
	if r.err != nil {
		return zero, r.err
	}
	if r.id == nil {
		return zero, fmt.Errorf("testsupport: GetByID(%q) without an id func", id)
	}
	for _, rec := range r.records {
		if r.id(rec) == id {
			return rec, nil
		}
	}
	return zero, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Calls returns how many times method was called.
func (r *FakeRepository[T]) Calls(method string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[method]
}

// CriteriaCounts returns the number of criteria passed to each call, in order.
func (r *FakeRepository[T]) CriteriaCounts() []int {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]int, len(r.criteria))
	for i, c := range r.criteria {
		out[i] = len(c)
	}
	return out
}

func (r *FakeRepository[T]) record(method string, criteria []repository.SelectCriteria) {
	r.calls[method]++
	r.criteria = append(r.criteria, criteria)
}
