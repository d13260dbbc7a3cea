// Package memory implements repository.PersonRepository in process memory.
//
// This is the authoritative store: one map from id to record, a secondary
// index from nick to id, and a sync.RWMutex over both.
//
// LOCKING:
//   - GetByID, Count and Search take the read lock, so any number of them
//     run together.
//   - Create takes the write lock for the nick check AND the insert. Doing
//     the check under a read lock and the insert under a write lock would
//     let two creates with the same nick both pass the check.
//
// Nothing inside a critical section blocks on I/O, and no method calls
// another while holding the lock.
package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/sakif/pessoas/internal/apperror"
	"github.com/sakif/pessoas/internal/idgen"
	"github.com/sakif/pessoas/internal/model"
	"github.com/sakif/pessoas/internal/repository"
)

var _ repository.PersonRepository = (*Store)(nil)

type entry struct {
	person    model.Person
	searchKey string
}

// Store holds person records in memory. The zero value is not usable;
// construct with New.
type Store struct {
	ids idgen.Generator

	mu     sync.RWMutex
	byID   map[string]entry
	byNick map[string]string
}

// New returns an empty store that assigns ids from gen.
func New(gen idgen.Generator) *Store {
	return &Store{
		ids:    gen,
		byID:   make(map[string]entry),
		byNick: make(map[string]string),
	}
}

// Create stores a copy of person under a fresh id and sets person.ID.
func (s *Store) Create(_ context.Context, person *model.Person) error {
	stored := person.Clone()
	key := repository.SearchKey(stored)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byNick[stored.Nick]; taken {
		return apperror.Conflict("person", "apelido", stored.Nick)
	}

	stored.ID = s.ids.Next()
	if _, exists := s.byID[stored.ID]; exists {
		// The generator promised uniqueness; continuing would overwrite a record.
		panic(fmt.Sprintf("memory: %s generator reissued id %s", s.ids.Name(), stored.ID))
	}

	s.byID[stored.ID] = entry{person: stored, searchKey: key}
	s.byNick[stored.Nick] = stored.ID

	person.ID = stored.ID
	return nil
}

// GetByID returns a copy of the record with the given id.
func (s *Store) GetByID(_ context.Context, id string) (*model.Person, error) {
	s.mu.RLock()
	e, ok := s.byID[id]
	s.mu.RUnlock()

	if !ok {
		return nil, apperror.NotFound("person", id)
	}
	p := e.person.Clone()
	return &p, nil
}

// Count returns the number of stored records.
func (s *Store) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID), nil
}

// Search returns up to opts.Limit matching records ordered by id.
// A non-positive limit means no limit.
func (s *Store) Search(_ context.Context, opts repository.SearchOptions) ([]model.Person, error) {
	term := repository.Fold(opts.Term)
	matches := []model.Person{}

	s.mu.RLock()
	for _, e := range s.byID {
		if repository.MatchKey(e.searchKey, term) {
			matches = append(matches, e.person.Clone())
		}
	}
	s.mu.RUnlock()

	slices.SortFunc(matches, func(a, b model.Person) int {
		return strings.Compare(a.ID, b.ID)
	})
	if opts.Limit > 0 && len(matches) > opts.Limit {
		matches = matches[:opts.Limit]
	}
	return matches, nil
}
