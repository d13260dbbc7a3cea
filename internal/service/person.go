// Package service contains the business logic layer of the application.
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (Business layer) → validates, enforces rules, orchestrates
//	Repository (Data layer)  → stores records
//
// PersonService takes a repository.PersonRepository (interface), not a
// concrete store, so the same rules apply whether records live in the
// memory map or the in-memory SQLite database, and tests can pass a mock.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/sakif/pessoas/internal/apperror"
	"github.com/sakif/pessoas/internal/idgen"
	"github.com/sakif/pessoas/internal/model"
	"github.com/sakif/pessoas/internal/repository"
)

// Limits bounds the size of a person record. Lengths are in characters
// (Unicode code points), not bytes.
type Limits struct {
	MaxNameLength      int
	MaxNickLength      int
	MaxStackItemLength int
	MaxStackItems      int
	SearchLimit        int
}

// DefaultLimits returns the bounds used when configuration sets none.
func DefaultLimits() Limits {
	return Limits{
		MaxNameLength:      100,
		MaxNickLength:      100,
		MaxStackItemLength: 32,
		MaxStackItems:      100,
		SearchLimit:        50,
	}
}

// PersonService handles business logic for person records.
type PersonService struct {
	repo   repository.PersonRepository
	ids    idgen.Generator
	limits Limits
	logger *slog.Logger
}

// NewPersonService creates a new PersonService. ids must be the generator
// the repository assigns identifiers with; the service uses it to reject
// malformed ids before they reach the store.
func NewPersonService(repo repository.PersonRepository, ids idgen.Generator, limits Limits, logger *slog.Logger) *PersonService {
	return &PersonService{
		repo:   repo,
		ids:    ids,
		limits: limits,
		logger: logger,
	}
}

// Create validates the input and stores a new person.
//
// Validation errors name the wire field (nome, apelido, nascimento, stack)
// so a client can tell which part of its payload was rejected. A nick that
// is already taken comes back from the repository as apperror.ErrConflict.
func (s *PersonService) Create(ctx context.Context, in model.PersonInput) (*model.Person, error) {
	person, err := s.validate(in)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, person); err != nil {
		// A taken nick is the client's problem, not ours; don't log it as a failure.
		if !errors.Is(err, apperror.ErrConflict) {
			s.logger.Error("failed to create person",
				slog.String("apelido", person.Nick),
				slog.String("error", err.Error()),
			)
		}
		return nil, fmt.Errorf("creating person: %w", err)
	}

	s.logger.Debug("person created",
		slog.String("id", person.ID),
		slog.String("apelido", person.Nick),
	)
	return person, nil
}

// GetByID retrieves a person by id. Ids the generator could never have
// issued are reported as not found without touching the store.
func (s *PersonService) GetByID(ctx context.Context, id string) (*model.Person, error) {
	if !s.ids.Valid(id) {
		return nil, apperror.NotFound("person", id)
	}
	return s.repo.GetByID(ctx, id)
}

// Count returns the number of stored people.
func (s *PersonService) Count(ctx context.Context) (int, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("counting people: %w", err)
	}
	return n, nil
}

// Search returns people whose name, nick or a stack token contains term,
// ignoring case. A blank term returns an empty, non-nil slice.
func (s *PersonService) Search(ctx context.Context, term string) ([]model.Person, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return []model.Person{}, nil
	}

	people, err := s.repo.Search(ctx, repository.SearchOptions{
		Term:  term,
		Limit: s.limits.SearchLimit,
	})
	if err != nil {
		s.logger.Error("failed to search people", slog.String("error", err.Error()))
		return nil, fmt.Errorf("searching people: %w", err)
	}
	return people, nil
}

func (s *PersonService) validate(in model.PersonInput) (*model.Person, error) {
	name, err := requiredText("nome", in.Name, s.limits.MaxNameLength)
	if err != nil {
		return nil, err
	}
	nick, err := requiredText("apelido", in.Nick, s.limits.MaxNickLength)
	if err != nil {
		return nil, err
	}

	if in.BirthDate == nil {
		return nil, apperror.ValidationFailed("nascimento", "nascimento is required")
	}
	birthDate, err := model.ParseDate(*in.BirthDate)
	if err != nil {
		return nil, apperror.ValidationFailed("nascimento", "nascimento must be a valid date in YYYY-MM-DD form")
	}

	if len(in.Stack) > s.limits.MaxStackItems {
		return nil, apperror.ValidationFailed("stack",
			fmt.Sprintf("stack must have %d items or fewer", s.limits.MaxStackItems))
	}
	for i, item := range in.Stack {
		if n := utf8.RuneCountInString(item); n == 0 || n > s.limits.MaxStackItemLength {
			return nil, apperror.ValidationFailed("stack",
				fmt.Sprintf("stack[%d] must be between 1 and %d characters", i, s.limits.MaxStackItemLength))
		}
	}

	return &model.Person{
		Name:      name,
		Nick:      nick,
		BirthDate: birthDate,
		Stack:     in.Stack,
	}, nil
}

func requiredText(field string, value *string, maxLen int) (string, error) {
	if value == nil || *value == "" {
		return "", apperror.ValidationFailed(field, field+" is required")
	}
	if utf8.RuneCountInString(*value) > maxLen {
		return "", apperror.ValidationFailed(field,
			fmt.Sprintf("%s must be %d characters or less", field, maxLen))
	}
	return *value, nil
}
