package repository

import (
	"context"

	"github.com/sakif/pessoas/internal/model"
)

// SearchOptions narrows a Search call. Term is matched case-insensitively
// as a substring of the name, the nick, or any single stack token.
type SearchOptions struct {
	Term  string
	Limit int
}

// PersonRepository is the storage contract for person records.
//
// Create assigns person.ID. It fails with apperror.ErrConflict when the
// nick is already taken; the uniqueness check and the insert are atomic
// with respect to other Create calls. GetByID returns apperror.ErrNotFound
// for unknown ids. Returned records are copies the caller may keep.
type PersonRepository interface {
	Create(ctx context.Context, person *model.Person) error
	GetByID(ctx context.Context, id string) (*model.Person, error)
	Count(ctx context.Context) (int, error)
	Search(ctx context.Context, opts SearchOptions) ([]model.Person, error)
}
