package sqlite

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/pessoas/internal/apperror"
	"github.com/sakif/pessoas/internal/idgen"
	"github.com/sakif/pessoas/internal/model"
	"github.com/sakif/pessoas/internal/repository"
)

// newTestDB gives each test its own private in-memory database.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(idgen.XID{})
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestPerson(t *testing.T, db *DB, nick string, stack []string) *model.Person {
	t.Helper()
	p := &model.Person{
		Name:      "Person " + nick,
		Nick:      nick,
		BirthDate: model.MustParseDate("1984-06-06"),
		Stack:     stack,
	}
	if err := db.Create(context.Background(), p); err != nil {
		t.Fatalf("failed to create test person: %v", err)
	}
	return p
}

func TestCreate_ThenGet(t *testing.T) {
	db := newTestDB(t)

	created := createTestPerson(t, db, "jeff", []string{"Rust", "Go"})
	require.NotEmpty(t, created.ID)

	found, err := db.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, *created, *found)
}

func TestCreate_NullAndEmptyStackSurvive(t *testing.T) {
	db := newTestDB(t)

	withNull := createTestPerson(t, db, "null-stack", nil)
	withEmpty := createTestPerson(t, db, "empty-stack", []string{})

	got, err := db.GetByID(context.Background(), withNull.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Stack)

	got, err = db.GetByID(context.Background(), withEmpty.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.Stack)
	assert.Empty(t, got.Stack)
}

func TestCreate_DuplicateNick(t *testing.T) {
	db := newTestDB(t)
	createTestPerson(t, db, "jeff", nil)

	dup := &model.Person{Name: "Other", Nick: "jeff", BirthDate: model.MustParseDate("2000-01-01")}
	err := db.Create(context.Background(), dup)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrConflict), "error = %v, want ErrConflict", err)
	assert.Empty(t, dup.ID)

	n, err := db.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestCreate_ConcurrentSameNick(t *testing.T) {
	db := newTestDB(t)
	const attempts = 16

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := db.Create(context.Background(), &model.Person{
				Name: "Racer", Nick: "racer", BirthDate: model.MustParseDate("2000-01-01"),
			})
			if err != nil && !errors.Is(err, apperror.ErrConflict) {
				t.Errorf("unexpected error: %v", err)
				return
			}
			if err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
}

func TestGetByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetByID(context.Background(), "nonexistent-id")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestCount(t *testing.T) {
	db := newTestDB(t)
	for i := range 5 {
		createTestPerson(t, db, fmt.Sprintf("p%d", i), nil)
	}

	n, err := db.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}

func TestSearch(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	gopher := createTestPerson(t, db, "gopher", []string{"Go", "Postgres"})
	createTestPerson(t, db, "rustacean", []string{"Rust"})
	createTestPerson(t, db, "100%", nil)

	got, err := db.Search(ctx, repository.SearchOptions{Term: "POSTGRES"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, gopher.ID, got[0].ID)
	assert.Equal(t, []string{"Go", "Postgres"}, got[0].Stack)

	got, err = db.Search(ctx, repository.SearchOptions{Term: "person"})
	require.NoError(t, err)
	assert.Len(t, got, 3)

	got, err = db.Search(ctx, repository.SearchOptions{Term: "person", Limit: 2})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	// '%' is literal, not a wildcard
	got, err = db.Search(ctx, repository.SearchOptions{Term: "0%"})
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = db.Search(ctx, repository.SearchOptions{Term: "r%t"})
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = db.Search(ctx, repository.SearchOptions{Term: ""})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestNew_DatabasesAreIsolated(t *testing.T) {
	a := newTestDB(t)
	b := newTestDB(t)
	createTestPerson(t, a, "only-in-a", nil)

	n, err := b.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}
