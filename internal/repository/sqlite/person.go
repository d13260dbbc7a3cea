package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	moderncsqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/sakif/pessoas/internal/apperror"
	"github.com/sakif/pessoas/internal/model"
	"github.com/sakif/pessoas/internal/repository"
)

var _ repository.PersonRepository = (*DB)(nil)

// Create inserts a new person and sets person.ID.
//
// There is no SELECT-then-INSERT: the UNIQUE constraint on nick rejects the
// duplicate inside the INSERT itself.
func (db *DB) Create(ctx context.Context, person *model.Person) error {
	stack, err := encodeStack(person.Stack)
	if err != nil {
		return fmt.Errorf("sqlite: encoding stack: %w", err)
	}

	id := db.ids.Next()
	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO people (id, name, nick, birth_date, stack, search_key)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id,
		person.Name,
		person.Nick,
		person.BirthDate.String(),
		stack,
		repository.SearchKey(*person),
	)
	if err != nil {
		// The low byte is the primary result code whether or not the
		// driver reports extended codes; the message names the column.
		var sqlErr *moderncsqlite.Error
		if errors.As(err, &sqlErr) && sqlErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT {
			switch {
			case strings.Contains(sqlErr.Error(), "people.nick"):
				return apperror.Conflict("person", "apelido", person.Nick)
			case strings.Contains(sqlErr.Error(), "people.id"):
				panic(fmt.Sprintf("sqlite: %s generator reissued id %s", db.ids.Name(), id))
			}
		}
		return fmt.Errorf("sqlite: creating person: %w", err)
	}

	person.ID = id
	return nil
}

// GetByID retrieves a single person by id.
// sql.ErrNoRows becomes apperror.NotFound.
func (db *DB) GetByID(ctx context.Context, id string) (*model.Person, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT id, name, nick, birth_date, stack FROM people WHERE id = ?`,
		id,
	)
	p, err := scanPerson(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("person", id)
		}
		return nil, fmt.Errorf("sqlite: getting person %s: %w", id, err)
	}
	return p, nil
}

func (db *DB) Count(ctx context.Context) (int, error) {
	var n int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM people`).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlite: counting people: %w", err)
	}
	return n, nil
}

// Search matches the folded term against search_key with instr() rather
// than LIKE, so '%' and '_' in the term are literal characters.
func (db *DB) Search(ctx context.Context, opts repository.SearchOptions) ([]model.Person, error) {
	people := []model.Person{}

	term := repository.Fold(opts.Term)
	if !repository.Searchable(term) {
		return people, nil
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, name, nick, birth_date, stack FROM people
		 WHERE instr(search_key, ?) > 0
		 ORDER BY id
		 LIMIT ?`,
		term, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: searching people: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning person: %w", err)
		}
		people = append(people, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating people: %w", err)
	}

	return people, nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanPerson(s scanner) (*model.Person, error) {
	var (
		p         model.Person
		birthDate string
		stack     sql.NullString
	)
	if err := s.Scan(&p.ID, &p.Name, &p.Nick, &birthDate, &stack); err != nil {
		return nil, err
	}

	d, err := model.ParseDate(birthDate)
	if err != nil {
		return nil, err
	}
	p.BirthDate = d

	if stack.Valid {
		if err := json.Unmarshal([]byte(stack.String), &p.Stack); err != nil {
			return nil, fmt.Errorf("decoding stack: %w", err)
		}
	}
	return &p, nil
}

func encodeStack(stack []string) (sql.NullString, error) {
	if stack == nil {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(stack)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}
