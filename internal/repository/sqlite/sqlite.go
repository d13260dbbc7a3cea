// Package sqlite implements repository.PersonRepository on an in-memory
// SQLite database.
//
// It is the alternative to the memory package: the same contract, with the
// nick uniqueness rule enforced by a UNIQUE constraint instead of a map
// index. The database only ever lives in memory; there is no file path to
// configure, and the data is gone when the process exits.
//
// WHY modernc.org/sqlite?
// It's a pure Go translation of SQLite, so the binary needs no C toolchain.
//
// ONE CONNECTION:
// Every new connection to ":memory:" opens a brand-new, empty database.
// database/sql keeps a pool, so without SetMaxOpenConns(1) a query could
// land on a connection that never saw the CREATE TABLE. Pinning the pool to
// one connection also serialises writers, which is what makes the
// UNIQUE check and the INSERT a single atomic step.
package sqlite

import (
	"database/sql"
	"fmt"

	"github.com/sakif/pessoas/internal/idgen"

	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and provides repository methods.
type DB struct {
	conn *sql.DB
	ids  idgen.Generator
}

// New opens a fresh in-memory database and creates the schema.
func New(gen idgen.Generator) (*DB, error) {
	conn, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	db := &DB{conn: conn, ids: gen}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the connection, discarding every record.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	// stack is a JSON array, or NULL when the client sent none.
	// search_key is repository.SearchKey, precomputed at insert time.
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS people (
			id         TEXT PRIMARY KEY,
			name       TEXT NOT NULL,
			nick       TEXT NOT NULL UNIQUE,
			birth_date TEXT NOT NULL,
			stack      TEXT,
			search_key TEXT NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("creating people table: %w", err)
	}
	return nil
}
