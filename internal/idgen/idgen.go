// Package idgen generates record identifiers.
//
// Every scheme here is time-prefixed, so identifiers sort roughly in
// creation order. Only uniqueness is relied on; ordering is a convenience
// for listing and searching.
package idgen

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/rs/xid"
)

// Scheme names accepted by New.
const (
	SchemeXID    = "xid"
	SchemeUUIDv7 = "uuidv7"
	SchemeULID   = "ulid"
)

// Generator produces unique identifiers and recognises the ones it could
// have produced. Implementations must be safe for concurrent use.
type Generator interface {
	Next() string
	Valid(id string) bool
	Name() string
}

// New returns the generator for the named scheme. An empty name selects xid.
func New(scheme string) (Generator, error) {
	switch scheme {
	case "", SchemeXID:
		return XID{}, nil
	case SchemeUUIDv7:
		return UUIDv7{}, nil
	case SchemeULID:
		return ULID{}, nil
	default:
		return nil, fmt.Errorf("idgen: unknown scheme %q (want %s, %s or %s)",
			scheme, SchemeXID, SchemeUUIDv7, SchemeULID)
	}
}

// XID generates 20-character xids: 4 bytes of seconds, machine and pid
// bytes, then a process-wide atomic counter.
type XID struct{}

func (XID) Next() string { return xid.New().String() }

func (XID) Valid(id string) bool {
	_, err := xid.FromString(id)
	return err == nil
}

func (XID) Name() string { return SchemeXID }

// UUIDv7 generates RFC 9562 version 7 UUIDs (millisecond timestamp first).
type UUIDv7 struct{}

func (UUIDv7) Next() string {
	// NewV7 only fails if the system random source fails.
	return uuid.Must(uuid.NewV7()).String()
}

func (UUIDv7) Valid(id string) bool {
	u, err := uuid.Parse(id)
	return err == nil && u.Version() == 7 && len(id) == 36
}

func (UUIDv7) Name() string { return SchemeUUIDv7 }

// ULID generates ULIDs. ulid.Make uses a process-wide monotonic entropy
// source, so ids made in the same millisecond still increase.
type ULID struct{}

func (ULID) Next() string { return ulid.Make().String() }

func (ULID) Valid(id string) bool {
	_, err := ulid.ParseStrict(id)
	return err == nil
}

func (ULID) Name() string { return SchemeULID }
