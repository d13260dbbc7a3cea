// Package model defines the data structures used throughout the application.
package model

import "slices"

// Person is a stored person record.
//
// The JSON names are the public wire contract (nome, apelido, nascimento),
// while the Go names describe what the fields hold.
//
// Stack is nil when the client sent no stack (or null); it is encoded as
// null in that case, and as an array otherwise, even when empty.
type Person struct {
	ID        string   `json:"id"`
	Name      string   `json:"nome"`
	Nick      string   `json:"apelido"`
	BirthDate Date     `json:"nascimento"`
	Stack     []string `json:"stack"`
}

// Clone returns a deep copy. The store hands out clones so callers can
// never alias its internal stack slices.
func (p Person) Clone() Person {
	p.Stack = slices.Clone(p.Stack)
	return p
}

// PersonInput is the decoded body of a create request.
//
// Required fields are pointers so that a missing field or an explicit null
// can be told apart from an empty string; both are validation errors.
// BirthDate stays a raw string here so that the service owns the date
// validation and can report it against the right field.
type PersonInput struct {
	Name      *string  `json:"nome"`
	Nick      *string  `json:"apelido"`
	BirthDate *string  `json:"nascimento"`
	Stack     []string `json:"stack"`
}
