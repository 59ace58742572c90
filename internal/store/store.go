package store

import (
	"context"
	"errors"
)

// Collection names shared by every backend.
const (
	StreaksCollection = "streaks"
	GroupsCollection  = "groups"
	MembersCollection = "group_members"
)

// ErrNotFound is returned by Get, Update and Delete when no document
// with the given id exists in the collection.
var ErrNotFound = errors.New("document not found")

// Document is one record in a collection. Fields hold scalar values;
// nested structures are kept as JSON-encoded strings by the callers.
type Document struct {
	ID     string
	Fields map[string]any
}

// Filter is an equality predicate on one field. A single value means
// field == value, multiple values mean field IN values.
type Filter struct {
	Field  string
	Values []string
}

func Eq(field, value string) Filter {
	return Filter{Field: field, Values: []string{value}}
}

func In(field string, values ...string) Filter {
	return Filter{Field: field, Values: values}
}

func (f Filter) matches(v any) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	for _, want := range f.Values {
		if s == want {
			return true
		}
	}
	return false
}

// Store is the document-store collaborator. All persistence goes through
// it; implementations must be safe for concurrent use.
type Store interface {
	// List returns every document in the collection matching all filters.
	List(ctx context.Context, collection string, filters ...Filter) ([]Document, error)
	// Get returns one document by id, or ErrNotFound.
	Get(ctx context.Context, collection, id string) (Document, error)
	// Create inserts a document. An empty id asks the backend to assign one.
	Create(ctx context.Context, collection, id string, fields map[string]any) (Document, error)
	// Update merges fields into an existing document, or ErrNotFound.
	Update(ctx context.Context, collection, id string, fields map[string]any) (Document, error)
	// Delete removes a document, or ErrNotFound.
	Delete(ctx context.Context, collection, id string) error
	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error
}
