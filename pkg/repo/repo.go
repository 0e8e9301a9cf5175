// Package repo defines a generic read-mostly repository interface over a
// node store, plus a Neo4j implementation.
package repo

import "context"

// Repository is a generic record repository. Upsert is MERGE-based so
// re-seeding the same records is idempotent.
type Repository[T any, ID comparable] interface {
	Get(ctx context.Context, id ID) (T, error)
	List(ctx context.Context, opts ListOpts) ([]T, error)
	Upsert(ctx context.Context, entity T) (T, error)
	Delete(ctx context.Context, id ID) error
}

// ListOpts controls pagination for List operations.
type ListOpts struct {
	Offset int
	Limit  int
}
