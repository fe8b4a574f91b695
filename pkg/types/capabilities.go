package types

import "context"

// BatchWriter is the access-object capability behind BatchInsert and
// BatchUpdate. Access objects that do not implement it reject batch
// mutation with a coded error.
type BatchWriter[R any] interface {
	InsertAll(ctx context.Context, records []R) error
	UpdateAll(ctx context.Context, records []R) error
}

// Finder is the access-object capability behind Lookup.
type Finder[ID comparable, D any] interface {
	FindByID(ctx context.Context, id ID) (D, error)
}

// TableNamer lets an access object report the resource name used in
// operation logs. Resolution is best effort; absence degrades to the
// access object's type name.
type TableNamer interface {
	TableName() string
}
