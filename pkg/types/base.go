package types

import "reflect"

// TypeCarrier is implemented by every access object that embeds Base.
// Introspection walks a candidate's embedded fields until it finds the
// carrier, then reads the type arguments off it.
type TypeCarrier interface {
	RepositoryTypeArgs() [3]reflect.Type
}

// Base is the embeddable generic base of a concrete access object. It
// carries the record, domain-object, and identifier type arguments; the
// access-object type itself is the embedding type. Intermediate bases may
// embed it in turn, substituting their own type parameters.
//
//	type OrderDAO struct {
//		types.Base[OrderRecord, Order, int64]
//		db *sql.DB
//	}
type Base[R any, D any, ID comparable] struct{}

// RepositoryTypeArgs implements TypeCarrier. Order matches the contract's
// declaration order: record, domain, identifier.
func (Base[R, D, ID]) RepositoryTypeArgs() [3]reflect.Type {
	return [3]reflect.Type{
		reflect.TypeOf((*R)(nil)).Elem(),
		reflect.TypeOf((*D)(nil)).Elem(),
		reflect.TypeOf((*ID)(nil)).Elem(),
	}
}
