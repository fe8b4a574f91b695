package types

import (
	"fmt"
	"reflect"

	"github.com/repobind/repobind/pkg/errors"
)

// Descriptor holds the four type identities resolved once per discovered
// candidate: record shape, domain-object shape, identifier type, and
// access-object type.
type Descriptor struct {
	Record reflect.Type
	Domain reflect.Type
	ID     reflect.Type
	Access reflect.Type
}

// Validate reports whether all four type identities resolved to concrete,
// non-nil types. The empty interface counts as unresolved: it is the
// runtime residue of an unbound type parameter.
func (d Descriptor) Validate() error {
	for _, slot := range []struct {
		name string
		t    reflect.Type
	}{
		{"record", d.Record},
		{"domain", d.Domain},
		{"id", d.ID},
		{"access", d.Access},
	} {
		if slot.t == nil {
			return errors.Newf(errors.ErrTypeResolution, "%s type did not resolve", slot.name)
		}
		if slot.t.Kind() == reflect.Interface && slot.t.NumMethod() == 0 {
			return errors.Newf(errors.ErrTypeResolution, "%s type resolved to the empty interface", slot.name).
				WithDetail("type", slot.t.String())
		}
	}
	return nil
}

// Matches reports whether all four resolved types are equal.
func (d Descriptor) Matches(other Descriptor) bool {
	return d.Record == other.Record &&
		d.Domain == other.Domain &&
		d.ID == other.ID &&
		d.Access == other.Access
}

// String renders the descriptor for logs.
func (d Descriptor) String() string {
	return fmt.Sprintf("(%s, %s, %s, %s)",
		typeName(d.Record), typeName(d.Domain), typeName(d.ID), typeName(d.Access))
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
