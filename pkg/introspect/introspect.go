// Package introspect resolves the four type identities of a discovery
// candidate against the generic repository contract.
//
// Concrete access objects declare their type arguments by embedding
// types.Base (possibly through intermediate bases of arbitrary depth);
// resolution walks the embedded fields until it finds the carrier. User
// repository interfaces declare theirs by embedding an instantiation of
// types.Repository (possibly through intermediate interfaces); Go
// flattens interface method sets, so resolution probes the contract's
// method signatures positionally.
package introspect

import (
	"reflect"
	"strings"

	"github.com/repobind/repobind/pkg/errors"
	"github.com/repobind/repobind/pkg/types"
)

const contractPkgPath = "github.com/repobind/repobind/pkg/types"

var carrierType = reflect.TypeOf((*types.TypeCarrier)(nil)).Elem()

// ResolveAccessObject resolves the descriptor of a concrete access-object
// type. The candidate is expected to be a struct or pointer-to-struct
// embedding types.Base somewhere in its embedding chain.
func ResolveAccessObject(t reflect.Type) (types.Descriptor, error) {
	if t == nil {
		return types.Descriptor{}, errors.New(errors.ErrTypeResolution, "candidate type is nil")
	}

	st := t
	if st.Kind() == reflect.Pointer {
		st = st.Elem()
	}
	if st.Kind() != reflect.Struct {
		return types.Descriptor{}, errors.Newf(errors.ErrTypeResolution, "candidate %s is not a struct type", t).
			WithDetail("kind", st.Kind().String())
	}

	carrier, ok := findCarrier(st)
	if !ok {
		return types.Descriptor{}, errors.Newf(errors.ErrTypeResolution, "candidate %s does not embed the repository base", t)
	}

	args := carrier.RepositoryTypeArgs()
	desc := types.Descriptor{
		Record: args[0],
		Domain: args[1],
		ID:     args[2],
		Access: t,
	}
	if err := desc.Validate(); err != nil {
		return types.Descriptor{}, err
	}
	return desc, nil
}

// findCarrier walks the embedded fields of st depth-first until one
// implements types.TypeCarrier. The carrier is an empty struct, so a
// fresh zero value is enough to read the type arguments off it.
func findCarrier(st reflect.Type) (types.TypeCarrier, bool) {
	for i := 0; i < st.NumField(); i++ {
		field := st.Field(i)
		if !field.Anonymous {
			continue
		}

		ft := field.Type
		if ft.Kind() == reflect.Pointer {
			ft = ft.Elem()
		}

		if ft.Implements(carrierType) {
			return reflect.New(ft).Elem().Interface().(types.TypeCarrier), true
		}

		if ft.Kind() == reflect.Struct {
			if carrier, ok := findCarrier(ft); ok {
				return carrier, true
			}
		}
	}
	return nil, false
}

// ResolveInterface resolves the descriptor of a user-declared repository
// interface by probing the contract's method signatures. Each probe reads
// one type argument positionally; a missing method or an unexpected shape
// means the interface has no path to the contract.
func ResolveInterface(t reflect.Type) (types.Descriptor, error) {
	if t == nil {
		return types.Descriptor{}, errors.New(errors.ErrTypeResolution, "candidate type is nil")
	}
	if t.Kind() != reflect.Interface {
		return types.Descriptor{}, errors.Newf(errors.ErrTypeResolution, "candidate %s is not an interface type", t).
			WithDetail("kind", t.Kind().String())
	}

	var desc types.Descriptor

	// BatchInsert(ctx, []R) error
	sig, err := methodSignature(t, "BatchInsert", 2, 1)
	if err != nil {
		return types.Descriptor{}, err
	}
	if sig.In(1).Kind() != reflect.Slice {
		return types.Descriptor{}, errors.Newf(errors.ErrTypeResolution, "%s.BatchInsert does not take a record slice", t)
	}
	desc.Record = sig.In(1).Elem()

	// Lookup(ctx, ID) (D, error)
	sig, err = methodSignature(t, "Lookup", 2, 2)
	if err != nil {
		return types.Descriptor{}, err
	}
	desc.ID = sig.In(1)
	desc.Domain = sig.Out(0)

	// AtomicOperation(ctx, Operation[A]) (any, error)
	sig, err = methodSignature(t, "AtomicOperation", 2, 2)
	if err != nil {
		return types.Descriptor{}, err
	}
	opType := sig.In(1)
	if opType.Kind() != reflect.Func || opType.NumIn() != 2 {
		return types.Descriptor{}, errors.Newf(errors.ErrTypeResolution, "%s.AtomicOperation does not take an operation", t)
	}
	desc.Access = opType.In(1)

	if err := desc.Validate(); err != nil {
		return types.Descriptor{}, err
	}
	return desc, nil
}

func methodSignature(t reflect.Type, name string, numIn, numOut int) (reflect.Type, error) {
	m, ok := t.MethodByName(name)
	if !ok {
		return nil, errors.Newf(errors.ErrTypeResolution, "interface %s has no path to the repository contract: missing %s", t, name).
			WithDetail("method", name)
	}
	sig := m.Type
	if sig.NumIn() != numIn || sig.NumOut() != numOut {
		return nil, errors.Newf(errors.ErrTypeResolution, "interface %s declares %s with unexpected arity", t, name).
			WithDetail("numIn", sig.NumIn()).
			WithDetail("numOut", sig.NumOut())
	}
	return sig, nil
}

// IsAccessObject reports whether t is a concrete access-object type, that
// is, a non-interface type that carries repository type arguments through
// an embedded base.
func IsAccessObject(t reflect.Type) bool {
	if t == nil || t.Kind() == reflect.Interface {
		return false
	}
	return t.Implements(carrierType)
}

// IsContract reports whether t is the generic repository contract itself
// (some instantiation of types.Repository) rather than a user-declared
// subtype of it.
func IsContract(t reflect.Type) bool {
	if t == nil || t.Kind() != reflect.Interface {
		return false
	}
	return t.PkgPath() == contractPkgPath && strings.HasPrefix(t.Name(), "Repository[")
}
