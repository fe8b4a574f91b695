package types

import (
	"reflect"

	"github.com/repobind/repobind/pkg/sequence"
)

// Role classifies a discovery candidate.
type Role string

const (
	// RoleAccessObject marks a concrete access-object implementation;
	// discovery registers a facade bound to it.
	RoleAccessObject Role = "access-object"

	// RoleInterface marks a user-declared repository interface;
	// discovery registers a proxy delegating to the matching facade.
	RoleInterface Role = "interface"

	// RoleNone marks a candidate that is neither; it is skipped.
	RoleNone Role = "none"
)

// FacadeDeps carries the collaborators a facade needs at build time.
type FacadeDeps struct {
	Sequences *sequence.Registry
	Tx        TxManager
}

// Candidate is one unit of discovery input, supplied by the external
// scanner. Access-object candidates carry the configured instance and a
// build function that instantiates the facade with its type parameters
// bound; interface candidates carry only the type.
type Candidate struct {
	Type     reflect.Type
	Instance any
	Build    func(deps FacadeDeps) any
}

// Interface creates an interface candidate for the user-declared
// repository contract T.
func Interface[T any]() Candidate {
	return Candidate{Type: reflect.TypeOf((*T)(nil)).Elem()}
}
