// Package proxy binds user-declared repository interfaces to the facade
// serving their underlying access object.
//
// Go has no runtime proxy generation, so the binding is a validated
// handle: the facade structurally implements every interface that embeds
// the repository contract, typed access goes through As, and dynamic
// forwarding goes through Invoke. Either way every call lands on the
// identically named facade method and failures propagate unchanged.
package proxy

import (
	"fmt"
	"reflect"

	"github.com/repobind/repobind/pkg/errors"
	"github.com/repobind/repobind/pkg/introspect"
	"github.com/repobind/repobind/pkg/types"
)

// Handle is the forwarding implementation bound to one interface and one
// facade. Identity is the handle's own: equality is pointer equality on
// the handle, and String composes the interface name with the facade's
// representation.
type Handle struct {
	iface  reflect.Type
	target reflect.Value
	desc   types.Descriptor
}

// Bind validates ifaceType against the repository contract and binds it
// to facade. It fails with ErrInvalidProxyTarget, before any forwarding,
// when ifaceType is not an interface, is the contract itself, does not
// declare the contract, or is not served by facade's method set.
func Bind(ifaceType reflect.Type, facade any) (*Handle, error) {
	if ifaceType == nil || ifaceType.Kind() != reflect.Interface {
		return nil, errors.Newf(errors.ErrInvalidProxyTarget, "proxy target %s is not an interface", typeString(ifaceType))
	}

	if introspect.IsContract(ifaceType) {
		return nil, errors.Newf(errors.ErrInvalidProxyTarget, "proxy target %s is the repository contract itself", ifaceType)
	}

	desc, err := introspect.ResolveInterface(ifaceType)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrInvalidProxyTarget, "proxy target %s does not declare the repository contract", ifaceType)
	}

	if facade == nil {
		return nil, errors.New(errors.ErrInvalidProxyTarget, "proxy facade is nil")
	}

	targetType := reflect.TypeOf(facade)
	if !targetType.Implements(ifaceType) {
		return nil, errors.Newf(errors.ErrInvalidProxyTarget, "facade %s does not serve interface %s", targetType, ifaceType)
	}

	return &Handle{
		iface:  ifaceType,
		target: reflect.ValueOf(facade),
		desc:   desc,
	}, nil
}

// Interface returns the bound interface type.
func (h *Handle) Interface() reflect.Type {
	return h.iface
}

// Descriptor returns the four types resolved from the bound interface.
func (h *Handle) Descriptor() types.Descriptor {
	return h.desc
}

// Target returns the bound facade.
func (h *Handle) Target() any {
	return h.target.Interface()
}

// Invoke forwards a call by name to the identically named method on the
// facade. Argument count or type mismatches fail with a coded error
// before the call. When the method's last return value is a non-nil
// error it is split off and returned unchanged; the remaining values are
// the results.
func (h *Handle) Invoke(method string, args ...any) ([]any, error) {
	m := h.target.MethodByName(method)
	if !m.IsValid() {
		return nil, errors.Newf(errors.ErrNotFound, "facade bound to %s has no method %s", h.iface, method)
	}

	mt := m.Type()
	if len(args) != mt.NumIn() {
		return nil, errors.Newf(errors.ErrInvalidInput, "%s.%s takes %d arguments, got %d", h.iface.Name(), method, mt.NumIn(), len(args))
	}

	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		if arg == nil {
			// typed zero for untyped nil arguments
			in[i] = reflect.Zero(mt.In(i))
			continue
		}
		v := reflect.ValueOf(arg)
		if !v.Type().AssignableTo(mt.In(i)) {
			return nil, errors.Newf(errors.ErrInvalidInput, "%s.%s argument %d is %s, want %s", h.iface.Name(), method, i, v.Type(), mt.In(i))
		}
		in[i] = v
	}

	out := m.Call(in)

	results := make([]any, 0, len(out))
	var callErr error
	for i, v := range out {
		if i == len(out)-1 && mt.Out(i) == errType {
			if !v.IsNil() {
				callErr = v.Interface().(error)
			}
			continue
		}
		results = append(results, v.Interface())
	}
	return results, callErr
}

// String implements fmt.Stringer.
func (h *Handle) String() string {
	return fmt.Sprintf("%s(%v)", h.iface.Name(), h.target.Interface())
}

var errType = reflect.TypeOf((*error)(nil)).Elem()

// As asserts the bound facade to the user-declared contract T. It is the
// typed consumption path for registered proxy bindings.
func As[T any](h *Handle) (T, error) {
	var zero T

	typed, ok := h.target.Interface().(T)
	if !ok {
		return zero, errors.Newf(errors.ErrInvalidProxyTarget, "binding for %s does not serve %s", h.iface, reflect.TypeOf((*T)(nil)).Elem())
	}
	return typed, nil
}

func typeString(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
