package registry

import "github.com/repobind/repobind/pkg/errors"

// Beans is the untyped bean registry discovery publishes into. It is the
// narrow view of the hosting container this subsystem depends on.
type Beans = Registry[any]

// NewBeans creates an empty bean registry.
func NewBeans() Beans {
	return New[any]()
}

// Lookup retrieves a bean by name and asserts it to T.
// Returns ErrNotFound when the name is absent and ErrInternal when the
// bean is present but of an unexpected type.
func Lookup[T any](beans Beans, name string) (T, error) {
	var zero T

	item, err := beans.Get(name)
	if err != nil {
		return zero, err
	}

	typed, ok := item.(T)
	if !ok {
		return zero, errors.Newf(errors.ErrInternal, "binding '%s' has unexpected type %T", name, item)
	}
	return typed, nil
}
