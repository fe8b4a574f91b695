// Package sequence provides named, typed providers of monotonically
// advancing identifier values, and the registry facades resolve them
// through.
package sequence

import (
	"reflect"
	"sync"
	"sync/atomic"

	"golang.org/x/exp/constraints"

	"github.com/repobind/repobind/pkg/errors"
)

// Sequence is a stateful provider of monotonically advancing values of a
// fixed type. Next must be safe under concurrent invocation: no duplicate
// and no skipped values.
type Sequence interface {
	// Next returns the next value. The dynamic type of the returned
	// value is always ValueType.
	Next() (any, error)

	// ValueType is the fixed type of the values this sequence issues.
	ValueType() reflect.Type
}

// Key identifies a registered sequence: the identifier type it issues
// plus its configured name.
type Key struct {
	IDType reflect.Type
	Name   string
}

// Registry resolves (idType, name) pairs to sequences. It is populated
// once at configuration time; resolution is safe for concurrent use.
type Registry struct {
	mu   sync.RWMutex
	seqs map[Key]Sequence
}

// NewRegistry creates an empty sequence registry.
func NewRegistry() *Registry {
	return &Registry{seqs: make(map[Key]Sequence)}
}

// Register adds a sequence under name, keyed by its value type. A second
// registration under the same key is rejected.
func (r *Registry) Register(name string, seq Sequence) error {
	if name == "" {
		return errors.New(errors.ErrInvalidInput, "sequence name cannot be empty")
	}
	if seq == nil || seq.ValueType() == nil {
		return errors.New(errors.ErrInvalidInput, "sequence must report a value type")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := Key{IDType: seq.ValueType(), Name: name}
	if _, exists := r.seqs[key]; exists {
		return errors.Newf(errors.ErrAlreadyExists, "sequence '%s' for %s is already registered", name, key.IDType)
	}

	r.seqs[key] = seq
	return nil
}

// RegisterAll adds every sequence in the map under its key, stopping at
// the first failure. This is the configuration-time bulk input.
func (r *Registry) RegisterAll(seqs map[string]Sequence) error {
	for name, seq := range seqs {
		if err := r.Register(name, seq); err != nil {
			return err
		}
	}
	return nil
}

// Resolve returns the sequence registered under (idType, name). A missing
// sequence is a configuration fault surfaced as ErrSequenceNotConfigured,
// never a silent default.
func (r *Registry) Resolve(idType reflect.Type, name string) (Sequence, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seq, exists := r.seqs[Key{IDType: idType, Name: name}]
	if !exists {
		return nil, errors.Newf(errors.ErrSequenceNotConfigured, "no sequence '%s' configured for identifier type %s", name, idType).
			WithDetail("name", name).
			WithDetail("idType", typeString(idType))
	}
	return seq, nil
}

// Count returns the number of registered sequences.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.seqs)
}

func typeString(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}

// Counter is an atomically incremented Sequence of integer values,
// starting at a configured value.
type Counter[N constraints.Integer] struct {
	next atomic.Int64
}

// NewCounter creates a counter whose first issued value is start.
func NewCounter[N constraints.Integer](start N) *Counter[N] {
	c := &Counter[N]{}
	c.next.Store(int64(start))
	return c
}

// Next implements Sequence. Values are strictly increasing with no
// duplicates under concurrent callers.
func (c *Counter[N]) Next() (any, error) {
	return N(c.next.Add(1) - 1), nil
}

// ValueType implements Sequence.
func (c *Counter[N]) ValueType() reflect.Type {
	return reflect.TypeOf((*N)(nil)).Elem()
}
