// Package options implements generic functional options for encoder and
// decoder configuration.
package options

import "fmt"

// Option configures a target of type T.
type Option[T any] interface {
	apply(T) error
}

// Func is a named functional option. The name prefixes any error the option
// returns, so a rejected value points back at the option that set it.
type Func[T any] struct {
	name      string
	applyFunc func(T) error
}

// apply implements the Option interface.
func (f *Func[T]) apply(target T) error {
	if err := f.applyFunc(target); err != nil {
		return fmt.Errorf("%s: %w", f.name, err)
	}

	return nil
}

// Name returns the option name.
func (f *Func[T]) Name() string {
	return f.name
}

// New creates a named option from a function that may reject its value.
func New[T any](name string, fn func(T) error) *Func[T] {
	return &Func[T]{name: name, applyFunc: fn}
}

// NoError creates a named option from a function that cannot fail.
func NoError[T any](name string, fn func(T)) *Func[T] {
	return &Func[T]{
		name: name,
		applyFunc: func(target T) error {
			fn(target)
			return nil
		},
	}
}

// Apply applies opts to target in order and stops at the first error.
// Nil options are skipped.
func Apply[T any](target T, opts ...Option[T]) error {
	for _, opt := range opts {
		if opt == nil {
			continue
		}

		if err := opt.apply(target); err != nil {
			return err
		}
	}

	return nil
}
