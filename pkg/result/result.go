// Package result provides a generic Result type for error handling.
package result

// Result represents either a successful value or an error.
type Result[T any] struct {
	value *T
	err   error
}

// Ok creates a successful Result with the given value.
func Ok[T any](value T) Result[T] {
	return Result[T]{value: &value}
}

// Err creates a failed Result with the given error.
func Err[T any](err error) Result[T] {
	return Result[T]{err: err}
}

// Get returns the value and error as a conventional Go pair.
func (r Result[T]) Get() (T, error) {
	if r.err != nil {
		var zero T
		return zero, r.err
	}
	return *r.value, nil
}
