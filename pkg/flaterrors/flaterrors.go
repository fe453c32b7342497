// Package flaterrors joins errors into a single flat chain.
//
// Unlike errors.Join, nested joined errors are expanded in place, so the
// resulting error never contains another joined error. This keeps messages on
// one line and lets errors.Is/errors.As match any sentinel in the chain.
package flaterrors

import "strings"

const separator = ": "

type joinError struct {
	errs []error
}

// Join returns an error wrapping every non-nil error in errs, flattening any
// error that unwraps into multiple errors. It returns nil if all are nil.
func Join(errs ...error) error {
	flat := make([]error, 0, len(errs))
	for _, err := range errs {
		flat = appendFlat(flat, err)
	}

	if len(flat) == 0 {
		return nil
	}

	return &joinError{errs: flat}
}

func appendFlat(dst []error, err error) []error {
	if err == nil {
		return dst
	}

	multi, ok := err.(interface{ Unwrap() []error })
	if !ok {
		return append(dst, err)
	}

	for _, e := range multi.Unwrap() {
		dst = appendFlat(dst, e)
	}

	return dst
}

func (e *joinError) Error() string {
	msgs := make([]string, 0, len(e.errs))
	for _, err := range e.errs {
		msgs = append(msgs, err.Error())
	}

	return strings.Join(msgs, separator)
}

// Unwrap returns the flattened errors.
func (e *joinError) Unwrap() []error {
	return e.errs
}
