// Package sample provides the value served by GET /sample.
//
// The HTTP layer depends only on Sampler; the concrete implementation is
// supplied by the application and its output is passed through unchanged.
package sample

import (
	"context"
	"errors"
)

// ErrSample is wrapped by sampler failures.
var ErrSample = errors.New("sample failed")

// Sampler produces the /sample response value. Strings are served as plain
// text; any other value is encoded as JSON.
type Sampler interface {
	Sample(ctx context.Context) (any, error)
}

// Func adapts an ordinary function to a Sampler.
type Func func(ctx context.Context) (any, error)

// Sample implements Sampler.
func (f Func) Sample(ctx context.Context) (any, error) {
	return f(ctx)
}

// Static always returns the same message.
type Static struct {
	message string
}

// NewStatic returns a Sampler that always yields message.
func NewStatic(message string) *Static {
	return &Static{message: message}
}

// Sample implements Sampler.
func (s *Static) Sample(ctx context.Context) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Join(ErrSample, err)
	}
	return s.message, nil
}
