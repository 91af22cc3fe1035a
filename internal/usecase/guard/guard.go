// Package guard converts collaborator panics into errors at the call boundary.
package guard

import (
	"fmt"

	"github.com/kailas-cloud/hybridchat/internal/domain"
)

// Call runs fn and returns its result. A panic inside fn is returned as an error
// wrapping domain.ErrPanic.
func Call[T any](fn func() (T, error)) (res T, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			res, err = zero, fmt.Errorf("%w: %v", domain.ErrPanic, r)
		}
	}()
	return fn()
}
