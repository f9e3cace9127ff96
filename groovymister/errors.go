/*
NAME
  errors.go

DESCRIPTION
  errors.go defines the sentinel errors for the null-handle, argument and
  state (closed) error kinds. Transport failures have no sentinel of their
  own: they surface as the underlying OS error wrapped with context via
  github.com/pkg/errors. Every recoverable condition is returned as an
  error; nothing panics or otherwise crosses the API boundary uncaught.

LICENSE
  Copyright (C) 2026 the groovymister authors.

  This source code is licensed under the MIT license found in the
  LICENSE file in the root directory of this source tree.
*/

package groovymister

import "github.com/pkg/errors"

// Sentinel errors. Use errors.Is to test for a particular kind; wrapped
// context can still be unwrapped or inspected with errors.Cause.
var (
	// ErrNullHandle is returned by operations on a nil Connection/
	// InputHandle (one that was never connected). A disconnected Connection
	// returns ErrClosed instead.
	ErrNullHandle = errors.New("groovymister: null handle")

	// ErrArgument covers an empty buffer, a non-increasing frame number, a
	// command header that cannot fit the configured MTU, or a Modeline
	// failing validation.
	ErrArgument = errors.New("groovymister: invalid argument")

	// ErrClosed is returned by any operation attempted after Disconnect.
	ErrClosed = errors.New("groovymister: connection closed")
)
