// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package plover

import "errors"

// ErrFinalShutdown is returned once the plover has fully shut down
var ErrFinalShutdown = errors.New("plover was shut down")

// ErrShutdown holds any errors that may
// have occurred during shutdown of the plover
type ErrShutdown struct {
	errAPI     error
	errSignal  error
	errMetrics error
}

// HasError returns true if any of the errors are set
func (e ErrShutdown) HasError() bool {
	return e.errAPI != nil || e.errSignal != nil || e.errMetrics != nil
}
