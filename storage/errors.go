// SPDX-License-Identifier: EPL-2.0

package storage

import "errors"

var (
	// ErrNotFound indicates the requested file does not exist on its device
	ErrNotFound = errors.New("file not found")

	// ErrUnknownDevice indicates a device that is not configured
	ErrUnknownDevice = errors.New("storage device not available")
)
