// SPDX-License-Identifier: EPL-2.0

package output

import "errors"

var (
	// ErrAlreadyOpen is returned by a second Open: the sound card context
	// can only be created once per process.
	ErrAlreadyOpen = errors.New("audio device already open")

	// ErrClosed is returned when using a device after Close.
	ErrClosed = errors.New("audio device closed")
)
