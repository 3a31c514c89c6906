// SPDX-License-Identifier: EPL-2.0

package aac

import "errors"

var (
	// ErrNoSync indicates no ADTS sync word was found within the scan limit
	ErrNoSync = errors.New("no ADTS sync word found")

	// ErrShortFrame indicates an ADTS header announcing less than its own length
	ErrShortFrame = errors.New("ADTS frame shorter than its header")

	// ErrFrameTooLarge indicates a frame that does not fit the caller's buffer
	ErrFrameTooLarge = errors.New("ADTS frame exceeds buffer")
)
