// SPDX-License-Identifier: EPL-2.0

package engine

import "errors"

var (
	// ErrSlotOutOfRange is returned for a slot index outside [0, Slots()).
	ErrSlotOutOfRange = errors.New("slot index out of range")

	// ErrUnsupportedFormat is returned when a file extension maps to no decoder.
	ErrUnsupportedFormat = errors.New("unsupported audio format")

	// ErrNoDecoder is returned when every decoder of the required pool is busy.
	ErrNoDecoder = errors.New("no free decoder")

	// ErrTooManyChannels is returned for a decoded stream that is neither
	// mono nor stereo after down-mixing.
	ErrTooManyChannels = errors.New("stream has unsupported channel count")
)
