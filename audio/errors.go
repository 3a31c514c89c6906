// SPDX-License-Identifier: EPL-2.0

package audio

import "errors"

// ErrNoChannels is returned when a source reports zero or negative channels.
var ErrNoChannels = errors.New("source has no channels")
