// SPDX-License-Identifier: EPL-2.0

package mp4

import "errors"

var (
	ErrCorrupt         = errors.New("corrupt mp4 box structure")
	ErrNoMovie         = errors.New("no moov box found")
	ErrNoAudioTrack    = errors.New("no playable AAC audio track")
	ErrFrameTooLarge   = errors.New("frame exceeds buffer")
	ErrChunkOutOfRange = errors.New("chunk index beyond chunk offset table")
)
