// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"path"
	"strings"
)

// Format is the container/codec family of a source file, derived purely from
// its extension.
type Format int

const (
	FormatUnsupported Format = iota
	FormatWAV
	FormatAIFF
	FormatMP3
	FormatAAC
	FormatM4A
	FormatOgg
)

var formatNames = [...]string{
	FormatUnsupported: "unsupported",
	FormatWAV:         "wav",
	FormatAIFF:        "aiff",
	FormatMP3:         "mp3",
	FormatAAC:         "aac",
	FormatM4A:         "m4a",
	FormatOgg:         "ogg",
}

func (f Format) String() string {
	if f < 0 || int(f) >= len(formatNames) {
		return formatNames[FormatUnsupported]
	}
	return formatNames[f]
}

// Codec identifies the decoder pool a format borrows from.
type Codec int

const (
	// CodecNone marks raw PCM formats that are read without a pooled decoder.
	CodecNone Codec = iota
	CodecMP3
	CodecAAC
	CodecVorbis
)

func (c Codec) String() string {
	switch c {
	case CodecMP3:
		return "mp3"
	case CodecAAC:
		return "aac"
	case CodecVorbis:
		return "vorbis"
	default:
		return "none"
	}
}

// Codec returns the decoder family required by f.
// M4A shares the AAC pool: the container only wraps AAC frames.
func (f Format) Codec() Codec {
	switch f {
	case FormatMP3:
		return CodecMP3
	case FormatAAC, FormatM4A:
		return CodecAAC
	case FormatOgg:
		return CodecVorbis
	default:
		return CodecNone
	}
}

// IsRaw reports whether f carries uncompressed PCM.
func (f Format) IsRaw() bool {
	return f == FormatWAV || f == FormatAIFF
}

// IsContainer reports whether f needs container discovery before decoding.
func (f Format) IsContainer() bool {
	return f == FormatM4A
}

// Classify maps a file name to its Format by extension, case-insensitively.
func Classify(name string) Format {
	switch strings.ToLower(path.Ext(name)) {
	case ".wav":
		return FormatWAV
	case ".aif", ".aiff":
		return FormatAIFF
	case ".mp3":
		return FormatMP3
	case ".aac":
		return FormatAAC
	case ".m4a", ".mp4":
		return FormatM4A
	case ".ogg":
		return FormatOgg
	default:
		return FormatUnsupported
	}
}
