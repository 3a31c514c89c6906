// SPDX-License-Identifier: EPL-2.0

// Package utils holds the PCM sample conversions shared by the format
// decoders. Every decoder hands the engine signed 16-bit samples, whatever
// the file stores.
package utils

// Float32ToInt16 converts a float sample in [-1, 1] to int16. Out of range
// input is clamped; the negative side scales by 32768 so -1 maps to
// math.MinInt16.
func Float32ToInt16(x float32) int16 {
	switch {
	case x >= 1:
		return 32767
	case x <= -1:
		return -32768
	case x < 0:
		return int16(x * 32768)
	default:
		return int16(x * 32767)
	}
}

// Float32sToInt16 converts min(len(dst), len(src)) samples and returns the
// count.
func Float32sToInt16(dst []int16, src []float32) int {
	n := min(len(dst), len(src))
	for i := range n {
		dst[i] = Float32ToInt16(src[i])
	}
	return n
}

// IntToInt16 rescales a signed PCM sample of the given bit depth to 16 bits.
// Wider samples are truncated, narrower ones shifted up.
func IntToInt16(v, bitDepth int) int16 {
	switch {
	case bitDepth > 16:
		return int16(v >> (bitDepth - 16))
	case bitDepth < 16 && bitDepth > 0:
		return int16(v << (16 - bitDepth))
	default:
		return int16(v)
	}
}

// Uint8ToInt16 converts unsigned 8-bit PCM (silence at 128) to int16.
func Uint8ToInt16(v int) int16 {
	return int16((v - 128) << 8)
}
