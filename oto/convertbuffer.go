package oto

import "math"

// FloatBufferTo16BitLE converts a float32 buffer to 16-bit little-endian
// bytes, appending to out so the caller can reuse its backing array.
func FloatBufferTo16BitLE(buff []float32, out []byte) []byte {
	for _, v := range buff {
		var uv int16
		if v < -1.0 {
			uv = -math.MaxInt16
		} else if v > 1.0 {
			uv = math.MaxInt16
		} else {
			uv = int16(v * math.MaxInt16)
		}
		out = append(out, byte(uv), byte(uv>>8))
	}
	return out
}
