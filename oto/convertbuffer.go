package oto

import "math"

// FloatBufferTo16BitLE converts a []float32 buffer to 16-bit little-endian
// samples, appending to recycledBuf to avoid reallocations.
func FloatBufferTo16BitLE(floatBuffer []float32, recycledBuf []byte) []byte {
	for _, v := range floatBuffer {
		var uv int16
		if v < -1.0 {
			uv = -math.MaxInt16
		} else if v > 1.0 {
			uv = math.MaxInt16
		} else {
			uv = int16(v * math.MaxInt16)
		}
		recycledBuf = append(recycledBuf, byte(uv), byte(uv>>8))
	}
	return recycledBuf
}
