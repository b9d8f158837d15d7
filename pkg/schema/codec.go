package schema

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"math"
)

// Packed buffers travel as base64-wrapped little-endian bytes so
// renderers can upload them straight to the GPU instead of
// decoding per-element JSON.

// EncodeColors wraps a flat RGBA byte buffer, 4 bytes per entity
func EncodeColors(buf []byte) string {
	return base64.StdEncoding.EncodeToString(buf)
}

// DecodeColors unpacks a color buffer and checks it holds exactly
// count RGBA quads. A negative count skips the length check.
func DecodeColors(s string, count int) ([]byte, error) {
	buf, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("failed to decode color buffer: %w", err)
	}
	if len(buf)%4 != 0 {
		return nil, fmt.Errorf("color buffer length %d is not a multiple of 4", len(buf))
	}
	if count >= 0 && len(buf) != count*4 {
		return nil, fmt.Errorf("color buffer holds %d entities, expected %d", len(buf)/4, count)
	}
	return buf, nil
}

// EncodeFloat32s packs float32 values little-endian
func EncodeFloat32s(vals []float32) string {
	buf := make([]byte, 4*len(vals))
	for i, v := range vals {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return base64.StdEncoding.EncodeToString(buf)
}

// DecodeFloat32s unpacks a little-endian float32 buffer
func DecodeFloat32s(s string) ([]float32, error) {
	buf, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("failed to decode float buffer: %w", err)
	}
	if len(buf)%4 != 0 {
		return nil, fmt.Errorf("float buffer length %d is not a multiple of 4", len(buf))
	}
	vals := make([]float32, len(buf)/4)
	for i := range vals {
		vals[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return vals, nil
}
