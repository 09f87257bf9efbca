package embcache

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// Entry layout: version byte, uint32 dimension, then little-endian float32 values.
const (
	codecVersion = 1
	headerSize   = 5
)

var errCorruptEntry = errors.New("corrupt embedding cache entry")

func encodeVector(v []float32) []byte {
	buf := make([]byte, headerSize+len(v)*4)
	buf[0] = codecVersion
	binary.LittleEndian.PutUint32(buf[1:headerSize], uint32(len(v))) //nolint:gosec // vector sizes are far below 2^32
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[headerSize+i*4:], math.Float32bits(f))
	}
	return buf
}

// decodeVector rejects entries written by another codec version or truncated in the store.
func decodeVector(data []byte) ([]float32, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("%w: %d bytes", errCorruptEntry, len(data))
	}
	if data[0] != codecVersion {
		return nil, fmt.Errorf("%w: codec version %d", errCorruptEntry, data[0])
	}
	dims := int(binary.LittleEndian.Uint32(data[1:headerSize]))
	if len(data)-headerSize != dims*4 {
		return nil, fmt.Errorf("%w: header says %d dims, payload has %d bytes",
			errCorruptEntry, dims, len(data)-headerSize)
	}

	vec := make([]float32, dims)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[headerSize+i*4:]))
	}
	return vec, nil
}
