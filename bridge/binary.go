package bridge

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

// MaxFrameSize bounds a single encoded frame, length prefix included:
// Encode refuses to produce a larger frame. Decode does not check it; it
// only requires the declared length to fit in the bytes it was given.
const MaxFrameSize = 16 * 1024 * 1024

// LengthPrefixSize is the width of the frame length prefix in bytes.
const LengthPrefixSize = 4

// BinaryFormat is a length-prefixed msgpack wire format: a 4-byte
// little-endian length prefix followed by a msgpack-encoded payload, the
// same framing a pipe-connected shell process would read one frame at a
// time.
type BinaryFormat struct{}

// Encode msgpack-serializes v and prefixes it with its length.
func (BinaryFormat) Encode(v any) ([]byte, error) {
	payload, err := msgpack.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("bridge: binary encode: %w", err)
	}
	if LengthPrefixSize+len(payload) > MaxFrameSize {
		return nil, fmt.Errorf("bridge: binary encode: frame of %d bytes exceeds %d byte limit", len(payload), MaxFrameSize)
	}
	buf := make([]byte, LengthPrefixSize+len(payload))
	binary.LittleEndian.PutUint32(buf[:LengthPrefixSize], uint32(len(payload)))
	copy(buf[LengthPrefixSize:], payload)
	return buf, nil
}

// Decode reads one length-prefixed frame from the front of payload and
// msgpack-decodes it into v.
func (BinaryFormat) Decode(payload []byte, v any) error {
	if len(payload) < LengthPrefixSize {
		return fmt.Errorf("bridge: binary decode: %w", io.ErrUnexpectedEOF)
	}
	n := binary.LittleEndian.Uint32(payload[:LengthPrefixSize])
	body := payload[LengthPrefixSize:]
	if uint32(len(body)) < n {
		return fmt.Errorf("bridge: binary decode: frame declares %d bytes, got %d: %w", n, len(body), io.ErrUnexpectedEOF)
	}
	if err := msgpack.Unmarshal(body[:n], v); err != nil {
		return fmt.Errorf("bridge: binary decode: %w", err)
	}
	return nil
}
