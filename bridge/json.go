package bridge

import (
	"fmt"

	"github.com/goccy/go-json"
)

// JSONFormat encodes frames as plain JSON, with no length prefix — meant
// for hosts that already frame messages themselves (a WebSocket message,
// an HTTP body) rather than reading a raw byte stream.
type JSONFormat struct{}

// Encode JSON-serializes v.
func (JSONFormat) Encode(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("bridge: json encode: %w", err)
	}
	return b, nil
}

// Decode JSON-deserializes payload into v.
func (JSONFormat) Decode(payload []byte, v any) error {
	if err := json.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("bridge: json decode: %w", err)
	}
	return nil
}
