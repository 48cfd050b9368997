package bridge

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type payload struct {
	N int
	S string
}

// Every shipped Format must round-trip a value through Encode/Decode
// unchanged.
func TestFormatsRoundTrip(t *testing.T) {
	formats := map[string]Format{
		"binary": BinaryFormat{},
		"json":   JSONFormat{},
	}
	for name, f := range formats {
		f := f
		t.Run(name, func(t *testing.T) {
			in := payload{N: 7, S: "seven"}
			raw, err := f.Encode(in)
			require.NoError(t, err)

			var out payload
			require.NoError(t, f.Decode(raw, &out))
			require.Equal(t, in, out)
		})
	}
}

// BinaryFormat rejects a frame whose declared length exceeds the bytes
// actually available.
func TestBinaryFormatDecodeRejectsTruncatedFrame(t *testing.T) {
	raw, err := BinaryFormat{}.Encode(payload{N: 1, S: "x"})
	require.NoError(t, err)

	truncated := raw[:len(raw)-1]
	var out payload
	err = BinaryFormat{}.Decode(truncated, &out)
	require.Error(t, err)
}

// BinaryFormat refuses to encode a frame larger than MaxFrameSize.
func TestBinaryFormatEncodeRejectsOversizedFrame(t *testing.T) {
	_, err := BinaryFormat{}.Encode(make([]byte, MaxFrameSize+1))
	require.Error(t, err)
}
