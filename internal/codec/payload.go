package codec

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// CommandWidth is the fixed payload width of the SBAS corrections command, in bytes.
const CommandWidth = 4

// ParsePayload decodes a hex payload string.
//
// Accepted forms: "01000100", "0x01000100", "01 00 01 00". The result is
// never padded or truncated; width checking is left to Validate.
func ParsePayload(raw string) ([]byte, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	s = strings.ReplaceAll(s, " ", "")

	if s == "" {
		return nil, &ValidationError{Kind: InvalidPayload, Value: raw, Reason: "empty payload"}
	}
	if len(s)%2 != 0 {
		return nil, &ValidationError{Kind: InvalidPayload, Value: raw, Reason: "odd number of hex digits"}
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, &ValidationError{Kind: InvalidPayload, Value: raw, Reason: err.Error()}
	}
	return b, nil
}

// FormatPayload renders bytes the way the device tool expects them on the
// command line: contiguous upper-case hex.
func FormatPayload(b []byte) string {
	return strings.ToUpper(hex.EncodeToString(b))
}

func lengthWarning(b []byte) Warning {
	return Warning{
		Kind:    PayloadLengthMismatch,
		Message: fmt.Sprintf("payload is %d bytes (expected %d)", len(b), CommandWidth),
	}
}
