package wayland

import (
	"encoding/binary"
	"fmt"
)

// Wayland wire values are host-endian; in practice every supported
// target is little-endian and the compositor on the other end of the
// socket agrees.
var order = binary.LittleEndian

// appendUint32 appends a wire uint32 to b.
func appendUint32(b []byte, v uint32) []byte {
	return order.AppendUint32(b, v)
}

// appendString appends a wire string: uint32 length including the NUL
// terminator, the bytes, the NUL, then zero padding to a 4-byte boundary.
func appendString(b []byte, s string) []byte {
	n := len(s) + 1
	b = order.AppendUint32(b, uint32(n))
	b = append(b, s...)
	b = append(b, 0)
	for len(b)%4 != 0 {
		b = append(b, 0)
	}
	return b
}

// parseUint32 consumes a uint32 from p.
func parseUint32(p []byte) (uint32, []byte, error) {
	if len(p) < 4 {
		return 0, p, fmt.Errorf("%w: truncated uint32 argument", ErrProtocol)
	}
	return order.Uint32(p), p[4:], nil
}

// parseString consumes a wire string from p, dropping the NUL terminator
// and alignment padding.
func parseString(p []byte) (string, []byte, error) {
	n, p, err := parseUint32(p)
	if err != nil {
		return "", p, err
	}
	if n == 0 {
		return "", p, nil
	}
	padded := (int(n) + 3) &^ 3
	if int(n) > len(p) || padded > len(p) {
		return "", p, fmt.Errorf("%w: truncated string argument", ErrProtocol)
	}
	return string(p[:n-1]), p[padded:], nil
}
