package crypto

import (
	"encoding/hex"
	"errors"
	"fmt"
)

// ToHex encodes bytes as lowercase hexadecimal.
func ToHex(data []byte) string {
	return hex.EncodeToString(data)
}

// FromHex decodes hexadecimal (either case) to bytes.
func FromHex(s string) ([]byte, error) {
	if len(s)%2 != 0 {
		return nil, fmt.Errorf("%w: odd length %d", ErrInvalidHex, len(s))
	}
	out := make([]byte, len(s)/2)
	if err := DecodeHexInto(out, []byte(s)); err != nil {
		return nil, err
	}
	return out, nil
}

// DecodeHexInto decodes src into dst, which must be exactly len(src)/2 bytes.
// It lets callers decode straight into locked memory.
func DecodeHexInto(dst, src []byte) error {
	if len(src)%2 != 0 {
		return fmt.Errorf("%w: odd length %d", ErrInvalidHex, len(src))
	}
	if len(dst) != len(src)/2 {
		return fmt.Errorf("%w: destination is %d bytes, need %d", ErrInvalidHex, len(dst), len(src)/2)
	}
	if _, err := hex.Decode(dst, src); err != nil {
		var invalid hex.InvalidByteError
		if errors.As(err, &invalid) {
			return fmt.Errorf("%w: non-hex digit %q", ErrInvalidHex, byte(invalid))
		}
		return fmt.Errorf("%w: %v", ErrInvalidHex, err)
	}
	return nil
}

// IsLowerHex reports whether b is a non-empty, even-length string of
// lowercase hex digits.
func IsLowerHex(b []byte) bool {
	if len(b) == 0 || len(b)%2 != 0 {
		return false
	}
	for _, c := range b {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
