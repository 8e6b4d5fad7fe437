package keyenvelope

import "github.com/vaultsandbox/keyenvelope/internal/crypto"

// EncodeHex returns the lowercase hex encoding of b. The result is always
// 2*len(b) characters long.
func EncodeHex(b []byte) string {
	return crypto.ToHex(b)
}

// DecodeHex decodes a hex string. Both letter cases are accepted.
// Odd-length input and non-hex digits fail with *FormatError.
func DecodeHex(s string) ([]byte, error) {
	b, err := crypto.FromHex(s)
	if err != nil {
		return nil, wrapFormatError(err)
	}
	return b, nil
}
