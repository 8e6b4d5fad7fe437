package crypto

import (
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// deriveMessageKeys expands the per-payload key schedule with HKDF-SHA-256.
//
// The wrapping key is used directly as the HKDF pseudorandom key and the
// payload nonce as the info parameter. The 76-byte output is split as:
//   - [0:32]  ChaCha20 key
//   - [32:44] ChaCha20 nonce
//   - [44:76] HMAC-SHA-256 key
func deriveMessageKeys(key, nonce []byte) ([]byte, error) {
	if len(key) == 0 {
		return nil, ErrInvalidKeySize
	}
	if len(nonce) != NonceSize {
		return nil, fmt.Errorf("%w: nonce is %d bytes", ErrInvalidPayload, len(nonce))
	}

	reader := hkdf.Expand(sha256.New, key, nonce)
	keys := make([]byte, messageKeysSize)
	if _, err := io.ReadFull(reader, keys); err != nil {
		return nil, fmt.Errorf("failed to derive message keys: %w", err)
	}
	return keys, nil
}
