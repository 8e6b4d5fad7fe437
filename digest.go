package keyenvelope

import (
	"context"
	"fmt"

	"github.com/vaultsandbox/keyenvelope/internal/crypto"
)

// Hash is a 256-bit message digest.
type Hash [crypto.DigestSize]byte

// String returns the lowercase hex form of the digest.
func (h Hash) String() string {
	return crypto.ToHex(h[:])
}

// Digest hashes the UTF-8 bytes of message with the provider's digest.
// It involves no key material. If ctx is already done, ctx.Err() is
// returned and nothing is computed.
func (e *Engine) Digest(ctx context.Context, message string) (Hash, error) {
	var h Hash
	if err := ctx.Err(); err != nil {
		return h, err
	}

	sum, err := e.provider.Digest([]byte(message))
	if err != nil {
		return h, fmt.Errorf("digest: %w", err)
	}
	if len(sum) != len(h) {
		return h, fmt.Errorf("digest: provider returned %d bytes, want %d", len(sum), len(h))
	}
	copy(h[:], sum)
	return h, nil
}
