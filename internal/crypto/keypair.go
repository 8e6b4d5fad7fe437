package crypto

import (
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// PublicKeyFromPrivate derives the compressed secp256k1 public key for a
// 32-byte private scalar.
func PublicKeyFromPrivate(privateKey []byte) ([]byte, error) {
	if len(privateKey) != PrivateKeySize {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidPrivateKey, len(privateKey), PrivateKeySize)
	}

	var scalar secp256k1.ModNScalar
	defer scalar.Zero()
	overflow := scalar.SetByteSlice(privateKey)
	if overflow || scalar.IsZero() {
		return nil, fmt.Errorf("%w: scalar out of range", ErrInvalidPrivateKey)
	}

	priv := secp256k1.NewPrivateKey(&scalar)
	defer priv.Zero()

	return priv.PubKey().SerializeCompressed(), nil
}

// ValidatePublicKey reports whether b is a well-formed compressed public key
// on the curve.
func ValidatePublicKey(b []byte) bool {
	if len(b) != PublicKeySize {
		return false
	}
	_, err := secp256k1.ParsePubKey(b)
	return err == nil
}
