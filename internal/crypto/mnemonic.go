package crypto

import (
	"fmt"
	"io"
	"strings"

	"github.com/tyler-smith/go-bip39"
)

// GenerateMnemonic returns a new English BIP-39 phrase carrying bits of
// entropy read from r (crypto/rand when nil).
func GenerateMnemonic(r io.Reader, bits int) (string, error) {
	if bits < 128 || bits > 256 || bits%32 != 0 {
		return "", fmt.Errorf("%w: %d bits", ErrInvalidEntropySize, bits)
	}
	entropy := make([]byte, bits/8)
	defer Wipe(entropy)
	if err := readRandom(r, entropy); err != nil {
		return "", err
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidEntropySize, err)
	}
	return mnemonic, nil
}

// ValidateMnemonic reports whether mnemonic is a valid English BIP-39 phrase
// (word list membership and checksum). Surrounding whitespace is ignored.
func ValidateMnemonic(mnemonic string) bool {
	return bip39.IsMnemonicValid(strings.TrimSpace(mnemonic))
}
