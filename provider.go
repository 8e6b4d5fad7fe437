package keyenvelope

import (
	"io"

	"github.com/vaultsandbox/keyenvelope/internal/crypto"
)

// Provider supplies the cryptographic primitives the engine is built on.
//
// The engine treats ciphertexts as opaque strings and any error from Decrypt
// as an authentication failure. Implementations must be safe for concurrent
// use. Byte slices returned by RandomBytes and Decrypt are owned by the engine,
// which wipes them once used.
type Provider interface {
	// RandomBytes returns n cryptographically secure random bytes.
	RandomBytes(n int) ([]byte, error)
	// DerivePublicKey returns the public key for a private scalar. It fails
	// for scalars that are not valid private keys.
	DerivePublicKey(privateKey []byte) ([]byte, error)
	// Encrypt protects plaintext under key with authenticated encryption.
	Encrypt(plaintext, key []byte) (string, error)
	// Decrypt reverses Encrypt and fails if authentication fails.
	Decrypt(ciphertext string, key []byte) ([]byte, error)
	// GenerateMnemonic returns a recovery phrase carrying entropyBits of entropy.
	GenerateMnemonic(entropyBits int) (string, error)
	// Digest returns a 256-bit digest of data.
	Digest(data []byte) ([]byte, error)
}

// DefaultProvider implements Provider with secp256k1, NIP-44 version 2
// payloads, English BIP-39 mnemonics and SHA-256.
type DefaultProvider struct {
	rand io.Reader
}

// NewDefaultProvider returns the default provider. Randomness is read from
// rand, or from crypto/rand when rand is nil. The provider is only safe for
// concurrent use if rand is.
func NewDefaultProvider(rand io.Reader) *DefaultProvider {
	return &DefaultProvider{rand: rand}
}

// RandomBytes implements Provider.
func (p *DefaultProvider) RandomBytes(n int) ([]byte, error) {
	return crypto.RandomBytes(p.rand, n)
}

// DerivePublicKey implements Provider. The result is a 33-byte compressed
// secp256k1 point.
func (p *DefaultProvider) DerivePublicKey(privateKey []byte) ([]byte, error) {
	return crypto.PublicKeyFromPrivate(privateKey)
}

// Encrypt implements Provider. The result is a base64 NIP-44 v2 payload.
func (p *DefaultProvider) Encrypt(plaintext, key []byte) (string, error) {
	return crypto.Encrypt(plaintext, key, p.rand)
}

// Decrypt implements Provider.
func (p *DefaultProvider) Decrypt(ciphertext string, key []byte) ([]byte, error) {
	return crypto.Decrypt(ciphertext, key)
}

// GenerateMnemonic implements Provider.
func (p *DefaultProvider) GenerateMnemonic(entropyBits int) (string, error) {
	return crypto.GenerateMnemonic(p.rand, entropyBits)
}

// Digest implements Provider.
func (p *DefaultProvider) Digest(data []byte) ([]byte, error) {
	return crypto.Digest(data), nil
}

var _ Provider = (*DefaultProvider)(nil)
