package keyenvelope

import (
	"crypto/subtle"
	"fmt"
	"strings"

	"github.com/awnumar/memguard"

	"github.com/vaultsandbox/keyenvelope/internal/crypto"
)

// SymmetricKeyHexSize is the length of a plaintext symmetric key: 64 random
// bytes, hex encoded.
const SymmetricKeyHexSize = 128

const symmetricKeySize = SymmetricKeyHexSize / 2

// secret is plaintext key material held in locked, non-swappable memory.
// The zero value and a destroyed secret are both unusable.
type secret struct {
	buf *memguard.LockedBuffer
}

// newSecret moves src into locked memory and wipes src.
func newSecret(src []byte) secret {
	buf := memguard.NewBufferFromBytes(src)
	buf.Freeze()
	return secret{buf: buf}
}

// Bytes returns a view of the secret. The slice is only valid until Destroy
// and must not be retained or modified.
func (s *secret) Bytes() []byte {
	if s == nil || s.buf == nil || !s.buf.IsAlive() {
		return nil
	}
	return s.buf.Bytes()
}

// Destroy wipes the secret and releases its memory. It is safe to call more
// than once.
func (s *secret) Destroy() {
	if s != nil && s.buf != nil {
		s.buf.Destroy()
	}
}

// Destroyed reports whether the secret can no longer be used.
func (s *secret) Destroyed() bool {
	return s == nil || s.buf == nil || !s.buf.IsAlive()
}

func (s *secret) view() ([]byte, error) {
	if s.Destroyed() {
		return nil, ErrSecretDestroyed
	}
	return s.buf.Bytes(), nil
}

func (s *secret) equal(other *secret) bool {
	a, b := s.Bytes(), other.Bytes()
	if a == nil || b == nil {
		return false
	}
	return subtle.ConstantTimeCompare(a, b) == 1
}

// MasterKey is the top of the key hierarchy. It only ever wraps the
// symmetric key and is never stored by this package.
type MasterKey struct {
	secret
}

// MasterKeyFromBytes copies key into a new MasterKey. The caller keeps
// ownership of key.
func MasterKeyFromBytes(key []byte) (*MasterKey, error) {
	if len(key) == 0 {
		return nil, fmt.Errorf("%w: master key is empty", ErrInvalidKey)
	}
	dup := make([]byte, len(key))
	copy(dup, key)
	return &MasterKey{secret: newSecret(dup)}, nil
}

// MasterKeyFromHex decodes a hex encoded master key.
func MasterKeyFromHex(s string) (*MasterKey, error) {
	if s == "" {
		return nil, fmt.Errorf("%w: master key is empty", ErrInvalidKey)
	}
	key, err := crypto.FromHex(s)
	if err != nil {
		return nil, wrapFormatError(err)
	}
	return &MasterKey{secret: newSecret(key)}, nil
}

// KDFParams holds Argon2id cost parameters for DeriveMasterKey.
type KDFParams = crypto.KDFParams

// DefaultKDFParams returns the default Argon2id cost parameters.
func DefaultKDFParams() KDFParams {
	return crypto.DefaultKDFParams()
}

// SaltSize is the salt length DeriveMasterKey expects.
const SaltSize = crypto.SaltSize

// GenerateSalt returns a fresh random salt for DeriveMasterKey.
func GenerateSalt() ([]byte, error) {
	salt, err := crypto.RandomBytes(nil, SaltSize)
	if err != nil {
		return nil, generationError("salt", err)
	}
	return salt, nil
}

// DeriveMasterKey stretches a passphrase into a MasterKey with Argon2id.
func DeriveMasterKey(passphrase, salt []byte, params KDFParams) (*MasterKey, error) {
	if len(passphrase) == 0 {
		return nil, fmt.Errorf("%w: passphrase is empty", ErrInvalidKey)
	}
	key, err := crypto.DeriveMasterKey(passphrase, salt, params)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	return &MasterKey{secret: newSecret(key)}, nil
}

// SymmetricKey is the plaintext middle layer of the hierarchy: 128 lowercase
// hex characters. The hex text is what gets protected under a MasterKey;
// its decoded 64 bytes wrap the private key and mnemonic.
type SymmetricKey struct {
	secret
}

// SymmetricKeyFromHex loads a plaintext symmetric key held elsewhere.
// Upper-case digits are accepted and normalized.
func SymmetricKeyFromHex(s string) (*SymmetricKey, error) {
	if len(s) != SymmetricKeyHexSize {
		return nil, fmt.Errorf("%w: symmetric key is %d characters, want %d", ErrInvalidKey, len(s), SymmetricKeyHexSize)
	}
	text := []byte(strings.ToLower(s))
	if !crypto.IsLowerHex(text) {
		crypto.Wipe(text)
		return nil, &FormatError{Err: fmt.Errorf("%w: symmetric key", crypto.ErrInvalidHex)}
	}
	return &SymmetricKey{secret: newSecret(text)}, nil
}

// Equal reports whether both keys hold the same value, in constant time.
func (k *SymmetricKey) Equal(other *SymmetricKey) bool {
	if k == nil || other == nil {
		return false
	}
	return k.equal(&other.secret)
}

// wrappingKey decodes the key into a fresh locked buffer. The caller must
// destroy the buffer.
func (k *SymmetricKey) wrappingKey() (*memguard.LockedBuffer, error) {
	if k == nil {
		return nil, ErrSecretDestroyed
	}
	text, err := k.view()
	if err != nil {
		return nil, err
	}
	buf := memguard.NewBuffer(symmetricKeySize)
	if err := crypto.DecodeHexInto(buf.Bytes(), text); err != nil {
		buf.Destroy()
		return nil, wrapFormatError(err)
	}
	return buf, nil
}

// PrivateKey is a plaintext 32-byte secp256k1 scalar recovered from a bundle.
type PrivateKey struct {
	secret
}

// Mnemonic is a plaintext recovery phrase. Bytes returns the UTF-8 phrase.
type Mnemonic struct {
	secret
}
