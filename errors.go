package keyenvelope

import (
	"errors"
	"fmt"

	"github.com/vaultsandbox/keyenvelope/internal/crypto"
)

// Sentinel errors for errors.Is() checks
var (
	// ErrKeyGeneration is returned when a key or its protected form cannot be
	// produced, usually because the random source is unavailable.
	ErrKeyGeneration = errors.New("key generation failed")

	// ErrEntropy is returned when a mnemonic cannot be generated or protected.
	ErrEntropy = errors.New("mnemonic entropy unavailable")

	// ErrDecryption is returned when a protected value cannot be unwrapped.
	// A wrong key and a corrupted or tampered ciphertext are reported alike.
	ErrDecryption = errors.New("decryption failed")

	// ErrFormat is returned for malformed hex input.
	ErrFormat = errors.New("malformed input")

	// ErrProtectionFailed is returned when re-wrapping an existing secret fails.
	ErrProtectionFailed = errors.New("protection failed")

	// ErrInvalidBundle is returned when a key bundle does not have the expected shape.
	ErrInvalidBundle = errors.New("invalid key bundle")

	// ErrPublicKeyMismatch is returned when a bundle's public key does not
	// match its protected private key.
	ErrPublicKeyMismatch = errors.New("public key does not match private key")

	// ErrNoMnemonic is returned when a bundle carries no protected mnemonic.
	ErrNoMnemonic = errors.New("bundle has no mnemonic")

	// ErrInvalidKey is returned when caller supplied key material is unusable.
	ErrInvalidKey = errors.New("invalid key material")

	// ErrSecretDestroyed is returned when a destroyed secret is used.
	ErrSecretDestroyed = errors.New("secret has been destroyed")

	// ErrInvalidConfig is returned by New for unusable options.
	ErrInvalidConfig = errors.New("invalid engine configuration")
)

// KeyEnvelopeError is implemented by all typed errors of this package.
type KeyEnvelopeError interface {
	error
	KeyEnvelopeError() // marker method
}

// KeyGenerationError reports a failure while creating new key material.
type KeyGenerationError struct {
	Op  string // "identity", "symmetric key"
	Err error
}

func (e *KeyGenerationError) Error() string {
	return fmt.Sprintf("key generation failed for %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *KeyGenerationError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for sentinel error matching.
func (e *KeyGenerationError) Is(target error) bool {
	return target == ErrKeyGeneration
}

// KeyEnvelopeError implements the KeyEnvelopeError interface.
func (e *KeyGenerationError) KeyEnvelopeError() {}

// EntropyError reports a failure to generate or protect a mnemonic.
type EntropyError struct {
	Err error
}

func (e *EntropyError) Error() string {
	return fmt.Sprintf("mnemonic generation failed: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *EntropyError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for sentinel error matching.
func (e *EntropyError) Is(target error) bool {
	return target == ErrEntropy
}

// KeyEnvelopeError implements the KeyEnvelopeError interface.
func (e *EntropyError) KeyEnvelopeError() {}

// DecryptionError reports that a protected value could not be unwrapped.
//
// It carries no cause. A wrong key produces the same error as a truncated
// payload or a failed authentication tag.
type DecryptionError struct {
	Target string // "symmetric key", "private key", "mnemonic"
}

func (e *DecryptionError) Error() string {
	return fmt.Sprintf("decryption failed: %s", e.Target)
}

// Is implements errors.Is for sentinel error matching.
func (e *DecryptionError) Is(target error) bool {
	return target == ErrDecryption
}

// KeyEnvelopeError implements the KeyEnvelopeError interface.
func (e *DecryptionError) KeyEnvelopeError() {}

// FormatError reports malformed hex input.
type FormatError struct {
	Err error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("format error: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *FormatError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for sentinel error matching.
func (e *FormatError) Is(target error) bool {
	return target == ErrFormat
}

// KeyEnvelopeError implements the KeyEnvelopeError interface.
func (e *FormatError) KeyEnvelopeError() {}

// ProtectionError reports a failure to re-wrap an existing secret.
type ProtectionError struct {
	Target string
	Err    error
}

func (e *ProtectionError) Error() string {
	return fmt.Sprintf("failed to protect %s: %v", e.Target, e.Err)
}

// Unwrap returns the underlying error.
func (e *ProtectionError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for sentinel error matching.
func (e *ProtectionError) Is(target error) bool {
	return target == ErrProtectionFailed
}

// KeyEnvelopeError implements the KeyEnvelopeError interface.
func (e *ProtectionError) KeyEnvelopeError() {}

// BundleError contains every shape violation found in a key bundle.
type BundleError struct {
	Errors []string
}

func (e *BundleError) Error() string {
	return fmt.Sprintf("invalid key bundle: %v", e.Errors)
}

// Is implements errors.Is for sentinel error matching.
func (e *BundleError) Is(target error) bool {
	return target == ErrInvalidBundle
}

// KeyEnvelopeError implements the KeyEnvelopeError interface.
func (e *BundleError) KeyEnvelopeError() {}

// wrapFormatError converts internal hex errors to public errors.
// This ensures that errors.Is() checks work with public sentinel errors.
func wrapFormatError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, crypto.ErrInvalidHex) {
		return &FormatError{Err: err}
	}
	return err
}

// generationError wraps err unless it already reports a destroyed secret,
// which is a caller bug rather than a generation failure.
func generationError(op string, err error) error {
	if errors.Is(err, ErrSecretDestroyed) {
		return err
	}
	return &KeyGenerationError{Op: op, Err: err}
}
