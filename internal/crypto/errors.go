package crypto

import "errors"

var (
	// ErrRandomSource is returned when the random source fails or runs dry.
	ErrRandomSource = errors.New("random source unavailable")

	// ErrInvalidKeySize is returned when a wrapping key is empty.
	ErrInvalidKeySize = errors.New("invalid key size")

	// ErrInvalidPrivateKey is returned when a private scalar is not in [1, n-1].
	ErrInvalidPrivateKey = errors.New("invalid private key")

	// ErrInvalidPlaintextSize is returned when a plaintext is empty or
	// larger than MaxPlaintextSize.
	ErrInvalidPlaintextSize = errors.New("invalid plaintext size")

	// ErrUnknownVersion is returned when a payload carries an unsupported
	// version byte or the reserved '#' prefix.
	ErrUnknownVersion = errors.New("unknown payload version")

	// ErrInvalidPayload is returned when the payload structure is invalid.
	// This includes bad base64 and out of range lengths.
	ErrInvalidPayload = errors.New("invalid payload")

	// ErrInvalidMAC is returned when payload authentication fails.
	ErrInvalidMAC = errors.New("invalid MAC")

	// ErrInvalidPadding is returned when the decrypted padding is malformed.
	ErrInvalidPadding = errors.New("invalid padding")

	// ErrInvalidHex is returned for odd-length input or non-hex digits.
	ErrInvalidHex = errors.New("invalid hex")

	// ErrInvalidEntropySize is returned when mnemonic entropy is not a
	// multiple of 32 bits between 128 and 256.
	ErrInvalidEntropySize = errors.New("invalid entropy size")

	// ErrInvalidKDFParams is returned for Argon2id parameters that are zero
	// or a salt of the wrong size.
	ErrInvalidKDFParams = errors.New("invalid kdf parameters")
)
