package crypto

const (
	// PayloadVersion is the NIP-44 payload version produced by Encrypt.
	PayloadVersion = 2

	// NonceSize is the size of the per-payload nonce in bytes.
	NonceSize = 32
	// MACSize is the size of the HMAC-SHA-256 tag in bytes.
	MACSize = 32

	// MinPlaintextSize is the smallest plaintext that can be encrypted.
	MinPlaintextSize = 1
	// MaxPlaintextSize is the largest plaintext that can be encrypted.
	MaxPlaintextSize = 65535

	// Encoded and decoded payload bounds. They follow from the plaintext
	// bounds and the padding scheme.
	minPayloadSize = 132
	maxPayloadSize = 87472
	minDecodedSize = 99
	maxDecodedSize = 65603

	// messageKeysSize is chacha key (32) || chacha nonce (12) || hmac key (32).
	messageKeysSize = 76

	// PrivateKeySize is the size of a secp256k1 private scalar in bytes.
	PrivateKeySize = 32
	// PublicKeySize is the size of a compressed secp256k1 public key in bytes.
	PublicKeySize = 33

	// DigestSize is the size of a SHA-256 digest in bytes.
	DigestSize = 32

	// DefaultMnemonicBits is the entropy used for new recovery phrases.
	DefaultMnemonicBits = 128

	// MasterKeySize is the length of a derived master key in bytes.
	MasterKeySize = 32
	// SaltSize is the length of an Argon2id salt in bytes.
	SaltSize = 16
)

// Argon2id defaults. They match the seed envelope parameters used elsewhere
// for passphrase protected material.
const (
	DefaultKDFTime     = uint32(2)
	DefaultKDFMemoryKB = uint32(64 * 1024)
	DefaultKDFThreads  = uint8(1)
)
