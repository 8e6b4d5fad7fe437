// Package crypto provides the default primitive suite used by keyenvelope.
// The envelope engine never calls these functions directly; it reaches them
// through the Provider interface so that hosts can substitute their own
// primitives.
//
// # Algorithm Suite
//
//   - secp256k1: private keys are uniformly random scalars in [1, n-1].
//     Public keys are serialized in 33-byte compressed SEC1 form.
//
//   - NIP-44 version 2: authenticated payload encryption. Message keys are
//     expanded with HKDF-SHA-256 from the wrapping key and a random 32-byte
//     nonce, the padded plaintext is encrypted with ChaCha20 and the
//     nonce || ciphertext pair is authenticated with HMAC-SHA-256. Payloads
//     are version-prefixed and standard base64 encoded.
//
//   - BIP-39: English recovery phrases from 128 to 256 bits of entropy.
//
//   - SHA-256: message digests.
//
//   - Argon2id: passphrase to master key derivation.
//
// # Payload Format
//
// A decoded NIP-44 payload is laid out as:
//
//	version (1 byte, 0x02) || nonce (32 bytes) || ciphertext || mac (32 bytes)
//
// The ciphertext covers a 2-byte big-endian length prefix, the plaintext and
// zero padding up to [CalcPaddedLen]. Plaintexts must be between 1 and 65535
// bytes. The MAC is verified in constant time before anything is decrypted.
//
// # Key Material
//
// Functions that derive intermediate key material wipe it before returning.
// Returned plaintexts are fresh slices owned by the caller, who is expected to
// move them into locked memory or wipe them once used.
package crypto
