package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"io"
	"math/bits"

	"golang.org/x/crypto/chacha20"
)

// Encrypt encrypts plaintext under key and returns a base64 NIP-44 v2 payload.
// The nonce is read from r (crypto/rand when nil).
func Encrypt(plaintext, key []byte, r io.Reader) (string, error) {
	if len(key) == 0 {
		return "", ErrInvalidKeySize
	}
	nonce := make([]byte, NonceSize)
	if err := readRandom(r, nonce); err != nil {
		return "", err
	}
	return encryptWithNonce(plaintext, key, nonce)
}

func encryptWithNonce(plaintext, key, nonce []byte) (string, error) {
	padded, err := pad(plaintext)
	if err != nil {
		return "", err
	}
	defer Wipe(padded)

	keys, err := deriveMessageKeys(key, nonce)
	if err != nil {
		return "", err
	}
	defer Wipe(keys)

	ciphertext, err := xorStream(keys, padded)
	if err != nil {
		return "", err
	}
	mac := payloadMAC(keys[44:76], nonce, ciphertext)

	out := make([]byte, 0, 1+NonceSize+len(ciphertext)+MACSize)
	out = append(out, PayloadVersion)
	out = append(out, nonce...)
	out = append(out, ciphertext...)
	out = append(out, mac...)
	return base64.StdEncoding.EncodeToString(out), nil
}

// Decrypt authenticates and decrypts a NIP-44 v2 payload with key.
//
// The MAC is checked before decryption. Callers should treat every error
// from this function alike: a wrong key and a tampered payload both surface
// as ErrInvalidMAC.
func Decrypt(payload string, key []byte) ([]byte, error) {
	if len(key) == 0 {
		return nil, ErrInvalidKeySize
	}
	if payload == "" || payload[0] == '#' {
		return nil, ErrUnknownVersion
	}
	if len(payload) < minPayloadSize || len(payload) > maxPayloadSize {
		return nil, fmt.Errorf("%w: payload length %d", ErrInvalidPayload, len(payload))
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if len(data) < minDecodedSize || len(data) > maxDecodedSize {
		return nil, fmt.Errorf("%w: decoded length %d", ErrInvalidPayload, len(data))
	}
	if data[0] != PayloadVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnknownVersion, data[0])
	}

	nonce := data[1 : 1+NonceSize]
	ciphertext := data[1+NonceSize : len(data)-MACSize]
	mac := data[len(data)-MACSize:]

	keys, err := deriveMessageKeys(key, nonce)
	if err != nil {
		return nil, err
	}
	defer Wipe(keys)

	if !hmac.Equal(payloadMAC(keys[44:76], nonce, ciphertext), mac) {
		return nil, ErrInvalidMAC
	}

	padded, err := xorStream(keys, ciphertext)
	if err != nil {
		return nil, err
	}
	defer Wipe(padded)

	return unpad(padded)
}

// CalcPaddedLen returns the padded size for a plaintext of n bytes. Sizes up
// to 32 pad to 32; above that, padding grows in chunks of 32 bytes until 256
// and then in chunks of one eighth of the next power of two.
func CalcPaddedLen(n int) int {
	if n <= 32 {
		return 32
	}
	nextPower := 1 << bits.Len(uint(n-1))
	chunk := 32
	if nextPower > 256 {
		chunk = nextPower / 8
	}
	return chunk * ((n-1)/chunk + 1)
}

func pad(plaintext []byte) ([]byte, error) {
	n := len(plaintext)
	if n < MinPlaintextSize || n > MaxPlaintextSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrInvalidPlaintextSize, n)
	}
	out := make([]byte, 2+CalcPaddedLen(n))
	binary.BigEndian.PutUint16(out, uint16(n))
	copy(out[2:], plaintext)
	return out, nil
}

func unpad(padded []byte) ([]byte, error) {
	if len(padded) < 2 {
		return nil, ErrInvalidPadding
	}
	n := int(binary.BigEndian.Uint16(padded))
	if n == 0 || len(padded) < 2+n || len(padded) != 2+CalcPaddedLen(n) {
		return nil, ErrInvalidPadding
	}
	out := make([]byte, n)
	copy(out, padded[2:2+n])
	return out, nil
}

func xorStream(keys, in []byte) ([]byte, error) {
	stream, err := chacha20.NewUnauthenticatedCipher(keys[0:32], keys[32:44])
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(in))
	stream.XORKeyStream(out, in)
	return out, nil
}

func payloadMAC(hmacKey, nonce, ciphertext []byte) []byte {
	h := hmac.New(sha256.New, hmacKey)
	h.Write(nonce)
	h.Write(ciphertext)
	return h.Sum(nil)
}
