package keyenvelope

import (
	"crypto/rand"
	"errors"
	"strings"
	"testing"
)

var errFake = errors.New("fake provider failure")

// failingReader always fails, standing in for an unavailable random source.
type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("entropy pool closed")
}

// constReader yields an endless stream of one byte value.
type constReader byte

func (c constReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = byte(c)
	}
	return len(p), nil
}

// sequenceReader serves its chunks in order, one per Read call, and then
// falls back to crypto/rand.
type sequenceReader struct {
	chunks [][]byte
}

func (s *sequenceReader) Read(p []byte) (int, error) {
	if len(s.chunks) == 0 {
		return rand.Read(p)
	}
	n := copy(p, s.chunks[0])
	s.chunks = s.chunks[1:]
	return n, nil
}

// fakeProvider wraps the default provider and injects failures.
type fakeProvider struct {
	*DefaultProvider

	randErr     error
	deriveErr   error
	encryptErr  error
	decryptErr  error
	mnemonicErr error
	digestErr   error

	// decrypted, when set, replaces every successful decryption result.
	decrypted []byte
	// digest, when set, replaces every digest result.
	digest []byte
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{DefaultProvider: NewDefaultProvider(nil)}
}

func (f *fakeProvider) RandomBytes(n int) ([]byte, error) {
	if f.randErr != nil {
		return nil, f.randErr
	}
	return f.DefaultProvider.RandomBytes(n)
}

func (f *fakeProvider) DerivePublicKey(privateKey []byte) ([]byte, error) {
	if f.deriveErr != nil {
		return nil, f.deriveErr
	}
	return f.DefaultProvider.DerivePublicKey(privateKey)
}

func (f *fakeProvider) Encrypt(plaintext, key []byte) (string, error) {
	if f.encryptErr != nil {
		return "", f.encryptErr
	}
	return f.DefaultProvider.Encrypt(plaintext, key)
}

func (f *fakeProvider) Decrypt(ciphertext string, key []byte) ([]byte, error) {
	if f.decryptErr != nil {
		return nil, f.decryptErr
	}
	out, err := f.DefaultProvider.Decrypt(ciphertext, key)
	if err != nil {
		return nil, err
	}
	if f.decrypted != nil {
		return append([]byte(nil), f.decrypted...), nil
	}
	return out, nil
}

func (f *fakeProvider) GenerateMnemonic(entropyBits int) (string, error) {
	if f.mnemonicErr != nil {
		return "", f.mnemonicErr
	}
	return f.DefaultProvider.GenerateMnemonic(entropyBits)
}

func (f *fakeProvider) Digest(data []byte) ([]byte, error) {
	if f.digestErr != nil {
		return nil, f.digestErr
	}
	if f.digest != nil {
		return f.digest, nil
	}
	return f.DefaultProvider.Digest(data)
}

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	e, err := New(opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return e
}

func testMasterKey(t *testing.T, b byte) *MasterKey {
	t.Helper()
	mk, err := MasterKeyFromHex(strings.Repeat(EncodeHex([]byte{b}), 32))
	if err != nil {
		t.Fatalf("MasterKeyFromHex() error = %v", err)
	}
	t.Cleanup(mk.Destroy)
	return mk
}

// newTestBundle creates a complete bundle under mk and returns it together
// with its plaintext symmetric key.
func newTestBundle(t *testing.T, e *Engine, mk *MasterKey) (*KeyBundle, *SymmetricKey) {
	t.Helper()
	created, err := e.CreateBundle(mk)
	if err != nil {
		t.Fatalf("CreateBundle() error = %v", err)
	}
	created.Mnemonic.Destroy()

	sk, err := e.UnwrapSymmetricKey(created.Bundle, mk)
	if err != nil {
		t.Fatalf("UnwrapSymmetricKey() error = %v", err)
	}
	t.Cleanup(sk.Destroy)
	return created.Bundle, sk
}
