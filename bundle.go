package keyenvelope

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/vaultsandbox/keyenvelope/internal/crypto"
)

// BundleVersion is the current key bundle format version.
const BundleVersion = 1

// KeyBundle is the at-rest form of an identity. It holds no plaintext secret:
// the public key is not secret and every other field is ciphertext.
//
// ProtectedSymmetricKey is wrapped under the master key. ProtectedPrivateKey
// and ProtectedMnemonic are wrapped under the symmetric key, so master key
// rotation only ever replaces ProtectedSymmetricKey.
type KeyBundle struct {
	// Version is the bundle format version. MUST be 1.
	Version int `json:"version"`
	// PublicKey is the hex encoded 33-byte compressed secp256k1 public key.
	PublicKey string `json:"publicKey"`
	// ProtectedPrivateKey is the private key wrapped under the symmetric key.
	ProtectedPrivateKey string `json:"protectedPrivateKey"`
	// ProtectedSymmetricKey is the symmetric key wrapped under the master key.
	ProtectedSymmetricKey string `json:"protectedSymmetricKey"`
	// ProtectedMnemonic is the recovery phrase wrapped under the symmetric
	// key. Nil when the identity has no mnemonic.
	ProtectedMnemonic *string `json:"protectedMnemonic,omitempty"`
}

// Validate checks the shape of the bundle. It does not decrypt anything.
func (b *KeyBundle) Validate() error {
	var problems []string

	if b.Version != BundleVersion {
		problems = append(problems, fmt.Sprintf("unsupported version %d, expected %d", b.Version, BundleVersion))
	}

	if b.PublicKey == "" {
		problems = append(problems, "publicKey is required")
	} else if pub, err := crypto.FromHex(b.PublicKey); err != nil {
		problems = append(problems, "publicKey is not valid hex")
	} else if !crypto.ValidatePublicKey(pub) {
		problems = append(problems, fmt.Sprintf("publicKey is not a %d-byte compressed secp256k1 point", crypto.PublicKeySize))
	}

	if b.ProtectedPrivateKey == "" {
		problems = append(problems, "protectedPrivateKey is required")
	}
	if b.ProtectedSymmetricKey == "" {
		problems = append(problems, "protectedSymmetricKey is required")
	}
	if b.ProtectedMnemonic != nil && *b.ProtectedMnemonic == "" {
		problems = append(problems, "protectedMnemonic must be omitted rather than empty")
	}

	if len(problems) > 0 {
		return &BundleError{Errors: problems}
	}
	return nil
}

// HasMnemonic reports whether the bundle carries a protected mnemonic.
func (b *KeyBundle) HasMnemonic() bool {
	return b.ProtectedMnemonic != nil
}

// Clone returns a deep copy of the bundle.
func (b *KeyBundle) Clone() *KeyBundle {
	out := *b
	if b.ProtectedMnemonic != nil {
		m := *b.ProtectedMnemonic
		out.ProtectedMnemonic = &m
	}
	return &out
}

// ParseKeyBundle decodes and validates a JSON key bundle. Unknown fields are
// rejected.
func ParseKeyBundle(data []byte) (*KeyBundle, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var bundle KeyBundle
	if err := dec.Decode(&bundle); err != nil {
		return nil, &BundleError{Errors: []string{fmt.Sprintf("decode: %v", err)}}
	}
	if dec.More() {
		return nil, &BundleError{Errors: []string{"trailing data after bundle"}}
	}
	if err := bundle.Validate(); err != nil {
		return nil, err
	}
	return &bundle, nil
}

// CreatedBundle is the result of CreateBundle. Mnemonic is for one-time
// display and must be destroyed by the caller.
type CreatedBundle struct {
	Bundle   *KeyBundle
	Mnemonic *Mnemonic
}

// CreateBundle creates a complete identity under mk: symmetric key, key pair
// and recovery mnemonic.
func (e *Engine) CreateBundle(mk *MasterKey) (*CreatedBundle, error) {
	sk, protectedSK, err := e.CreateProtectedSymmetricKey(mk)
	if err != nil {
		return nil, err
	}
	defer sk.Destroy()

	identity, err := e.GenerateIdentity(sk)
	if err != nil {
		return nil, err
	}

	generated, err := e.GenerateMnemonic(sk)
	if err != nil {
		return nil, err
	}

	return &CreatedBundle{
		Bundle: &KeyBundle{
			Version:               BundleVersion,
			PublicKey:             identity.PublicKey,
			ProtectedPrivateKey:   identity.ProtectedPrivateKey,
			ProtectedSymmetricKey: protectedSK,
			ProtectedMnemonic:     &generated.ProtectedMnemonic,
		},
		Mnemonic: generated.Mnemonic,
	}, nil
}

// RotateBundle returns a copy of bundle whose symmetric key is protected under
// newMK instead of oldMK. The input bundle is not modified.
func (e *Engine) RotateBundle(bundle *KeyBundle, oldMK, newMK *MasterKey) (*KeyBundle, error) {
	if bundle == nil {
		return nil, &BundleError{Errors: []string{"bundle is nil"}}
	}
	if err := bundle.Validate(); err != nil {
		return nil, err
	}

	sk, err := e.UnwrapSymmetricKey(bundle, oldMK)
	if err != nil {
		return nil, err
	}
	defer sk.Destroy()

	protected, err := e.RotateMasterKey(sk, newMK)
	if err != nil {
		return nil, err
	}

	rotated := bundle.Clone()
	rotated.ProtectedSymmetricKey = protected
	return rotated, nil
}

// UnwrapPrivateKey recovers the plaintext private key from bundle.
func (e *Engine) UnwrapPrivateKey(bundle *KeyBundle, sk *SymmetricKey) (*PrivateKey, error) {
	if bundle == nil {
		return nil, &BundleError{Errors: []string{"bundle is nil"}}
	}
	key, err := sk.wrappingKey()
	if err != nil {
		return nil, err
	}
	defer key.Destroy()

	fail := &DecryptionError{Target: "private key"}
	if bundle.ProtectedPrivateKey == "" {
		return nil, fail
	}

	plaintext, err := e.provider.Decrypt(bundle.ProtectedPrivateKey, key.Bytes())
	if err != nil {
		return nil, fail
	}
	defer crypto.Wipe(plaintext)

	if len(plaintext) != 2*crypto.PrivateKeySize || !crypto.IsLowerHex(plaintext) {
		return nil, fail
	}
	raw := make([]byte, crypto.PrivateKeySize)
	if err := crypto.DecodeHexInto(raw, plaintext); err != nil {
		crypto.Wipe(raw)
		return nil, fail
	}
	return &PrivateKey{secret: newSecret(raw)}, nil
}

// UnwrapMnemonic recovers the plaintext recovery phrase from bundle.
// It returns ErrNoMnemonic when the bundle has none.
func (e *Engine) UnwrapMnemonic(bundle *KeyBundle, sk *SymmetricKey) (*Mnemonic, error) {
	if bundle == nil {
		return nil, &BundleError{Errors: []string{"bundle is nil"}}
	}
	if bundle.ProtectedMnemonic == nil {
		return nil, ErrNoMnemonic
	}
	key, err := sk.wrappingKey()
	if err != nil {
		return nil, err
	}
	defer key.Destroy()

	plaintext, err := e.provider.Decrypt(*bundle.ProtectedMnemonic, key.Bytes())
	if err != nil {
		return nil, &DecryptionError{Target: "mnemonic"}
	}
	return &Mnemonic{secret: newSecret(plaintext)}, nil
}

// VerifyBundle checks that the bundle's public key is derived from its
// protected private key.
func (e *Engine) VerifyBundle(bundle *KeyBundle, sk *SymmetricKey) error {
	priv, err := e.UnwrapPrivateKey(bundle, sk)
	if err != nil {
		return err
	}
	defer priv.Destroy()

	pub, err := e.provider.DerivePublicKey(priv.Bytes())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPublicKeyMismatch, err)
	}
	if crypto.ToHex(pub) != strings.ToLower(bundle.PublicKey) {
		return ErrPublicKeyMismatch
	}
	return nil
}
