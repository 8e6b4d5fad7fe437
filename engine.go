package keyenvelope

import (
	"encoding/hex"
	"fmt"

	"github.com/awnumar/memguard"

	"github.com/vaultsandbox/keyenvelope/internal/crypto"
)

// maxKeyAttempts bounds private key sampling. A uniformly random 32-byte
// value is a valid secp256k1 scalar with probability above 1 - 2^-127.
const maxKeyAttempts = 16

// Identity is the public result of GenerateIdentity.
type Identity struct {
	PublicKey           string
	ProtectedPrivateKey string
}

// GeneratedMnemonic is the result of GenerateMnemonic. Mnemonic is meant for
// one-time display and must be destroyed by the caller; only
// ProtectedMnemonic is durable.
type GeneratedMnemonic struct {
	Mnemonic          *Mnemonic
	ProtectedMnemonic string
}

// Engine implements the envelope key hierarchy.
//
// An Engine holds no key material. Every secret is passed in by the caller
// and every intermediate plaintext is destroyed before a method returns.
// An Engine is safe for concurrent use.
type Engine struct {
	provider     Provider
	mnemonicBits int
}

// New creates an Engine. Without options it uses the default provider backed
// by crypto/rand.
func New(opts ...Option) (*Engine, error) {
	cfg := &engineConfig{
		mnemonicBits: DefaultMnemonicStrength,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.providerSet && cfg.provider == nil {
		return nil, fmt.Errorf("%w: provider is nil", ErrInvalidConfig)
	}
	if cfg.mnemonicBits < 128 || cfg.mnemonicBits > 256 || cfg.mnemonicBits%32 != 0 {
		return nil, fmt.Errorf("%w: mnemonic strength %d", ErrInvalidConfig, cfg.mnemonicBits)
	}

	provider := cfg.provider
	if provider == nil {
		provider = NewDefaultProvider(cfg.rand)
	}

	return &Engine{
		provider:     provider,
		mnemonicBits: cfg.mnemonicBits,
	}, nil
}

// GenerateIdentity creates a new key pair and protects the hex encoded
// private key under sk. The plaintext private key never leaves this call.
func (e *Engine) GenerateIdentity(sk *SymmetricKey) (*Identity, error) {
	key, err := sk.wrappingKey()
	if err != nil {
		return nil, err
	}
	defer key.Destroy()

	priv, pub, err := e.newKeyPair()
	if err != nil {
		return nil, generationError("identity", err)
	}
	defer priv.Destroy()

	privHex := memguard.NewBuffer(hex.EncodedLen(priv.Size()))
	defer privHex.Destroy()
	hex.Encode(privHex.Bytes(), priv.Bytes())

	protected, err := e.provider.Encrypt(privHex.Bytes(), key.Bytes())
	if err != nil {
		return nil, generationError("identity", err)
	}

	return &Identity{
		PublicKey:           crypto.ToHex(pub),
		ProtectedPrivateKey: protected,
	}, nil
}

// newKeyPair samples a private scalar until the provider accepts it.
func (e *Engine) newKeyPair() (*memguard.LockedBuffer, []byte, error) {
	var lastErr error
	for attempt := 0; attempt < maxKeyAttempts; attempt++ {
		raw, err := e.provider.RandomBytes(crypto.PrivateKeySize)
		if err != nil {
			return nil, nil, err
		}
		if len(raw) != crypto.PrivateKeySize {
			crypto.Wipe(raw)
			return nil, nil, fmt.Errorf("random source returned %d bytes, want %d", len(raw), crypto.PrivateKeySize)
		}

		pub, err := e.provider.DerivePublicKey(raw)
		if err != nil {
			crypto.Wipe(raw)
			lastErr = err
			continue
		}
		return memguard.NewBufferFromBytes(raw), pub, nil
	}
	return nil, nil, fmt.Errorf("no usable private key after %d attempts: %w", maxKeyAttempts, lastErr)
}

// GenerateMnemonic creates a new recovery phrase and protects it under sk.
func (e *Engine) GenerateMnemonic(sk *SymmetricKey) (*GeneratedMnemonic, error) {
	key, err := sk.wrappingKey()
	if err != nil {
		return nil, err
	}
	defer key.Destroy()

	phrase, err := e.provider.GenerateMnemonic(e.mnemonicBits)
	if err != nil {
		return nil, &EntropyError{Err: err}
	}
	if phrase == "" {
		return nil, &EntropyError{Err: fmt.Errorf("provider returned an empty mnemonic")}
	}
	mnemonic := &Mnemonic{secret: newSecret([]byte(phrase))}

	protected, err := e.provider.Encrypt(mnemonic.Bytes(), key.Bytes())
	if err != nil {
		mnemonic.Destroy()
		return nil, &EntropyError{Err: err}
	}

	return &GeneratedMnemonic{
		Mnemonic:          mnemonic,
		ProtectedMnemonic: protected,
	}, nil
}

// RestoreMnemonic protects a caller supplied mnemonic under sk.
//
// The phrase is not checked against any word list. Callers that need a
// well-formed phrase should check it with ValidateMnemonic first.
func (e *Engine) RestoreMnemonic(mnemonic string, sk *SymmetricKey) (string, error) {
	key, err := sk.wrappingKey()
	if err != nil {
		return "", err
	}
	defer key.Destroy()

	plaintext := memguard.NewBufferFromBytes([]byte(mnemonic))
	defer plaintext.Destroy()

	protected, err := e.provider.Encrypt(plaintext.Bytes(), key.Bytes())
	if err != nil {
		return "", &ProtectionError{Target: "mnemonic", Err: err}
	}
	return protected, nil
}

// CreateProtectedSymmetricKey generates the symmetric key at the root of a new
// identity and protects it under mk.
//
// It must be called once per identity. Calling it again orphans every secret
// wrapped under the previous symmetric key; use RotateMasterKey to change
// the master key instead.
func (e *Engine) CreateProtectedSymmetricKey(mk *MasterKey) (*SymmetricKey, string, error) {
	master, err := masterKeyView(mk)
	if err != nil {
		return nil, "", err
	}

	raw, err := e.provider.RandomBytes(symmetricKeySize)
	if err != nil {
		return nil, "", generationError("symmetric key", err)
	}
	if len(raw) != symmetricKeySize {
		crypto.Wipe(raw)
		return nil, "", generationError("symmetric key",
			fmt.Errorf("random source returned %d bytes, want %d", len(raw), symmetricKeySize))
	}

	text := make([]byte, SymmetricKeyHexSize)
	hex.Encode(text, raw)
	crypto.Wipe(raw)
	sk := &SymmetricKey{secret: newSecret(text)}

	protected, err := e.provider.Encrypt(sk.Bytes(), master)
	if err != nil {
		sk.Destroy()
		return nil, "", generationError("symmetric key", err)
	}
	return sk, protected, nil
}

// UnwrapSymmetricKey recovers the plaintext symmetric key from bundle.
//
// This is the only check of a master key. Every failure, including a
// decrypted value that is not a well-formed symmetric key, is reported as
// the same *DecryptionError.
func (e *Engine) UnwrapSymmetricKey(bundle *KeyBundle, mk *MasterKey) (*SymmetricKey, error) {
	if bundle == nil {
		return nil, &BundleError{Errors: []string{"bundle is nil"}}
	}
	master, err := masterKeyView(mk)
	if err != nil {
		return nil, err
	}

	fail := &DecryptionError{Target: "symmetric key"}
	if bundle.ProtectedSymmetricKey == "" {
		return nil, fail
	}

	plaintext, err := e.provider.Decrypt(bundle.ProtectedSymmetricKey, master)
	if err != nil {
		return nil, fail
	}
	if len(plaintext) != SymmetricKeyHexSize || !crypto.IsLowerHex(plaintext) {
		crypto.Wipe(plaintext)
		return nil, fail
	}
	return &SymmetricKey{secret: newSecret(plaintext)}, nil
}

// RotateMasterKey protects an already unwrapped symmetric key under newMK.
//
// The protected private key and mnemonic stay valid because the symmetric
// key does not change. The old master key is not checked here; the caller
// proves it by unwrapping sk first.
func (e *Engine) RotateMasterKey(sk *SymmetricKey, newMK *MasterKey) (string, error) {
	if sk == nil {
		return "", ErrSecretDestroyed
	}
	text, err := sk.view()
	if err != nil {
		return "", err
	}
	master, err := masterKeyView(newMK)
	if err != nil {
		return "", err
	}

	protected, err := e.provider.Encrypt(text, master)
	if err != nil {
		return "", &ProtectionError{Target: "symmetric key", Err: err}
	}
	return protected, nil
}

func masterKeyView(mk *MasterKey) ([]byte, error) {
	if mk == nil {
		return nil, ErrSecretDestroyed
	}
	return mk.view()
}

// ValidateMnemonic reports whether phrase is a well-formed English BIP-39
// mnemonic with a valid checksum.
func ValidateMnemonic(phrase string) bool {
	return crypto.ValidateMnemonic(phrase)
}
