package keyenvelope

import (
	"io"

	"github.com/vaultsandbox/keyenvelope/internal/crypto"
)

// DefaultMnemonicStrength is the entropy, in bits, of generated mnemonics.
const DefaultMnemonicStrength = crypto.DefaultMnemonicBits

// engineConfig holds configuration for the engine.
type engineConfig struct {
	provider     Provider
	providerSet  bool
	rand         io.Reader
	mnemonicBits int
}

// Option configures the engine.
type Option func(*engineConfig)

// WithProvider replaces the default primitive provider.
func WithProvider(p Provider) Option {
	return func(c *engineConfig) {
		c.provider = p
		c.providerSet = true
	}
}

// WithRandReader sets the random source of the default provider.
// It has no effect together with WithProvider.
//
// The engine reads r from every call, so r must be safe for concurrent
// reads when the engine is shared between goroutines. crypto/rand.Reader is.
func WithRandReader(r io.Reader) Option {
	return func(c *engineConfig) {
		c.rand = r
	}
}

// WithMnemonicStrength sets the entropy of generated mnemonics.
// Valid values are 128 to 256 in steps of 32. Default: 128
func WithMnemonicStrength(bits int) Option {
	return func(c *engineConfig) {
		c.mnemonicBits = bits
	}
}
