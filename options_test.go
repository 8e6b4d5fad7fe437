package keyenvelope

import (
	"errors"
	"strings"
	"testing"
)

func TestDefaultMnemonicStrength(t *testing.T) {
	if DefaultMnemonicStrength != 128 {
		t.Errorf("DefaultMnemonicStrength = %d, want 128", DefaultMnemonicStrength)
	}
}

func TestWithProvider(t *testing.T) {
	cfg := &engineConfig{}
	p := newFakeProvider()
	WithProvider(p)(cfg)
	if cfg.provider != p || !cfg.providerSet {
		t.Error("provider was not set")
	}
}

func TestWithRandReader(t *testing.T) {
	cfg := &engineConfig{}
	r := constReader(7)
	WithRandReader(r)(cfg)
	if cfg.rand != r {
		t.Error("rand was not set")
	}
}

func TestWithMnemonicStrength(t *testing.T) {
	tests := []struct {
		bits  int
		words int
	}{
		{128, 12},
		{192, 18},
		{256, 24},
	}

	sk, err := SymmetricKeyFromHex(strings.Repeat("01", 64))
	if err != nil {
		t.Fatalf("SymmetricKeyFromHex() error = %v", err)
	}
	defer sk.Destroy()

	for _, tt := range tests {
		e := newTestEngine(t, WithMnemonicStrength(tt.bits))
		generated, err := e.GenerateMnemonic(sk)
		if err != nil {
			t.Fatalf("GenerateMnemonic() error = %v", err)
		}
		if n := len(strings.Fields(string(generated.Mnemonic.Bytes()))); n != tt.words {
			t.Errorf("strength %d: %d words, want %d", tt.bits, n, tt.words)
		}
		generated.Mnemonic.Destroy()
	}
}

func TestNew_InvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
	}{
		{"nil provider", []Option{WithProvider(nil)}},
		{"weak mnemonic", []Option{WithMnemonicStrength(64)}},
		{"odd mnemonic", []Option{WithMnemonicStrength(130)}},
		{"huge mnemonic", []Option{WithMnemonicStrength(288)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.opts...)
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("New() error = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestNew_Defaults(t *testing.T) {
	e := newTestEngine(t)
	if _, ok := e.provider.(*DefaultProvider); !ok {
		t.Errorf("provider = %T, want *DefaultProvider", e.provider)
	}
	if e.mnemonicBits != DefaultMnemonicStrength {
		t.Errorf("mnemonicBits = %d, want %d", e.mnemonicBits, DefaultMnemonicStrength)
	}
}
