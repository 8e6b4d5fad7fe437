package crypto

import (
	"fmt"

	"golang.org/x/crypto/argon2"
)

// KDFParams holds Argon2id cost parameters.
type KDFParams struct {
	Time     uint32
	MemoryKB uint32
	Threads  uint8
}

// DefaultKDFParams returns the default Argon2id cost parameters.
func DefaultKDFParams() KDFParams {
	return KDFParams{
		Time:     DefaultKDFTime,
		MemoryKB: DefaultKDFMemoryKB,
		Threads:  DefaultKDFThreads,
	}
}

// Validate checks that every cost parameter is non-zero.
func (p KDFParams) Validate() error {
	if p.Time == 0 || p.MemoryKB == 0 || p.Threads == 0 {
		return fmt.Errorf("%w: time=%d memory_kb=%d threads=%d", ErrInvalidKDFParams, p.Time, p.MemoryKB, p.Threads)
	}
	return nil
}

// DeriveMasterKey stretches passphrase into a MasterKeySize key with Argon2id.
func DeriveMasterKey(passphrase, salt []byte, params KDFParams) ([]byte, error) {
	if len(salt) != SaltSize {
		return nil, fmt.Errorf("%w: salt is %d bytes, want %d", ErrInvalidKDFParams, len(salt), SaltSize)
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return argon2.IDKey(passphrase, salt, params.Time, params.MemoryKB, params.Threads, MasterKeySize), nil
}
