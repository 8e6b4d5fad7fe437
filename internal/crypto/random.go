package crypto

import (
	"crypto/rand"
	"fmt"
	"io"

	"github.com/awnumar/memguard"
)

// RandomBytes returns n bytes read from r, or from crypto/rand when r is nil.
func RandomBytes(r io.Reader, n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: negative length %d", ErrRandomSource, n)
	}
	out := make([]byte, n)
	if err := readRandom(r, out); err != nil {
		return nil, err
	}
	return out, nil
}

func readRandom(r io.Reader, buf []byte) error {
	if r == nil {
		r = rand.Reader
	}
	if _, err := io.ReadFull(r, buf); err != nil {
		Wipe(buf)
		return fmt.Errorf("%w: %v", ErrRandomSource, err)
	}
	return nil
}

// Wipe zeroes the provided buffer.
func Wipe(b []byte) {
	memguard.WipeBytes(b)
}
