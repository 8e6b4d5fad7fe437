// Package bundlefile persists a key bundle together with the Argon2id
// parameters needed to turn a passphrase back into its master key.
//
// Files are JSON, written with mode 0600 through a temporary file and a
// rename, so a concurrent reader sees either the old or the new file and
// never a partial one. Concurrent writers are not coordinated: the last
// rename wins.
package bundlefile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	keyenvelope "github.com/vaultsandbox/keyenvelope"
)

// FileVersion is the current bundle file format version.
const FileVersion = 1

var (
	// ErrNotFound is returned when no bundle file exists at the path.
	ErrNotFound = errors.New("bundle file not found")

	// ErrExists is returned by Create when a bundle file already exists.
	ErrExists = errors.New("bundle file already exists")

	// ErrInvalid is returned for a file that cannot be parsed.
	ErrInvalid = errors.New("bundle file is invalid")
)

// KDF records how the master key was derived from the passphrase.
type KDF struct {
	Algorithm string `json:"algorithm"`
	Salt      string `json:"salt"` // hex
	Time      uint32 `json:"time"`
	MemoryKB  uint32 `json:"memoryKB"`
	Threads   uint8  `json:"threads"`
}

// NewKDF records params and salt for the Argon2id derivation.
func NewKDF(salt []byte, params keyenvelope.KDFParams) KDF {
	return KDF{
		Algorithm: "argon2id",
		Salt:      keyenvelope.EncodeHex(salt),
		Time:      params.Time,
		MemoryKB:  params.MemoryKB,
		Threads:   params.Threads,
	}
}

// Params returns the decoded salt and cost parameters.
func (k KDF) Params() ([]byte, keyenvelope.KDFParams, error) {
	params := keyenvelope.KDFParams{Time: k.Time, MemoryKB: k.MemoryKB, Threads: k.Threads}
	if k.Algorithm != "argon2id" {
		return nil, params, fmt.Errorf("%w: unsupported kdf %q", ErrInvalid, k.Algorithm)
	}
	salt, err := keyenvelope.DecodeHex(k.Salt)
	if err != nil {
		return nil, params, fmt.Errorf("%w: salt: %v", ErrInvalid, err)
	}
	if len(salt) != keyenvelope.SaltSize {
		return nil, params, fmt.Errorf("%w: salt is %d bytes, want %d", ErrInvalid, len(salt), keyenvelope.SaltSize)
	}
	if err := params.Validate(); err != nil {
		return nil, params, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return salt, params, nil
}

// File is the on-disk document.
type File struct {
	Version int                    `json:"version"`
	KDF     KDF                    `json:"kdf"`
	Bundle  *keyenvelope.KeyBundle `json:"bundle"`
}

// New returns a file for bundle whose master key was derived as kdf records.
func New(bundle *keyenvelope.KeyBundle, kdf KDF) *File {
	return &File{
		Version: FileVersion,
		KDF:     kdf,
		Bundle:  bundle,
	}
}

// DeriveMasterKey derives the file's master key from passphrase.
func (f *File) DeriveMasterKey(passphrase []byte) (*keyenvelope.MasterKey, error) {
	salt, params, err := f.KDF.Params()
	if err != nil {
		return nil, err
	}
	return keyenvelope.DeriveMasterKey(passphrase, salt, params)
}

// rawFile defers bundle decoding to keyenvelope.ParseKeyBundle.
type rawFile struct {
	Version int             `json:"version"`
	KDF     KDF             `json:"kdf"`
	Bundle  json.RawMessage `json:"bundle"`
}

// Parse decodes and validates a bundle file.
func Parse(data []byte) (*File, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var raw rawFile
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if raw.Version != FileVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrInvalid, raw.Version)
	}
	if _, _, err := raw.KDF.Params(); err != nil {
		return nil, err
	}
	if len(raw.Bundle) == 0 {
		return nil, fmt.Errorf("%w: bundle is missing", ErrInvalid)
	}

	bundle, err := keyenvelope.ParseKeyBundle(raw.Bundle)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return &File{Version: raw.Version, KDF: raw.KDF, Bundle: bundle}, nil
}

// Read loads the bundle file at path.
func Read(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Exists reports whether a file exists at path.
func Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// Create writes f to path unless a file already exists there.
func Create(path string, f *File) error {
	exists, err := Exists(path)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %s", ErrExists, path)
	}
	return Write(path, f)
}

// Write atomically replaces the file at path with f.
func Write(path string, f *File) error {
	if f == nil || f.Bundle == nil {
		return fmt.Errorf("%w: bundle is missing", ErrInvalid)
	}
	if err := f.Bundle.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	payload, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return err
	}
	payload = append(payload, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return err
	}
	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
