package bundlefile

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	keyenvelope "github.com/vaultsandbox/keyenvelope"
)

var testParams = keyenvelope.KDFParams{Time: 1, MemoryKB: 64, Threads: 1}

func testBundle() *keyenvelope.KeyBundle {
	return &keyenvelope.KeyBundle{
		Version:               keyenvelope.BundleVersion,
		PublicKey:             "0279be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798",
		ProtectedPrivateKey:   "private-payload",
		ProtectedSymmetricKey: "symmetric-payload",
	}
}

func testSalt() []byte {
	return bytes.Repeat([]byte{0x07}, keyenvelope.SaltSize)
}

func TestWriteRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "bundle.json")
	f := New(testBundle(), NewKDF(testSalt(), testParams))

	if err := Write(path, f); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := Read(path)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if *got.Bundle != *f.Bundle {
		t.Errorf("Read() bundle = %+v, want %+v", got.Bundle, f.Bundle)
	}
	if got.KDF != f.KDF {
		t.Errorf("Read() kdf = %+v, want %+v", got.KDF, f.KDF)
	}

	salt, params, err := got.KDF.Params()
	if err != nil {
		t.Fatalf("Params() error = %v", err)
	}
	if !bytes.Equal(salt, testSalt()) || params != testParams {
		t.Error("Params() did not return the written salt and parameters")
	}
}

func TestWrite_Permissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("file modes are not enforced on windows")
	}
	path := filepath.Join(t.TempDir(), "bundle.json")
	if err := Write(path, New(testBundle(), NewKDF(testSalt(), testParams))); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("file mode = %o, want 600", perm)
	}
}

func TestWrite_ReplacesAndLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bundle.json")

	first := New(testBundle(), NewKDF(testSalt(), testParams))
	if err := Write(path, first); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	second := New(testBundle(), NewKDF(testSalt(), testParams))
	second.Bundle.ProtectedSymmetricKey = "rotated-payload"
	if err := Write(path, second); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := Read(path)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if got.Bundle.ProtectedSymmetricKey != "rotated-payload" {
		t.Error("Write() did not replace the file")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("directory has %d entries, want 1", len(entries))
	}
}

func TestWrite_RejectsInvalidBundle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bundle.json")

	if err := Write(path, nil); !errors.Is(err, ErrInvalid) {
		t.Errorf("Write(nil) error = %v, want ErrInvalid", err)
	}

	bad := New(&keyenvelope.KeyBundle{}, NewKDF(testSalt(), testParams))
	err := Write(path, bad)
	if !errors.Is(err, ErrInvalid) || !errors.Is(err, keyenvelope.ErrInvalidBundle) {
		t.Errorf("Write() error = %v, want ErrInvalid and ErrInvalidBundle", err)
	}
	if exists, _ := Exists(path); exists {
		t.Error("Write() created a file for an invalid bundle")
	}
}

func TestCreate_RefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bundle.json")
	f := New(testBundle(), NewKDF(testSalt(), testParams))

	if err := Create(path, f); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := Create(path, f); !errors.Is(err, ErrExists) {
		t.Errorf("second Create() error = %v, want ErrExists", err)
	}
}

func TestRead_NotFound(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "missing.json"))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Read() error = %v, want ErrNotFound", err)
	}
}

func TestParse_Invalid(t *testing.T) {
	validKDF := `"kdf":{"algorithm":"argon2id","salt":"07070707070707070707070707070707","time":1,"memoryKB":64,"threads":1}`
	validBundle := `"bundle":{"version":1,"publicKey":"02","protectedPrivateKey":"a","protectedSymmetricKey":"b"}`

	tests := []struct {
		name string
		data string
	}{
		{"not json", "nope"},
		{"wrong version", `{"version":2,` + validKDF + `,` + validBundle + `}`},
		{"unknown field", `{"version":1,"extra":true,` + validKDF + `,` + validBundle + `}`},
		{"missing bundle", `{"version":1,` + validKDF + `}`},
		{"bad bundle", `{"version":1,` + validKDF + `,"bundle":{"version":1}}`},
		{"bad kdf", `{"version":1,"kdf":{"algorithm":"scrypt"},` + validBundle + `}`},
		{"short salt", `{"version":1,"kdf":{"algorithm":"argon2id","salt":"0707","time":1,"memoryKB":64,"threads":1},` + validBundle + `}`},
		{"zero cost", `{"version":1,"kdf":{"algorithm":"argon2id","salt":"07070707070707070707070707070707"},` + validBundle + `}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.data)); !errors.Is(err, ErrInvalid) {
				t.Errorf("Parse() error = %v, want ErrInvalid", err)
			}
		})
	}

	ok := `{"version":1,` + validKDF + `,` + validBundle + `}`
	if _, err := Parse([]byte(ok)); err != nil {
		t.Errorf("Parse() error = %v for a valid file", err)
	}
}

func TestFile_DeriveMasterKey(t *testing.T) {
	e, err := keyenvelope.New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	f := New(nil, NewKDF(testSalt(), testParams))
	mk, err := f.DeriveMasterKey([]byte("passphrase"))
	if err != nil {
		t.Fatalf("DeriveMasterKey() error = %v", err)
	}
	defer mk.Destroy()

	created, err := e.CreateBundle(mk)
	if err != nil {
		t.Fatalf("CreateBundle() error = %v", err)
	}
	created.Mnemonic.Destroy()
	f.Bundle = created.Bundle

	path := filepath.Join(t.TempDir(), "bundle.json")
	if err := Write(path, f); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	loaded, err := Read(path)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	again, err := loaded.DeriveMasterKey([]byte("passphrase"))
	if err != nil {
		t.Fatalf("DeriveMasterKey() error = %v", err)
	}
	defer again.Destroy()
	sk, err := e.UnwrapSymmetricKey(loaded.Bundle, again)
	if err != nil {
		t.Fatalf("UnwrapSymmetricKey() error = %v", err)
	}
	sk.Destroy()

	wrong, err := loaded.DeriveMasterKey([]byte("other"))
	if err != nil {
		t.Fatalf("DeriveMasterKey() error = %v", err)
	}
	defer wrong.Destroy()
	if _, err := e.UnwrapSymmetricKey(loaded.Bundle, wrong); !errors.Is(err, keyenvelope.ErrDecryption) {
		t.Errorf("UnwrapSymmetricKey() error = %v, want ErrDecryption", err)
	}
}

func TestFile_JSONLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bundle.json")
	if err := Write(path, New(testBundle(), NewKDF(testSalt(), testParams))); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	s := string(data)
	for _, want := range []string{`"algorithm": "argon2id"`, `"protectedSymmetricKey"`, `"memoryKB": 64`} {
		if !strings.Contains(s, want) {
			t.Errorf("file lacks %s:\n%s", want, s)
		}
	}
}
