// Command keyenvelope manages a passphrase protected key bundle on disk.
//
// The passphrase is stretched with Argon2id into the master key. The bundle
// file stores the Argon2id salt and costs next to the key bundle itself.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/awnumar/memguard"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	keyenvelope "github.com/vaultsandbox/keyenvelope"
	"github.com/vaultsandbox/keyenvelope/internal/bundlefile"
	"github.com/vaultsandbox/keyenvelope/internal/config"
	"github.com/vaultsandbox/keyenvelope/internal/logging"
)

// Environment variables holding passphrases. Both may come from the env file.
const (
	EnvPassphrase    = "KEYENVELOPE_PASSPHRASE"
	EnvNewPassphrase = "KEYENVELOPE_NEW_PASSPHRASE"
)

// Config holds the I/O streams of a run.
type Config struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// DefaultConfig returns a Config bound to the process streams.
func DefaultConfig() Config {
	return Config{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	configPath    string
	envFile       string
	bundlePath    string
	passphrase    string
	newPassphrase string
	verbose       bool
	debug         bool
}

// app is the state of one run.
type app struct {
	io       Config
	stdin    *bufio.Reader
	flags    globalFlags
	log      logging.Logger
	settings config.Config
	engine   *keyenvelope.Engine
}

func run(args []string, cfg Config) error {
	a := &app{io: cfg, stdin: bufio.NewReader(cfg.Stdin)}
	root := a.rootCommand()
	root.SetArgs(args)
	root.SetIn(cfg.Stdin)
	root.SetOut(cfg.Stdout)
	root.SetErr(cfg.Stderr)
	return root.Execute()
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "keyenvelope",
		Short: "Manage a passphrase protected key bundle",
		Long: `keyenvelope keeps a secp256k1 identity and its recovery phrase in an
envelope encrypted bundle file.

The passphrase derives a master key, the master key protects a symmetric
key, and the symmetric key protects the private key and mnemonic. Changing
the passphrase re-wraps the symmetric key only.

Passphrases are read from --passphrase, the KEYENVELOPE_PASSPHRASE variable
(also loaded from the env file), or one line of standard input.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.flags.configPath, "config", "c", "", "path to a YAML config file")
	flags.StringVar(&a.flags.envFile, "env-file", ".env", "env file to load passphrases from, ignored if missing")
	flags.StringVarP(&a.flags.bundlePath, "bundle", "b", "", "path to the bundle file")
	flags.StringVarP(&a.flags.passphrase, "passphrase", "p", "", "passphrase of the bundle")
	flags.BoolVarP(&a.flags.verbose, "verbose", "v", false, "enable verbose output")
	flags.BoolVarP(&a.flags.debug, "debug", "d", false, "enable debug output")

	root.AddCommand(
		a.initCommand(),
		a.unlockCommand(),
		a.rotateCommand(),
		a.mnemonicCommand(),
		a.digestCommand(),
		a.hexCommand(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	a.log = logging.Logger{
		Verbose: a.flags.verbose,
		Debug:   a.flags.debug,
		Out:     a.io.Stderr,
		Err:     a.io.Stderr,
	}
	a.log.Debugf("running %s with verbose=%t, debug=%t", cmd.CommandPath(), a.flags.verbose, a.flags.debug)

	if a.flags.envFile != "" {
		err := godotenv.Load(a.flags.envFile)
		switch {
		case err == nil:
			a.log.Debugf("loaded env file %s", a.flags.envFile)
		case errors.Is(err, fs.ErrNotExist):
			a.log.Debugf("no env file at %s", a.flags.envFile)
		default:
			return fmt.Errorf("load env file %s: %w", a.flags.envFile, err)
		}
	}

	settings, err := config.Load(a.flags.configPath)
	if err != nil {
		return err
	}
	if a.flags.bundlePath != "" {
		settings.BundlePath = a.flags.bundlePath
	}
	a.settings = settings
	a.log.Debugf("bundle path %s", settings.BundlePath)

	engine, err := keyenvelope.New(keyenvelope.WithMnemonicStrength(settings.MnemonicBits))
	if err != nil {
		return err
	}
	a.engine = engine
	return nil
}

// passphrase resolves a passphrase from the flag, then env, then one line
// of standard input.
func (a *app) passphrase(flag, env, what string) ([]byte, error) {
	if flag != "" {
		return []byte(flag), nil
	}
	if v := os.Getenv(env); v != "" {
		return []byte(v), nil
	}

	a.log.Infof("reading %s from standard input", what)
	line, err := a.stdin.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return nil, fmt.Errorf("no %s given: use a flag, %s, or standard input", what, env)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return nil, fmt.Errorf("%s is empty", what)
	}
	return []byte(line), nil
}

// unlocked is an opened bundle file. Callers must call close.
type unlocked struct {
	file *bundlefile.File
	mk   *keyenvelope.MasterKey
	sk   *keyenvelope.SymmetricKey
}

func (u *unlocked) close() {
	u.sk.Destroy()
	u.mk.Destroy()
}

// unlock reads the bundle file and unwraps its symmetric key.
func (a *app) unlock() (*unlocked, error) {
	file, err := bundlefile.Read(a.settings.BundlePath)
	if err != nil {
		return nil, err
	}

	pass, err := a.passphrase(a.flags.passphrase, EnvPassphrase, "passphrase")
	if err != nil {
		return nil, err
	}
	a.log.Infof("deriving master key (argon2id, time=%d, memory=%dKB)", file.KDF.Time, file.KDF.MemoryKB)
	mk, err := file.DeriveMasterKey(pass)
	memguard.WipeBytes(pass)
	if err != nil {
		return nil, err
	}

	sk, err := a.engine.UnwrapSymmetricKey(file.Bundle, mk)
	if errors.Is(err, keyenvelope.ErrDecryption) {
		mk.Destroy()
		return nil, errors.New("wrong passphrase or corrupted bundle")
	}
	if err != nil {
		mk.Destroy()
		return nil, err
	}
	return &unlocked{file: file, mk: mk, sk: sk}, nil
}

// newMasterKey derives a master key from pass with a fresh salt and the
// configured costs.
func (a *app) newMasterKey(pass []byte) (*keyenvelope.MasterKey, bundlefile.KDF, error) {
	salt, err := keyenvelope.GenerateSalt()
	if err != nil {
		return nil, bundlefile.KDF{}, err
	}
	a.log.Infof("deriving master key (argon2id, time=%d, memory=%dKB)", a.settings.KDF.Time, a.settings.KDF.MemoryKB)
	mk, err := keyenvelope.DeriveMasterKey(pass, salt, a.settings.KDF)
	if err != nil {
		return nil, bundlefile.KDF{}, err
	}
	return mk, bundlefile.NewKDF(salt, a.settings.KDF), nil
}
