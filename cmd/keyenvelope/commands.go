package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/awnumar/memguard"
	"github.com/spf13/cobra"

	keyenvelope "github.com/vaultsandbox/keyenvelope"
	"github.com/vaultsandbox/keyenvelope/internal/bundlefile"
)

func (a *app) initCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a new identity and bundle file",
		Long: `Creates a symmetric key, a key pair and a recovery phrase, and writes the
protected bundle. The recovery phrase is printed once and never stored in
plaintext.

An existing bundle is never replaced unless --force is given, because a new
symmetric key orphans everything protected under the old one.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := a.settings.BundlePath
			exists, err := bundlefile.Exists(path)
			if err != nil {
				return err
			}
			if exists && !force {
				return fmt.Errorf("%w: %s (use --force to replace it)", bundlefile.ErrExists, path)
			}
			if exists {
				a.log.Warnf("replacing existing bundle %s", path)
			}

			pass, err := a.passphrase(a.flags.passphrase, EnvPassphrase, "passphrase")
			if err != nil {
				return err
			}
			mk, kdf, err := a.newMasterKey(pass)
			memguard.WipeBytes(pass)
			if err != nil {
				return err
			}
			defer mk.Destroy()

			created, err := a.engine.CreateBundle(mk)
			if err != nil {
				return err
			}
			defer created.Mnemonic.Destroy()

			file := bundlefile.New(created.Bundle, kdf)
			write := bundlefile.Create
			if force {
				write = bundlefile.Write
			}
			if err := write(path, file); err != nil {
				return err
			}
			a.log.Infof("wrote bundle %s", path)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "public key: %s\n", created.Bundle.PublicKey)
			fmt.Fprintln(out, "recovery phrase (write it down, it is not shown again):")
			out.Write(created.Mnemonic.Bytes())
			fmt.Fprintln(out)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "replace an existing bundle")
	return cmd
}

func (a *app) unlockCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unlock",
		Short: "Check the passphrase and the bundle's integrity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			u, err := a.unlock()
			if err != nil {
				return err
			}
			defer u.close()

			if err := a.engine.VerifyBundle(u.file.Bundle, u.sk); err != nil {
				return err
			}
			a.log.Infof("public key matches the protected private key")
			fmt.Fprintf(cmd.OutOrStdout(), "public key: %s\n", u.file.Bundle.PublicKey)
			return nil
		},
	}
}

func (a *app) rotateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rotate",
		Short: "Change the passphrase",
		Long: `Re-wraps the symmetric key under a master key derived from the new
passphrase, with a fresh salt. The protected private key and recovery phrase
are left untouched.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			u, err := a.unlock()
			if err != nil {
				return err
			}
			defer u.close()

			pass, err := a.passphrase(a.flags.newPassphrase, EnvNewPassphrase, "new passphrase")
			if err != nil {
				return err
			}
			newMK, kdf, err := a.newMasterKey(pass)
			memguard.WipeBytes(pass)
			if err != nil {
				return err
			}
			defer newMK.Destroy()

			rotated, err := a.engine.RotateBundle(u.file.Bundle, u.mk, newMK)
			if err != nil {
				return err
			}

			file := bundlefile.New(rotated, kdf)
			if err := bundlefile.Write(a.settings.BundlePath, file); err != nil {
				return err
			}
			a.log.Infof("rotated master key of %s", a.settings.BundlePath)
			fmt.Fprintln(cmd.OutOrStdout(), "passphrase changed")
			return nil
		},
	}
	cmd.Flags().StringVar(&a.flags.newPassphrase, "new-passphrase", "", "new passphrase of the bundle")
	return cmd
}

func (a *app) mnemonicCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mnemonic",
		Short: "Show or restore the recovery phrase",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the recovery phrase",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			u, err := a.unlock()
			if err != nil {
				return err
			}
			defer u.close()

			m, err := a.engine.UnwrapMnemonic(u.file.Bundle, u.sk)
			if errors.Is(err, keyenvelope.ErrNoMnemonic) {
				return errors.New("bundle has no recovery phrase; add one with 'mnemonic restore'")
			}
			if err != nil {
				return err
			}
			defer m.Destroy()

			out := cmd.OutOrStdout()
			out.Write(m.Bytes())
			fmt.Fprintln(out)
			return nil
		},
	}

	restore := &cobra.Command{
		Use:   "restore <word>...",
		Short: "Replace the stored recovery phrase",
		Long: `Protects the given BIP-39 phrase under the bundle's symmetric key and
stores it in place of the current one. The phrase's words and checksum are
checked first.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			phrase := strings.Join(strings.Fields(strings.Join(args, " ")), " ")
			if !keyenvelope.ValidateMnemonic(phrase) {
				return errors.New("not a valid BIP-39 recovery phrase")
			}

			u, err := a.unlock()
			if err != nil {
				return err
			}
			defer u.close()

			protected, err := a.engine.RestoreMnemonic(phrase, u.sk)
			if err != nil {
				return err
			}
			updated := u.file.Bundle.Clone()
			updated.ProtectedMnemonic = &protected
			u.file.Bundle = updated

			if err := bundlefile.Write(a.settings.BundlePath, u.file); err != nil {
				return err
			}
			a.log.Infof("stored recovery phrase in %s", a.settings.BundlePath)
			fmt.Fprintln(cmd.OutOrStdout(), "recovery phrase restored")
			return nil
		},
	}

	cmd.AddCommand(show, restore)
	return cmd
}

func (a *app) digestCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "digest <message>",
		Short: "Print the SHA-256 digest of a message",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := a.engine.Digest(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), h)
			return nil
		},
	}
}

func (a *app) hexCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hex",
		Short: "Convert between text and hex",
	}

	encode := &cobra.Command{
		Use:   "encode <text>",
		Short: "Hex encode text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), keyenvelope.EncodeHex([]byte(args[0])))
			return nil
		},
	}

	decode := &cobra.Command{
		Use:   "decode <hex>",
		Short: "Decode hex to raw bytes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := keyenvelope.DecodeHex(args[0])
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(b)
			return err
		},
	}

	cmd.AddCommand(encode, decode)
	return cmd
}
