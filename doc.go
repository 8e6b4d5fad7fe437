// Package keyenvelope protects a user's key material with envelope
// encryption.
//
// The hierarchy has three levels. A caller supplied master key protects a
// random symmetric key, and the symmetric key protects the user's secp256k1
// private key and optional BIP-39 recovery mnemonic. The protected values and
// the public key together form a [KeyBundle], which is the only thing a host
// application persists. Changing the master key re-wraps the symmetric key and
// nothing else.
//
// Basic usage:
//
//	engine, err := keyenvelope.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	mk, err := keyenvelope.MasterKeyFromHex(masterKeyHex)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer mk.Destroy()
//
//	// Create a new identity
//	created, err := engine.CreateBundle(mk)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer created.Mnemonic.Destroy()
//
//	// Later: unlock it again
//	sk, err := engine.UnwrapSymmetricKey(created.Bundle, mk)
//	if errors.Is(err, keyenvelope.ErrDecryption) {
//	    log.Fatal("wrong master key")
//	}
//	defer sk.Destroy()
//
// Plaintext secrets ([MasterKey], [SymmetricKey], [PrivateKey], [Mnemonic])
// live in locked memory and must be released with Destroy once used. The
// engine destroys every intermediate secret it creates before returning.
//
// Primitives come from a [Provider]. The default provider uses secp256k1
// keys, NIP-44 version 2 payload encryption, English BIP-39 mnemonics and
// SHA-256.
package keyenvelope
