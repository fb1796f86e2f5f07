// Package cipher provides the encryption collaborators used for encrypted
// heap store files.
//
// A heap store saved with a non-empty key writes the "MVE1" magic followed by
// the output of Cipher.Encrypt over the plain "MVS1" stream. An empty key
// always means no encryption.
//
// Changing the cipher of an existing deployment is a breaking change: files
// written with one cipher cannot be read with another.
package cipher

import (
	"errors"
	"fmt"
)

// ErrDecrypt is returned when a ciphertext cannot be decrypted with a key.
var ErrDecrypt = errors.New("decryption failed")

// Cipher transforms payload bytes under a key string.
// Implementations must treat an empty key as the identity transform.
type Cipher interface {
	Encrypt(plaintext []byte, key string) ([]byte, error)
	Decrypt(ciphertext []byte, key string) ([]byte, error)
	Name() string
}

// Default is the cipher used when none is configured.
var Default Cipher = XOR{}

// ByName returns a built-in cipher by its stable name.
func ByName(name string) (Cipher, error) {
	switch name {
	case "", "xor":
		return XOR{}, nil
	case "aead", "chacha20poly1305":
		return AEAD{}, nil
	default:
		return nil, fmt.Errorf("unknown cipher %q", name)
	}
}
