package cipher

import (
	stdcipher "crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

const hkdfInfo = "pocketvec MVE1 chacha20poly1305"

// AEAD encrypts with ChaCha20-Poly1305. The 256-bit key is derived from the
// key string with HKDF-SHA256 and a random nonce is prepended to the output:
//
//	nonce[12] || ciphertext || tag[16]
//
// A wrong key or any modification of the ciphertext fails with ErrDecrypt.
type AEAD struct {
	// Rand is the nonce source; crypto/rand.Reader when nil.
	Rand io.Reader
}

// Encrypt seals plaintext under key.
func (a AEAD) Encrypt(plaintext []byte, key string) ([]byte, error) {
	if key == "" {
		return append([]byte(nil), plaintext...), nil
	}

	aead, err := newAEAD(key)
	if err != nil {
		return nil, err
	}

	r := a.Rand
	if r == nil {
		r = rand.Reader
	}

	out := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plaintext)+aead.Overhead())
	if _, err := io.ReadFull(r, out); err != nil {
		return nil, fmt.Errorf("nonce: %w", err)
	}

	return aead.Seal(out, out, plaintext, nil), nil
}

// Decrypt opens ciphertext produced by Encrypt with the same key.
func (a AEAD) Decrypt(ciphertext []byte, key string) ([]byte, error) {
	if key == "" {
		return append([]byte(nil), ciphertext...), nil
	}

	aead, err := newAEAD(key)
	if err != nil {
		return nil, err
	}

	if len(ciphertext) < aead.NonceSize()+aead.Overhead() {
		return nil, fmt.Errorf("%w: ciphertext too short", ErrDecrypt)
	}

	nonce, sealed := ciphertext[:aead.NonceSize()], ciphertext[aead.NonceSize():]

	plaintext, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecrypt, err)
	}

	return plaintext, nil
}

// Name returns "aead".
func (AEAD) Name() string { return "aead" }

func newAEAD(key string) (stdcipher.AEAD, error) {
	derived := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(key), nil, []byte(hkdfInfo)), derived); err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}

	return chacha20poly1305.New(derived)
}
