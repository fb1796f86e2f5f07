package cipher

// XOR is a repeating-key XOR transform. It obfuscates stored vectors but
// offers no confidentiality or integrity against an attacker; use AEAD for
// that. It is the format's original cipher and the default.
type XOR struct{}

// Encrypt XORs plaintext with the repeated key.
func (XOR) Encrypt(plaintext []byte, key string) ([]byte, error) {
	return xorKey(plaintext, key), nil
}

// Decrypt is the inverse of Encrypt, which is Encrypt itself.
func (XOR) Decrypt(ciphertext []byte, key string) ([]byte, error) {
	return xorKey(ciphertext, key), nil
}

// Name returns "xor".
func (XOR) Name() string { return "xor" }

func xorKey(data []byte, key string) []byte {
	out := make([]byte, len(data))
	if key == "" {
		copy(out, data)
		return out
	}

	for i, b := range data {
		out[i] = b ^ key[i%len(key)]
	}

	return out
}
