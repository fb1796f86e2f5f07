package cipher

import (
	"crypto/rand"
	"errors"
	"math/big"
)

// DefaultKeyLength is the length GenerateKey is usually called with.
const DefaultKeyLength = 32

const keyAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// GenerateKey returns a random alphanumeric key of length n.
func GenerateKey(n int) (string, error) {
	if n <= 0 {
		return "", errors.New("key length must be positive")
	}

	limit := big.NewInt(int64(len(keyAlphabet)))
	key := make([]byte, n)

	for i := range key {
		idx, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		key[i] = keyAlphabet[idx.Int64()]
	}

	return string(key), nil
}
