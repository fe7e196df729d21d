package auth

import (
	"crypto/rand"
	"errors"
	"math/big"
)

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

var codeAlphabetSize = big.NewInt(int64(len(codeAlphabet)))

// randReader is a test seam for the entropy source.
var randReader = rand.Reader

// GenerateCode returns a code of the given length drawn uniformly from
// [A-Za-z0-9].
func GenerateCode(length int) (string, error) {
	if length <= 0 {
		return "", errors.New("code length must be positive")
	}

	b := make([]byte, length)
	for i := range b {
		n, err := rand.Int(randReader, codeAlphabetSize)
		if err != nil {
			return "", err
		}
		b[i] = codeAlphabet[n.Int64()]
	}
	return string(b), nil
}
