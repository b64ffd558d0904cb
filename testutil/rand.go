package testutil

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// RandomAlphaNum generates random alphanumeric string
// in case length <= 0 it returns an error
func RandomAlphaNum(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	if length <= 0 {
		return "", fmt.Errorf("length must be greater than 0")
	}

	randomString := make([]byte, length)
	for i := range randomString {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		randomString[i] = charset[num.Int64()]
	}

	return string(randomString), nil
}

// RandomWalletAddress returns a syntactically valid mainnet Monero address
// for fixtures.
func RandomWalletAddress() (string, error) {
	const base58 = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

	body := make([]byte, 94)
	for i := range body {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(base58))))
		if err != nil {
			return "", err
		}
		body[i] = base58[num.Int64()]
	}

	return "4" + string(body), nil
}
