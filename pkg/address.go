package pkg

import (
	"fmt"
	"strings"
)

const base58Alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

// ValidateMoneroAddress checks the shape of a mainnet Monero address:
// standard (95 chars, prefix 4), subaddress (95 chars, prefix 8) or
// integrated (106 chars, prefix 4). Pools accept all three as miner
// identities.
func ValidateMoneroAddress(address string) error {
	if address == "" {
		return fmt.Errorf("wallet address cannot be empty")
	}

	switch len(address) {
	case 95, 106:
	default:
		return fmt.Errorf("wallet address has invalid length %d", len(address))
	}

	if address[0] != '4' && address[0] != '8' {
		return fmt.Errorf("wallet address has invalid prefix %q", address[0])
	}

	for _, c := range address {
		if !strings.ContainsRune(base58Alphabet, c) {
			return fmt.Errorf("wallet address contains non-base58 character %q", c)
		}
	}

	return nil
}
