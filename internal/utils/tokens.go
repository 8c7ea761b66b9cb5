package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// NewNumericCode returns a decimal code drawn uniformly from [min, max].
func NewNumericCode(min, max int) (string, error) {
	if min < 0 || max < min {
		return "", fmt.Errorf("invalid code range [%d, %d]", min, max)
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(max-min+1)))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d", int64(min)+n.Int64()), nil
}
