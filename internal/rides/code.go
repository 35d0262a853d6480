package rides

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// codeLength is the fixed length of a ride's one-time code.
const codeLength = 6

// generateCode returns a uniformly random numeric string of codeLength
// digits from a cryptographically strong source.
func generateCode() (string, error) {
	max := new(big.Int).Exp(big.NewInt(10), big.NewInt(codeLength), nil)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}
	return fmt.Sprintf("%0*d", codeLength, n), nil
}
