package invocation

import (
	"math/big"

	"github.com/google/uuid"
)

// flickrBase58 omits look-alike characters (0, O, I, l).
const flickrBase58 = "123456789abcdefghijkmnopqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ"

// ShortIDLength is the width of every ShortID.
const ShortIDLength = 22

// IDSource produces unique invocation identifiers.
type IDSource interface {
	NewID() string
}

// IDFunc adapts a function to IDSource.
type IDFunc func() string

// NewID calls f.
func (f IDFunc) NewID() string { return f() }

// ShortID returns a random UUID encoded in base58, left-padded to
// ShortIDLength. The alphabet is URL-safe.
func ShortID() string {
	return encodeShort(uuid.New())
}

func encodeShort(id uuid.UUID) string {
	n := new(big.Int).SetBytes(id[:])
	base := big.NewInt(int64(len(flickrBase58)))
	mod := new(big.Int)

	digits := make([]byte, 0, ShortIDLength)
	for n.Sign() > 0 {
		n.DivMod(n, base, mod)
		digits = append(digits, flickrBase58[mod.Int64()])
	}
	for len(digits) < ShortIDLength {
		digits = append(digits, flickrBase58[0])
	}
	for i, j := 0, len(digits)-1; i < j; i, j = i+1, j-1 {
		digits[i], digits[j] = digits[j], digits[i]
	}
	return string(digits)
}
