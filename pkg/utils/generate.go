package utils

import (
	"crypto/rand"
	"math/big"
	"strings"

	"github.com/google/uuid"
)

const defaultOTPLength = 6

// ==================== IDS ====================

func GenerateUUIDString() string {
	return uuid.New().String()
}

// ==================== OTP ====================

// GenerateOTP returns a numeric code of the given length drawn from crypto/rand.
// Lengths outside 4..8 fall back to 6 so the code always passes IsValidOTP.
func GenerateOTP(length int) (string, error) {
	if length < 4 || length > 8 {
		length = defaultOTPLength
	}

	ten := big.NewInt(10)
	var sb strings.Builder
	sb.Grow(length)
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", err
		}
		sb.WriteByte(byte('0' + n.Int64()))
	}

	return sb.String(), nil
}

// OTPGenerator produces codes of a fixed length.
type OTPGenerator struct {
	Length int
}

func NewOTPGenerator(length int) *OTPGenerator {
	return &OTPGenerator{Length: length}
}

func (g *OTPGenerator) Generate() (string, error) {
	return GenerateOTP(g.Length)
}
