package utils

import (
	"crypto/rand"
	"math"
	"math/big"
	"os"

	"github.com/google/uuid"
)

// GetUUID returns a random v4 id, used for request ids and token ids.
func GetUUID() string {
	return uuid.New().String()
}

var digitRunes = []rune("0123456789")

// GenerateRandomDigitString creates a random numeric string of length n.
func GenerateRandomDigitString(n int) string {
	b := make([]rune, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, big.NewInt(int64(len(digitRunes))))
		if err != nil {
			idx = big.NewInt(0)
		}
		b[i] = digitRunes[idx.Int64()]
	}
	return string(b)
}

// RoundMoney rounds to cents.
func RoundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}

func EnsureDir(dir string) error {
	return os.MkdirAll(dir, 0755)
}
