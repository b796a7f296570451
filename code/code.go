package code

import (
	"crypto/rand"
	"math/big"
	"strings"
)

const letters = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

const Length = 6

// GenerateRandom returns a Length character upper-case base-36 room code.
// Uniqueness is not guaranteed; callers check for collisions.
func GenerateRandom() string {
	var b strings.Builder
	b.Grow(Length)
	max := big.NewInt(int64(len(letters)))
	for i := 0; i < Length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic("code: random source failed: " + err.Error())
		}
		b.WriteByte(letters[n.Int64()])
	}
	return b.String()
}

// Normalize turns user-typed input into the canonical form used as a registry key.
func Normalize(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

func Valid(code string) bool {
	if len(code) != Length {
		return false
	}
	for i := 0; i < len(code); i++ {
		if strings.IndexByte(letters, code[i]) < 0 {
			return false
		}
	}
	return true
}
