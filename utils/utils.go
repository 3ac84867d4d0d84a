package utils

import (
	rndm "math/rand"
	"strconv"
	"strings"
	"time"
)

// --- Entity ID Generation ---

const base36Runes = "0123456789abcdefghijklmnopqrstuvwxyz"

// NewID produces the public entity id: millisecond timestamp plus a
// 9-character base36 suffix, e.g. "1724831000123-k3j9x0q2m".
func NewID() string {
	var b strings.Builder
	b.WriteString(strconv.FormatInt(time.Now().UnixMilli(), 10))
	b.WriteByte('-')
	for i := 0; i < 9; i++ {
		b.WriteByte(base36Runes[rndm.Intn(len(base36Runes))])
	}
	return b.String()
}

var letterRunes = []rune("abcdefghijklmnopqrstuvwxyz0123456789_ABCDEFGHIJKLMNOPQRSTUVWXYZ")

// GenerateRandomString creates a random alphanumeric string of length n.
func GenerateRandomString(n int) string {
	b := make([]rune, n)
	for i := range b {
		b[i] = letterRunes[rndm.Intn(len(letterRunes))]
	}
	return string(b)
}

// --- Parsing Helpers ---

func ParseFloat(s string) float64 {
	val, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return val
}

func ParseInt(s string) int {
	val, _ := strconv.Atoi(strings.TrimSpace(s))
	return val
}
