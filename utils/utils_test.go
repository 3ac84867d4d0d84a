package utils

import (
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIDFormat(t *testing.T) {
	id := NewID()

	re := regexp.MustCompile(`^\d{13}-[0-9a-z]{9}$`)
	assert.Regexp(t, re, id)

	ms, err := strconv.ParseInt(strings.SplitN(id, "-", 2)[0], 10, 64)
	require.NoError(t, err)
	assert.Greater(t, ms, int64(1_700_000_000_000))
}

func TestNewIDSuffixVaries(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		seen[NewID()] = true
	}
	// timestamps may collide within a millisecond; suffixes should not
	assert.Greater(t, len(seen), 45)
}

func TestGenerateRandomStringLength(t *testing.T) {
	assert.Len(t, GenerateRandomString(16), 16)
	assert.Empty(t, GenerateRandomString(0))
}

func TestParseHelpersDefaultToZero(t *testing.T) {
	assert.Equal(t, 12.5, ParseFloat("12.5"))
	assert.Equal(t, 12.5, ParseFloat("  12.5 "))
	assert.Equal(t, 0.0, ParseFloat("abc"))
	assert.Equal(t, 0.0, ParseFloat(""))

	assert.Equal(t, 42, ParseInt("42"))
	assert.Equal(t, 0, ParseInt("4.2"))
	assert.Equal(t, 0, ParseInt("n/a"))
}
