package common

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Ruby Chakra Pendant":    "ruby-chakra-pendant",
		"  Antique Brass Lamp  ": "antique-brass-lamp",
		"24K Gold -- Necklace!!": "24k-gold-necklace",
		"Gift Box (Set of 3)":    "gift-box-set-of-3",
		"---":                    "",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), "input %q", in)
	}
}

func TestUUIDint64Unique(t *testing.T) {
	seen := make(map[int64]bool)
	for i := 0; i < 1000; i++ {
		id := UUIDint64()
		require.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("Admin@123")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "Admin@123"))
	assert.False(t, CheckPassword(hash, "admin@123"))
	assert.False(t, CheckPassword(hash, ""))
}

func TestNewOrderNo(t *testing.T) {
	no := NewOrderNo()
	assert.True(t, strings.HasPrefix(no, "NX"))
	assert.Len(t, no, 20)
}
