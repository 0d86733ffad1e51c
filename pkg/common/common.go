package common

import (
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"
	"unicode"

	"github.com/bwmarrin/snowflake"
	"golang.org/x/crypto/bcrypt"
)

const (
	ENABLED  = "enabled"
	DISABLED = "disabled"
)

var snowflakeNode *snowflake.Node

func init() {
	var err error
	snowflakeNode, err = snowflake.NewNode(rand.New(rand.NewSource(time.Now().UnixNano())).Int63n(1023))
	if err != nil {
		panic(err)
	}
}

// UUIDint64 returns a snowflake-based int64 identifier
func UUIDint64() int64 {
	return snowflakeNode.Generate().Int64()
}

// UUID returns a snowflake identifier in base58 string form
func UUID() string {
	return snowflakeNode.Generate().Base58()
}

// HashPassword hashes a plaintext password with bcrypt
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether the plaintext password matches the bcrypt hash
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// GetSecret reads the token signing secret from the environment with a development fallback
func GetSecret() string {
	if s := os.Getenv("NEXCHAKRA_SECRET"); s != "" {
		return s
	}
	return "nexchakra-dev-secret"
}

// Slugify converts an arbitrary title to a URL slug: lowercase, alnum and dashes only
func Slugify(s string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// NewOrderNo generates a human-readable order number
func NewOrderNo() string {
	return fmt.Sprintf("NX%s%04d", time.Now().Format("20060102150405"), rand.Intn(10000))
}

// InSlice reports whether v is present in list
func InSlice(v string, list []string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
