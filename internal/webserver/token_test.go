package webserver

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexchakra/showcase/internal/domain"
)

const testSecret = "unit-test-secret"

func TestIssueAndParseToken(t *testing.T) {
	cust := &domain.Customer{
		ID:    12345,
		Name:  "Asha",
		Email: "asha@example.com",
		Role:  domain.RoleCustomer,
	}

	token, err := IssueToken(testSecret, time.Hour, cust)
	require.NoError(t, err)

	claims, err := ParseToken(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, int64(12345), claims.Uid)
	assert.Equal(t, "asha@example.com", claims.Subject)
	assert.Equal(t, domain.RoleCustomer, claims.Role)
}

func TestParseTokenWrongSecret(t *testing.T) {
	cust := &domain.Customer{ID: 1, Email: "x@example.com", Role: domain.RoleAdmin}
	token, err := IssueToken(testSecret, time.Hour, cust)
	require.NoError(t, err)

	_, err = ParseToken("another-secret", token)
	assert.Error(t, err)
}

func TestParseTokenExpired(t *testing.T) {
	cust := &domain.Customer{ID: 1, Email: "x@example.com"}
	token, err := IssueToken(testSecret, -time.Minute, cust)
	require.NoError(t, err)

	_, err = ParseToken(testSecret, token)
	assert.Error(t, err)
}
