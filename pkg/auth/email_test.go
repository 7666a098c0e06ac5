package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/authflow/pkg/auth"
)

func TestNormalizeEmail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"trims and lowers", "  User@Example.COM\t", "user@example.com"},
		{"already normal", "a@b.com", "a@b.com"},
		{"composes unicode", "jose\u0301@Example.com", "jos\u00e9@example.com"},
		{"empty", "   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, auth.NormalizeEmail(tt.in))
		})
	}
}

func TestBcryptHasher(t *testing.T) {
	t.Parallel()

	h := auth.NewBcryptHasher(bcrypt.MinCost)

	hash, err := h.Hash("hello")
	require.NoError(t, err)

	assert.NoError(t, h.Compare(hash, "hello"))
	assert.ErrorIs(t, h.Compare(hash, "Hello"), auth.ErrInvalidCredentials)

	err = h.Compare([]byte("not-a-hash"), "hello")
	require.Error(t, err)
	assert.NotErrorIs(t, err, auth.ErrInvalidCredentials)

	// cost below the minimum is clamped rather than rejected
	low := auth.NewBcryptHasher(1)
	hash, err = low.Hash("hello")
	require.NoError(t, err)
	cost, err := bcrypt.Cost(hash)
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost, cost)
}
