package validator_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authflow/pkg/validator"
)

func TestApply(t *testing.T) {
	t.Parallel()

	t.Run("all rules pass", func(t *testing.T) {
		t.Parallel()
		err := validator.Apply(
			validator.Required("name", "john", "required"),
			validator.EmailShape("email", "a@b.com", "invalid"),
		)
		assert.NoError(t, err)
	})

	t.Run("collects every failure", func(t *testing.T) {
		t.Parallel()
		err := validator.Apply(
			validator.Required("name", "  ", "name required"),
			validator.EmailShape("email", "nope", "bad email"),
			validator.MinLenTrimmed("password", "hi", 3, "too short"),
		)
		require.Error(t, err)

		errs := validator.ExtractValidationErrors(err)
		require.Len(t, errs, 3)
		assert.Equal(t, []string{"bad email"}, errs.Get("email"))
		assert.True(t, errs.Has("password"))
		assert.False(t, errs.Has("missing"))
		assert.Equal(t, "validation failed: name: name required; email: bad email; password: too short", err.Error())
	})
}

func TestExtractValidationErrors(t *testing.T) {
	t.Parallel()

	assert.Nil(t, validator.ExtractValidationErrors(nil))
	assert.Nil(t, validator.ExtractValidationErrors(errors.New("plain")))

	ve := validator.ValidationErrors{{Field: "email", Message: "bad"}}
	wrapped := fmt.Errorf("signup: %w", ve)
	assert.Equal(t, ve, validator.ExtractValidationErrors(wrapped))
	assert.True(t, validator.IsValidationError(wrapped))
	assert.False(t, validator.IsValidationError(errors.New("plain")))
}

func TestMinLenTrimmed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value string
		valid bool
	}{
		{"", false},
		{"hi", false},
		{"  hi  ", false},
		{"abc", true},
		{" abc ", true},
		{"héé", true},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Parallel()
			err := validator.Apply(validator.MinLenTrimmed("password", tt.value, 3, "short"))
			assert.Equal(t, tt.valid, err == nil)
		})
	}
}

func TestMaxBytes(t *testing.T) {
	t.Parallel()

	assert.NoError(t, validator.Apply(validator.MaxBytes("password", strings.Repeat("a", 72), 72, "long")))
	assert.Error(t, validator.Apply(validator.MaxBytes("password", strings.Repeat("a", 73), 72, "long")))
}

func TestEmailShape(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value string
		valid bool
	}{
		{"a@b.com", true},
		{"a@b", true},
		{"first.last+tag@example.co.uk", true},
		{"\"odd@local\"@example.com", true},
		{"", false},
		{"plain", false},
		{"@example.com", false},
		{"user@", false},
		{"us er@example.com", false},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Parallel()
			err := validator.Apply(validator.EmailShape("email", tt.value, "invalid"))
			assert.Equal(t, tt.valid, err == nil)
		})
	}
}
