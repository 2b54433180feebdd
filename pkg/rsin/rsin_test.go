package rsin

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValid(t *testing.T) {
	testCases := []struct {
		name     string
		value    string
		expected bool
	}{
		{name: "valid", value: "517439943", expected: true},
		{name: "valid other", value: "423182687", expected: true},
		{name: "wrong check digit", value: "517439944", expected: false},
		{name: "too short", value: "51743994", expected: false},
		{name: "too long", value: "5174399430", expected: false},
		{name: "letters", value: "51743994a", expected: false},
		{name: "empty", value: "", expected: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Valid(tc.value))
		})
	}
}

func TestRegister(t *testing.T) {
	v := validator.New()
	require.NoError(t, Register(v))

	assert.NoError(t, v.Var("517439943", Tag))
	assert.Error(t, v.Var("123456789", Tag))
}
