package runner

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeInput(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{"Plain", "2", "2", nil},
		{"Strips ANSI escape", "\x1b[31m1", "[31m1", nil},
		{"Keeps whitespace", "a\tb\n", "a\tb\n", nil},
		{"Invalid UTF-8", "\xff", "", ErrInvalidUTF8},
		{"Over limit", strings.Repeat("a", DefaultMaxInputSize+1), "", ErrInputTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SanitizeInput(tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSanitizeInput_EnvLimit(t *testing.T) {
	t.Setenv(EnvMaxInputSize, "3")
	_, err := SanitizeInput("abcd")
	assert.ErrorIs(t, err, ErrInputTooLarge)
}

func TestParseChoice(t *testing.T) {
	ids := []string{"left", "right"}

	idx, err := ParseChoice(" 2 ", ids)
	require.NoError(t, err)
	assert.Equal(t, 1, idx)

	idx, err = ParseChoice("left", ids)
	require.NoError(t, err)
	assert.Equal(t, 0, idx)

	_, err = ParseChoice("0", ids)
	assert.ErrorIs(t, err, ErrInvalidChoice)
	_, err = ParseChoice("up", ids)
	assert.ErrorIs(t, err, ErrInvalidChoice)
}
