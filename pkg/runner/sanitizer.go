package runner

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	// DefaultMaxInputSize is 4KB (conservative default)
	DefaultMaxInputSize = 4096
	// EnvMaxInputSize is the environment variable to override the default
	EnvMaxInputSize = "FOLIO_MAX_INPUT_SIZE"
)

var (
	ErrInputTooLarge = errors.New("input exceeds maximum allowed size")
	ErrInvalidUTF8   = errors.New("input contains invalid UTF-8 sequences")
	ErrInvalidChoice = errors.New("no such choice")
)

// SanitizeInput enforces the size limit, validates UTF-8 and strips control characters
// other than newline, tab and carriage return so that they never reach the terminal or logs.
func SanitizeInput(input string) (string, error) {
	if limit := maxInputSize(); len(input) > limit {
		return "", fmt.Errorf("%w: size=%d limit=%d", ErrInputTooLarge, len(input), limit)
	}
	if !utf8.ValidString(input) {
		return "", ErrInvalidUTF8
	}
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && r != '\n' && r != '\t' && r != '\r' {
			return -1
		}
		return r
	}, input), nil
}

// ParseChoice maps a reader's answer to a 0-based choice index. Answers are 1-based
// numbers or the exact choice ID.
func ParseChoice(answer string, ids []string) (int, error) {
	answer = strings.TrimSpace(answer)
	if n, err := strconv.Atoi(answer); err == nil {
		if n < 1 || n > len(ids) {
			return 0, fmt.Errorf("%w: %d (pick 1-%d)", ErrInvalidChoice, n, len(ids))
		}
		return n - 1, nil
	}
	for i, id := range ids {
		if id == answer {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidChoice, answer)
}

func maxInputSize() int {
	if val := os.Getenv(EnvMaxInputSize); val != "" {
		if size, err := strconv.Atoi(val); err == nil && size > 0 {
			return size
		}
	}
	return DefaultMaxInputSize
}
