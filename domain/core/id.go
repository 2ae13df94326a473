package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// tokenLength is the number of UUID characters kept in an upload token.
const tokenLength = 8

// Token is the opaque handle the analysis backend returns for an uploaded
// dataset. Every follow-up analysis request is keyed by it.
type Token string

// NewToken creates a short random token from a v4 UUID
func NewToken() Token {
	return Token(uuid.New().String()[:tokenLength])
}

// String returns the string representation
func (t Token) String() string {
	return string(t)
}

// IsEmpty checks if the token is empty
func (t Token) IsEmpty() bool {
	return t == ""
}

// ParseToken validates a token received over the wire. Tokens end up in URL
// paths, so separators and whitespace are rejected.
func ParseToken(s string) (Token, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("%w: token cannot be empty", ErrInvalidToken)
	}
	if strings.ContainsAny(s, "/?# \t") {
		return "", fmt.Errorf("%w: %q", ErrInvalidToken, s)
	}
	return Token(s), nil
}
