// Package ident generates the unique tokens used to name scratch files.
package ident

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Size is the width of a token in bytes.
const Size = 16

// Token is a 16-byte unique identifier.
type Token [Size]byte

// Generate returns a fresh random token.
func Generate() (Token, error) {
	u, err := uuid.NewRandom()
	if err != nil {
		return Token{}, fmt.Errorf("generate token: %w", err)
	}
	return Token(u), nil
}

// String renders the token as XXXXXXXX-XXXX-XXXX-XXXX-XXXXXXXXXXXX in upper-case hex.
func (t Token) String() string {
	return strings.ToUpper(uuid.UUID(t).String())
}
