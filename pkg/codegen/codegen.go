package codegen

import (
	"crypto/rand"
	"fmt"
	"strings"
)

// Generator produces unguessable gift card codes. Collision checking against
// storage is the caller's job; the generator only guarantees entropy and
// format.
type Generator interface {
	NewCode() (string, error)
}

const (
	charset       = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	groupCount    = 3
	groupLength   = 4
	codePrefix    = "GC"
	codeSeparator = "-"
)

type giftCardCodeGenerator struct{}

func NewGiftCardCodeGenerator() Generator {
	return giftCardCodeGenerator{}
}

// NewCode returns a code of the form GC-XXXX-XXXX-XXXX where X is drawn
// uniformly from A-Z0-9 via crypto/rand.
func (giftCardCodeGenerator) NewCode() (string, error) {
	buf := make([]byte, groupCount*groupLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}

	var b strings.Builder
	b.WriteString(codePrefix)
	for i, r := range buf {
		if i%groupLength == 0 {
			b.WriteString(codeSeparator)
		}
		b.WriteByte(charset[int(r)%len(charset)])
	}
	return b.String(), nil
}

// Normalize maps user input to the stored canonical form: uppercase, no
// surrounding whitespace. Lookups are case-insensitive by normalizing first.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
