// Package card identifies players by the UID of their RFID card.
package card

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidID is returned when a card identifier is empty or not hexadecimal
var ErrInvalidID = errors.New("invalid card id")

// ID is a normalized, uppercase hexadecimal card identifier
type ID string

// None is the zero ID, meaning no card is bound
const None ID = ""

// Normalize converts raw reader output into an ID. Whitespace and the usual
// UID separators (':', '-', ' ') are stripped before validation.
func Normalize(raw string) (ID, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ':', '-', ' ', '\t', '\r', '\n':
			return -1
		}
		return r
	}, raw)

	cleaned = strings.TrimPrefix(strings.TrimPrefix(cleaned, "0x"), "0X")
	if cleaned == "" {
		return None, fmt.Errorf("%w: empty", ErrInvalidID)
	}

	for _, r := range cleaned {
		if !isHex(r) {
			return None, fmt.Errorf("%w: %q", ErrInvalidID, raw)
		}
	}

	return ID(strings.ToUpper(cleaned)), nil
}

// FromUID renders a raw UID as two uppercase hex digits per byte
func FromUID(uid []byte) ID {
	return ID(strings.ToUpper(hex.EncodeToString(uid)))
}

// Matches reports whether other names the same card. Both sides are
// compared case-insensitively so server payloads need no pre-normalization.
func (id ID) Matches(other string) bool {
	return id != None && strings.EqualFold(string(id), strings.TrimSpace(other))
}

// IsZero reports whether no card is bound
func (id ID) IsZero() bool {
	return id == None
}

func (id ID) String() string {
	return string(id)
}

func isHex(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}
