// Package gameid generates identifiers for tables and hands: a short prefix
// followed by a UUIDv7 encoded as 26 characters of Crockford base32, so IDs
// sort by creation time.
package gameid

import (
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
)

const alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

// Prefixes used across the engine.
const (
	Table = "tbl"
	Hand  = "hand"
	Agent = "agt"
)

// New returns prefix_<base32 uuidv7>.
func New(prefix string) string {
	id, err := uuid.NewV7()
	if err != nil {
		// NewV7 only fails when the system entropy source does.
		id = uuid.New()
	}
	return join(prefix, id)
}

// FromReader builds a random (v4) ID from r, for reproducible IDs in
// simulations and tests.
func FromReader(prefix string, r io.Reader) (string, error) {
	id, err := uuid.NewRandomFromReader(r)
	if err != nil {
		return "", fmt.Errorf("generate id: %w", err)
	}
	return join(prefix, id), nil
}

func join(prefix string, id uuid.UUID) string {
	if prefix == "" {
		return encode(id)
	}
	return prefix + "_" + encode(id)
}

func encode(id uuid.UUID) string {
	out := make([]byte, 26)
	hi := binary.BigEndian.Uint64(id[:8])
	lo := binary.BigEndian.Uint64(id[8:])
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = alphabet[lo&0x1f]
		lo = lo>>5 | hi<<59
		hi >>= 5
	}
	return string(out)
}

// Validate checks the shape of an ID produced by New or FromReader.
func Validate(id string) error {
	body := id
	if i := strings.LastIndexByte(id, '_'); i >= 0 {
		body = id[i+1:]
	}
	if len(body) != 26 {
		return fmt.Errorf("id body must be 26 characters, got %d", len(body))
	}
	if body[0] > '7' {
		return fmt.Errorf("id first character must be 0-7, got %c", body[0])
	}
	for i := 0; i < len(body); i++ {
		if strings.IndexByte(alphabet, body[i]) < 0 {
			return fmt.Errorf("invalid character %c at position %d", body[i], i)
		}
	}
	return nil
}
