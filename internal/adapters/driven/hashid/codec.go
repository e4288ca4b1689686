// Package hashid implements driven.IDCodec with hashids, so clients see
// short opaque document ids instead of row ids.
package hashid

import (
	"fmt"
	"strings"

	"github.com/speps/go-hashids/v2"

	"github.com/custodia-labs/glaximini/internal/core/domain"
	"github.com/custodia-labs/glaximini/internal/core/ports/driven"
	"github.com/custodia-labs/glaximini/internal/logger"
)

// Ensure Codec implements the interface.
var _ driven.IDCodec = (*Codec)(nil)

const (
	// DefaultSalt is the salt of every public id issued so far. Changing it
	// invalidates all existing links.
	DefaultSalt = "glaximini"

	// Alphabet leaves out characters that are easily confused when read aloud
	// or typed from a screenshot.
	Alphabet = "abcdefhkmnpqrstuvwxy34578"

	// shortID is the bound below which a check value is appended, so small
	// ids do not produce one or two character public ids.
	shortID = 100
)

// Codec encodes row ids as hashids.
type Codec struct {
	h *hashids.HashID
}

// New creates a codec. An empty salt selects DefaultSalt.
func New(salt string) (*Codec, error) {
	if salt == "" {
		salt = DefaultSalt
	}
	hd := hashids.NewData()
	hd.Salt = salt
	hd.Alphabet = Alphabet

	h, err := hashids.NewWithData(hd)
	if err != nil {
		return nil, fmt.Errorf("creating hashids codec: %w", err)
	}
	return &Codec{h: h}, nil
}

// Encode returns the public id of a row id. Row ids are never negative;
// should one be, the empty string is returned.
func (c *Codec) Encode(id int64) string {
	numbers := []int64{id}
	if id < shortID {
		numbers = append(numbers, id%10)
	}
	s, err := c.h.EncodeInt64(numbers)
	if err != nil {
		logger.Error("encoding id %d: %v", id, err)
		return ""
	}
	return s
}

// Decode returns the row id of a public id. Public ids are case-insensitive.
func (c *Codec) Decode(publicID string) (int64, error) {
	numbers, err := c.h.DecodeInt64WithError(strings.ToLower(strings.TrimSpace(publicID)))
	if err != nil || len(numbers) == 0 {
		return 0, fmt.Errorf("%w: document id %q", domain.ErrInvalidInput, publicID)
	}

	id := numbers[0]
	valid := len(numbers) == 1 && id >= shortID ||
		len(numbers) == 2 && id < shortID && numbers[1] == id%10
	if !valid {
		return 0, fmt.Errorf("%w: document id %q", domain.ErrInvalidInput, publicID)
	}
	return id, nil
}
