package fits

import (
	"io"
	"strconv"
	"strings"
)

const (
	// CardSize is the fixed size of one header record in bytes.
	CardSize = 80
	// BlockSize is the FITS block size; the header is padded to a multiple of it.
	BlockSize = 2880
)

// Card is a single 80-byte header record split into its components.
type Card struct {
	Keyword string // bytes 0-7, right-trimmed
	Value   string // text between "=" and any "/" comment, trimmed
	Comment string // text after "/", trimmed
}

// Header is the ordered card table of a primary HDU.
//
// Lookup is by exact keyword match with tolerant surrounding whitespace,
// preserving the matching semantics of a prefix scan over raw cards.
type Header struct {
	cards []Card
	// PaddedSize is the total header size on disk including block padding.
	PaddedSize int64
}

// Get returns the first card with the given keyword.
func (h *Header) Get(keyword string) (Card, bool) {
	for _, c := range h.cards {
		if c.Keyword == keyword {
			return c, true
		}
	}
	return Card{}, false
}

// Int returns the value of keyword parsed as an integer.
func (h *Header) Int(keyword string) (int64, bool) {
	c, ok := h.Get(keyword)
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseInt(c.Value, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Float returns the value of keyword parsed as a float.
func (h *Header) Float(keyword string) (float64, bool) {
	c, ok := h.Get(keyword)
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseFloat(c.Value, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Str returns the raw trimmed value of keyword.
func (h *Header) Str(keyword string) (string, bool) {
	c, ok := h.Get(keyword)
	if !ok {
		return "", false
	}
	return c.Value, true
}

// Len returns the number of cards including the END record.
func (h *Header) Len() int { return len(h.cards) }

func parseCard(raw []byte) Card {
	text := string(raw)
	keyword := strings.TrimRight(text[:8], " ")

	var value, comment string
	if i := strings.IndexByte(text, '='); i >= 0 && i < 10 {
		rest := text[i+1:]
		if j := strings.IndexByte(rest, '/'); j >= 0 {
			comment = strings.TrimSpace(rest[j+1:])
			rest = rest[:j]
		}
		value = strings.TrimSpace(rest)
	}
	return Card{Keyword: keyword, Value: value, Comment: comment}
}

// ParseHeader reads 80-byte cards from r until the END terminator and returns
// the card table. PaddedSize accounts for block padding; the caller must skip
// to that offset before reading the payload.
func ParseHeader(r io.Reader) (*Header, error) {
	h := &Header{}
	buf := make([]byte, CardSize)

	for {
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, formatErr("header terminator not found", err)
		}
		card := parseCard(buf)
		h.cards = append(h.cards, card)
		if card.Keyword == "END" {
			break
		}
		// A primary header of a real map is a few hundred cards at most;
		// a runaway scan means we are not looking at a header.
		if len(h.cards) > 36*1024 {
			return nil, formatErr("header terminator not found", nil)
		}
	}

	rawSize := int64(len(h.cards)) * CardSize
	blocks := (rawSize + BlockSize - 1) / BlockSize
	h.PaddedSize = blocks * BlockSize
	return h, nil
}
