// Package tokens estimates prompt sizes in model tokens.
package tokens

import (
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
	"github.com/rs/zerolog"
)

const encodingName = "cl100k_base"

// Counter counts tokens with the cl100k_base encoding. When the encoding
// cannot be loaded it falls back to one token per four characters.
type Counter struct {
	once sync.Once
	enc  *tiktoken.Tiktoken
	log  *zerolog.Logger
}

func NewCounter(logger *zerolog.Logger) *Counter {
	return &Counter{log: logger}
}

// NewApproxCounter never loads an encoding.
func NewApproxCounter() *Counter {
	c := &Counter{}
	c.once.Do(func() {})
	return c
}

func (c *Counter) load() {
	enc, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		if c.log != nil {
			c.log.Warn().Err(err).Str("encoding", encodingName).Msg("token encoding unavailable, using estimate")
		}
		return
	}
	c.enc = enc
}

func (c *Counter) Count(text string) int {
	if text == "" {
		return 0
	}
	c.once.Do(c.load)
	if c.enc != nil {
		return len(c.enc.Encode(text, nil, nil))
	}
	return Approx(text)
}

// Approx is the character based estimate.
func Approx(text string) int {
	n := utf8.RuneCountInString(text)
	return (n + 3) / 4
}
