package tokenizer

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"
)

// Encoding scheme names accepted by New.
const (
	CL100K = "cl100k_base"
	P50K   = "p50k_base"
	R50K   = "r50k_base"
	Runes  = "runes"
)

// DefaultEncoding is the scheme used when none is configured.
const DefaultEncoding = CL100K

// ErrEncoding is matched by every EncodingError.
var ErrEncoding = errors.New("encoding error")

// EncodingError reports text that could not be converted to or from tokens.
type EncodingError struct {
	Scheme string
	Err    error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("tokenizer %s: %v", e.Scheme, e.Err)
}

func (e *EncodingError) Unwrap() error { return e.Err }

func (e *EncodingError) Is(target error) bool { return target == ErrEncoding }

// Tokenizer converts text to token IDs and back under one fixed vocabulary.
type Tokenizer interface {
	Encode(text string) ([]int, error)
	Decode(tokens []int) (string, error)
	Name() string
}

var loaderOnce sync.Once

// New returns the tokenizer for a named scheme.
func New(name string) (Tokenizer, error) {
	switch name {
	case "":
		name = DefaultEncoding
	case Runes:
		return RuneTokenizer{}, nil
	}

	// BPE ranks come from the embedded offline loader so runs never hit the network.
	loaderOnce.Do(func() {
		tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
	})

	enc, err := tiktoken.GetEncoding(name)
	if err != nil {
		return nil, &EncodingError{Scheme: name, Err: err}
	}
	return &BPETokenizer{name: name, enc: enc}, nil
}

// BPETokenizer wraps a tiktoken encoding.
type BPETokenizer struct {
	name string
	enc  *tiktoken.Tiktoken
}

func (t *BPETokenizer) Name() string { return t.name }

// Encode tokenizes text. Special tokens such as <|endoftext|> are disallowed,
// so text containing them fails instead of being silently mapped.
func (t *BPETokenizer) Encode(text string) (tokens []int, err error) {
	defer func() {
		// tiktoken panics on disallowed special tokens.
		if r := recover(); r != nil {
			tokens = nil
			err = &EncodingError{Scheme: t.name, Err: fmt.Errorf("%v", r)}
		}
	}()
	return t.enc.Encode(text, nil, []string{"all"}), nil
}

// Decode returns the text for tokens. A token run that ends or starts inside
// a multibyte character decodes to partial bytes; those are replaced with
// U+FFFD so the result is always valid UTF-8.
func (t *BPETokenizer) Decode(tokens []int) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = &EncodingError{Scheme: t.name, Err: fmt.Errorf("%v", r)}
		}
	}()
	return strings.ToValidUTF8(t.enc.Decode(tokens), "\uFFFD"), nil
}

// RuneTokenizer treats every Unicode code point as one token. It round-trips
// valid UTF-8 exactly, which makes window arithmetic easy to reason about.
type RuneTokenizer struct{}

func (RuneTokenizer) Name() string { return Runes }

func (RuneTokenizer) Encode(text string) ([]int, error) {
	tokens := make([]int, 0, utf8.RuneCountInString(text))
	for _, r := range text {
		tokens = append(tokens, int(r))
	}
	return tokens, nil
}

func (RuneTokenizer) Decode(tokens []int) (string, error) {
	buf := make([]rune, len(tokens))
	for i, tok := range tokens {
		if tok < 0 || tok > utf8.MaxRune {
			return "", &EncodingError{Scheme: Runes, Err: fmt.Errorf("token %d out of range", tok)}
		}
		buf[i] = rune(tok)
	}
	return string(buf), nil
}
