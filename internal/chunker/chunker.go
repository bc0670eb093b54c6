package chunker

import (
	"errors"
	"fmt"

	"github.com/dgallion1/docchunk/internal/tokenizer"
)

// Config controls chunking behavior.
type Config struct {
	ChunkSize    int // Maximum tokens per chunk.
	ChunkOverlap int // Tokens repeated between consecutive chunks.
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		ChunkSize:    500,
		ChunkOverlap: 50,
	}
}

// ErrConfiguration is matched by every ConfigurationError.
var ErrConfiguration = errors.New("invalid chunk configuration")

// ConfigurationError reports window parameters that cannot produce progress.
type ConfigurationError struct {
	ChunkSize    int
	ChunkOverlap int
	Reason       string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("chunk config size=%d overlap=%d: %s", e.ChunkSize, e.ChunkOverlap, e.Reason)
}

func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

// Validate rejects configs whose stride would be zero or negative.
func (c Config) Validate() error {
	var reason string
	switch {
	case c.ChunkSize <= 0:
		reason = "chunk size must be positive"
	case c.ChunkOverlap < 0:
		reason = "overlap must not be negative"
	case c.ChunkOverlap >= c.ChunkSize:
		reason = "overlap must be smaller than chunk size"
	default:
		return nil
	}
	return &ConfigurationError{ChunkSize: c.ChunkSize, ChunkOverlap: c.ChunkOverlap, Reason: reason}
}

// Stride is the distance between successive window starts.
func (c Config) Stride() int {
	return c.ChunkSize - c.ChunkOverlap
}

// Window is a half-open token range [Start, End).
type Window struct {
	Start int
	End   int
}

// Windows lays out the token windows for a sequence of n tokens.
// The last window always ends at n; no window is emitted for n == 0.
func Windows(n int, cfg Config) ([]Window, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var out []Window
	stride := cfg.Stride()
	for start := 0; start < n; start += stride {
		end := min(start+cfg.ChunkSize, n)
		out = append(out, Window{Start: start, End: end})
		if end == n {
			break
		}
	}
	return out, nil
}

// Chunk encodes text, slides a window of cfg.ChunkSize tokens over it with
// cfg.ChunkOverlap tokens of overlap, and returns the decoded windows in order.
func Chunk(text string, tok tokenizer.Tokenizer, cfg Config) ([]string, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	tokens, err := tok.Encode(text)
	if err != nil {
		return nil, err
	}
	return ChunkTokens(tokens, tok, cfg)
}

// ChunkTokens is Chunk for text that has already been encoded with tok.
func ChunkTokens(tokens []int, tok tokenizer.Tokenizer, cfg Config) ([]string, error) {
	windows, err := Windows(len(tokens), cfg)
	if err != nil {
		return nil, err
	}

	chunks := make([]string, 0, len(windows))
	for _, w := range windows {
		part, err := decodeBounded(tok, tokens[w.Start:w.End], cfg.ChunkSize)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, part)
	}
	return chunks, nil
}

// decodeBounded decodes a window, trimming tokens off its tail while the
// decoded text re-encodes to more than limit tokens. BPE vocabularies can
// inflate a window whose cut lands inside a multibyte character.
func decodeBounded(tok tokenizer.Tokenizer, window []int, limit int) (string, error) {
	for end := len(window); ; end-- {
		text, err := tok.Decode(window[:end])
		if err != nil {
			return "", err
		}
		if end <= 1 {
			return text, nil
		}
		again, err := tok.Encode(text)
		if err != nil {
			return "", err
		}
		if len(again) <= limit {
			return text, nil
		}
	}
}
