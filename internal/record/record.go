package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// Chunk is one labelled text window, ready for embedding.
type Chunk struct {
	Author string `json:"author"` // Label of the source document.
	Text   string `json:"text"`   // Decoded window text.
}

// Indent is the per-level indentation of the written collection.
const Indent = "    "

// Encode writes the collection as an indented JSON array. Non-ASCII and
// HTML-significant characters are written literally.
func Encode(w io.Writer, chunks []Chunk) error {
	if chunks == nil {
		chunks = []Chunk{}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", Indent)
	if err := enc.Encode(chunks); err != nil {
		return fmt.Errorf("encode chunks: %w", err)
	}
	return nil
}

// Marshal is Encode into a byte slice.
func Marshal(chunks []Chunk) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, chunks); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode reads a collection written by Encode.
func Decode(r io.Reader) ([]Chunk, error) {
	var chunks []Chunk
	if err := json.NewDecoder(r).Decode(&chunks); err != nil {
		return nil, fmt.Errorf("decode chunks: %w", err)
	}
	return chunks, nil
}
