package record

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode_RoundTrip(t *testing.T) {
	in := []Chunk{
		{Author: "Science_fitness_book", Text: "Protein synthesis peaks 24–48h after training."},
		{Author: "Science_fitness_book", Text: "Müller & Søren: <RPE> 8 → 9"},
		{Author: "The Lean Muscle Diet PDF", Text: "line one\nline two\t\"quoted\""},
	}

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, in))

	out, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestEncode_LiteralNonASCII(t *testing.T) {
	data, err := Marshal([]Chunk{{Author: "café", Text: "筋トレ <b>&</b>"}})
	require.NoError(t, err)

	s := string(data)
	assert.Contains(t, s, "café")
	assert.Contains(t, s, "筋トレ <b>&</b>")
	assert.NotContains(t, s, `\u`)
}

func TestEncode_Layout(t *testing.T) {
	data, err := Marshal([]Chunk{{Author: "a", Text: "b"}})
	require.NoError(t, err)

	want := "[\n    {\n        \"author\": \"a\",\n        \"text\": \"b\"\n    }\n]\n"
	assert.Equal(t, want, string(data))
}

func TestEncode_EmptyCollection(t *testing.T) {
	data, err := Marshal(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))

	out, err := Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestDecode_Invalid(t *testing.T) {
	_, err := Decode(strings.NewReader(`{"author": 1}`))
	assert.Error(t, err)
}
