package vocab

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	v, err := New([]string{"[UNK]", "hello", "world"}, "[UNK]")
	require.NoError(t, err)

	assert.Equal(t, 3, v.Size())
	assert.Equal(t, "[UNK]", v.UnkToken())
	assert.Equal(t, 0, v.UnkID())

	id, ok := v.Lookup("world")
	require.True(t, ok)
	assert.Equal(t, 2, id)

	_, ok = v.Lookup("missing")
	assert.False(t, ok)

	// ToID falls back to the unknown id, Lookup does not.
	assert.Equal(t, 0, v.ToID("missing"))
	assert.Equal(t, 1, v.ToID("hello"))

	tok, ok := v.ToToken(1)
	require.True(t, ok)
	assert.Equal(t, "hello", tok)
	_, ok = v.ToToken(3)
	assert.False(t, ok)
	_, ok = v.ToToken(-1)
	assert.False(t, ok)
}

func TestNewErrors(t *testing.T) {
	_, err := New([]string{"a", "a"}, "")
	assert.Error(t, err, "duplicate tokens must be rejected")

	_, err = New([]string{"a", "b"}, "[UNK]")
	assert.Error(t, err, "unknown token missing from the vocabulary must be rejected")
}

func TestNoUnknownToken(t *testing.T) {
	v, err := New([]string{"a", "b"}, "")
	require.NoError(t, err)
	assert.Equal(t, -1, v.UnkID())
	assert.Equal(t, -1, v.ToID("missing"))
}

func TestFromMap(t *testing.T) {
	v, err := FromMap(map[string]int{"b": 1, "a": 0, "c": 2}, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, v.Tokens())

	_, err = FromMap(map[string]int{"a": 0, "b": 5}, "")
	assert.Error(t, err, "ids outside the dense range must be rejected")

	_, err = FromMap(map[string]int{"a": 0, "b": 0}, "")
	assert.Error(t, err, "colliding ids must be rejected")
}

func TestSaveLoadRoundTrip(t *testing.T) {
	tokens := []string{"[UNK]", "hello", "##lo", "world", "token with spaces"}
	v, err := New(tokens, "[UNK]")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "sub", "vocab.txt")
	require.NoError(t, v.Save(path))

	loaded, err := Load(path, "[UNK]")
	require.NoError(t, err)
	assert.Equal(t, tokens, loaded.Tokens())
	assert.Equal(t, 0, loaded.UnkID())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.txt"), "")
	assert.Error(t, err)
}

func TestLoadEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vocab.txt")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	v, err := Load(path, "")
	require.NoError(t, err)
	assert.Equal(t, 0, v.Size())
}

func TestParseTokens(t *testing.T) {
	tests := []struct {
		name string
		data string
		want []string
	}{
		{"empty", "", nil},
		{"single token no newline", "a", []string{"a"}},
		{"trailing newline dropped", "a\nb\n", []string{"a", "b"}},
		{"no trailing newline", "a\nb", []string{"a", "b"}},
		{"spaces preserved", " a \nb", []string{" a ", "b"}},
		{"lone newline is one empty token", "\n", []string{""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseTokens([]byte(tt.data)))
		})
	}
}
