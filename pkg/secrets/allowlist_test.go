package secrets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeAllowlist(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "allowlist.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadAllowlist(t *testing.T) {
	path := writeAllowlist(t, `[allowlist]
regexes = [
  '''DEMO_API_KEY''',
  '''EXAMPLE_SECRET_.*'''
]
stopwords = ['''dummy''']
`)

	allowlist, err := LoadAllowlist(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"DEMO_API_KEY", "EXAMPLE_SECRET_.*"}, allowlist.Regexes)
	assert.Equal(t, []string{"dummy"}, allowlist.StopWords)
	assert.False(t, allowlist.Empty())
}

func TestLoadAllowlist_MissingOrUnset(t *testing.T) {
	for _, path := range []string{"", filepath.Join(t.TempDir(), "nope.toml")} {
		allowlist, err := LoadAllowlist(path)
		require.NoError(t, err)
		assert.True(t, allowlist.Empty())
	}
}

func TestLoadAllowlist_Errors(t *testing.T) {
	_, err := LoadAllowlist(writeAllowlist(t, "[allowlist\nregexes = 1"))
	assert.ErrorIs(t, err, ErrInvalidTOML)

	_, err = LoadAllowlist(writeAllowlist(t, "[allowlist]\nregexes = ['''(unclosed''']\n"))
	assert.ErrorIs(t, err, ErrInvalidRegex)
}

func TestAllowlist_EmptyNil(t *testing.T) {
	var a *Allowlist
	assert.True(t, a.Empty())
}
