package invocation

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestShortID(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		id := ShortID()
		assert.Len(t, id, ShortIDLength)
		for _, r := range id {
			assert.True(t, strings.ContainsRune(flickrBase58, r), "unexpected rune %q in %s", r, id)
		}
		_, dup := seen[id]
		assert.False(t, dup, "duplicate id %s", id)
		seen[id] = struct{}{}
	}
}

func TestEncodeShort(t *testing.T) {
	assert.Equal(t, strings.Repeat("1", ShortIDLength), encodeShort(uuid.Nil))

	var one uuid.UUID
	one[15] = 1
	assert.Equal(t, strings.Repeat("1", ShortIDLength-1)+"2", encodeShort(one))

	var fiftyEight uuid.UUID
	fiftyEight[15] = 58
	assert.Equal(t, strings.Repeat("1", ShortIDLength-2)+"21", encodeShort(fiftyEight))
}
