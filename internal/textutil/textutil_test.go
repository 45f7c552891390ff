package textutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRedact(t *testing.T) {
	assert.Equal(t, "token *** rejected, *** again", Redact("token abc rejected, abc again", "abc"))
	assert.Equal(t, "nothing to hide", Redact("nothing to hide", ""))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abc...", Truncate("abcdef", 3))
}

func TestFirstLine(t *testing.T) {
	assert.Equal(t, "key", FirstLine("key  \nsecond"))
	assert.Equal(t, "key", FirstLine("key\r\n"))
	assert.Equal(t, "only", FirstLine("only"))
}
