package tracking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatAndParse(t *testing.T) {
	assert.Equal(t, "CF242026", YearPrefix(2026))
	assert.Equal(t, "CF2420261", Format(2026, 1))
	assert.Equal(t, "CF242026999", Format(2026, 999))

	n, err := Parse("CF24202642")
	require.NoError(t, err)
	assert.Equal(t, Number{Year: 2026, Sequence: 42}, n)
	assert.Equal(t, "CF24202642", n.String())
}

func TestHighestSequence(t *testing.T) {
	numbers := []string{
		"CF2420269",
		"CF24202610",
		"CF242026101",
		"CF242025998",  // other year
		"CF24202600",   // malformed
		"CF2420261234", // too long
		"garbage",
	}

	assert.Equal(t, 101, HighestSequence("CF242026", numbers))
	assert.Equal(t, 998, HighestSequence("CF242025", numbers))
	assert.Equal(t, 0, HighestSequence("CF242027", numbers))
	assert.Equal(t, 0, HighestSequence("CF242026", nil))
}
