package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestDetectedPhrase_Valid tests defensive validation of detector output
func TestDetectedPhrase_Valid(t *testing.T) {
	tests := []struct {
		name   string
		phrase DetectedPhrase
		count  int
		want   bool
	}{
		{"in range", DetectedPhrase{Words: []string{"george", "washington"}, StartIndex: 0, EndIndex: 1}, 2, true},
		{"mid list", DetectedPhrase{Words: []string{"new", "york"}, StartIndex: 1, EndIndex: 2}, 4, true},
		{"negative start", DetectedPhrase{Words: []string{"a"}, StartIndex: -1, EndIndex: -1}, 3, false},
		{"end before start", DetectedPhrase{Words: []string{"a", "b"}, StartIndex: 2, EndIndex: 1}, 3, false},
		{"end out of range", DetectedPhrase{Words: []string{"a", "b"}, StartIndex: 1, EndIndex: 2}, 2, false},
		{"word count mismatch", DetectedPhrase{Words: []string{"a"}, StartIndex: 0, EndIndex: 1}, 3, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.phrase.Valid(tt.count))
		})
	}
}

// TestValidPhrases tests malformed phrases are filtered, order preserved
func TestValidPhrases(t *testing.T) {
	in := []DetectedPhrase{
		{Words: []string{"george", "washington"}, StartIndex: 0, EndIndex: 1},
		{Words: []string{"bad"}, StartIndex: 5, EndIndex: 5},
		{Words: []string{"big", "apple"}, StartIndex: 2, EndIndex: 3},
	}

	out := ValidPhrases(in, 4)

	assert.Len(t, out, 2)
	assert.Equal(t, "george washington", out[0].Text())
	assert.Equal(t, "big apple", out[1].Text())
}

// TestDetectedPhrase_Intersects tests span membership
func TestDetectedPhrase_Intersects(t *testing.T) {
	p := DetectedPhrase{StartIndex: 1, EndIndex: 3}
	assert.False(t, p.Intersects(0))
	assert.True(t, p.Intersects(1))
	assert.True(t, p.Intersects(3))
	assert.False(t, p.Intersects(4))
}
