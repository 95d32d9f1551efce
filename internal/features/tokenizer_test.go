package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"uber", "ride", "4821"}, Tokenize("UBER *RIDE #4821"))
	assert.Equal(t, []string{"con", "edison"}, Tokenize("CON EDISON"))
	assert.Empty(t, Tokenize(""))
	assert.Empty(t, Tokenize("   ##  "))
}

func TestNgrams(t *testing.T) {
	tokens := []string{"uber", "ride", "4821"}

	unigrams := Ngrams(tokens, 1)
	assert.Equal(t, []string{"uber", "ride", "4821"}, unigrams)

	bigrams := Ngrams(tokens, 2)
	assert.Contains(t, bigrams, "uber ride")
	assert.Contains(t, bigrams, "ride 4821")
	assert.Len(t, bigrams, 5)

	assert.Empty(t, Ngrams(nil, 2))
}
