package model

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

const flipFile = `# first session
H T T h
heads,tails, 1 0 true false   # trailing comment
HHTT
`

func TestTokenReader(t *testing.T) {
	assert := assert.New(t)

	obs, err := TokenReader{}.ReadObservations([]byte(flipFile))
	assert.NoError(err)
	assert.Equal([]bool{
		true, false, false, true,
		true, false, true, false, true, false,
		true, true, false, false,
	}, obs)

	obs, err = TokenReader{}.ReadObservations([]byte(""))
	assert.NoError(err)
	assert.Empty(obs)

	_, err = TokenReader{}.ReadObservations([]byte("H T HX"))
	assert.Error(err)
	_, err = TokenReader{}.ReadObservations([]byte("2"))
	assert.Error(err)
}

func TestFieldReader(t *testing.T) {
	assert := assert.New(t)

	fr := NewFieldReader("yes, NO\n# skip me\n TRUE")
	assert.Equal([]string{"yes", "NO", "TRUE"}, fr.Fields)

	for _, exp := range []string{"yes", "NO", "TRUE"} {
		tok, err := fr.Read()
		assert.NoError(err)
		assert.Equal(exp, tok)
	}

	_, err := fr.Read()
	assert.Equal(io.EOF, err)
}
