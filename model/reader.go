package model

import (
	"io"
	"strings"

	"github.com/pkg/errors"
)

// FieldReader is just a simple reader for basic file formats. Fields are
// separated by whitespace or commas, and anything after a # on a line is a
// comment.
type FieldReader struct {
	Pos    int
	Fields []string
}

// NewFieldReader constructs a new field reader around the given data
func NewFieldReader(data string) *FieldReader {
	lines := strings.Split(data, "\n")
	fields := make([]string, 0, len(lines))
	for _, ln := range lines {
		if i := strings.IndexByte(ln, '#'); i >= 0 {
			ln = ln[:i]
		}
		fields = append(fields, strings.FieldsFunc(ln, func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t' || r == '\r'
		})...)
	}
	return &FieldReader{0, fields}
}

// Read returns the next field/token
func (fr *FieldReader) Read() (string, error) {
	if fr.Pos >= len(fr.Fields) {
		return "", io.EOF
	}
	p := fr.Pos
	fr.Pos++
	return fr.Fields[p], nil
}

// ParseOutcome converts a single token to an observation. Heads/success
// spellings are H, heads, 1, true, yes (any case); tails/failure spellings
// are T, tails, 0, false, no.
func ParseOutcome(tok string) (bool, error) {
	switch strings.ToLower(tok) {
	case "h", "heads", "1", "true", "yes":
		return true, nil
	case "t", "tails", "0", "false", "no":
		return false, nil
	}
	return false, errors.Errorf("Unknown outcome %q", tok)
}

// TokenReader reads observations written as tokens, one outcome per token.
// A token made only of H/T letters (like HHTHT) is expanded to one outcome
// per letter.
type TokenReader struct{}

// ReadObservations implements the model.Reader interface
func (r TokenReader) ReadObservations(data []byte) ([]bool, error) {
	fr := NewFieldReader(string(data))
	obs := make([]bool, 0, len(fr.Fields))

	for {
		tok, err := fr.Read()
		if err == io.EOF {
			break
		}

		if run, ok := flipRun(tok); ok {
			obs = append(obs, run...)
			continue
		}

		o, err := ParseOutcome(tok)
		if err != nil {
			return nil, errors.Wrapf(err, "Bad token %d", fr.Pos)
		}
		obs = append(obs, o)
	}

	return obs, nil
}

// flipRun expands a run like "HTTH" (two or more letters)
func flipRun(tok string) ([]bool, bool) {
	if len(tok) < 2 {
		return nil, false
	}
	run := make([]bool, len(tok))
	for i, c := range tok {
		switch c {
		case 'H', 'h':
			run[i] = true
		case 'T', 't':
			run[i] = false
		default:
			return nil, false
		}
	}
	return run, true
}
