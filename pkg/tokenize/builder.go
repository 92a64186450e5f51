package tokenize

import (
	"context"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/aretw0/strata/pkg/domain"
)

// Builder creates documents with their structural fields populated.
type Builder struct {
	terminators map[string]bool
}

// Option configures a Builder.
type Option func(*Builder)

// WithSentenceTerminators replaces the tokens that close a sentence.
func WithSentenceTerminators(tokens ...string) Option {
	return func(b *Builder) {
		b.terminators = make(map[string]bool, len(tokens))
		for _, t := range tokens {
			b.terminators[t] = true
		}
	}
}

// NewBuilder creates a Builder that ends sentences on ".", "!" and "?".
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{terminators: map[string]bool{".": true, "!": true, "?": true}}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build returns a document with no views. When tok is nil the text is tokenized;
// otherwise tok is completed and validated against text.
func (b *Builder) Build(ctx context.Context, corpusID, docID, text string, tok *domain.Tokenization) (*domain.Document, error) {
	if docID == "" {
		return nil, fmt.Errorf("build document: empty document id")
	}
	if corpusID == "" {
		corpusID = domain.DefaultCorpus
	}
	if !utf8.ValidString(text) {
		return nil, fmt.Errorf("build document %s: %w", docID, domain.ErrInvalidText)
	}

	var t domain.Tokenization
	if tok == nil {
		t = b.Tokenize(text)
	} else {
		var err error
		if t, err = b.complete(text, *tok); err != nil {
			return nil, err
		}
	}
	return domain.NewDocument(corpusID, docID, text, t), nil
}

// Tokenize splits text into tokens with byte offsets and sentence boundaries.
// Bytes that are not valid UTF-8 separate tokens and are never part of one.
func (b *Builder) Tokenize(text string) domain.Tokenization {
	t := domain.Tokenization{Tokens: []string{}, Offsets: []domain.Span{}, SentenceEnds: []int{}}

	start := -1
	flush := func(end int) {
		if start < 0 {
			return
		}
		t.Tokens = append(t.Tokens, text[start:end])
		t.Offsets = append(t.Offsets, domain.Span{Start: start, End: end})
		start = -1
	}

	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		end := i + size
		switch {
		case r == utf8.RuneError && size == 1:
			flush(i)
		case isWordRune(r):
			if start < 0 {
				start = i
			}
		case unicode.IsSpace(r):
			flush(i)
		default:
			flush(i)
			t.Tokens = append(t.Tokens, text[i:end])
			t.Offsets = append(t.Offsets, domain.Span{Start: i, End: end})
			if b.terminators[text[i:end]] {
				t.SentenceEnds = append(t.SentenceEnds, len(t.Tokens))
			}
		}
		i = end
	}
	flush(len(text))

	if n := len(t.Tokens); n > 0 && (len(t.SentenceEnds) == 0 || t.SentenceEnds[len(t.SentenceEnds)-1] != n) {
		t.SentenceEnds = append(t.SentenceEnds, n)
	}
	return t
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsNumber(r) || r == '-'
}

// complete fills in missing offsets and sentence ends, then checks every token
// against the text it claims to cover.
func (b *Builder) complete(text string, tok domain.Tokenization) (domain.Tokenization, error) {
	t := domain.Tokenization{
		Tokens:       append([]string(nil), tok.Tokens...),
		Offsets:      append([]domain.Span(nil), tok.Offsets...),
		SentenceEnds: append([]int(nil), tok.SentenceEnds...),
	}

	if len(t.Offsets) == 0 && len(t.Tokens) > 0 {
		offsets, err := align(text, t.Tokens)
		if err != nil {
			return t, err
		}
		t.Offsets = offsets
	}
	if len(t.SentenceEnds) == 0 && len(t.Tokens) > 0 {
		t.SentenceEnds = []int{len(t.Tokens)}
	}

	if err := t.Validate(); err != nil {
		return t, err
	}
	for i, off := range t.Offsets {
		if off.End > len(text) {
			return t, fmt.Errorf("%w: token %d ends at %d past text length %d", domain.ErrInvalidTokenization, i, off.End, len(text))
		}
		if text[off.Start:off.End] != t.Tokens[i] {
			return t, fmt.Errorf("%w: token %d is %q but text has %q", domain.ErrInvalidTokenization, i, t.Tokens[i], text[off.Start:off.End])
		}
	}
	return t, nil
}

// align locates each token in order, searching forward from the previous match.
func align(text string, tokens []string) ([]domain.Span, error) {
	out := make([]domain.Span, len(tokens))
	pos := 0
	for i, tok := range tokens {
		idx := strings.Index(text[pos:], tok)
		if idx < 0 || tok == "" {
			return nil, fmt.Errorf("%w: token %d %q not found in text after offset %d", domain.ErrInvalidTokenization, i, tok, pos)
		}
		start := pos + idx
		out[i] = domain.Span{Start: start, End: start + len(tok)}
		pos = start + len(tok)
	}
	return out, nil
}
