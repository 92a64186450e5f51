// Package tokenize builds Documents from raw text.
//
// Builder is the default ports.TokenizationBuilder. It splits text into word tokens
// (runs of letters, digits and hyphens) and single-rune punctuation tokens, records
// byte offsets and closes sentences after terminal punctuation. A tokenization supplied
// by the caller is checked against the text instead.
package tokenize
