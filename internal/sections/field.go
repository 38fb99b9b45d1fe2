// Package sections parses loosely templated model output into labelled fields.
//
// A section runs from "<Label>:" to the start of the nearest other known
// label, not to the next newline, so sections survive missing blank lines.
// Scalar fields that cannot be read from their section fall through an
// ordered chain of looser strategies; list fields keep bullet lines only.
package sections

import (
	"regexp"
	"strings"
)

// Kind is the value shape of a field.
type Kind int

const (
	Scalar Kind = iota
	List
)

// Source names the strategy that produced a scalar value.
type Source string

const (
	SourceNone       Source = ""
	SourceSection    Source = "section"
	SourceRegex      Source = "regex"
	SourceSubstring  Source = "substring"
	SourceVocabulary Source = "vocabulary"
	SourceInferred   Source = "inferred"
	SourceDefault    Source = "default"
	SourceTrailing   Source = "trailing"
)

// Field describes one labelled section of the template.
type Field struct {
	Key   string
	Label string
	Kind  Kind

	// Trailing marks a list section that is conventionally last. When the
	// bounded read yields nothing it is re-read up to the end of the text.
	Trailing bool

	// Vocabulary is the last-resort keyword scan for classification scalars.
	Vocabulary *Vocabulary

	// Infer fills a scalar that no strategy resolved.
	Infer *Inference
}

// Inference derives a scalar from another resolved scalar.
type Inference struct {
	From     string
	Table    map[string]string
	Fallback string
}

func (in *Inference) resolve(source string) (string, Source) {
	if source != "" && in.Table != nil {
		if v, ok := in.Table[strings.ToLower(strings.TrimSpace(source))]; ok {
			return v, SourceInferred
		}
	}
	if in.Fallback != "" {
		return in.Fallback, SourceDefault
	}
	return "", SourceNone
}

type compiledField struct {
	Field
	header *regexp.Regexp
	tier1  []*regexp.Regexp
	loose  *regexp.Regexp
}

func compile(f Field) *compiledField {
	label := regexp.QuoteMeta(strings.TrimSpace(f.Label))
	return &compiledField{
		Field:  f,
		header: regexp.MustCompile(`(?i)` + label + `[*_]*[ \t]*:[*_]*`),
		tier1: []*regexp.Regexp{
			regexp.MustCompile(`(?im)` + label + `[*_]*[ \t]*:[*_ \t]*(\S.*)$`),
			regexp.MustCompile(`(?im)` + label + `[*_]*[ \t]*=[ \t]*(\S.*)$`),
			regexp.MustCompile(`(?im)\b` + label + `[*_]*[ \t]+([\p{L}\p{N}].*)$`),
		},
		loose: regexp.MustCompile(`(?i)` + label),
	}
}
