package sections

import (
	"regexp"
	"strings"
)

var bulletExpr = regexp.MustCompile(`^\s*(?:[-*•–+]|\d{1,2}[.)])\s+`)

const (
	scalarTrimSet    = " \t[](){}<>*_\"'`"
	separatorTrimSet = " \t:=-–—>|~*_[](){}<>\"'`"
)

// Result holds every expected field. Missing values are empty, never absent.
type Result struct {
	scalars map[string]string
	lists   map[string][]string
	sources map[string]Source
}

// Scalar returns the value for key, or "" when unresolved.
func (r Result) Scalar(key string) string {
	return r.scalars[key]
}

// List returns the bullets for key; never nil for a declared list field.
func (r Result) List(key string) []string {
	if v, ok := r.lists[key]; ok {
		return v
	}
	return []string{}
}

// Source reports which strategy resolved key.
func (r Result) Source(key string) Source {
	return r.sources[key]
}

// Has reports whether key was declared in the parsed template.
func (r Result) Has(key string) bool {
	if _, ok := r.scalars[key]; ok {
		return true
	}
	_, ok := r.lists[key]
	return ok
}

// Parser is a compiled template. It is safe for concurrent use.
type Parser struct {
	fields []*compiledField
	chain  []scalarStrategy
}

// NewParser compiles the section patterns for fields.
func NewParser(fields []Field) *Parser {
	p := &Parser{
		chain: []scalarStrategy{
			sectionStrategy{},
			regexStrategy{},
			substringStrategy{},
			vocabularyStrategy{},
		},
	}
	for _, f := range fields {
		p.fields = append(p.fields, compile(f))
	}
	return p
}

// Parse is a one-shot NewParser(fields).Parse(raw).
func Parse(raw string, fields []Field) Result {
	return NewParser(fields).Parse(raw)
}

// Parse extracts every field from raw. It never fails.
func (p *Parser) Parse(raw string) Result {
	doc := newDocument(raw, p.fields)
	res := Result{
		scalars: make(map[string]string, len(p.fields)),
		lists:   make(map[string][]string, len(p.fields)),
		sources: make(map[string]Source, len(p.fields)),
	}

	var inferred []*compiledField
	for _, f := range p.fields {
		switch f.Kind {
		case List:
			items, src := doc.list(f)
			res.lists[f.Key] = items
			res.sources[f.Key] = src
		default:
			value, src := p.scalar(doc, f)
			res.scalars[f.Key] = value
			res.sources[f.Key] = src
			if value == "" && f.Infer != nil {
				inferred = append(inferred, f)
			}
		}
	}

	for _, f := range inferred {
		value, src := f.Infer.resolve(res.scalars[f.Infer.From])
		res.scalars[f.Key] = value
		res.sources[f.Key] = src
	}

	return res
}

func (p *Parser) scalar(doc *document, f *compiledField) (string, Source) {
	for _, s := range p.chain {
		if v := s.extract(doc, f); v != "" {
			return v, s.source()
		}
	}
	return "", SourceNone
}

type document struct {
	text   string
	fields []*compiledField
}

func newDocument(raw string, fields []*compiledField) *document {
	text := strings.ReplaceAll(raw, "\r\n", "\n")
	return &document{text: text, fields: fields}
}

// section returns the content of f bounded by the nearest other label.
func (d *document) section(f *compiledField) (content string, start int, ok bool) {
	loc := f.header.FindStringIndex(d.text)
	if loc == nil {
		return "", 0, false
	}
	start = loc[1]
	end := len(d.text)
	rest := d.text[start:]
	for _, other := range d.fields {
		if other == f {
			continue
		}
		if next := other.header.FindStringIndex(rest); next != nil && start+next[0] < end {
			end = start + next[0]
		}
	}
	return d.text[start:end], start, true
}

func (d *document) list(f *compiledField) ([]string, Source) {
	content, start, ok := d.section(f)
	if !ok {
		return []string{}, SourceNone
	}
	if items := d.bullets(f, content); len(items) > 0 {
		return items, SourceSection
	}
	if f.Trailing {
		if items := d.bullets(f, d.text[start:]); len(items) > 0 {
			return items, SourceTrailing
		}
	}
	return []string{}, SourceNone
}

func (d *document) bullets(f *compiledField, content string) []string {
	items := []string{}
	for _, line := range strings.Split(content, "\n") {
		loc := bulletExpr.FindStringIndex(line)
		if loc == nil {
			continue
		}
		item := strings.TrimSpace(line[loc[1]:])
		if item == "" || d.mentionsOtherLabel(f, item) {
			continue
		}
		items = append(items, item)
	}
	return items
}

// untilOtherLabel cuts s at the first header of another field.
func (d *document) untilOtherLabel(f *compiledField, s string) string {
	end := len(s)
	for _, other := range d.fields {
		if other == f {
			continue
		}
		if loc := other.header.FindStringIndex(s); loc != nil && loc[0] < end {
			end = loc[0]
		}
	}
	return s[:end]
}

func (d *document) mentionsOtherLabel(f *compiledField, line string) bool {
	for _, other := range d.fields {
		if other != f && other.header.MatchString(line) {
			return true
		}
	}
	return false
}

func cleanScalar(line string) string {
	line = strings.TrimSpace(line)
	if loc := bulletExpr.FindStringIndex(line); loc != nil {
		line = line[loc[1]:]
	}
	return strings.Trim(line, scalarTrimSet)
}
