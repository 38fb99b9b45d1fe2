package sections

import "strings"

// scalarStrategy is one link in the scalar fallback chain. An empty return
// passes the field to the next link.
type scalarStrategy interface {
	source() Source
	extract(doc *document, f *compiledField) string
}

// sectionStrategy takes the first non-empty line of the bounded section.
type sectionStrategy struct{}

func (sectionStrategy) source() Source { return SourceSection }

func (sectionStrategy) extract(doc *document, f *compiledField) string {
	content, _, ok := doc.section(f)
	if !ok {
		return ""
	}
	for _, line := range strings.Split(content, "\n") {
		if v := cleanScalar(line); v != "" {
			return v
		}
	}
	return ""
}

// regexStrategy tries "Label:", "Label =" and "Label value" over the whole text.
type regexStrategy struct{}

func (regexStrategy) source() Source { return SourceRegex }

func (regexStrategy) extract(doc *document, f *compiledField) string {
	for _, expr := range f.tier1 {
		for _, m := range expr.FindAllStringSubmatch(doc.text, -1) {
			if v := cleanScalar(doc.untilOtherLabel(f, m[1])); v != "" {
				return v
			}
		}
	}
	return ""
}

// substringStrategy finds the label anywhere and keeps the rest of its line.
type substringStrategy struct{}

func (substringStrategy) source() Source { return SourceSubstring }

func (substringStrategy) extract(doc *document, f *compiledField) string {
	for _, loc := range f.loose.FindAllStringIndex(doc.text, -1) {
		rest := doc.text[loc[1]:]
		if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
			rest = rest[:nl]
		}
		rest = doc.untilOtherLabel(f, rest)
		if v := strings.Trim(strings.TrimSpace(rest), separatorTrimSet); v != "" {
			return v
		}
	}
	return ""
}

// vocabularyStrategy scans the whole text for a known keyword.
type vocabularyStrategy struct{}

func (vocabularyStrategy) source() Source { return SourceVocabulary }

func (vocabularyStrategy) extract(doc *document, f *compiledField) string {
	if f.Vocabulary == nil {
		return ""
	}
	v, _ := f.Vocabulary.Lookup(doc.text)
	return v
}
