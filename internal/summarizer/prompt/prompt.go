package prompt

import "strings"

// Template is an opaque prompt template. The engine substitutes the named
// placeholders and otherwise never interprets template content.
//
// Placeholders use {{name}} syntax. Unknown placeholders are left as-is.
type Template struct {
	text string
}

// New creates a template from raw text.
func New(text string) Template {
	return Template{text: text}
}

// Render substitutes the given variables into the template.
func (t Template) Render(vars map[string]string) string {
	pairs := make([]string, 0, len(vars)*2)
	for name, value := range vars {
		pairs = append(pairs, "{{"+name+"}}", value)
	}
	return strings.NewReplacer(pairs...).Replace(t.text)
}

// String returns the raw template text.
func (t Template) String() string {
	return t.text
}

// Set bundles the templates a summarization run needs. Zero-value fields
// fall back to the defaults below.
type Set struct {
	Map           Template // one chunk -> partial summary
	Combine       Template // ordered partial summaries -> fewer summaries
	RefineInitial Template // first chunk -> initial running summary
	RefineFold    Template // running summary + next chunk -> updated summary
}

// Defaults returns the built-in template set.
func Defaults() Set {
	return Set{
		Map: New(`Write a concise summary of the following text:

{{text}}

CONCISE SUMMARY:`),
		Combine: New(`The following is a set of partial summaries of one document, in order:

{{summaries}}

Combine them into a single coherent summary of the whole document.

COMBINED SUMMARY:`),
		RefineInitial: New(`Write a concise summary of the following text:

{{text}}

CONCISE SUMMARY:`),
		RefineFold: New(`Your job is to produce a final summary of a document.
We have provided an existing summary up to a certain point:

{{summary}}

Refine the existing summary (only if needed) with some more context below:

{{text}}

REFINED SUMMARY:`),
	}
}

// WithDefaults fills empty templates from Defaults.
func (s Set) WithDefaults() Set {
	d := Defaults()
	if s.Map.text == "" {
		s.Map = d.Map
	}
	if s.Combine.text == "" {
		s.Combine = d.Combine
	}
	if s.RefineInitial.text == "" {
		s.RefineInitial = d.RefineInitial
	}
	if s.RefineFold.text == "" {
		s.RefineFold = d.RefineFold
	}
	return s
}
