package xraytl

import "strings"

// Spans is an ordered segmentation of a text.
type Spans []Span

// Segment splits text into alternating pieces and protected separators.
//
// For k separators the result always has 2k+1 spans: piece, separator,
// piece, ... piece. Pieces are translatable when IsTranslatable says so.
// Separators never are, and have whitespace next to $$ delimiters removed,
// so joining the spans of a padded macro does not reproduce the input.
func Segment(text string) (Spans, error) {
	seps := findSeparators(text)
	pieces := splitAt(text, seps)
	if len(pieces) != len(seps)+1 {
		return nil, &SegmentationMismatchError{
			Text:       text,
			Pieces:     len(pieces),
			Separators: len(seps),
		}
	}

	spans := make(Spans, 0, len(pieces)+len(seps))
	for i, piece := range pieces {
		spans = append(spans, Span{
			NeedsTranslation: IsTranslatable(piece),
			Content:          piece,
			Category:         CategoryText,
		})
		if i < len(seps) {
			spans = append(spans, Span{
				Content:  washMacro(text[seps[i].start:seps[i].end]),
				Category: seps[i].category,
			})
		}
	}
	return spans, nil
}

// splitAt returns the text between separators, including the leading and
// trailing remainder.
func splitAt(text string, seps []separator) []string {
	pieces := make([]string, 0, len(seps)+1)
	prev := 0
	for _, s := range seps {
		pieces = append(pieces, text[prev:s.start])
		prev = s.end
	}
	return append(pieces, text[prev:])
}

// Join concatenates span contents in order.
func (s Spans) Join() string {
	var b strings.Builder
	for _, span := range s {
		b.WriteString(span.Content)
	}
	return b.String()
}

// Translatable returns the indices of spans that need translation.
func (s Spans) Translatable() []int {
	var idx []int
	for i, span := range s {
		if span.NeedsTranslation {
			idx = append(idx, i)
		}
	}
	return idx
}

// Texts returns the trimmed content of every translatable span, in order.
func (s Spans) Texts() []string {
	var texts []string
	for _, span := range s {
		if span.NeedsTranslation {
			texts = append(texts, strings.TrimSpace(span.Content))
		}
	}
	return texts
}

// Substitute returns a copy of s where the i-th translatable span is
// replaced by translations[i]. The original span's leading and trailing
// whitespace is kept around the trimmed translation.
func (s Spans) Substitute(translations []string) (Spans, error) {
	idx := s.Translatable()
	if len(idx) != len(translations) {
		return nil, &CountMismatchError{Expected: len(idx), Got: len(translations)}
	}

	out := make(Spans, len(s))
	copy(out, s)
	for n, i := range idx {
		out[i].Content = keepPadding(s[i].Content, translations[n])
	}
	return out, nil
}

func keepPadding(original, translated string) string {
	core := strings.TrimSpace(original)
	if core == "" {
		return original
	}
	start := strings.Index(original, core)
	return original[:start] + strings.TrimSpace(translated) + original[start+len(core):]
}
