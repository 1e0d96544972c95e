package xraytl

import (
	"regexp"
	"strings"
)

var sentenceEnd = regexp.MustCompile(`[?.!]+`)

// SplitSentences cuts text after every run of "?", "." or "!". A trailing
// remainder is kept only when it is not blank. Text without sentence
// punctuation is returned as a single element.
func SplitSentences(text string) []string {
	locs := sentenceEnd.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return []string{text}
	}

	sentences := make([]string, 0, len(locs)+1)
	prev := 0
	for _, loc := range locs {
		sentences = append(sentences, text[prev:loc[1]])
		prev = loc[1]
	}
	if rest := text[prev:]; strings.TrimSpace(rest) != "" {
		sentences = append(sentences, rest)
	}
	return sentences
}
