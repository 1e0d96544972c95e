package xraytl

import "strings"

// IsTranslatable reports whether fragment contains at least one Latin or
// Cyrillic letter. Punctuation, digits and blanks alone are never sent to
// the backend.
func IsTranslatable(fragment string) bool {
	return !noLettersPattern.MatchString(fragment)
}

// LooksLikeIdentifier reports whether text has no Cyrillic letters and no
// space, which is how internal keys such as "st_quest_name" look.
func LooksLikeIdentifier(text string) bool {
	return !HasCyrillic(text) && !strings.Contains(text, " ")
}

// HasCyrillic reports whether text contains a letter from CyrillicLetters.
func HasCyrillic(text string) bool {
	return cyrillicPattern.MatchString(text)
}
