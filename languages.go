package xraytl

import "strings"

// LanguageNames maps string table language tags to names used in prompts.
var LanguageNames = map[string]string{
	"eng": "English",
	"rus": "Russian",
	"ukr": "Ukrainian",
	"ger": "German",
	"fra": "French",
	"pol": "Polish",
	"ita": "Italian",
	"spa": "Spanish",
	"cze": "Czech",
	"hun": "Hungarian",
	"por": "Portuguese",
	"tur": "Turkish",
	"chn": "Chinese (Simplified)",
	"jpn": "Japanese",
	"kor": "Korean",
}

// tagToISO maps string table tags to ISO 639-1 codes.
var tagToISO = map[string]string{
	"eng": "en",
	"rus": "ru",
	"ukr": "uk",
	"ger": "de",
	"fra": "fr",
	"pol": "pl",
	"ita": "it",
	"spa": "es",
	"cze": "cs",
	"hun": "hu",
	"por": "pt",
	"tur": "tr",
	"chn": "zh",
	"jpn": "ja",
	"kor": "ko",
}

// GetLanguageName returns the human-readable name for a language tag.
// Falls back to the tag itself if not found.
func GetLanguageName(tag string) string {
	if name, ok := LanguageNames[NormalizeTag(tag)]; ok {
		return name
	}
	return tag
}

// ToISO converts a string table tag to its ISO 639-1 code. Unknown tags and
// DefaultTextKey are returned unchanged.
func ToISO(tag string) string {
	if code, ok := tagToISO[NormalizeTag(tag)]; ok {
		return code
	}
	return tag
}

// NormalizeTag lowercases and trims a language tag.
func NormalizeTag(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}
