package xraytl

import (
	"sort"
	"strings"
)

// DefaultTextKey is the synthetic language tag for text that is already
// resolved. When present it is always chosen.
const DefaultTextKey = "text"

// stubMarker starts untranslated placeholder entries in non-Russian tables.
const stubMarker = "==="

// FallbackOrder is the preference order for source languages.
var FallbackOrder = []string{"eng", "rus", "ukr"}

// SelectSource picks the variant of entity to translate into targetLang.
//
// DefaultTextKey wins outright. Otherwise FallbackOrder is tried, skipping
// the target language, missing variants, "===" stubs (except in rus) and
// eng variants that contain Cyrillic. If none qualifies, any other variant
// except a rejected eng one is used, non-target languages first, in sorted
// order. An entity with nothing usable yields *NoRecommendedLanguageError.
func SelectSource(entity TextEntity, targetLang string) (lang, text string, err error) {
	if t, ok := entity.Texts[DefaultTextKey]; ok {
		return DefaultTextKey, t, nil
	}

	blacklist := make(map[string]bool)
	for _, candidate := range FallbackOrder {
		t, ok := entity.Texts[candidate]
		if candidate == targetLang || !ok {
			continue
		}
		if candidate != "rus" && strings.HasPrefix(strings.TrimSpace(t), stubMarker) {
			continue
		}
		if candidate == "eng" && HasCyrillic(t) {
			blacklist[candidate] = true
			continue
		}
		return candidate, t, nil
	}

	langs := make([]string, 0, len(entity.Texts))
	for l := range entity.Texts {
		if !blacklist[l] {
			langs = append(langs, l)
		}
	}
	sort.Slice(langs, func(i, j int) bool {
		ti, tj := langs[i] == targetLang, langs[j] == targetLang
		if ti != tj {
			return tj
		}
		return langs[i] < langs[j]
	})
	if len(langs) > 0 {
		return langs[0], entity.Texts[langs[0]], nil
	}

	return "", "", &NoRecommendedLanguageError{EntityID: entity.ID, TargetLang: targetLang}
}
