package xraytl

import "regexp"

// CyrillicLetters is the fixed Cyrillic alphabet recognized next to ASCII
// letters. Uppercase Ъ is absent on purpose; soft sign Ь is included.
const CyrillicLetters = "АаБбВвГгДдЕеЁёЖжЗзИиЙйКкЛлМмНнОоПпРрСсТтУуФфХхЦцЧчШшЩщъЫыьЭэЮюЯяЬ"

const (
	actionExpr      = `[()"']?\s*\$\$\s*[Aa][Cc][Tt][_a-zA-Z0-9]*\s*\$\$\s*[()"']?`
	placeholderExpr = `%+(?:(?:[a-zA-Z0-9_]+(?:\.[a-zA-Z0-9_]+)+%+)|(?:[a-z](?:\[[a-z0-9,]*?\])?))\s*`
	scriptExpr      = `\$[a-zA-Z0-9_` + CyrillicLetters + `]+[ ,.!?"]?`
	lineBreakExpr   = `(?:\n|\\n)+`
)

// Protected span matchers. ScriptVariablePattern does not encode the
// "not preceded by $" rule; the segment scanner applies it.
var (
	ActionMacroPattern    = regexp.MustCompile(actionExpr)
	PlaceholderPattern    = regexp.MustCompile(placeholderExpr)
	ScriptVariablePattern = regexp.MustCompile(scriptExpr)
	LineBreakPattern      = regexp.MustCompile(lineBreakExpr)
)

// CombinedPattern is the ordered alternation of the four matchers. Each
// alternative is a capture group so the scanner can tell which one matched.
// Go regexp alternation is leftmost-first, so ActionMacro wins over
// ScriptVariable at the same position.
var CombinedPattern = regexp.MustCompile(
	`(` + actionExpr + `)|(` + placeholderExpr + `)|(` + scriptExpr + `)|(` + lineBreakExpr + `)`,
)

var (
	noLettersPattern = regexp.MustCompile(`^[^a-zA-Z` + CyrillicLetters + `]*$`)
	cyrillicPattern  = regexp.MustCompile(`[` + CyrillicLetters + `]`)

	// $$ followed by blanks before an identifier, and blanks after an
	// identifier before $$.
	macroLeadingSpace  = regexp.MustCompile(`\$\$\s*([_a-zA-Z0-9])`)
	macroTrailingSpace = regexp.MustCompile(`([_a-zA-Z0-9])\s*\$\$`)
)

// separator is one combined-pattern match in a text.
type separator struct {
	start    int
	end      int
	category Category
}

// findSeparators returns all non-overlapping combined-pattern matches in
// left-to-right order.
func findSeparators(text string) []separator {
	var seps []separator
	pos := 0
	for pos < len(text) {
		loc := CombinedPattern.FindStringSubmatchIndex(text[pos:])
		if loc == nil {
			break
		}
		start, end := pos+loc[0], pos+loc[1]
		cat := matchedCategory(loc)

		// A $ right after another $ belongs to a macro delimiter, not a
		// script variable. No other alternative can start with $ at this
		// position, so resume one byte later.
		if cat == CategoryScriptVariable && start > 0 && text[start-1] == '$' {
			pos = start + 1
			continue
		}

		seps = append(seps, separator{start: start, end: end, category: cat})
		pos = end
	}
	return seps
}

func matchedCategory(loc []int) Category {
	switch {
	case loc[2] >= 0:
		return CategoryActionMacro
	case loc[4] >= 0:
		return CategoryPlaceholder
	case loc[6] >= 0:
		return CategoryScriptVariable
	default:
		return CategoryLineBreak
	}
}

// washMacro strips whitespace between a $$ delimiter and an adjoining
// identifier character on both sides.
func washMacro(s string) string {
	s = macroLeadingSpace.ReplaceAllString(s, `$$$$${1}`)
	return macroTrailingSpace.ReplaceAllString(s, `${1}$$$$`)
}
