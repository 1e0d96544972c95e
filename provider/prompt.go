package provider

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/ZaguanLabs/xraytl"
)

var styleDescriptions = map[xraytl.TranslationStyle]string{
	xraytl.StyleNeutral:   "Use a neutral register that fits a game's user-facing text.",
	xraytl.StyleDialogue:  "These are spoken lines of game characters. Keep them colloquial and in character, including slang and rough speech.",
	xraytl.StyleInterface: "These are interface labels and hints. Keep them short and consistent, and do not add punctuation the source lacks.",
	xraytl.StyleLore:      "These are item descriptions, notes and encyclopedia entries. Keep the atmosphere and terminology consistent.",
}

func styleDescription(style xraytl.TranslationStyle) string {
	if d, ok := styleDescriptions[style]; ok {
		return d
	}
	return styleDescriptions[xraytl.StyleNeutral]
}

func buildSystemPrompt(req BatchRequest) string {
	targetName := xraytl.GetLanguageName(req.TargetLang)

	sourceName := "the source language (detect it)"
	if req.SourceLang != "" && req.SourceLang != xraytl.DefaultTextKey {
		sourceName = xraytl.GetLanguageName(req.SourceLang)
	}

	contextText := "The texts are fragments of a video game string table."
	if req.Context != "" {
		contextText += fmt.Sprintf(" The game is: %s.", req.Context)
	}

	prompt := fmt.Sprintf(`# Role
You are a professional game localizer translating from %s to %s.

# Context
%s
Each text is a fragment cut out of a longer string. Placeholders, variables and line breaks were removed and will be put back around your translation, so translate only what you see.

# Register
%s

# Rules
- Translate every text into natural %s.
- Do NOT add quotes, explanations or notes.
- Do NOT merge or split texts; return exactly one translation per input text.
- Keep leading and trailing punctuation that belongs to the fragment.
- A "context" field, when present, names the string the fragment comes from. Use it only to disambiguate.`,
		sourceName, targetName, contextText, styleDescription(req.Style), targetName)

	if len(req.Glossary) > 0 {
		keys := make([]string, 0, len(req.Glossary))
		for k := range req.Glossary {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		prompt += "\n\n# Glossary\nUse these translations for the following terms:"
		for _, k := range keys {
			prompt += fmt.Sprintf("\n- \"%s\" → %s", k, req.Glossary[k])
		}
	}

	if len(req.ExcludedTerms) > 0 {
		terms := strings.Join(req.ExcludedTerms, "\n- ")
		prompt += fmt.Sprintf("\n\n# Exclusions\nKeep these terms exactly as they are:\n- %s", terms)
	}

	prompt += `

# Format
Return a valid JSON object with a single key "translations" containing an array of strings in the same order as the input.
Example: { "translations": ["translated string 1", "translated string 2"] }
Do NOT wrap the JSON in Markdown code blocks.`

	return prompt
}

func buildUserMessage(req BatchRequest) string {
	hasContexts := false
	for _, ctx := range req.TextContexts {
		if ctx != "" {
			hasContexts = true
			break
		}
	}

	if !hasContexts {
		data, _ := json.Marshal(req.Texts)
		return string(data)
	}

	type item struct {
		Text    string `json:"text"`
		Context string `json:"context,omitempty"`
	}

	items := make([]item, len(req.Texts))
	for i, text := range req.Texts {
		items[i].Text = text
		if i < len(req.TextContexts) {
			items[i].Context = req.TextContexts[i]
		}
	}

	data, _ := json.Marshal(map[string][]item{"items": items})
	return string(data)
}

// parseResponse reads the model output. It accepts {"translations": [...]},
// any object with an array value, a bare array, and output wrapped in a
// Markdown code fence.
func parseResponse(content string, expectedCount int, backend string) ([]string, error) {
	content = stripCodeFence(content)

	var objResult map[string]interface{}
	if err := json.Unmarshal([]byte(content), &objResult); err == nil {
		if translations, ok := objResult["translations"]; ok {
			if arr, ok := translations.([]interface{}); ok {
				return toStringSlice(arr, expectedCount)
			}
		}

		keys := make([]string, 0, len(objResult))
		for k := range objResult {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if arr, ok := objResult[k].([]interface{}); ok {
				return toStringSlice(arr, expectedCount)
			}
		}
	}

	var arrResult []interface{}
	if err := json.Unmarshal([]byte(content), &arrResult); err == nil {
		return toStringSlice(arrResult, expectedCount)
	}

	return nil, &xraytl.ProviderError{
		Message:   fmt.Sprintf("invalid response format from %s", backend),
		Retryable: false,
	}
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}

func toStringSlice(arr []interface{}, expectedCount int) ([]string, error) {
	result := make([]string, len(arr))
	for i, v := range arr {
		if s, ok := v.(string); ok {
			result[i] = s
		} else {
			result[i] = fmt.Sprintf("%v", v)
		}
	}

	if len(result) != expectedCount {
		return nil, &xraytl.CountMismatchError{
			Expected: expectedCount,
			Got:      len(result),
		}
	}

	return result, nil
}

func isRetryableError(err error) bool {
	errStr := strings.ToLower(err.Error())
	retryablePatterns := []string{
		"rate limit",
		"timeout",
		"connection refused",
		"connection reset",
		"temporary",
		"overloaded",
		"503",
		"502",
		"529",
		"429",
	}

	for _, pattern := range retryablePatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}
	return false
}
