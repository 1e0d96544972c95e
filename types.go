package xraytl

// TranslationStyle controls the tone and formality of translations.
type TranslationStyle string

const (
	// StyleNeutral keeps a plain, neutral register.
	StyleNeutral TranslationStyle = "neutral"
	// StyleDialogue suits spoken NPC lines: colloquial, in character.
	StyleDialogue TranslationStyle = "dialogue"
	// StyleInterface suits menus, buttons and hints: short and consistent.
	StyleInterface TranslationStyle = "interface"
	// StyleLore suits item descriptions, notes and encyclopedia entries.
	StyleLore TranslationStyle = "lore"
)

// Category identifies what kind of span a segment is.
type Category int

const (
	// CategoryText is ordinary text between separators.
	CategoryText Category = iota
	// CategoryActionMacro is an inline $$ACT...$$ directive.
	CategoryActionMacro
	// CategoryPlaceholder is a %-style interpolation slot.
	CategoryPlaceholder
	// CategoryScriptVariable is a $name reference.
	CategoryScriptVariable
	// CategoryLineBreak is a run of newlines or escaped \n sequences.
	CategoryLineBreak
)

func (c Category) String() string {
	switch c {
	case CategoryText:
		return "text"
	case CategoryActionMacro:
		return "action"
	case CategoryPlaceholder:
		return "placeholder"
	case CategoryScriptVariable:
		return "script"
	case CategoryLineBreak:
		return "linebreak"
	}
	return "unknown"
}

// Span is one unit of a segmented text.
type Span struct {
	NeedsTranslation bool
	Content          string
	Category         Category
}

// TextEntity is one localizable unit of a string table.
//
// Texts maps a language tag (eng, rus, ...) to its text. The synthetic key
// DefaultTextKey marks text that is already resolved and always wins.
type TextEntity struct {
	ID    string
	Texts map[string]string
}

// EntityResult is the outcome of translating one entity.
type EntityResult struct {
	ID         string
	SourceLang string
	Source     string
	Text       string
	Skipped    bool   // true when no usable source variant existed
	Verbatim   bool   // true when Text was copied without calling the backend
	Reason     string // why the entity was skipped or copied
	Translated int    // spans sent to the backend
	Cached     int    // spans served from cache
}

// ProcessedContent is the result of processing a whole document.
type ProcessedContent struct {
	RunID           string // Identifier of this processing run
	Content         string // Translated document (UTF-8)
	Encoding        string // Encoding declared by the input, if any
	TotalEntities   int    // Entities found in the document
	SkippedEntities int    // Entities without a usable source variant
	TranslatedCount int    // Spans translated by the backend
	CachedCount     int    // Spans served from cache
}
