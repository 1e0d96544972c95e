package processor

import (
	"github.com/ZaguanLabs/xraytl"
)

// StringTableProcessor extracts entities from a string table and writes
// translated texts back into it.
type StringTableProcessor struct {
	lang     string
	variants map[string]*StringTable
}

// StringTableOption configures the string table processor.
type StringTableOption func(*StringTableProcessor)

// WithDocumentLang sets the language tag of the processed document. By
// default its texts are stored under xraytl.DefaultTextKey and always used
// as the source.
func WithDocumentLang(lang string) StringTableOption {
	return func(p *StringTableProcessor) {
		p.lang = xraytl.NormalizeTag(lang)
	}
}

// WithVariants adds the same table in other languages. Their texts become
// extra entity variants the fallback selector can choose from, and IDs
// missing from the document are appended to the output.
func WithVariants(variants map[string]*StringTable) StringTableOption {
	return func(p *StringTableProcessor) {
		p.variants = variants
	}
}

// NewStringTableProcessor creates a new string table processor.
func NewStringTableProcessor(opts ...StringTableOption) *StringTableProcessor {
	p := &StringTableProcessor{lang: xraytl.DefaultTextKey}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Extract decodes content and returns its entities, merged with variants.
func (p *StringTableProcessor) Extract(content string) (interface{}, []TextEntity, error) {
	table, err := Decode([]byte(content))
	if err != nil {
		return nil, nil, err
	}
	if len(p.variants) == 0 {
		return table, table.Entities(p.lang), nil
	}

	tables := make(map[string]*StringTable, len(p.variants)+1)
	for lang, v := range p.variants {
		tables[lang] = v
	}
	tables[p.lang] = table

	// Document order first, then IDs only known from variants.
	merged := MergeVariants(tables)
	byID := make(map[string]TextEntity, len(merged))
	for _, e := range merged {
		byID[e.ID] = e
	}
	entities := make([]TextEntity, 0, len(merged))
	for _, e := range table.Entries {
		entities = append(entities, byID[e.ID])
		delete(byID, e.ID)
	}
	for _, e := range merged {
		if _, ok := byID[e.ID]; ok {
			entities = append(entities, e)
		}
	}
	return table, entities, nil
}

// Apply writes texts into the parsed table and encodes it. Entities absent
// from texts keep their text; IDs new to the table are appended.
func (p *StringTableProcessor) Apply(parsed interface{}, texts map[string]string) (string, error) {
	table, ok := parsed.(*StringTable)
	if !ok {
		return "", &xraytl.ProcessorError{
			Message:     "invalid parsed content type",
			ContentType: ContentTypeStringTable,
		}
	}

	out := &StringTable{Encoding: table.Encoding}
	for _, e := range table.Entries {
		text := e.Text
		if translated, ok := texts[e.ID]; ok {
			text = translated
		}
		out.Set(e.ID, text)
	}
	for _, lang := range variantOrder(p.variants) {
		for _, e := range p.variants[lang].Entries {
			if _, exists := out.Get(e.ID); exists {
				continue
			}
			if translated, ok := texts[e.ID]; ok {
				out.Set(e.ID, translated)
			}
		}
	}
	return Encode(out), nil
}

// ContentType returns ContentTypeStringTable.
func (p *StringTableProcessor) ContentType() string {
	return ContentTypeStringTable
}

// Verify StringTableProcessor implements ContentProcessor
var _ ContentProcessor = (*StringTableProcessor)(nil)
