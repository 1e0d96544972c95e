package processor

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/ZaguanLabs/xraytl"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
)

// ContentTypeStringTable identifies string table documents.
const ContentTypeStringTable = "string_table"

// Entry is one <string id="..."><text>...</text></string> element.
type Entry struct {
	ID   string
	Text string
}

// StringTable is a decoded string table document.
type StringTable struct {
	Encoding string // Encoding named by the declaration, empty when absent
	Entries  []Entry
	byID     map[string]int
}

// DeclaredEncoding returns the encoding the document declared.
func (t *StringTable) DeclaredEncoding() string {
	return t.Encoding
}

// Get returns the text of the entry with the given ID.
func (t *StringTable) Get(id string) (string, bool) {
	i, ok := t.byID[id]
	if !ok {
		return "", false
	}
	return t.Entries[i].Text, true
}

// Set replaces the text of an entry, appending it when the ID is new.
func (t *StringTable) Set(id, text string) {
	if t.byID == nil {
		t.byID = make(map[string]int)
	}
	if i, ok := t.byID[id]; ok {
		t.Entries[i].Text = text
		return
	}
	t.byID[id] = len(t.Entries)
	t.Entries = append(t.Entries, Entry{ID: id, Text: text})
}

// Entities returns one entity per entry with its text stored under lang.
func (t *StringTable) Entities(lang string) []TextEntity {
	entities := make([]TextEntity, len(t.Entries))
	for i, e := range t.Entries {
		entities[i] = TextEntity{ID: e.ID, Texts: map[string]string{lang: e.Text}}
	}
	return entities
}

type xmlStringTable struct {
	XMLName xml.Name    `xml:"string_table"`
	Strings []xmlString `xml:"string"`
}

type xmlString struct {
	ID   string `xml:"id,attr"`
	Text string `xml:"text"`
}

// Decode reads a string table. The declared encoding is read first, the
// content is converted to UTF-8 and repaired with xraytl.NormalizeXML
// before it is parsed. Duplicate IDs keep the last text.
func Decode(data []byte) (*StringTable, error) {
	content, enc, err := ToUTF8(data)
	if err != nil {
		return nil, err
	}

	dec := xml.NewDecoder(strings.NewReader(xraytl.NormalizeXML(content)))
	dec.Strict = false
	dec.Entity = xml.HTMLEntity

	var raw xmlStringTable
	if err := dec.Decode(&raw); err != nil {
		return nil, &xraytl.ProcessorError{
			Message:     "failed to parse string table",
			Cause:       err,
			ContentType: ContentTypeStringTable,
		}
	}

	table := &StringTable{Encoding: enc}
	for _, s := range raw.Strings {
		table.Set(s.ID, s.Text)
	}
	return table, nil
}

// ToUTF8 converts a document to UTF-8 using the encoding named by its
// declaration. It also returns that encoding, empty when none is declared.
func ToUTF8(data []byte) (content, enc string, err error) {
	content = string(data)
	enc, _ = xraytl.ExtractEncoding(content)
	if enc == "" || isUTF8(enc) {
		return content, enc, nil
	}

	r, err := charset.NewReaderLabel(enc, bytes.NewReader(data))
	if err != nil {
		return "", enc, &xraytl.ProcessorError{
			Message:     fmt.Sprintf("unsupported encoding %q", enc),
			Cause:       err,
			ContentType: ContentTypeStringTable,
		}
	}
	decoded, err := io.ReadAll(r)
	if err != nil {
		return "", enc, &xraytl.ProcessorError{
			Message:     "failed to decode content",
			Cause:       err,
			ContentType: ContentTypeStringTable,
		}
	}
	return string(decoded), enc, nil
}

// Encode writes the table as XML text. The declaration names the table's
// encoding (UTF-8 when empty) but the returned string is always UTF-8; use
// EncodeDocument to produce the declared bytes.
func Encode(t *StringTable) string {
	enc := t.Encoding
	if enc == "" {
		enc = "UTF-8"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "<?xml version=\"1.0\" encoding=\"%s\"?>\n", enc)
	b.WriteString("<string_table>\n")
	for _, e := range t.Entries {
		fmt.Fprintf(&b, "\t<string id=\"%s\">\n", xraytl.EscapeXMLText(e.ID))
		fmt.Fprintf(&b, "\t\t<text>%s</text>\n", xraytl.EscapeXMLText(e.Text))
		b.WriteString("\t</string>\n")
	}
	b.WriteString("</string_table>\n")
	return b.String()
}

// EncodeDocument converts UTF-8 content into the named encoding. Characters
// the encoding cannot represent become numeric character references.
func EncodeDocument(content, enc string) ([]byte, error) {
	if enc == "" || isUTF8(enc) {
		return []byte(content), nil
	}
	e, _ := charset.Lookup(enc)
	if e == nil {
		return nil, &xraytl.ProcessorError{
			Message:     fmt.Sprintf("unsupported encoding %q", enc),
			ContentType: ContentTypeStringTable,
		}
	}
	out, err := encoding.HTMLEscapeUnsupported(e.NewEncoder()).Bytes([]byte(content))
	if err != nil {
		return nil, &xraytl.ProcessorError{
			Message:     "failed to encode content",
			Cause:       err,
			ContentType: ContentTypeStringTable,
		}
	}
	return out, nil
}

func isUTF8(enc string) bool {
	switch strings.ToLower(strings.ReplaceAll(enc, "_", "-")) {
	case "utf-8", "utf8":
		return true
	}
	return false
}

// MergeVariants combines per-language tables of the same file into
// multi-language entities. Entities follow the first table (in
// xraytl.FallbackOrder, then sorted) that contains them.
func MergeVariants(tables map[string]*StringTable) []TextEntity {
	var entities []TextEntity
	index := make(map[string]int)

	for _, lang := range variantOrder(tables) {
		for _, e := range tables[lang].Entries {
			i, ok := index[e.ID]
			if !ok {
				i = len(entities)
				index[e.ID] = i
				entities = append(entities, TextEntity{ID: e.ID, Texts: make(map[string]string)})
			}
			entities[i].Texts[lang] = e.Text
		}
	}
	return entities
}

func variantOrder(tables map[string]*StringTable) []string {
	var order []string
	seen := make(map[string]bool)
	for _, lang := range xraytl.FallbackOrder {
		if _, ok := tables[lang]; ok {
			order = append(order, lang)
			seen[lang] = true
		}
	}
	var rest []string
	for lang := range tables {
		if !seen[lang] {
			rest = append(rest, lang)
		}
	}
	sort.Strings(rest)
	return append(order, rest...)
}
