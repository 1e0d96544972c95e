package xraytl

import (
	"regexp"
	"strings"
)

// DefaultRootElement is the root element of a string table document.
const DefaultRootElement = "string_table"

// knownEntities are the named entities left alone when escaping bare
// ampersands. apos; is included because EscapeXMLText produces it.
var knownEntities = []string{
	"ensp;", "emsp;", "nbsp;", "lt;", "gt;", "amp;", "apos;",
	"quot;", "copy;", "reg;", "trade;", "times;", "divide;",
}

var (
	splitAmpEntity   = regexp.MustCompile(`&\s+amp;`)
	splitLtEntity    = regexp.MustCompile(`&\s+lt;`)
	xmlDeclaration   = regexp.MustCompile(`<\?xml[^>]+encoding=[^>]+\?>`)
	xmlComment       = regexp.MustCompile(`<!--[\s\S]*?-->`)
	encodingAttrExpr = regexp.MustCompile(`<\?xml[^>]+encoding=([^>]+)\?>`)
)

type normalizeOptions struct {
	fixRoot bool
	root    string
}

// NormalizeOption configures NormalizeXML.
type NormalizeOption func(*normalizeOptions)

// WithoutRootFix disables wrapping in and truncating after the root element.
func WithoutRootFix() NormalizeOption {
	return func(o *normalizeOptions) {
		o.fixRoot = false
	}
}

// WithRootElement sets the expected root element name.
func WithRootElement(name string) NormalizeOption {
	return func(o *normalizeOptions) {
		o.root = name
	}
}

// NormalizeXML applies best-effort textual repairs to a string table
// document so that an XML parser can read it. The steps run in a fixed
// order because later ones rely on earlier ones:
//
//  1. "& amp;" and "& lt;" split by line wrapping are joined again
//  2. bare "&" not starting a known entity becomes "&amp;"
//  3. the XML declaration and all comments are removed
//  4. "<" that cannot start a tag becomes "&lt;"
//  5. the body is wrapped in the root element when it does not start with it
//  6. anything after the first closing root tag is dropped
//
// Steps 5 and 6 only run when the root fix is enabled (the default).
// Read the declared encoding with ExtractEncoding before calling this.
func NormalizeXML(doc string, opts ...NormalizeOption) string {
	o := normalizeOptions{fixRoot: true, root: DefaultRootElement}
	for _, opt := range opts {
		opt(&o)
	}

	s := splitAmpEntity.ReplaceAllLiteralString(doc, "&amp;")
	s = splitLtEntity.ReplaceAllLiteralString(s, "&lt;")
	s = escapeBareAmpersands(s)
	s = xmlDeclaration.ReplaceAllLiteralString(s, "")
	s = xmlComment.ReplaceAllLiteralString(s, "")
	s = escapeStrayLessThan(s)

	if !o.fixRoot {
		return s
	}

	open, closing := "<"+o.root+">", "</"+o.root+">"
	if !strings.HasPrefix(strings.TrimSpace(s), open) {
		s = open + s + closing
	}
	if i := strings.Index(s, closing); i >= 0 {
		s = s[:i+len(closing)]
	}
	return s
}

func escapeBareAmpersands(s string) string {
	if !strings.Contains(s, "&") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '&' && !startsKnownEntity(s[i+1:]) {
			b.WriteString("&amp;")
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func startsKnownEntity(rest string) bool {
	for _, e := range knownEntities {
		if strings.HasPrefix(rest, e) {
			return true
		}
	}
	return false
}

// escapeStrayLessThan escapes every "<" not followed by an ASCII letter or "/".
func escapeStrayLessThan(s string) string {
	if !strings.Contains(s, "<") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '<' && (i+1 >= len(s) || !isTagStart(s[i+1])) {
			b.WriteString("&lt;")
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func isTagStart(c byte) bool {
	return c == '/' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// ExtractEncoding returns the encoding named by the first XML declaration
// in doc, without quotes or blanks. The second result is false when doc has
// no declaration with an encoding attribute.
func ExtractEncoding(doc string) (string, bool) {
	m := encodingAttrExpr.FindStringSubmatch(doc)
	if m == nil {
		return "", false
	}
	value := strings.TrimSpace(m[1])
	if value != "" && (value[0] == '"' || value[0] == '\'') {
		if end := strings.IndexByte(value[1:], value[0]); end >= 0 {
			value = value[1 : end+1]
		}
	} else if i := strings.IndexAny(value, " \t\r\n"); i >= 0 {
		value = value[:i]
	}
	value = strings.Trim(value, "\"' \t\r\n")
	return value, value != ""
}

// EscapeXMLText escapes text for use as element content or attribute value.
func EscapeXMLText(s string) string {
	return xmlTextEscaper.Replace(s)
}

var xmlTextEscaper = strings.NewReplacer(
	"&", "&amp;",
	`"`, "&quot;",
	"'", "&apos;",
	"<", "&lt;",
)
