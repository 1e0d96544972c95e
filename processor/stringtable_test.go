package processor

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/ZaguanLabs/xraytl"
)

const brokenTable = `<?xml version="1.0" encoding="utf-8"?>
<!-- dialogs & stuff < -->
<string_table>
	<string id="st_a">
		<text>Tom & Jerry</text>
	</string>
	<string id="st_b">
		<text>5 < 6 &amp; &nbsp;ok</text>
	</string>
	<string id="st_a">
		<text>Tom & Jerry again</text>
	</string>
</string_table>
trailing junk`

func TestDecode(t *testing.T) {
	table, err := Decode([]byte(brokenTable))
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}

	if table.Encoding != "utf-8" {
		t.Errorf("Encoding = %q", table.Encoding)
	}
	if len(table.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %+v", table.Entries)
	}
	if got, _ := table.Get("st_a"); got != "Tom & Jerry again" {
		t.Errorf("st_a = %q, duplicate IDs should keep the last text", got)
	}
	if got, _ := table.Get("st_b"); got != "5 < 6 & \u00a0ok" {
		t.Errorf("st_b = %q", got)
	}
	if _, ok := table.Get("missing"); ok {
		t.Error("Get should report missing IDs")
	}
}

func TestDecode_WithoutRootOrDeclaration(t *testing.T) {
	table, err := Decode([]byte(`<string id="a"><text>A</text></string><string id="b"/>`))
	if err != nil {
		t.Fatal(err)
	}
	if table.Encoding != "" || len(table.Entries) != 2 {
		t.Errorf("unexpected table: %+v", table)
	}
	if got, _ := table.Get("b"); got != "" {
		t.Errorf("b = %q, want empty", got)
	}
}

func TestDecode_Windows1251(t *testing.T) {
	src := &StringTable{Encoding: "windows-1251"}
	src.Set("st_greet", "Привет, сталкер!")
	src.Set("st_bye", "Бывай")

	data, err := EncodeDocument(Encode(src), src.Encoding)
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Contains(data, []byte("Привет")) {
		t.Fatal("document should not be UTF-8")
	}

	table, err := Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	if table.Encoding != "windows-1251" {
		t.Errorf("Encoding = %q", table.Encoding)
	}
	if got, _ := table.Get("st_greet"); got != "Привет, сталкер!" {
		t.Errorf("st_greet = %q", got)
	}
	if got, _ := table.Get("st_bye"); got != "Бывай" {
		t.Errorf("st_bye = %q", got)
	}
}

func TestDecode_UnsupportedEncoding(t *testing.T) {
	_, err := Decode([]byte(`<?xml version="1.0" encoding="x-klingon"?><string_table/>`))

	var pe *xraytl.ProcessorError
	if !errors.As(err, &pe) || pe.ContentType != ContentTypeStringTable {
		t.Fatalf("expected ProcessorError, got %v", err)
	}
}

func TestToUTF8(t *testing.T) {
	data, err := EncodeDocument(`<?xml version="1.0" encoding="windows-1251"?><string_table>Зона</string_table>`, "windows-1251")
	if err != nil {
		t.Fatal(err)
	}

	content, enc, err := ToUTF8(data)
	if err != nil {
		t.Fatal(err)
	}
	if enc != "windows-1251" || !strings.Contains(content, "Зона") {
		t.Errorf("ToUTF8() = %q, %q", content, enc)
	}

	content, enc, err = ToUTF8([]byte("<string_table/>"))
	if err != nil || enc != "" || content != "<string_table/>" {
		t.Errorf("ToUTF8() without declaration = %q, %q, %v", content, enc, err)
	}
}

func TestEncode(t *testing.T) {
	table := &StringTable{}
	table.Set("a", `Tom & "Jerry" <it's>`)

	got := Encode(table)
	want := "<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n" +
		"<string_table>\n" +
		"\t<string id=\"a\">\n" +
		"\t\t<text>Tom &amp; &quot;Jerry&quot; &lt;it&apos;s></text>\n" +
		"\t</string>\n" +
		"</string_table>\n"
	if got != want {
		t.Errorf("Encode() =\n%s\nwant\n%s", got, want)
	}

	back, err := Decode([]byte(got))
	if err != nil {
		t.Fatal(err)
	}
	if text, _ := back.Get("a"); text != `Tom & "Jerry" <it's>` {
		t.Errorf("round trip = %q", text)
	}
}

func TestEncodeDocument(t *testing.T) {
	out, err := EncodeDocument("Сталкер 日本", "windows-1251")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasSuffix(out, []byte(" &#26085;&#26412;")) {
		t.Errorf("unrepresentable runes should become references, got %q", out)
	}

	same, err := EncodeDocument("Сталкер", "UTF_8")
	if err != nil || string(same) != "Сталкер" {
		t.Errorf("UTF-8 should pass through, got %q, %v", same, err)
	}

	if _, err := EncodeDocument("x", "x-klingon"); err == nil {
		t.Error("expected error for unknown encoding")
	}
}

func TestMergeVariants(t *testing.T) {
	rus := &StringTable{}
	rus.Set("b", "Бэ")
	rus.Set("a", "А")
	eng := &StringTable{}
	eng.Set("a", "A")
	pol := &StringTable{}
	pol.Set("c", "Ce")

	entities := MergeVariants(map[string]*StringTable{"rus": rus, "eng": eng, "pol": pol})

	var ids []string
	for _, e := range entities {
		ids = append(ids, e.ID)
	}
	if strings.Join(ids, ",") != "a,b,c" {
		t.Fatalf("ids = %v, want a,b,c", ids)
	}
	if entities[0].Texts["eng"] != "A" || entities[0].Texts["rus"] != "А" {
		t.Errorf("unexpected a: %+v", entities[0].Texts)
	}
	if len(entities[1].Texts) != 1 || entities[2].Texts["pol"] != "Ce" {
		t.Errorf("unexpected variants: %+v %+v", entities[1], entities[2])
	}
}

func TestStringTableProcessor_Extract(t *testing.T) {
	p := NewStringTableProcessor()

	parsed, entities, err := p.Extract(`<string_table><string id="a"><text>Hello</text></string></string_table>`)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := parsed.(*StringTable); !ok {
		t.Fatalf("parsed = %T", parsed)
	}
	if len(entities) != 1 || entities[0].Texts[xraytl.DefaultTextKey] != "Hello" {
		t.Errorf("unexpected entities: %+v", entities)
	}
	if p.ContentType() != ContentTypeStringTable {
		t.Errorf("ContentType() = %q", p.ContentType())
	}
}

func TestStringTableProcessor_Variants(t *testing.T) {
	rus := &StringTable{}
	rus.Set("only_rus", "Только тут")
	rus.Set("a", "Привет")

	p := NewStringTableProcessor(
		WithDocumentLang("ENG"),
		WithVariants(map[string]*StringTable{"rus": rus}),
	)

	parsed, entities, err := p.Extract(`<string_table><string id="a"><text>Hello</text></string></string_table>`)
	if err != nil {
		t.Fatal(err)
	}

	if len(entities) != 2 || entities[0].ID != "a" || entities[1].ID != "only_rus" {
		t.Fatalf("unexpected entities: %+v", entities)
	}
	if entities[0].Texts["eng"] != "Hello" || entities[0].Texts["rus"] != "Привет" {
		t.Errorf("unexpected variants: %+v", entities[0].Texts)
	}

	out, err := p.Apply(parsed, map[string]string{"a": "Hallo", "only_rus": "Nur hier"})
	if err != nil {
		t.Fatal(err)
	}
	table, err := Decode([]byte(out))
	if err != nil {
		t.Fatal(err)
	}
	if len(table.Entries) != 2 || table.Entries[1].ID != "only_rus" {
		t.Fatalf("unexpected output entries: %+v", table.Entries)
	}
	if got, _ := table.Get("a"); got != "Hallo" {
		t.Errorf("a = %q", got)
	}
}

func TestStringTableProcessor_ApplyKeepsUntranslated(t *testing.T) {
	p := NewStringTableProcessor()
	parsed, _, err := p.Extract(`<string_table><string id="a"><text>Hello</text></string><string id="b"><text>World</text></string></string_table>`)
	if err != nil {
		t.Fatal(err)
	}

	out, err := p.Apply(parsed, map[string]string{"b": "Мир"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "<text>Hello</text>") || !strings.Contains(out, "<text>Мир</text>") {
		t.Errorf("unexpected output:\n%s", out)
	}

	// The source table is not modified.
	if got, _ := parsed.(*StringTable).Get("b"); got != "World" {
		t.Errorf("parsed table modified: b = %q", got)
	}
}

func TestStringTableProcessor_ApplyInvalidParsed(t *testing.T) {
	_, err := NewStringTableProcessor().Apply("not a table", nil)

	var pe *xraytl.ProcessorError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ProcessorError, got %v", err)
	}
}
