package export

import (
	"sort"
	"strconv"
	"strings"

	"github.com/MahiShah30/hospital-sop-generator/internal/answers"
	"github.com/MahiShah30/hospital-sop-generator/internal/schema"
)

const documentCSS = `
    body { font-family: Arial, sans-serif; padding: 24px; line-height: 1.6; }
    h1 { font-size: 28px; margin-bottom: 20px; color: #333; border-bottom: 2px solid #007bff; padding-bottom: 10px; }
    h2 { font-size: 22px; margin-top: 30px; margin-bottom: 15px; color: #555; border-left: 4px solid #007bff; padding-left: 10px; }
    h3 { font-size: 18px; margin-top: 20px; margin-bottom: 10px; color: #666; }
    p { margin-bottom: 10px; }
    ul { margin-left: 20px; margin-bottom: 15px; }
    li { margin-bottom: 5px; }
    .field { margin-bottom: 15px; }
    .field-label { font-weight: bold; color: #333; }
    .field-value { margin-left: 10px; }
    .record-item { margin-bottom: 10px; padding: 10px; border: 1px solid #ddd; border-radius: 5px; }
    table { width: 100%; border-collapse: collapse; margin-bottom: 20px; }
    th, td { border: 1px solid #ddd; padding: 8px; text-align: left; }
    th { background-color: #f2f2f2; font-weight: bold; }
`

// Compiler assembles the final document from per-section answers. Sections
// are emitted in the registry's canonical order; ids on the exclusion list
// are skipped entirely.
type Compiler struct {
	registry schema.Registry
	excluded map[string]bool
}

func NewCompiler(registry schema.Registry, excludeSections []string) *Compiler {
	excluded := make(map[string]bool, len(excludeSections))
	for _, id := range excludeSections {
		if id = strings.TrimSpace(id); id != "" {
			excluded[id] = true
		}
	}
	return &Compiler{registry: registry, excluded: excluded}
}

// BuildHTML produces the full standalone document. Sections missing from the
// input are simply absent from the output; unknown section ids still render
// under a humanized heading.
func (c *Compiler) BuildHTML(title string, sections []Section) string {
	if strings.TrimSpace(title) == "" {
		title = "Standard Operating Procedure"
	}

	byID := make(map[string]Section, len(sections))
	for _, s := range sections {
		byID[s.ID] = s
	}

	ordered := make([]Section, 0, len(sections))
	seen := make(map[string]bool, len(sections))
	for _, id := range c.registry.SectionIDs() {
		if s, ok := byID[id]; ok {
			ordered = append(ordered, s)
			seen[id] = true
		}
	}
	// Off-registry sections trail the canonical ones, sorted for determinism.
	var extras []Section
	for _, s := range sections {
		if !seen[s.ID] {
			extras = append(extras, s)
		}
	}
	sort.Slice(extras, func(i, j int) bool { return extras[i].ID < extras[j].ID })
	ordered = append(ordered, extras...)

	var body strings.Builder
	body.WriteString("<h1>" + esc(title) + "</h1>")
	for _, s := range ordered {
		if c.excluded[s.ID] {
			continue
		}
		body.WriteString("<h2>" + esc(c.sectionTitle(s.ID)) + "</h2>")
		c.writeSection(&body, s.Answers)
	}

	var doc strings.Builder
	doc.WriteString(`<!doctype html><html><head><meta charset="utf-8"/><style>`)
	doc.WriteString(documentCSS)
	doc.WriteString(`</style></head><body>`)
	doc.WriteString(body.String())
	doc.WriteString(`</body></html>`)
	return doc.String()
}

func (c *Compiler) sectionTitle(id string) string {
	if s, err := c.registry.Section(id); err == nil && s.Title != "" {
		return s.Title
	}
	return schema.HumanizeID(id)
}

func (c *Compiler) writeSection(out *strings.Builder, tree answers.Tree) {
	for _, field := range sortedTreeKeys(tree) {
		value := tree[field]
		if value.IsEmpty() {
			continue
		}
		out.WriteString(`<div class="field"><span class="field-label">` + esc(labelFromField(field)) + `:</span>`)
		writeValue(out, value)
		out.WriteString(`</div>`)
	}
}

func writeValue(out *strings.Builder, value answers.Value) {
	switch value.Kind {
	case answers.KindRecordList:
		writeTable(out, value.List)
	case answers.KindScalarList:
		out.WriteString("<ul>")
		for _, item := range value.List {
			out.WriteString("<li>" + esc(scalarText(item)) + "</li>")
		}
		out.WriteString("</ul>")
	case answers.KindAttachmentList:
		out.WriteString("<ul>")
		for _, item := range value.List {
			out.WriteString("<li>" + esc(item.Attachment.Name) + "</li>")
		}
		out.WriteString("</ul>")
	case answers.KindRecord:
		out.WriteString(`<div class="record-item">`)
		for _, k := range value.SortedKeys() {
			out.WriteString("<div><strong>" + esc(labelFromField(k)) + ":</strong> " + esc(scalarText(value.Record[k])) + "</div>")
		}
		out.WriteString(`</div>`)
	case answers.KindAttachment:
		out.WriteString(` <span class="field-value">` + esc(value.Attachment.Name) + `</span>`)
	default:
		out.WriteString(` <span class="field-value">` + esc(scalarText(value)) + `</span>`)
	}
}

// writeTable renders a repeater as a table. The header set is the first row's
// keys in lexicographic order; later rows render blanks for keys they lack.
func writeTable(out *strings.Builder, rows []answers.Value) {
	if len(rows) == 0 {
		return
	}
	headers := rows[0].SortedKeys()
	out.WriteString("<table><tr>")
	for _, h := range headers {
		out.WriteString("<th>" + esc(labelFromField(h)) + "</th>")
	}
	out.WriteString("</tr>")
	for _, row := range rows {
		out.WriteString("<tr>")
		for _, h := range headers {
			out.WriteString("<td>" + esc(cellText(row.Record[h])) + "</td>")
		}
		out.WriteString("</tr>")
	}
	out.WriteString("</table>")
}

func cellText(value answers.Value) string {
	switch value.Kind {
	case answers.KindAttachment:
		return value.Attachment.Name
	case answers.KindScalarList:
		parts := make([]string, 0, len(value.List))
		for _, item := range value.List {
			parts = append(parts, scalarText(item))
		}
		return strings.Join(parts, ", ")
	default:
		return scalarText(value)
	}
}

func scalarText(value answers.Value) string {
	switch s := value.Scalar.(type) {
	case nil:
		if value.Kind == answers.KindAttachment {
			return value.Attachment.Name
		}
		return ""
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		if s {
			return "Yes"
		}
		return "No"
	default:
		return ""
	}
}

// labelFromField turns a camelCase field name into a display label:
// "hospitalName" -> "Hospital Name".
func labelFromField(field string) string {
	var b strings.Builder
	for i, r := range field {
		if i == 0 {
			if r >= 'a' && r <= 'z' {
				r = r - 'a' + 'A'
			}
			b.WriteRune(r)
			continue
		}
		if r >= 'A' && r <= 'Z' {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func sortedTreeKeys(tree answers.Tree) []string {
	keys := make([]string, 0, len(tree))
	for k := range tree {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

var escReplacer = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func esc(s string) string {
	return escReplacer.Replace(s)
}
