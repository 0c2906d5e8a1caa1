package certx

import (
	"encoding/json"
	"fmt"
	"html"
	"sort"
	"strings"
)

// row is one Section;Field;Value triple shared by the tabular exports.
type row struct {
	Section, Field, Value string
}

func (ci *CertificateInfo) rows() []row {
	rows := []row{
		{"General", "kind", string(ci.Kind)},
	}

	rows = append(rows, mapRows("Subject", ci.Subject)...)
	rows = append(rows, mapRows("Issuer", ci.Issuer)...)

	if ci.Properties.SerialNumber != "" {
		rows = append(rows, row{"Properties", "serial_number", ci.Properties.SerialNumber})
	}
	if ci.Properties.NotBefore != "" {
		rows = append(rows, row{"Properties", "not_before", ci.Properties.NotBefore})
	}
	if ci.Properties.NotAfter != "" {
		rows = append(rows, row{"Properties", "not_after", ci.Properties.NotAfter})
	}
	rows = append(rows,
		row{"Properties", "signature_algorithm", ci.Properties.SignatureAlgorithm},
		row{"Properties", "public_key", ci.Properties.PublicKey},
	)

	for _, ext := range ci.Extensions {
		value := ext.Value
		if ext.Critical {
			value = "(critical) " + value
		}
		rows = append(rows, row{"Extensions", ext.Name, value})
	}

	for _, check := range ci.Checks {
		rows = append(rows, row{"Checks", check.Name, fmt.Sprintf("%s: %s", check.Status, check.Message)})
	}

	return rows
}

// mapRows emits one row per attribute, sorted by field for stable output.
func mapRows(section string, attrs map[string]string) []row {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rows := make([]row, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, row{section, k, attrs[k]})
	}
	return rows
}

// ExportJSON renders the full structure as indented JSON.
func (ci *CertificateInfo) ExportJSON() ([]byte, error) {
	return json.MarshalIndent(ci, "", "  ")
}

// ExportCSV renders semicolon-separated Section;Field;Value rows with a
// header line. Semicolons inside values are left as-is; consumers import
// this into spreadsheets, not parsers.
func (ci *CertificateInfo) ExportCSV() string {
	var sb strings.Builder
	sb.WriteString("Section;Field;Value\n")
	for _, r := range ci.rows() {
		sb.WriteString(r.Section)
		sb.WriteByte(';')
		sb.WriteString(r.Field)
		sb.WriteByte(';')
		sb.WriteString(r.Value)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// ExportMarkdown renders a three-column Markdown table.
func (ci *CertificateInfo) ExportMarkdown() string {
	var sb strings.Builder
	sb.WriteString("| Section | Field | Value |\n")
	sb.WriteString("|---|---|---|\n")
	for _, r := range ci.rows() {
		sb.WriteString("| ")
		sb.WriteString(mdEscape(r.Section))
		sb.WriteString(" | ")
		sb.WriteString(mdEscape(r.Field))
		sb.WriteString(" | ")
		sb.WriteString(mdEscape(r.Value))
		sb.WriteString(" |\n")
	}
	return sb.String()
}

func mdEscape(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}

// ExportHTML renders a minimal standalone HTML table.
func (ci *CertificateInfo) ExportHTML() string {
	var sb strings.Builder
	sb.WriteString("<table>\n<tr><th>Section</th><th>Field</th><th>Value</th></tr>\n")
	for _, r := range ci.rows() {
		sb.WriteString("<tr><td>")
		sb.WriteString(html.EscapeString(r.Section))
		sb.WriteString("</td><td>")
		sb.WriteString(html.EscapeString(r.Field))
		sb.WriteString("</td><td>")
		sb.WriteString(html.EscapeString(r.Value))
		sb.WriteString("</td></tr>\n")
	}
	sb.WriteString("</table>\n")
	return sb.String()
}
