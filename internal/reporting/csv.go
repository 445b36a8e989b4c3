package reporting

import "strings"

// ToCSV renders headers and rows as a CSV string. Fields containing a
// comma, a double quote, or a newline are wrapped in quotes with embedded
// quotes doubled; everything else is emitted bare. Rows are joined with \n
// and the result carries no trailing newline.
func ToCSV(headers []string, rows [][]string) string {
	var sb strings.Builder

	writeRecord(&sb, headers)
	for _, row := range rows {
		sb.WriteByte('\n')
		writeRecord(&sb, row)
	}

	return sb.String()
}

func writeRecord(sb *strings.Builder, fields []string) {
	for i, field := range fields {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(escapeField(field))
	}
}

func escapeField(field string) string {
	if !strings.ContainsAny(field, ",\"\n") {
		return field
	}
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}
