package relay

import (
	"fmt"
	"html"
	"strings"
	"unicode"
)

const (
	labelCell = `<td style="padding:6px 12px;font-weight:bold;">%s</td>`
	valueCell = `<td style="padding:6px 12px;">%s</td>`
)

// HTML renders the fields as the table the venue inbox receives. email and
// phone values become mailto and tel links. Empty values show as N/A.
func (s Submission) HTML() string {
	var b strings.Builder
	b.WriteString(`<div style="font-family:sans-serif;max-width:600px;">`)
	b.WriteString("\n")
	if s.Directives.Subject != "" {
		fmt.Fprintf(&b, "<h2 style=\"color:#333;\">%s</h2>\n", html.EscapeString(s.Directives.Subject))
	}
	b.WriteString(`<table style="border-collapse:collapse;width:100%;">`)
	b.WriteString("\n")
	for _, f := range s.Fields {
		b.WriteString("<tr>")
		fmt.Fprintf(&b, labelCell, html.EscapeString(fieldLabel(f.Name)))
		fmt.Fprintf(&b, valueCell, fieldValueHTML(f))
		b.WriteString("</tr>\n")
	}
	b.WriteString("</table>\n</div>")
	return b.String()
}

func fieldValueHTML(f Field) string {
	value := strings.TrimSpace(f.Value)
	if value == "" {
		return "N/A"
	}
	escaped := html.EscapeString(value)
	switch strings.ToLower(f.Name) {
	case "email":
		return fmt.Sprintf(`<a href="mailto:%s">%s</a>`, escaped, escaped)
	case "phone":
		return fmt.Sprintf(`<a href="tel:%s">%s</a>`, html.EscapeString(telTarget(value)), escaped)
	}
	return strings.ReplaceAll(escaped, "\n", "<br>")
}

// telTarget keeps the digits and a leading plus.
func telTarget(phone string) string {
	var b strings.Builder
	for i, r := range phone {
		if unicode.IsDigit(r) || (r == '+' && i == 0) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// fieldLabel turns "eventDate" or "guest_count" into "Event Date" and
// "Guest Count".
func fieldLabel(name string) string {
	var words []string
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			words = append(words, string(cur))
			cur = cur[:0]
		}
	}
	for i, r := range name {
		switch {
		case r == '_' || r == '-' || r == ' ':
			flush()
		case unicode.IsUpper(r) && i > 0:
			flush()
			cur = append(cur, r)
		default:
			cur = append(cur, r)
		}
	}
	flush()
	for i, w := range words {
		rs := []rune(w)
		rs[0] = unicode.ToUpper(rs[0])
		words[i] = string(rs)
	}
	return strings.Join(words, " ")
}
