package webchat

import (
	"html"
	"strings"
)

// FormatReply renders an assistant reply for the browser. Lines starting with
// "*" become list items; other lines are escaped and separated by <br>.
func FormatReply(text string) string {
	var b strings.Builder
	inList, afterText := false, false
	for _, line := range strings.Split(text, "\n") {
		if item, ok := strings.CutPrefix(strings.TrimSpace(line), "*"); ok {
			if !inList {
				b.WriteString("<ul>")
				inList = true
			}
			b.WriteString("<li>" + html.EscapeString(strings.TrimSpace(item)) + "</li>")
			afterText = false
			continue
		}
		if inList {
			b.WriteString("</ul>")
			inList = false
		}
		if afterText {
			b.WriteString("<br>")
		}
		b.WriteString(html.EscapeString(strings.TrimRight(line, "\r")))
		afterText = true
	}
	if inList {
		b.WriteString("</ul>")
	}
	return b.String()
}
