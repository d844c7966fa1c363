package webchat

import "testing"

func TestFormatReply(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Hello", "Hello"},
		{"newlines", "Line one\nLine two", "Line one<br>Line two"},
		{"list", "Our services:\n* Classic Manicure\n* Facial Treatment\nWhich one?",
			"Our services:<ul><li>Classic Manicure</li><li>Facial Treatment</li></ul>Which one?"},
		{"trailing list", "Pick:\n*A\n* B", "Pick:<ul><li>A</li><li>B</li></ul>"},
		{"escapes markup", "<script>x</script>\n* a & b", "&lt;script&gt;x&lt;/script&gt;<ul><li>a &amp; b</li></ul>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatReply(tt.in); got != tt.want {
				t.Fatalf("FormatReply(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
