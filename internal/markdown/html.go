package markdown

import (
	"strings"

	"golang.org/x/net/html"
)

// StripHTML returns the text content of s with tags removed and entities
// decoded. Text inside script and style elements is dropped.
func StripHTML(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s
	}
	z := html.NewTokenizer(strings.NewReader(s))
	var b strings.Builder
	skip := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			// io.EOF or a malformed tail; either way the text so far is the result.
			return b.String()
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		case html.StartTagToken:
			if name, _ := z.TagName(); isRawElement(string(name)) {
				skip++
			}
		case html.EndTagToken:
			if name, _ := z.TagName(); isRawElement(string(name)) && skip > 0 {
				skip--
			}
		}
	}
}

func isRawElement(name string) bool {
	return name == "script" || name == "style"
}
