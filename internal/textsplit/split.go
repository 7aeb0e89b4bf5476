// Package textsplit holds the boundary-aware text algorithms: splitting a
// document into a header (title/author/affiliation) section and a body,
// chunking the body with overlap, and merging chunks under a character
// budget. All sizes are measured in runes so CJK text cuts cleanly.
package textsplit

import "strings"

// DefaultAuthorSectionChars bounds the header section. Literature usually
// opens with title, authors, affiliations and venue, which is strong signal
// for domain classification.
const DefaultAuthorSectionChars = 1200

// sectionSeps in priority order: paragraph break, line break, sentence end.
var sectionSeps = []string{"\n\n", "\n", "。", "."}

// SplitAuthorSection cuts fullText into a header of at most authorChars runes
// and the remaining body. The cut prefers the nearest boundary before the
// limit, but only past the midpoint of the window so a dense preamble is not
// reduced to a fragment.
func SplitAuthorSection(fullText string, authorChars int) (header, body string) {
	text := strings.TrimSpace(fullText)
	if text == "" {
		return "", ""
	}
	if authorChars <= 0 {
		authorChars = DefaultAuthorSectionChars
	}

	runes := []rune(text)
	if len(runes) <= authorChars {
		return text, ""
	}

	cut := authorChars
	head := runes[:authorChars]
	for _, sep := range sectionSeps {
		idx := lastIndexRunes(head, []rune(sep))
		if idx > authorChars/2 {
			cut = idx + len([]rune(sep))
			break
		}
	}

	header = strings.TrimSpace(string(runes[:cut]))
	body = strings.TrimSpace(string(runes[cut:]))
	return header, body
}

// lastIndexRunes returns the rune index of the last occurrence of sep in r,
// or -1 if absent.
func lastIndexRunes(r, sep []rune) int {
	if len(sep) == 0 || len(sep) > len(r) {
		return -1
	}
	for i := len(r) - len(sep); i >= 0; i-- {
		match := true
		for j := range sep {
			if r[i+j] != sep[j] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}
