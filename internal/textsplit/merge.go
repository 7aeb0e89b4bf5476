package textsplit

import "strings"

// DefaultSeparator joins chunks in the merged payload.
const DefaultSeparator = "\n\n"

// mergeSeps in priority order for the truncation cut.
var mergeSeps = []string{"\n", "。", ".", " "}

// MergeChunks joins chunks into a single payload of at most maxChars runes.
// When the join exceeds the budget it is truncated, preferring a sentence or
// line boundary past the midpoint over a hard cut.
func MergeChunks(chunks []Chunk, maxChars int, separator string) string {
	if len(chunks) == 0 || maxChars <= 0 {
		return ""
	}
	if separator == "" {
		separator = DefaultSeparator
	}

	parts := make([]string, len(chunks))
	for i, c := range chunks {
		parts[i] = c.Text
	}
	merged := strings.Join(parts, separator)

	runes := []rune(merged)
	if len(runes) <= maxChars {
		return merged
	}

	truncated := runes[:maxChars]
	for _, sep := range mergeSeps {
		last := lastIndexRunes(truncated, []rune(sep))
		if last > maxChars/2 {
			truncated = truncated[:last+1]
			break
		}
	}
	return strings.TrimSpace(string(truncated))
}
