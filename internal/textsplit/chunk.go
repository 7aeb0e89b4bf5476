package textsplit

import (
	"strings"
	"unicode"
)

// Default chunking parameters: character windows roughly equivalent to
// 300-500 token RAG chunks.
const (
	DefaultChunkSize    = 800
	DefaultChunkOverlap = 100
)

// chunkSeps in priority order. A boundary is accepted only past the midpoint
// of the window; otherwise the next separator is tried, ending in a hard cut.
var chunkSeps = []string{"\n\n", "\n", "。", ".", " "}

// Chunk is a bounded, boundary-aligned slice of body text.
type Chunk struct {
	Text        string
	StartOffset int // rune offset of the first rune of Text in the stripped input
}

// ChunkText splits text into overlapping chunks of at most chunkSize runes,
// preferring to cut on paragraph, sentence or space boundaries. The result is
// deterministic for identical input and parameters.
func ChunkText(text string, chunkSize, overlap int) []Chunk {
	text = strings.TrimSpace(text)
	if text == "" || chunkSize <= 0 {
		return nil
	}
	if overlap < 0 {
		overlap = 0
	}

	runes := []rune(text)
	if len(runes) <= chunkSize {
		return []Chunk{{Text: text, StartOffset: 0}}
	}

	var chunks []Chunk
	// the offset tracks the trimmed text, not the window origin
	push := func(winStart, winEnd int) {
		lead := winStart
		for lead < winEnd && unicode.IsSpace(runes[lead]) {
			lead++
		}
		if c := strings.TrimSpace(string(runes[lead:winEnd])); c != "" {
			chunks = append(chunks, Chunk{Text: c, StartOffset: lead})
		}
	}

	start := 0
	for start < len(runes) {
		end := start + chunkSize
		if end >= len(runes) {
			push(start, len(runes))
			break
		}

		segment := runes[start:end]
		for _, sep := range chunkSeps {
			idx := lastIndexRunes(segment, []rune(sep))
			if idx > chunkSize/2 {
				end = start + idx + len([]rune(sep))
				break
			}
		}

		push(start, end)

		next := end - min(overlap, chunkSize-1)
		if next <= start {
			// forward progress even under pathological overlap values
			next = start + 1
		}
		start = next
	}
	return chunks
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
