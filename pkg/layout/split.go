package layout

import (
	"unicode"
	"unicode/utf8"
)

// Split cuts text into consecutive chunks of at most limit runes. Chunks end on a
// whitespace boundary found no further back than limit*minRatio; when none exists the
// chunk is cut hard at the limit. Chunks are exact substrings, so joining them yields
// text unchanged. Text within the limit yields a single chunk.
func Split(text string, limit int, minRatio float64) []string {
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}

	// offsets[i] is the byte offset of rune i; the final entry is len(text).
	offsets := make([]int, 0, len(text)+1)
	for i := range text {
		offsets = append(offsets, i)
	}
	offsets = append(offsets, len(text))
	count := len(offsets) - 1

	floor := int(float64(limit) * minRatio)
	if floor < 1 {
		floor = 1
	}
	if floor > limit {
		floor = limit
	}

	boundary := func(j int) bool {
		before, _ := utf8.DecodeLastRuneInString(text[:offsets[j]])
		after, _ := utf8.DecodeRuneInString(text[offsets[j]:])
		return unicode.IsSpace(before) || unicode.IsSpace(after)
	}

	var chunks []string
	pos := 0
	for count-pos > limit {
		cut := pos + limit
		for j := pos + limit; j >= pos+floor; j-- {
			if boundary(j) {
				cut = j
				break
			}
		}
		chunks = append(chunks, text[offsets[pos]:offsets[cut]])
		pos = cut
	}
	return append(chunks, text[offsets[pos]:])
}
