package ingestion

import (
	"regexp"
	"strings"
	"unicode"
)

// paragraphBreak matches any whitespace run that contains at least two
// newlines, i.e. a blank line between paragraphs. Lines holding only
// vertical tabs, no-break spaces or other Unicode separators count as blank.
var paragraphBreak = regexp.MustCompile(`\n[\s\v\p{Z}\x{FEFF}]*\n`)

// isBlank reports whether r is whitespace for chunk trimming: the Unicode
// separators plus ASCII control whitespace and the byte order mark.
func isBlank(r rune) bool {
	return r == '\uFEFF' || (unicode.IsSpace(r) && r != '\u0085') || unicode.Is(unicode.Z, r)
}

// ChunkText splits raw into paragraphs. Each piece is trimmed and empty
// pieces are dropped; order is preserved. There is no minimum or maximum
// chunk length.
func ChunkText(raw string) []string {
	parts := paragraphBreak.Split(raw, -1)
	chunks := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimFunc(p, isBlank); p != "" {
			chunks = append(chunks, p)
		}
	}
	return chunks
}

// Preview returns the first n runes of s.
func Preview(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
