package ingestion

import (
	"reflect"
	"strings"
	"testing"
)

func TestChunkText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{
			name: "two paragraphs",
			raw:  "A\n\nB",
			want: []string{"A", "B"},
		},
		{
			name: "whitespace only lines and trimming",
			raw:  "  A \n \n\n B\n",
			want: []string{"A", "B"},
		},
		{
			name: "single newline keeps paragraph together",
			raw:  "line one\nline two\n\nnext",
			want: []string{"line one\nline two", "next"},
		},
		{
			name: "crlf blank line",
			raw:  "A\r\n\r\nB",
			want: []string{"A", "B"},
		},
		{
			name: "tabs between newlines",
			raw:  "A\n\t\t\n\tB",
			want: []string{"A", "B"},
		},
		{
			name: "no-break space on blank line",
			raw:  "Frakt tar 3 dagar.\n\u00a0\nRetur inom 30 dagar.",
			want: []string{"Frakt tar 3 dagar.", "Retur inom 30 dagar."},
		},
		{
			name: "vertical tab on blank line",
			raw:  "Frakt tar 3 dagar.\n\v\nRetur inom 30 dagar.",
			want: []string{"Frakt tar 3 dagar.", "Retur inom 30 dagar."},
		},
		{
			name: "ideographic space on blank line",
			raw:  "Frakt tar 3 dagar.\n\u3000\nRetur inom 30 dagar.",
			want: []string{"Frakt tar 3 dagar.", "Retur inom 30 dagar."},
		},
		{
			name: "no-break spaces trimmed from chunk edges",
			raw:  "\u00a0Garanti 2 år.\u00a0\u2003",
			want: []string{"Garanti 2 år."},
		},
		{
			name: "no-break space within a line is kept",
			raw:  "Pris 499\u00a0kr",
			want: []string{"Pris 499\u00a0kr"},
		},
		{
			name: "empty input",
			raw:  "",
			want: []string{},
		},
		{
			name: "only whitespace",
			raw:  "\n\n  \n\n",
			want: []string{},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := ChunkText(tc.raw)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("ChunkText(%q): got %q, want %q", tc.raw, got, tc.want)
			}
		})
	}
}

func TestChunkText_Idempotent(t *testing.T) {
	t.Parallel()

	raw := "Leverans sker inom 3–5 dagar.\n\n\nRetur inom 30 dagar.\n  \nGaranti 2 år."
	first := ChunkText(raw)
	second := ChunkText(strings.Join(first, "\n\n"))
	if !reflect.DeepEqual(first, second) {
		t.Errorf("rechunking joined output: got %q, want %q", second, first)
	}
	if !reflect.DeepEqual(first, ChunkText(raw)) {
		t.Error("ChunkText is not deterministic")
	}
}

func TestChunkText_NoEmptyOrUntrimmedChunks(t *testing.T) {
	t.Parallel()

	for _, c := range ChunkText(" a \n\n\n\n b \n \n c ") {
		if c == "" || strings.TrimSpace(c) != c {
			t.Errorf("chunk %q is empty or not trimmed", c)
		}
	}
}

func TestPreview(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"hello", 10, "hello"},
		{"hello", 3, "hel"},
		{"åäö och mer", 3, "åäö"},
		{"abc", 0, ""},
		{"", 5, ""},
	}
	for _, tc := range tests {
		if got := Preview(tc.in, tc.n); got != tc.want {
			t.Errorf("Preview(%q, %d): got %q, want %q", tc.in, tc.n, got, tc.want)
		}
	}
}
