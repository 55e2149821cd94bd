package assistant

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// DefaultGreetings is the greeting vocabulary recognised as small talk.
var DefaultGreetings = []string{
	"hej", "hejsan", "tjena", "hallå", "hi", "hello", "god morgon", "god kväll",
}

// maxShortRunes is the length at or below which a single-token message is
// treated as small talk.
const maxShortRunes = 4

var (
	punctuation = strings.NewReplacer("!", "", "?", "", ".", "")
	whitespace  = regexp.MustCompile(`[\s\v\p{Z}\x{FEFF}]+`)
)

// Classifier decides whether a message is a bare greeting that can be
// answered without retrieval.
type Classifier struct {
	greetings map[string]struct{}
}

// NewClassifier builds a Classifier for the given greetings. Entries are
// matched case-insensitively; nil or empty uses DefaultGreetings.
func NewClassifier(greetings []string) *Classifier {
	if len(greetings) == 0 {
		greetings = DefaultGreetings
	}
	set := make(map[string]struct{}, len(greetings))
	for _, g := range greetings {
		if g = strings.ToLower(strings.TrimSpace(g)); g != "" {
			set[g] = struct{}{}
		}
	}
	return &Classifier{greetings: set}
}

// IsSmalltalk normalises q (trim, lower-case, drop "!", "?" and ".") and
// reports true when the result is a known greeting or a single token of at
// most four characters. An empty message counts as small talk.
func (c *Classifier) IsSmalltalk(q string) bool {
	stripped := punctuation.Replace(strings.ToLower(strings.TrimSpace(q)))
	if _, ok := c.greetings[stripped]; ok {
		return true
	}
	return len(whitespace.Split(stripped, -1)) == 1 && utf8.RuneCountInString(stripped) <= maxShortRunes
}
