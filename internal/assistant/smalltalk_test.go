package assistant

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifier_IsSmalltalk(t *testing.T) {
	t.Parallel()

	c := NewClassifier(nil)
	tests := []struct {
		in   string
		want bool
	}{
		{"Hej!", true},
		{"hi", true},
		{"yo", true},
		{"HALLÅ?", true},
		{"god kväll", true},
		{"  Tjena.  ", true},
		{"ok", true},
		{"tack", true},
		{"", true},
		{"Vad kostar leverans?", false},
		{"hejsan hoppsan", false},
		{"garanti", false},
		{"hi there", false},
		{"a\u00a0b", false},
		{"a\vb", false},
		{"a\u3000b", false},
		{"ja\u00a0tack", false},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, c.IsSmalltalk(tc.in), "IsSmalltalk(%q)", tc.in)
	}
}

func TestClassifier_CustomGreetings(t *testing.T) {
	t.Parallel()

	c := NewClassifier([]string{"Good Afternoon", " "})
	assert.True(t, c.IsSmalltalk("good afternoon!"))
	assert.False(t, c.IsSmalltalk("god morgon"), "defaults are replaced, not merged")
}
