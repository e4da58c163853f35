package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSupportedLists(t *testing.T) {
	if got := strings.Join(SupportedLanguagesList(), ","); got != "cpp,java,python" {
		t.Fatalf("unexpected languages list: %s", got)
	}
}

func TestResolveLanguage(t *testing.T) {
	cases := map[string]Language{
		"cpp":     LangCPP,
		"C++":     LangCPP,
		" Java ":  LangJava,
		"python":  LangPython,
		"py":      LangPython,
		"python3": LangPython,
	}
	for tag, want := range cases {
		got, ok := ResolveLanguage(tag)
		assert.True(t, ok, "tag %q should resolve", tag)
		assert.Equal(t, want, got, "tag %q", tag)
	}

	for _, tag := range []string{"", "ruby", "javascript", "brainfuck-ish"} {
		_, ok := ResolveLanguage(tag)
		assert.False(t, ok, "tag %q should not resolve", tag)
	}
}

func TestIsSupportedAndDisplayName(t *testing.T) {
	assert.True(t, IsSupported(" PYTHON "))
	assert.False(t, IsSupported("go"))
	assert.Equal(t, "C++", LangCPP.DisplayName())
	assert.Equal(t, "Java", LangJava.DisplayName())
	assert.Equal(t, "Python", LangPython.DisplayName())
}
