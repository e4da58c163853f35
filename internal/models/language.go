package models

import (
	"strings"

	"github.com/go-enry/go-enry/v2"
)

// Language is the tag of a language the bot can detect and execute.
type Language string

const (
	LangCPP    Language = "cpp"
	LangJava   Language = "java"
	LangPython Language = "python"
)

// contains all supported programming languages (in lowercase)
var SupportedLanguages = map[Language]bool{
	LangCPP:    true,
	LangJava:   true,
	LangPython: true,
}

// short tags people put on code fences that linguist does not know as aliases
var fenceTags = map[string]Language{
	"py":  LangPython,
	"c++": LangCPP,
	"cc":  LangCPP,
}

// linguist language names mapped to our tags
var enryNames = map[string]Language{
	"C++":    LangCPP,
	"Java":   LangJava,
	"Python": LangPython,
}

func SupportedLanguagesList() []string {
	return []string{string(LangCPP), string(LangJava), string(LangPython)}
}

// IsSupported reports whether the normalized tag is a supported language.
func IsSupported(tag string) bool {
	return SupportedLanguages[Language(strings.ToLower(strings.TrimSpace(tag)))]
}

// ResolveLanguage maps a user supplied tag (command argument or code fence info
// string) to a supported language. Unknown or unsupported tags return false.
func ResolveLanguage(tag string) (Language, bool) {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if tag == "" {
		return "", false
	}
	if SupportedLanguages[Language(tag)] {
		return Language(tag), true
	}
	if lang, ok := fenceTags[tag]; ok {
		return lang, true
	}
	name, ok := enry.GetLanguageByAlias(tag)
	if !ok {
		return "", false
	}
	lang, ok := enryNames[name]
	return lang, ok
}

// DisplayName returns the human readable language name.
func (l Language) DisplayName() string {
	switch l {
	case LangCPP:
		return "C++"
	case LangJava:
		return "Java"
	case LangPython:
		return "Python"
	default:
		return string(l)
	}
}
