// Package detector guesses the language of a source snippet from a fixed table
// of weighted patterns.
package detector

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"zia/internal/models"
)

const patternWeight = 2

// order defines tie-breaking: the first language to reach the top score wins.
var order = []models.Language{models.LangCPP, models.LangJava, models.LangPython}

// DefaultLanguage is returned when no rule matches.
const DefaultLanguage = models.LangPython

type rule struct {
	lang    models.Language
	pattern *regexp.Regexp
	weight  int
}

func cpp(expr string) rule    { return rule{models.LangCPP, regexp.MustCompile(expr), patternWeight} }
func java(expr string) rule   { return rule{models.LangJava, regexp.MustCompile(expr), patternWeight} }
func python(expr string) rule { return rule{models.LangPython, regexp.MustCompile(expr), patternWeight} }

var rules = []rule{
	cpp(`(?i)#include\s*<[a-z]+>`),
	cpp(`(?i)std::[a-z]+`),
	cpp(`cout\s*<<`),
	cpp(`cin\s*>>`),
	cpp(`int\s+main\s*\(`),
	cpp(`using\s+namespace\s+std`),
	cpp(`(?i)vector\s*<[a-z0-9_&*]+>`),
	cpp(`(?i)unordered_(map|set)\s*<`),
	cpp(`(?i)Solution\s*\{`),
	cpp(`(?i)public:\s*[a-z0-9_]+.*\(.*\) \{`),

	java(`(?i)public\s+class\s+[a-z0-9_]+`),
	java(`(?i)static\s+void\s+main\s*\(`),
	java(`(?i)System\.out\.print`),
	java(`(?i)package\s+[a-z0-9_.]+`),
	java(`(?i)import\s+java\.`),
	java(`(?i)Solution\s*\{\s*public\s+[a-z0-9\[\]<>]+\s+[a-z0-9_]+\s*\(`),
	java(`(?i)int\[\]\s+[a-z0-9_]+`),
	java(`List<[A-Z][a-z]+>`),

	python(`(?m)^def\s+[a-z0-9_]+\s*\(`),
	python(`(?m)^elif\s+`),
	python(`(?m)^import\s+[a-z0-9_]+`),
	python(`(?m)^from\s+[a-z0-9_]+\s+import`),
	python(`print\s*\(`),
	python(`if\s+__name__\s*==\s*['"]__main__['"]:`),
	python(`(?i)class\s+Solution(:\s*|\([\s\S]*\):)`),
	python(`(?i)self[,.]`),
	python(`(?i)List\[[a-z0-9_]+\]`),
	python(`(?i)Optional\[[a-z0-9_]+\]`),
	python(`(?i)->\s+[a-z0-9\[\]]+`),
}

// Order is the tie-break order of the languages.
func Order() []models.Language {
	return append([]models.Language(nil), order...)
}

// Analysis is the detector verdict together with the score card behind it.
type Analysis struct {
	Language models.Language
	Scores   map[models.Language]int
}

// Detect returns the best guess for the language of code. It never fails.
func Detect(code string) models.Language {
	return Analyze(code).Language
}

// Analyze scores code against every rule and the punctuation heuristics.
func Analyze(code string) Analysis {
	content := strings.TrimSpace(code)
	scores := make(map[models.Language]int, len(order))
	for _, lang := range order {
		scores[lang] = 0
	}

	for _, r := range rules {
		if r.pattern.MatchString(content) {
			scores[r.lang] += r.weight
		}
	}

	semicolons := strings.Count(content, ";")
	if semicolons > 2 {
		scores[models.LangCPP]++
		scores[models.LangJava]++
	} else if semicolons == 0 && utf8.RuneCountInString(content) > 20 {
		scores[models.LangPython]++
	}

	if strings.Contains(content, "{") && strings.Contains(content, "}") {
		scores[models.LangCPP]++
		scores[models.LangJava]++
	}

	best, detected := 0, DefaultLanguage
	for _, lang := range order {
		if scores[lang] > best {
			best = scores[lang]
			detected = lang
		}
	}

	return Analysis{Language: detected, Scores: scores}
}

// ScoreLabels flattens the score card for JSON and log output.
func (a Analysis) ScoreLabels() map[string]int {
	out := make(map[string]int, len(a.Scores))
	for lang, score := range a.Scores {
		out[string(lang)] = score
	}
	return out
}
