package parser

import "strings"

// ProblemFields is the structured view of a generated DSA problem.
type ProblemFields struct {
	Title       Field
	Difficulty  Field
	Statement   Field
	Constraints Field
	SampleIO    Field
}

// ParseProblem never fails; missing sections are left absent.
func ParseProblem(text string) ProblemFields {
	segments := scan(text)
	return ProblemFields{
		Title:       lineField(segments, LabelTitle),
		Difficulty:  lineField(segments, LabelDifficulty),
		Statement:   blockField(segments, LabelStatement),
		Constraints: blockField(segments, LabelConstraints),
		SampleIO:    blockField(segments, LabelSampleIO),
	}
}

// ParseHint returns the HINT section, or the whole trimmed text when the
// generator ignored the format.
func ParseHint(text string) string {
	if hint := blockField(scan(text), LabelHint); hint.Present && hint.Value != "" {
		return hint.Value
	}
	return strings.TrimSpace(text)
}
