package parser

import "strings"

const (
	VerdictPass             = "PASS"
	VerdictNeedsImprovement = "NEEDS IMPROVEMENT"
)

var feedbackSections = []string{
	SectionCorrectness,
	SectionTimeComplexity,
	SectionSpaceComplexity,
	SectionEdgeCases,
	SectionOptimization,
	SectionFinalVerdict,
}

// FeedbackFields is the structured view of a solution evaluation.
type FeedbackFields struct {
	Correctness     Field
	TimeComplexity  Field
	SpaceComplexity Field
	EdgeCases       Field
	Optimization    Field
	Verdict         Field
	Pass            bool
}

// VerdictLabel is the display classification of the evaluation.
func (f FeedbackFields) VerdictLabel() string {
	if f.Pass {
		return VerdictPass
	}
	return VerdictNeedsImprovement
}

// ParseFeedback reads "HEADER: <name>" sections and classifies the verdict.
func ParseFeedback(text string) FeedbackFields {
	found := make(map[string]Field, len(feedbackSections))
	for _, seg := range scan(text) {
		if !strings.EqualFold(seg.label, LabelHeader) {
			continue
		}
		rest := strings.TrimLeft(seg.rest, " \t")
		for _, name := range feedbackSections {
			if len(rest) < len(name) || !strings.EqualFold(rest[:len(name)], name) {
				continue
			}
			if _, seen := found[name]; !seen {
				found[name] = Field{Value: strings.TrimSpace(rest[len(name):]), Present: true}
			}
			break
		}
	}

	fields := FeedbackFields{
		Correctness:     found[SectionCorrectness],
		TimeComplexity:  found[SectionTimeComplexity],
		SpaceComplexity: found[SectionSpaceComplexity],
		EdgeCases:       found[SectionEdgeCases],
		Optimization:    found[SectionOptimization],
		Verdict:         found[SectionFinalVerdict],
	}
	fields.Pass = strings.Contains(strings.ToLower(text), "final verdict: pass") ||
		(fields.Verdict.Present && strings.Contains(strings.ToLower(fields.Verdict.Value), "pass"))
	return fields
}
