// Package parser extracts labelled sections from generator output. Sections
// start with the marker glyph followed by an uppercase label and a colon.
package parser

import (
	"strings"
)

// Marker prefixes every section label in generated text.
const Marker = "🚀"

const (
	LabelTitle       = "TITLE"
	LabelDifficulty  = "DIFFICULTY"
	LabelStatement   = "STATEMENT"
	LabelConstraints = "CONSTRAINTS"
	LabelSampleIO    = "SAMPLE I/O"
	LabelHint        = "HINT"
	LabelHeader      = "HEADER"
)

// Feedback section names that follow a HEADER label.
const (
	SectionCorrectness     = "Correctness"
	SectionTimeComplexity  = "Time Complexity"
	SectionSpaceComplexity = "Space Complexity"
	SectionEdgeCases       = "Edge Cases"
	SectionOptimization    = "Optimization Suggestions"
	SectionFinalVerdict    = "Final Verdict"
)

// Field is a parsed section. Present is false when the section was missing.
type Field struct {
	Value   string
	Present bool
}

// Or returns the value, or placeholder when the section was missing.
func (f Field) Or(placeholder string) string {
	if !f.Present {
		return placeholder
	}
	return f.Value
}

type segment struct {
	label string
	rest  string
}

// scan splits text on the marker and reads each segment's label. Text before
// the first marker and segments without a "LABEL:" head are dropped.
func scan(text string) []segment {
	parts := strings.Split(text, Marker)
	segments := make([]segment, 0, len(parts))
	for _, part := range parts[1:] {
		head := strings.TrimLeft(part, " \t")
		colon := strings.Index(head, ":")
		if colon <= 0 {
			continue
		}
		if strings.ContainsAny(head[:colon], "\r\n") {
			continue
		}
		segments = append(segments, segment{
			label: strings.TrimSpace(head[:colon]),
			rest:  head[colon+1:],
		})
	}
	return segments
}

// lookup returns the first segment carrying label.
func lookup(segments []segment, label string) (segment, bool) {
	for _, seg := range segments {
		if strings.EqualFold(seg.label, label) {
			return seg, true
		}
	}
	return segment{}, false
}

func lineField(segments []segment, label string) Field {
	seg, ok := lookup(segments, label)
	if !ok {
		return Field{}
	}
	value := strings.TrimLeft(seg.rest, " \t\r\n")
	if nl := strings.IndexByte(value, '\n'); nl >= 0 {
		value = value[:nl]
	}
	return Field{Value: strings.TrimSpace(value), Present: true}
}

func blockField(segments []segment, label string) Field {
	seg, ok := lookup(segments, label)
	if !ok {
		return Field{}
	}
	return Field{Value: strings.TrimSpace(seg.rest), Present: true}
}
