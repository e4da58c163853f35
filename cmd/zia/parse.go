package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"zia/internal/parser"
)

// sectionView is the YAML shape of a parsed section; absent sections are null
type sectionView map[string]*string

func field(f parser.Field) *string {
	if !f.Present {
		return nil
	}
	v := f.Value
	return &v
}

func problemView(p parser.ProblemFields) sectionView {
	return sectionView{
		"title":       field(p.Title),
		"difficulty":  field(p.Difficulty),
		"statement":   field(p.Statement),
		"constraints": field(p.Constraints),
		"sample_io":   field(p.SampleIO),
	}
}

type feedbackView struct {
	Sections sectionView `yaml:"sections"`
	Pass     bool        `yaml:"pass"`
	Verdict  string      `yaml:"verdict"`
}

func newFeedbackView(f parser.FeedbackFields) feedbackView {
	return feedbackView{
		Sections: sectionView{
			"correctness":      field(f.Correctness),
			"time_complexity":  field(f.TimeComplexity),
			"space_complexity": field(f.SpaceComplexity),
			"edge_cases":       field(f.EdgeCases),
			"optimization":     field(f.Optimization),
			"final_verdict":    field(f.Verdict),
		},
		Pass:    f.Pass,
		Verdict: f.VerdictLabel(),
	}
}

func newParseCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "parse problem|feedback|hint [file]",
		Short:     "Extract marked sections from generated text",
		Args:      cobra.RangeArgs(1, 2),
		ValidArgs: []string{"problem", "feedback", "hint"},
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd, args[1:])
			if err != nil {
				return err
			}

			var view any
			switch args[0] {
			case "problem":
				view = problemView(parser.ParseProblem(text))
			case "feedback":
				view = newFeedbackView(parser.ParseFeedback(text))
			case "hint":
				view = map[string]string{"hint": parser.ParseHint(text)}
			default:
				return fmt.Errorf("unknown section kind %q, want problem, feedback or hint", args[0])
			}

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(view); err != nil {
				return fmt.Errorf("encode: %w", err)
			}
			return enc.Close()
		},
	}
	return cmd
}
