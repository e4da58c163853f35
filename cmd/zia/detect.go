package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"zia/internal/detector"
	"zia/internal/utils"
)

// readInput reads the named file, or stdin when the name is empty or "-"
func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("read %s: %w", args[0], err)
	}
	return string(data), nil
}

func newDetectCommand() *cobra.Command {
	var showScores bool

	cmd := &cobra.Command{
		Use:   "detect [file]",
		Short: "Guess the language of a snippet",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			analysis := detector.Analyze(utils.StripFences(code))
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, analysis.Language)
			if showScores {
				for _, lang := range detector.Order() {
					fmt.Fprintf(out, "%-8s %d\n", lang, analysis.Scores[lang])
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&showScores, "scores", false, "print the score card")
	return cmd
}
