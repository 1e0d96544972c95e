package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ZaguanLabs/xraytl"
)

func segmentCmd() *cobra.Command {
	var (
		jsonOutput bool
		sentences  bool
	)

	cmd := &cobra.Command{
		Use:   "segment [text]",
		Short: "Show how a text splits into translatable and protected spans",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var text string
			if len(args) == 1 {
				text = args[0]
			} else {
				data, _, err := readInput(cmd, nil)
				if err != nil {
					return fmt.Errorf("segment: %w", err)
				}
				text = strings.TrimSuffix(string(data), "\n")
			}

			spans, err := xraytl.Segment(text)
			if err != nil {
				return fmt.Errorf("segment: %w", err)
			}

			w := cmd.OutOrStdout()
			if jsonOutput {
				type spanOutput struct {
					Category         string   `json:"category"`
					NeedsTranslation bool     `json:"needs_translation"`
					Content          string   `json:"content"`
					Sentences        []string `json:"sentences,omitempty"`
				}
				out := make([]spanOutput, len(spans))
				for i, s := range spans {
					out[i] = spanOutput{
						Category:         s.Category.String(),
						NeedsTranslation: s.NeedsTranslation,
						Content:          s.Content,
					}
					if sentences && s.NeedsTranslation {
						out[i].Sentences = xraytl.SplitSentences(s.Content)
					}
				}
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}

			for i, s := range spans {
				mark := ' '
				if s.NeedsTranslation {
					mark = '*'
				}
				fmt.Fprintf(w, "%3d %c %-11s %q\n", i, mark, s.Category, s.Content)
				if !sentences || !s.NeedsTranslation {
					continue
				}
				for _, sent := range xraytl.SplitSentences(s.Content) {
					fmt.Fprintf(w, "                  %q\n", sent)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print spans as JSON")
	cmd.Flags().BoolVar(&sentences, "sentences", false, "also split translatable spans into sentences")

	return cmd
}
