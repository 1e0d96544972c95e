package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ZaguanLabs/xraytl"
	"github.com/ZaguanLabs/xraytl/processor"
)

func normalizeCmd() *cobra.Command {
	var (
		output    string
		root      string
		noRootFix bool
	)

	cmd := &cobra.Command{
		Use:   "normalize [file]",
		Short: "Repair a malformed string table into parseable UTF-8 XML",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, _, err := readInput(cmd, args)
			if err != nil {
				return fmt.Errorf("normalize: %w", err)
			}

			content, enc, err := processor.ToUTF8(data)
			if err != nil {
				return fmt.Errorf("normalize: %w", err)
			}

			var opts []xraytl.NormalizeOption
			if root != "" {
				opts = append(opts, xraytl.WithRootElement(root))
			}
			if noRootFix {
				opts = append(opts, xraytl.WithoutRootFix())
			}

			if enc == "" {
				enc = "none"
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "declared encoding: %s\n", enc)

			return writeOutput(cmd, output, []byte(xraytl.NormalizeXML(content, opts...)))
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&root, "root", "", "root element name (default string_table)")
	cmd.Flags().BoolVar(&noRootFix, "no-root-fix", false, "do not wrap or truncate around the root element")

	return cmd
}
