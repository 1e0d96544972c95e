package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ZaguanLabs/xraytl"
)

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s %s\n", xraytl.Name, xraytl.FullVersion())
			if xraytl.GitCommit != "unknown" && xraytl.GitCommit != "" {
				fmt.Fprintf(w, "  commit:  %s\n", xraytl.GitCommit)
			}
			if xraytl.BuildDate != "unknown" && xraytl.BuildDate != "" {
				fmt.Fprintf(w, "  built:   %s\n", xraytl.BuildDate)
			}
			return nil
		},
	}
}
