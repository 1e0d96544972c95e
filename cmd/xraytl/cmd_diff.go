package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ZaguanLabs/xraytl"
	"github.com/ZaguanLabs/xraytl/processor"
)

func diffCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "diff <old> <new>",
		Short: "Show which entities changed between two versions of a string table",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			older, err := readTable(args[0])
			if err != nil {
				return fmt.Errorf("diff: %w", err)
			}
			newer, err := readTable(args[1])
			if err != nil {
				return fmt.Errorf("diff: %w", err)
			}

			lang := xraytl.DefaultTextKey
			diff := xraytl.DiffEntities(older.Entities(lang), newer.Entities(lang), lang)

			w := cmd.OutOrStdout()
			if jsonOutput {
				return diffJSON(w, diff, args[0], args[1], lang)
			}
			diffText(w, diff, args[0], args[1], lang)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print the diff as JSON")

	return cmd
}

func readTable(path string) (*processor.StringTable, error) {
	data, err := os.ReadFile(path) // #nosec G304 - CLI tool reads user-specified files
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	table, err := processor.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return table, nil
}

func diffJSON(w io.Writer, diff *xraytl.DiffResult, oldPath, newPath, lang string) error {
	type modified struct {
		ID  string `json:"id"`
		Old string `json:"old"`
		New string `json:"new"`
	}
	type diffStats struct {
		Added     int `json:"added"`
		Removed   int `json:"removed"`
		Modified  int `json:"modified"`
		Unchanged int `json:"unchanged"`
	}
	type diffOutput struct {
		PreviousFile     string            `json:"previous_file"`
		InputFile        string            `json:"input_file"`
		Stats            diffStats         `json:"stats"`
		NeedsTranslation []string          `json:"needs_translation"`
		Added            map[string]string `json:"added,omitempty"`
		Removed          map[string]string `json:"removed,omitempty"`
		Modified         []modified        `json:"modified,omitempty"`
	}

	stats := diff.Stats()
	out := diffOutput{
		PreviousFile: filepath.Base(oldPath),
		InputFile:    filepath.Base(newPath),
		Stats: diffStats{
			Added:     stats.Added,
			Removed:   stats.Removed,
			Modified:  stats.Modified,
			Unchanged: stats.Unchanged,
		},
		NeedsTranslation: []string{},
	}
	for _, e := range diff.NeedsTranslation() {
		out.NeedsTranslation = append(out.NeedsTranslation, e.ID)
	}
	if len(diff.Added) > 0 {
		out.Added = make(map[string]string, len(diff.Added))
		for _, e := range diff.Added {
			out.Added[e.ID] = e.Texts[lang]
		}
	}
	if len(diff.Removed) > 0 {
		out.Removed = make(map[string]string, len(diff.Removed))
		for _, e := range diff.Removed {
			out.Removed[e.ID] = e.Texts[lang]
		}
	}
	for _, m := range diff.Modified {
		out.Modified = append(out.Modified, modified{ID: m.New.ID, Old: m.Old.Texts[lang], New: m.New.Texts[lang]})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func diffText(w io.Writer, diff *xraytl.DiffResult, oldPath, newPath, lang string) {
	stats := diff.Stats()

	fmt.Fprintf(w, "Diff: %s vs %s\n\n", filepath.Base(newPath), filepath.Base(oldPath))
	fmt.Fprintf(w, "Summary:\n")
	fmt.Fprintf(w, "  Unchanged: %d\n", stats.Unchanged)
	fmt.Fprintf(w, "  Added:     %d\n", stats.Added)
	fmt.Fprintf(w, "  Removed:   %d\n", stats.Removed)
	fmt.Fprintf(w, "  Modified:  %d\n", stats.Modified)
	fmt.Fprintf(w, "\n")

	if !diff.HasChanges() {
		fmt.Fprintf(w, "No changes detected. All translations are up to date.\n")
		return
	}

	fmt.Fprintf(w, "Needs translation: %d entities\n\n", len(diff.NeedsTranslation()))

	if len(diff.Added) > 0 {
		fmt.Fprintf(w, "Added:\n")
		for _, e := range diff.Added {
			fmt.Fprintf(w, "  + %s %q\n", e.ID, truncate(e.Texts[lang], 50))
		}
		fmt.Fprintf(w, "\n")
	}

	if len(diff.Modified) > 0 {
		fmt.Fprintf(w, "Modified:\n")
		for _, m := range diff.Modified {
			fmt.Fprintf(w, "  ~ %s %q -> %q\n", m.New.ID, truncate(m.Old.Texts[lang], 30), truncate(m.New.Texts[lang], 30))
		}
		fmt.Fprintf(w, "\n")
	}

	if len(diff.Removed) > 0 {
		fmt.Fprintf(w, "Removed:\n")
		for _, e := range diff.Removed {
			fmt.Fprintf(w, "  - %s %q\n", e.ID, truncate(e.Texts[lang], 50))
		}
		fmt.Fprintf(w, "\n")
	}
}
