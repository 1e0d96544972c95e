package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ZaguanLabs/xraytl"
	"github.com/ZaguanLabs/xraytl/cache"
)

func cacheCmd() *cobra.Command {
	var backend string

	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Export or import the translation memory",
	}
	cmd.PersistentFlags().StringVar(&backend, "backend", "", "cache backend: redis or sqlite (default cache.backend)")

	cmd.AddCommand(cacheExportCmd(&backend), cacheImportCmd(&backend))
	return cmd
}

func cacheExportCmd(backend *string) *cobra.Command {
	var (
		output     string
		sourceLang string
		targetLang string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write cached translations as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, closeCache, err := openPersistentCache(cmd, *backend)
			if err != nil {
				return fmt.Errorf("cache export: %w", err)
			}
			defer closeCache()

			metadata := map[string]string{
				"tool":    xraytl.UserAgent(),
				"backend": cfg.Cache.Backend,
			}
			if *backend != "" {
				metadata["backend"] = *backend
			}

			if sourceLang != "" {
				metadata["source_lang"] = sourceLang
			}
			if targetLang != "" {
				metadata["target_lang"] = targetLang
			}
			opts := cache.ExportOptions{SourceLang: sourceLang, TargetLang: targetLang, Metadata: metadata}

			exporter := cache.NewExporter(c)
			var n int
			if output == "" || output == "-" {
				n, err = exporter.Export(ctx, cmd.OutOrStdout(), opts)
			} else {
				n, err = exporter.ExportToFile(ctx, output, opts)
			}
			if err != nil {
				return fmt.Errorf("cache export: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d entries\n", n)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&sourceLang, "source-lang", "", "only export translations from this language")
	cmd.Flags().StringVar(&targetLang, "target-lang", "", "only export translations into this language")

	return cmd
}

func cacheImportCmd(backend *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Load translations from a JSON export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, closeCache, err := openPersistentCache(cmd, *backend)
			if err != nil {
				return fmt.Errorf("cache import: %w", err)
			}
			defer closeCache()

			var result *cache.ImportResult
			if args[0] == "-" {
				result, err = cache.NewImporter(c).Import(ctx, cmd.InOrStdin())
			} else {
				result, err = cache.NewImporter(c).ImportFromFile(ctx, args[0])
			}
			if err != nil {
				return fmt.Errorf("cache import: %w", err)
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Imported %d entries (%d skipped, %d failed) from export version %s\n",
				result.Imported, result.Skipped, result.Failed, result.Version)
			for _, k := range sortedKeys(result.Metadata) {
				fmt.Fprintf(w, "  %s: %s\n", k, result.Metadata[k])
			}
			return nil
		},
	}

	return cmd
}

// openPersistentCache opens the redis or sqlite cache. Memory caches do not
// outlive the process, so exporting or importing them is refused.
func openPersistentCache(cmd *cobra.Command, backend string) (cache.ExportableCache, func(), error) {
	c := cfg.Cache
	if backend != "" {
		c.Backend = backend
	}
	switch c.Backend {
	case "redis", "sqlite":
	default:
		return nil, nil, fmt.Errorf("cache backend %q is not persistent; use redis or sqlite", c.Backend)
	}
	if c.Backend == "sqlite" {
		if _, err := os.Stat(c.SQLitePath); err != nil && cmd.Name() == "export" {
			return nil, nil, fmt.Errorf("no translation memory at %s", c.SQLitePath)
		}
	}
	return openCache(cmd.Context(), c)
}
