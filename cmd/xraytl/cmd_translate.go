package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ZaguanLabs/xraytl"
	"github.com/ZaguanLabs/xraytl/cache"
	"github.com/ZaguanLabs/xraytl/internal/config"
	"github.com/ZaguanLabs/xraytl/processor"
	"github.com/ZaguanLabs/xraytl/provider"
)

func translateCmd() *cobra.Command {
	var (
		targetLang   string
		sourceLang   string
		docLang      string
		output       string
		backendName  string
		model        string
		cacheBackend string
		contextStr   string
		style        string
		glossaryFile string
		exclude      []string
		variants     map[string]string
		workers      int
		skipIDs      bool
		dryRun       bool
		jsonOutput   bool
		quiet        bool
	)

	cmd := &cobra.Command{
		Use:   "translate [file]",
		Short: "Translate a string table",
		Long:  "Translate a string table file (or stdin). Other language versions of the same table can be passed with --variant so entities missing in the document language fall back to them.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			run := *cfg
			flags := cmd.Flags()
			if flags.Changed("lang") {
				run.Translation.Target = targetLang
			}
			if flags.Changed("source") {
				run.Translation.Source = sourceLang
			}
			if flags.Changed("backend") {
				run.Translation.Backend = backendName
			}
			if flags.Changed("cache") {
				run.Cache.Backend = cacheBackend
			}
			if flags.Changed("context") {
				run.Translation.Context = contextStr
			}
			if flags.Changed("style") {
				run.Translation.Style = style
			}
			if flags.Changed("glossary") {
				run.Translation.GlossaryFile = glossaryFile
			}
			if flags.Changed("workers") {
				run.Translation.Workers = workers
			}
			if flags.Changed("skip-identifiers") {
				run.Translation.SkipIdentifiers = skipIDs
			}
			if flags.Changed("model") {
				run.OpenAI.Model = model
				run.Anthropic.Model = model
			}
			if err := run.Validate(); err != nil {
				return fmt.Errorf("translate: %w", err)
			}

			data, inputName, err := readInput(cmd, args)
			if err != nil {
				return fmt.Errorf("translate: %w", err)
			}

			opts, err := processorOptions(docLang, variants)
			if err != nil {
				return fmt.Errorf("translate: %w", err)
			}
			proc := processor.NewStringTableProcessor(opts...)
			target := xraytl.NormalizeTag(run.Translation.Target)

			if dryRun {
				return runDryRun(cmd.OutOrStdout(), proc, data, inputName, target, jsonOutput)
			}

			return runTranslate(cmd, &run, proc, data, inputName, target, translateOutput{
				path:    output,
				exclude: exclude,
				json:    jsonOutput,
				quiet:   quiet,
			})
		},
	}

	cmd.Flags().StringVarP(&targetLang, "lang", "l", "", "target language tag (e.g. rus, ukr, pol); default translation.target")
	cmd.Flags().StringVar(&sourceLang, "source", "", "source language of resolved document texts (empty: detect)")
	cmd.Flags().StringVar(&docLang, "doc-lang", "", "language tag of the input document; enables fallback between variants")
	cmd.Flags().StringToStringVar(&variants, "variant", nil, "other language version of the table as lang=path (repeatable)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&backendName, "backend", "", "translation backend: openai, anthropic or none")
	cmd.Flags().StringVar(&model, "model", "", "model name for the selected backend")
	cmd.Flags().StringVar(&cacheBackend, "cache", "", "cache backend: memory, redis, sqlite or none")
	cmd.Flags().StringVar(&contextStr, "context", "", "game or mod the table belongs to")
	cmd.Flags().StringVar(&style, "style", "", "translation style: neutral, dialogue, interface or lore")
	cmd.Flags().StringVar(&glossaryFile, "glossary", "", "YAML file mapping source terms to preferred translations")
	cmd.Flags().StringSliceVar(&exclude, "exclude", nil, "terms that must never be translated")
	cmd.Flags().IntVar(&workers, "workers", 0, "concurrent translation workers")
	cmd.Flags().BoolVar(&skipIDs, "skip-identifiers", false, "copy identifier-like texts through untranslated")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "show what would be translated without calling the backend")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print the result as JSON")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "suppress progress output")

	return cmd
}

func processorOptions(docLang string, variantPaths map[string]string) ([]processor.StringTableOption, error) {
	var opts []processor.StringTableOption
	if docLang != "" {
		opts = append(opts, processor.WithDocumentLang(docLang))
	}
	if len(variantPaths) == 0 {
		return opts, nil
	}

	variants := make(map[string]*processor.StringTable, len(variantPaths))
	for lang, path := range variantPaths {
		data, err := os.ReadFile(path) // #nosec G304 - CLI tool reads user-specified files
		if err != nil {
			return nil, fmt.Errorf("reading %s variant: %w", lang, err)
		}
		table, err := processor.Decode(data)
		if err != nil {
			return nil, fmt.Errorf("parsing %s variant: %w", lang, err)
		}
		variants[xraytl.NormalizeTag(lang)] = table
	}
	return append(opts, processor.WithVariants(variants)), nil
}

type translateOutput struct {
	path    string
	exclude []string
	json    bool
	quiet   bool
}

// JSONOutput is the JSON form of a translation run.
type JSONOutput struct {
	RunID           string `json:"run_id"`
	Encoding        string `json:"encoding,omitempty"`
	Content         string `json:"content"`
	TotalEntities   int    `json:"total_entities"`
	SkippedEntities int    `json:"skipped_entities"`
	TranslatedCount int    `json:"translated_count"`
	CachedCount     int    `json:"cached_count"`
	ElapsedMs       int64  `json:"elapsed_ms"`
}

func runTranslate(cmd *cobra.Command, run *config.Config, proc *processor.StringTableProcessor, data []byte, inputName, target string, out translateOutput) error {
	ctx := cmd.Context()
	stderr := cmd.ErrOrStderr()
	logger := newLogger(stderr)
	if out.quiet {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	backend, err := newBackend(run, logger)
	if err != nil {
		return fmt.Errorf("translate: %w", err)
	}

	tc, closeCache, err := openCache(ctx, run.Cache)
	if err != nil {
		return fmt.Errorf("translate: opening cache: %w", err)
	}
	defer closeCache()

	glossary, err := loadGlossary(run.Translation.GlossaryFile)
	if err != nil {
		return fmt.Errorf("translate: %w", err)
	}

	opts := []xraytl.TranslatorOption{
		xraytl.WithProcessor(proc),
		xraytl.WithLogger(logger),
		xraytl.WithSourceLang(run.Translation.Source),
		xraytl.WithContext(run.Translation.Context),
		xraytl.WithStyle(xraytl.TranslationStyle(run.Translation.Style)),
		xraytl.WithBatchSize(run.Translation.BatchSize),
		xraytl.WithSkipIdentifiers(run.Translation.SkipIdentifiers),
		xraytl.WithExcludedTerms(out.exclude),
		xraytl.WithGlossary(glossary),
	}
	if tc != nil {
		opts = append(opts, xraytl.WithCache(tc))
	}

	tr := xraytl.NewParallelTranslator(target, backend, run.Translation.Workers, opts...).
		WithChunkSize(run.Translation.BatchSize)

	if !out.quiet {
		fmt.Fprintf(stderr, "Translating %s to %s (%s)...\n", inputName, target, xraytl.GetLanguageName(target))
	}

	start := time.Now()
	result, err := tr.Process(ctx, string(data), processor.ContentTypeStringTable)
	if err != nil {
		return fmt.Errorf("translation failed: %w", err)
	}
	elapsed := time.Since(start)

	if out.json {
		return outputJSON(cmd.OutOrStdout(), result, elapsed)
	}

	encoded, err := processor.EncodeDocument(result.Content, result.Encoding)
	if err != nil {
		return fmt.Errorf("translate: %w", err)
	}
	if err := writeOutput(cmd, out.path, encoded); err != nil {
		return fmt.Errorf("translate: %w", err)
	}

	if !out.quiet {
		fmt.Fprintf(stderr, "\nDone in %v\n", elapsed.Round(time.Millisecond))
		fmt.Fprintf(stderr, "  Entities:     %d\n", result.TotalEntities)
		fmt.Fprintf(stderr, "  Skipped:      %d\n", result.SkippedEntities)
		fmt.Fprintf(stderr, "  Translated:   %d\n", result.TranslatedCount)
		fmt.Fprintf(stderr, "  From cache:   %d\n", result.CachedCount)
	}
	return nil
}

func outputJSON(w io.Writer, result *xraytl.ProcessedContent, elapsed time.Duration) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(JSONOutput{
		RunID:           result.RunID,
		Encoding:        result.Encoding,
		Content:         result.Content,
		TotalEntities:   result.TotalEntities,
		SkippedEntities: result.SkippedEntities,
		TranslatedCount: result.TranslatedCount,
		CachedCount:     result.CachedCount,
		ElapsedMs:       elapsed.Milliseconds(),
	})
}

// newBackend builds the configured backend wrapped with rate limiting and
// retries. The "none" backend is nil, which copies texts through.
func newBackend(run *config.Config, logger *slog.Logger) (xraytl.Backend, error) {
	var backend xraytl.Backend
	switch run.Translation.Backend {
	case "none":
		return nil, nil
	case "openai":
		if run.OpenAI.APIKey == "" {
			return nil, fmt.Errorf("OpenAI API key required (OPENAI_API_KEY or openai.api_key)")
		}
		backend = provider.NewOpenAIProvider(provider.OpenAIConfig{
			APIKey:      run.OpenAI.APIKey,
			Model:       run.OpenAI.Model,
			Temperature: run.OpenAI.Temperature,
			BaseURL:     run.OpenAI.BaseURL,
		})
	case "anthropic":
		if run.Anthropic.APIKey == "" {
			return nil, fmt.Errorf("Anthropic API key required (ANTHROPIC_API_KEY or anthropic.api_key)")
		}
		backend = provider.NewAnthropicProvider(provider.AnthropicConfig{
			APIKey:    run.Anthropic.APIKey,
			Model:     run.Anthropic.Model,
			MaxTokens: run.Anthropic.MaxTokens,
		})
	default:
		return nil, fmt.Errorf("unknown backend %q", run.Translation.Backend)
	}

	if run.RateLimit.RequestsPerMinute > 0 {
		backend = xraytl.NewRateLimitedBackend(backend, run.RateLimit.Backend())
	}
	return xraytl.NewRetryableBackend(backend, run.Retry.Backend(), logger), nil
}

// openCache opens the configured cache. It returns a nil cache for "none".
func openCache(ctx context.Context, c config.CacheConfig) (cache.ExportableCache, func(), error) {
	noop := func() {}
	switch c.Backend {
	case "none":
		return nil, noop, nil
	case "memory":
		return cache.NewInMemoryCache(c.TTL), noop, nil
	case "redis":
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			URL:       c.RedisURL,
			TTL:       c.TTL,
			KeyPrefix: c.KeyPrefix,
		})
		if err != nil {
			return nil, noop, err
		}
		return rc, func() { _ = rc.Close() }, nil
	case "sqlite":
		sc, err := cache.NewSQLiteCache(cache.SQLiteConfig{Path: c.SQLitePath, TTL: c.TTL})
		if err != nil {
			return nil, noop, err
		}
		return sc, func() { _ = sc.Close() }, nil
	}
	return nil, noop, fmt.Errorf("unknown cache backend %q", c.Backend)
}

// loadGlossary reads a YAML mapping of source terms to translations.
func loadGlossary(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path) // #nosec G304 - CLI tool reads user-specified files
	if err != nil {
		return nil, fmt.Errorf("reading glossary: %w", err)
	}
	var glossary map[string]string
	if err := yaml.Unmarshal(data, &glossary); err != nil {
		return nil, fmt.Errorf("parsing glossary: %w", err)
	}
	return glossary, nil
}

type dryRunEntity struct {
	ID         string   `json:"id"`
	SourceLang string   `json:"source_lang,omitempty"`
	Spans      []string `json:"spans,omitempty"`
	Skipped    string   `json:"skipped,omitempty"`
}

// runDryRun shows which spans of which variant would be sent to the backend.
func runDryRun(w io.Writer, proc *processor.StringTableProcessor, data []byte, inputName, target string, jsonOut bool) error {
	_, entities, err := proc.Extract(string(data))
	if err != nil {
		return fmt.Errorf("extracting entities: %w", err)
	}

	planned := make([]dryRunEntity, 0, len(entities))
	spanCount := 0
	for _, e := range entities {
		item := dryRunEntity{ID: e.ID}
		lang, text, err := xraytl.SelectSource(e, target)
		if err != nil {
			item.Skipped = err.Error()
			planned = append(planned, item)
			continue
		}
		spans, err := xraytl.Segment(text)
		if err != nil {
			item.Skipped = err.Error()
			planned = append(planned, item)
			continue
		}
		item.SourceLang = lang
		item.Spans = spans.Texts()
		spanCount += len(item.Spans)
		planned = append(planned, item)
	}

	if jsonOut {
		type dryRunOutput struct {
			InputFile   string         `json:"input_file"`
			TargetLang  string         `json:"target_lang"`
			EntityCount int            `json:"entity_count"`
			SpanCount   int            `json:"span_count"`
			Entities    []dryRunEntity `json:"entities"`
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(dryRunOutput{
			InputFile:   inputName,
			TargetLang:  target,
			EntityCount: len(entities),
			SpanCount:   spanCount,
			Entities:    planned,
		})
	}

	fmt.Fprintf(w, "Dry run: %s -> %s\n", inputName, target)
	fmt.Fprintf(w, "Found %d entities, %d translatable spans:\n\n", len(entities), spanCount)

	for i, item := range planned {
		fmt.Fprintf(w, "%3d. %s", i+1, item.ID)
		switch {
		case item.Skipped != "":
			fmt.Fprintf(w, " (skipped: %s)\n", item.Skipped)
			continue
		case len(item.Spans) == 0:
			fmt.Fprintf(w, " [%s] nothing to translate\n", item.SourceLang)
			continue
		}
		fmt.Fprintf(w, " [%s]\n", item.SourceLang)
		for _, s := range item.Spans {
			fmt.Fprintf(w, "     %q\n", truncate(s, 60))
		}
	}
	return nil
}

// sortedKeys returns the keys of m in order.
func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
