package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"
)

// ExportVersion is the version written into export files. Imports accept
// any 1.x file.
const ExportVersion = "1.0"

// ExportFormat is the on-disk layout of a translation memory dump.
type ExportFormat struct {
	Version    string            `json:"version"`
	ExportedAt string            `json:"exported_at"`
	Entries    []ExportEntry     `json:"entries"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// ExportEntry is one cached span translation. Key has the form
// hash:source:target.
type ExportEntry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Languages splits the key into its source and target language codes.
// ok is false for keys that do not have three parts.
func (e ExportEntry) Languages() (source, target string, ok bool) {
	parts := strings.Split(e.Key, ":")
	if len(parts) != 3 || parts[0] == "" {
		return "", "", false
	}
	return parts[1], parts[2], true
}

// ExportOptions selects which entries are written. Empty language fields
// match everything.
type ExportOptions struct {
	SourceLang string
	TargetLang string
	Metadata   map[string]string
}

func (o ExportOptions) match(e ExportEntry) bool {
	if o.SourceLang == "" && o.TargetLang == "" {
		return true
	}
	source, target, ok := e.Languages()
	if !ok {
		return false
	}
	if o.SourceLang != "" && o.SourceLang != source {
		return false
	}
	return o.TargetLang == "" || o.TargetLang == target
}

// Exporter dumps an exportable cache as JSON.
type Exporter struct {
	cache ExportableCache
	now   func() time.Time
}

// NewExporter returns an exporter reading from cache.
func NewExporter(cache ExportableCache) *Exporter {
	return &Exporter{cache: cache, now: time.Now}
}

// Export writes the matching entries to w, sorted by key, and returns how
// many were written.
func (e *Exporter) Export(ctx context.Context, w io.Writer, opts ExportOptions) (int, error) {
	data, err := e.cache.Entries(ctx)
	if err != nil {
		return 0, fmt.Errorf("reading translation memory: %w", err)
	}

	dump := ExportFormat{
		Version:    ExportVersion,
		ExportedAt: e.now().UTC().Format(time.RFC3339),
		Entries:    make([]ExportEntry, 0, len(data)),
		Metadata:   opts.Metadata,
	}
	for key, value := range data {
		entry := ExportEntry{Key: key, Value: value}
		if opts.match(entry) {
			dump.Entries = append(dump.Entries, entry)
		}
	}
	sort.Slice(dump.Entries, func(i, j int) bool { return dump.Entries[i].Key < dump.Entries[j].Key })

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(dump); err != nil {
		return 0, fmt.Errorf("writing export: %w", err)
	}
	return len(dump.Entries), nil
}

// ExportToFile writes the export to path, replacing any existing file.
func (e *Exporter) ExportToFile(ctx context.Context, path string, opts ExportOptions) (int, error) {
	f, err := os.Create(path) // #nosec G304 - path is intentionally user-provided
	if err != nil {
		return 0, fmt.Errorf("creating %s: %w", path, err)
	}
	n, err := e.Export(ctx, f, opts)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("closing %s: %w", path, cerr)
	}
	return n, err
}

// Importer loads a JSON export into a cache.
type Importer struct {
	cache TranslationCache
}

// NewImporter returns an importer writing into cache.
func NewImporter(cache TranslationCache) *Importer {
	return &Importer{cache: cache}
}

// ImportResult reports what an import did.
type ImportResult struct {
	Version  string
	Metadata map[string]string
	Imported int
	Skipped  int
	Failed   int
}

// Import reads an export from r. Entries with an empty key or value are
// skipped; entries the cache refuses are counted as failed.
func (i *Importer) Import(ctx context.Context, r io.Reader) (*ImportResult, error) {
	var dump ExportFormat
	if err := json.NewDecoder(r).Decode(&dump); err != nil {
		return nil, fmt.Errorf("decoding export: %w", err)
	}
	if dump.Version != "" && !strings.HasPrefix(dump.Version, "1.") {
		return nil, fmt.Errorf("unsupported export version %q", dump.Version)
	}

	result := &ImportResult{Version: dump.Version, Metadata: dump.Metadata}
	for _, entry := range dump.Entries {
		if entry.Key == "" || entry.Value == "" {
			result.Skipped++
			continue
		}
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if err := i.cache.Set(ctx, entry.Key, entry.Value); err != nil {
			result.Failed++
			continue
		}
		result.Imported++
	}
	return result, nil
}

// ImportFromFile imports the export stored at path.
func (i *Importer) ImportFromFile(ctx context.Context, path string) (*ImportResult, error) {
	f, err := os.Open(path) // #nosec G304 - path is intentionally user-provided
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	return i.Import(ctx, f)
}
