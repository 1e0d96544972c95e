// Package cache provides translation caching implementations.
//
// Keys are built with xraytl.CacheKey (span hash, source and target
// language); values are translated span texts.
package cache

import "context"

// TranslationCache is the interface for translation caching.
type TranslationCache interface {
	// Get retrieves a cached translation. Returns empty string and false if not found or expired.
	Get(ctx context.Context, key string) (string, bool)
	// Set stores a translation in the cache.
	Set(ctx context.Context, key string, value string) error
}

// ExportableCache is a cache whose contents can be listed for export.
type ExportableCache interface {
	TranslationCache
	// Entries returns all live key/value pairs.
	Entries(ctx context.Context) (map[string]string, error)
}
