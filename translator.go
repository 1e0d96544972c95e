package xraytl

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/google/uuid"
)

// DefaultBatchSize caps how many texts go into one backend request.
const DefaultBatchSize = 50

// Translator is the main translation engine.
type Translator struct {
	targetLang      string
	sourceLang      string
	backend         Backend
	cache           TranslationCache
	logger          *slog.Logger
	excludedTerms   []string
	context         string
	glossary        map[string]string
	style           TranslationStyle
	batchSize       int
	skipIdentifiers bool
	processors      map[string]ContentProcessor
}

// Backend is the interface for translation backends.
type Backend interface {
	Translate(ctx context.Context, req BatchRequest) ([]string, error)
}

// BatchRequest contains the parameters for a translation request. The
// backend must return exactly one translation per entry in Texts, in order.
type BatchRequest struct {
	Texts         []string
	TargetLang    string
	SourceLang    string // Empty means "detect"
	ExcludedTerms []string
	Context       string
	TextContexts  []string
	Glossary      map[string]string
	Style         TranslationStyle
}

// TranslationCache is the interface for translation caching.
type TranslationCache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key string, value string) error
}

// ContentProcessor decodes a document into entities and writes translated
// texts back. Apply receives the final text per entity ID; entities missing
// from texts keep their original content.
type ContentProcessor interface {
	Extract(content string) (interface{}, []TextEntity, error)
	Apply(parsed interface{}, texts map[string]string) (string, error)
	ContentType() string
}

// TranslatorOption is a functional option for configuring the Translator.
type TranslatorOption func(*Translator)

// WithSourceLang sets the language tag assumed for DefaultTextKey variants.
// Empty lets the backend detect it.
func WithSourceLang(lang string) TranslatorOption {
	return func(t *Translator) {
		t.sourceLang = lang
	}
}

// WithCache sets the translation cache.
func WithCache(cache TranslationCache) TranslatorOption {
	return func(t *Translator) {
		t.cache = cache
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *slog.Logger) TranslatorOption {
	return func(t *Translator) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithExcludedTerms sets terms that should not be translated.
func WithExcludedTerms(terms []string) TranslatorOption {
	return func(t *Translator) {
		t.excludedTerms = terms
	}
}

// WithContext sets the global translation context.
func WithContext(ctx string) TranslatorOption {
	return func(t *Translator) {
		t.context = ctx
	}
}

// WithGlossary sets preferred translations for specific phrases.
func WithGlossary(glossary map[string]string) TranslatorOption {
	return func(t *Translator) {
		t.glossary = glossary
	}
}

// WithStyle sets the translation style/register.
func WithStyle(style TranslationStyle) TranslatorOption {
	return func(t *Translator) {
		t.style = style
	}
}

// WithBatchSize sets the maximum number of texts per backend request.
func WithBatchSize(n int) TranslatorOption {
	return func(t *Translator) {
		if n > 0 {
			t.batchSize = n
		}
	}
}

// WithSkipIdentifiers copies identifier-like source texts (no Cyrillic, no
// spaces) through untranslated.
func WithSkipIdentifiers(enabled bool) TranslatorOption {
	return func(t *Translator) {
		t.skipIdentifiers = enabled
	}
}

// WithProcessor registers a content processor.
func WithProcessor(processor ContentProcessor) TranslatorOption {
	return func(t *Translator) {
		t.processors[processor.ContentType()] = processor
	}
}

// NewTranslator creates a new Translator with the given target language and backend.
func NewTranslator(targetLang string, backend Backend, opts ...TranslatorOption) *Translator {
	t := &Translator{
		targetLang: NormalizeTag(targetLang),
		backend:    backend,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		style:      StyleNeutral,
		batchSize:  DefaultBatchSize,
		processors: make(map[string]ContentProcessor),
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Process translates a whole document of the given content type.
func (t *Translator) Process(ctx context.Context, content string, contentType string) (*ProcessedContent, error) {
	return t.process(ctx, content, contentType, t.TranslateEntities)
}

type entitiesFunc func(ctx context.Context, entities []TextEntity) ([]EntityResult, error)

func (t *Translator) process(ctx context.Context, content, contentType string, translate entitiesFunc) (*ProcessedContent, error) {
	processor, ok := t.processors[contentType]
	if !ok {
		return nil, &ProcessorError{
			Message:     "no processor registered for content type",
			ContentType: contentType,
		}
	}

	runID := uuid.New().String()
	logger := t.logger.With("run_id", runID, "content_type", contentType, "target", t.targetLang)

	parsed, entities, err := processor.Extract(content)
	if err != nil {
		return nil, err
	}

	out := &ProcessedContent{
		RunID:         runID,
		TotalEntities: len(entities),
	}
	if enc, ok := parsed.(interface{ DeclaredEncoding() string }); ok {
		out.Encoding = enc.DeclaredEncoding()
	}

	logger.Info("translating document", "entities", len(entities))

	results, err := translate(ctx, entities)
	if err != nil {
		return nil, &TranslationError{Message: "translating " + contentType + " document", Cause: err}
	}

	texts := make(map[string]string, len(results))
	for _, r := range results {
		if r.Skipped {
			out.SkippedEntities++
			continue
		}
		texts[r.ID] = r.Text
		out.TranslatedCount += r.Translated
		out.CachedCount += r.Cached
	}

	result, err := processor.Apply(parsed, texts)
	if err != nil {
		return nil, err
	}
	out.Content = result

	logger.Info("document translated",
		"translated", out.TranslatedCount,
		"cached", out.CachedCount,
		"skipped", out.SkippedEntities)

	return out, nil
}

// TranslateText segments text, translates its translatable spans and joins
// the result. sourceLang may be empty.
func (t *Translator) TranslateText(ctx context.Context, text, sourceLang string) (string, error) {
	spans, err := Segment(text)
	if err != nil {
		return "", err
	}
	texts := spans.Texts()
	if len(texts) == 0 {
		return spans.Join(), nil
	}

	translations, _, err := t.translateBatch(ctx, sourceLang, texts, make([]string, len(texts)))
	if err != nil {
		return "", err
	}
	out, err := spans.Substitute(translations)
	if err != nil {
		return "", err
	}
	return out.Join(), nil
}

// TranslateEntity translates a single entity. Unlike TranslateEntities it
// returns selection and segmentation errors to the caller.
func (t *Translator) TranslateEntity(ctx context.Context, entity TextEntity) (*EntityResult, error) {
	result := &EntityResult{ID: entity.ID}
	plan, err := t.plan(entity, result)
	if err != nil {
		return nil, err
	}
	if plan != nil {
		if err := t.translateGroup(ctx, plan.lang, []*entityPlan{plan}); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// entityPlan is an entity whose source has been chosen and segmented.
type entityPlan struct {
	result *EntityResult
	lang   string // language sent to the backend
	spans  Spans
	texts  []string
}

// TranslateEntities translates entities in order. Entities without a usable
// source variant, or whose text cannot be segmented, are logged and reported
// as Skipped; they never abort the batch. Backend failures do.
func (t *Translator) TranslateEntities(ctx context.Context, entities []TextEntity) ([]EntityResult, error) {
	results := make([]EntityResult, len(entities))
	var plans []*entityPlan

	for i, entity := range entities {
		results[i].ID = entity.ID
		plan, err := t.plan(entity, &results[i])
		if err != nil {
			var mismatch *SegmentationMismatchError
			if !errors.Is(err, ErrNoRecommendedLanguage) && !errors.As(err, &mismatch) {
				return nil, err
			}
			t.logger.Warn("skipping entity", "id", entity.ID, "error", err)
			results[i].Skipped = true
			results[i].Reason = err.Error()
			continue
		}
		if plan != nil {
			plans = append(plans, plan)
		}
	}

	// Group by source language so each backend request has one source.
	var order []string
	groups := make(map[string][]*entityPlan)
	for _, p := range plans {
		if _, ok := groups[p.lang]; !ok {
			order = append(order, p.lang)
		}
		groups[p.lang] = append(groups[p.lang], p)
	}

	for _, lang := range order {
		if err := t.translateGroup(ctx, lang, groups[lang]); err != nil {
			return nil, err
		}
	}

	return results, nil
}

// plan selects the source variant and segments it. A nil plan means the
// result is already final.
func (t *Translator) plan(entity TextEntity, result *EntityResult) (*entityPlan, error) {
	lang, source, err := SelectSource(entity, t.targetLang)
	if err != nil {
		return nil, err
	}
	result.SourceLang = lang
	result.Source = source

	switch {
	case lang == t.targetLang:
		result.Text, result.Verbatim, result.Reason = source, true, "source is already in target language"
		return nil, nil
	case t.skipIdentifiers && LooksLikeIdentifier(source):
		result.Text, result.Verbatim, result.Reason = source, true, "identifier-like text"
		return nil, nil
	}

	spans, err := Segment(source)
	if err != nil {
		return nil, err
	}
	texts := spans.Texts()
	if len(texts) == 0 {
		result.Text, result.Verbatim, result.Reason = spans.Join(), true, "nothing translatable"
		return nil, nil
	}

	backendLang := lang
	if lang == DefaultTextKey {
		backendLang = t.sourceLang
	}
	return &entityPlan{result: result, lang: backendLang, spans: spans, texts: texts}, nil
}

func (t *Translator) translateGroup(ctx context.Context, lang string, plans []*entityPlan) error {
	var texts, contexts []string
	for _, p := range plans {
		for range p.texts {
			contexts = append(contexts, "string id: "+p.result.ID)
		}
		texts = append(texts, p.texts...)
	}

	translations, fromCache, err := t.translateBatch(ctx, lang, texts, contexts)
	if err != nil {
		return err
	}

	offset := 0
	for _, p := range plans {
		n := len(p.texts)
		out, err := p.spans.Substitute(translations[offset : offset+n])
		if err != nil {
			return err
		}
		for _, cached := range fromCache[offset : offset+n] {
			if cached {
				p.result.Cached++
			} else {
				p.result.Translated++
			}
		}
		p.result.Text = out.Join()
		offset += n
	}
	return nil
}

// translateBatch translates texts, using the cache where possible and
// sending each distinct miss to the backend once. The second result marks
// which texts were served from cache. Without a backend, misses are
// returned untranslated.
func (t *Translator) translateBatch(ctx context.Context, sourceLang string, texts, contexts []string) ([]string, []bool, error) {
	results := make([]string, len(texts))
	fromCache := make([]bool, len(texts))

	pending := make(map[string][]int)
	var missHashes, missTexts, missContexts []string

	for i, text := range texts {
		hash := HashText(text)
		if t.cache != nil {
			if cached, ok := t.cache.Get(ctx, CacheKey(hash, sourceLang, t.targetLang)); ok {
				results[i] = cached
				fromCache[i] = true
				continue
			}
		}
		if _, seen := pending[hash]; !seen {
			missHashes = append(missHashes, hash)
			missTexts = append(missTexts, text)
			missContexts = append(missContexts, contexts[i])
		}
		pending[hash] = append(pending[hash], i)
	}

	if len(missTexts) == 0 {
		return results, fromCache, nil
	}
	if t.backend == nil {
		for _, idx := range pending {
			for _, i := range idx {
				results[i] = texts[i]
			}
		}
		return results, fromCache, nil
	}

	for start := 0; start < len(missTexts); start += t.batchSize {
		end := min(start+t.batchSize, len(missTexts))
		out, err := t.backend.Translate(ctx, BatchRequest{
			Texts:         missTexts[start:end],
			TargetLang:    t.targetLang,
			SourceLang:    sourceLang,
			ExcludedTerms: t.excludedTerms,
			Context:       t.context,
			TextContexts:  missContexts[start:end],
			Glossary:      t.glossary,
			Style:         t.style,
		})
		if err != nil {
			return nil, nil, err
		}
		if len(out) != end-start {
			return nil, nil, &CountMismatchError{Expected: end - start, Got: len(out)}
		}

		for j, translated := range out {
			hash := missHashes[start+j]
			for _, i := range pending[hash] {
				results[i] = translated
			}
			if t.cache != nil {
				if err := t.cache.Set(ctx, CacheKey(hash, sourceLang, t.targetLang), translated); err != nil {
					t.logger.Warn("translation not cached", "error", &CacheError{Message: "set " + hash, Cause: err})
				}
			}
		}
	}

	return results, fromCache, nil
}

// TargetLang returns the target language.
func (t *Translator) TargetLang() string {
	return t.targetLang
}

// SourceLang returns the language assumed for DefaultTextKey variants.
func (t *Translator) SourceLang() string {
	return t.sourceLang
}

// IsSourceLang reports whether lang is the target language, in which case
// it needs no translation.
func (t *Translator) IsSourceLang(lang string) bool {
	return NormalizeTag(lang) == t.targetLang
}

// Glossary returns the glossary of preferred translations.
func (t *Translator) Glossary() map[string]string {
	return t.glossary
}

// Style returns the translation style.
func (t *Translator) Style() TranslationStyle {
	return t.style
}

// Context returns the global translation context.
func (t *Translator) Context() string {
	return t.context
}

// ExcludedTerms returns the list of excluded terms.
func (t *Translator) ExcludedTerms() []string {
	return t.excludedTerms
}
