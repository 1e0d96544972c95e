package xraytl

import "sort"

// DiffResult represents the difference between two versions of a string table.
type DiffResult struct {
	// Added contains entities whose ID is new.
	Added []TextEntity

	// Removed contains entities whose ID no longer exists.
	Removed []TextEntity

	// Unchanged contains entities whose text is identical in both versions.
	Unchanged []TextEntity

	// Modified contains entities that kept their ID but changed text.
	Modified []ModifiedEntity
}

// ModifiedEntity pairs the old and new version of an entity.
type ModifiedEntity struct {
	Old TextEntity
	New TextEntity
}

// DiffStats contains summary statistics for a diff.
type DiffStats struct {
	Added     int
	Removed   int
	Unchanged int
	Modified  int
}

// Stats returns summary statistics for the diff.
func (d *DiffResult) Stats() DiffStats {
	return DiffStats{
		Added:     len(d.Added),
		Removed:   len(d.Removed),
		Unchanged: len(d.Unchanged),
		Modified:  len(d.Modified),
	}
}

// HasChanges returns true if there are any differences.
func (d *DiffResult) HasChanges() bool {
	return len(d.Added) > 0 || len(d.Removed) > 0 || len(d.Modified) > 0
}

// NeedsTranslation returns the new and modified entities, which are the
// only ones an incremental update has to translate.
func (d *DiffResult) NeedsTranslation() []TextEntity {
	result := make([]TextEntity, 0, len(d.Added)+len(d.Modified))
	result = append(result, d.Added...)
	for _, m := range d.Modified {
		result = append(result, m.New)
	}
	return result
}

// DiffEntities compares two versions of a table by entity ID. Texts are
// compared in lang; entities lacking lang are compared by DefaultTextKey.
// Added, Unchanged and Modified follow the order of newer; Removed follows
// the order of older.
func DiffEntities(older, newer []TextEntity, lang string) *DiffResult {
	result := &DiffResult{}

	oldByID := make(map[string]TextEntity, len(older))
	for _, e := range older {
		oldByID[e.ID] = e
	}
	newIDs := make(map[string]bool, len(newer))

	for _, e := range newer {
		newIDs[e.ID] = true
		prev, ok := oldByID[e.ID]
		switch {
		case !ok:
			result.Added = append(result.Added, e)
		case diffText(prev, lang) == diffText(e, lang):
			result.Unchanged = append(result.Unchanged, e)
		default:
			result.Modified = append(result.Modified, ModifiedEntity{Old: prev, New: e})
		}
	}

	for _, e := range older {
		if !newIDs[e.ID] {
			result.Removed = append(result.Removed, e)
		}
	}
	return result
}

func diffText(e TextEntity, lang string) string {
	if text, ok := e.Texts[lang]; ok {
		return text
	}
	if text, ok := e.Texts[DefaultTextKey]; ok {
		return text
	}
	// Variant-only entities compare by all their variants in tag order.
	keys := make([]string, 0, len(e.Texts))
	for k := range e.Texts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var s string
	for _, k := range keys {
		s += k + "\x00" + e.Texts[k] + "\x00"
	}
	return s
}
