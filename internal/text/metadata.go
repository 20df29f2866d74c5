package text

// MetadataTemplate returns the required metadata fields for a content type,
// initialized to nil so downstream consumers see a stable shape even when a
// scraper could not fill a field.
func MetadataTemplate(contentType string) map[string]any {
	templates := map[string][]string{
		"podcast":     {"episode_number", "episode_title", "timestamp", "duration"},
		"study_notes": {"title", "source_url", "file_name", "page"},
		"classroom":   {"course", "lesson", "url"},
		"website":     {"url", "author"},
	}

	fields, ok := templates[contentType]
	if !ok {
		return map[string]any{}
	}

	out := make(map[string]any, len(fields))
	for _, f := range fields {
		out[f] = nil
	}
	return out
}

// MergeMetadata overlays values onto base, returning base for chaining.
func MergeMetadata(base, values map[string]any) map[string]any {
	for k, v := range values {
		base[k] = v
	}
	return base
}
