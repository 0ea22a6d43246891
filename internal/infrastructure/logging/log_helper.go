package logging

// zapFields flattens the extra map into zap's alternating key/value
// slice, prefixing every entry with the category pair.
func zapFields(cat Category, sub SubCategory, extra map[ExtraKey]any) []any {
	fields := make([]any, 0, 2*len(extra)+4)
	fields = append(fields, "Category", string(cat), "SubCategory", string(sub))

	for k, v := range extra {
		fields = append(fields, string(k), v)
	}

	return fields
}

func zeroFields(extra map[ExtraKey]any) map[string]any {
	fields := make(map[string]any, len(extra))

	for k, v := range extra {
		fields[string(k)] = v
	}

	return fields
}
