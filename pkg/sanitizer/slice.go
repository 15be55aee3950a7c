package sanitizer

// NormalizeTags applies NormalizeTag to every element, dropping empties and
// duplicates while preserving first-seen order.
func NormalizeTags(values []string) []string {
	seen := make(map[string]struct{})
	out := []string{}

	for _, v := range values {
		s := NormalizeTag(v)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}

	return out
}
