package conf

// MergeDefaults merges the maps into one, prefixing every key with the
// namespace ns. An empty namespace keeps the keys as they are. Later maps
// win on duplicate keys.
func MergeDefaults[M ~map[string]V, V any](ns string, maps ...M) M {
	fullCap := 0
	for _, m := range maps {
		fullCap += len(m)
	}

	merged := make(M, fullCap)
	for _, m := range maps {
		for key, val := range m {
			if ns != "" {
				key = ns + "." + key
			}
			merged[key] = val
		}
	}

	return merged
}

// Merge merges the maps into one without a namespace.
func Merge[M ~map[string]V, V any](maps ...M) M {
	return MergeDefaults("", maps...)
}
