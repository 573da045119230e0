package cart

import "sort"

// optionsEqual compares two option maps by sorted keys. Nil and empty
// maps compare equal: a quick add with no explicit options merges into
// a line added the same way.
func optionsEqual(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for key, valueA := range a {
		valueB, ok := b[key]
		if !ok || valueA != valueB {
			return false
		}
	}
	return true
}

// optionKeys returns the sorted option keys for deterministic logging.
func optionKeys(options map[string]string) []string {
	keys := make([]string, 0, len(options))
	for key := range options {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
