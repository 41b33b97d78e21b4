package log

import "sort"

// KV holds key-value pairs attached to a single log entry.
type KV map[string]any

// kvToArgs flattens the first KV map into the alternating key-value slice
// that slog expects. Keys are sorted so entries are deterministic.
func kvToArgs(keyVals ...KV) []any {
	args := []any{}
	if len(keyVals) == 0 {
		return args
	}

	first := keyVals[0]
	keys := make([]string, 0, len(first))
	for key := range first {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		args = append(args, key, first[key])
	}
	return args
}

// kvToArgsNs is kvToArgs with the namespace prepended as the first pair.
func kvToArgsNs(namespace string, keyVals ...KV) []any {
	return append([]any{"ns", namespace}, kvToArgs(keyVals...)...)
}
