// Package attrs reads values out of slog-style alternating key/value lists.
package attrs

// Pairs is a [key1, value1, key2, value2, ...] list as passed to slog.
// A trailing key without a value is ignored.
type Pairs []any

// String returns the string stored under key, or "" when the key is absent
// or holds another type. The first occurrence wins.
func (p Pairs) String(key string) string {
	v, _ := p.lookup(key).(string)
	return v
}

// Has reports whether key is present with any value.
func (p Pairs) Has(key string) bool {
	return p.lookup(key) != nil
}

func (p Pairs) lookup(key string) any {
	for i := 0; i+1 < len(p); i += 2 {
		if k, ok := p[i].(string); ok && k == key {
			return p[i+1]
		}
	}
	return nil
}
