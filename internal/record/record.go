// Package record defines the dynamic record type shared by the trace and
// network filtering pipelines.
//
// Records are decoded from line-delimited JSON with no fixed schema beyond a
// handful of well-known fields. Everything else must survive a
// decode/transform/encode round trip untouched, so a record is an open map
// with typed accessors for the fields the filters branch on.
package record

// Record is one decoded line of a trace or network log.
type Record map[string]any

// Type returns the record's type discriminator, or "" when absent.
func (r Record) Type() string {
	return r.Str("type")
}

// Str returns the string value stored under key, or "" when the key is
// missing or holds a non-string value.
func (r Record) Str(key string) string {
	s, _ := r[key].(string)
	return s
}

// Num returns the numeric value stored under key. JSON numbers always decode
// as float64 through encoding/json, but integer-typed values are accepted too
// so records built in code behave the same as decoded ones.
func (r Record) Num(key string) (float64, bool) {
	return AsNumber(r[key])
}

// Map returns the nested object stored under key, or nil when the key is
// missing or holds a non-object value.
func (r Record) Map(key string) Record {
	switch v := r[key].(type) {
	case map[string]any:
		return Record(v)
	case Record:
		return v
	default:
		return nil
	}
}

// Slice returns the array stored under key, or nil when the key is missing
// or holds a non-array value.
func (r Record) Slice(key string) []any {
	s, _ := r[key].([]any)
	return s
}

// Bool returns the boolean value stored under key, or false when the key is
// missing or holds a non-boolean value.
func (r Record) Bool(key string) bool {
	b, _ := r[key].(bool)
	return b
}

// Has reports whether key is present, regardless of its value.
func (r Record) Has(key string) bool {
	_, ok := r[key]
	return ok
}

// AsNumber converts a dynamically-typed JSON value to float64.
func AsNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// AsRecord converts a dynamically-typed JSON value to a Record.
func AsRecord(v any) Record {
	switch m := v.(type) {
	case map[string]any:
		return Record(m)
	case Record:
		return m
	default:
		return nil
	}
}
