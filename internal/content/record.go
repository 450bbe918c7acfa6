package content

import (
	"bytes"
	"encoding/json"
	"maps"
	"reflect"
	"strings"
)

// Extra is what a record's source object held beyond its modelled fields:
// the unmodelled keys verbatim and the order every key appeared in.
// Records decoded from a file write those keys back in source order, and
// modelled keys present in the source are written even when empty.
type Extra struct {
	fields map[string]json.RawMessage
	order  []string
}

// Get returns the raw value of an unmodelled key.
func (x Extra) Get(key string) (json.RawMessage, bool) {
	raw, ok := x.fields[key]
	return raw, ok
}

// Keys lists the unmodelled keys in source order.
func (x Extra) Keys() []string {
	keys := make([]string, 0, len(x.fields))
	for _, key := range x.order {
		if _, ok := x.fields[key]; ok {
			keys = append(keys, key)
		}
	}
	return keys
}

// visitStrings hands every unmodelled string value to fn as non-linkable
// text. Rewrites replace the map instead of writing into it, since clones
// share it.
func (x *Extra) visitStrings(f Field, fn TextFunc) {
	var updated map[string]json.RawMessage
	for _, key := range x.Keys() {
		var value string
		if err := json.Unmarshal(x.fields[key], &value); err != nil {
			continue
		}
		f.Name = key
		f.Linkable = false
		out := fn(f, value)
		if out == value {
			continue
		}
		raw, err := marshalRaw(out)
		if err != nil {
			continue
		}
		if updated == nil {
			updated = maps.Clone(x.fields)
		}
		updated[key] = raw
	}
	if updated != nil {
		x.fields = updated
	}
}

type recordField struct {
	name      string
	omitEmpty bool
	value     reflect.Value
}

// recordFields lists the JSON-visible fields of the struct v points to or
// holds.
func recordFields(v reflect.Value) []recordField {
	v = reflect.Indirect(v)
	t := v.Type()
	fields := make([]recordField, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		name, opts, _ := strings.Cut(sf.Tag.Get("json"), ",")
		if name == "-" {
			continue
		}
		if name == "" {
			name = sf.Name
		}
		fields = append(fields, recordField{
			name:      name,
			omitEmpty: strings.Contains(opts, "omitempty"),
			value:     v.Field(i),
		})
	}
	return fields
}

func lookupField(fields []recordField, key string) (recordField, bool) {
	for _, f := range fields {
		if strings.EqualFold(f.name, key) {
			return f, true
		}
	}
	return recordField{}, false
}

// decodeRecord unmarshals data into plain, a pointer to a method-free copy
// of the record type, and returns what the modelled fields did not cover.
func decodeRecord(data []byte, plain any) (Extra, error) {
	if err := json.Unmarshal(data, plain); err != nil {
		return Extra{}, err
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return Extra{}, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return Extra{}, nil
	}

	fields := recordFields(reflect.ValueOf(plain))
	var extra Extra
	seen := make(map[string]bool)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return Extra{}, err
		}
		key, _ := tok.(string)
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return Extra{}, err
		}
		if f, ok := lookupField(fields, key); ok {
			key = f.name
		} else {
			if extra.fields == nil {
				extra.fields = make(map[string]json.RawMessage)
			}
			extra.fields[key] = raw
		}
		if !seen[key] {
			seen[key] = true
			extra.order = append(extra.order, key)
		}
	}
	return extra, nil
}

// encodeRecord renders plain, a method-free copy of the record, merged
// with extra. Without a source order the modelled fields come out in
// declaration order.
func encodeRecord(plain any, extra Extra) ([]byte, error) {
	fields := recordFields(reflect.ValueOf(plain))

	var buf bytes.Buffer
	buf.WriteByte('{')
	wrote := make(map[string]bool)
	write := func(key string, raw []byte) {
		if len(wrote) > 0 {
			buf.WriteByte(',')
		}
		wrote[key] = true
		name, _ := marshalRaw(key)
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(raw)
	}

	for _, key := range extra.order {
		if raw, ok := extra.fields[key]; ok {
			write(key, raw)
			continue
		}
		f, ok := lookupField(fields, key)
		if !ok {
			continue
		}
		raw, err := marshalRaw(f.value.Interface())
		if err != nil {
			return nil, err
		}
		write(f.name, raw)
	}

	for _, f := range fields {
		if wrote[f.name] || (f.omitEmpty && f.value.IsZero()) || (f.omitEmpty && isEmptyCollection(f.value)) {
			continue
		}
		raw, err := marshalRaw(f.value.Interface())
		if err != nil {
			return nil, err
		}
		write(f.name, raw)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func isEmptyCollection(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Slice, reflect.Map:
		return v.Len() == 0
	}
	return false
}

// marshalRaw is json.Marshal without HTML escaping.
func marshalRaw(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
