package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Field is one named value of a Record. Value holds a string, an int,
// a []string or nil.
type Field struct {
	Key   string
	Value any
}

// Record is one scraped game entity. Field order is kept as discovered and
// is part of the output contract.
type Record struct {
	Fields []Field
}

// RecordSet is the ordered output of one pipeline run.
type RecordSet []Record

func NewRecord(fields ...Field) Record {
	return Record{Fields: fields}
}

func (r Record) Get(key string) (any, bool) {
	for _, f := range r.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// String returns the value for key when it is a string, "" otherwise.
func (r Record) String(key string) string {
	v, _ := r.Get(key)
	s, _ := v.(string)
	return s
}

func (r Record) Int(key string) (int, bool) {
	v, _ := r.Get(key)
	n, ok := v.(int)
	return n, ok
}

// Strings returns the value for key as a list. A plain string counts as a
// one element list.
func (r Record) Strings(key string) []string {
	v, _ := r.Get(key)
	switch t := v.(type) {
	case []string:
		return t
	case string:
		if t == "" {
			return nil
		}
		return []string{t}
	}
	return nil
}

// With returns a copy of r where key is set to value. An existing field keeps
// its position; a new one is appended.
func (r Record) With(key string, value any) Record {
	fields := make([]Field, len(r.Fields), len(r.Fields)+1)
	copy(fields, r.Fields)
	for i := range fields {
		if fields[i].Key == key {
			fields[i].Value = value
			return Record{Fields: fields}
		}
	}
	return Record{Fields: append(fields, Field{Key: key, Value: value})}
}

func (r Record) Keys() []string {
	keys := make([]string, len(r.Fields))
	for i, f := range r.Fields {
		keys[i] = f.Key
	}
	return keys
}

// MarshalJSON writes the record as an object whose keys follow field order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r.Fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := encode(f.Key)
		if err != nil {
			return nil, err
		}
		v, err := encode(f.Value)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Key, err)
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (r *Record) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("record: expected object, got %v", tok)
	}

	var fields []Field
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("record: expected key, got %v", tok)
		}
		v, err := decodeValue(dec)
		if err != nil {
			return fmt.Errorf("record: field %q: %w", key, err)
		}
		fields = append(fields, Field{Key: key, Value: v})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	r.Fields = fields
	return nil
}

func encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	switch v := tok.(type) {
	case nil:
		return nil, nil
	case string:
		return v, nil
	case json.Number:
		n, err := strconv.Atoi(v.String())
		if err != nil {
			return nil, fmt.Errorf("non-integer number %s", v)
		}
		return n, nil
	case json.Delim:
		if v != '[' {
			return nil, fmt.Errorf("unexpected %v", v)
		}
		list := []string{}
		for dec.More() {
			tok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			s, ok := tok.(string)
			if !ok {
				return nil, fmt.Errorf("list element %v is not a string", tok)
			}
			list = append(list, s)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return list, nil
	}
	return nil, fmt.Errorf("unsupported value %v", tok)
}

// Concat joins record sets in order.
func Concat(sets ...RecordSet) RecordSet {
	var out RecordSet
	for _, s := range sets {
		out = append(out, s...)
	}
	return out
}

// Merge combines record sets on a string key field. The first record for a
// key fixes its position; later records only fill fields that are missing or
// nil. Records without the key are kept as they are.
func Merge(key string, sets ...RecordSet) RecordSet {
	var out RecordSet
	index := make(map[string]int)

	for _, set := range sets {
		for _, rec := range set {
			k := rec.String(key)
			if k == "" {
				out = append(out, rec)
				continue
			}
			i, seen := index[k]
			if !seen {
				index[k] = len(out)
				out = append(out, rec)
				continue
			}
			merged := out[i]
			for _, f := range rec.Fields {
				if cur, ok := merged.Get(f.Key); !ok || isNil(cur) {
					merged = merged.With(f.Key, f.Value)
				}
			}
			out[i] = merged
		}
	}
	return out
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.([]string); ok {
		return s == nil
	}
	return false
}
