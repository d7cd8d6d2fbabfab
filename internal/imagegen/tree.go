package imagegen

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/tidwall/gjson"
)

// ErrInvalidJSON is returned by Parse when the body is not a JSON document.
var ErrInvalidJSON = errors.New("imagegen: invalid json")

// Kind enumerates the node types a provider response tree can hold.
type Kind uint8

const (
	KindOther Kind = iota
	KindMap
	KindSeq
	KindString
	KindBytes
)

// Field is a single key/value pair of a map node.
type Field struct {
	Key   string
	Value Value
}

// Value is an untyped provider response node. Map fields keep document order
// so extraction order matches the order the provider emitted.
type Value struct {
	kind   Kind
	fields []Field
	items  []Value
	str    string
	bytes  []byte
	raw    any
}

// Map builds a map node from ordered fields.
func Map(fields ...Field) Value { return Value{kind: KindMap, fields: fields} }

// Seq builds a sequence node.
func Seq(items ...Value) Value { return Value{kind: KindSeq, items: items} }

// String builds a string leaf.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Bytes builds a binary leaf.
func Bytes(b []byte) Value { return Value{kind: KindBytes, bytes: b} }

// Scalar wraps numbers, booleans and null.
func Scalar(v any) Value { return Value{kind: KindOther, raw: v} }

// F is shorthand for building a Field.
func F(key string, v Value) Field { return Field{Key: key, Value: v} }

func (v Value) Kind() Kind       { return v.kind }
func (v Value) Fields() []Field  { return v.fields }
func (v Value) Items() []Value   { return v.items }
func (v Value) Str() string      { return v.str }
func (v Value) BytesVal() []byte { return v.bytes }
func (v Value) Raw() any         { return v.raw }

// IsContainer reports whether v is a map or a sequence.
func (v Value) IsContainer() bool { return v.kind == KindMap || v.kind == KindSeq }

// IsNull reports whether v is a JSON null (or the zero Value).
func (v Value) IsNull() bool { return v.kind == KindOther && v.raw == nil }

// Get returns the first field stored under key. Lookups are exact.
func (v Value) Get(key string) (Value, bool) {
	if v.kind != KindMap {
		return Value{}, false
	}
	for _, f := range v.fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return Value{}, false
}

// Parse decodes a JSON document into a Value, preserving object key order.
func Parse(data []byte) (Value, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || !gjson.ValidBytes(trimmed) {
		return Value{}, ErrInvalidJSON
	}
	return fromResult(gjson.ParseBytes(trimmed)), nil
}

func fromResult(r gjson.Result) Value {
	switch {
	case r.IsObject():
		var fields []Field
		r.ForEach(func(key, value gjson.Result) bool {
			fields = append(fields, Field{Key: key.String(), Value: fromResult(value)})
			return true
		})
		return Map(fields...)
	case r.IsArray():
		var items []Value
		r.ForEach(func(_, value gjson.Result) bool {
			items = append(items, fromResult(value))
			return true
		})
		return Seq(items...)
	}
	switch r.Type {
	case gjson.String:
		return String(r.Str)
	case gjson.Number:
		return Scalar(json.Number(r.Raw))
	case gjson.True:
		return Scalar(true)
	case gjson.False:
		return Scalar(false)
	default:
		return Scalar(nil)
	}
}

// MarshalJSON renders the tree back to JSON with map fields in stored order.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v Value) encode(buf *bytes.Buffer) error {
	switch v.kind {
	case KindMap:
		buf.WriteByte('{')
		for i, f := range v.fields {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(f.Key)
			if err != nil {
				return err
			}
			buf.Write(key)
			buf.WriteByte(':')
			if err := f.Value.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
		return nil
	case KindSeq:
		buf.WriteByte('[')
		for i, item := range v.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := item.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil
	case KindString:
		return writeJSON(buf, v.str)
	case KindBytes:
		return writeJSON(buf, v.bytes)
	default:
		return writeJSON(buf, v.raw)
	}
}

func writeJSON(buf *bytes.Buffer, v any) error {
	out, err := json.Marshal(v)
	if err != nil {
		return err
	}
	buf.Write(out)
	return nil
}
