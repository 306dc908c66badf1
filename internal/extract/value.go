package extract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Kind discriminates the Value union.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindSequence
	KindMapping
	KindUnknown
)

// Entry is one key/value pair of a mapping, in source order.
type Entry struct {
	Key   string
	Value Value
}

// Value is a JSON-like tree: scalar, sequence, or mapping. Mappings keep the
// insertion order of the source document — the fallback scan in Text depends
// on a stable iteration order, so Value never goes through a Go map.
// The zero Value is null.
type Value struct {
	Kind    Kind
	Str     string  // KindString
	Num     string  // KindNumber: the original decimal literal
	Boolean bool    // KindBool
	Seq     []Value // KindSequence
	Entries []Entry // KindMapping
	Raw     string  // KindUnknown: verbatim text
}

// Get returns the value for key and whether the key is present.
func (v Value) Get(key string) (Value, bool) {
	for _, e := range v.Entries {
		if e.Key == key {
			return e.Value, true
		}
	}
	return Value{}, false
}

// Decode parses a JSON document into a Value, preserving mapping key order.
// Numbers keep their literal representation.
func Decode(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := decodeValue(dec)
	if err != nil {
		return Value{}, fmt.Errorf("decode output value: %w", err)
	}

	// Reject trailing garbage after the first value.
	if dec.More() {
		return Value{}, fmt.Errorf("decode output value: trailing data")
	}
	return v, nil
}

func decodeValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '[':
			return decodeSequence(dec)
		case '{':
			return decodeMapping(dec)
		default:
			return Value{}, fmt.Errorf("unexpected delimiter %q", t)
		}
	case string:
		return Value{Kind: KindString, Str: t}, nil
	case json.Number:
		return Value{Kind: KindNumber, Num: t.String()}, nil
	case bool:
		return Value{Kind: KindBool, Boolean: t}, nil
	case nil:
		return Value{Kind: KindNull}, nil
	default:
		return Value{Kind: KindUnknown, Raw: fmt.Sprint(t)}, nil
	}
}

func decodeSequence(dec *json.Decoder) (Value, error) {
	var seq []Value
	for dec.More() {
		el, err := decodeValue(dec)
		if err != nil {
			return Value{}, err
		}
		seq = append(seq, el)
	}
	if _, err := dec.Token(); err != nil { // closing ']'
		return Value{}, err
	}
	return Value{Kind: KindSequence, Seq: seq}, nil
}

func decodeMapping(dec *json.Decoder) (Value, error) {
	var entries []Entry
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return Value{}, err
		}
		key, ok := tok.(string)
		if !ok {
			return Value{}, fmt.Errorf("mapping key is %T, not string", tok)
		}

		val, err := decodeValue(dec)
		if err != nil {
			return Value{}, err
		}
		entries = append(entries, Entry{Key: key, Value: val})
	}
	if _, err := dec.Token(); err != nil { // closing '}'
		return Value{}, err
	}
	return Value{Kind: KindMapping, Entries: entries}, nil
}

// String renders the value back as compact JSON-ish text, for diagnostics.
func (v Value) String() string {
	var b strings.Builder
	v.write(&b)
	return b.String()
}

func (v Value) write(b *strings.Builder) {
	switch v.Kind {
	case KindNull:
		b.WriteString("null")
	case KindString:
		b.WriteString(quote(v.Str))
	case KindNumber:
		b.WriteString(v.Num)
	case KindBool:
		if v.Boolean {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case KindSequence:
		b.WriteByte('[')
		for i, el := range v.Seq {
			if i > 0 {
				b.WriteByte(',')
			}
			el.write(b)
		}
		b.WriteByte(']')
	case KindMapping:
		b.WriteByte('{')
		for i, e := range v.Entries {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(quote(e.Key))
			b.WriteByte(':')
			e.Value.write(b)
		}
		b.WriteByte('}')
	default:
		b.WriteString(v.Raw)
	}
}

func quote(s string) string {
	out, err := json.Marshal(s)
	if err != nil {
		return `"` + s + `"`
	}
	return string(out)
}
