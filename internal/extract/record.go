package extract

import (
	"bytes"
	"encoding/json"
)

// Confidence flags how a field value was obtained.
type Confidence string

const (
	// ConfidenceOK marks a matched value (normalized when requested).
	ConfidenceOK Confidence = "ok"
	// ConfidenceLow marks a matched value whose normalizer could not
	// canonicalize it; the raw matched substring is kept.
	ConfidenceLow Confidence = "low"
	// ConfidenceUnmatched marks a field whose pattern never matched.
	ConfidenceUnmatched Confidence = "unmatched"
)

type valueKind int

const (
	kindNull valueKind = iota
	kindText
	kindList
	kindTable
)

// Cell is one key/value pair of a row object; rows keep declaration order
// so serialization is byte-stable.
type Cell struct {
	Key   string
	Value string
}

// Row is one aggregate match expanded into named-group cells.
type Row []Cell

// Value is a field value: null, a string, a list of strings, or a list of
// row objects.
type Value struct {
	kind valueKind
	text string
	list []string
	rows []Row
}

func NullValue() Value           { return Value{kind: kindNull} }
func TextValue(s string) Value   { return Value{kind: kindText, text: s} }
func ListValue(l []string) Value { return Value{kind: kindList, list: l} }
func TableValue(r []Row) Value   { return Value{kind: kindTable, rows: r} }

// IsNull reports whether the value is the unmatched null.
func (v Value) IsNull() bool { return v.kind == kindNull }

// Text returns the string form and whether the value is a string.
func (v Value) Text() (string, bool) { return v.text, v.kind == kindText }

// List returns the list form and whether the value is a list of strings.
func (v Value) List() ([]string, bool) { return v.list, v.kind == kindList }

// Rows returns the table form and whether the value is a list of rows.
func (v Value) Rows() ([]Row, bool) { return v.rows, v.kind == kindTable }

// MarshalJSON serializes the value with deterministic ordering.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case kindText:
		return json.Marshal(v.text)
	case kindList:
		return json.Marshal(v.list)
	case kindTable:
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i, row := range v.rows {
			if i > 0 {
				buf.WriteByte(',')
			}
			buf.WriteByte('{')
			for j, cell := range row {
				if j > 0 {
					buf.WriteByte(',')
				}
				if err := writeJSONPair(&buf, cell.Key, cell.Value); err != nil {
					return nil, err
				}
			}
			buf.WriteByte('}')
		}
		buf.WriteByte(']')
		return buf.Bytes(), nil
	default:
		return []byte("null"), nil
	}
}

// Field is one extracted field with its confidence flag.
type Field struct {
	Name       string
	Value      Value
	Confidence Confidence
}

// Record is the terminal output of the extraction engine: an ordered field
// mapping plus the untouched raw recognized text. It is never mutated after
// the engine returns it.
type Record struct {
	Fields  []Field
	RawText string
}

// Get returns the field with the given name.
func (r *Record) Get(name string) (Field, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// MarshalJSON emits the fields in profile declaration order, then the
// per-field confidence flags, then the reserved extracted_raw_text key. The
// fixed ordering makes repeated runs byte-identical.
func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r.Fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		value, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(value)
	}

	if len(r.Fields) > 0 {
		buf.WriteByte(',')
	}
	buf.WriteString(`"field_confidence":{`)
	for i, f := range r.Fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeJSONPair(&buf, f.Name, string(f.Confidence)); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')

	buf.WriteByte(',')
	if err := writeJSONPair(&buf, "extracted_raw_text", r.RawText); err != nil {
		return nil, err
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeJSONPair(buf *bytes.Buffer, key, value string) error {
	k, err := json.Marshal(key)
	if err != nil {
		return err
	}
	v, err := json.Marshal(value)
	if err != nil {
		return err
	}
	buf.Write(k)
	buf.WriteByte(':')
	buf.Write(v)
	return nil
}
