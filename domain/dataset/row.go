package dataset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/tidwall/gjson"
)

// Field is one column/value pair of a Row.
type Field struct {
	Key   string
	Value interface{}
}

// Row maps column names to cell values and remembers key order. The order is
// the document order of the JSON object it was decoded from, which is what
// the overview table uses as its column order.
type Row []Field

// Keys returns the column names in order.
func (r Row) Keys() []string {
	keys := make([]string, len(r))
	for i, f := range r {
		keys[i] = f.Key
	}
	return keys
}

// Get returns the value stored under key.
func (r Row) Get(key string) (interface{}, bool) {
	for _, f := range r {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// Has reports whether key is present, even with a null value.
func (r Row) Has(key string) bool {
	_, ok := r.Get(key)
	return ok
}

// Float returns the value under key as a float64 when it is numeric or a
// numeric string.
func (r Row) Float(key string) (float64, bool) {
	v, ok := r.Get(key)
	if !ok {
		return 0, false
	}
	return ToFloat64(v)
}

// Text returns the display form of the value under key.
func (r Row) Text(key string) string {
	v, _ := r.Get(key)
	return FormatValue(v)
}

// Set replaces the value under key or appends a new field.
func (r *Row) Set(key string, value interface{}) {
	for i := range *r {
		if (*r)[i].Key == key {
			(*r)[i].Value = value
			return
		}
	}
	*r = append(*r, Field{Key: key, Value: value})
}

// Without returns a copy of the row minus the keys for which drop is true.
// Remaining pairs keep their order and values.
func (r Row) Without(drop func(string) bool) Row {
	out := make(Row, 0, len(r))
	for _, f := range r {
		if drop(f.Key) {
			continue
		}
		out = append(out, f)
	}
	return out
}

// MarshalJSON writes the row as a JSON object in key order. Non-finite
// floats become null.
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := marshalValue(f.Value)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Key, err)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func marshalValue(v interface{}) ([]byte, error) {
	switch t := v.(type) {
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return []byte("null"), nil
		}
	case float32:
		if math.IsNaN(float64(t)) || math.IsInf(float64(t), 0) {
			return []byte("null"), nil
		}
	}
	return json.Marshal(v)
}

// UnmarshalJSON decodes a JSON object keeping its key order. Nested objects
// decode as Rows too.
func (r *Row) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("invalid JSON row")
	}
	res := gjson.ParseBytes(data)
	if res.Type == gjson.Null {
		*r = nil
		return nil
	}
	if !res.IsObject() {
		return fmt.Errorf("expected JSON object for row, got %s", res.Type)
	}
	*r = RowFromResult(res)
	return nil
}

// RowFromResult converts a parsed gjson object into a Row.
func RowFromResult(res gjson.Result) Row {
	row := Row{}
	res.ForEach(func(key, value gjson.Result) bool {
		row = append(row, Field{Key: key.String(), Value: valueOf(value)})
		return true
	})
	return row
}

func valueOf(v gjson.Result) interface{} {
	switch {
	case v.IsObject():
		return RowFromResult(v)
	case v.IsArray():
		items := v.Array()
		out := make([]interface{}, len(items))
		for i, item := range items {
			out[i] = valueOf(item)
		}
		return out
	}
	switch v.Type {
	case gjson.Number:
		return v.Float()
	case gjson.String:
		return v.String()
	case gjson.True:
		return true
	case gjson.False:
		return false
	default:
		return nil
	}
}

// ToFloat64 converts numeric values and numeric strings.
func ToFloat64(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(t, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// FormatValue renders a cell for display. Missing values render empty.
func FormatValue(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	default:
		b, err := marshalValue(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}

// Rows is an ordered sequence of rows sharing one schema. Charts, previews
// and backend payloads all use it. A nil Rows means the field was absent.
type Rows []Row

// Series is a chart payload: rows consumed positionally by field name.
type Series = Rows

// Columns returns the first row's keys in order, or nil for no rows.
func (rs Rows) Columns() []string {
	if len(rs) == 0 {
		return nil
	}
	return rs[0].Keys()
}

// Present reports whether the payload carried this sequence at all.
func (rs Rows) Present() bool {
	return rs != nil
}

// Head returns at most the first n rows.
func (rs Rows) Head(n int) Rows {
	if n < 0 || len(rs) <= n {
		return rs
	}
	return rs[:n]
}

// Project strips the dropped keys from every row and keeps everything else.
func (rs Rows) Project(drop func(string) bool) Rows {
	out := make(Rows, len(rs))
	for i, row := range rs {
		out[i] = row.Without(drop)
	}
	return out
}
