package mustache

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	yaml "gopkg.in/yaml.v2"
)

// Kind discriminates the variant held by a Value.
type Kind int

// The Value variants, per the data model: null, boolean, number (integer
// or floating), string, ordered sequence, and string-keyed mapping.
const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindSequence
	KindMapping
)

// Value is the runtime data tree the renderer walks. It is a tagged sum,
// not a class hierarchy: every variant's payload lives in its own field,
// selected by Kind.
type Value struct {
	kind Kind

	boolVal bool

	isInt  bool
	intVal int64
	numVal float64

	strVal string

	seqVal []Value
	mapVal map[string]Value
}

// Null is the zero Value.
var Null = Value{kind: KindNull}

// NewBool returns a boolean Value.
func NewBool(b bool) Value { return Value{kind: KindBool, boolVal: b} }

// NewInt returns an integer-valued number Value.
func NewInt(i int64) Value { return Value{kind: KindNumber, isInt: true, intVal: i} }

// NewFloat returns a floating-point number Value.
func NewFloat(f float64) Value { return Value{kind: KindNumber, numVal: f} }

// NewString returns a string Value.
func NewString(s string) Value { return Value{kind: KindString, strVal: s} }

// NewSequence returns a sequence Value.
func NewSequence(vs []Value) Value { return Value{kind: KindSequence, seqVal: vs} }

// NewMapping returns a mapping Value.
func NewMapping(m map[string]Value) Value { return Value{kind: KindMapping, mapVal: m} }

// Kind reports the variant this Value holds.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is the null variant.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Field looks up a key on a mapping Value. It returns the zero Value and
// false for any other Kind, or if the key is absent.
func (v Value) Field(key string) (Value, bool) {
	if v.kind != KindMapping {
		return Value{}, false
	}
	val, ok := v.mapVal[key]
	return val, ok
}

// Sequence returns the elements of a sequence Value, or nil otherwise.
func (v Value) Sequence() []Value {
	if v.kind != KindSequence {
		return nil
	}
	return v.seqVal
}

// Mapping returns the entries of a mapping Value, or nil otherwise.
func (v Value) Mapping() map[string]Value {
	if v.kind != KindMapping {
		return nil
	}
	return v.mapVal
}

// Bool returns the payload of a boolean Value (false for any other Kind).
func (v Value) Bool() bool { return v.boolVal }

// IsInt reports whether a number Value holds an integer payload.
func (v Value) IsInt() bool { return v.kind == KindNumber && v.isInt }

// Int64 returns the integer payload of a number Value (0 if it holds a
// float, or for any other Kind).
func (v Value) Int64() int64 { return v.intVal }

// Float64 returns the numeric payload of a number Value as a float64,
// widening an integer payload (0 for any other Kind).
func (v Value) Float64() float64 {
	if v.kind != KindNumber {
		return 0
	}
	if v.isInt {
		return float64(v.intVal)
	}
	return v.numVal
}

// Truthy implements the truthiness law of §4.C: null, false, empty
// string, empty sequence, and empty mapping are falsy; everything else
// is truthy.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindNull:
		return false
	case KindBool:
		return v.boolVal
	case KindNumber:
		return true
	case KindString:
		return v.strVal != ""
	case KindSequence:
		return len(v.seqVal) != 0
	case KindMapping:
		return len(v.mapVal) != 0
	}
	return false
}

// String converts a Value to its output-string form, per §4.D. Sequences
// and mappings stringify to "" — the renderer never implicitly
// stringifies a container in a variable position.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return ""
	case KindBool:
		if v.boolVal {
			return "true"
		}
		return ""
	case KindNumber:
		if v.isInt {
			return strconv.FormatInt(v.intVal, 10)
		}
		return strconv.FormatFloat(v.numVal, 'f', -1, 64)
	case KindString:
		return v.strVal
	default:
		return ""
	}
}

// LoadValue parses a data/partials-literal string into a Value. It tries
// JSON first (pinning integer-vs-float intent via json.Number, per
// SPEC_FULL.md §4.E / Open Question (b)), falls back to YAML, and
// finally treats unparseable input as a plain string — this lets the
// package-level Render take a bare literal as its data without any
// quoting. (The CLI merges each --data value with MergeMapping, which
// keeps only mappings, so a bare literal passed there is dropped.)
func LoadValue(data string) (Value, error) {
	trimmed := strings.TrimSpace(data)
	if trimmed == "" {
		return Value{kind: KindMapping, mapVal: map[string]Value{}}, nil
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(data)))
	dec.UseNumber()
	var jsonVal interface{}
	if err := dec.Decode(&jsonVal); err == nil {
		return fromJSON(jsonVal), nil
	}

	var yamlVal interface{}
	if err := yaml.Unmarshal([]byte(data), &yamlVal); err == nil && yamlVal != nil {
		return fromYAML(yamlVal), nil
	}

	return NewString(data), nil
}

func fromJSON(v interface{}) Value {
	switch x := v.(type) {
	case nil:
		return Null
	case bool:
		return NewBool(x)
	case json.Number:
		return numberFromJSONNumber(x)
	case string:
		return NewString(x)
	case []interface{}:
		seq := make([]Value, len(x))
		for i, e := range x {
			seq[i] = fromJSON(e)
		}
		return NewSequence(seq)
	case map[string]interface{}:
		m := make(map[string]Value, len(x))
		for k, e := range x {
			m[k] = fromJSON(e)
		}
		return NewMapping(m)
	default:
		return NewString(fmt.Sprint(x))
	}
}

func numberFromJSONNumber(n json.Number) Value {
	s := n.String()
	if !strings.ContainsAny(s, ".eE") {
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return NewInt(i)
		}
	}
	f, err := n.Float64()
	if err != nil {
		return NewString(s)
	}
	return NewFloat(f)
}

func fromYAML(v interface{}) Value {
	switch x := v.(type) {
	case nil:
		return Null
	case bool:
		return NewBool(x)
	case int:
		return NewInt(int64(x))
	case int64:
		return NewInt(x)
	case uint64:
		return NewInt(int64(x))
	case float64:
		return NewFloat(x)
	case string:
		return NewString(x)
	case []interface{}:
		seq := make([]Value, len(x))
		for i, e := range x {
			seq[i] = fromYAML(e)
		}
		return NewSequence(seq)
	case map[interface{}]interface{}:
		m := make(map[string]Value, len(x))
		for k, e := range x {
			m[fmt.Sprint(k)] = fromYAML(e)
		}
		return NewMapping(m)
	case map[string]interface{}:
		m := make(map[string]Value, len(x))
		for k, e := range x {
			m[k] = fromYAML(e)
		}
		return NewMapping(m)
	default:
		return NewString(fmt.Sprint(x))
	}
}

// MergeMapping shallow-merges src's keys into dst (dst must be a mapping
// Value, or null in which case a fresh mapping is created); keys in src
// override keys already in dst. Used by the CLI to combine repeated
// --data/--data-file flags.
func MergeMapping(dst, src Value) Value {
	if dst.kind != KindMapping {
		dst = Value{kind: KindMapping, mapVal: map[string]Value{}}
	}
	if src.kind != KindMapping {
		return dst
	}
	merged := make(map[string]Value, len(dst.mapVal)+len(src.mapVal))
	for k, v := range dst.mapVal {
		merged[k] = v
	}
	for k, v := range src.mapVal {
		merged[k] = v
	}
	return Value{kind: KindMapping, mapVal: merged}
}
