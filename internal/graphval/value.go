// Package graphval encodes and decodes graph property records: ordered
// (name, typed value) pairs stored as an opaque byte string inside a
// KVT entry payload.
package graphval

// Kind tags the wire representation of a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt64
	KindFloat64
	KindString
	KindDate
	KindTime
	KindDatetime
	KindList
	KindSet
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt64:
		return "int64"
	case KindFloat64:
		return "float64"
	case KindString:
		return "string"
	case KindDate:
		return "date"
	case KindTime:
		return "time"
	case KindDatetime:
		return "datetime"
	case KindList:
		return "list"
	case KindSet:
		return "set"
	case KindMap:
		return "map"
	default:
		return "unknown"
	}
}

// Date is a calendar date with no timezone, matching the fixed-width
// (year int16, month int8, day int8) wire layout.
type Date struct {
	Year  int16
	Month int8
	Day   int8
}

// Time is a time of day with microsecond resolution.
type Time struct {
	Hour        int8
	Minute      int8
	Second      int8
	Microsecond int32
}

// Datetime combines Date and Time.
type Datetime struct {
	Date Date
	Time Time
}

// Value is a tagged union covering every property value the codec can
// carry. Only the field matching Kind is meaningful.
type Value struct {
	Kind     Kind
	Bool     bool
	Int64    int64
	Float64  float64
	Str      string
	Date     Date
	Time     Time
	Datetime Datetime
	List     []Value
	Set      []Value
	Map      []Field // ordered, string-keyed
}

// Field is one named entry of a property record or a Value of kind Map.
type Field struct {
	Name  string
	Value Value
}

func Null() Value                 { return Value{Kind: KindNull} }
func Bool(b bool) Value           { return Value{Kind: KindBool, Bool: b} }
func Int64(i int64) Value         { return Value{Kind: KindInt64, Int64: i} }
func Float64(f float64) Value     { return Value{Kind: KindFloat64, Float64: f} }
func String(s string) Value       { return Value{Kind: KindString, Str: s} }
func DateValue(d Date) Value      { return Value{Kind: KindDate, Date: d} }
func TimeValue(t Time) Value      { return Value{Kind: KindTime, Time: t} }
func DatetimeValue(dt Datetime) Value {
	return Value{Kind: KindDatetime, Datetime: dt}
}
func List(items []Value) Value { return Value{Kind: KindList, List: items} }
func Set(items []Value) Value  { return Value{Kind: KindSet, Set: items} }
func Map(fields []Field) Value { return Value{Kind: KindMap, Map: fields} }

// Record is the ordered set of (name, value) pairs the codec reads and
// writes; order is significant on the wire but not for equality checks
// that compare by name.
type Record []Field

// Get returns the value named name and whether it was present.
func (r Record) Get(name string) (Value, bool) {
	for _, f := range r {
		if f.Name == name {
			return f.Value, true
		}
	}
	return Value{}, false
}
