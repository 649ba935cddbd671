package graphval

import (
	"encoding/binary"
	"math"

	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("component", "graphval")

// Encode serializes record as: u32 count, then count pairs of
// (u32 name_len, name_bytes, u8 tag, payload). An unsupported Value
// kind falls back to encoding as null rather than failing the record.
func Encode(record Record) []byte {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, uint32(len(record)))
	for _, f := range record {
		buf = appendUint32Prefixed(buf, []byte(f.Name))
		buf = appendValue(buf, f.Value)
	}
	return buf
}

func appendUint32Prefixed(buf, data []byte) []byte {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(data)))
	buf = append(buf, lenBuf[:]...)
	return append(buf, data...)
}

func appendValue(buf []byte, v Value) []byte {
	kind := v.Kind
	switch kind {
	case KindNull, KindBool, KindInt64, KindFloat64, KindString,
		KindDate, KindTime, KindDatetime, KindList, KindSet, KindMap:
		// supported, fall through
	default:
		kind = KindNull
	}

	buf = append(buf, byte(kind))
	switch kind {
	case KindNull:
	case KindBool:
		if v.Bool {
			buf = append(buf, 1)
		} else {
			buf = append(buf, 0)
		}
	case KindInt64:
		var b [8]byte
		binary.BigEndian.PutUint64(b[:], uint64(v.Int64))
		buf = append(buf, b[:]...)
	case KindFloat64:
		var b [8]byte
		binary.BigEndian.PutUint64(b[:], math.Float64bits(v.Float64))
		buf = append(buf, b[:]...)
	case KindString:
		buf = appendUint32Prefixed(buf, []byte(v.Str))
	case KindDate:
		buf = appendDate(buf, v.Date)
	case KindTime:
		buf = appendTime(buf, v.Time)
	case KindDatetime:
		buf = appendDate(buf, v.Datetime.Date)
		buf = appendTime(buf, v.Datetime.Time)
	case KindList:
		buf = appendValueSlice(buf, v.List)
	case KindSet:
		buf = appendValueSlice(buf, v.Set)
	case KindMap:
		var b [4]byte
		binary.BigEndian.PutUint32(b[:], uint32(len(v.Map)))
		buf = append(buf, b[:]...)
		for _, f := range v.Map {
			buf = appendUint32Prefixed(buf, []byte(f.Name))
			buf = appendValue(buf, f.Value)
		}
	}
	return buf
}

func appendValueSlice(buf []byte, items []Value) []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(len(items)))
	buf = append(buf, b[:]...)
	for _, item := range items {
		buf = appendValue(buf, item)
	}
	return buf
}

func appendDate(buf []byte, d Date) []byte {
	var b [4]byte
	binary.BigEndian.PutUint16(b[0:2], uint16(d.Year))
	b[2] = byte(d.Month)
	b[3] = byte(d.Day)
	return append(buf, b[:]...)
}

func appendTime(buf []byte, t Time) []byte {
	var b [7]byte
	b[0] = byte(t.Hour)
	b[1] = byte(t.Minute)
	b[2] = byte(t.Second)
	binary.BigEndian.PutUint32(b[3:7], uint32(t.Microsecond))
	return append(buf, b[:]...)
}

// Decode parses a Record from raw. Decoding never panics: truncation of
// a known tag's payload aborts with an empty record and a logged
// warning; an unrecognized tag byte decodes that field as null and the
// decoder abandons the remainder of the record, since it has no way to
// know how many bytes an unknown tag's payload occupies.
func Decode(raw []byte) Record {
	r := &reader{buf: raw}
	count, ok := r.uint32()
	if !ok {
		log.Warn("value record truncated reading field count")
		return nil
	}

	record := make(Record, 0, count)
	for i := uint32(0); i < count; i++ {
		name, ok := r.uint32Prefixed()
		if !ok {
			log.Warn("value record truncated reading field name")
			return nil
		}
		v, ok, unknownTag := r.value()
		if !ok {
			log.Warn("value record truncated reading field value")
			return nil
		}
		record = append(record, Field{Name: string(name), Value: v})
		if unknownTag {
			log.WithField("field", string(name)).Warn("unknown value tag, remainder of record abandoned")
			break
		}
	}
	return record
}

type reader struct {
	buf []byte
	pos int
}

func (r *reader) remaining() int { return len(r.buf) - r.pos }

func (r *reader) uint32() (uint32, bool) {
	if r.remaining() < 4 {
		return 0, false
	}
	v := binary.BigEndian.Uint32(r.buf[r.pos : r.pos+4])
	r.pos += 4
	return v, true
}

func (r *reader) uint32Prefixed() ([]byte, bool) {
	n, ok := r.uint32()
	if !ok {
		return nil, false
	}
	if r.remaining() < int(n) {
		return nil, false
	}
	v := r.buf[r.pos : r.pos+int(n)]
	r.pos += int(n)
	return v, true
}

func (r *reader) byte() (byte, bool) {
	if r.remaining() < 1 {
		return 0, false
	}
	b := r.buf[r.pos]
	r.pos++
	return b, true
}

// value reads one tagged value. The third return is true when the tag
// byte itself was not recognized.
func (r *reader) value() (Value, bool, bool) {
	tagByte, ok := r.byte()
	if !ok {
		return Value{}, false, false
	}
	switch Kind(tagByte) {
	case KindNull:
		return Null(), true, false
	case KindBool:
		b, ok := r.byte()
		if !ok {
			return Value{}, false, false
		}
		return Bool(b != 0), true, false
	case KindInt64:
		if r.remaining() < 8 {
			return Value{}, false, false
		}
		v := int64(binary.BigEndian.Uint64(r.buf[r.pos : r.pos+8]))
		r.pos += 8
		return Int64(v), true, false
	case KindFloat64:
		if r.remaining() < 8 {
			return Value{}, false, false
		}
		bits := binary.BigEndian.Uint64(r.buf[r.pos : r.pos+8])
		r.pos += 8
		return Float64(math.Float64frombits(bits)), true, false
	case KindString:
		s, ok := r.uint32Prefixed()
		if !ok {
			return Value{}, false, false
		}
		return String(string(s)), true, false
	case KindDate:
		d, ok := r.date()
		if !ok {
			return Value{}, false, false
		}
		return DateValue(d), true, false
	case KindTime:
		tm, ok := r.time()
		if !ok {
			return Value{}, false, false
		}
		return TimeValue(tm), true, false
	case KindDatetime:
		d, ok := r.date()
		if !ok {
			return Value{}, false, false
		}
		tm, ok := r.time()
		if !ok {
			return Value{}, false, false
		}
		return DatetimeValue(Datetime{Date: d, Time: tm}), true, false
	case KindList, KindSet:
		items, ok := r.valueSlice()
		if !ok {
			return Value{}, false, false
		}
		if Kind(tagByte) == KindList {
			return List(items), true, false
		}
		return Set(items), true, false
	case KindMap:
		n, ok := r.uint32()
		if !ok {
			return Value{}, false, false
		}
		fields := make([]Field, 0, n)
		for i := uint32(0); i < n; i++ {
			name, ok := r.uint32Prefixed()
			if !ok {
				return Value{}, false, false
			}
			v, ok, unknown := r.value()
			if !ok {
				return Value{}, false, false
			}
			fields = append(fields, Field{Name: string(name), Value: v})
			if unknown {
				break
			}
		}
		return Map(fields), true, false
	default:
		return Null(), true, true
	}
}

func (r *reader) valueSlice() ([]Value, bool) {
	n, ok := r.uint32()
	if !ok {
		return nil, false
	}
	items := make([]Value, 0, n)
	for i := uint32(0); i < n; i++ {
		v, ok, unknown := r.value()
		if !ok {
			return nil, false
		}
		items = append(items, v)
		if unknown {
			break
		}
	}
	return items, true
}

func (r *reader) date() (Date, bool) {
	if r.remaining() < 4 {
		return Date{}, false
	}
	year := int16(binary.BigEndian.Uint16(r.buf[r.pos : r.pos+2]))
	month := int8(r.buf[r.pos+2])
	day := int8(r.buf[r.pos+3])
	r.pos += 4
	return Date{Year: year, Month: month, Day: day}, true
}

func (r *reader) time() (Time, bool) {
	if r.remaining() < 7 {
		return Time{}, false
	}
	hour := int8(r.buf[r.pos])
	minute := int8(r.buf[r.pos+1])
	second := int8(r.buf[r.pos+2])
	micro := int32(binary.BigEndian.Uint32(r.buf[r.pos+3 : r.pos+7]))
	r.pos += 7
	return Time{Hour: hour, Minute: minute, Second: second, Microsecond: micro}, true
}
