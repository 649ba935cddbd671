package graphkey

import (
	"strconv"

	"github.com/pingcap-incubator/kvtgraph/internal/graphval"
)

// canonical renders a vertex/edge identifier as the textual form stored
// in a key component, before escaping.
func canonical(v graphval.Value) string {
	switch v.Kind {
	case graphval.KindInt64:
		return strconv.FormatInt(v.Int64, 10)
	case graphval.KindFloat64:
		return strconv.FormatFloat(v.Float64, 'g', -1, 64)
	case graphval.KindBool:
		return strconv.FormatBool(v.Bool)
	case graphval.KindString:
		return v.Str
	case graphval.KindDate:
		return strconv.Itoa(int(v.Date.Year)) + "-" + strconv.Itoa(int(v.Date.Month)) + "-" + strconv.Itoa(int(v.Date.Day))
	case graphval.KindTime:
		t := v.Time
		return strconv.Itoa(int(t.Hour)) + ":" + strconv.Itoa(int(t.Minute)) + ":" + strconv.Itoa(int(t.Second)) + "." + strconv.Itoa(int(t.Microsecond))
	case graphval.KindDatetime:
		d, t := v.Datetime.Date, v.Datetime.Time
		return strconv.Itoa(int(d.Year)) + "-" + strconv.Itoa(int(d.Month)) + "-" + strconv.Itoa(int(d.Day)) +
			"T" + strconv.Itoa(int(t.Hour)) + ":" + strconv.Itoa(int(t.Minute)) + ":" + strconv.Itoa(int(t.Second)) + "." + strconv.Itoa(int(t.Microsecond))
	default:
		// Date, time and datetime ids above render as text and decode
		// back as strings, not as their original typed Value. Null and
		// collection kinds have no textual form here: they render as
		// v.Str, which is empty for them.
		return v.Str
	}
}

// decodeID recovers a Value from an unescaped key component, trying
// integer then float then boolean before falling back to string. This
// is the documented lossy edge of the textual codec: a string component
// whose text looks numeric or boolean decodes as that type, not string.
func decodeID(s string) graphval.Value {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return graphval.Int64(i)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return graphval.Float64(f)
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return graphval.Bool(b)
	}
	return graphval.String(s)
}
