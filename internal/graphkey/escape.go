// Package graphkey implements the textual key codec: vertex,
// forward-edge, reverse-edge and secondary-index keys, each a sequence
// of ':'-separated components with a backslash-escape grammar so a
// component may itself contain ':' or '\'.
package graphkey

import "strings"

const (
	// Separator delimits key components.
	Separator = ':'
	// VertexPrefix tags a vertex key.
	VertexPrefix = 'v'
	// EdgePrefix tags a forward-edge key.
	EdgePrefix = 'e'
	// ReverseEdgePrefix tags a reverse-edge-index key.
	ReverseEdgePrefix = 'r'
	// IndexPrefix tags a secondary-index key.
	IndexPrefix = 'i'
)

// escape backslash-escapes '\' and ':' so the result can be safely
// joined into a ':'-separated key component.
func escape(s string) string {
	if !strings.ContainsAny(s, `\:`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 4)
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\', ':':
			b.WriteByte('\\')
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// unescape reverses escape.
func unescape(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// splitComponents splits a full key string on unescaped Separator
// bytes, leaving each returned component still escaped (callers must
// unescape the components they intend to interpret as identifiers).
func splitComponents(s string) []string {
	var out []string
	var cur strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			cur.WriteByte(s[i])
			cur.WriteByte(s[i+1])
			i++
			continue
		}
		if s[i] == Separator {
			out = append(out, cur.String())
			cur.Reset()
			continue
		}
		cur.WriteByte(s[i])
	}
	out = append(out, cur.String())
	return out
}

func joinComponents(parts ...string) []byte {
	return []byte(strings.Join(parts, string(Separator)))
}
