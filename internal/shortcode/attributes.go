package shortcode

import (
	"strings"
)

// Attribute is a single shortcode attribute. Flag attributes are bare tokens
// without a value (e.g. `nofollow`) and serialize as their name only.
type Attribute struct {
	Name  string
	Value string
	Flag  bool
}

// Attributes is an ordered attribute list. Order is kept because serialized
// shortcodes must be byte-stable.
type Attributes []Attribute

// ParseAttributes tokenizes a raw shortcode attribute string. It accepts
// key=value pairs with unquoted, single-quoted or double-quoted values and
// keeps bare tokens as flag entries. Input that cannot be tokenized, such as
// an unterminated quote, yields an empty set.
func ParseAttributes(raw string) Attributes {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimSpace(strings.TrimSuffix(raw, "/"))
	if raw == "" {
		return Attributes{}
	}

	var attrs Attributes
	pos := 0
	for {
		pos = skipSpace(raw, pos)
		if pos >= len(raw) {
			return attrs
		}

		if raw[pos] == '"' || raw[pos] == '\'' {
			end := strings.IndexByte(raw[pos+1:], raw[pos])
			if end < 0 {
				return Attributes{}
			}
			end += pos + 2
			attrs = append(attrs, Attribute{Name: raw[pos:end], Flag: true})
			pos = end
			continue
		}

		nameEnd := pos
		for nameEnd < len(raw) && isNameChar(raw[nameEnd]) {
			nameEnd++
		}
		eq := skipSpace(raw, nameEnd)
		if nameEnd == pos || eq >= len(raw) || raw[eq] != '=' {
			end := nextSpace(raw, pos)
			attrs = append(attrs, Attribute{Name: raw[pos:end], Flag: true})
			pos = end
			continue
		}

		name := raw[pos:nameEnd]
		valueStart := skipSpace(raw, eq+1)
		if valueStart >= len(raw) {
			attrs = append(attrs, Attribute{Name: name})
			return attrs
		}

		quote := raw[valueStart]
		if quote == '"' || quote == '\'' {
			end := strings.IndexByte(raw[valueStart+1:], quote)
			if end < 0 {
				return Attributes{}
			}
			end += valueStart + 1
			attrs = append(attrs, Attribute{Name: name, Value: raw[valueStart+1 : end]})
			pos = end + 1
			continue
		}

		end := nextSpace(raw, valueStart)
		attrs = append(attrs, Attribute{Name: name, Value: raw[valueStart:end]})
		pos = end
	}
}

// Get returns the value stored under name. Flags report an empty value.
func (a Attributes) Get(name string) (string, bool) {
	if idx := a.index(name); idx >= 0 {
		return a[idx].Value, true
	}
	return "", false
}

// Has reports whether name is present, as a value or a flag.
func (a Attributes) Has(name string) bool {
	return a.index(name) >= 0
}

// Set replaces the value of name in place, or appends it when missing.
func (a Attributes) Set(name, value string) Attributes {
	if idx := a.index(name); idx >= 0 {
		a[idx] = Attribute{Name: name, Value: value}
		return a
	}
	return append(a, Attribute{Name: name, Value: value})
}

// SetFlag marks name as a bare flag, keeping its position when present.
func (a Attributes) SetFlag(name string) Attributes {
	if idx := a.index(name); idx >= 0 {
		a[idx] = Attribute{Name: name, Flag: true}
		return a
	}
	return append(a, Attribute{Name: name, Flag: true})
}

// Delete removes every entry called name.
func (a Attributes) Delete(name string) Attributes {
	out := a[:0]
	for _, attr := range a {
		if attr.Name != name {
			out = append(out, attr)
		}
	}
	return out
}

// Clone returns an independent copy.
func (a Attributes) Clone() Attributes {
	if a == nil {
		return nil
	}
	out := make(Attributes, len(a))
	copy(out, a)
	return out
}

// Len reports the number of entries.
func (a Attributes) Len() int {
	return len(a)
}

// Names lists attribute names in order.
func (a Attributes) Names() []string {
	names := make([]string, len(a))
	for i, attr := range a {
		names[i] = attr.Name
	}
	return names
}

// Map converts the list into renderer params. Flags become true; later
// duplicates win.
func (a Attributes) Map() map[string]any {
	out := make(map[string]any, len(a))
	for _, attr := range a {
		if attr.Flag {
			out[attr.Name] = true
			continue
		}
		out[attr.Name] = attr.Value
	}
	return out
}

// String serializes the list as it appears inside a shortcode opening tag.
func (a Attributes) String() string {
	var builder strings.Builder
	for i, attr := range a {
		if i > 0 {
			builder.WriteByte(' ')
		}
		builder.WriteString(attr.Name)
		if attr.Flag {
			continue
		}
		builder.WriteByte('=')
		quote := byte('"')
		if strings.IndexByte(attr.Value, '"') >= 0 && strings.IndexByte(attr.Value, '\'') < 0 {
			quote = '\''
		}
		builder.WriteByte(quote)
		builder.WriteString(attr.Value)
		builder.WriteByte(quote)
	}
	return builder.String()
}

func (a Attributes) index(name string) int {
	for i, attr := range a {
		if attr.Name == name {
			return i
		}
	}
	return -1
}

func skipSpace(s string, pos int) int {
	for pos < len(s) && isSpace(s[pos]) {
		pos++
	}
	return pos
}

func nextSpace(s string, pos int) int {
	for pos < len(s) && !isSpace(s[pos]) {
		pos++
	}
	return pos
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' || ch == '\f' || ch == '\v'
}

func isNameChar(ch byte) bool {
	return ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z' || ch >= '0' && ch <= '9' || ch == '_' || ch == '-'
}
