// Package attr parses and renders the 9th (attributes) column of a
// GFF3/GTF record into an ordered multimap, under a caller-supplied
// dialect.Dialect.
//
// Values are always stored as a []string, even when a key carries a
// single value or none at all — this removes the isinstance-style
// "sometimes a string, sometimes a list" ambiguity that the source
// library left to callers to sort out (see SPEC_FULL.md §9).
package attr

import (
	"strings"

	"gffdb/dialect"
	"gffdb/gfferrors"
)

// Attributes is an ordered multimap: key -> list of values, with keys
// retained in first-insertion order so that rendering can reproduce
// the original column when keep_order is requested.
type Attributes struct {
	order  []string
	values map[string][]string
}

// New returns an empty, ready-to-use Attributes.
func New() *Attributes {
	return &Attributes{values: make(map[string][]string)}
}

// Keys returns the keys in insertion order.
func (a *Attributes) Keys() []string {
	return append([]string(nil), a.order...)
}

// Get returns the values for key, or nil if absent.
func (a *Attributes) Get(key string) []string {
	return a.values[key]
}

// First returns the first value for key, and whether key is present
// and non-empty.
func (a *Attributes) First(key string) (string, bool) {
	v, ok := a.values[key]
	if !ok || len(v) == 0 {
		return "", false
	}
	return v[0], true
}

// Has reports whether key is present at all (even with zero values).
func (a *Attributes) Has(key string) bool {
	_, ok := a.values[key]
	return ok
}

// Set replaces the values for key, preserving key's existing position
// in the insertion order, or appending it if new.
func (a *Attributes) Set(key string, values []string) {
	if _, ok := a.values[key]; !ok {
		a.order = append(a.order, key)
	}
	a.values[key] = values
}

// Append adds values onto any existing values for key (used when the
// dialect allows repeated keys), registering key in the insertion
// order the first time it is seen.
func (a *Attributes) Append(key string, values []string) {
	if _, ok := a.values[key]; !ok {
		a.order = append(a.order, key)
	}
	a.values[key] = append(a.values[key], values...)
}

// Delete removes key entirely.
func (a *Attributes) Delete(key string) {
	if _, ok := a.values[key]; !ok {
		return
	}
	delete(a.values, key)
	for i, k := range a.order {
		if k == key {
			a.order = append(a.order[:i], a.order[i+1:]...)
			break
		}
	}
}

// Clone returns a deep copy.
func (a *Attributes) Clone() *Attributes {
	n := New()
	for _, k := range a.order {
		vals := append([]string(nil), a.values[k]...)
		n.Set(k, vals)
	}
	return n
}

// reservedGFF3 are the characters GFF3 requires escaped on render,
// per spec.md §4.2: tab, newline, CR, ';', '=', '&', ',', and control
// characters. Space is deliberately excluded: %20 is decoded on parse
// but never re-escaped on render (see SPEC_FULL.md §9, Open Question 3).
const reservedGFF3 = "\t\n\r;=&,"

func percentDecode(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '%' && i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2]) {
			b.WriteByte(hexByte(s[i+1], s[i+2]))
			i += 2
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func isHex(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func hexVal(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}

func hexByte(hi, lo byte) byte {
	return hexVal(hi)<<4 | hexVal(lo)
}

func percentEncode(s string) string {
	needsEscape := false
	for i := 0; i < len(s); i++ {
		if strings.IndexByte(reservedGFF3, s[i]) >= 0 || s[i] < 0x20 {
			needsEscape = true
			break
		}
	}
	if !needsEscape {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if strings.IndexByte(reservedGFF3, c) >= 0 || c < 0x20 {
			b.WriteString("%")
			b.WriteString(hexDigits(c))
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

const hexAlphabet = "0123456789ABCDEF"

func hexDigits(c byte) string {
	return string([]byte{hexAlphabet[c>>4], hexAlphabet[c&0x0f]})
}

// Parse splits the literal 9th column into an ordered multimap under
// d, per spec.md §4.2. line is the 1-based input line number, used
// only to annotate errors.
func Parse(column string, d *dialect.Dialect, line int) (*Attributes, error) {
	a := New()
	s := column

	if d.LeadingSemicolon {
		s = strings.TrimPrefix(s, d.FieldSeparator)
	}
	if d.TrailingSemicolon {
		s = strings.TrimSuffix(s, strings.TrimRight(d.FieldSeparator, " "))
		s = strings.TrimSuffix(s, d.FieldSeparator)
	}
	if s == "" || s == "." {
		return a, nil
	}

	tokens := splitOnSeparator(s, d.FieldSeparator)
	for _, tok := range tokens {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}

		sep := d.KeyValSeparator
		idx := strings.Index(tok, sep)
		if idx < 0 {
			// Only d.KeyValSeparator is tried; there is no fallback
			// separator. A token with no separator maps to an empty
			// value list
			// (e.g. the "Complete" key in glimmer GFF3 output,
			// spec.md §8 S5) rather than failing outright, UNLESS the
			// token looks like it should have had one (contains
			// whitespace mid-token, suggesting a malformed pair).
			if strings.ContainsAny(tok, " \t") && sep != " " {
				return nil, &gfferrors.InvalidAttributeToken{Line: line, Token: tok}
			}
			a.appendKey(tok, []string{}, d)
			continue
		}

		key := tok[:idx]
		val := tok[idx+len(sep):]
		key = strings.TrimSpace(key)
		val = strings.TrimSpace(val)

		if d.QuotedValues {
			val = strings.Trim(val, `"`)
		}
		if d.Fmt == "gff3" {
			val = percentDecode(val)
		}

		var values []string
		if d.MultivalSeparator != "" && strings.Contains(val, d.MultivalSeparator) {
			values = strings.Split(val, d.MultivalSeparator)
		} else {
			values = []string{val}
		}

		a.appendKey(key, values, d)
	}

	return a, nil
}

// appendKey implements the repeated-key policy of spec.md §4.2 step 4.
func (a *Attributes) appendKey(key string, values []string, d *dialect.Dialect) {
	if !a.Has(key) {
		a.Set(key, values)
		return
	}
	if d.RepeatedKeys {
		a.Append(key, values)
		return
	}
	// keep last-seen values, per spec's configurable default
	a.Set(key, values)
}

// splitOnSeparator splits on sep but trims a purely-whitespace variant
// of it too (";" vs "; ") so dialects that differ only in whitespace
// still parse consistently.
func splitOnSeparator(s, sep string) []string {
	trimmedSep := strings.TrimSpace(sep)
	if trimmedSep == "" {
		trimmedSep = sep
	}
	return strings.Split(s, trimmedSep)
}

// Render produces the single attribute-column string for a under d,
// per spec.md §4.1's rendering contract.
func Render(a *Attributes, d *dialect.Dialect) string {
	if a == nil || len(a.order) == 0 {
		return "."
	}

	keys := a.order
	if len(d.OrderOfAttributeKeys) > 0 {
		keys = orderKeys(a, d.OrderOfAttributeKeys)
	}

	var pairs []string
	for _, k := range keys {
		vals := a.values[k]
		pairs = append(pairs, renderPair(k, vals, d))
	}

	sep := d.FieldSeparator
	out := strings.Join(pairs, sep)
	if d.LeadingSemicolon {
		out = strings.TrimRight(sep, " ") + out
	}
	if d.TrailingSemicolon {
		out = out + strings.TrimRight(sep, " ")
	}
	return out
}

func orderKeys(a *Attributes, order []string) []string {
	seen := make(map[string]bool, len(order))
	var out []string
	for _, k := range order {
		if a.Has(k) {
			out = append(out, k)
			seen[k] = true
		}
	}
	for _, k := range a.order {
		if !seen[k] {
			out = append(out, k)
		}
	}
	return out
}

func renderPair(key string, vals []string, d *dialect.Dialect) string {
	rendered := make([]string, len(vals))
	for i, v := range vals {
		if d.Fmt == "gff3" {
			v = percentEncode(v)
		}
		if d.QuotedValues {
			v = `"` + v + `"`
		}
		rendered[i] = v
	}
	joined := strings.Join(rendered, d.MultivalSeparator)
	if len(vals) == 0 {
		return key
	}
	return key + d.KeyValSeparator + joined
}
