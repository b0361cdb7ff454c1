// Package dialect describes the empirical formatting conventions of a
// GFF3 or GTF/GFF2 attribute column. A Dialect is an immutable value:
// the same value is used to parse a file's attribute strings and to
// render them back, which is what makes round-tripping possible.
package dialect

// Dialect captures how the 9th column of a record is laid out.
type Dialect struct {
	// Fmt is "gff3" or "gtf".
	Fmt string

	// FieldSeparator joins key=value pairs, e.g. ";" or "; ".
	FieldSeparator string

	// KeyValSeparator joins a key to its value(s): "=" for GFF3,
	// " " for GTF.
	KeyValSeparator string

	// MultivalSeparator joins multiple values for one key, typically ",".
	MultivalSeparator string

	LeadingSemicolon  bool
	TrailingSemicolon bool

	// QuotedValues wraps rendered values in double quotes (GTF usually true).
	QuotedValues bool

	// RepeatedKeys allows the same key to appear more than once on a
	// line (GTF-style repetition); when false, a repeated key keeps
	// only its last-seen values unless the caller overrides that.
	RepeatedKeys bool

	// OrderOfAttributeKeys, if non-nil, fixes key rendering order;
	// otherwise keys render in insertion order.
	OrderOfAttributeKeys []string

	// CollapseSingleValues is carried with the dialect (and persisted
	// with it) but is not consulted by attr.Render or attr.Parse: a key
	// with exactly one value always renders as a bare "key=value".
	// Values are always stored as []string internally (see package attr).
	CollapseSingleValues bool
}

// GFF3 returns the canonical GFF3 dialect: "key=value" pairs
// separated by ";", no quoting, no repeated keys.
func GFF3() *Dialect {
	return &Dialect{
		Fmt:                  "gff3",
		FieldSeparator:       ";",
		KeyValSeparator:      "=",
		MultivalSeparator:    ",",
		QuotedValues:         false,
		RepeatedKeys:         false,
		CollapseSingleValues: true,
	}
}

// GTF returns the canonical Ensembl-style GTF dialect: quoted values,
// a trailing semicolon, and a space as the key/value separator.
func GTF() *Dialect {
	return &Dialect{
		Fmt:                  "gtf",
		FieldSeparator:       "; ",
		KeyValSeparator:      " ",
		MultivalSeparator:    ",",
		TrailingSemicolon:    true,
		QuotedValues:         true,
		RepeatedKeys:         true,
		CollapseSingleValues: true,
	}
}

// Clone returns a deep copy so callers can tweak a preset without
// mutating the shared default.
func (d *Dialect) Clone() *Dialect {
	nd := *d
	if d.OrderOfAttributeKeys != nil {
		nd.OrderOfAttributeKeys = append([]string(nil), d.OrderOfAttributeKeys...)
	}
	return &nd
}
