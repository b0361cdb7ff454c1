// Package feature defines Feature, the row type representing a
// single annotated genomic interval (spec.md §3).
package feature

import (
	"strconv"

	"gffdb/attr"
	"gffdb/binning"
	"gffdb/dialect"
)

// Feature is one row: a gene, transcript, exon, CDS, or any other
// annotated interval. Start/End are nil when the record's coordinate
// field was ".", distinguishing "missing" from "zero" unlike the
// teacher's uint64-with-sentinel convention.
type Feature struct {
	ID          string
	Seqid       string
	Source      string
	Featuretype string
	Start       *int64
	End         *int64
	Score       string
	Strand      string
	Frame       string
	Attributes  *attr.Attributes
	Extra       []string
	Dialect     *dialect.Dialect
}

// New returns a Feature with an initialized, empty Attributes map.
func New() *Feature {
	return &Feature{Attributes: attr.New()}
}

// Bin computes and returns the UCSC bin for this feature's interval,
// or nil if either coordinate is missing.
func (f *Feature) Bin() *int64 {
	if f.Start == nil || f.End == nil {
		return nil
	}
	b := binning.Bin(*f.Start, *f.End)
	return &b
}

// HasCoords reports whether both Start and End are present.
func (f *Feature) HasCoords() bool {
	return f.Start != nil && f.End != nil
}

// SameCoreFields reports whether f and other agree on every
// non-attribute, non-id field: seqid, source, featuretype, start,
// end, strand, frame (spec.md §4.7's merge-eligibility check; score
// is intentionally excluded, since it is frequently an e-value that
// differs benignly run to run while the interval and type do not).
func (f *Feature) SameCoreFields(other *Feature) (ok bool, field string) {
	switch {
	case f.Seqid != other.Seqid:
		return false, "seqid"
	case f.Source != other.Source:
		return false, "source"
	case f.Featuretype != other.Featuretype:
		return false, "featuretype"
	case !samePtr(f.Start, other.Start):
		return false, "start"
	case !samePtr(f.End, other.End):
		return false, "end"
	case f.Strand != other.Strand:
		return false, "strand"
	case f.Frame != other.Frame:
		return false, "frame"
	}
	return true, ""
}

func samePtr(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// Clone returns a deep copy of f.
func (f *Feature) Clone() *Feature {
	n := *f
	if f.Start != nil {
		s := *f.Start
		n.Start = &s
	}
	if f.End != nil {
		e := *f.End
		n.End = &e
	}
	if f.Attributes != nil {
		n.Attributes = f.Attributes.Clone()
	}
	n.Extra = append([]string(nil), f.Extra...)
	return &n
}

func coordString(p *int64) string {
	if p == nil {
		return "."
	}
	return strconv.FormatInt(*p, 10)
}

// String renders f back to a 9 (or more, with Extra)-column text
// line using f.Dialect, reconstructing the original line modulo the
// declared normalization (percent-encoding policy, attribute-value
// sort order) per spec.md §8 Property 1.
func (f *Feature) String() string {
	d := f.Dialect
	if d == nil {
		d = dialect.GFF3()
	}

	cols := []string{
		emptyDot(f.Seqid),
		emptyDot(f.Source),
		emptyDot(f.Featuretype),
		coordString(f.Start),
		coordString(f.End),
		emptyDot(f.Score),
		emptyDot(f.Strand),
		emptyDot(f.Frame),
		attr.Render(f.Attributes, d),
	}
	cols = append(cols, f.Extra...)

	out := cols[0]
	for _, c := range cols[1:] {
		out += "\t" + c
	}
	return out
}

func emptyDot(s string) string {
	if s == "" {
		return "."
	}
	return s
}
