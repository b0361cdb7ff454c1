// Package gffline splits a single tab-delimited annotation record
// into typed fields and synthesizes a feature.Feature (spec.md §4.3).
//
// It also recognizes directives (lines starting with "##"), comments
// (lines starting with a lone "#"), and the FlyBase/WormBase "##FASTA"
// terminator that ends the annotation section of a hybrid file.
package gffline

import (
	"strconv"
	"strings"

	"gffdb/attr"
	"gffdb/dialect"
	"gffdb/feature"
	"gffdb/gfferrors"
)

// Kind classifies a raw input line.
type Kind int

const (
	KindFeature Kind = iota
	KindDirective
	KindComment
	KindBlank
	KindFastaTerminator
)

// Classify reports what kind of line raw is, without fully parsing it.
func Classify(raw string) Kind {
	trimmed := strings.TrimRight(raw, "\r\n")
	switch {
	case trimmed == "":
		return KindBlank
	case trimmed == "##FASTA":
		return KindFastaTerminator
	case strings.HasPrefix(trimmed, "##"):
		return KindDirective
	case strings.HasPrefix(trimmed, "#"):
		return KindComment
	default:
		return KindFeature
	}
}

// ParseLine parses one feature record line under dialect d. lineNo is
// the 1-based input line number, used to annotate errors.
func ParseLine(raw string, d *dialect.Dialect, lineNo int) (*feature.Feature, error) {
	line := strings.TrimRight(raw, "\r\n")
	fields := strings.Split(line, "\t")

	if len(fields) < 9 {
		return nil, &gfferrors.MalformedLine{
			Line:   lineNo,
			Reason: "fewer than 9 tab-separated fields",
		}
	}

	f := feature.New()
	f.Seqid = dotToEmpty(fields[0])
	f.Source = dotToEmpty(fields[1])
	f.Featuretype = dotToEmpty(fields[2])

	start, err := parseCoord(fields[3])
	if err != nil {
		return nil, &gfferrors.MalformedLine{Line: lineNo, Reason: "start: " + err.Error()}
	}
	end, err := parseCoord(fields[4])
	if err != nil {
		return nil, &gfferrors.MalformedLine{Line: lineNo, Reason: "end: " + err.Error()}
	}
	if start != nil && end != nil {
		if *start > *end {
			return nil, &gfferrors.MalformedLine{
				Line:   lineNo,
				Reason: "start > end",
			}
		}
	}
	f.Start = start
	f.End = end

	f.Score = fields[5]
	f.Strand = fields[6]
	f.Frame = fields[7]
	f.Dialect = d

	a, err := attr.Parse(fields[8], d, lineNo)
	if err != nil {
		return nil, err
	}
	f.Attributes = a
	if len(fields) > 9 {
		f.Extra = append([]string(nil), fields[9:]...)
	}

	return f, nil
}

func dotToEmpty(s string) string {
	if s == "." {
		return ""
	}
	return s
}

// parseCoord parses a 1-based coordinate field, returning nil for the
// "." missing-value placeholder (spec.md §4.3's boundary rule: a
// zero-length interval is not representable, so 0 itself is rejected
// as a value, only "." is accepted as "missing").
func parseCoord(s string) (*int64, error) {
	if s == "." || s == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, err
	}
	if n < 1 {
		return nil, strconvRangeErr(s)
	}
	return &n, nil
}

func strconvRangeErr(s string) error {
	return &strconv.NumError{Func: "parseCoord", Num: s, Err: strconv.ErrRange}
}
