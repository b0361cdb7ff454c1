// Package merge implements the merge_strategy policies of spec.md
// §4.7: resolving two records that resolved to the same primary key.
//
// The "agree on core fields, union attribute values" rule is adapted
// from the Allen-relationship feature merge in
// other_examples/grendeloz-ngs/gff3/feature.go, simplified from
// interval reconciliation down to GFF3's flat equality check.
package merge

import (
	"strconv"

	"gffdb/feature"
	"gffdb/gfferrors"
	"gffdb/idresolve"
)

// Strategy names the five merge_strategy policies.
type Strategy string

const (
	StrategyError        Strategy = "error"
	StrategyWarning      Strategy = "warning"
	StrategyMerge        Strategy = "merge"
	StrategyCreateUnique Strategy = "create_unique"
	StrategyReplace      Strategy = "replace"
)

// Outcome reports what Resolve did so the caller (ingest) can log or
// record it.
type Outcome int

const (
	OutcomeInserted Outcome = iota
	OutcomeMerged
	OutcomeReplaced
	OutcomeSkipped
	OutcomeUniquified
)

// Result is the outcome of attempting to add incoming under key.
type Result struct {
	Outcome Outcome
	// Key is the (possibly uniquified) key the caller should store
	// incoming under.
	Key string
	// Feature is the feature to persist: incoming itself, the merged
	// feature, or nil (skip).
	Feature *feature.Feature
	// OriginalKey, when Outcome == OutcomeUniquified, is the key that
	// was already taken — used to populate the duplicates table.
	OriginalKey string
}

// Set tracks ingested features by primary key, for collision
// detection during a single ingest run.
type Set struct {
	byID map[string]*feature.Feature
}

// NewSet returns an empty Set.
func NewSet() *Set {
	return &Set{byID: make(map[string]*feature.Feature)}
}

// Get returns the currently-stored feature for key, if any.
func (s *Set) Get(key string) (*feature.Feature, bool) {
	f, ok := s.byID[key]
	return f, ok
}

// Put registers f under key, overwriting any previous occupant. Callers
// should only do this after Resolve has decided the final key/feature.
func (s *Set) Put(key string, f *feature.Feature) {
	s.byID[key] = f
}

// Resolve applies strategy to add incoming under key into s, given
// line (for error annotation) and an Autoincrement for create_unique.
func Resolve(s *Set, key string, incoming *feature.Feature, strategy Strategy, line int, autoinc *idresolve.Autoincrement) (Result, error) {
	existing, collides := s.Get(key)
	if !collides {
		s.Put(key, incoming)
		return Result{Outcome: OutcomeInserted, Key: key, Feature: incoming}, nil
	}

	switch strategy {
	case StrategyError:
		return Result{}, &gfferrors.DuplicateIDError{Line: line, ID: key}

	case StrategyWarning:
		return Result{Outcome: OutcomeSkipped, Key: key}, nil

	case StrategyReplace:
		s.Put(key, incoming)
		return Result{Outcome: OutcomeReplaced, Key: key, Feature: incoming}, nil

	case StrategyCreateUnique:
		n := autoinc.Next(key)
		newKey := key + "_" + strconv.FormatInt(n, 10)
		incoming.ID = newKey
		s.Put(newKey, incoming)
		return Result{
			Outcome:     OutcomeUniquified,
			Key:         newKey,
			Feature:     incoming,
			OriginalKey: key,
		}, nil

	case StrategyMerge:
		ok, field := existing.SameCoreFields(incoming)
		if !ok {
			return Result{}, &gfferrors.MergeConflictError{Line: line, ID: key, Field: field}
		}
		merged := mergeAttributes(existing, incoming)
		s.Put(key, merged)
		return Result{Outcome: OutcomeMerged, Key: key, Feature: merged}, nil

	default:
		return Result{}, &gfferrors.DuplicateIDError{Line: line, ID: key}
	}
}

// mergeAttributes unions attribute values per key, preserving
// insertion order of first occurrence with new values appended
// (spec.md §5's ordering guarantee), and deduplicating.
func mergeAttributes(a, b *feature.Feature) *feature.Feature {
	merged := a.Clone()
	merged.ID = a.ID

	for _, k := range b.Attributes.Keys() {
		bvals := b.Attributes.Get(k)
		if !merged.Attributes.Has(k) {
			merged.Attributes.Set(k, dedupe(bvals))
			continue
		}
		existingVals := merged.Attributes.Get(k)
		merged.Attributes.Set(k, dedupe(append(append([]string(nil), existingVals...), bvals...)))
	}
	return merged
}

func dedupe(vals []string) []string {
	seen := make(map[string]bool, len(vals))
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
