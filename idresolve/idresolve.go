// Package idresolve computes a primary key for each feature.Feature
// per a caller-supplied IDSpec policy, falling back to an
// autoincrement counter when the policy yields nothing (spec.md §4.6).
//
// IDSpec is modeled as a tagged variant rather than emulating the
// source library's duck-typed "None | string | list | dict | callable"
// parameter (see SPEC_FULL.md §9's re-architecture note).
package idresolve

import (
	"fmt"
	"strings"

	"gffdb/feature"
)

// Kind identifies which IDSpec variant is active.
type Kind int

const (
	KindNone Kind = iota
	KindKey
	KindKeyList
	KindFeaturetypeMap
	KindSpecialField
	KindCallable
)

// SentinelPrefix starts a string returned by a Callable to request the autoincrement
// fallback under a specific base name, mirroring the source library's
// "autoincrement:<base>" string convention.
const SentinelPrefix = "autoincrement:"

// Callable computes a candidate key for an in-progress feature. It
// may return "" (equivalent to None) or a SentinelPrefix-prefixed
// string to explicitly request an autoincrement base.
type Callable func(f *feature.Feature) string

// Spec describes how to derive a primary key.
type Spec struct {
	Kind           Kind
	Key            string
	Keys           []string
	FeaturetypeMap map[string]*Spec
	SpecialField   string // one of seqid, source, featuretype, start, end, score, strand, frame
	Fn             Callable
}

// None is the default spec: every feature falls back to autoincrement.
func None() *Spec { return &Spec{Kind: KindNone} }

// ByKey resolves the id from the first value of attributes[key].
func ByKey(key string) *Spec { return &Spec{Kind: KindKey, Key: key} }

// ByKeys tries each key in order, first hit wins.
func ByKeys(keys ...string) *Spec { return &Spec{Kind: KindKeyList, Keys: keys} }

// ByFeaturetype dispatches by featuretype; a missing featuretype
// defaults to None.
func ByFeaturetype(m map[string]*Spec) *Spec {
	return &Spec{Kind: KindFeaturetypeMap, FeaturetypeMap: m}
}

// BySpecialField uses one of the fixed field names, given bare
// ("seqid", not ":seqid:"); any other name yields the autoincrement
// fallback.
func BySpecialField(field string) *Spec { return &Spec{Kind: KindSpecialField, SpecialField: field} }

// ByCallable dispatches to fn.
func ByCallable(fn Callable) *Spec { return &Spec{Kind: KindCallable, Fn: fn} }

// Autoincrement hands out per-base monotonically increasing integers,
// matching spec.md §4.6 / §4.7's "<base>_<n>" / "<base>_n" conventions.
type Autoincrement struct {
	counters map[string]int64
}

// NewAutoincrement returns a fresh, empty counter set.
func NewAutoincrement() *Autoincrement {
	return &Autoincrement{counters: make(map[string]int64)}
}

// Next increments and returns the counter for base.
func (a *Autoincrement) Next(base string) int64 {
	a.counters[base]++
	return a.counters[base]
}

// Peek returns the current counter value for base without advancing it.
func (a *Autoincrement) Peek(base string) int64 {
	return a.counters[base]
}

// Snapshot returns a copy of the counter map, for persistence into the
// store's autoincrements table.
func (a *Autoincrement) Snapshot() map[string]int64 {
	out := make(map[string]int64, len(a.counters))
	for k, v := range a.counters {
		out[k] = v
	}
	return out
}

// Restore seeds the counters from a persisted snapshot (used when
// re-opening a store for incremental ingest).
func (a *Autoincrement) Restore(snapshot map[string]int64) {
	for k, v := range snapshot {
		a.counters[k] = v
	}
}

// Resolve computes the primary key for f under spec, using autoinc for
// the fallback case. It never returns an error: every spec variant
// has a defined fallback to autoincrement.
func Resolve(f *feature.Feature, spec *Spec, autoinc *Autoincrement) string {
	if spec == nil {
		spec = None()
	}
	candidate := resolveCandidate(f, spec)
	return materialize(candidate, f.Featuretype, autoinc)
}

// TryResolve computes a candidate key under spec without ever
// consulting the autoincrement fallback, returning ok=false when spec
// yields nothing. Used for GTF-synthesized features, whose default id
// is the grouping key value itself rather than an autoincrement
// (spec.md §4.9 point 6), not the usual None fallback.
func TryResolve(f *feature.Feature, spec *Spec) (string, bool) {
	if spec == nil {
		return "", false
	}
	candidate := resolveCandidate(f, spec)
	if candidate == "" || strings.HasPrefix(candidate, SentinelPrefix) {
		return "", false
	}
	return candidate, true
}

func resolveCandidate(f *feature.Feature, spec *Spec) string {
	switch spec.Kind {
	case KindNone:
		return ""
	case KindKey:
		v, _ := f.Attributes.First(spec.Key)
		return v
	case KindKeyList:
		for _, k := range spec.Keys {
			if v, ok := f.Attributes.First(k); ok {
				return v
			}
		}
		return ""
	case KindFeaturetypeMap:
		sub, ok := spec.FeaturetypeMap[f.Featuretype]
		if !ok {
			return ""
		}
		return resolveCandidate(f, sub)
	case KindSpecialField:
		return specialField(f, spec.SpecialField)
	case KindCallable:
		if spec.Fn == nil {
			return ""
		}
		return spec.Fn(f)
	default:
		return ""
	}
}

func specialField(f *feature.Feature, field string) string {
	switch field {
	case "seqid":
		return f.Seqid
	case "source":
		return f.Source
	case "featuretype":
		return f.Featuretype
	case "start":
		if f.Start == nil {
			return ""
		}
		return fmt.Sprintf("%d", *f.Start)
	case "end":
		if f.End == nil {
			return ""
		}
		return fmt.Sprintf("%d", *f.End)
	case "score":
		return f.Score
	case "strand":
		return f.Strand
	case "frame":
		return f.Frame
	default:
		return ""
	}
}

// materialize turns a candidate (possibly "" or an
// "autoincrement:<base>" sentinel) into a concrete key, consulting
// autoinc when needed.
func materialize(candidate, featuretype string, autoinc *Autoincrement) string {
	base := featuretype
	if base == "" {
		base = "feature"
	}

	if candidate == "" {
		n := autoinc.Next(base)
		return fmt.Sprintf("%s_%d", base, n)
	}
	if strings.HasPrefix(candidate, SentinelPrefix) {
		b := strings.TrimPrefix(candidate, SentinelPrefix)
		if b == "" {
			b = base
		}
		n := autoinc.Next(b)
		return fmt.Sprintf("%s_%d", b, n)
	}
	return candidate
}
