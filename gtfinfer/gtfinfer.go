// Package gtfinfer synthesizes the gene and transcript features that
// GTF files normally leave implicit, from their component exon/CDS/
// start_codon/stop_codon/UTR rows (spec.md §4.9).
//
// The accumulate-while-scanning, assemble-after-EOF shape is grounded
// on other_examples/inodb-vibe-vep/internal/cache/gtf_loader.go's
// parseGTF: group rows into a map keyed by transcript id while
// reading, track running min/max coordinates, then do one assembly
// pass once the scan loop ends.
package gtfinfer

import (
	"gffdb/feature"
)

// State names the per-transcript-group lifecycle of spec.md §4.9's
// state machine.
type State int

const (
	StateEmpty State = iota
	StateAccumulating
	StateFinalized
)

// Config mirrors the gtf_transcript_key / gtf_gene_key / gtf_subfeature
// / disable_infer_* options of spec.md §6.4.
type Config struct {
	TranscriptKey           string
	GeneKey                 string
	Subfeature              string
	DisableInferGenes       bool
	DisableInferTranscripts bool
}

// DefaultConfig returns the conventional gene_id/transcript_id/exon
// configuration.
func DefaultConfig() Config {
	return Config{
		TranscriptKey: "transcript_id",
		GeneKey:       "gene_id",
		Subfeature:    "exon",
	}
}

// childRef is one component feature registered under a transcript group.
type childRef struct {
	id          string
	featuretype string
	start       *int64
	end         *int64
}

type transcriptGroup struct {
	state     State
	seqid     string
	source    string
	strand    string
	geneValue string
	start     *int64
	end       *int64
	children  []childRef
}

// Synth is a synthesized feature plus the grouping key it was derived
// from and the child ids it should gain parent edges to.
type Synth struct {
	Key      string
	Feature  *feature.Feature
	ChildIDs []string
}

// Builder accumulates component features grouped by transcript key
// across a single ingest, then finalizes transcripts and (from those)
// genes once the input stream is exhausted.
type Builder struct {
	cfg    Config
	groups map[string]*transcriptGroup
	// order records transcript keys in first-seen order, so
	// finalization iterates groups deterministically instead of in Go's
	// unspecified map order.
	order []string
	// orphans are components with no transcript_key value at all;
	// spec.md §4.9 edge case: stored, but never grouped.
	orphans []string
}

// NewBuilder returns a Builder configured per cfg.
func NewBuilder(cfg Config) *Builder {
	return &Builder{cfg: cfg, groups: make(map[string]*transcriptGroup)}
}

// Feed registers one already-ID-resolved component feature. childID
// is its final primary key (post idresolve/merge). It returns false
// if f has no transcript_key attribute (an orphan: stored by the
// caller as usual, but excluded from inference).
func (b *Builder) Feed(childID string, f *feature.Feature) bool {
	txVal, ok := f.Attributes.First(b.cfg.TranscriptKey)
	if !ok || txVal == "" {
		b.orphans = append(b.orphans, childID)
		return false
	}

	g, exists := b.groups[txVal]
	if !exists {
		g = &transcriptGroup{state: StateEmpty}
		b.groups[txVal] = g
		b.order = append(b.order, txVal)
	}
	if g.state == StateEmpty {
		g.state = StateAccumulating
		g.seqid = f.Seqid
		g.source = f.Source
		g.strand = f.Strand
		if gv, ok := f.Attributes.First(b.cfg.GeneKey); ok {
			g.geneValue = gv
		}
	}

	if f.Featuretype == b.cfg.Subfeature {
		extendRange(&g.start, &g.end, f.Start, f.End)
	}

	g.children = append(g.children, childRef{
		id:          childID,
		featuretype: f.Featuretype,
		start:       f.Start,
		end:         f.End,
	})
	return true
}

func extendRange(curStart, curEnd **int64, fStart, fEnd *int64) {
	if fStart != nil {
		if *curStart == nil || *fStart < **curStart {
			v := *fStart
			*curStart = &v
		}
	}
	if fEnd != nil {
		if *curEnd == nil || *fEnd > **curEnd {
			v := *fEnd
			*curEnd = &v
		}
	}
}

// Orphans returns the ids of components with no transcript_key value.
func (b *Builder) Orphans() []string {
	return append([]string(nil), b.orphans...)
}

// FinalizeTranscripts transitions every accumulating group to
// StateFinalized and returns one Synth per group, synthesizing a
// "transcript" feature per spec.md §4.9 point 1. Call this only after
// the input stream is exhausted (the FINALIZED transition fires on
// end-of-stream, never per-record).
func (b *Builder) FinalizeTranscripts() []Synth {
	if b.cfg.DisableInferTranscripts {
		for _, g := range b.groups {
			g.state = StateFinalized
		}
		return nil
	}

	var out []Synth
	for _, txVal := range b.order {
		g := b.groups[txVal]
		g.state = StateFinalized

		f := feature.New()
		f.Seqid = g.seqid
		f.Source = "gffutils_derived"
		f.Featuretype = "transcript"
		f.Strand = g.strand
		f.Start = g.start
		f.End = g.end
		f.Attributes.Set(b.cfg.TranscriptKey, []string{txVal})
		if g.geneValue != "" {
			f.Attributes.Set(b.cfg.GeneKey, []string{g.geneValue})
		}

		var childIDs []string
		for _, c := range g.children {
			childIDs = append(childIDs, c.id)
		}

		out = append(out, Synth{Key: txVal, Feature: f, ChildIDs: childIDs})
	}
	return out
}

// FinalizeGenes groups the already-finalized transcripts (identified
// by their final post-idresolve/merge primary keys, passed in
// transcriptFinalIDs keyed by the same Key used in the Synth returned
// from FinalizeTranscripts) by gene_key and synthesizes one "gene"
// feature per group (spec.md §4.9 point 2).
func (b *Builder) FinalizeGenes(transcripts []Synth, transcriptFinalIDs map[string]string) []Synth {
	if b.cfg.DisableInferGenes {
		return nil
	}

	type geneAccum struct {
		seqid, source, strand string
		start, end            *int64
		transcriptIDs         []string
	}
	genes := make(map[string]*geneAccum)
	var order []string

	for _, s := range transcripts {
		geneVal, ok := s.Feature.Attributes.First(b.cfg.GeneKey)
		if !ok || geneVal == "" {
			continue
		}
		ga, exists := genes[geneVal]
		if !exists {
			ga = &geneAccum{seqid: s.Feature.Seqid, source: s.Feature.Source, strand: s.Feature.Strand}
			genes[geneVal] = ga
			order = append(order, geneVal)
		}
		extendRange(&ga.start, &ga.end, s.Feature.Start, s.Feature.End)
		finalID := transcriptFinalIDs[s.Key]
		if finalID == "" {
			finalID = s.Key
		}
		ga.transcriptIDs = append(ga.transcriptIDs, finalID)
	}

	var out []Synth
	for _, geneVal := range order {
		ga := genes[geneVal]
		f := feature.New()
		f.Seqid = ga.seqid
		f.Source = "gffutils_derived"
		f.Featuretype = "gene"
		f.Strand = ga.strand
		f.Start = ga.start
		f.End = ga.end
		f.Attributes.Set(b.cfg.GeneKey, []string{geneVal})

		out = append(out, Synth{Key: geneVal, Feature: f, ChildIDs: ga.transcriptIDs})
	}
	return out
}
