// Package ingest is the public surface wiring every ingest component
// (C1–C10) into the two operations spec.md §6.3 names: CreateDB and
// OpenDB.
//
// The "thread a config struct through one orchestration function"
// shape is grounded on leapstack-labs-leapsql/internal/cli/commands:
// a thin layer that opens the store, then calls into the engine,
// returning a single wrapped error on any failure.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"gffdb/dialect"
	"gffdb/feature"
	"gffdb/gfferrors"
	"gffdb/gffio"
	"gffdb/gffline"
	"gffdb/gtfinfer"
	"gffdb/idresolve"
	"gffdb/infer"
	"gffdb/merge"
	"gffdb/relate"
	"gffdb/store"
)

// CreateDB ingests source into a freshly-migrated store at dest under
// cfg, per spec.md §6.3. The store transaction is rolled back and the
// connection closed on any unrecovered error.
func CreateDB(ctx context.Context, source gffio.Source, dest string, cfg Config) (result *store.DB, err error) {
	logger := cfg.logger()

	stream, err := gffio.Open(source)
	if err != nil {
		return nil, fmt.Errorf("ingest: %w", err)
	}
	defer stream.Close()

	db, err := store.Open(dest, logger)
	if err != nil {
		return nil, fmt.Errorf("ingest: %w", err)
	}
	defer func() {
		if err != nil {
			db.Close()
		}
	}()

	w, err := db.BeginWrite(ctx)
	if err != nil {
		return nil, fmt.Errorf("ingest: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			w.Rollback()
		}
	}()

	usingFeatureSource := source.IsFeatureSource()

	if cfg.IDSpec == nil {
		// GFF3's "ID=" attribute (and any dialect that happens to carry
		// one) is the conventional default primary key; rows without it
		// fall back to the autoincrement counter per spec.md §4.6.
		cfg.IDSpec = idresolve.ByKey("ID")
	}

	d := cfg.Dialect
	if d == nil && !usingFeatureSource {
		peeked, perr := stream.PeekLines(cfg.checkLines())
		if perr != nil {
			return nil, fmt.Errorf("ingest: peeking for dialect inference: %w", perr)
		}
		probed, ierr := infer.Infer(peeked, cfg.checkLines())
		if ierr != nil {
			var unknown *gfferrors.UnknownDialectFeature
			if !errors.As(ierr, &unknown) {
				return nil, fmt.Errorf("ingest: %w", ierr)
			}
			// No feature line voted on a dialect at all — this is not
			// necessarily fatal, since the stream may simply have no
			// feature lines to begin with. Default to gff3 and let the
			// count==0 check below decide whether that's EmptyInputError.
		} else {
			d = probed
		}
	}
	if d == nil {
		d = dialect.GFF3()
	}

	autoinc := idresolve.NewAutoincrement()
	mergeSet := merge.NewSet()
	relateBuilder := relate.NewBuilder()

	gtfEnabled := !usingFeatureSource && d.Fmt == "gtf" && !cfg.ForceGFF
	var gtfBuilder *gtfinfer.Builder
	if gtfEnabled {
		gtfBuilder = gtfinfer.NewBuilder(gtfinfer.Config{
			TranscriptKey:           cfg.GTFTranscriptKey,
			GeneKey:                 cfg.GTFGeneKey,
			Subfeature:              cfg.GTFSubfeature,
			DisableInferGenes:       cfg.DisableInferGenes,
			DisableInferTranscripts: cfg.DisableInferTranscripts,
		})
	}

	var directives []string
	count := 0

	processFeature := func(f *feature.Feature, lineNo int) error {
		if cfg.Transform != nil {
			out, ok := cfg.Transform(f)
			if !ok {
				return nil
			}
			f = out
		}
		if cfg.SortAttributeValues {
			sortAttributeValues(f)
		}
		f.Dialect = d

		rawKey := idresolve.Resolve(f, cfg.IDSpec, autoinc)
		strategy := cfg.strategyFor(f.Featuretype)
		res, rerr := merge.Resolve(mergeSet, rawKey, f, strategy, lineNo, autoinc)
		if rerr != nil {
			return rerr
		}
		if res.Outcome == merge.OutcomeSkipped {
			logger.Warn("skipped duplicate row", "line", lineNo, "id", rawKey)
			return nil
		}

		if perr := w.PutFeature(ctx, res.Key, res.Feature); perr != nil {
			return perr
		}
		if res.Outcome == merge.OutcomeUniquified {
			if perr := w.PutDuplicate(ctx, res.OriginalKey, res.Key); perr != nil {
				return perr
			}
		}
		count++

		if d.Fmt == "gff3" {
			relateBuilder.Register(rawKey, res.Key)
			if parents := res.Feature.Attributes.Get("Parent"); len(parents) > 0 {
				relateBuilder.Stage(res.Key, parents)
			}
		}
		if gtfBuilder != nil {
			if !gtfBuilder.Feed(res.Key, res.Feature) {
				logger.Debug("component has no transcript key, stored as orphan", "id", res.Key)
			}
		}
		return nil
	}

	if usingFeatureSource {
		for {
			if cerr := ctx.Err(); cerr != nil {
				return nil, cerr
			}
			f, ok := stream.NextFeature()
			if !ok {
				break
			}
			if perr := processFeature(f, 0); perr != nil {
				return nil, perr
			}
		}
	} else {
	reading:
		for {
			if cerr := ctx.Err(); cerr != nil {
				return nil, cerr
			}
			line, lineNo, ok, lerr := stream.NextLine()
			if lerr != nil {
				return nil, fmt.Errorf("ingest: reading line %d: %w", lineNo+1, lerr)
			}
			if !ok {
				break
			}

			switch gffline.Classify(line) {
			case gffline.KindBlank, gffline.KindComment:
				continue reading
			case gffline.KindFastaTerminator:
				break reading
			case gffline.KindDirective:
				directives = append(directives, strings.TrimRight(line, "\r\n"))
				continue reading
			}

			if cfg.ForceDialectCheck {
				if probed, perr := infer.Infer([]string{line}, 1); perr == nil {
					d = probed
				}
			}

			f, perr := gffline.ParseLine(line, d, lineNo)
			if perr != nil {
				return nil, perr
			}
			if perr := processFeature(f, lineNo); perr != nil {
				return nil, perr
			}
		}
	}

	if count == 0 {
		return nil, &gfferrors.EmptyInputError{}
	}

	if gtfBuilder != nil {
		if perr := finalizeGTF(ctx, w, gtfBuilder, relateBuilder, mergeSet, autoinc, cfg); perr != nil {
			return nil, perr
		}
	}

	for _, e := range relateBuilder.Resolve(cfg.maxRelationLevel()) {
		if perr := w.PutRelation(ctx, e.Parent, e.Child, e.Level); perr != nil {
			return nil, perr
		}
	}

	for _, directive := range directives {
		if perr := w.PutDirective(ctx, directive); perr != nil {
			return nil, perr
		}
	}
	for base, n := range autoinc.Snapshot() {
		if perr := w.PutAutoincrement(ctx, base, n); perr != nil {
			return nil, perr
		}
	}
	if perr := w.PutMeta(ctx, d, "1"); perr != nil {
		return nil, perr
	}

	if perr := w.Commit(ctx); perr != nil {
		return nil, perr
	}
	committed = true

	return db, nil
}

// OpenDB opens an already-ingested store for querying, per spec.md
// §6.3's "open_db(dest) returns a read/query handle."
func OpenDB(dest string) (*store.DB, error) {
	db, err := store.Open(dest, nil)
	if err != nil {
		return nil, fmt.Errorf("ingest: %w", err)
	}
	return db, nil
}

// finalizeGTF runs spec.md §4.9 points 1-2 once the input stream is
// exhausted: synthesize transcripts from their exon groups, then genes
// from the synthesized transcripts, routing every synthesized feature
// through the same merge pipeline as explicit rows (point 4's
// "inference must not produce duplicates"). Synthesized edges are
// staged into relateBuilder rather than written directly, so the
// gene->transcript->child chain feeds the same transitive-closure pass
// as GFF3's Parent= edges and level-2 gene->exon relations exist too
// (spec.md §8 Property 5).
func finalizeGTF(ctx context.Context, w *store.Writer, b *gtfinfer.Builder, relateBuilder *relate.Builder, mergeSet *merge.Set, autoinc *idresolve.Autoincrement, cfg Config) error {
	txs := b.FinalizeTranscripts()
	txFinalIDs := make(map[string]string, len(txs))

	for _, tx := range txs {
		key, ok := idresolve.TryResolve(tx.Feature, cfg.IDSpec)
		if !ok {
			key = tx.Key
		}
		if _, exists := mergeSet.Get(key); exists {
			cfg.logger().Warn("inferred transcript collides with an explicit row; consider DisableInferTranscripts", "id", key)
		}
		res, err := merge.Resolve(mergeSet, key, tx.Feature, cfg.strategyFor("transcript"), 0, autoinc)
		if err != nil {
			return err
		}
		if res.Outcome == merge.OutcomeSkipped {
			continue
		}
		if err := w.PutFeature(ctx, res.Key, res.Feature); err != nil {
			return err
		}
		txFinalIDs[tx.Key] = res.Key
		relateBuilder.Register(res.Key, res.Key)
		for _, childID := range tx.ChildIDs {
			relateBuilder.Stage(childID, []string{res.Key})
		}
	}

	for _, g := range b.FinalizeGenes(txs, txFinalIDs) {
		key, ok := idresolve.TryResolve(g.Feature, cfg.IDSpec)
		if !ok {
			key = g.Key
		}
		if _, exists := mergeSet.Get(key); exists {
			cfg.logger().Warn("inferred gene collides with an explicit row; consider DisableInferGenes", "id", key)
		}
		res, err := merge.Resolve(mergeSet, key, g.Feature, cfg.strategyFor("gene"), 0, autoinc)
		if err != nil {
			return err
		}
		if res.Outcome == merge.OutcomeSkipped {
			continue
		}
		if err := w.PutFeature(ctx, res.Key, res.Feature); err != nil {
			return err
		}
		relateBuilder.Register(res.Key, res.Key)
		for _, childID := range g.ChildIDs {
			relateBuilder.Stage(childID, []string{res.Key})
		}
	}

	return nil
}

func sortAttributeValues(f *feature.Feature) {
	for _, k := range f.Attributes.Keys() {
		vals := append([]string(nil), f.Attributes.Get(k)...)
		sort.Strings(vals)
		f.Attributes.Set(k, vals)
	}
}
