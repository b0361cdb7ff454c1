package gtfinfer

import (
	"testing"

	"gffdb/feature"
)

func exon(seqid string, start, end int64, gene, tx string) *feature.Feature {
	f := feature.New()
	f.Seqid = seqid
	f.Source = "protein_coding"
	f.Featuretype = "exon"
	f.Start = &start
	f.End = &end
	f.Strand = "+"
	f.Attributes.Set("gene_id", []string{gene})
	f.Attributes.Set("transcript_id", []string{tx})
	return f
}

func TestInferenceCorrectness(t *testing.T) {
	// Property 5: the synthesized transcript spans the min/max of its
	// exons, and the synthesized gene spans the min/max of its
	// transcripts.
	b := NewBuilder(DefaultConfig())

	e1 := exon("chr1", 100, 200, "geneA", "txA.1")
	e2 := exon("chr1", 300, 400, "geneA", "txA.1")
	b.Feed("exon:txA.1:1", e1)
	b.Feed("exon:txA.1:2", e2)

	txs := b.FinalizeTranscripts()
	if len(txs) != 1 {
		t.Fatalf("expected 1 synthesized transcript, got %d", len(txs))
	}
	tx := txs[0]
	if tx.Feature.Featuretype != "transcript" {
		t.Errorf("expected featuretype transcript, got %s", tx.Feature.Featuretype)
	}
	if *tx.Feature.Start != 100 || *tx.Feature.End != 400 {
		t.Errorf("expected transcript span [100,400], got [%d,%d]", *tx.Feature.Start, *tx.Feature.End)
	}
	if len(tx.ChildIDs) != 2 {
		t.Errorf("expected 2 child edges, got %d", len(tx.ChildIDs))
	}

	finalIDs := map[string]string{tx.Key: "txA.1"}
	genes := b.FinalizeGenes(txs, finalIDs)
	if len(genes) != 1 {
		t.Fatalf("expected 1 synthesized gene, got %d", len(genes))
	}
	gene := genes[0]
	if gene.Feature.Featuretype != "gene" {
		t.Errorf("expected featuretype gene, got %s", gene.Feature.Featuretype)
	}
	if *gene.Feature.Start != 100 || *gene.Feature.End != 400 {
		t.Errorf("expected gene span [100,400], got [%d,%d]", *gene.Feature.Start, *gene.Feature.End)
	}
	if len(gene.ChildIDs) != 1 || gene.ChildIDs[0] != "txA.1" {
		t.Errorf("expected gene to point at final transcript id txA.1, got %v", gene.ChildIDs)
	}
}

func TestMultiTranscriptGene(t *testing.T) {
	b := NewBuilder(DefaultConfig())
	b.Feed("e1", exon("chr1", 100, 200, "geneA", "txA.1"))
	b.Feed("e2", exon("chr1", 500, 600, "geneA", "txA.2"))

	txs := b.FinalizeTranscripts()
	if len(txs) != 2 {
		t.Fatalf("expected 2 transcripts, got %d", len(txs))
	}

	finalIDs := map[string]string{"txA.1": "txA.1", "txA.2": "txA.2"}
	genes := b.FinalizeGenes(txs, finalIDs)
	if len(genes) != 1 {
		t.Fatalf("expected genes to collapse to 1, got %d", len(genes))
	}
	if *genes[0].Feature.Start != 100 || *genes[0].Feature.End != 600 {
		t.Errorf("expected gene span [100,600], got [%d,%d]", *genes[0].Feature.Start, *genes[0].Feature.End)
	}
	if len(genes[0].ChildIDs) != 2 {
		t.Errorf("expected 2 transcript edges under gene, got %d", len(genes[0].ChildIDs))
	}
}

func TestOrphanComponentHasNoTranscriptID(t *testing.T) {
	b := NewBuilder(DefaultConfig())
	f := feature.New()
	f.Seqid = "chr1"
	f.Featuretype = "exon"
	start, end := int64(1), int64(10)
	f.Start, f.End = &start, &end

	ok := b.Feed("orphan1", f)
	if ok {
		t.Error("expected Feed to report no transcript_id grouping")
	}
	if len(b.Orphans()) != 1 || b.Orphans()[0] != "orphan1" {
		t.Errorf("expected orphan1 recorded, got %v", b.Orphans())
	}
	if len(b.FinalizeTranscripts()) != 0 {
		t.Error("expected no synthesized transcripts from an orphan-only feed")
	}
}

func TestDisableInferGenes(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DisableInferGenes = true
	b := NewBuilder(cfg)
	b.Feed("e1", exon("chr1", 100, 200, "geneA", "txA.1"))

	txs := b.FinalizeTranscripts()
	genes := b.FinalizeGenes(txs, map[string]string{"txA.1": "txA.1"})
	if genes != nil {
		t.Errorf("expected no synthesized genes when disabled, got %v", genes)
	}
}

func TestDisableInferTranscripts(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DisableInferTranscripts = true
	b := NewBuilder(cfg)
	b.Feed("e1", exon("chr1", 100, 200, "geneA", "txA.1"))

	txs := b.FinalizeTranscripts()
	if txs != nil {
		t.Errorf("expected no synthesized transcripts when disabled, got %v", txs)
	}
}

func TestFinalizeOrderIsInsertionOrderNotMapOrder(t *testing.T) {
	// spec.md §5 calls for stable test output; FinalizeTranscripts must
	// iterate transcript groups in first-seen order rather than Go's
	// unspecified map iteration order, and FinalizeGenes inherits that
	// same order through the transcripts slice it's given.
	b := NewBuilder(DefaultConfig())
	order := []string{"txZ.1", "txA.1", "txM.1", "txB.1", "txY.1"}
	for i, tx := range order {
		b.Feed("e"+string(rune('0'+i)), exon("chr1", int64(100*i+1), int64(100*i+50), "gene-"+tx, tx))
	}

	for attempt := 0; attempt < 5; attempt++ {
		txs := b.FinalizeTranscripts()
		if len(txs) != len(order) {
			t.Fatalf("expected %d transcripts, got %d", len(order), len(txs))
		}
		for i, tx := range txs {
			if tx.Key != order[i] {
				t.Fatalf("attempt %d: expected transcript order %v, got position %d = %q", attempt, order, i, tx.Key)
			}
		}

		finalIDs := make(map[string]string, len(txs))
		for _, tx := range txs {
			finalIDs[tx.Key] = tx.Key
		}
		genes := b.FinalizeGenes(txs, finalIDs)
		if len(genes) != len(order) {
			t.Fatalf("expected %d genes, got %d", len(order), len(genes))
		}
		for i, g := range genes {
			want := "gene-" + order[i]
			if g.Key != want {
				t.Fatalf("attempt %d: expected gene order position %d = %q, got %q", attempt, i, want, g.Key)
			}
		}
	}
}

func TestNonSubfeatureRowsDoNotExtendRangeButDoGetEdges(t *testing.T) {
	// CDS rows contribute a child edge but, since Subfeature defaults to
	// "exon", must not widen the transcript's synthesized extent beyond
	// what the exons alone establish.
	b := NewBuilder(DefaultConfig())
	b.Feed("exon1", exon("chr1", 100, 400, "geneA", "txA.1"))

	cds := feature.New()
	cds.Seqid = "chr1"
	cds.Featuretype = "CDS"
	s, e := int64(50), int64(500)
	cds.Start, cds.End = &s, &e
	cds.Attributes.Set("gene_id", []string{"geneA"})
	cds.Attributes.Set("transcript_id", []string{"txA.1"})
	b.Feed("cds1", cds)

	txs := b.FinalizeTranscripts()
	if len(txs) != 1 {
		t.Fatalf("expected 1 transcript, got %d", len(txs))
	}
	if *txs[0].Feature.Start != 100 || *txs[0].Feature.End != 400 {
		t.Errorf("expected CDS row to be excluded from extent, got [%d,%d]", *txs[0].Feature.Start, *txs[0].Feature.End)
	}
	if len(txs[0].ChildIDs) != 2 {
		t.Errorf("expected both exon and CDS as children, got %v", txs[0].ChildIDs)
	}
}
