package ingest

import (
	"log/slog"

	"gffdb/dialect"
	"gffdb/idresolve"
	"gffdb/infer"
	"gffdb/merge"

	"gffdb/feature"
)

// Transform is applied to every parsed feature before id resolution;
// returning ok=false drops the record entirely (spec.md §6.4's
// "transform ... returning modified Feature or falsy -> drop").
type Transform func(f *feature.Feature) (out *feature.Feature, ok bool)

// Config is every create_db option of spec.md §6.3/§6.4, plus the
// ambient Logger/MaxRelationLevel fields SPEC_FULL.md §6.4 adds.
type Config struct {
	IDSpec                  *idresolve.Spec
	MergeStrategy           merge.Strategy
	MergeStrategyByFeature  map[string]merge.Strategy
	Transform               Transform
	CheckLines              int
	ForceDialectCheck       bool
	ForceGFF                bool
	Dialect                 *dialect.Dialect
	GTFTranscriptKey        string
	GTFGeneKey              string
	GTFSubfeature           string
	DisableInferTranscripts bool
	DisableInferGenes       bool
	KeepOrder               bool
	SortAttributeValues     bool
	MaxRelationLevel        int
	Logger                  *slog.Logger
}

// DefaultConfig returns the conventional GFF3/GTF ingest configuration:
// no explicit id_spec (CreateDB then keys rows by their "ID" attribute,
// falling back to autoincrement), merge_strategy=error,
// 10-line dialect probe, maxlevel=3, a discard logger.
func DefaultConfig() Config {
	return Config{
		MergeStrategy:    merge.StrategyError,
		CheckLines:       infer.DefaultCheckLines,
		GTFTranscriptKey: "transcript_id",
		GTFGeneKey:       "gene_id",
		GTFSubfeature:    "exon",
		MaxRelationLevel: 3,
		Logger:           slog.New(slog.DiscardHandler),
	}
}

func (c Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.New(slog.DiscardHandler)
}

func (c Config) checkLines() int {
	if c.CheckLines > 0 {
		return c.CheckLines
	}
	return infer.DefaultCheckLines
}

func (c Config) maxRelationLevel() int {
	if c.MaxRelationLevel > 0 {
		return c.MaxRelationLevel
	}
	return 3
}

func (c Config) strategyFor(featuretype string) merge.Strategy {
	if c.MergeStrategyByFeature != nil {
		if s, ok := c.MergeStrategyByFeature[featuretype]; ok {
			return s
		}
	}
	if c.MergeStrategy == "" {
		return merge.StrategyError
	}
	return c.MergeStrategy
}
